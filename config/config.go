package config

import (
	"strings"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/spf13/viper"
)

type Config struct {
	GeneralVersion       string `mapstructure:"GENERAL_VERSION"`
	Environment          string `mapstructure:"ENVIRONMENT"`
	ServerPort           int    `mapstructure:"SERVER_PORT"`
	DatabaseHost         string `mapstructure:"DB_HOST"`
	DatabasePort         int    `mapstructure:"DB_PORT"`
	DatabaseName         string `mapstructure:"DB_NAME"`
	DatabaseUser         string `mapstructure:"DB_USER"`
	DatabasePassword     string `mapstructure:"DB_PASSWORD"`
	DatabaseCacheAddress string `mapstructure:"DB_CACHE_ADDRESS"`
	DatabaseCachePort    int    `mapstructure:"DB_CACHE_PORT"`
	SchedulerEnabled     bool   `mapstructure:"SCHEDULER_ENABLED"`
	AdminToken           string `mapstructure:"ADMIN_TOKEN"`

	// Provider credentials. Missing values degrade the matching client to
	// returning empty results.
	SpotifyClientID     string `mapstructure:"SPOTIFY_CLIENT_ID"`
	SpotifyClientSecret string `mapstructure:"SPOTIFY_CLIENT_SECRET"`
	LastFMAPIKey        string `mapstructure:"LASTFM_API_KEY"`
	ListenBrainzToken   string `mapstructure:"LISTENBRAINZ_TOKEN"`
	MusicBrainzContact  string `mapstructure:"MUSICBRAINZ_CONTACT"`

	TopChartLimit    int    `mapstructure:"TOP_CHART_LIMIT"`
	GenreTags        string `mapstructure:"GENRE_TAGS"`
	GenreImportLimit int    `mapstructure:"GENRE_IMPORT_LIMIT"`
	EntityDelayMs    int    `mapstructure:"ENTITY_DELAY_MS"`

	// Independent-artist thresholds. Hand-tuned, not derived.
	IndieMaxFollowers   int64   `mapstructure:"INDIE_MAX_FOLLOWERS"`
	IndieMaxPopularity  int     `mapstructure:"INDIE_MAX_POPULARITY"`
	IndieMaxListeners   int64   `mapstructure:"INDIE_MAX_LISTENERS"`
	IndieMaxComposite   float64 `mapstructure:"INDIE_MAX_COMPOSITE"`
	IndieMinMomentum    float64 `mapstructure:"INDIE_MIN_MOMENTUM"`
	IndieSmallFollowers int64   `mapstructure:"INDIE_SMALL_FOLLOWERS"`
	IndieSmallListeners int64   `mapstructure:"INDIE_SMALL_LISTENERS"`
}

var envVars = []string{
	"GENERAL_VERSION", "ENVIRONMENT", "SERVER_PORT",
	"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
	"DB_CACHE_ADDRESS", "DB_CACHE_PORT",
	"SCHEDULER_ENABLED", "ADMIN_TOKEN",
	"SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET", "LASTFM_API_KEY", "LISTENBRAINZ_TOKEN", "MUSICBRAINZ_CONTACT",
	"TOP_CHART_LIMIT", "GENRE_TAGS", "GENRE_IMPORT_LIMIT", "ENTITY_DELAY_MS",
	"INDIE_MAX_FOLLOWERS", "INDIE_MAX_POPULARITY", "INDIE_MAX_LISTENERS", "INDIE_MAX_COMPOSITE",
	"INDIE_MIN_MOMENTUM", "INDIE_SMALL_FOLLOWERS", "INDIE_SMALL_LISTENERS",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENVIRONMENT", "production")
	v.SetDefault("SERVER_PORT", 8288)
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("SCHEDULER_ENABLED", true)
	v.SetDefault("MUSICBRAINZ_CONTACT", "ops@chartintel.local")
	v.SetDefault("TOP_CHART_LIMIT", 50)
	v.SetDefault("GENRE_TAGS", "indie,indie pop,indie rock,lo-fi,bedroom pop,shoegaze")
	v.SetDefault("GENRE_IMPORT_LIMIT", 50)
	v.SetDefault("ENTITY_DELAY_MS", 200)

	v.SetDefault("INDIE_MAX_FOLLOWERS", 500_000)
	v.SetDefault("INDIE_MAX_POPULARITY", 70)
	v.SetDefault("INDIE_MAX_LISTENERS", 1_000_000)
	v.SetDefault("INDIE_MAX_COMPOSITE", 80)
	v.SetDefault("INDIE_MIN_MOMENTUM", 10)
	v.SetDefault("INDIE_SMALL_FOLLOWERS", 10_000)
	v.SetDefault("INDIE_SMALL_LISTENERS", 5_000)
}

func New() (Config, error) {
	log := logger.New("config").Function("New")
	log.Info("Initializing config")

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	for _, env := range envVars {
		if err := v.BindEnv(env); err != nil {
			log.Warn("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	if v.IsSet("DB_HOST") && v.IsSet("LASTFM_API_KEY") {
		log.Info("Environment variables detected, skipping file loading")
	} else {
		log.Info("Environment variables not found, attempting to load from files")

		v.SetConfigFile(".env")
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			log.Warn("Could not find .env file", "error", err)
		} else {
			log.Info("Loaded .env file")
		}

		v.SetConfigFile(".env.local")
		if err := v.MergeInConfig(); err != nil {
			log.Debug("No .env.local file found", "error", err)
		} else {
			log.Info("Loaded .env.local overrides")
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, log.Err("Fatal error: could not unmarshal config", err)
	}

	if err := validateConfig(config, log); err != nil {
		return Config{}, err
	}

	log.Info("Successfully initialized config",
		"environment", config.Environment,
		"schedulerEnabled", config.SchedulerEnabled,
		"spotifyConfigured", config.SpotifyClientID != "",
		"lastfmConfigured", config.LastFMAPIKey != "",
	)

	return config, nil
}

// Tags splits GENRE_TAGS into trimmed, non-empty tags.
func (c Config) Tags() []string {
	var tags []string
	for _, tag := range strings.Split(c.GenreTags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func validateConfig(config Config, log logger.Logger) error {
	if config.ServerPort <= 0 {
		return log.Error("Fatal error: invalid server port", "port", config.ServerPort)
	}

	if config.TopChartLimit <= 0 {
		return log.Error("Fatal error: TOP_CHART_LIMIT must be positive", "limit", config.TopChartLimit)
	}

	if config.EntityDelayMs < 0 {
		return log.Error("Fatal error: ENTITY_DELAY_MS cannot be negative", "delay", config.EntityDelayMs)
	}

	thresholds := map[string]float64{
		"INDIE_MAX_FOLLOWERS":   float64(config.IndieMaxFollowers),
		"INDIE_MAX_POPULARITY":  float64(config.IndieMaxPopularity),
		"INDIE_MAX_LISTENERS":   float64(config.IndieMaxListeners),
		"INDIE_MAX_COMPOSITE":   config.IndieMaxComposite,
		"INDIE_MIN_MOMENTUM":    config.IndieMinMomentum,
		"INDIE_SMALL_FOLLOWERS": float64(config.IndieSmallFollowers),
		"INDIE_SMALL_LISTENERS": float64(config.IndieSmallListeners),
	}
	for key, value := range thresholds {
		if value < 0 {
			return log.Error("Fatal error: classifier threshold cannot be negative", "key", key, "value", value)
		}
	}

	if (config.SpotifyClientID == "") != (config.SpotifyClientSecret == "") {
		log.Warn("Spotify credentials incomplete, streaming provider disabled")
	}

	if config.LastFMAPIKey == "" {
		log.Warn("LASTFM_API_KEY not set, scrobbling provider disabled")
	}

	return nil
}
