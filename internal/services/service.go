package services

import (
	"time"

	"chartintel/config"
	"chartintel/internal/database"
	"chartintel/internal/repositories"
	"chartintel/internal/scoring"
)

type Service struct {
	Transaction      *TransactionService
	Scheduler        *SchedulerService
	Spotify          *SpotifyService
	LastFM           *LastFMService
	MusicBrainz      *MusicBrainzService
	ListenBrainz     *ListenBrainzService
	Identity         *IdentityResolverService
	ArtistAggregator *ArtistAggregatorService
	TrackAggregator  *TrackAggregatorService
	Scoring          *ScoringService
}

func New(db database.DB, config config.Config) (Service, error) {
	transactionService := NewTransactionService(db)
	repos := repositories.New(db)

	spotifyService := NewSpotifyService(config)
	lastFMService := NewLastFMService(config)
	musicBrainzService := NewMusicBrainzService(config)
	listenBrainzService := NewListenBrainzService(config)
	identityService := NewIdentityResolverService(musicBrainzService, db.Cache.ClientAPI)

	options := AggregatorOptions{
		EntityDelay: time.Duration(config.EntityDelayMs) * time.Millisecond,
		Thresholds:  scoring.ThresholdsFromConfig(config),
	}

	artistAggregatorService := NewArtistAggregatorService(
		repos.Artist,
		spotifyService,
		lastFMService,
		listenBrainzService,
		identityService,
		transactionService,
		options,
	)
	trackAggregatorService := NewTrackAggregatorService(
		repos.Track,
		artistAggregatorService,
		spotifyService,
		lastFMService,
		options,
	)
	scoringService := NewScoringService(
		repos.Artist,
		repos.Track,
		transactionService,
		options.Thresholds,
	)

	return Service{
		Transaction:      transactionService,
		Scheduler:        NewSchedulerService(),
		Spotify:          spotifyService,
		LastFM:           lastFMService,
		MusicBrainz:      musicBrainzService,
		ListenBrainz:     listenBrainzService,
		Identity:         identityService,
		ArtistAggregator: artistAggregatorService,
		TrackAggregator:  trackAggregatorService,
		Scoring:          scoringService,
	}, nil
}
