package scoring

import (
	"strings"

	"chartintel/config"
	"chartintel/internal/models"
)

// Thresholds are hand-tuned cut-offs for the independence rules.
type Thresholds struct {
	MaxFollowers   int64
	MaxPopularity  int
	MaxListeners   int64
	MaxComposite   float64
	MinMomentum    float64
	SmallFollowers int64
	SmallListeners int64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxFollowers:   500_000,
		MaxPopularity:  70,
		MaxListeners:   1_000_000,
		MaxComposite:   80,
		MinMomentum:    10,
		SmallFollowers: 10_000,
		SmallListeners: 5_000,
	}
}

// ThresholdsFromConfig reads the INDIE_* settings as given. Defaults come
// from the config layer, so a configured 0 is honoured: INDIE_MIN_MOMENTUM=0
// turns the momentum rule off.
func ThresholdsFromConfig(cfg config.Config) Thresholds {
	return Thresholds{
		MaxFollowers:   cfg.IndieMaxFollowers,
		MaxPopularity:  cfg.IndieMaxPopularity,
		MaxListeners:   cfg.IndieMaxListeners,
		MaxComposite:   cfg.IndieMaxComposite,
		MinMomentum:    cfg.IndieMinMomentum,
		SmallFollowers: cfg.IndieSmallFollowers,
		SmallListeners: cfg.IndieSmallListeners,
	}
}

var MajorLabels = []string{
	"Universal", "Sony", "Warner", "EMI", "Atlantic", "Columbia",
	"Interscope", "Capitol", "Republic", "RCA", "Def Jam", "Island",
	"Epic", "Parlophone", "Virgin", "Geffen", "Motown", "Elektra",
}

// IsMajorLabel matches case-insensitively on containment, so imprints such
// as "Universal Music Group" or "Sony Music Japan" count.
func IsMajorLabel(label string) bool {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return false
	}

	for _, major := range MajorLabels {
		if strings.Contains(label, strings.ToLower(major)) {
			return true
		}
	}
	return false
}

// ClassifierInput is what the independence rules look at. Momentum is nil
// until the artist has been scored at least once.
type ClassifierInput struct {
	Metrics   models.ArtistMetrics
	Label     string
	Composite float64
	Momentum  *float64
}

func ClassifierInputFor(artist *models.UnifiedArtist) ClassifierInput {
	input := ClassifierInput{
		Metrics:   artist.CurrentMetrics(),
		Label:     artist.Label,
		Composite: artist.CompositeScore,
	}
	if artist.ScoredAt != nil {
		momentum := artist.MomentumScore
		input.Momentum = &momentum
	}
	return input
}

// IsIndependent applies the rules in order; the first that fires makes the
// artist mainstream.
func IsIndependent(input ClassifierInput, t Thresholds) bool {
	var followers, listeners int64
	var popularity int
	hasFollowers := false
	if s := input.Metrics.Streaming; s != nil {
		followers, popularity, hasFollowers = s.Followers, s.Popularity, true
	}
	if s := input.Metrics.Scrobbling; s != nil {
		listeners = s.Listeners
	}

	if followers >= t.MaxFollowers || popularity >= t.MaxPopularity {
		return false
	}

	if listeners >= t.MaxListeners {
		return false
	}

	if IsMajorLabel(input.Label) {
		return false
	}

	if input.Composite >= t.MaxComposite && hasFollowers && followers >= t.MaxFollowers {
		return false
	}

	if input.Momentum != nil && *input.Momentum < t.MinMomentum {
		verySmall := followers < t.SmallFollowers && listeners < t.SmallListeners
		if !verySmall {
			return false
		}
	}

	return true
}
