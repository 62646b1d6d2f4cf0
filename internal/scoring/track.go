package scoring

import (
	"time"

	"chartintel/internal/models"
)

const (
	TrackListenerCap  = 100_000
	TrackPlaycountCap = 1_000_000

	// NewReleaseWindow is how recent a release must be to earn NewReleaseBonus.
	NewReleaseWindow = 90 * 24 * time.Hour
	NewReleaseBonus  = 10.0
)

type TrackScores struct {
	Composite float64
	Momentum  float64
}

func ScoreTrack(
	name string,
	metrics models.TrackMetrics,
	releaseDate *time.Time,
	now time.Time,
) TrackScores {
	return TrackScores{
		Composite: TrackComposite(metrics, releaseDate, now),
		Momentum:  TrackMomentum(name, metrics, now),
	}
}

func TrackComposite(metrics models.TrackMetrics, releaseDate *time.Time, now time.Time) float64 {
	var components []component

	if s := metrics.Streaming; s != nil {
		components = append(components,
			component{0.35, Normalize(float64(s.Popularity), PopularityCap)},
		)
	}

	if s := metrics.Scrobbling; s != nil {
		components = append(components,
			component{0.25, Normalize(float64(s.Listeners), TrackListenerCap)},
			component{0.20, Normalize(float64(s.Playcount), TrackPlaycountCap)},
		)
		if ratio, ok := engagementRatio(s.Listeners, s.Playcount); ok {
			components = append(components, component{0.10, Normalize(ratio, EngagementCap)})
		}
	}

	components = append(components,
		component{0.10, crossPlatformBonus(metrics.ProviderCount())},
	)

	score := weightedAverage(components)
	if isNewRelease(releaseDate, now) {
		score += NewReleaseBonus
	}

	return finalize(score)
}

func TrackMomentum(name string, metrics models.TrackMetrics, now time.Time) float64 {
	var growth []component
	if s := metrics.Scrobbling; s != nil {
		if s.ListenerGrowth != nil {
			growth = append(growth, component{0.6, Clamp(*s.ListenerGrowth)})
		}
		if s.PlaycountGrowth != nil {
			growth = append(growth, component{0.4, Clamp(*s.PlaycountGrowth)})
		}
	}

	if len(growth) > 0 {
		return finalize(weightedAverage(growth))
	}

	var engagement, listenerSweetSpot float64
	if s := metrics.Scrobbling; s != nil {
		if ratio, ok := engagementRatio(s.Listeners, s.Playcount); ok {
			engagement = Normalize(ratio, EngagementCap)
		}
		listenerSweetSpot = band(float64(s.Listeners), 100, 1_000, 50_000, 200_000)
	}

	var popularitySweetSpot float64
	if s := metrics.Streaming; s != nil {
		popularitySweetSpot = band(float64(s.Popularity), 10, 20, 60, 75)
	}

	proxy := 0.25*engagement +
		0.20*crossPlatformBonus(metrics.ProviderCount()) +
		0.20*popularitySweetSpot +
		0.15*listenerSweetSpot +
		0.10*recency(metrics.LatestUpdate(), now) +
		NameVariation(name)

	return finalize(proxy)
}

func isNewRelease(releaseDate *time.Time, now time.Time) bool {
	if releaseDate == nil {
		return false
	}
	return now.Sub(*releaseDate) <= NewReleaseWindow
}
