package scoring

import (
	"time"

	"chartintel/internal/models"
)

// Caps used to normalize raw counts.
const (
	FollowerCap             = 1_000_000
	PopularityCap           = 100
	ScrobbleListenerCap     = 500_000
	ScrobblePlaycountCap    = 10_000_000
	ListenTrackingListenCap = 100_000
	EngagementCap           = 50
)

// Composite weights. They are renormalized over the components that are
// present, so their sum does not need to be 1.
const (
	weightFollowers      = 0.15
	weightPopularity     = 0.10
	weightFollowerGrowth = 0.10
	weightListeners      = 0.08
	weightPlaycount      = 0.07
	weightListenerGrowth = 0.15
	weightListenTracking = 0.10
	weightCrossPlatform  = 0.10
	weightEngagement     = 0.08
)

// Momentum shares of each growth figure.
const (
	momentumFollowerShare  = 0.5
	momentumListenerShare  = 0.3
	momentumPlaycountShare = 0.2
)

type ArtistScores struct {
	Composite float64
	Momentum  float64
	Reach     float64
}

func ScoreArtist(name string, metrics models.ArtistMetrics, now time.Time) ArtistScores {
	return ArtistScores{
		Composite: ArtistComposite(metrics),
		Momentum:  ArtistMomentum(name, metrics, now),
		Reach:     ArtistReach(metrics),
	}
}

func ArtistComposite(metrics models.ArtistMetrics) float64 {
	var components []component

	if s := metrics.Streaming; s != nil {
		components = append(components,
			component{weightFollowers, Normalize(float64(s.Followers), FollowerCap)},
			component{weightPopularity, Normalize(float64(s.Popularity), PopularityCap)},
		)
		if s.FollowerGrowth != nil {
			components = append(components, component{weightFollowerGrowth, Clamp(*s.FollowerGrowth)})
		}
	}

	if s := metrics.Scrobbling; s != nil {
		components = append(components,
			component{weightListeners, Normalize(float64(s.Listeners), ScrobbleListenerCap)},
			component{weightPlaycount, Normalize(float64(s.Playcount), ScrobblePlaycountCap)},
		)
		if s.ListenerGrowth != nil {
			components = append(components, component{weightListenerGrowth, Clamp(*s.ListenerGrowth)})
		}
		if engagement, ok := engagementRatio(s.Listeners, s.Playcount); ok {
			components = append(components, component{weightEngagement, Normalize(engagement, EngagementCap)})
		}
	}

	if l := metrics.ListenTracking; l != nil {
		components = append(components,
			component{weightListenTracking, Normalize(float64(l.ListenerCount), ListenTrackingListenCap)},
		)
	}

	components = append(components,
		component{weightCrossPlatform, crossPlatformBonus(metrics.ProviderCount())},
	)

	return finalize(weightedAverage(components))
}

// ArtistMomentum prefers measured week-over-week growth. Without any growth
// figure it falls back to a heuristic built from the current snapshot.
func ArtistMomentum(name string, metrics models.ArtistMetrics, now time.Time) float64 {
	var growth []component
	if s := metrics.Streaming; s != nil && s.FollowerGrowth != nil {
		growth = append(growth, component{momentumFollowerShare, Clamp(*s.FollowerGrowth)})
	}
	if s := metrics.Scrobbling; s != nil {
		if s.ListenerGrowth != nil {
			growth = append(growth, component{momentumListenerShare, Clamp(*s.ListenerGrowth)})
		}
		if s.PlaycountGrowth != nil {
			growth = append(growth, component{momentumPlaycountShare, Clamp(*s.PlaycountGrowth)})
		}
	}

	if len(growth) > 0 {
		return finalize(weightedAverage(growth))
	}

	return finalize(artistMomentumProxy(name, metrics, now))
}

func artistMomentumProxy(name string, metrics models.ArtistMetrics, now time.Time) float64 {
	var engagement, highEngagement, listenerSweetSpot float64
	if s := metrics.Scrobbling; s != nil {
		if ratio, ok := engagementRatio(s.Listeners, s.Playcount); ok {
			engagement = Normalize(ratio, EngagementCap)
			highEngagement = engagementTier(ratio)
		}
		listenerSweetSpot = band(float64(s.Listeners), 100, 1_000, 100_000, 500_000)
	}

	var popularitySweetSpot, followerSweetSpot float64
	if s := metrics.Streaming; s != nil {
		popularitySweetSpot = band(float64(s.Popularity), 10, 20, 60, 75)
		followerSweetSpot = band(float64(s.Followers), 100, 1_000, 100_000, 300_000)
	}

	return 0.20*engagement +
		0.15*crossPlatformBonus(metrics.ProviderCount()) +
		0.15*popularitySweetSpot +
		0.15*listenerSweetSpot +
		0.10*highEngagement +
		0.10*followerSweetSpot +
		0.10*recency(metrics.LatestUpdate(), now) +
		NameVariation(name)
}

// ArtistReach is a plain weighted sum; absent providers contribute zero.
func ArtistReach(metrics models.ArtistMetrics) float64 {
	var reach float64
	if s := metrics.Streaming; s != nil {
		reach += 0.4 * Normalize(float64(s.Followers), FollowerCap)
	}
	if s := metrics.Scrobbling; s != nil {
		reach += 0.3 * Normalize(float64(s.Listeners), ScrobbleListenerCap)
	}
	if l := metrics.ListenTracking; l != nil {
		reach += 0.3 * Normalize(float64(l.ListenerCount), ListenTrackingListenCap)
	}
	return finalize(reach)
}

// engagementRatio is plays per listener; it is undefined without listeners.
func engagementRatio(listeners, playcount int64) (float64, bool) {
	if listeners <= 0 {
		return 0, false
	}
	return float64(playcount) / float64(listeners), true
}

func engagementTier(ratio float64) float64 {
	switch {
	case ratio >= 10:
		return 100
	case ratio >= 5:
		return 50
	default:
		return 0
	}
}

func recency(updated, now time.Time) float64 {
	if updated.IsZero() {
		return 0
	}

	age := now.Sub(updated)
	switch {
	case age <= 24*time.Hour:
		return 100
	case age <= 7*24*time.Hour:
		return 50
	default:
		return 0
	}
}
