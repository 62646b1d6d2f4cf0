package models

import (
	"time"

	"chartintel/internal/types"
)

const (
	GrowthWindow       = 7 * 24 * time.Hour
	ScoreHistoryWindow = 30 * 24 * time.Hour
)

// Snapshots are stored per provider and go stale independently. A nil
// snapshot means the provider has never reported for the entity.

type StreamingArtistSnapshot struct {
	Timestamp         time.Time          `json:"timestamp"`
	Source            types.ProviderName `json:"source"`
	Followers         int64              `json:"followers"`
	Popularity        int                `json:"popularity"`
	FollowerGrowth    *float64           `json:"followerGrowth,omitempty"`
	FollowersBaseline int64              `json:"followersBaseline"`
	BaselineAt        time.Time          `json:"baselineAt"`
}

type ScrobbleArtistSnapshot struct {
	Timestamp         time.Time          `json:"timestamp"`
	Source            types.ProviderName `json:"source"`
	Listeners         int64              `json:"listeners"`
	Playcount         int64              `json:"playcount"`
	ListenerGrowth    *float64           `json:"listenerGrowth,omitempty"`
	PlaycountGrowth   *float64           `json:"playcountGrowth,omitempty"`
	ListenersBaseline int64              `json:"listenersBaseline"`
	PlaycountBaseline int64              `json:"playcountBaseline"`
	BaselineAt        time.Time          `json:"baselineAt"`
}

type ListenSnapshot struct {
	Timestamp     time.Time          `json:"timestamp"`
	Source        types.ProviderName `json:"source"`
	ListenCount   int64              `json:"listenCount"`
	ListenerCount int64              `json:"listenerCount"`
}

type ArtistMetrics struct {
	Streaming      *StreamingArtistSnapshot `json:"streaming,omitempty"`
	Scrobbling     *ScrobbleArtistSnapshot  `json:"scrobbling,omitempty"`
	ListenTracking *ListenSnapshot          `json:"listenTracking,omitempty"`
}

type StreamingTrackSnapshot struct {
	Timestamp  time.Time          `json:"timestamp"`
	Source     types.ProviderName `json:"source"`
	Popularity int                `json:"popularity"`
}

type ScrobbleTrackSnapshot = ScrobbleArtistSnapshot

type TrackMetrics struct {
	Streaming  *StreamingTrackSnapshot `json:"streaming,omitempty"`
	Scrobbling *ScrobbleTrackSnapshot  `json:"scrobbling,omitempty"`
}

type ScoreHistoryEntry struct {
	Date           time.Time `json:"date"`
	CompositeScore float64   `json:"compositeScore"`
	MomentumScore  float64   `json:"momentumScore"`
	ReachScore     float64   `json:"reachScore,omitempty"`
}

// rollGrowth compares current against a baseline once the baseline is at
// least a week old, then moves the baseline forward. Before that the
// previous growth value is carried unchanged.
func rollGrowth(
	current, baseline int64,
	baselineAt, now time.Time,
	previous *float64,
) (*float64, int64, time.Time) {
	if baselineAt.IsZero() {
		return previous, current, now
	}

	if now.Sub(baselineAt) < GrowthWindow {
		return previous, baseline, baselineAt
	}

	if baseline <= 0 {
		return nil, current, now
	}

	growth := float64(current-baseline) / float64(baseline) * 100
	return &growth, current, now
}

func (m *ArtistMetrics) SetStreaming(followers int64, popularity int, now time.Time) {
	next := &StreamingArtistSnapshot{
		Timestamp:  now,
		Source:     types.ProviderSpotify,
		Followers:  followers,
		Popularity: popularity,
	}

	if prev := m.Streaming; prev != nil {
		next.FollowerGrowth, next.FollowersBaseline, next.BaselineAt = rollGrowth(
			followers, prev.FollowersBaseline, prev.BaselineAt, now, prev.FollowerGrowth,
		)
	} else {
		next.FollowersBaseline, next.BaselineAt = followers, now
	}

	m.Streaming = next
}

func (m *ArtistMetrics) SetScrobbling(listeners, playcount int64, now time.Time) {
	m.Scrobbling = nextScrobbleSnapshot(m.Scrobbling, listeners, playcount, now)
}

func (m *ArtistMetrics) SetListenTracking(listenCount, listenerCount int64, now time.Time) {
	m.ListenTracking = &ListenSnapshot{
		Timestamp:     now,
		Source:        types.ProviderListenBrainz,
		ListenCount:   listenCount,
		ListenerCount: listenerCount,
	}
}

// ProviderCount is the number of providers with a snapshot.
func (m ArtistMetrics) ProviderCount() int {
	count := 0
	if m.Streaming != nil {
		count++
	}
	if m.Scrobbling != nil {
		count++
	}
	if m.ListenTracking != nil {
		count++
	}
	return count
}

// LatestUpdate is the newest snapshot timestamp, zero when there are none.
func (m ArtistMetrics) LatestUpdate() time.Time {
	var latest time.Time
	if m.Streaming != nil && m.Streaming.Timestamp.After(latest) {
		latest = m.Streaming.Timestamp
	}
	if m.Scrobbling != nil && m.Scrobbling.Timestamp.After(latest) {
		latest = m.Scrobbling.Timestamp
	}
	if m.ListenTracking != nil && m.ListenTracking.Timestamp.After(latest) {
		latest = m.ListenTracking.Timestamp
	}
	return latest
}

func (m *TrackMetrics) SetStreaming(popularity int, now time.Time) {
	m.Streaming = &StreamingTrackSnapshot{
		Timestamp:  now,
		Source:     types.ProviderSpotify,
		Popularity: popularity,
	}
}

func (m *TrackMetrics) SetScrobbling(listeners, playcount int64, now time.Time) {
	m.Scrobbling = nextScrobbleSnapshot(m.Scrobbling, listeners, playcount, now)
}

func (m TrackMetrics) ProviderCount() int {
	count := 0
	if m.Streaming != nil {
		count++
	}
	if m.Scrobbling != nil {
		count++
	}
	return count
}

func (m TrackMetrics) LatestUpdate() time.Time {
	var latest time.Time
	if m.Streaming != nil && m.Streaming.Timestamp.After(latest) {
		latest = m.Streaming.Timestamp
	}
	if m.Scrobbling != nil && m.Scrobbling.Timestamp.After(latest) {
		latest = m.Scrobbling.Timestamp
	}
	return latest
}

func nextScrobbleSnapshot(
	prev *ScrobbleArtistSnapshot,
	listeners, playcount int64,
	now time.Time,
) *ScrobbleArtistSnapshot {
	next := &ScrobbleArtistSnapshot{
		Timestamp: now,
		Source:    types.ProviderLastFM,
		Listeners: listeners,
		Playcount: playcount,
	}

	if prev == nil {
		next.ListenersBaseline, next.PlaycountBaseline, next.BaselineAt = listeners, playcount, now
		return next
	}

	next.ListenerGrowth, next.ListenersBaseline, next.BaselineAt = rollGrowth(
		listeners, prev.ListenersBaseline, prev.BaselineAt, now, prev.ListenerGrowth,
	)
	next.PlaycountGrowth, next.PlaycountBaseline, _ = rollGrowth(
		playcount, prev.PlaycountBaseline, prev.BaselineAt, now, prev.PlaycountGrowth,
	)

	return next
}

// AppendScoreHistory appends entry and drops everything older than the
// rolling window relative to now. Same-day entries are kept.
func AppendScoreHistory(
	history []ScoreHistoryEntry,
	entry ScoreHistoryEntry,
	now time.Time,
) []ScoreHistoryEntry {
	cutoff := now.Add(-ScoreHistoryWindow)

	appended := append(history, entry)
	pruned := make([]ScoreHistoryEntry, 0, len(appended))
	for _, h := range appended {
		if !h.Date.Before(cutoff) {
			pruned = append(pruned, h)
		}
	}

	return pruned
}
