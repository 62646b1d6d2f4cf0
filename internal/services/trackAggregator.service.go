package services

import (
	"context"
	"time"

	"chartintel/internal/models"
	"chartintel/internal/repositories"
	"chartintel/internal/types"
	"chartintel/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
)

type (
	StreamingTrackClient interface {
		SearchTracks(ctx context.Context, track, artist string) ([]types.StreamingTrack, error)
		GetTrack(ctx context.Context, id string) (*types.StreamingTrack, error)
	}

	ScrobbleTrackClient interface {
		GetTopTracks(ctx context.Context, limit int) ([]types.ScrobbleTrack, error)
		GetTopTracksByTag(ctx context.Context, tag string, limit int) ([]types.ScrobbleTrack, error)
		GetTrack(ctx context.Context, artist, track string) (*types.ScrobbleTrack, error)
	}

	ArtistEnsurer interface {
		EnsureArtist(ctx context.Context, name string) (*models.UnifiedArtist, error)
	}
)

type TrackAggregatorService struct {
	tracks     repositories.UnifiedTrackRepository
	artists    ArtistEnsurer
	streaming  StreamingTrackClient
	scrobbling ScrobbleTrackClient
	options    AggregatorOptions
	now        func() time.Time
	log        logger.Logger
}

func NewTrackAggregatorService(
	tracks repositories.UnifiedTrackRepository,
	artists ArtistEnsurer,
	streaming StreamingTrackClient,
	scrobbling ScrobbleTrackClient,
	options AggregatorOptions,
) *TrackAggregatorService {
	return &TrackAggregatorService{
		tracks:     tracks,
		artists:    artists,
		streaming:  streaming,
		scrobbling: scrobbling,
		options:    options,
		now:        func() time.Time { return time.Now().UTC() },
		log:        logger.New("TrackAggregatorService"),
	}
}

func (s *TrackAggregatorService) ImportFromTopChart(ctx context.Context, limit int) (ImportResult, error) {
	log := s.log.Function("ImportFromTopChart")
	defer log.Timer("Top chart track import")()

	entries, err := s.scrobbling.GetTopTracks(ctx, limit)
	if err != nil {
		return ImportResult{}, log.Err("failed to fetch top track chart", err, "limit", limit)
	}

	result, err := s.importEntries(ctx, entries, false)
	log.Info("Top chart track import finished",
		"processed", result.Processed,
		"imported", result.Imported,
	)
	return result, err
}

// ImportByGenre counts only tracks whose artist is independent.
func (s *TrackAggregatorService) ImportByGenre(
	ctx context.Context,
	tag string,
	limit int,
) (ImportResult, error) {
	log := s.log.Function("ImportByGenre")

	entries, err := s.scrobbling.GetTopTracksByTag(ctx, tag, limit)
	if err != nil {
		return ImportResult{}, log.Err("failed to fetch tag track chart", err, "tag", tag, "limit", limit)
	}

	result, err := s.importEntries(ctx, entries, true)
	log.Info("Genre track import finished",
		"tag", tag,
		"processed", result.Processed,
		"independent", result.Imported,
	)
	return result, err
}

func (s *TrackAggregatorService) importEntries(
	ctx context.Context,
	entries []types.ScrobbleTrack,
	independentOnly bool,
) (ImportResult, error) {
	log := s.log.Function("importEntries")

	var result ImportResult
	for i, entry := range entries {
		if i > 0 {
			if err := pause(ctx, s.options.EntityDelay); err != nil {
				return result, err
			}
		}

		result.Processed++
		artist, err := s.importTrack(ctx, entry)
		if err != nil {
			log.Warn("Skipping track", "name", entry.Name, "artist", entry.ArtistName, "error", err)
			continue
		}

		if independentOnly && !artist.IsIndependent {
			continue
		}
		result.Imported++
	}

	return result, nil
}

// importTrack stores one chart entry and returns the owning artist.
func (s *TrackAggregatorService) importTrack(
	ctx context.Context,
	entry types.ScrobbleTrack,
) (*models.UnifiedArtist, error) {
	artist, err := s.artists.EnsureArtist(ctx, entry.ArtistName)
	if err != nil {
		return nil, err
	}

	track, created, err := s.tracks.FindOrCreate(ctx, entry.Name, artist)
	if err != nil {
		return nil, err
	}
	if created {
		s.log.Function("importTrack").Info("Created track", "name", track.Name, "artist", artist.Name)
	}

	now := s.now()
	metrics := track.CurrentMetrics()

	if entry.Listeners > 0 || entry.Playcount > 0 {
		setTrackScrobbleID(track, entry)
		metrics.SetScrobbling(entry.Listeners, entry.Playcount, now)
		if track.DurationMs == 0 {
			track.DurationMs = entry.DurationMs
		}
	} else {
		s.refreshScrobbling(ctx, track, &metrics, now)
	}

	if created || track.ExternalID(types.ProviderSpotify) == "" {
		s.refreshStreaming(ctx, track, artist.Name, &metrics, now)
	}

	if len(track.Genres) == 0 && len(artist.Genres) > 0 {
		track.Genres = artist.Genres
	}

	track.SetMetrics(metrics)
	if err := s.tracks.SaveMetrics(ctx, track); err != nil {
		return nil, err
	}

	return artist, nil
}

// UpdateAllTrackMetrics refreshes every stored track. Per-track failures are
// logged and skipped.
func (s *TrackAggregatorService) UpdateAllTrackMetrics(ctx context.Context) (ImportResult, error) {
	log := s.log.Function("UpdateAllTrackMetrics")
	defer log.Timer("Track metrics refresh")()

	tracks, err := s.tracks.ListAll(ctx)
	if err != nil {
		return ImportResult{}, log.Err("failed to list tracks", err)
	}

	var result ImportResult
	for i, track := range tracks {
		if i > 0 {
			if err := pause(ctx, s.options.EntityDelay); err != nil {
				return result, err
			}
		}

		result.Processed++
		now := s.now()
		metrics := track.CurrentMetrics()

		s.refreshScrobbling(ctx, track, &metrics, now)
		s.refreshStreaming(ctx, track, track.ArtistName, &metrics, now)

		track.SetMetrics(metrics)
		if err := s.tracks.SaveMetrics(ctx, track); err != nil {
			log.Warn("Failed to refresh track", "trackID", track.ID, "name", track.Name, "error", err)
			continue
		}
		result.Imported++
	}

	log.Info("Track metrics refresh finished",
		"processed", result.Processed,
		"updated", result.Imported,
	)
	return result, nil
}

func (s *TrackAggregatorService) refreshScrobbling(
	ctx context.Context,
	track *models.UnifiedTrack,
	metrics *models.TrackMetrics,
	now time.Time,
) {
	found, err := s.scrobbling.GetTrack(ctx, track.ArtistName, track.Name)
	if err != nil {
		s.log.Function("refreshScrobbling").Warn("Scrobbling lookup failed", "name", track.Name, "error", err)
		return
	}
	if found == nil {
		return
	}

	setTrackScrobbleID(track, *found)
	metrics.SetScrobbling(found.Listeners, found.Playcount, now)
	if track.DurationMs == 0 {
		track.DurationMs = found.DurationMs
	}
}

// refreshStreaming uses the stored streaming ID when there is one. Otherwise
// it searches and accepts the first hit credited to a matching artist name.
func (s *TrackAggregatorService) refreshStreaming(
	ctx context.Context,
	track *models.UnifiedTrack,
	artistName string,
	metrics *models.TrackMetrics,
	now time.Time,
) {
	log := s.log.Function("refreshStreaming")

	var found *types.StreamingTrack
	if id := track.ExternalID(types.ProviderSpotify); id != "" {
		result, err := s.streaming.GetTrack(ctx, id)
		if err != nil {
			log.Warn("Streaming lookup failed", "name", track.Name, "error", err)
			return
		}
		found = result
	} else {
		results, err := s.streaming.SearchTracks(ctx, track.Name, artistName)
		if err != nil {
			log.Warn("Streaming search failed", "name", track.Name, "error", err)
			return
		}
		found = MatchStreamingTrack(results, artistName)
	}

	if found == nil {
		return
	}

	track.SetExternalID(types.ProviderSpotify, found.ID)
	metrics.SetStreaming(found.Popularity, now)
	if found.Album != "" {
		track.Album = found.Album
	}
	if released := utils.ParseReleaseDate(found.ReleaseDate, found.ReleaseDatePrecision); released != nil {
		track.ReleaseDate = released
	}
	if found.DurationMs > 0 {
		track.DurationMs = found.DurationMs
	}
	if len(found.Images) > 0 {
		track.Images = found.Images
	}
}

// MatchStreamingTrack returns the first result with an artist credit that
// matches artistName, or nil.
func MatchStreamingTrack(results []types.StreamingTrack, artistName string) *types.StreamingTrack {
	for i := range results {
		for _, credited := range results[i].ArtistNames {
			if utils.NamesMatch(credited, artistName) {
				return &results[i]
			}
		}
	}
	return nil
}

func setTrackScrobbleID(track *models.UnifiedTrack, entry types.ScrobbleTrack) {
	id := entry.URL
	if id == "" {
		id = entry.MBID
	}
	track.SetExternalID(types.ProviderLastFM, id)
}
