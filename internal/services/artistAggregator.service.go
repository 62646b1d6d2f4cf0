package services

import (
	"context"
	"strings"
	"time"

	"chartintel/internal/models"
	"chartintel/internal/repositories"
	"chartintel/internal/scoring"
	"chartintel/internal/types"
	"chartintel/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

// Provider capabilities the aggregators depend on.
type (
	StreamingArtistClient interface {
		types.ArtistSearcher[types.StreamingArtist]
		types.ArtistGetter[types.StreamingArtist]
	}

	ScrobbleArtistClient interface {
		types.ArtistSearcher[types.ScrobbleArtist]
		types.ArtistGetter[types.ScrobbleArtist]
		types.TopArtistLister[types.ScrobbleArtist]
		GetTopArtistsByTag(ctx context.Context, tag string, limit int) ([]types.ScrobbleArtist, error)
	}

	ListenArtistClient interface {
		types.ArtistGetter[types.ListenArtist]
		types.TopArtistLister[types.ListenArtist]
	}

	IdentityResolver interface {
		ResolveExternalID(ctx context.Context, name string) (*string, error)
		BridgeExternalIDs(ctx context.Context, registryID string) (*BridgedIDs, error)
	}
)

// ImportResult separates what an import looked at from what it counted.
// Imported means persisted, except for genre imports where only independent
// artists count.
type ImportResult struct {
	Processed int `json:"processed"`
	Imported  int `json:"imported"`
}

type AggregatorOptions struct {
	EntityDelay time.Duration
	Thresholds  scoring.Thresholds
}

type ArtistAggregatorService struct {
	artists     repositories.UnifiedArtistRepository
	streaming   StreamingArtistClient
	scrobbling  ScrobbleArtistClient
	listens     ListenArtistClient
	identity    IdentityResolver
	transaction Transactor
	options     AggregatorOptions
	now         func() time.Time
	log         logger.Logger
}

func NewArtistAggregatorService(
	artists repositories.UnifiedArtistRepository,
	streaming StreamingArtistClient,
	scrobbling ScrobbleArtistClient,
	listens ListenArtistClient,
	identity IdentityResolver,
	transaction Transactor,
	options AggregatorOptions,
) *ArtistAggregatorService {
	return &ArtistAggregatorService{
		artists:     artists,
		streaming:   streaming,
		scrobbling:  scrobbling,
		listens:     listens,
		identity:    identity,
		transaction: transaction,
		options:     options,
		now:         func() time.Time { return time.Now().UTC() },
		log:         logger.New("ArtistAggregatorService"),
	}
}

// ImportFromTopChart imports the scrobbling service's global artist chart.
func (s *ArtistAggregatorService) ImportFromTopChart(ctx context.Context, limit int) (ImportResult, error) {
	log := s.log.Function("ImportFromTopChart")
	defer log.Timer("Top chart artist import")()

	entries, err := s.scrobbling.GetTopArtists(ctx, limit, types.WindowWeek)
	if err != nil {
		return ImportResult{}, log.Err("failed to fetch top artist chart", err, "limit", limit)
	}

	result, err := s.importScrobbleEntries(ctx, entries, false)
	log.Info("Top chart artist import finished",
		"processed", result.Processed,
		"imported", result.Imported,
	)
	return result, err
}

// ImportByGenre imports a tag chart. Only artists that end up independent
// are counted as imported; the others are still stored.
func (s *ArtistAggregatorService) ImportByGenre(
	ctx context.Context,
	tag string,
	limit int,
) (ImportResult, error) {
	log := s.log.Function("ImportByGenre")

	entries, err := s.scrobbling.GetTopArtistsByTag(ctx, tag, limit)
	if err != nil {
		return ImportResult{}, log.Err("failed to fetch tag chart", err, "tag", tag, "limit", limit)
	}

	result, err := s.importScrobbleEntries(ctx, entries, true)
	log.Info("Genre artist import finished",
		"tag", tag,
		"processed", result.Processed,
		"independent", result.Imported,
	)
	return result, err
}

// ImportFromListenTracking imports the sitewide listen chart. Entries carry
// registry IDs, so no name search is needed to bridge them.
func (s *ArtistAggregatorService) ImportFromListenTracking(
	ctx context.Context,
	limit int,
	window types.TimeWindow,
) (ImportResult, error) {
	log := s.log.Function("ImportFromListenTracking")

	entries, err := s.listens.GetTopArtists(ctx, limit, window)
	if err != nil {
		return ImportResult{}, log.Err("failed to fetch listen chart", err, "limit", limit)
	}

	var result ImportResult
	for i, entry := range entries {
		if i > 0 {
			if err := s.pause(ctx); err != nil {
				return result, err
			}
		}

		result.Processed++
		if _, err := s.importArtist(ctx, entry.Name, entry.MBID, nil, &entry); err != nil {
			log.Warn("Skipping artist", "name", entry.Name, "error", err)
			continue
		}
		result.Imported++
	}

	log.Info("Listen chart artist import finished",
		"processed", result.Processed,
		"imported", result.Imported,
	)
	return result, nil
}

func (s *ArtistAggregatorService) importScrobbleEntries(
	ctx context.Context,
	entries []types.ScrobbleArtist,
	independentOnly bool,
) (ImportResult, error) {
	log := s.log.Function("importScrobbleEntries")

	var result ImportResult
	for i, entry := range entries {
		if i > 0 {
			if err := s.pause(ctx); err != nil {
				return result, err
			}
		}

		result.Processed++
		artist, err := s.importArtist(ctx, entry.Name, entry.MBID, &entry, nil)
		if err != nil {
			log.Warn("Skipping artist", "name", entry.Name, "error", err)
			continue
		}

		if independentOnly && !artist.IsIndependent {
			continue
		}
		result.Imported++
	}

	return result, nil
}

// EnsureArtist returns the stored artist for name, creating and enriching
// it from every provider when it is new.
func (s *ArtistAggregatorService) EnsureArtist(ctx context.Context, name string) (*models.UnifiedArtist, error) {
	return s.importArtist(ctx, name, "", nil, nil)
}

// importArtist finds or creates the artist and merges whatever the entry
// and the providers know. New artists get identity resolution and a
// streaming lookup; existing ones only take the entry's figures.
func (s *ArtistAggregatorService) importArtist(
	ctx context.Context,
	name string,
	registryID string,
	scrobble *types.ScrobbleArtist,
	listen *types.ListenArtist,
) (*models.UnifiedArtist, error) {
	log := s.log.Function("importArtist")

	artist, created, err := s.artists.FindOrCreateByName(ctx, name)
	if err != nil {
		return nil, err
	}

	now := s.now()
	metrics := artist.CurrentMetrics()

	if created {
		log.Info("Created artist", "name", artist.Name)
		s.resolveIdentity(ctx, artist, registryID)
		s.refreshStreaming(ctx, artist, &metrics, now)
	}

	switch {
	case scrobble != nil && (scrobble.Listeners > 0 || scrobble.Playcount > 0):
		artist.SetExternalID(types.ProviderLastFM, scrobble.Name)
		metrics.SetScrobbling(scrobble.Listeners, scrobble.Playcount, now)
	case scrobble != nil || created:
		s.refreshScrobbling(ctx, artist, &metrics, now)
	}

	switch {
	case listen != nil:
		artist.SetExternalID(types.ProviderListenBrainz, listen.MBID)
		if !s.refreshListens(ctx, artist, &metrics, now) {
			metrics.SetListenTracking(listen.ListenCount, listen.ListenerCount, now)
		}
	case created:
		s.refreshListens(ctx, artist, &metrics, now)
	}

	artist.SetMetrics(metrics)
	if err := s.persist(ctx, artist); err != nil {
		return nil, err
	}

	return artist, nil
}

// UpdateAllMetrics refreshes every stored artist from every provider, in
// creation order. Per-artist failures are logged and skipped; only failing
// to list the artists is returned.
func (s *ArtistAggregatorService) UpdateAllMetrics(ctx context.Context) (ImportResult, error) {
	log := s.log.Function("UpdateAllMetrics")
	defer log.Timer("Artist metrics refresh")()

	artists, err := s.artists.ListAll(ctx)
	if err != nil {
		return ImportResult{}, log.Err("failed to list artists", err)
	}

	var result ImportResult
	for i, artist := range artists {
		if i > 0 {
			if err := s.pause(ctx); err != nil {
				return result, err
			}
		}

		result.Processed++
		if err := s.updateArtist(ctx, artist); err != nil {
			log.Warn("Failed to refresh artist", "artistID", artist.ID, "name", artist.Name, "error", err)
			continue
		}
		result.Imported++
	}

	log.Info("Artist metrics refresh finished",
		"processed", result.Processed,
		"updated", result.Imported,
	)
	return result, nil
}

func (s *ArtistAggregatorService) updateArtist(ctx context.Context, artist *models.UnifiedArtist) error {
	now := s.now()
	metrics := artist.CurrentMetrics()

	if artist.RegistryID == nil {
		s.resolveIdentity(ctx, artist, "")
	}

	s.refreshStreaming(ctx, artist, &metrics, now)
	s.refreshScrobbling(ctx, artist, &metrics, now)
	s.refreshListens(ctx, artist, &metrics, now)

	artist.SetMetrics(metrics)
	return s.persist(ctx, artist)
}

// resolveIdentity fills registry and bridged IDs. Failures leave the IDs
// absent; the next refresh tries again.
func (s *ArtistAggregatorService) resolveIdentity(
	ctx context.Context,
	artist *models.UnifiedArtist,
	registryID string,
) {
	log := s.log.Function("resolveIdentity")

	if registryID == "" {
		resolved, err := s.identity.ResolveExternalID(ctx, artist.Name)
		if err != nil {
			log.Warn("Registry lookup failed", "name", artist.Name, "error", err)
			return
		}
		if resolved == nil {
			return
		}
		registryID = *resolved
	}

	artist.SetExternalID(types.ProviderMusicBrainz, registryID)

	bridged, err := s.identity.BridgeExternalIDs(ctx, registryID)
	if err != nil {
		log.Warn("Bridging failed", "name", artist.Name, "registryID", registryID, "error", err)
		return
	}
	if bridged == nil {
		return
	}

	if bridged.SpotifyID != nil {
		artist.SetExternalID(types.ProviderSpotify, *bridged.SpotifyID)
	}
	if bridged.LastFMID != nil {
		artist.SetExternalID(types.ProviderLastFM, *bridged.LastFMID)
	}
	if bridged.ListenBrainzID != nil {
		artist.SetExternalID(types.ProviderListenBrainz, *bridged.ListenBrainzID)
	}
	if artist.Label == "" {
		artist.Label = bridged.Label
	}
}

// refreshStreaming reads streaming metrics by the bridged ID. Artists the
// registry could not link are looked up by a verified name search instead,
// and the matched ID is kept.
func (s *ArtistAggregatorService) refreshStreaming(
	ctx context.Context,
	artist *models.UnifiedArtist,
	metrics *models.ArtistMetrics,
	now time.Time,
) {
	log := s.log.Function("refreshStreaming")

	id := artist.ExternalID(types.ProviderSpotify)

	var found *types.StreamingArtist
	var err error
	if id == "" {
		found, err = s.searchStreaming(ctx, artist.Name)
	} else {
		found, err = s.streaming.GetArtist(ctx, id)
	}
	if err != nil {
		log.Warn("Streaming lookup failed", "name", artist.Name, "error", err)
		return
	}
	if found == nil {
		return
	}

	if id == "" {
		log.Info("Matched streaming artist by name", "name", artist.Name, "spotifyID", found.ID)
		artist.SetExternalID(types.ProviderSpotify, found.ID)
	}

	metrics.SetStreaming(found.Followers, found.Popularity, now)
	if len(found.Genres) > 0 {
		artist.Genres = found.Genres
	}
	if len(found.Images) > 0 {
		artist.Images = found.Images
	}
}

func (s *ArtistAggregatorService) searchStreaming(
	ctx context.Context,
	name string,
) (*types.StreamingArtist, error) {
	results, err := s.streaming.SearchArtists(ctx, name)
	if err != nil {
		return nil, err
	}

	match := bestNameMatch(name, results, func(a types.StreamingArtist) string { return a.Name })
	if match == nil || match.ID == "" {
		return nil, nil
	}
	return match, nil
}

func (s *ArtistAggregatorService) refreshScrobbling(
	ctx context.Context,
	artist *models.UnifiedArtist,
	metrics *models.ArtistMetrics,
	now time.Time,
) {
	lookup := artist.ExternalID(types.ProviderLastFM)
	byName := lookup == ""
	if byName {
		lookup = artist.Name
	}

	found, err := s.scrobbling.GetArtist(ctx, lookup)
	if err == nil && found == nil && byName {
		found, err = s.searchScrobbling(ctx, artist.Name)
	}
	if err != nil {
		s.log.Function("refreshScrobbling").Warn("Scrobbling lookup failed", "name", artist.Name, "error", err)
		return
	}
	if found == nil {
		return
	}

	artist.SetExternalID(types.ProviderLastFM, found.Name)
	metrics.SetScrobbling(found.Listeners, found.Playcount, now)
	if len(artist.Genres) == 0 && len(found.Tags) > 0 {
		artist.Genres = found.Tags
	}
}

// searchScrobbling finds the scrobbling service's spelling of name when the
// exact lookup misses, then fetches that artist's full statistics.
func (s *ArtistAggregatorService) searchScrobbling(
	ctx context.Context,
	name string,
) (*types.ScrobbleArtist, error) {
	results, err := s.scrobbling.SearchArtists(ctx, name)
	if err != nil {
		return nil, err
	}

	match := bestNameMatch(name, results, func(a types.ScrobbleArtist) string { return a.Name })
	if match == nil || match.Name == name {
		return nil, nil
	}
	return s.scrobbling.GetArtist(ctx, match.Name)
}

// bestNameMatch picks the search result to trust for name: a case-insensitive
// exact match first, otherwise the first result that passes NamesMatch.
func bestNameMatch[T any](name string, results []T, nameOf func(T) string) *T {
	for i := range results {
		if strings.EqualFold(strings.TrimSpace(nameOf(results[i])), strings.TrimSpace(name)) {
			return &results[i]
		}
	}
	for i := range results {
		if utils.NamesMatch(name, nameOf(results[i])) {
			return &results[i]
		}
	}
	return nil
}

// refreshListens reports whether listen statistics were found.
func (s *ArtistAggregatorService) refreshListens(
	ctx context.Context,
	artist *models.UnifiedArtist,
	metrics *models.ArtistMetrics,
	now time.Time,
) bool {
	id := artist.ExternalID(types.ProviderListenBrainz)
	if id == "" {
		return false
	}

	found, err := s.listens.GetArtist(ctx, id)
	if err != nil {
		s.log.Function("refreshListens").Warn("Listen lookup failed", "name", artist.Name, "error", err)
		return false
	}
	if found == nil {
		return false
	}

	metrics.SetListenTracking(found.ListenCount, found.ListenerCount, now)
	return true
}

// persist re-applies the classifier and writes metrics and independence
// together.
func (s *ArtistAggregatorService) persist(ctx context.Context, artist *models.UnifiedArtist) error {
	artist.IsIndependent = scoring.IsIndependent(
		scoring.ClassifierInputFor(artist),
		s.options.Thresholds,
	)

	return s.transaction.Execute(ctx, func(txCtx context.Context, _ *gorm.DB) error {
		if err := s.artists.SaveMetrics(txCtx, artist); err != nil {
			return err
		}
		return s.artists.SaveIndependence(txCtx, artist)
	})
}

func (s *ArtistAggregatorService) pause(ctx context.Context) error {
	return pause(ctx, s.options.EntityDelay)
}

// pause sleeps for delay unless ctx ends first.
func pause(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
