package services

import (
	"context"
	"net/url"
	"strings"

	"chartintel/internal/database"
	"chartintel/internal/types"

	logger "github.com/Bparsons0904/goLogger"
)

type RegistryClient interface {
	types.ArtistSearcher[types.RegistryArtist]
	types.ArtistGetter[types.RegistryArtist]
}

// BridgedIDs are the identifiers a registry record links to. The listen
// tracking ID is the registry ID itself.
type BridgedIDs struct {
	SpotifyID      *string `json:"spotifyId,omitempty"`
	LastFMID       *string `json:"lastfmId,omitempty"`
	ListenBrainzID *string `json:"listenbrainzId,omitempty"`
	Label          string  `json:"label,omitempty"`
}

type resolvedID struct {
	ID string `json:"id"`
}

type IdentityResolverService struct {
	registry RegistryClient
	cache    database.CacheClient
	log      logger.Logger
}

// NewIdentityResolverService takes an optional cache; nil disables caching.
func NewIdentityResolverService(
	registry RegistryClient,
	cache database.CacheClient,
) *IdentityResolverService {
	return &IdentityResolverService{
		registry: registry,
		cache:    cache,
		log:      logger.New("IdentityResolverService"),
	}
}

// ResolveExternalID returns the registry ID of the top search hit for name,
// or nil when the registry has no match.
func (s *IdentityResolverService) ResolveExternalID(ctx context.Context, name string) (*string, error) {
	log := s.log.Function("ResolveExternalID")

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	key := strings.ToLower(name)
	var cached resolvedID
	if s.cacheGet(ctx, IDENTITY_RESOLVE_CACHE_PATTERN, key, &cached) {
		if cached.ID == "" {
			return nil, nil
		}
		return &cached.ID, nil
	}

	results, err := s.registry.SearchArtists(ctx, name)
	if err != nil {
		return nil, log.Err("failed to search registry", err, "name", name)
	}

	var resolved resolvedID
	if len(results) > 0 && results[0].ID != "" {
		resolved.ID = results[0].ID
	}
	s.cacheSet(ctx, IDENTITY_RESOLVE_CACHE_PATTERN, key, resolved)

	if resolved.ID == "" {
		log.Debug("No registry match", "name", name)
		return nil, nil
	}
	return &resolved.ID, nil
}

// BridgeExternalIDs reads the registry record's relations for streaming and
// scrobbling profile links and the first label. Returns nil when the
// registry does not know registryID.
func (s *IdentityResolverService) BridgeExternalIDs(
	ctx context.Context,
	registryID string,
) (*BridgedIDs, error) {
	log := s.log.Function("BridgeExternalIDs")

	if registryID == "" {
		return nil, nil
	}

	var cached BridgedIDs
	if s.cacheGet(ctx, IDENTITY_BRIDGE_CACHE_PATTERN, registryID, &cached) {
		return &cached, nil
	}

	record, err := s.registry.GetArtist(ctx, registryID)
	if err != nil {
		return nil, log.Err("failed to fetch registry record", err, "registryID", registryID)
	}
	if record == nil {
		return nil, nil
	}

	bridged := BridgeRelations(record.ID, record.Relations)
	s.cacheSet(ctx, IDENTITY_BRIDGE_CACHE_PATTERN, registryID, bridged)

	return bridged, nil
}

// BridgeRelations extracts provider IDs from registry relations. The first
// match of each kind wins.
func BridgeRelations(registryID string, relations []types.RegistryRelation) *BridgedIDs {
	bridged := &BridgedIDs{}
	if registryID != "" {
		id := registryID
		bridged.ListenBrainzID = &id
	}

	for _, rel := range relations {
		if rel.LabelName != "" && bridged.Label == "" {
			bridged.Label = rel.LabelName
		}

		if rel.URL == "" {
			continue
		}

		if bridged.SpotifyID == nil {
			if id := spotifyArtistIDFromURL(rel.URL); id != "" {
				bridged.SpotifyID = &id
				continue
			}
		}

		if bridged.LastFMID == nil {
			if name := lastFMNameFromURL(rel.URL); name != "" {
				bridged.LastFMID = &name
			}
		}
	}

	return bridged
}

// spotifyArtistIDFromURL reads <id> from open.spotify.com/artist/<id>.
func spotifyArtistIDFromURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || !strings.HasSuffix(parsed.Host, "open.spotify.com") {
		return ""
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	for i := 0; i+1 < len(segments); i++ {
		if segments[i] == "artist" {
			return segments[i+1]
		}
	}
	return ""
}

// lastFMNameFromURL reads <name> from last.fm/music/<name>.
func lastFMNameFromURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || !strings.HasSuffix(parsed.Host, "last.fm") {
		return ""
	}

	path := strings.Trim(parsed.EscapedPath(), "/")
	if !strings.HasPrefix(path, "music/") {
		return ""
	}

	segment := strings.SplitN(strings.TrimPrefix(path, "music/"), "/", 2)[0]
	name, err := url.PathUnescape(strings.ReplaceAll(segment, "+", " "))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(name)
}

func (s *IdentityResolverService) cacheGet(ctx context.Context, pattern, key string, out any) bool {
	if s.cache == nil {
		return false
	}

	found, err := database.NewCacheBuilder(s.cache, key).
		WithHashPattern(pattern).
		WithContext(ctx).
		Get(out)
	if err != nil {
		s.log.Function("cacheGet").Warn("Identity cache read failed", "key", key, "error", err)
		return false
	}
	return found
}

func (s *IdentityResolverService) cacheSet(ctx context.Context, pattern, key string, value any) {
	if s.cache == nil {
		return
	}

	err := database.NewCacheBuilder(s.cache, key).
		WithHashPattern(pattern).
		WithStruct(value).
		WithTTL(IdentityCacheTTL).
		WithContext(ctx).
		Set()
	if err != nil {
		s.log.Function("cacheSet").Warn("Identity cache write failed", "key", key, "error", err)
	}
}
