package services

import (
	"context"
	"time"

	"chartintel/internal/models"
	"chartintel/internal/repositories"
	"chartintel/internal/scoring"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScoringService persists the scoring engine's output. It owns the score
// columns and, during recalculation, the independence flag.
type ScoringService struct {
	artists     repositories.UnifiedArtistRepository
	tracks      repositories.UnifiedTrackRepository
	transaction Transactor
	thresholds  scoring.Thresholds
	now         func() time.Time
	log         logger.Logger
}

func NewScoringService(
	artists repositories.UnifiedArtistRepository,
	tracks repositories.UnifiedTrackRepository,
	transaction Transactor,
	thresholds scoring.Thresholds,
) *ScoringService {
	return &ScoringService{
		artists:     artists,
		tracks:      tracks,
		transaction: transaction,
		thresholds:  thresholds,
		now:         func() time.Time { return time.Now().UTC() },
		log:         logger.New("ScoringService"),
	}
}

// RecalculateArtistScores reclassifies every artist against its last known
// scores, then scores it and appends to its history.
func (s *ScoringService) RecalculateArtistScores(ctx context.Context) (ImportResult, error) {
	log := s.log.Function("RecalculateArtistScores")
	defer log.Timer("Artist score recalculation")()

	artists, err := s.artists.ListAll(ctx)
	if err != nil {
		return ImportResult{}, log.Err("failed to list artists", err)
	}

	var result ImportResult
	for _, artist := range artists {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		result.Processed++
		if err := s.scoreArtist(ctx, artist); err != nil {
			log.Warn("Failed to score artist", "artistID", artist.ID, "name", artist.Name, "error", err)
			continue
		}
		result.Imported++
	}

	log.Info("Artist scores recalculated", "processed", result.Processed, "scored", result.Imported)
	return result, nil
}

func (s *ScoringService) scoreArtist(ctx context.Context, artist *models.UnifiedArtist) error {
	now := s.now()

	artist.IsIndependent = scoring.IsIndependent(scoring.ClassifierInputFor(artist), s.thresholds)

	scores := scoring.ScoreArtist(artist.Name, artist.CurrentMetrics(), now)
	artist.RecordScores(scores.Composite, scores.Momentum, scores.Reach, now)

	return s.transaction.Execute(ctx, func(txCtx context.Context, _ *gorm.DB) error {
		if err := s.artists.SaveIndependence(txCtx, artist); err != nil {
			return err
		}
		return s.artists.SaveScores(txCtx, artist)
	})
}

// RecalculateTrackScores scores tracks whose owning artist is independent.
// Other tracks keep whatever scores they had.
func (s *ScoringService) RecalculateTrackScores(ctx context.Context) (ImportResult, error) {
	log := s.log.Function("RecalculateTrackScores")
	defer log.Timer("Track score recalculation")()

	artists, err := s.artists.ListAll(ctx)
	if err != nil {
		return ImportResult{}, log.Err("failed to list artists", err)
	}

	independent := make(map[uuid.UUID]bool, len(artists))
	for _, artist := range artists {
		independent[artist.ID] = artist.IsIndependent
	}

	tracks, err := s.tracks.ListAll(ctx)
	if err != nil {
		return ImportResult{}, log.Err("failed to list tracks", err)
	}

	var result ImportResult
	for _, track := range tracks {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		result.Processed++
		if !independent[track.ArtistID] {
			continue
		}

		now := s.now()
		scores := scoring.ScoreTrack(track.Name, track.CurrentMetrics(), track.ReleaseDate, now)
		track.RecordScores(scores.Composite, scores.Momentum, now)

		if err := s.tracks.SaveScores(ctx, track); err != nil {
			log.Warn("Failed to score track", "trackID", track.ID, "name", track.Name, "error", err)
			continue
		}
		result.Imported++
	}

	log.Info("Track scores recalculated", "processed", result.Processed, "scored", result.Imported)
	return result, nil
}
