package jobs

import (
	"context"
	"errors"

	"chartintel/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type ScoreRecalculator interface {
	RecalculateArtistScores(ctx context.Context) (services.ImportResult, error)
	RecalculateTrackScores(ctx context.Context) (services.ImportResult, error)
}

// ScoreRecalculationJob runs after the metrics refresh. Artists go first
// because track scoring reads their independence flag.
type ScoreRecalculationJob struct {
	scoring  ScoreRecalculator
	schedule services.Schedule
	log      logger.Logger
}

func NewScoreRecalculationJob(
	scoring ScoreRecalculator,
	schedule services.Schedule,
) *ScoreRecalculationJob {
	log := logger.New("scoreRecalculationJob")
	log.Info("Creating new score recalculation job", "schedule", schedule.String())

	return &ScoreRecalculationJob{
		scoring:  scoring,
		schedule: schedule,
		log:      log,
	}
}

func (j *ScoreRecalculationJob) Name() string {
	return "ScoreRecalculation"
}

func (j *ScoreRecalculationJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	artists, artistErr := j.scoring.RecalculateArtistScores(ctx)
	if artistErr != nil {
		log.Er("artist score recalculation failed", artistErr)
	}

	tracks, trackErr := j.scoring.RecalculateTrackScores(ctx)
	if trackErr != nil {
		log.Er("track score recalculation failed", trackErr)
	}

	if err := errors.Join(artistErr, trackErr); err != nil {
		return err
	}

	log.Info("Score recalculation completed successfully",
		"artistsScored", artists.Imported,
		"tracksScored", tracks.Imported,
	)
	return nil
}

func (j *ScoreRecalculationJob) Schedule() services.Schedule {
	return j.schedule
}
