package jobs

import (
	"context"
	"errors"

	"chartintel/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type ChartImporter interface {
	ImportFromTopChart(ctx context.Context, limit int) (services.ImportResult, error)
}

// ChartImportJob pulls the global artist and track charts.
type ChartImportJob struct {
	artists  ChartImporter
	tracks   ChartImporter
	limit    int
	schedule services.Schedule
	log      logger.Logger
}

func NewChartImportJob(
	artists ChartImporter,
	tracks ChartImporter,
	limit int,
	schedule services.Schedule,
) *ChartImportJob {
	log := logger.New("chartImportJob")
	log.Info("Creating new chart import job", "schedule", schedule.String(), "limit", limit)

	return &ChartImportJob{
		artists:  artists,
		tracks:   tracks,
		limit:    limit,
		schedule: schedule,
		log:      log,
	}
}

func (j *ChartImportJob) Name() string {
	return "ChartImport"
}

// Execute imports artists before tracks so chart tracks find their artists
// already enriched. A failed artist chart does not skip the track chart.
func (j *ChartImportJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	log.Info("Starting chart import")

	artists, artistErr := j.artists.ImportFromTopChart(ctx, j.limit)
	if artistErr != nil {
		log.Er("artist chart import failed", artistErr)
	}

	tracks, trackErr := j.tracks.ImportFromTopChart(ctx, j.limit)
	if trackErr != nil {
		log.Er("track chart import failed", trackErr)
	}

	if err := errors.Join(artistErr, trackErr); err != nil {
		return err
	}

	log.Info("Chart import completed successfully",
		"artistsProcessed", artists.Processed,
		"artistsImported", artists.Imported,
		"tracksProcessed", tracks.Processed,
		"tracksImported", tracks.Imported,
	)
	return nil
}

func (j *ChartImportJob) Schedule() services.Schedule {
	return j.schedule
}
