package jobs

import (
	"context"
	"errors"

	"chartintel/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type (
	ArtistMetricsUpdater interface {
		UpdateAllMetrics(ctx context.Context) (services.ImportResult, error)
	}

	TrackMetricsUpdater interface {
		UpdateAllTrackMetrics(ctx context.Context) (services.ImportResult, error)
	}
)

type MetricsRefreshJob struct {
	artists  ArtistMetricsUpdater
	tracks   TrackMetricsUpdater
	schedule services.Schedule
	log      logger.Logger
}

func NewMetricsRefreshJob(
	artists ArtistMetricsUpdater,
	tracks TrackMetricsUpdater,
	schedule services.Schedule,
) *MetricsRefreshJob {
	log := logger.New("metricsRefreshJob")
	log.Info("Creating new metrics refresh job", "schedule", schedule.String())

	return &MetricsRefreshJob{
		artists:  artists,
		tracks:   tracks,
		schedule: schedule,
		log:      log,
	}
}

func (j *MetricsRefreshJob) Name() string {
	return "MetricsRefresh"
}

func (j *MetricsRefreshJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	log.Info("Starting metrics refresh")

	artists, artistErr := j.artists.UpdateAllMetrics(ctx)
	if artistErr != nil {
		log.Er("artist metrics refresh failed", artistErr)
	}

	tracks, trackErr := j.tracks.UpdateAllTrackMetrics(ctx)
	if trackErr != nil {
		log.Er("track metrics refresh failed", trackErr)
	}

	if err := errors.Join(artistErr, trackErr); err != nil {
		return err
	}

	log.Info("Metrics refresh completed successfully",
		"artistsUpdated", artists.Imported,
		"tracksUpdated", tracks.Imported,
	)
	return nil
}

func (j *MetricsRefreshJob) Schedule() services.Schedule {
	return j.schedule
}
