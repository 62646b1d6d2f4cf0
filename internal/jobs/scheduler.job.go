package jobs

import (
	"chartintel/config"
	"chartintel/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

const (
	Hourly          = services.Hourly
	Daily           = services.Daily
	DailyProcessing = services.DailyProcessing
	Weekly          = services.Weekly
)

// RegisterAllJobs registers the pipeline jobs. Jobs are registered even with
// the scheduler disabled so they stay available for manual triggers.
func RegisterAllJobs(
	schedulerService *services.SchedulerService,
	config config.Config,
	services services.Service,
) error {
	log := logger.New("jobs").Function("RegisterAllJobs")
	log.Info("Registering jobs")

	chartImportJob := NewChartImportJob(
		services.ArtistAggregator,
		services.TrackAggregator,
		config.TopChartLimit,
		Hourly,
	)
	if err := schedulerService.AddJob(chartImportJob); err != nil {
		return log.Err("failed to register chart import job", err)
	}

	metricsRefreshJob := NewMetricsRefreshJob(
		services.ArtistAggregator,
		services.TrackAggregator,
		Daily,
	)
	if err := schedulerService.AddJob(metricsRefreshJob); err != nil {
		return log.Err("failed to register metrics refresh job", err)
	}

	scoreRecalculationJob := NewScoreRecalculationJob(services.Scoring, DailyProcessing)
	if err := schedulerService.AddJob(scoreRecalculationJob); err != nil {
		return log.Err("failed to register score recalculation job", err)
	}

	genreImportJob := NewGenreImportJob(
		services.ArtistAggregator,
		services.TrackAggregator,
		config.Tags(),
		config.GenreImportLimit,
		Weekly,
	)
	if err := schedulerService.AddJob(genreImportJob); err != nil {
		return log.Err("failed to register genre import job", err)
	}

	if !config.SchedulerEnabled {
		log.Info("Scheduler disabled, jobs run on manual trigger only")
	}

	log.Info("Registered jobs", "count", schedulerService.GetJobCount())
	return nil
}
