package app

import (
	"context"

	"chartintel/config"
	"chartintel/internal/database"
	"chartintel/internal/handlers/middleware"
	"chartintel/internal/jobs"
	"chartintel/internal/repositories"
	"chartintel/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type App struct {
	Database   database.DB
	Middleware middleware.Middleware
	Config     config.Config
	Services   services.Service
	Repos      repositories.Repository
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.New()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	services, err := services.New(db, config)
	if err != nil {
		return &App{}, log.Err("failed to create services", err)
	}

	if err := jobs.RegisterAllJobs(services.Scheduler, config, services); err != nil {
		return &App{}, log.Err("failed to register jobs", err)
	}

	app := &App{
		Database:   db,
		Config:     config,
		Middleware: middleware.New(config),
		Services:   services,
		Repos:      repositories.New(db),
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	nilChecks := []any{
		a.Services.Transaction,
		a.Services.Scheduler,
		a.Services.ArtistAggregator,
		a.Services.TrackAggregator,
		a.Services.Scoring,
		a.Repos.Artist,
		a.Repos.Track,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

// Start arms the scheduler when SCHEDULER_ENABLED is set.
func (a *App) Start(ctx context.Context) error {
	log := logger.New("app").Function("Start")

	if !a.Config.SchedulerEnabled {
		log.Info("Scheduler disabled, not starting")
		return nil
	}

	return a.Services.Scheduler.Start(ctx)
}

func (a *App) Close() (err error) {
	if a.Services.Scheduler != nil {
		if closeErr := a.Services.Scheduler.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
