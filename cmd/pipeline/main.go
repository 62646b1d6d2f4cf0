package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chartintel/internal/app"
	"chartintel/internal/server"

	logger "github.com/Bparsons0904/goLogger"
)

func gracefulShutdown(
	ctx context.Context,
	app *app.App,
	appServer *server.AppServer,
	done chan bool,
	log logger.Logger,
) {
	log = log.Function("gracefulShutdown")

	<-ctx.Done()

	log.Info("shutting down gracefully, press Ctrl+C again to force")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := appServer.Shutdown(shutdownCtx); err != nil {
		log.Er("Server forced to shutdown", err)
	}

	if err := app.Services.Scheduler.Stop(shutdownCtx); err != nil {
		log.Er("failed to stop scheduler", err)
	}

	log.Info("Server exiting")
	done <- true
}

func main() {
	log := logger.New("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := app.New()
	if err != nil {
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Er("failed to close app", err)
		}
	}()

	server, err := server.New(app)
	if err != nil {
		os.Exit(1)
	}

	if err := app.Start(ctx); err != nil {
		log.Er("failed to start scheduler", err)
		os.Exit(1)
	}

	done := make(chan bool, 1)

	go func() {
		if err := server.Listen(app.Config.ServerPort); err != nil {
			log.Er("server stopped", err)
			stop()
		}
	}()

	go gracefulShutdown(ctx, app, server, done, log)

	<-done
	log.Info("Graceful shutdown complete.")
}
