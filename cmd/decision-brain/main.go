package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OldStager01/decision-brain/api"
	"github.com/OldStager01/decision-brain/internal/audit"
	"github.com/OldStager01/decision-brain/internal/decision"
	"github.com/OldStager01/decision-brain/internal/events"
	"github.com/OldStager01/decision-brain/internal/logger"
	"github.com/OldStager01/decision-brain/internal/metrics"
	"github.com/OldStager01/decision-brain/internal/service"
	"github.com/OldStager01/decision-brain/pkg/config"
	"github.com/OldStager01/decision-brain/pkg/database"
	"github.com/OldStager01/decision-brain/pkg/database/queries"
	"github.com/OldStager01/decision-brain/pkg/models"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	migrate := flag.Bool("migrate", false, "run database migrations and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Setup(cfg.App.LogLevel, cfg.App.Mode)
	logger.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Mode)
	logger.Info("Demo-frozen mode: Learning DISABLED, Exploration DISABLED")

	var db *database.DB
	if cfg.Audit.Enabled || *migrate {
		db, err = database.New(cfg.Database.ToDBConfig())
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		logger.Info("Database connection established")
	}

	if *migrate {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		logger.Info("Running database migrations")
		if err := database.NewMigrator(db).Run(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		logger.Info("Migrations completed successfully")
		return nil
	}

	bus := events.NewEventBus(cfg.Events.BufferSize)
	defer bus.Close()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.Get()
	}

	decider := service.NewDecider(service.Config{
		Engine:    decision.NewEngine(),
		Publisher: events.NewPublisher(bus),
		Metrics:   m,
	})

	var recorder *audit.Recorder
	if db != nil {
		recorder = audit.NewRecorder(
			queries.NewDecisionRepository(db.DB),
			bus.SubscribeBuffered(models.EventTypeDecisionMade, cfg.Audit.BufferSize),
			audit.WithBreaker(audit.NewBreaker(cfg.Audit.BreakerFailures, cfg.Audit.BreakerCooldown)),
			audit.WithWriteTimeout(cfg.Audit.WriteTimeout),
		)
		recorder.Start()
		defer recorder.Stop()
	}

	server := api.NewServer(cfg, api.Dependencies{
		Decider: decider,
		Bus:     bus,
		Metrics: m,
		DB:      db,
	})

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Infof("API server listening on port %d", cfg.API.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdownChan:
		logger.Infof("Received signal %v, shutting down", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}
