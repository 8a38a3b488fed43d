package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/formlog/internal/config"
	"github.com/JonMunkholm/formlog/internal/core"
	"github.com/JonMunkholm/formlog/internal/database"
	"github.com/JonMunkholm/formlog/internal/i18n"
	"github.com/JonMunkholm/formlog/internal/logging"
	"github.com/JonMunkholm/formlog/internal/metrics"
	"github.com/JonMunkholm/formlog/internal/web"
)

func main() {
	// Load configuration (.env fills variables the environment does not set)
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"retention_days", cfg.Retention.Days,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"metrics_enabled", cfg.Metrics.Enabled,
	)

	// Connect to database
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	slog.Info("connected to database", "name", database.Name(cfg.Database.URL))

	if cfg.Database.Migrate {
		if err := database.Migrate(ctx, pool); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	// Export profiles and header labels
	profiles, err := core.LoadProfiles(cfg.Export.ProfilesFile)
	if err != nil {
		slog.Error("failed to load export profiles", "error", err)
		os.Exit(1)
	}
	catalog, err := i18n.Load(cfg.Export.LabelsFile, cfg.Export.DefaultLanguage)
	if err != nil {
		slog.Error("failed to load labels", "error", err)
		os.Exit(1)
	}

	slog.Info("export profiles loaded",
		"profiles", profiles.Names(),
		"languages", catalog.Languages(),
	)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	core.ExportTimeout = cfg.Export.Timeout
	service := core.NewService(database.New(pool),
		core.WithProfiles(profiles),
		core.WithLabels(catalog),
		core.WithMetrics(m),
	)

	server := web.NewServer(service, cfg, web.WithCatalog(catalog), web.WithMetrics(m))

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())

	// Start retention scheduler with config values
	go func() {
		err := service.StartRetentionScheduler(jobCtx, core.RetentionConfig{
			Days:     cfg.Retention.Days,
			Schedule: cfg.Retention.Schedule,
		})
		if err != nil {
			slog.Error("retention scheduler failed", "error", err)
		}
	}()

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		// Stop background jobs
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
