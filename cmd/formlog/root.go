package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/formlog/internal/config"
	"github.com/JonMunkholm/formlog/internal/core"
	"github.com/JonMunkholm/formlog/internal/database"
	"github.com/JonMunkholm/formlog/internal/i18n"
	"github.com/JonMunkholm/formlog/internal/logging"
	"github.com/spf13/cobra"
)

// envFile is loaded before configuration is read from the environment.
var envFile string

var rootCmd = &cobra.Command{
	Use:   "formlog",
	Short: "Form log maintenance and exports",
	Long: `formlog works on the form submission log stored in PostgreSQL.

Configuration is read from the environment (and the --env-file) exactly as
the server reads it, so exports use the same profiles and labels.`,
	SilenceUsage: true,
}

// Execute runs the root command. SIGINT and SIGTERM cancel the running command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "env file to load (missing files are ignored)")
}

// loadConfig reads configuration and sets up logging on stderr.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format))
	return cfg, nil
}

// openService connects to the database and builds a service with the
// configured profiles and labels. The returned func closes the pool.
func openService(ctx context.Context, cfg *config.Config) (*core.Service, func(), error) {
	profiles, err := core.LoadProfiles(cfg.Export.ProfilesFile)
	if err != nil {
		return nil, nil, err
	}
	catalog, err := i18n.Load(cfg.Export.LabelsFile, cfg.Export.DefaultLanguage)
	if err != nil {
		return nil, nil, err
	}

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	core.ExportTimeout = cfg.Export.Timeout
	svc := core.NewService(database.New(pool),
		core.WithProfiles(profiles),
		core.WithLabels(catalog),
	)
	return svc, pool.Close, nil
}
