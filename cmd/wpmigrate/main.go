package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/wpmigrate/internal/config"
	"github.com/xxxsen/wpmigrate/internal/db"
	"github.com/xxxsen/wpmigrate/internal/repo"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "wpmigrate",
		Short:         "migrate a wordpress site into the blog database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json")

	rootCmd.AddCommand(
		newExportCmd(&configPath),
		newFetchMediaCmd(&configPath),
		newURLMapCmd(&configPath),
		newImportCmd(&configPath),
		newImportAPICmd(&configPath),
		newSyncCmd(&configPath),
		newCheckPostsCmd(&configPath),
		newPublishAllCmd(&configPath),
		newSeedAdminCmd(&configPath),
	)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("command failed", zap.Error(err))
	}
}

// loadConfig reads the config and initialises logging from it.
func loadConfig(configPath string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	if configPath != "" {
		logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
	}
	return cfg, nil
}

func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	conn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	repo.ReadRetryMaxElapsed = cfg.Database.MaxRetry()
	return conn, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
