package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/wpmigrate/internal/config"
	"github.com/xxxsen/wpmigrate/internal/filestore"
	"github.com/xxxsen/wpmigrate/internal/job"
	"github.com/xxxsen/wpmigrate/internal/repo"
	"github.com/xxxsen/wpmigrate/internal/sanitize"
	"github.com/xxxsen/wpmigrate/internal/schedule"
	"github.com/xxxsen/wpmigrate/internal/service"
	"github.com/xxxsen/wpmigrate/internal/wordpress"
)

func newWordPressClient(cfg *config.Config) *wordpress.Client {
	return wordpress.NewClient(cfg.WordPress)
}

func newExportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "export wordpress content to json files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if err := cfg.RequireWordPress(false); err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			_, err = service.NewExportService(newWordPressClient(cfg), cfg.Paths.ExportDir).Run(ctx)
			return err
		},
	}
}

func newFetchMediaCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch-media",
		Short: "download exported media into the file store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			store, err := filestore.New(cfg.FileStore)
			if err != nil {
				return fmt.Errorf("init file store: %w", err)
			}
			ctx, cancel := signalContext()
			defer cancel()
			_, err = service.NewMediaService(store, cfg.Paths.ExportDir, cfg.Media.Timeout(), cfg.Media.Delay()).Run(ctx)
			return err
		},
	}
}

func newURLMapCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "url-map",
		Short: "build redirect mappings from the export",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			_, err = service.NewURLMapService(cfg.Paths.ExportDir, cfg.Paths.URLMappings).Run(ctx)
			return err
		},
	}
}

func newImportCmd(configPath *string) *cobra.Command {
	var strict, fallbackAuthor bool
	cmd := &cobra.Command{
		Use:   "import",
		Short: "import the json export into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("strict") {
				cfg.Import.Strict = strict
			}
			if cmd.Flags().Changed("fallback-author") {
				cfg.Import.FallbackAuthor = fallbackAuthor
			}
			sanitizer, err := sanitize.New(cfg.Import.Sanitizer)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			conn, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer conn.Close()

			svc := service.NewMigrateService(
				repo.NewUserRepo(conn),
				repo.NewMediaRepo(conn),
				repo.NewPostRepo(conn),
				repo.NewPageRepo(conn),
				repo.NewCommentRepo(conn),
				newTaxonomyService(cfg, conn),
				sanitizer,
				service.MigrateOptions{
					ExportDir:      cfg.Paths.ExportDir,
					IDMappingsPath: cfg.Paths.IDMappings,
					EmailDomain:    cfg.SiteDomain(),
					FallbackAuthor: cfg.Import.FallbackAuthor,
					Strict:         cfg.Import.Strict,
				},
			)
			_, err = svc.Run(ctx)
			return err
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when any reference had to be omitted")
	cmd.Flags().BoolVar(&fallbackAuthor, "fallback-author", false, "assign the default author to content whose author is missing")
	return cmd
}

func newTaxonomyService(cfg *config.Config, conn *sql.DB) *service.TaxonomyService {
	return service.NewTaxonomyService(repo.NewCategoryRepo(conn), repo.NewTagRepo(conn), cfg.Import.SlugCacheSize)
}

func newAPIImportService(cfg *config.Config, conn *sql.DB, reimport bool) *service.APIImportService {
	users := repo.NewUserRepo(conn)
	return service.NewAPIImportService(
		newWordPressClient(cfg),
		repo.NewPostRepo(conn),
		repo.NewMediaRepo(conn),
		newTaxonomyService(cfg, conn),
		service.NewAuthorService(users, cfg.AuthorEmail(), cfg.Import.DefaultAuthorName),
		reimport,
	)
}

func newImportAPICmd(configPath *string) *cobra.Command {
	var reimport bool
	cmd := &cobra.Command{
		Use:   "import-api",
		Short: "import posts straight from the wordpress api",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("reimport") {
				cfg.Import.Reimport = reimport
			}
			if err := cfg.RequireWordPress(true); err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			conn, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer conn.Close()
			_, err = newAPIImportService(cfg, conn, cfg.Import.Reimport).Run(ctx)
			return err
		},
	}
	cmd.Flags().BoolVar(&reimport, "reimport", false, "update posts that already exist")
	return cmd
}

func newSyncCmd(configPath *string) *cobra.Command {
	var (
		spec     string
		reimport bool
		now      bool
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "run the api import periodically",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if spec != "" {
				cfg.Sync.Cron = spec
			}
			if cmd.Flags().Changed("reimport") {
				cfg.Import.Reimport = reimport
			}
			if err := cfg.RequireWordPress(true); err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			conn, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer conn.Close()

			syncJob := job.NewPostSyncJob(newAPIImportService(cfg, conn, cfg.Import.Reimport))
			scheduler := schedule.NewCronScheduler()
			if err := scheduler.AddJob(syncJob, cfg.Sync.Cron); err != nil {
				return fmt.Errorf("schedule sync: %w", err)
			}
			scheduler.Start(ctx)
			logger := logutil.GetLogger(ctx)
			if next, ok := scheduler.Next(syncJob.Name()); ok {
				logger.Info("sync scheduled", zap.String("cron", cfg.Sync.Cron), zap.Time("next", next))
			}
			if now {
				if err := scheduler.RunNow(ctx, syncJob.Name()); err != nil {
					return err
				}
			}
			<-ctx.Done()
			logger.Info("stopping sync")
			scheduler.Stop()
			return nil
		},
	}
	cmd.Flags().StringVar(&spec, "cron", "", "five field cron spec, overrides sync.cron")
	cmd.Flags().BoolVar(&reimport, "reimport", false, "update posts that already exist")
	cmd.Flags().BoolVar(&now, "now", false, "run once immediately before waiting for the schedule")
	return cmd
}

func newCheckPostsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check-posts",
		Short: "count posts by status and list the latest",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			conn, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer conn.Close()
			_, err = service.NewPostAdminService(repo.NewPostRepo(conn)).Check(ctx)
			return err
		},
	}
}

func newPublishAllCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "publish-all",
		Short: "mark every post published",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			conn, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer conn.Close()
			_, err = service.NewPostAdminService(repo.NewPostRepo(conn)).PublishAll(ctx)
			return err
		},
	}
}

func newSeedAdminCmd(configPath *string) *cobra.Command {
	var seed service.AdminSeed
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "create the admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if seed.Email == "" {
				seed.Email = os.Getenv("ADMIN_EMAIL")
			}
			if seed.Email == "" {
				seed.Email = "admin@" + cfg.SiteDomain()
			}
			if seed.Name == "" {
				seed.Name = os.Getenv("ADMIN_NAME")
			}
			if seed.Password == "" {
				seed.Password = os.Getenv("ADMIN_PASSWORD")
			}
			ctx, cancel := signalContext()
			defer cancel()
			conn, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer conn.Close()
			_, _, err = service.NewAdminService(repo.NewUserRepo(conn)).Seed(ctx, seed)
			return err
		},
	}
	cmd.Flags().StringVar(&seed.Email, "email", "", "admin email (env ADMIN_EMAIL)")
	cmd.Flags().StringVar(&seed.Name, "name", "", "admin display name (env ADMIN_NAME)")
	cmd.Flags().StringVar(&seed.Password, "password", "", "admin password (env ADMIN_PASSWORD)")
	return cmd
}
