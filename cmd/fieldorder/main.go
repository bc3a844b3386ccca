package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/fieldorder/internal/config"
	"github.com/xxxsen/fieldorder/internal/db"
	"github.com/xxxsen/fieldorder/internal/filestore"
	"github.com/xxxsen/fieldorder/internal/handler"
	"github.com/xxxsen/fieldorder/internal/job"
	"github.com/xxxsen/fieldorder/internal/middleware"
	"github.com/xxxsen/fieldorder/internal/repo"
	"github.com/xxxsen/fieldorder/internal/schedule"
	"github.com/xxxsen/fieldorder/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "fieldorder",
		Short: "field order sharing backend",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run fieldorder server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := bootstrap(configPath)
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()
			return runServer(cfg, conn)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := bootstrap(configPath)
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()
			logutil.GetLogger(context.Background()).Info("migrations applied")
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, migrateCmd, newUserCmd(&configPath), newShareCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

// bootstrap loads config, initializes logging and opens a migrated database.
func bootstrap(configPath string) (*config.Config, *sql.DB, error) {
	if configPath == "" {
		return nil, nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

	conn, err := db.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	return cfg, conn, nil
}

type app struct {
	users       *repo.UserRepo
	collections *repo.FileCollectionRepo
	store       filestore.Store
	auth        *service.AuthService
	shares      *service.ShareService
	shareAdmin  *service.ShareAdminService
	public      *service.PublicShareService
}

func buildApp(ctx context.Context, cfg *config.Config, conn *sql.DB) (*app, error) {
	userRepo := repo.NewUserRepo(conn)
	orderRepo := repo.NewOrderRepo(conn)
	journalRepo := repo.NewJournalRepo(conn)
	photoRepo := repo.NewPhotoRepo(conn)
	timeEntryRepo := repo.NewTimeEntryRepo(conn)
	collectionRepo := repo.NewFileCollectionRepo(conn)
	tokenRepo := repo.NewShareTokenRepo(conn)

	// branding is read once at boot; changes need a restart
	settings, err := repo.NewSettingsRepo(conn).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return nil, fmt.Errorf("init file store: %w", err)
	}

	shares := service.NewShareService(tokenRepo, cfg.Share.MaxLifetimeDays)
	names := service.NewDisplayNames(
		userRepo,
		cfg.DisplayNameCache.Size,
		time.Duration(cfg.DisplayNameCache.TTLSeconds)*time.Second,
	)
	projector := service.NewProjector(service.ProjectorDeps{
		Orders:      orderRepo,
		Journal:     journalRepo,
		Photos:      photoRepo,
		TimeEntries: timeEntryRepo,
		Collections: collectionRepo,
		Names:       names,
	}, nil)
	authorizer := service.NewAuthorizer(orderRepo, collectionRepo)

	return &app{
		users:       userRepo,
		collections: collectionRepo,
		store:       store,
		auth:        service.NewAuthService(userRepo, []byte(cfg.JWTSecret), time.Hour*time.Duration(cfg.JWTTTLHours)),
		shares:      shares,
		shareAdmin:  service.NewShareAdminService(shares, authorizer, cfg.Share.BaseURL),
		public: service.NewPublicShareService(service.PublicShareDeps{
			Shares:          shares,
			Projector:       projector,
			Photos:          photoRepo,
			CollectionFiles: collectionRepo,
			Store:           store,
			Settings:        settings,
			BaseURL:         cfg.Share.BaseURL,
			LinkTTL:         time.Duration(cfg.Share.LinkTTLSeconds) * time.Second,
		}),
	}, nil
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("file_store", cfg.FileStore.Type),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, conn)
	if err != nil {
		return err
	}

	scheduler := schedule.NewCronScheduler(
		schedule.WithRunTimeout(time.Duration(cfg.Housekeeping.JobTimeoutSeconds) * time.Second),
	)
	purgeJob := job.NewCollectionPurgeJob(a.collections, a.store, cfg.Housekeeping.CollectionRetentionDays, nil)
	if err := scheduler.AddJob(purgeJob, cfg.Housekeeping.CollectionPurgeCron); err != nil {
		return fmt.Errorf("schedule %s: %w", purgeJob.Name(), err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	deps := handler.RouterDeps{
		Auth: handler.NewAuthHandler(a.auth),
		Properties: handler.NewPropertiesHandler(handler.Properties{
			Branding:             a.public.Branding(),
			MaxShareLifetimeDays: cfg.Share.MaxLifetimeDays,
		}),
		Shares:          handler.NewShareHandler(a.shareAdmin),
		PublicShares:    handler.NewPublicShareHandler(a.public),
		JWTSecret:       []byte(cfg.JWTSecret),
		PublicRateLimit: time.Duration(cfg.Share.PublicRateLimitMS) * time.Millisecond,
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	engine, err := webapi.NewEngine(
		"/api/v1",
		addr,
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSAllowlist),
			middleware.Metrics(),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", addr))

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
