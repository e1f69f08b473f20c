package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	_ "dealerdir/docs"
	"dealerdir/internal/caching"
	"dealerdir/internal/config"
	"dealerdir/internal/handlers"
	"dealerdir/internal/jobs"
	"dealerdir/internal/jobs/background"
	"dealerdir/internal/logging"
	"dealerdir/internal/metrics"
	"dealerdir/internal/middleware"
	"dealerdir/internal/repositories"
	"dealerdir/internal/routes"
	"dealerdir/internal/services"
	"dealerdir/pkg/database"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

// @title        Dealer Directory API
// @version      1.0
// @description  Dealer directory backend: dealer list, map locations, dealer detail editing and spreadsheet import.
// @host         localhost:8080
// @BasePath     /
func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Env, cfg.Log.Level)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("dealerdir stopped with error", zap.Error(err))
	}
	logger.Info("dealerdir stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("dealerdir starting", zap.String("version", version), zap.String("env", cfg.Env))

	pool, err := database.NewPool(ctx, cfg.DB, logger)
	if err != nil {
		return err
	}
	defer database.Close(pool, logger)

	reg := metrics.NewRegistry(prometheus.DefaultRegisterer)

	dealerRepo := repositories.NewDealerRepository(pool)
	dealerSvc := services.NewDealerService(dealerRepo, logger)

	health := handlers.NewHealthHandlers(version, pool.Ping)

	var tracker caching.ImportTracker
	if cfg.Redis.Addr != "" {
		client := caching.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		defer func() { _ = client.Close() }()
		tracker = caching.NewRedisImportTracker(client)
		health.AddCheck("redis", redisCheck(client))
	} else {
		tracker = caching.NewMemoryImportTracker()
		logger.Info("redis not configured, import lock is process local")
	}

	importer := jobs.NewDealerImporter(dealerRepo, tracker, reg, logger, jobs.ImporterOptions{
		HeaderRows:    cfg.Import.HeaderRows,
		LockTTL:       cfg.Import.LockTTL,
		ArchiveBucket: archiveBucket(cfg.Minio),
	})
	if err := configureImportSources(ctx, cfg, importer, logger); err != nil {
		return err
	}

	scheduler, err := background.NewJobScheduler(importer, logger, background.SchedulerOptions{
		ImportInterval: cfg.Import.Interval,
		ImportOnStart:  cfg.Import.OnStart && importer.HasDefaultSource(),
	})
	if err != nil {
		return err
	}

	e := routes.NewRouter(routes.Dependencies{
		Config:   cfg,
		Logger:   logger,
		Metrics:  reg,
		Gatherer: prometheus.DefaultGatherer,
		Version:  middleware.APIVersion{Version: "v1", Status: "active"},
		Dealers:  handlers.NewDealerHandlers(dealerSvc, reg),
		Imports:  handlers.NewImportHandlers(importer, tracker, cfg.HTTP.MaxUploadBytes),
		Health:   health,
	})

	srv := &http.Server{
		Addr:         net.JoinHostPort("0.0.0.0", strconv.Itoa(cfg.HTTP.Port)),
		Handler:      e,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "serve http")
		}
		return nil
	})
	g.Go(func() error {
		scheduler.Start()
		<-gctx.Done()
		return scheduler.Stop()
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return errors.WithStack(srv.Shutdown(shutdownCtx))
	})

	return g.Wait()
}

// configureImportSources picks the default import source (sheet first, then
// object export) and enables upload archiving.
func configureImportSources(ctx context.Context, cfg *config.Config, importer *jobs.DealerImporter, logger *zap.Logger) error {
	var store services.ObjectStore
	if cfg.Minio.Enabled() {
		s, err := services.NewMinioObjectStore(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
		if err != nil {
			return err
		}
		if err := s.EnsureBucketExists(ctx, cfg.Minio.Bucket); err != nil {
			return err
		}
		store = s
		if cfg.Minio.ArchiveUploads {
			importer.SetArchive(store)
		}
	}

	switch {
	case cfg.Sheets.Enabled():
		source, err := jobs.NewSheetSource(ctx, cfg.Sheets.SpreadsheetID, cfg.Sheets.Range,
			option.WithCredentialsFile(cfg.Sheets.CredentialsFile))
		if err != nil {
			return err
		}
		importer.SetDefaultSource(source)
		logger.Info("default import source configured", zap.String("source", source.Name()))
	case store != nil && cfg.Minio.Object != "":
		source := jobs.NewObjectSource(store, cfg.Minio.Bucket, cfg.Minio.Object)
		importer.SetDefaultSource(source)
		logger.Info("default import source configured", zap.String("source", source.Name()))
	default:
		logger.Info("no default import source, POST /api/import requires an uploaded file")
	}
	return nil
}

func archiveBucket(cfg config.MinioConfig) string {
	if !cfg.Enabled() || !cfg.ArchiveUploads {
		return ""
	}
	return cfg.Bucket
}

func redisCheck(client *redis.Client) handlers.CheckFunc {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
