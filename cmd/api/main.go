package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/johnquangdev/transcript-intel/internal/adapter/handler"
	"github.com/johnquangdev/transcript-intel/internal/adapter/repository"
	"github.com/johnquangdev/transcript-intel/internal/infrastructure/cache"
	"github.com/johnquangdev/transcript-intel/internal/infrastructure/database"
	"github.com/johnquangdev/transcript-intel/internal/infrastructure/events"
	"github.com/johnquangdev/transcript-intel/internal/infrastructure/metrics"
	"github.com/johnquangdev/transcript-intel/internal/infrastructure/storage"
	"github.com/johnquangdev/transcript-intel/internal/usecase/diarization"
	"github.com/johnquangdev/transcript-intel/internal/usecase/namedetect"
	"github.com/johnquangdev/transcript-intel/internal/usecase/postprocess"
	"github.com/johnquangdev/transcript-intel/internal/usecase/speaker"
	"github.com/johnquangdev/transcript-intel/internal/usecase/transcript"
	pkgai "github.com/johnquangdev/transcript-intel/pkg/ai"
	"github.com/johnquangdev/transcript-intel/pkg/config"
	pkgvalidator "github.com/johnquangdev/transcript-intel/pkg/validator"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// Initialize Database
	db, err := database.NewPostgresDB(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	// Production deployments should run cmd/migrate instead
	if cfg.Server.AutoMigrate {
		if cfg.IsProduction() {
			logger.Fatal("AUTO_MIGRATE is enabled in production; run cmd/migrate instead")
		}
		if err := database.AutoMigrate(db, logger); err != nil {
			logger.Fatal("failed to apply migrations", zap.Error(err))
		}
	}

	// Metrics live on a private registry exposed at /metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Name pattern cache
	patternCache, closeCache := newPatternCache(ctx, cfg, logger)
	defer closeCache()

	// Repositories
	transcriptRepo := repository.NewTranscriptRepository(db)
	profileRepo := repository.NewVoiceProfileRepository(db)
	matchRepo := repository.NewSpeakerMatchRepository(db)
	patternRepo := repository.NewNamePatternRepository(db)

	speakerService := speaker.NewService(profileRepo, matchRepo, patternRepo, patternCache, speaker.Options{
		Detection: namedetect.Options{
			IntroductionWindow: cfg.Pipeline.IntroductionWindow(),
			LatePenalty:        cfg.Pipeline.LateDetectionPenalty,
		},
		QualityWarningThreshold: cfg.Pipeline.QualityWarningThreshold,
		ReadRetries:             speaker.DefaultOptions().ReadRetries,
	}, logger)

	deps := transcript.Dependencies{
		Transcripts: transcriptRepo,
		Speakers:    speakerService,
		Metrics:     m,
	}

	// Transcript archive (optional)
	if cfg.Storage.Enabled {
		archive, err := storage.NewMinIOClient(ctx, &cfg.Storage)
		if err != nil {
			logger.Fatal("failed to initialize transcript archive", zap.Error(err))
		}
		deps.Archiver = archive
		logger.Info("transcript archive enabled", zap.String("bucket", cfg.Storage.BucketName))
	}

	// Event publisher (log-only when Kafka is disabled)
	publisher := events.New(&events.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		Enabled: cfg.Kafka.Enabled,
	}, m, logger)
	defer publisher.Close()
	deps.Publisher = publisher

	// AssemblyAI fetcher (optional)
	if cfg.Assembly.APIKey != "" {
		deps.Fetcher = pkgai.NewAssemblyAIClient(&cfg.Assembly, logger)
	} else {
		logger.Warn("ASSEMBLYAI_API_KEY not set; /transcript/assemblyai will reject requests")
	}

	pipeline := transcript.NewService(deps,
		diarization.Options{
			MaxMergeGapMs:           cfg.Pipeline.MaxMergeGapMs,
			ChunkMs:                 cfg.Pipeline.ChunkMs(),
			QualityWarningThreshold: cfg.Pipeline.QualityWarningThreshold,
		},
		postprocess.Options{
			RemoveFillers:           cfg.Pipeline.RemoveFillers,
			CleanSentenceBoundaries: cfg.Pipeline.CleanSentenceBoundaries,
			HighlightLowConfidence:  cfg.Pipeline.HighlightLowConfidence,
			ConfidenceThreshold:     cfg.Pipeline.ConfidenceThreshold,
		},
		logger,
	)

	// Initialize Echo instance
	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true

	e.Use(middleware.RequestID())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("20M"))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderXRequestID},
	}))

	var webhook *handler.AssemblyAIWebhook
	if deps.Fetcher != nil && cfg.Assembly.WebhookSecret != "" {
		webhook = handler.NewAssemblyAIWebhook(pipeline, cfg.Assembly.WebhookHeaderName, cfg.Assembly.WebhookSecret, logger)
	}

	router := handler.NewRouter(
		cfg,
		handler.NewTranscriptHandler(pipeline, logger),
		handler.NewOrganizationHandler(speakerService, logger),
		webhook,
		registry,
		pingDB(db),
		logger,
	)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		logger.Info("starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment),
		)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return
	}
	logger.Info("server stopped gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// newPatternCache picks the cache backend named by CACHE_TYPE. The returned
// func releases it.
func newPatternCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) (speaker.PatternCache, func()) {
	var store cache.Store
	switch cfg.Cache.Type {
	case "redis":
		redisStore, err := cache.NewRedisStore(ctx, cfg.GetRedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		store = redisStore
	case "memory":
		store = cache.NewMemoryStore(time.Minute)
	default:
		logger.Info("name pattern cache disabled")
		return nil, func() {}
	}

	logger.Info("name pattern cache enabled",
		zap.String("type", cfg.Cache.Type),
		zap.Duration("ttl", cfg.Cache.TTL),
	)
	return cache.NewPatternCache(store, cfg.Cache.TTL), func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close cache", zap.Error(err))
		}
	}
}

func pingDB(db *gorm.DB) handler.ReadinessCheck {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
