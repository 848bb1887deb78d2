package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ieltsprep/exam-service/internal/ai"
	"github.com/ieltsprep/exam-service/internal/cache"
	"github.com/ieltsprep/exam-service/internal/config"
	"github.com/ieltsprep/exam-service/internal/events"
	"github.com/ieltsprep/exam-service/internal/handlers"
	"github.com/ieltsprep/exam-service/internal/middleware"
	"github.com/ieltsprep/exam-service/internal/registry"
	"github.com/ieltsprep/exam-service/internal/repositories/postgres"
	"github.com/ieltsprep/exam-service/internal/scoring"
	"github.com/ieltsprep/exam-service/internal/services"
	"github.com/ieltsprep/exam-service/internal/session"
	"github.com/ieltsprep/exam-service/internal/utils"
	"github.com/ieltsprep/exam-service/internal/validator"
	"github.com/ieltsprep/exam-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogger := utils.ToSlog(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Database connection failed", "error", err)
		os.Exit(1)
	}
	if err := pkg.Migrate(db); err != nil {
		logger.Error("Database migration failed", "error", err)
		os.Exit(1)
	}

	var cacheService cache.CacheService = cache.NoopCache{}
	if redisClient, err := pkg.NewRedisClient(cfg); err != nil {
		logger.Warn("Redis unavailable, caching disabled", "error", err)
	} else {
		cacheService = cache.NewRedisCache(redisClient, slogger)
		defer redisClient.Close()
	}

	var publisher events.EventPublisher
	kafkaPublisher, err := events.NewKafkaEventPublisher(events.PublisherConfig{
		KafkaBrokers: cfg.KafkaBrokers,
		TopicName:    cfg.ResultTopic,
		Logger:       slogger,
	})
	if err != nil {
		logger.Warn("Kafka unavailable, events disabled", "error", err)
	} else {
		publisher = kafkaPublisher
		defer kafkaPublisher.Close()
	}

	scoringConfig := scoring.Config{
		SimilarityThreshold: cfg.SimilarityThreshold,
		MinEssayLength:      cfg.MinEssayLength,
		BandScale:           9,
	}
	reg := registry.Default(scoringConfig)
	v := validator.New(reg)
	engine := scoring.NewEngine(reg.Scorer, slogger)
	sessions := session.NewManager(engine, slogger)

	var scorer *ai.Client
	if cfg.AIScorerURL != "" {
		scorer = ai.NewClient(cfg.AIScorerURL, cfg.AIScorerAPIKey, slogger)
	}

	repo := postgres.NewRepository(db)
	testService := services.NewTestService(repo, v, cacheService, publisher, slogger)
	resultService := services.NewResultService(repo, publisher, slogger)
	examService := services.NewExamService(sessions, testService, resultService, scorer, scoringConfig, publisher, slogger)
	curriculumService := services.NewCurriculumService(repo, v, slogger)
	importService := services.NewImportExportService(repo, testService, slogger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.RequestLogger(logger))

	auth := middleware.NewAuthenticator(cfg, logger)

	handlerManager := handlers.NewHandlerManager(
		testService,
		examService,
		resultService,
		curriculumService,
		importService,
		reg,
		logger,
	)
	handlerManager.SetupRoutes(router, auth.RequireAuth())

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Exam service listening", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
}
