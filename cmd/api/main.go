package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/satlab/sat-prep-api/api/swagger"
	"github.com/satlab/sat-prep-api/internal/handler"
	"github.com/satlab/sat-prep-api/internal/middleware"
	"github.com/satlab/sat-prep-api/internal/models"
	"github.com/satlab/sat-prep-api/internal/repository"
	"github.com/satlab/sat-prep-api/internal/service"
	"github.com/satlab/sat-prep-api/pkg/cache"
	"github.com/satlab/sat-prep-api/pkg/config"
	"github.com/satlab/sat-prep-api/pkg/database"
	"github.com/satlab/sat-prep-api/pkg/logger"
	corsmiddleware "github.com/satlab/sat-prep-api/pkg/middleware/cors"
	reqidmiddleware "github.com/satlab/sat-prep-api/pkg/middleware/requestid"
)

// @title SAT Prep API
// @version 1.0.0
// @description Backend for SAT preparation: quizzes, practice exams, flashcards, and performance rankings
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	validate := validator.New()
	metricsService := service.NewMetricsService()

	// Redis is optional: without it the flashcard cache degrades to
	// direct reads.
	var cacheRepo service.CacheRepository
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
	} else {
		repo := repository.NewCacheRepository(redisClient, logr)
		defer repo.Close() //nolint:errcheck
		cacheRepo = repo
	}
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Flashcards.CacheTTL, logr, cacheRepo != nil)

	userRepo := repository.NewUserRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	examRepo := repository.NewExamRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	flashcardRepo := repository.NewFlashcardRepository(db)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "sat-prep-api",
	})

	statsService := service.NewStatsService(progressRepo, statsRepo, userRepo, metricsService, logr)
	refreshTrigger := service.NewRefreshTrigger(statsService, service.RefreshTriggerConfig{
		RefreshTimeout: cfg.Stats.RefreshTimeout,
		Workers:        cfg.Stats.QueueWorkers,
		BufferSize:     cfg.Stats.QueueBuffer,
		MaxRetries:     cfg.Stats.QueueRetries,
	}, logr)

	quizService := service.NewQuizService(quizRepo, progressRepo, refreshTrigger, validate, logr)
	examService := service.NewExamService(examRepo, progressRepo, refreshTrigger, validate, logr)
	flashcardService := service.NewFlashcardService(flashcardRepo, cacheService, cfg.Flashcards.CacheTTL, validate, logr)
	exportService := service.NewExportService(progressRepo, statsService, quizRepo, logr)

	authHandler := handler.NewAuthHandler(authService)
	statsHandler := handler.NewStatsHandler(statsService)
	quizHandler := handler.NewQuizHandler(quizService)
	examHandler := handler.NewExamHandler(examService)
	flashcardHandler := handler.NewFlashcardHandler(flashcardService)
	exportHandler := handler.NewExportHandler(exportService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)
		auth.GET("/me", middleware.JWT(authService), authHandler.Me)
	}

	// Catalogs are browsable without an account.
	catalog := api.Group("", middleware.OptionalJWT(authService))
	{
		catalog.GET("/quizzes/topics", quizHandler.ListTopics)
		catalog.GET("/exams", examHandler.List)
	}

	protected := api.Group("", middleware.JWT(authService))
	{
		protected.GET("/stats/me", statsHandler.MyStats)
		protected.GET("/stats/me/rankings", statsHandler.MyRankings)
		protected.GET("/stats/users/:id", middleware.RequireRoles(models.RoleAdmin), statsHandler.UserStats)

		protected.POST("/quizzes/submissions", quizHandler.Submit)

		protected.POST("/exams/submissions", examHandler.Submit)

		decks := protected.Group("/flashcards/decks")
		{
			decks.GET("", flashcardHandler.ListDecks)
			decks.POST("", flashcardHandler.CreateDeck)
			decks.DELETE("/:id", flashcardHandler.DeleteDeck)
			decks.GET("/:id/cards", flashcardHandler.ListCards)
			decks.POST("/:id/cards", flashcardHandler.CreateCard)
			decks.DELETE("/:id/cards/:cardId", flashcardHandler.DeleteCard)
		}

		if cfg.Exports.Enabled {
			protected.GET("/exports/progress", middleware.RequirePlan(models.PlanPremium), exportHandler.ProgressReport)
		}

		protected.GET("/metrics/snapshot", middleware.RequireRoles(models.RoleAdmin), metricsHandler.Snapshot)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	refreshTrigger.Start(ctx)
	defer refreshTrigger.Stop()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}
