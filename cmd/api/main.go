// @title SpeakUp API
// @version 1.0
// @description Local API for the SpeakUp speech practice coach.
// @host localhost:8090
// @BasePath /api
// @schemes http
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"speakup/internal/adapter"
	"speakup/internal/adapter/analyzer"
	"speakup/internal/cache"
	"speakup/internal/config"
	"speakup/internal/database"
	"speakup/internal/domain"
	"speakup/internal/handler"
	"speakup/internal/logger"
	"speakup/internal/middleware"
	"speakup/internal/repository"
	"speakup/internal/service"
	"speakup/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
		)

		return err
	}
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Connect to database and apply migrations
	db, err := database.NewSQLXSQLiteDB(cfg.DB.Path)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.RunMigrations(db, "database/migrations"); err != nil {
		appLogger.Fatal("Failed to run migrations", zap.Error(err))
	}
	appLogger.Info("Database ready", zap.String("path", cfg.DB.Path))

	// Initialize repositories
	historyRepository := repository.NewSQLXHistoryRepository(db)
	profileRepository := repository.NewSQLXProfileRepository(db)
	audioStore, err := repository.NewFSAudioStore(cfg.Audio.Dir)
	if err != nil {
		appLogger.Fatal("Failed to initialize audio store", zap.Error(err))
	}

	// Initialize Redis cache when configured; the analyzer works without it.
	var verdictCache domain.Cache
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			appLogger.Warn("Redis unavailable, analysis caching disabled", zap.Error(err))
		} else {
			verdictCache = adapter.NewRedisCacheAdapter(redisClient)
			appLogger.Info("RedisCacheAdapter initialized")
		}
	}

	// Initialize the Gemini analyzer. Without an API key the server still
	// runs; analysis requests report a configuration error.
	var speechAnalyzer domain.SpeechAnalyzer
	if cfg.Analyzer.APIKey != "" {
		llm, err := googleai.New(context.Background(),
			googleai.WithAPIKey(cfg.Analyzer.APIKey),
			googleai.WithDefaultModel(cfg.Analyzer.Model),
		)
		if err != nil {
			appLogger.Fatal("Failed to create Gemini client", zap.Error(err))
		}
		speechAnalyzer = analyzer.NewGeminiAnalyzer(llm)
		appLogger.Info("Gemini analyzer initialized", zap.String("model", cfg.Analyzer.Model))
	} else {
		appLogger.Warn("GEMINI_API_KEY not set, analysis is disabled")
	}

	// Initialize services
	profileService := service.NewProfileService(profileRepository)
	historyService := service.NewHistoryService(historyRepository, audioStore)
	backupService := service.NewBackupService(profileRepository, historyRepository, profileService)
	analysisService := service.NewAnalysisService(speechAnalyzer, historyService, profileService, verdictCache, cfg)
	sessionManager := service.NewSessionManager()
	validator := validation.NewValidator()

	// Initialize handlers
	analysisHandler := handler.NewAnalysisHandler(analysisService, sessionManager, validator)
	historyHandler := handler.NewHistoryHandler(historyService, validator)
	profileHandler := handler.NewProfileHandler(profileService, validator)
	backupHandler := handler.NewBackupHandler(backupService, historyService)
	sessionHandler := handler.NewSessionHandler(sessionManager)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,PUT,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept", MaxAge: 300}))
	app.Use(recover.New())

	// Swagger handler
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API group
	apiGroup := app.Group("/api")

	apiGroup.Post("/analyses", analysisHandler.Analyze)

	apiGroup.Get("/history", historyHandler.List)
	apiGroup.Delete("/history", historyHandler.Clear)
	apiGroup.Get("/history/compare", historyHandler.Compare)
	apiGroup.Get("/history/:id", historyHandler.Get)
	apiGroup.Delete("/history/:id", historyHandler.Delete)
	apiGroup.Get("/history/:id/audio", historyHandler.GetAudio)

	apiGroup.Get("/profile", profileHandler.Get)
	apiGroup.Put("/profile/persona", profileHandler.SetPersona)
	apiGroup.Put("/profile/language", profileHandler.SetLanguage)
	apiGroup.Get("/profile/badges", profileHandler.Badges)

	apiGroup.Get("/backup/export", backupHandler.Export)
	apiGroup.Post("/backup/import", backupHandler.Import)

	apiGroup.Get("/session", sessionHandler.Get)
	apiGroup.Post("/session/recording", sessionHandler.StartRecording)
	apiGroup.Post("/session/reset", sessionHandler.Reset)

	// Start server
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		appLogger.Error("Failed to close database", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
