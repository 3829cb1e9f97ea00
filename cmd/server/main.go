package main

import (
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"
	"go.uber.org/zap"

	config "draftflow/configs"
	"draftflow/internal/api/handlers"
	"draftflow/internal/api/middleware"
	job "draftflow/internal/jobs"
	"draftflow/internal/logger"
	"draftflow/internal/publisher"
	"draftflow/internal/queue"
	"draftflow/internal/repository"
	"draftflow/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "Warning: failed to load environment file:", err)
	}

	cfg := config.LoadConfig()
	logger.InitLogger(cfg.LogLevel, cfg.LogMode)
	defer logger.Log.Sync()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		logger.Log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		logger.Log.Fatal("database is unreachable", zap.Error(err))
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    32 * 1024 * 1024, // 32 MB, featured images only
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			logger.Log.Error("unhandled request error", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Api-Key",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	scheduledContentRepo := repository.NewScheduledContentRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	keywordRepo := repository.NewKeywordRepository(db)
	articleRepo := repository.NewArticleRepository(db)
	aiProviderRepo := repository.NewAiProviderRepository(db)
	integrationRepo := repository.NewIntegrationRepository(db)
	publishHistoryRepo := repository.NewPublishHistoryRepository(db)
	apiKeyRepo := repository.NewApiKeyRepository(db)

	publisherFactory := publisher.NewFactory(*cfg)

	storageService := service.NewStorageService(*cfg)
	mediaService := service.NewMediaService(articleRepo, storageService)
	projectService := service.NewProjectService(projectRepo)
	keywordService := service.NewKeywordService(db, keywordRepo, scheduledContentRepo)
	generationService := service.NewGenerationService(*cfg, scheduledContentRepo, keywordRepo, articleRepo, aiProviderRepo)
	integrationService := service.NewIntegrationService(*cfg, integrationRepo, publisherFactory)
	apiKeyService := service.NewApiKeyService(apiKeyRepo)

	authMiddleware := middleware.NewAuthMiddleware(*cfg, apiKeyService)

	auth := handlers.NewAuthHandler(*cfg, apiKeyService)
	app.Post("/auth/token", auth.ExchangeToken)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	// scheduled jobs, also exposed for manual triggering
	generationScanJob := job.NewGenerationScanJob(scheduledContentRepo, aiProviderRepo, keywordRepo, client, cfg.Scheduler)
	publishScanJob := job.NewPublishScanJob(scheduledContentRepo, client)
	tokenRefreshJob := job.NewTokenRefreshJob(*cfg, integrationRepo)

	scan := handlers.NewScanHandler(generationScanJob, publishScanJob)
	api.Post("/scans/generation", scan.TriggerGenerationScan)
	api.Post("/scans/publish", scan.TriggerPublishScan)

	keyword := handlers.NewKeywordHandler(keywordService, projectService)
	api.Post("/keywords/create", keyword.CreateKeyword)
	api.Get("/keywords", keyword.ListKeywords)
	api.Post("/keywords/remove", keyword.RemoveKeyword)

	content := handlers.NewContentHandler(scheduledContentRepo, projectService, mediaService)
	api.Get("/content", content.ListContent)
	api.Post("/content/schedule", content.ScheduleContent)
	api.Post("/content/approve", content.ApproveContent)
	api.Post("/content/featured-image", content.UploadFeaturedImage)

	integration := handlers.NewIntegrationHandler(integrationService, projectService)
	api.Post("/integrations/create", integration.CreateIntegration)
	api.Get("/integrations", integration.ListIntegrations)
	api.Post("/integrations/test", integration.TestIntegration)
	api.Post("/integrations/remove", integration.RemoveIntegration)

	apiKeys := handlers.NewApiKeyHandler(apiKeyService)
	api.Post("/api_key/new", apiKeys.CreateApiKey)
	api.Get("/api_key/list", apiKeys.ListKeys)
	api.Post("/api_key/remove", apiKeys.RemoveAPIKey)

	// queue workers
	queueW := queue.NewQueue(*cfg, scheduledContentRepo, articleRepo, integrationRepo, publishHistoryRepo, generationService, publisherFactory)

	c := cron.New()
	c.AddFunc(cfg.Scheduler.GenerationCron, generationScanJob.RunScheduled)
	c.AddFunc(cfg.Scheduler.PublishCron, publishScanJob.RunScheduled)
	c.AddFunc(cfg.Scheduler.TokenCron, tokenRefreshJob.RefreshTokens)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeGenerateArticle, queueW.HandleGenerateArticleTask)
		mux.HandleFunc(queue.TaskTypePublishArticle, queueW.HandlePublishArticleTask)

		logger.Log.Info("starting the asynq server")
		if err := server.Run(mux); err != nil {
			logger.Log.Fatal("could not start asynq server", zap.Error(err))
		}
	}()

	go func() {
		if err := app.Listen(cfg.ListenAddr); err != nil {
			logger.Log.Fatal("failed to start server", zap.Error(err))
		}
	}()
	logger.Log.Info("server is running", zap.String("addr", cfg.ListenAddr))

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.Log.Info("shutting down server")

	if err := app.Shutdown(); err != nil {
		logger.Log.Fatal("failed to shut down server", zap.Error(err))
	}

	closeDB(db)
	logger.Log.Info("server shutdown complete")
}
