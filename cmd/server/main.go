// @title           Emoji Backend API
// @version         1.0.0
// @description     Backend API for generating emojis from text prompts. Generation and background removal run asynchronously on Replicate and report back through webhooks.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"emoji-backend/docs"
	"emoji-backend/internal/cache"
	"emoji-backend/internal/callback"
	"emoji-backend/internal/config"
	"emoji-backend/internal/database"
	"emoji-backend/internal/events"
	"emoji-backend/internal/handlers"
	"emoji-backend/internal/memstore"
	"emoji-backend/internal/middleware"
	"emoji-backend/internal/pipeline"
	"emoji-backend/internal/replicate"
	"emoji-backend/internal/safety"
	"emoji-backend/internal/services"
	"emoji-backend/internal/supabase"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger depends on the environment, so this one is bootstrapped.
		zap.NewExample().Fatal("Failed to load configuration", zap.Error(err))
	}

	logger := newLogger(cfg)
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.BaseURL != "" {
		baseURL, err := url.Parse(cfg.BaseURL)
		if err == nil {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	// Record store: Postgres when DATABASE_URL is set, in memory otherwise.
	var (
		records services.RecordStore
		pinger  handlers.Pinger
	)
	if cfg.DatabaseURL != "" {
		dbClient, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("Failed to initialize database client", zap.Error(err))
		}
		defer dbClient.Close()

		migrator, err := database.NewMigrator(cfg.DatabaseURL, logger.Named("migrator"))
		if err != nil {
			logger.Fatal("Failed to initialize migrator", zap.Error(err))
		}
		if err := migrator.Run(context.Background()); err != nil {
			logger.Fatal("Migration failed", zap.Error(err))
		}
		migrator.Close()
		logger.Info("Migrations completed successfully")

		records, pinger = dbClient, dbClient
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory record store")
		records = memstore.NewRecordStore()
	}

	// Blob store: Supabase Storage when configured, in memory otherwise.
	var blobs services.BlobStore
	if cfg.SupabaseURL != "" {
		supabaseClient, err := supabase.NewClient(cfg)
		if err != nil {
			logger.Fatal("Failed to initialize Supabase client", zap.Error(err))
		}
		storageClient, err := supabase.NewStorageClient(supabaseClient, cfg.SupabaseStorageBucket)
		if err != nil {
			logger.Fatal("Failed to initialize storage client", zap.Error(err))
		}
		blobs = storageClient
	} else {
		logger.Warn("SUPABASE_URL not set, using in-memory blob store")
		blobs = memstore.NewBlobStore(cfg.BaseURL + "/blobs")
	}

	// Optional cache. Left as a nil interface when Redis is not configured.
	var emojiCache services.EmojiCache
	if cfg.RedisAddr != "" {
		redisCache, err := cache.Connect(cfg.RedisAddr, cfg.RedisCacheTTL)
		if err != nil {
			logger.Warn("Redis unavailable, emoji cache disabled", zap.Error(err))
		} else {
			defer redisCache.Close()
			emojiCache = redisCache
		}
	}

	var publisher events.Publisher = events.NopPublisher{}
	if brokers := cfg.KafkaBrokerList(); len(brokers) > 0 {
		kafkaPublisher, err := events.NewKafkaPublisher(brokers, cfg.KafkaEventsTopic)
		if err != nil {
			logger.Warn("Kafka unavailable, events disabled", zap.Error(err))
		} else {
			publisher = kafkaPublisher
		}
	}
	defer publisher.Close()

	var classifier safety.Classifier
	if cfg.ModerationAPIKey != "" {
		classifier = safety.NewModerationClient(cfg.ModerationAPIBaseURL, cfg.ModerationAPIKey)
	} else {
		logger.Warn("MODERATION_API_KEY not set, using keyword safety classifier")
		classifier = safety.NewKeywordClassifier()
	}

	signer := callback.NewSigner(cfg.WebhookBaseURL, cfg.CallbackSigningSecret, cfg.CallbackTokenTTL)
	replicateClient := replicate.NewClient(
		cfg.ReplicateAPIBaseURL,
		cfg.ReplicateAPIToken,
		cfg.EmojiModelVersion,
		cfg.BackgroundRemovalModelVersion,
		signer,
	)

	var verifier services.FormTokenVerifier
	if cfg.FormTokenSecret != "" {
		verifier = middleware.NewFormTokenVerifier(cfg.FormTokenSecret)
	}

	emojiService := services.NewEmojiService(
		records,
		replicateClient,
		classifier,
		verifier,
		emojiCache,
		publisher,
		logger.Named("emoji"),
		services.EmojiServiceConfig{
			PromptMaxLength: cfg.PromptMaxLength,
			SafetyThreshold: cfg.SafetyThreshold,
			Timeout:         cfg.OutboundTimeout,
		},
	)
	pipelineService := services.NewPipelineService(
		records,
		blobs,
		replicateClient,
		publisher,
		logger.Named("pipeline"),
		cfg.OutboundTimeout,
	)

	router := newRouter(logger, signer,
		handlers.NewHealthHandler(pinger),
		handlers.NewEmojiHandler(emojiService, logger),
		handlers.NewWebhookHandler(pipelineService, logger),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Port), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	return logger
}

func newRouter(
	logger *zap.Logger,
	signer *callback.Signer,
	healthHandler *handlers.HealthHandler,
	emojiHandler *handlers.EmojiHandler,
	webhookHandler *handlers.WebhookHandler,
) *gin.Engine {
	router := gin.New()
	router.Use(middleware.TraceID())
	router.Use(middleware.Logging(logger.Named("http")))
	router.Use(middleware.Recovery(logger))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", healthHandler.Health)

	api := router.Group("/api")

	api.POST("/emojis", emojiHandler.CreateEmoji)
	api.GET("/emojis", emojiHandler.ListEmojis)
	api.GET("/emojis/count", emojiHandler.CountEmojis)
	api.GET("/emojis/featured", emojiHandler.ListFeatured)
	api.GET("/emojis/:id", emojiHandler.GetEmoji)

	// Webhooks authenticate with the per-record callback token instead.
	api.POST("/webhook/save-emoji",
		middleware.WebhookAuth(signer, pipeline.StageGeneration),
		webhookHandler.SaveEmoji)
	api.POST("/webhook/remove-background",
		middleware.WebhookAuth(signer, pipeline.StageBackgroundRemoval),
		webhookHandler.RemoveBackground)

	return router
}
