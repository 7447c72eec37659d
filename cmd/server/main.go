package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codecrafts/backend/internal/analytics"
	"github.com/codecrafts/backend/internal/auth"
	"github.com/codecrafts/backend/internal/cache"
	"github.com/codecrafts/backend/internal/config"
	"github.com/codecrafts/backend/internal/database"
	"github.com/codecrafts/backend/internal/email"
	"github.com/codecrafts/backend/internal/handlers"
	"github.com/codecrafts/backend/internal/logger"
	"github.com/codecrafts/backend/internal/metrics"
	"github.com/codecrafts/backend/internal/middleware"
	"github.com/codecrafts/backend/internal/storage"
	"github.com/codecrafts/backend/internal/telemetry"
	"github.com/codecrafts/backend/internal/views"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg := config.Load()

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Log.Sync() }()

	logger.Log.Info("Code Crafts server starting",
		zap.String("environment", cfg.Environment),
	)

	if err := database.Initialize(); err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	if cfg.JWTSecret == "" {
		logger.Log.Fatal("JWT_SECRET environment variable is required")
	}

	metrics.Initialize()

	// Tracing is opt-in via TRACING_ENABLED; without it the provider stays
	// nil and the tracing middleware is not installed
	tracerProvider, err := telemetry.InitTracer(telemetry.Config{
		ServiceName:  "codecrafts-backend",
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTLPEndpoint,
		Enabled:      cfg.TracingEnabled,
		SamplingRate: cfg.TraceSampleRate,
	})
	if err != nil {
		logger.Warn("tracing unavailable, continuing without it", zap.Error(err))
	} else if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.Warn("tracer shutdown failed", zap.Error(err))
			}
		}()
	}

	// Redis backs unique-viewer estimation; the server runs without it
	var uniqueCounter views.UniqueCounter
	redisClient, err := cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
	if err != nil {
		logger.Warn("Redis unavailable, unique viewer tracking disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
		uniqueCounter = redisClient
	}

	// SES mails the magic links; without it sign-in links are only logged
	var mailer auth.Mailer
	sesService, err := email.NewSESService(cfg.AWSRegion, cfg.EmailFrom, cfg.EmailFromName)
	if err != nil {
		logger.Warn("SES unavailable, magic-link email disabled", zap.Error(err))
	} else {
		mailer = sesService
	}

	authService := auth.NewService(
		[]byte(cfg.JWTSecret),
		mailer,
		cfg.AppBaseURL,
		time.Duration(cfg.MagicLinkTTLMinutes)*time.Minute,
	)

	analyticsService := analytics.NewService(database.DB, logger.Log)

	h := handlers.NewHandlers(analyticsService, authService)
	h.SetViewTracker(views.NewTracker(database.DB, uniqueCounter, logger.Log))

	// S3 stores meme media; without it meme uploads 503 while code posts work
	s3Uploader, err := storage.NewS3Uploader(cfg.AWSRegion, cfg.S3Bucket, cfg.CDNBase)
	if err != nil {
		logger.Warn("S3 unavailable, media uploads disabled", zap.Error(err))
	} else {
		if err := s3Uploader.CheckBucketAccess(context.Background()); err != nil {
			logger.Warn("S3 bucket access check failed", zap.Error(err))
		}
		h.SetUploader(s3Uploader)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if tracerProvider != nil {
		r.Use(middleware.TracingMiddleware("codecrafts-backend"))
	}
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.AppBaseURL}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		status := "ok"
		code := http.StatusOK
		if err := database.Health(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC(),
			"service":   "codecrafts-backend",
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/magic-link", middleware.RateLimitAuth(), h.RequestMagicLink)
			authGroup.GET("/verify", middleware.RateLimitAuth(), h.VerifyMagicLink)
			authGroup.POST("/verify", middleware.RateLimitAuth(), h.VerifyMagicLink)
			authGroup.GET("/me", authService.Middleware(), h.GetMe)
		}

		// Public browsing: the feed, single posts, comments, view ingest
		api.GET("/feed", middleware.RateLimit(), h.GetFeed)
		api.GET("/posts/:id", h.GetPost)
		api.GET("/posts/:id/comments", h.GetComments)
		api.POST("/posts/:id/view", h.RecordView)

		posts := api.Group("/posts")
		{
			posts.Use(authService.Middleware())
			posts.POST("", middleware.RateLimitUpload(), h.CreatePost)
			posts.DELETE("/:id", h.DeletePost)
			posts.POST("/:id/like", h.LikePost)
			posts.DELETE("/:id/like", h.UnlikePost)
			posts.POST("/:id/comments", h.CreateComment)
		}

		comments := api.Group("/comments")
		{
			comments.Use(authService.Middleware())
			comments.DELETE("/:id", h.DeleteComment)
		}

		admin := api.Group("/admin")
		{
			admin.Use(authService.Middleware(), middleware.RequireAdmin())
			admin.GET("/users", h.ListUsers)
		}

		// The dashboard is available to every signed-in user; scope
		// resolution decides whether they see platform-wide or own data.
		dashboard := api.Group("/dashboard")
		{
			dashboard.Use(authService.Middleware())
			dashboard.GET("/stats", h.GetDashboardStats)
			dashboard.GET("/posts", h.GetDashboardPosts)
			dashboard.GET("/posts/:id/insights", h.GetPostInsights)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Log.Info("listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutting down")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Log.Info("server exited")
}
