package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/rishibpanchal/ReachIQ/internal/api/handlers"
	"github.com/rishibpanchal/ReachIQ/internal/cache/redis"
	"github.com/rishibpanchal/ReachIQ/internal/growth"
	"github.com/rishibpanchal/ReachIQ/internal/metrics"
	"github.com/rishibpanchal/ReachIQ/internal/middleware/ratelimit"
	"github.com/rishibpanchal/ReachIQ/internal/middleware/security"
	"github.com/rishibpanchal/ReachIQ/internal/middleware/validation"
	"github.com/rishibpanchal/ReachIQ/internal/news"
	"github.com/rishibpanchal/ReachIQ/internal/storage"
	"github.com/rishibpanchal/ReachIQ/internal/storage/memory"
	"github.com/rishibpanchal/ReachIQ/internal/storage/sqlite"
	"github.com/rishibpanchal/ReachIQ/pkg/config"
	appLogger "github.com/rishibpanchal/ReachIQ/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting ReachIQ API Server")

	metrics.Init()

	store := newStore(cfg)
	defer store.Close()

	var cache *redis.Client
	if cfg.Redis.Enabled {
		cache, err = redis.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLSec)*time.Second,
		)
		if err != nil {
			appLogger.Warn("Redis unavailable, running without cache", zap.Error(err))
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	modelManager := growth.NewModelManager(cfg.Model.Path)
	pipeline := growth.NewPipeline(modelManager)

	var enricher *news.Enricher
	if cfg.News.Enrich {
		enricher = news.NewEnricher(time.Duration(cfg.News.TimeoutSec) * time.Second)
	}
	newsClient := news.NewClient(
		cfg.News.APIKey,
		cfg.News.BaseURL,
		cfg.News.MaxArticles,
		time.Duration(cfg.News.TimeoutSec)*time.Second,
		enricher,
	)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		IsDevelopment: true,
	}))

	rateLimiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.RateLimit.MaxRequestsPerMinute,
	})
	defer rateLimiter.Stop()
	app.Use(rateLimiter.Middleware())

	app.Use(validation.Middleware(validation.Config{
		MaxBodySize: cfg.Server.BodyLimit,
		Logger:      appLogger.GetLogger(),
	}))

	analyticsHandler := handlers.NewAnalyticsHandler(pipeline, store, cache)
	companiesHandler := handlers.NewCompaniesHandler(store)
	dashboardHandler := handlers.NewDashboardHandler(store)
	newsHandler := handlers.NewNewsHandler(newsClient, cache)
	wsHandler := handlers.NewWebSocketHandler(pipeline, store)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "ReachIQ Growth Curve Prediction API",
			"version": "1.0.0",
			"status":  "running",
		})
	})

	api := app.Group("/api/v1")

	api.Post("/analytics/growth-curve/custom", analyticsHandler.PredictCustom)
	api.Post("/analytics/growth-curve/batch", analyticsHandler.BatchGrowthCurves)
	api.Get("/analytics/growth-curve/:companyID", analyticsHandler.GetGrowthCurve)
	api.Get("/analytics/channels/:companyID", analyticsHandler.GetTopChannels)
	api.Get("/analytics/optimization-insights", analyticsHandler.OptimizationInsights)

	api.Get("/companies", companiesHandler.ListCompanies)
	api.Get("/companies/:companyID", companiesHandler.GetCompany)

	api.Get("/dashboard/stats", dashboardHandler.GetStats)
	api.Get("/news/world", newsHandler.GetWorldNews)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/predictions", websocket.New(wsHandler.HandleConnection))

	app.Get("/metrics", metrics.MetricsHandler())

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}

func newStore(cfg *config.Config) storage.Store {
	switch cfg.Storage.Driver {
	case "sqlite":
		client, err := sqlite.NewClient(cfg.Storage.Path)
		if err != nil {
			appLogger.Fatal("Failed to create SQLite store", zap.Error(err))
		}
		if err := client.InitSchema(cfg.Storage.SeedCount); err != nil {
			appLogger.Fatal("Failed to initialize schema", zap.Error(err))
		}
		return client
	case "memory":
		return memory.NewStore(cfg.Storage.SeedCount)
	default:
		appLogger.Fatal("Unknown storage driver", zap.String("driver", cfg.Storage.Driver))
		return nil
	}
}
