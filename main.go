package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/IncDrops/breakup/internal/config"
	"github.com/IncDrops/breakup/internal/engine"
	"github.com/IncDrops/breakup/internal/handlers"
	"github.com/IncDrops/breakup/internal/idempotency"
	"github.com/IncDrops/breakup/internal/observability"
	"github.com/IncDrops/breakup/internal/routes"
	"github.com/IncDrops/breakup/internal/services"
	"github.com/IncDrops/breakup/internal/stripeapi"
)

const version = "1.0.0"

func main() {
	// Load .env file for local development
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found - using environment variables")
	}

	cfg := config.Load()

	zlog, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer func() { _ = zlog.Sync() }()

	// Payment provider
	var payments stripeapi.API
	if cfg.UseFakeProvider {
		zlog.Warn("using in-memory payment provider (not for production!)")
		payments = stripeapi.NewFake()
	} else {
		payments = stripeapi.NewClient(cfg.StripeSecretKey, stripeapi.DefaultBaseURL)
	}

	// Idempotency store: Redis when configured, provider metadata otherwise
	var guard idempotency.Store
	if cfg.RedisAddr != "" {
		redisStore, err := idempotency.NewRedisStore(idempotency.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			zlog.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer func() { _ = redisStore.Close() }()
		guard = redisStore
		zlog.Info("idempotency store: redis", zap.String("addr", cfg.RedisAddr))
	} else {
		guard = idempotency.NewMetadataStore(payments)
		zlog.Warn("idempotency store: provider metadata (no atomic compare-and-set; set REDIS_ADDR to close the race window)")
	}

	// Services
	gemini := engine.NewGemini(cfg.GeminiAPIKey, engine.DefaultGeminiBaseURL, cfg.GeminiModel, cfg.EngineTimeout)
	broker := services.NewSessionBroker(cfg, payments)
	generation := services.NewGenerationService(gemini, cfg.GeminiModel)
	orch := services.NewOrchestrator(cfg, broker, guard, generation, zlog)

	// Metrics and health on a side listener
	observability.InitMetrics()
	metricsServer := observability.NewServer(":" + cfg.MetricsPort)
	go func() {
		if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("metrics server stopped", zap.Error(err))
		}
	}()

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "Breakup Backend v" + version,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	routes.SetupRoutes(app, handlers.NewGenerateHandler(orch), handlers.NewHealthHandler(version))

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		zlog.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(ctx)
		_ = app.Shutdown()
	}()

	zlog.Info("starting server",
		zap.String("port", cfg.Port),
		zap.String("metrics_port", cfg.MetricsPort))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
