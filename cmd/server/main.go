package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	fulfillmentapp "github.com/dropship/backend/internal/application/fulfillment"
	messagingapp "github.com/dropship/backend/internal/application/messaging"
	orderapp "github.com/dropship/backend/internal/application/order"
	paymentapp "github.com/dropship/backend/internal/application/payment"
	"github.com/dropship/backend/internal/domain/dropship"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/dropship/backend/internal/infrastructure/cache"
	"github.com/dropship/backend/internal/infrastructure/config"
	cjdropship "github.com/dropship/backend/internal/infrastructure/dropship"
	"github.com/dropship/backend/internal/infrastructure/event"
	"github.com/dropship/backend/internal/infrastructure/logger"
	"github.com/dropship/backend/internal/infrastructure/notification"
	korapay "github.com/dropship/backend/internal/infrastructure/payment"
	"github.com/dropship/backend/internal/infrastructure/persistence"
	"github.com/dropship/backend/internal/infrastructure/telemetry"
	"github.com/dropship/backend/internal/interfaces/http/handler"
	"github.com/dropship/backend/internal/interfaces/http/middleware"
	"github.com/dropship/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Dropship Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Initialize database connection with a GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Register database tracing
	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:  cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBSystem: "postgresql",
	}, log)
	if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}

	// Initialize repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	shipmentRepo := persistence.NewGormShipmentRepository(db.DB)
	linehaulRepo := persistence.NewGormLinehaulRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	templateRepo := persistence.NewGormTemplateRepository(db.DB)
	messageLogRepo := persistence.NewGormMessageLogRepository(db.DB)
	triggerHistoryRepo := persistence.NewGormTriggerHistoryRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Idempotency store for webhook dedup and event handlers
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Provider token cache: Redis when reachable, in-memory otherwise
	tokenCache := newTokenCache(cfg.Redis, log)

	// Operator alerts for provider failures
	var alertSink dropship.AlertSink
	if cfg.Messaging.AlertsAddress != "" {
		alertSink = notification.NewEmailAlertSink(cfg.Messaging, cfg.Messaging.AlertsAddress, log)
	} else {
		alertSink = notification.NewLogAlertSink(log)
	}

	// CJ Dropshipping provider with v3-to-v2 fallback dispatch
	cjClient, err := cjdropship.NewCJClient(cjdropship.CJConfigFromApp(cfg.CJ), tokenCache, alertSink, log)
	if err != nil {
		log.Fatal("Failed to create CJ client", zap.Error(err))
	}
	dispatcher := cjdropship.NewFallbackStrategy(cjClient, log)

	// Korapay payment gateway
	gateway, err := korapay.NewKorapayAdapter(korapay.KorapayConfigFromApp(cfg.Korapay), log)
	if err != nil {
		log.Fatal("Failed to create Korapay adapter", zap.Error(err))
	}

	// Event bus, serializer and outbox
	eventSerializer := event.NewEventSerializer()
	eventBus := event.NewInMemoryEventBus(log)

	var eventPublisher shared.EventPublisher = eventBus
	if cfg.Event.ProcessorEnabled {
		// Events are committed to the outbox and delivered asynchronously
		eventPublisher = event.NewDurableEventPublisher(db.DB, event.NewOutboxPublisher(eventSerializer))
	}

	// Application services
	orderService := orderapp.NewService(orderRepo)
	orderService.SetEventPublisher(eventPublisher)

	dispatchService := fulfillmentapp.NewDispatchService(orderRepo, dispatcher, log)
	dispatchService.SetEventPublisher(eventPublisher)

	trackingService := fulfillmentapp.NewTrackingService(orderRepo, shipmentRepo, cjClient, log)
	trackingService.SetEventPublisher(eventPublisher)

	linehaulService := fulfillmentapp.NewLinehaulService(linehaulRepo, cjClient, log)

	chargeService := paymentapp.NewChargeService(gateway, orderRepo, log)
	webhookService := paymentapp.NewWebhookService(gateway, paymentRepo, orderRepo, idempotencyStore, log)
	webhookService.SetEventPublisher(eventPublisher)

	templateService := messagingapp.NewTemplateService(templateRepo)

	// Outbound message channels
	channels := notification.NewRegistry(
		notification.NewEmailChannel(cfg.Messaging, log),
		notification.NewSMSChannel(log),
		notification.NewWhatsAppChannel(log),
	)

	// Message triggers fire off domain events; the idempotent wrapper keeps
	// redelivered events from sending duplicate messages
	triggerService := messagingapp.NewTriggerService(templateRepo, messageLogRepo, triggerHistoryRepo, channels, orderRepo, log)
	eventBus.Subscribe(event.NewIdempotentHandler(triggerService, idempotencyStore, log))

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Outbox processor delivers committed events to the bus
	if cfg.Event.ProcessorEnabled {
		processorConfig := event.DefaultOutboxProcessorConfig()
		if cfg.Event.BatchSize > 0 {
			processorConfig.BatchSize = cfg.Event.BatchSize
		}
		if cfg.Event.PollInterval > 0 {
			processorConfig.PollInterval = cfg.Event.PollInterval
		}
		processorConfig.CleanupEnabled = cfg.Event.CleanupEnabled
		if cfg.Event.CleanupRetention > 0 {
			processorConfig.CleanupRetention = cfg.Event.CleanupRetention
		}

		outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, processorConfig, log)
		if err := outboxProcessor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", processorConfig.BatchSize),
			zap.Duration("poll_interval", processorConfig.PollInterval),
		)
	}

	// Delayed message delivery
	if cfg.Messaging.SchedulerEnabled {
		schedulerConfig := messagingapp.DefaultSchedulerConfig()
		if cfg.Messaging.BatchSize > 0 {
			schedulerConfig.BatchSize = cfg.Messaging.BatchSize
		}
		if cfg.Messaging.PollInterval > 0 {
			schedulerConfig.PollInterval = cfg.Messaging.PollInterval
		}

		triggerScheduler := messagingapp.NewTriggerScheduler(templateRepo, messageLogRepo, triggerHistoryRepo, channels, schedulerConfig, log)
		if err := triggerScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start trigger scheduler", zap.Error(err))
		}
		defer func() {
			if err := triggerScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping trigger scheduler", zap.Error(err))
			}
		}()
	}

	// HTTP handlers
	systemHandler := handler.NewSystemHandler()
	orderHandler := handler.NewOrderHandler(orderService)
	paymentHandler := handler.NewPaymentHandler(chargeService, webhookService)
	fulfillmentHandler := handler.NewFulfillmentHandler(dispatchService, trackingService)
	linehaulHandler := handler.NewLinehaulHandler(linehaulService)
	templateHandler := handler.NewTemplateHandler(templateService)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Liveness endpoint outside API versioning
	engine.GET("/health", healthHandler(db))

	// API routes: storefront and webhook endpoints are public, everything
	// operational sits behind the admin JWT
	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithAdminMiddleware(middleware.JWTAuth(cfg.JWT)),
	)
	r.Register(systemHandler).
		Register(orderHandler).
		Register(paymentHandler)
	r.RegisterAdmin(router.RegistrarFunc(orderHandler.RegisterAdminRoutes)).
		RegisterAdmin(fulfillmentHandler).
		RegisterAdmin(linehaulHandler).
		RegisterAdmin(templateHandler)
	r.Setup()

	// HTTP server
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newTokenCache prefers Redis so provider tokens survive restarts and are
// shared across instances. Falls back to in-memory when Redis is down.
func newTokenCache(cfg config.RedisConfig, log *zap.Logger) dropship.TokenCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unavailable, using in-memory token cache", zap.Error(err))
		_ = client.Close()
		return cache.NewInMemoryTokenCache()
	}
	return cache.NewRedisTokenCache(client, "cj:token:")
}

// healthHandler reports liveness including database reachability
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
