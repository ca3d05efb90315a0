package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"digital-delivery-gateway/config"
	s3blob "digital-delivery-gateway/internal/adapter/blob/s3"
	httpHandler "digital-delivery-gateway/internal/adapter/http/handler"
	"digital-delivery-gateway/internal/adapter/http/middleware"
	sesNotify "digital-delivery-gateway/internal/adapter/notify/ses"
	"digital-delivery-gateway/internal/adapter/storage/fallback"
	pgStorage "digital-delivery-gateway/internal/adapter/storage/postgres"
	redisStorage "digital-delivery-gateway/internal/adapter/storage/redis"
	"digital-delivery-gateway/internal/background"
	"digital-delivery-gateway/internal/broker"
	"digital-delivery-gateway/internal/core/ports"
	"digital-delivery-gateway/internal/metrics"
	"digital-delivery-gateway/internal/service"
	"digital-delivery-gateway/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("DDG_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("broker", cfg.Broker.Backend).
		Msg("Starting Digital Delivery Gateway")

	gin.SetMode(cfg.Server.Mode)
	metrics.Register()

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// Initialize repositories
	orderRepo := pgStorage.NewOrderRepo(pool)
	merchantRepo := pgStorage.NewMerchantRepo(pool)
	catalogRepo := pgStorage.NewCatalogRepo(pool)
	webhookRepo := pgStorage.NewWebhookRequestRepo(pool)
	downloadLogRepo := pgStorage.NewDownloadLogRepo(pool)

	fallbackStore, err := fallback.Open(cfg.Delivery.FallbackPath, logger.Component(log, "fallback"))
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Delivery.FallbackPath).Msg("Failed to open fallback order store")
	}

	prometheus.MustRegister(metrics.NewCountGauge(
		"fallback_orders_held", "Orders kept in the fallback file", fallbackStore.Len))

	// Initialize adapters
	blobStore := s3blob.NewBlobStore(logger.Component(log, "s3"))
	sesClient, err := sesNotify.NewClient(ctx, cfg.Notify)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize SES client")
	}
	notifier := sesNotify.NewNotifier(sesClient, logger.Component(log, "ses"))

	// Initialize core services
	encSvc, err := service.NewAESEncryptionService(cfg.Encryption.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	verifier := service.NewHMACWebhookVerifier(cfg.Webhook.Secret)

	var indexer ports.EmailIndexer
	if cfg.Encryption.EmailIndexPepper != "" {
		idx, err := service.NewArgon2EmailIndexer(cfg.Encryption.EmailIndexPepper)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize email index")
		}
		indexer = idx
	} else {
		log.Warn().Msg("encryption.email_index_pepper not set, order lookup by email is disabled")
	}

	var tokenSvc ports.TokenService
	if cfg.Admin.JWTSecret != "" {
		tokenSvc = service.NewJWTTokenService(cfg.Admin.JWTSecret, cfg.Admin.Expiry, cfg.Admin.Issuer)
	} else {
		log.Warn().Msg("admin.jwt_secret not set, admin endpoints are disabled")
	}

	replayGuard := redisStorage.NewReplayGuard(rdb)

	// Initialize the download broker
	var ticketBroker ports.DownloadBroker
	switch cfg.Broker.Backend {
	case "redis":
		ticketBroker = redisStorage.NewTicketStore(rdb, service.GenerateSlug, cfg.Broker.SingleUse)
	default:
		memBroker := broker.New(service.GenerateSlug,
			broker.WithSingleUse(cfg.Broker.SingleUse),
			broker.WithLogger(logger.Component(log, "broker")),
		)
		defer memBroker.Close()
		prometheus.MustRegister(metrics.NewCountGauge(
			"download_tickets_live", "Download tickets currently redeemable", memBroker.Len))
		ticketBroker = memBroker
	}

	// Work started after a webhook ack is tracked so shutdown can wait for it
	tasks := background.NewTracker(logger.Component(log, "background"))

	// Initialize business services
	notifySvc := service.NewNotificationService(notifier, cfg.Notify, tasks, logger.Component(log, "notification"))
	orderSvc := service.NewOrderService(
		verifier,
		webhookRepo,
		orderRepo,
		catalogRepo,
		fallbackStore,
		encSvc,
		indexer,
		replayGuard,
		notifySvc,
		cfg.Webhook.ReplayTTL,
		logger.Component(log, "ingestion"),
	)
	assetSvc := service.NewAssetService(
		orderRepo,
		merchantRepo,
		catalogRepo,
		blobStore,
		ticketBroker,
		encSvc,
		cfg.Storage,
		cfg.Delivery,
		logger.Component(log, "assets"),
	)
	deliverySvc := service.NewDeliveryService(
		assetSvc,
		ticketBroker,
		downloadLogRepo,
		cfg.Delivery.ServiceName,
		logger.Component(log, "delivery"),
	)
	supportSvc := service.NewSupportService(orderRepo, encSvc, indexer, notifySvc, logger.Component(log, "support"))

	// Initialize rate limit store
	var rateLimitStore middleware.RateLimitStore
	if cfg.RateLimit.Enabled {
		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
	}

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Load OpenAPI spec for Swagger UI
	specBytes, err := os.ReadFile("docs/api/openapi.yaml")
	if err != nil {
		log.Warn().Err(err).Msg("OpenAPI spec not found, Swagger UI will be unavailable")
	}

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		OrderSvc:       orderSvc,
		DeliverySvc:    deliverySvc,
		NotifySvc:      notifySvc,
		SupportSvc:     supportSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		RateLimit:      cfg.RateLimit,
		Webhook:        cfg.Webhook,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Metrics:        promhttp.Handler(),
		APIDocs:        httpHandler.NewAPIDocs(specBytes),
		Tasks:          tasks,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// No new webhooks arrive now; let acknowledged orders finish
	if err := tasks.Wait(shutdownCtx); err != nil {
		log.Error().Err(err).Int("pending", tasks.Pending()).Msg("Background work abandoned at shutdown")
	}

	log.Info().Int("fallback_orders", fallbackStore.Len()).Msg("Server exited")
}
