package handler

import (
	"net/http"
	"time"

	"digital-delivery-gateway/config"
	"digital-delivery-gateway/internal/adapter/http/middleware"
	"digital-delivery-gateway/internal/core/ports"
	"digital-delivery-gateway/pkg/apperror"
	"digital-delivery-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	OrderSvc       ports.OrderService
	DeliverySvc    ports.DeliveryService
	NotifySvc      ports.NotificationService
	SupportSvc     ports.SupportService
	TokenSvc       ports.TokenService
	RateLimitStore middleware.RateLimitStore // nil = rate limiting disabled
	RateLimit      config.RateLimitConfig
	Webhook        config.WebhookConfig
	HealthCheckers []ports.HealthChecker
	Metrics        http.Handler // nil = /metrics not mounted
	APIDocs        *APIDocs     // nil = /swagger not mounted
	Tasks          ports.TaskRunner
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, apperror.ErrNotFound("Resource"))
	})

	// Health check (deep, verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics))
	}
	if deps.APIDocs != nil {
		swagger := r.Group("/swagger")
		{
			swagger.GET("", deps.APIDocs.UI)
			swagger.GET("/spec", deps.APIDocs.Spec)
		}
	}

	rules := middleware.RateLimitRules(deps.RateLimit)

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil || !deps.RateLimit.Enabled {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok || rule.Limit <= 0 {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// --- Storefront webhooks (HMAC verified in the order service) ---
	processTimeout := deps.Webhook.ProcessTimeout
	if processTimeout <= 0 {
		processTimeout = 30 * time.Second
	}
	maxBody := deps.Webhook.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	webhookHandler := NewWebhookHandler(deps.OrderSvc, processTimeout, deps.Tasks, deps.Logger)
	webhooks := r.Group("/webhooks", middleware.MaxBodySize(maxBody))
	{
		webhooks.POST("/orders-paid", webhookHandler.OrdersPaid)
		webhooks.POST("/:topic", webhookHandler.Topic)
	}

	// --- Customer-facing delivery ---
	deliveryHandler := NewDeliveryHandler(deps.DeliverySvc)
	r.GET("/api/getsignedorderurls/:publicOrderId", rl(middleware.GroupListing), deliveryHandler.ListOrderProducts)
	r.GET("/download/:code", rl(middleware.GroupDownload), deliveryHandler.Download)

	// --- Operator endpoints (JWT-authenticated) ---
	if deps.TokenSvc != nil {
		adminHandler := NewAdminHandler(deps.NotifySvc, deps.SupportSvc)
		admin := r.Group("/api/admin", middleware.JWTAdmin(deps.TokenSvc, deps.Logger), middleware.MaxBodySize(1<<16))
		{
			admin.POST("/test-email", adminHandler.SendTestEmail)
			admin.POST("/orders/:publicOrderId/resend", adminHandler.ResendOrderEmail)
			admin.GET("/orders", adminHandler.FindOrders)
		}
	}

	return r
}
