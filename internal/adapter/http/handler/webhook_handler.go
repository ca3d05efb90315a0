package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"digital-delivery-gateway/internal/core/domain"
	"digital-delivery-gateway/internal/core/ports"
	"digital-delivery-gateway/pkg/apperror"
	"digital-delivery-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Storefront webhook headers.
const (
	HeaderShopDomain = "X-Shopify-Shop-Domain"
	HeaderWebhookID  = "X-Shopify-Webhook-Id"
)

// ackOnlyTopics are verified and recorded, then acknowledged.
var ackOnlyTopics = map[string]bool{
	domain.TopicCustomerDataRequest:    true,
	domain.TopicCustomerDataErasure:    true,
	domain.TopicShopDataErasure:        true,
	domain.TopicAppUninstalled:         true,
	domain.TopicAppSubscriptionsUpdate: true,
}

// WebhookHandler receives storefront webhooks.
type WebhookHandler struct {
	orderSvc       ports.OrderService
	processTimeout time.Duration
	runAsync       func(func())
	log            zerolog.Logger
}

// NewWebhookHandler creates a new WebhookHandler. Paid orders are processed
// on tasks after the response is sent, each with its own processTimeout
// budget. A nil tasks starts plain goroutines.
func NewWebhookHandler(orderSvc ports.OrderService, processTimeout time.Duration, tasks ports.TaskRunner, log zerolog.Logger) *WebhookHandler {
	runAsync := func(f func()) { go f() }
	if tasks != nil {
		runAsync = tasks.Go
	}
	return &WebhookHandler{
		orderSvc:       orderSvc,
		processTimeout: processTimeout,
		runAsync:       runAsync,
		log:            log,
	}
}

// OrdersPaid handles POST /webhooks/orders-paid.
func (h *WebhookHandler) OrdersPaid(c *gin.Context) {
	delivery, ok := h.readDelivery(c, domain.TopicOrdersPaid)
	if !ok {
		return
	}
	if !h.verify(c, delivery) {
		return
	}

	// The storefront only needs to know the delivery arrived.
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()

	h.runAsync(func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.processTimeout)
		defer cancel()

		result, err := h.orderSvc.ProcessPaidOrder(ctx, delivery)
		if err != nil {
			h.log.Error().Err(err).Str("shop_domain", delivery.ShopDomain).Msg("paid order processing failed")
			return
		}
		h.log.Info().
			Str("order_id", result.OrderID).
			Str("outcome", string(result.Outcome)).
			Bool("notified", result.Notified).
			Msg("paid order processed")
	})
}

// Topic handles POST /webhooks/:topic for topics that need no processing.
func (h *WebhookHandler) Topic(c *gin.Context) {
	topic := c.Param("topic")
	if !ackOnlyTopics[topic] {
		response.Error(c, apperror.ErrNotFound("Webhook topic"))
		return
	}

	delivery, ok := h.readDelivery(c, topic)
	if !ok {
		return
	}
	if !h.verify(c, delivery) {
		return
	}
	c.Status(http.StatusOK)
}

// readDelivery reads the raw body exactly once. Verification needs the bytes
// as sent.
func (h *WebhookHandler) readDelivery(c *gin.Context, route string) (domain.WebhookDelivery, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Error(c, apperror.New("VAL_002", "Request body too large", http.StatusRequestEntityTooLarge))
			return domain.WebhookDelivery{}, false
		}
		response.Error(c, apperror.Validation("cannot read request body"))
		return domain.WebhookDelivery{}, false
	}

	return domain.WebhookDelivery{
		Route:      route,
		ShopDomain: c.GetHeader(HeaderShopDomain),
		WebhookID:  c.GetHeader(HeaderWebhookID),
		RawBody:    body,
		Headers:    c.Request.Header.Clone(),
	}, true
}

func (h *WebhookHandler) verify(c *gin.Context, delivery domain.WebhookDelivery) bool {
	verified, err := h.orderSvc.Receive(c.Request.Context(), delivery)
	if verified {
		return true
	}
	if err == nil {
		err = apperror.ErrUnverifiedWebhook()
	}
	response.Error(c, err)
	return false
}
