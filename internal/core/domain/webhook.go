package domain

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Webhook topics accepted from the storefront.
const (
	TopicOrdersPaid             = "orders-paid"
	TopicCustomerDataRequest    = "customer-data-request"
	TopicCustomerDataErasure    = "customer-data-erasure"
	TopicShopDataErasure        = "shop-data-erasure"
	TopicAppUninstalled         = "app-uninstalled"
	TopicAppSubscriptionsUpdate = "app-subscriptions-update"
)

// WebhookDelivery is one inbound webhook POST as received off the wire.
// RawBody is the exact byte sequence that was signed.
type WebhookDelivery struct {
	Route      string
	ShopDomain string
	WebhookID  string
	RawBody    []byte
	Headers    http.Header
}

// WebhookRequest is the audit record of a webhook delivery attempt.
type WebhookRequest struct {
	ID         uuid.UUID `json:"id"`
	Route      string    `json:"route"`
	ShopDomain string    `json:"shop_domain"`
	WebhookID  string    `json:"webhook_id"`
	Body       []byte    `json:"-"`
	Verified   bool      `json:"verified"`
	CreatedAt  time.Time `json:"created_at"`
}
