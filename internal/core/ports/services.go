package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"
	"net/http"
	"time"

	"digital-delivery-gateway/internal/core/domain"
)

// EncryptionService handles AES-256-GCM encryption/decryption.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// WebhookVerifier authenticates storefront webhooks against the raw body.
type WebhookVerifier interface {
	Verify(rawBody []byte, headers http.Header) bool
}

// EmailIndexer derives a deterministic lookup key from a customer email.
type EmailIndexer interface {
	Index(email string) string
}

// TokenService handles admin JWT operations.
type TokenService interface {
	Generate(subject string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Subject string
	Scope   string
}

// ReplayGuard remembers webhook delivery ids.
type ReplayGuard interface {
	// CheckAndSet atomically records id under scope.
	// Returns true if the id is new, false if it was seen within ttl.
	CheckAndSet(ctx context.Context, scope string, id string, ttl time.Duration) (bool, error)
	// Forget removes id so the next delivery is treated as new.
	Forget(ctx context.Context, scope string, id string) error
}

// TaskRunner runs work after the caller has returned.
type TaskRunner interface {
	Go(f func())
}

// DownloadBroker maps short slugs to resolved assets for a limited time.
type DownloadBroker interface {
	Issue(ctx context.Context, asset domain.ResolvedAsset, ttl time.Duration) (string, error)
	// Redeem returns domain.ErrTicketNotFound for unknown or expired slugs.
	Redeem(ctx context.Context, slug string) (*domain.DownloadTicket, error)
}

// BlobStore produces time-limited URLs for stored objects.
type BlobStore interface {
	SignedURL(ctx context.Context, creds domain.StorageCredentials, key string, ttl time.Duration) (string, error)
}

// Notifier delivers a transactional email and returns the provider message id.
type Notifier interface {
	Send(ctx context.Context, msg domain.EmailMessage) (string, error)
}

// --- Service Ports (Business Logic) ---

// OrderService ingests paid-order webhooks.
type OrderService interface {
	// Receive verifies and records a delivery. The caller acks when true.
	Receive(ctx context.Context, delivery domain.WebhookDelivery) (bool, error)
	// ProcessPaidOrder runs after the ack.
	ProcessPaidOrder(ctx context.Context, delivery domain.WebhookDelivery) (*domain.IngestResult, error)
}

// AssetService resolves an order into deliverable products.
type AssetService interface {
	ResolveOrderAssets(ctx context.Context, publicOrderID string) ([]domain.DeliverableProduct, error)
}

// DeliveryService backs the customer-facing listing and download endpoints.
type DeliveryService interface {
	ListProducts(ctx context.Context, publicOrderID string) ([]domain.DeliverableProduct, error)
	Redeem(ctx context.Context, slug string, clientIP string) (*domain.DownloadTicket, error)
}

// NotificationService composes and sends customer emails.
type NotificationService interface {
	SendOrderReady(ctx context.Context, toEmail string, publicOrderID string) (string, error)
	// Dispatch sends in the background; failures are only logged.
	Dispatch(toEmail string, publicOrderID string)
	SendTestEmail(ctx context.Context) (string, error)
}

// SupportService backs the admin endpoints.
type SupportService interface {
	ResendOrderEmail(ctx context.Context, publicOrderID string) (string, error)
	FindOrdersByEmail(ctx context.Context, email string) ([]string, error)
}
