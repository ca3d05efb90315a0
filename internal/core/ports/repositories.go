package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"

	"digital-delivery-gateway/internal/core/domain"
)

// Lookups return (nil, nil) when the row does not exist.

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	// Insert stores the order unless one with the same OrderID exists.
	// inserted is false for a duplicate; that is not an error.
	Insert(ctx context.Context, order *domain.Order) (inserted bool, err error)
	GetByPublicID(ctx context.Context, publicOrderID string) (*domain.Order, error)
	ListPublicIDsByEmailIndex(ctx context.Context, emailIndex string) ([]string, error)
}

// MerchantRepository defines read access to merchant storage profiles.
type MerchantRepository interface {
	GetByShopID(ctx context.Context, shopID string) (*domain.Merchant, error)
}

// CatalogRepository defines read access to variants and products.
type CatalogRepository interface {
	GetVariant(ctx context.Context, variantGID string) (*domain.Variant, error)
	GetProduct(ctx context.Context, productGID string) (*domain.Product, error)
}

// WebhookRequestRepository records every inbound webhook attempt.
type WebhookRequestRepository interface {
	Create(ctx context.Context, req *domain.WebhookRequest) error
}

// DownloadLogRepository records successful ticket redemptions.
type DownloadLogRepository interface {
	Create(ctx context.Context, log *domain.DownloadLog) error
}

// FallbackOrderStore keeps orders the record store could not accept.
type FallbackOrderStore interface {
	// Add fails with domain.ErrDuplicateOrder when the OrderID is already kept.
	Add(ctx context.Context, order *domain.Order) error
}
