package postgres

import (
	"context"
	"fmt"

	"digital-delivery-gateway/internal/core/domain"
)

// WebhookRequestRepo implements ports.WebhookRequestRepository.
type WebhookRequestRepo struct {
	pool Pool
}

// NewWebhookRequestRepo creates a PostgreSQL-backed WebhookRequestRepo.
func NewWebhookRequestRepo(pool Pool) *WebhookRequestRepo {
	return &WebhookRequestRepo{pool: pool}
}

// Create records one webhook delivery attempt with its raw body.
func (r *WebhookRequestRepo) Create(ctx context.Context, req *domain.WebhookRequest) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO webhook_requests (id, route, shop_domain, webhook_id, body, verified, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		req.ID, req.Route, nullIfEmpty(req.ShopDomain), nullIfEmpty(req.WebhookID),
		req.Body, req.Verified, req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert webhook request: %w", err)
	}
	return nil
}
