package postgres

import (
	"context"
	"fmt"

	"digital-delivery-gateway/internal/core/domain"
)

// DownloadLogRepo implements ports.DownloadLogRepository.
type DownloadLogRepo struct {
	pool Pool
}

// NewDownloadLogRepo creates a new DownloadLogRepo.
func NewDownloadLogRepo(pool Pool) *DownloadLogRepo {
	return &DownloadLogRepo{pool: pool}
}

// Create appends a download log record.
func (r *DownloadLogRepo) Create(ctx context.Context, l *domain.DownloadLog) error {
	query := `INSERT INTO download_logs (id, event, level, service, variant_id, slug, signed_url_gzip, client_ip, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		l.ID, l.Event, l.Level, l.Service, l.VariantID,
		l.Slug, l.SignedURLGzip, nullIfEmpty(l.ClientIP), l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert download log: %w", err)
	}
	return nil
}
