package postgres

import (
	"context"
	"errors"
	"fmt"

	"digital-delivery-gateway/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// MerchantRepo implements ports.MerchantRepository.
type MerchantRepo struct {
	pool Pool
}

// NewMerchantRepo creates a new MerchantRepo.
func NewMerchantRepo(pool Pool) *MerchantRepo {
	return &MerchantRepo{pool: pool}
}

// GetByShopID fetches a merchant's storage profile.
func (r *MerchantRepo) GetByShopID(ctx context.Context, shopID string) (*domain.Merchant, error) {
	query := `SELECT shop_id, shop_domain, COALESCE(plan_name, ''),
		COALESCE(s3_access_key_id, ''), COALESCE(s3_secret_access_key_enc, ''),
		COALESCE(s3_bucket_name, ''), COALESCE(s3_region, ''), created_at, updated_at
		FROM merchants WHERE shop_id = $1`

	m := &domain.Merchant{}
	err := r.pool.QueryRow(ctx, query, shopID).Scan(
		&m.ShopID, &m.ShopDomain, &m.PlanName,
		&m.S3.AccessKeyID, &m.S3.SecretAccessKeyEnc,
		&m.S3.BucketName, &m.S3.Region, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get merchant by shop id: %w", err)
	}
	return m, nil
}
