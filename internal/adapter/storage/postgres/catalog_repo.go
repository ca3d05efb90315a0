package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"digital-delivery-gateway/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// CatalogRepo implements ports.CatalogRepository.
type CatalogRepo struct {
	pool Pool
}

// NewCatalogRepo creates a new CatalogRepo.
func NewCatalogRepo(pool Pool) *CatalogRepo {
	return &CatalogRepo{pool: pool}
}

// GetVariant fetches a variant with its file version history.
func (r *CatalogRepo) GetVariant(ctx context.Context, variantGID string) (*domain.Variant, error) {
	query := `SELECT variant_gid, shop_id, product_gid, COALESCE(file_name, ''),
		COALESCE(file_original_name, ''), COALESCE(file_size, 0), file_version_history, created_at
		FROM variants WHERE variant_gid = $1`

	v := &domain.Variant{}
	var history []byte
	err := r.pool.QueryRow(ctx, query, variantGID).Scan(
		&v.VariantGID, &v.ShopID, &v.ProductGID, &v.File.Name,
		&v.File.OriginalName, &v.File.Size, &history, &v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get variant: %w", err)
	}

	if len(history) > 0 {
		if err := json.Unmarshal(history, &v.FileVersionHistory); err != nil {
			return nil, fmt.Errorf("decode file version history of %s: %w", variantGID, err)
		}
	}
	return v, nil
}

// GetProduct fetches a product by its global id.
func (r *CatalogRepo) GetProduct(ctx context.Context, productGID string) (*domain.Product, error) {
	query := `SELECT product_gid, shop_id, title, created_at FROM products WHERE product_gid = $1`

	p := &domain.Product{}
	err := r.pool.QueryRow(ctx, query, productGID).Scan(&p.ProductGID, &p.ShopID, &p.Title, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}
