package postgres

import (
	"context"
	"errors"
	"fmt"

	"digital-delivery-gateway/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// OrderRepo implements ports.OrderRepository.
type OrderRepo struct {
	pool Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(pool Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

// Insert stores the order. The unique key on order_id makes a repeated
// delivery a no-op, reported as inserted == false.
func (r *OrderRepo) Insert(ctx context.Context, o *domain.Order) (bool, error) {
	query := `INSERT INTO orders (order_id, public_order_id, order_number, shop_id, shop_domain,
		customer_id, customer_email_enc, customer_email_index, financial_status, variant_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (order_id) DO NOTHING`

	tag, err := r.pool.Exec(ctx, query,
		o.OrderID, o.PublicOrderID, o.OrderNumber, o.ShopID, o.ShopDomain,
		nullIfEmpty(o.Customer.CustomerID), o.Customer.EmailEnc, nullIfEmpty(o.Customer.EmailIndex),
		o.FinancialStatus, o.VariantIDs, o.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert order: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetByPublicID fetches an order by the identifier embedded in customer links.
func (r *OrderRepo) GetByPublicID(ctx context.Context, publicOrderID string) (*domain.Order, error) {
	query := `SELECT order_id, public_order_id, order_number, shop_id, shop_domain,
		COALESCE(customer_id, ''), customer_email_enc, COALESCE(customer_email_index, ''),
		financial_status, variant_ids, created_at
		FROM orders WHERE public_order_id = $1`

	o := &domain.Order{}
	err := r.pool.QueryRow(ctx, query, publicOrderID).Scan(
		&o.OrderID, &o.PublicOrderID, &o.OrderNumber, &o.ShopID, &o.ShopDomain,
		&o.Customer.CustomerID, &o.Customer.EmailEnc, &o.Customer.EmailIndex,
		&o.FinancialStatus, &o.VariantIDs, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order by public id: %w", err)
	}
	return o, nil
}

// ListPublicIDsByEmailIndex returns the public ids of orders placed with the
// indexed email, newest first.
func (r *OrderRepo) ListPublicIDsByEmailIndex(ctx context.Context, emailIndex string) ([]string, error) {
	query := `SELECT public_order_id FROM orders
		WHERE customer_email_index = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, emailIndex)
	if err != nil {
		return nil, fmt.Errorf("list orders by email index: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}
	return ids, nil
}
