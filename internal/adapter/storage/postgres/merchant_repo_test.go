package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"digital-delivery-gateway/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMerchant() *domain.Merchant {
	return &domain.Merchant{
		ShopID:     "gid://shopify/Shop/42",
		ShopDomain: "acme.myshopify.com",
		PlanName:   domain.PlanSelfHosting,
		S3: domain.S3Settings{
			AccessKeyID:        "AKIAMERCHANT",
			SecretAccessKeyEnc: "encrypted_secret",
			BucketName:         "acme-files",
			Region:             "us-west-2",
		},
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
		UpdatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func merchantColumns() []string {
	return []string{"shop_id", "shop_domain", "plan_name", "s3_access_key_id", "s3_secret_access_key_enc",
		"s3_bucket_name", "s3_region", "created_at", "updated_at"}
}

func merchantRow(m *domain.Merchant) *pgxmock.Rows {
	return pgxmock.NewRows(merchantColumns()).AddRow(
		m.ShopID, m.ShopDomain, m.PlanName,
		m.S3.AccessKeyID, m.S3.SecretAccessKeyEnc, m.S3.BucketName, m.S3.Region,
		m.CreatedAt, m.UpdatedAt,
	)
}

func TestMerchantRepo_GetByShopID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMerchantRepo(mock)
	m := newTestMerchant()

	mock.ExpectQuery("SELECT .+ FROM merchants WHERE shop_id").
		WithArgs(m.ShopID).
		WillReturnRows(merchantRow(m))

	result, err := repo.GetByShopID(context.Background(), m.ShopID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, m.ShopDomain, result.ShopDomain)
	assert.True(t, result.IsSelfHosted())
	assert.Equal(t, m.S3, result.S3)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMerchantRepo_GetByShopID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMerchantRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM merchants WHERE shop_id").
		WithArgs("unknown").
		WillReturnError(pgx.ErrNoRows)

	result, err := repo.GetByShopID(context.Background(), "unknown")
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMerchantRepo_GetByShopID_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMerchantRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM merchants WHERE shop_id").
		WithArgs("shop").
		WillReturnError(errors.New("connection reset"))

	result, err := repo.GetByShopID(context.Background(), "shop")
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "get merchant by shop id")
}
