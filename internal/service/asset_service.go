package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"digital-delivery-gateway/config"
	"digital-delivery-gateway/internal/core/domain"
	"digital-delivery-gateway/internal/core/ports"
	"digital-delivery-gateway/internal/metrics"
	"digital-delivery-gateway/pkg/apperror"

	"github.com/rs/zerolog"
)

// AssetServiceImpl implements ports.AssetService.
type AssetServiceImpl struct {
	orderRepo    ports.OrderRepository
	merchantRepo ports.MerchantRepository
	catalogRepo  ports.CatalogRepository
	blobStore    ports.BlobStore
	broker       ports.DownloadBroker
	encSvc       ports.EncryptionService
	platform     domain.StorageCredentials
	linkTTL      time.Duration
	signedURLTTL time.Duration
	log          zerolog.Logger
}

// NewAssetService creates a new AssetServiceImpl. storage holds the platform
// bucket used by merchants that do not host their own files.
func NewAssetService(
	orderRepo ports.OrderRepository,
	merchantRepo ports.MerchantRepository,
	catalogRepo ports.CatalogRepository,
	blobStore ports.BlobStore,
	broker ports.DownloadBroker,
	encSvc ports.EncryptionService,
	storage config.StorageConfig,
	delivery config.DeliveryConfig,
	log zerolog.Logger,
) *AssetServiceImpl {
	return &AssetServiceImpl{
		orderRepo:    orderRepo,
		merchantRepo: merchantRepo,
		catalogRepo:  catalogRepo,
		blobStore:    blobStore,
		broker:       broker,
		encSvc:       encSvc,
		platform: domain.StorageCredentials{
			AccessKeyID:     storage.AccessKeyID,
			SecretAccessKey: storage.SecretAccessKey,
			Bucket:          storage.Bucket,
			Region:          storage.Region,
			Endpoint:        storage.Endpoint,
			UsePathStyle:    storage.UsePathStyle,
		},
		linkTTL:      delivery.LinkTTL,
		signedURLTTL: delivery.SignedURLTTL,
		log:          log,
	}
}

// resolvedItem is one listing entry before its ticket is issued.
type resolvedItem struct {
	asset   domain.ResolvedAsset
	product domain.DeliverableProduct
}

// ResolveOrderAssets resolves every variant of the order to a signed URL and
// issues one download ticket per item. Tickets are only issued once all
// items resolved, so a failed listing leaves nothing redeemable behind.
func (s *AssetServiceImpl) ResolveOrderAssets(ctx context.Context, publicOrderID string) ([]domain.DeliverableProduct, error) {
	products, err := s.resolve(ctx, publicOrderID)
	metrics.ListingsTotal.WithLabelValues(listingResult(err)).Inc()
	return products, err
}

func (s *AssetServiceImpl) resolve(ctx context.Context, publicOrderID string) ([]domain.DeliverableProduct, error) {
	order, err := s.orderRepo.GetByPublicID(ctx, publicOrderID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get order: %w", err))
	}
	if order == nil {
		return nil, apperror.ErrNotFound("Order")
	}

	creds, err := s.credentialsFor(ctx, order.ShopID)
	if err != nil {
		return nil, err
	}

	items := make([]resolvedItem, 0, len(order.VariantIDs))
	for _, variantID := range order.VariantIDs {
		item, err := s.resolveVariant(ctx, creds, variantID)
		if err != nil {
			s.log.Error().Err(err).
				Str("order_id", order.OrderID).
				Str("variant_id", variantID).
				Msg("failed to resolve order item")
			return nil, err
		}
		items = append(items, item)
	}

	products := make([]domain.DeliverableProduct, 0, len(items))
	for _, item := range items {
		slug, err := s.broker.Issue(ctx, item.asset, s.linkTTL)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("issue download ticket: %w", err))
		}
		p := item.product
		p.URL = domain.DownloadPath(slug)
		products = append(products, p)
	}
	return products, nil
}

// credentialsFor selects the merchant's own bucket under the self-hosting
// plan and the platform bucket otherwise.
func (s *AssetServiceImpl) credentialsFor(ctx context.Context, shopID string) (domain.StorageCredentials, error) {
	merchant, err := s.merchantRepo.GetByShopID(ctx, shopID)
	if err != nil {
		return domain.StorageCredentials{}, apperror.ErrDatabaseError(fmt.Errorf("get merchant: %w", err))
	}
	if merchant == nil {
		return domain.StorageCredentials{}, apperror.ErrStorageUnavailable(fmt.Errorf("merchant %s not found", shopID))
	}

	creds := s.platform
	if merchant.IsSelfHosted() {
		creds = domain.StorageCredentials{
			AccessKeyID: merchant.S3.AccessKeyID,
			Bucket:      merchant.S3.BucketName,
			Region:      merchant.S3.Region,
		}
		if merchant.S3.SecretAccessKeyEnc != "" {
			secret, err := s.encSvc.Decrypt(merchant.S3.SecretAccessKeyEnc)
			if err != nil {
				return domain.StorageCredentials{}, apperror.ErrStorageUnavailable(fmt.Errorf("decrypt merchant storage secret: %w", err))
			}
			creds.SecretAccessKey = secret
		}
	}

	if !creds.Complete() {
		return domain.StorageCredentials{}, apperror.ErrStorageUnavailable(
			fmt.Errorf("incomplete storage credentials for shop %s (self hosted: %t)", shopID, merchant.IsSelfHosted()))
	}
	return creds, nil
}

func (s *AssetServiceImpl) resolveVariant(ctx context.Context, creds domain.StorageCredentials, variantID string) (resolvedItem, error) {
	gid := domain.VariantGID(variantID)
	variant, err := s.catalogRepo.GetVariant(ctx, gid)
	if err != nil {
		return resolvedItem{}, apperror.ErrDatabaseError(fmt.Errorf("get variant %s: %w", gid, err))
	}
	if variant == nil {
		return resolvedItem{}, apperror.ErrNotFound("Variant")
	}

	product, err := s.catalogRepo.GetProduct(ctx, variant.ProductGID)
	if err != nil {
		return resolvedItem{}, apperror.ErrDatabaseError(fmt.Errorf("get product %s: %w", variant.ProductGID, err))
	}
	if product == nil {
		return resolvedItem{}, apperror.ErrNotFound("Product")
	}

	if variant.File.Name == "" {
		return resolvedItem{}, apperror.ErrMissingFile(fmt.Errorf("variant %s has no file", gid))
	}
	current, version, ok := variant.CurrentVersion()
	if !ok {
		return resolvedItem{}, apperror.ErrMissingFile(fmt.Errorf("variant %s has an empty file history", gid))
	}

	signedURL, err := s.blobStore.SignedURL(ctx, creds, variant.File.Name, s.signedURLTTL)
	if err != nil {
		return resolvedItem{}, apperror.ErrSignedURLFailure(err)
	}
	if signedURL == "" {
		return resolvedItem{}, apperror.ErrSignedURLFailure(errors.New("blob store returned an empty url"))
	}

	return resolvedItem{
		asset: domain.ResolvedAsset{
			SignedURL:        signedURL,
			VariantID:        variantID,
			OriginalFilePath: variant.File.OriginalName,
		},
		product: domain.DeliverableProduct{
			Title:            product.Title,
			FilePath:         variant.File.Name,
			Size:             current.File.Size,
			DisplaySize:      domain.HumanSize(current.File.Size),
			Version:          version,
			OriginalFilePath: variant.File.OriginalName,
		},
	}, nil
}

func listingResult(err error) string {
	var appErr *apperror.AppError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &appErr):
		return appErr.Code
	default:
		return "error"
	}
}
