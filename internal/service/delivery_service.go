package service

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"digital-delivery-gateway/internal/core/domain"
	"digital-delivery-gateway/internal/core/ports"
	"digital-delivery-gateway/internal/metrics"
	"digital-delivery-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DeliveryServiceImpl implements ports.DeliveryService.
type DeliveryServiceImpl struct {
	assets      ports.AssetService
	broker      ports.DownloadBroker
	downloadLog ports.DownloadLogRepository
	serviceName string
	log         zerolog.Logger
}

// NewDeliveryService creates a new DeliveryServiceImpl.
func NewDeliveryService(
	assets ports.AssetService,
	broker ports.DownloadBroker,
	downloadLog ports.DownloadLogRepository,
	serviceName string,
	log zerolog.Logger,
) *DeliveryServiceImpl {
	return &DeliveryServiceImpl{
		assets:      assets,
		broker:      broker,
		downloadLog: downloadLog,
		serviceName: serviceName,
		log:         log,
	}
}

// ListProducts resolves the order's deliverables and issues their links.
func (s *DeliveryServiceImpl) ListProducts(ctx context.Context, publicOrderID string) ([]domain.DeliverableProduct, error) {
	return s.assets.ResolveOrderAssets(ctx, publicOrderID)
}

// Redeem looks up a download ticket and records the access. A failed log
// write never blocks the download.
func (s *DeliveryServiceImpl) Redeem(ctx context.Context, slug string, clientIP string) (*domain.DownloadTicket, error) {
	ticket, err := s.broker.Redeem(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			metrics.DownloadsTotal.WithLabelValues("not_found").Inc()
			return nil, apperror.ErrNotFound("Download link")
		}
		metrics.DownloadsTotal.WithLabelValues("error").Inc()
		return nil, apperror.InternalError(fmt.Errorf("redeem ticket: %w", err))
	}
	metrics.DownloadsTotal.WithLabelValues("redirected").Inc()

	s.recordDownload(ctx, ticket, clientIP)
	return ticket, nil
}

func (s *DeliveryServiceImpl) recordDownload(ctx context.Context, ticket *domain.DownloadTicket, clientIP string) {
	encoded, err := EncodeSignedURL(ticket.Asset.SignedURL)
	if err != nil {
		s.log.Warn().Err(err).Str("slug", ticket.Slug).Msg("failed to encode signed url for download log")
	}

	entry := &domain.DownloadLog{
		ID:            uuid.New(),
		Event:         "download",
		Level:         "info",
		Service:       s.serviceName,
		VariantID:     ticket.Asset.VariantID,
		Slug:          ticket.Slug,
		SignedURLGzip: encoded,
		ClientIP:      clientIP,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.downloadLog.Create(ctx, entry); err != nil {
		s.log.Error().Err(err).
			Str("slug", ticket.Slug).
			Str("variant_id", ticket.Asset.VariantID).
			Msg("failed to write download log")
	}
}

// EncodeSignedURL compresses a signed URL for the access log: base64(gzip(url)).
func EncodeSignedURL(signedURL string) (string, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(signedURL)); err != nil {
		return "", fmt.Errorf("gzip signed url: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("gzip signed url: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// decodeSignedURL reverses EncodeSignedURL.
func decodeSignedURL(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decoding base64: %w", err)
	}
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("opening gzip stream: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return "", fmt.Errorf("reading gzip stream: %w", err)
	}
	return string(out), nil
}
