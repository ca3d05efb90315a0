package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"digital-delivery-gateway/internal/core/domain"
	"digital-delivery-gateway/internal/core/ports"
	"digital-delivery-gateway/internal/metrics"
	"digital-delivery-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const releaseTimeout = 2 * time.Second

// paidOrderPayload is the subset of the storefront order webhook we read.
// Ids are kept as json.Number so 64-bit ids survive decoding intact.
type paidOrderPayload struct {
	ID              json.Number `json:"id"`
	OrderNumber     json.Number `json:"order_number"`
	FinancialStatus string      `json:"financial_status"`
	Email           string      `json:"email"`
	ContactEmail    string      `json:"contact_email"`
	Customer        *struct {
		ID    json.Number `json:"id"`
		Email string      `json:"email"`
	} `json:"customer"`
	LineItems []struct {
		VariantID json.Number `json:"variant_id"`
	} `json:"line_items"`
}

func (p *paidOrderPayload) customerEmail() string {
	if p.Customer != nil && p.Customer.Email != "" {
		return p.Customer.Email
	}
	if p.Email != "" {
		return p.Email
	}
	return p.ContactEmail
}

func parsePaidOrder(raw []byte) (*paidOrderPayload, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var p paidOrderPayload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding order payload: %w", err)
	}
	if p.ID == "" {
		return nil, errors.New("order payload has no id")
	}
	if len(p.LineItems) == 0 {
		return nil, errors.New("order has no line items")
	}
	for i, li := range p.LineItems {
		if li.VariantID == "" {
			return nil, fmt.Errorf("line item %d has no variant id", i)
		}
	}
	return &p, nil
}

// OrderServiceImpl implements ports.OrderService.
type OrderServiceImpl struct {
	verifier    ports.WebhookVerifier
	webhookRepo ports.WebhookRequestRepository
	orderRepo   ports.OrderRepository
	catalogRepo ports.CatalogRepository
	fallback    ports.FallbackOrderStore
	encSvc      ports.EncryptionService
	indexer     ports.EmailIndexer // optional
	replay      ports.ReplayGuard  // optional
	notifySvc   ports.NotificationService
	replayTTL   time.Duration
	log         zerolog.Logger
}

// NewOrderService creates a new OrderServiceImpl. indexer and replay may be nil.
func NewOrderService(
	verifier ports.WebhookVerifier,
	webhookRepo ports.WebhookRequestRepository,
	orderRepo ports.OrderRepository,
	catalogRepo ports.CatalogRepository,
	fallback ports.FallbackOrderStore,
	encSvc ports.EncryptionService,
	indexer ports.EmailIndexer,
	replay ports.ReplayGuard,
	notifySvc ports.NotificationService,
	replayTTL time.Duration,
	log zerolog.Logger,
) *OrderServiceImpl {
	return &OrderServiceImpl{
		verifier:    verifier,
		webhookRepo: webhookRepo,
		orderRepo:   orderRepo,
		catalogRepo: catalogRepo,
		fallback:    fallback,
		encSvc:      encSvc,
		indexer:     indexer,
		replay:      replay,
		notifySvc:   notifySvc,
		replayTTL:   replayTTL,
		log:         log,
	}
}

// Receive verifies the delivery and records the attempt whatever the
// outcome. A failure to record never changes the verification result.
func (s *OrderServiceImpl) Receive(ctx context.Context, d domain.WebhookDelivery) (bool, error) {
	verified := s.verifier.Verify(d.RawBody, d.Headers)
	metrics.WebhooksReceivedTotal.WithLabelValues(d.Route, metrics.Bool(verified)).Inc()

	req := &domain.WebhookRequest{
		ID:         uuid.New(),
		Route:      d.Route,
		ShopDomain: d.ShopDomain,
		WebhookID:  d.WebhookID,
		Body:       d.RawBody,
		Verified:   verified,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.webhookRepo.Create(ctx, req); err != nil {
		s.log.Warn().Err(err).Str("route", d.Route).Msg("failed to record webhook request")
	}

	if !verified {
		s.log.Warn().
			Str("route", d.Route).
			Str("shop_domain", d.ShopDomain).
			Int("body_bytes", len(d.RawBody)).
			Msg("webhook signature verification failed")
		return false, apperror.ErrUnverifiedWebhook()
	}
	return true, nil
}

// ProcessPaidOrder turns a verified paid-order delivery into a stored order
// and dispatches the customer email. It runs after the webhook was acked.
// A delivery id claimed in the replay guard is released again when the order
// is not stored, so a storefront retry gets another chance.
func (s *OrderServiceImpl) ProcessPaidOrder(ctx context.Context, d domain.WebhookDelivery) (*domain.IngestResult, error) {
	start := time.Now()
	defer func() { metrics.OrderProcessingDuration.Observe(time.Since(start).Seconds()) }()

	claimed := false
	if d.WebhookID != "" && s.replay != nil {
		fresh, err := s.replay.CheckAndSet(ctx, domain.TopicOrdersPaid, d.WebhookID, s.replayTTL)
		if err != nil {
			// The order_id unique index still catches duplicates.
			s.log.Warn().Err(err).Str("webhook_id", d.WebhookID).Msg("replay guard unavailable, continuing")
		} else if !fresh {
			s.log.Info().Str("webhook_id", d.WebhookID).Msg("webhook delivery already processed")
			return s.finish(&domain.IngestResult{Outcome: domain.IngestReplayed}), nil
		}
		claimed = err == nil
	}

	result, err := s.ingest(ctx, d)
	if err != nil && claimed {
		s.release(ctx, d.WebhookID)
	}
	return result, err
}

// release forgets a claimed delivery id. ctx may already be past its
// deadline, so the call gets a short budget of its own.
func (s *OrderServiceImpl) release(ctx context.Context, webhookID string) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	if err := s.replay.Forget(rctx, domain.TopicOrdersPaid, webhookID); err != nil {
		s.log.Warn().Err(err).Str("webhook_id", webhookID).Msg("failed to release webhook id, redelivery will be skipped")
	}
}

func (s *OrderServiceImpl) ingest(ctx context.Context, d domain.WebhookDelivery) (*domain.IngestResult, error) {
	payload, err := parsePaidOrder(d.RawBody)
	if err != nil {
		s.finish(&domain.IngestResult{Outcome: domain.IngestRejected})
		s.log.Error().Err(err).Str("webhook_id", d.WebhookID).Msg("invalid paid-order payload")
		return nil, apperror.ErrInvalidOrderPayload(err)
	}

	orderID := payload.ID.String()
	firstGID := domain.VariantGID(payload.LineItems[0].VariantID.String())
	variant, err := s.catalogRepo.GetVariant(ctx, firstGID)
	if err != nil {
		s.finish(&domain.IngestResult{Outcome: domain.IngestRejected, OrderID: orderID})
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get variant %s: %w", firstGID, err))
	}
	if variant == nil {
		s.finish(&domain.IngestResult{Outcome: domain.IngestRejected, OrderID: orderID})
		s.log.Error().
			Str("order_id", orderID).
			Str("variant_gid", firstGID).
			Msg("reference variant not found, cannot resolve shop")
		return nil, apperror.ErrVariantNotFound(firstGID)
	}

	email := strings.TrimSpace(payload.customerEmail())
	order, err := s.buildOrder(payload, variant.ShopID, d.ShopDomain, email)
	if err != nil {
		s.finish(&domain.IngestResult{Outcome: domain.IngestRejected, OrderID: orderID})
		return nil, err
	}

	result := &domain.IngestResult{OrderID: order.OrderID, PublicOrderID: order.PublicOrderID}

	inserted, err := s.orderRepo.Insert(ctx, order)
	switch {
	case err != nil:
		s.log.Error().Err(err).Str("order_id", order.OrderID).Msg("record store write failed, using fallback store")
		if ferr := s.fallback.Add(ctx, order); ferr != nil {
			if errors.Is(ferr, domain.ErrDuplicateOrder) {
				s.log.Info().Str("order_id", order.OrderID).Msg("order already held by fallback store")
				result.Outcome = domain.IngestDuplicate
				result.PublicOrderID = ""
				return s.finish(result), nil
			}
			result.Outcome = domain.IngestRejected
			s.finish(result)
			return nil, apperror.ErrDatabaseError(errors.Join(err, ferr))
		}
		result.Outcome = domain.IngestPersistFallback
	case !inserted:
		s.log.Info().Str("order_id", order.OrderID).Msg("duplicate order ignored")
		result.Outcome = domain.IngestDuplicate
		result.PublicOrderID = ""
		return s.finish(result), nil
	default:
		result.Outcome = domain.IngestPersisted
	}

	if email == "" {
		s.log.Warn().Str("order_id", order.OrderID).Msg("order has no customer email, skipping notification")
	} else {
		s.notifySvc.Dispatch(email, order.PublicOrderID)
		result.Notified = true
	}

	s.log.Info().
		Str("order_id", order.OrderID).
		Str("shop_id", order.ShopID).
		Str("outcome", string(result.Outcome)).
		Int("items", len(order.VariantIDs)).
		Msg("paid order ingested")
	return s.finish(result), nil
}

func (s *OrderServiceImpl) finish(r *domain.IngestResult) *domain.IngestResult {
	metrics.OrdersIngestedTotal.WithLabelValues(string(r.Outcome)).Inc()
	return r
}

func (s *OrderServiceImpl) buildOrder(p *paidOrderPayload, shopID, shopDomain, email string) (*domain.Order, error) {
	publicID, err := GeneratePublicOrderID()
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	emailEnc, err := s.encSvc.Encrypt(email)
	if err != nil {
		return nil, apperror.ErrEncryptionFailure(fmt.Errorf("encrypt customer email: %w", err))
	}

	var emailIndex string
	if s.indexer != nil && email != "" {
		emailIndex = s.indexer.Index(email)
	}

	var customerID string
	if p.Customer != nil {
		customerID = p.Customer.ID.String()
	}

	variantIDs := make([]string, 0, len(p.LineItems))
	for _, li := range p.LineItems {
		variantIDs = append(variantIDs, li.VariantID.String())
	}

	return &domain.Order{
		OrderID:       p.ID.String(),
		PublicOrderID: publicID,
		OrderNumber:   p.OrderNumber.String(),
		ShopID:        shopID,
		ShopDomain:    shopDomain,
		Customer: domain.Customer{
			CustomerID: customerID,
			EmailEnc:   emailEnc,
			EmailIndex: emailIndex,
		},
		FinancialStatus: p.FinancialStatus,
		VariantIDs:      variantIDs,
		CreatedAt:       time.Now().UTC(),
	}, nil
}
