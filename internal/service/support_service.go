package service

import (
	"context"
	"fmt"
	"net/mail"

	"digital-delivery-gateway/internal/core/ports"
	"digital-delivery-gateway/pkg/apperror"

	"github.com/rs/zerolog"
)

// SupportServiceImpl implements ports.SupportService for operator tooling.
type SupportServiceImpl struct {
	orderRepo ports.OrderRepository
	encSvc    ports.EncryptionService
	indexer   ports.EmailIndexer // optional
	notifySvc ports.NotificationService
	log       zerolog.Logger
}

// NewSupportService creates a new SupportServiceImpl. indexer may be nil, in
// which case lookups by email are refused.
func NewSupportService(
	orderRepo ports.OrderRepository,
	encSvc ports.EncryptionService,
	indexer ports.EmailIndexer,
	notifySvc ports.NotificationService,
	log zerolog.Logger,
) *SupportServiceImpl {
	return &SupportServiceImpl{
		orderRepo: orderRepo,
		encSvc:    encSvc,
		indexer:   indexer,
		notifySvc: notifySvc,
		log:       log,
	}
}

// ResendOrderEmail sends the order email again to the stored customer address.
func (s *SupportServiceImpl) ResendOrderEmail(ctx context.Context, publicOrderID string) (string, error) {
	order, err := s.orderRepo.GetByPublicID(ctx, publicOrderID)
	if err != nil {
		return "", apperror.ErrDatabaseError(fmt.Errorf("get order: %w", err))
	}
	if order == nil {
		return "", apperror.ErrNotFound("Order")
	}

	email, err := s.encSvc.Decrypt(order.Customer.EmailEnc)
	if err != nil {
		return "", apperror.ErrEncryptionFailure(fmt.Errorf("decrypt customer email: %w", err))
	}
	if email == "" {
		return "", apperror.Validation("order has no customer email")
	}

	id, err := s.notifySvc.SendOrderReady(ctx, email, order.PublicOrderID)
	if err != nil {
		return "", err
	}
	s.log.Info().Str("order_id", order.OrderID).Str("message_id", id).Msg("order email resent")
	return id, nil
}

// FindOrdersByEmail returns the public ids of every order placed with email.
func (s *SupportServiceImpl) FindOrdersByEmail(ctx context.Context, email string) ([]string, error) {
	if s.indexer == nil {
		return nil, apperror.Validation("email lookup is not configured")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperror.Validation("invalid email address")
	}

	ids, err := s.orderRepo.ListPublicIDsByEmailIndex(ctx, s.indexer.Index(email))
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list orders by email: %w", err))
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

