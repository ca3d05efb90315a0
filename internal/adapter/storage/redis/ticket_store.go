package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"digital-delivery-gateway/internal/broker"
	"digital-delivery-gateway/internal/core/domain"
	"digital-delivery-gateway/internal/metrics"

	goredis "github.com/redis/go-redis/v9"
)

const ticketIssueAttempts = 5

// TicketStore implements ports.DownloadBroker on Redis, so tickets survive
// restarts and are shared between replicas. Key expiry enforces the deadline.
type TicketStore struct {
	client    goredis.UniversalClient
	prefix    string
	generate  broker.SlugGenerator
	singleUse bool
	now       func() time.Time
}

// NewTicketStore creates a Redis-backed ticket store.
func NewTicketStore(client goredis.UniversalClient, generate broker.SlugGenerator, singleUse bool) *TicketStore {
	return &TicketStore{
		client:    client,
		prefix:    "ticket:",
		generate:  generate,
		singleUse: singleUse,
		now:       time.Now,
	}
}

// Issue stores a ticket under a fresh slug. A slug held by a live ticket is
// never overwritten.
func (s *TicketStore) Issue(ctx context.Context, asset domain.ResolvedAsset, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("ticket ttl must be positive, got %s", ttl)
	}

	now := s.now()
	for attempt := 0; attempt < ticketIssueAttempts; attempt++ {
		slug, err := s.generate()
		if err != nil {
			return "", fmt.Errorf("generate slug: %w", err)
		}

		payload, err := json.Marshal(domain.DownloadTicket{
			Slug:      slug,
			Asset:     asset,
			IssuedAt:  now,
			ExpiresAt: now.Add(ttl),
		})
		if err != nil {
			return "", fmt.Errorf("encode ticket: %w", err)
		}

		result, err := s.client.SetArgs(ctx, s.prefix+slug, payload, goredis.SetArgs{
			Mode: "NX",
			TTL:  ttl,
		}).Result()
		if errors.Is(err, goredis.Nil) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("redis ticket set: %w", err)
		}
		if result == "OK" {
			metrics.TicketsIssuedTotal.Inc()
			return slug, nil
		}
	}
	return "", broker.ErrSlugSpaceExhausted
}

// Redeem looks up a ticket. With single use enabled the key is removed in
// the same command that reads it.
func (s *TicketStore) Redeem(ctx context.Context, slug string) (*domain.DownloadTicket, error) {
	key := s.prefix + slug

	var raw []byte
	var err error
	if s.singleUse {
		raw, err = s.client.GetDel(ctx, key).Bytes()
	} else {
		raw, err = s.client.Get(ctx, key).Bytes()
	}
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, fmt.Errorf("redis ticket get: %w", err)
	}

	var ticket domain.DownloadTicket
	if err := json.Unmarshal(raw, &ticket); err != nil {
		return nil, fmt.Errorf("decode ticket: %w", err)
	}
	if !ticket.LiveAt(s.now()) {
		return nil, domain.ErrTicketNotFound
	}
	return &ticket, nil
}
