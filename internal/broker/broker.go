// Package broker holds short-lived download tickets in memory. Each ticket
// maps an unguessable slug to a signed storage URL until its deadline.
package broker

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"digital-delivery-gateway/internal/core/domain"
	"digital-delivery-gateway/internal/metrics"

	"github.com/rs/zerolog"
)

const (
	maxIssueAttempts = 5
	idleWait         = time.Hour
)

// ErrSlugSpaceExhausted is returned when every generated slug collided with
// a live ticket.
var ErrSlugSpaceExhausted = errors.New("could not allocate a free download slug")

// SlugGenerator produces candidate slugs.
type SlugGenerator func() (string, error)

type entry struct {
	ticket domain.DownloadTicket
	gen    uint64
}

// Broker implements ports.DownloadBroker.
type Broker struct {
	mu       sync.Mutex
	entries  map[string]entry
	expiries expiryHeap
	nextGen  uint64

	generate  SlugGenerator
	now       func() time.Time
	singleUse bool
	log       zerolog.Logger

	wake      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Option configures a Broker.
type Option func(*Broker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Broker) { b.now = now }
}

// WithSingleUse makes a ticket disappear after its first redemption.
func WithSingleUse(singleUse bool) Option {
	return func(b *Broker) { b.singleUse = singleUse }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(b *Broker) { b.log = log }
}

// New creates a Broker and starts its janitor. Call Close to stop it.
func New(generate SlugGenerator, opts ...Option) *Broker {
	b := &Broker{
		entries:  make(map[string]entry),
		generate: generate,
		now:      time.Now,
		log:      zerolog.Nop(),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}

	b.wg.Add(1)
	go b.janitor()
	return b
}

// Issue stores asset under a fresh slug for ttl. A slug held by a live
// ticket is never overwritten; generation is retried instead.
func (b *Broker) Issue(_ context.Context, asset domain.ResolvedAsset, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("ticket ttl must be positive, got %s", ttl)
	}

	for attempt := 1; attempt <= maxIssueAttempts; attempt++ {
		slug, err := b.generate()
		if err != nil {
			return "", fmt.Errorf("issue ticket: %w", err)
		}
		if b.tryInsert(slug, asset, ttl) {
			metrics.TicketsIssuedTotal.Inc()
			return slug, nil
		}
		b.log.Warn().Int("attempt", attempt).Msg("download slug collided with a live ticket")
	}
	return "", ErrSlugSpaceExhausted
}

func (b *Broker) tryInsert(slug string, asset domain.ResolvedAsset, ttl time.Duration) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if existing, ok := b.entries[slug]; ok && existing.ticket.LiveAt(now) {
		return false
	}

	b.nextGen++
	expiresAt := now.Add(ttl)
	b.entries[slug] = entry{
		ticket: domain.DownloadTicket{
			Slug:      slug,
			Asset:     asset,
			IssuedAt:  now,
			ExpiresAt: expiresAt,
		},
		gen: b.nextGen,
	}
	heap.Push(&b.expiries, expiryItem{slug: slug, expiresAt: expiresAt, gen: b.nextGen})

	// The janitor only needs waking when this ticket became the earliest.
	if b.expiries[0].gen == b.nextGen {
		select {
		case b.wake <- struct{}{}:
		default:
		}
	}
	return true
}

// Redeem returns the ticket for slug, or domain.ErrTicketNotFound when the
// slug is unknown or the ticket's deadline has passed.
func (b *Broker) Redeem(_ context.Context, slug string) (*domain.DownloadTicket, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.entries[slug]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	if !e.ticket.LiveAt(b.now()) {
		delete(b.entries, slug)
		return nil, domain.ErrTicketNotFound
	}
	if b.singleUse {
		delete(b.entries, slug)
	}

	ticket := e.ticket
	return &ticket, nil
}

// Len reports the number of live tickets.
func (b *Broker) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	n := 0
	for _, e := range b.entries {
		if e.ticket.LiveAt(now) {
			n++
		}
	}
	return n
}

// Close stops the janitor. Tickets stay redeemable until their deadline.
func (b *Broker) Close() error {
	b.closeOnce.Do(func() { close(b.done) })
	b.wg.Wait()
	return nil
}

func (b *Broker) janitor() {
	defer b.wg.Done()

	timer := time.NewTimer(b.evictExpired())
	defer timer.Stop()

	for {
		select {
		case <-b.done:
			return
		case <-b.wake:
		case <-timer.C:
		}

		wait := b.evictExpired()
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)
	}
}

// evictExpired removes every due ticket and returns how long the janitor may
// sleep before the next one falls due.
func (b *Broker) evictExpired() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	evicted := 0
	for len(b.expiries) > 0 && !now.Before(b.expiries[0].expiresAt) {
		item := heap.Pop(&b.expiries).(expiryItem)
		// A stale heap item may point at a slug reissued since.
		if e, ok := b.entries[item.slug]; ok && e.gen == item.gen {
			delete(b.entries, item.slug)
			evicted++
		}
	}
	if evicted > 0 {
		metrics.TicketsEvictedTotal.Add(float64(evicted))
		b.log.Debug().Int("evicted", evicted).Msg("expired download tickets removed")
	}

	if len(b.expiries) == 0 {
		return idleWait
	}
	return b.expiries[0].expiresAt.Sub(now)
}

type expiryItem struct {
	slug      string
	expiresAt time.Time
	gen       uint64
}

// expiryHeap is a min-heap of ticket deadlines.
type expiryHeap []expiryItem

func (h expiryHeap) Len() int           { return len(h) }
func (h expiryHeap) Less(i, j int) bool { return h[i].expiresAt.Before(h[j].expiresAt) }
func (h expiryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *expiryHeap) Push(x any) { *h = append(*h, x.(expiryItem)) }

func (h *expiryHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
