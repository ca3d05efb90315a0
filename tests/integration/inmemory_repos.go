package integration

import (
	"context"
	"errors"
	"sort"
	"sync"

	"digital-delivery-gateway/internal/core/domain"
)

// --- In-Memory Order Repo ---

type inMemoryOrderRepo struct {
	mu       sync.RWMutex
	orders   map[string]*domain.Order // by order id
	byPublic map[string]string        // public id -> order id
	failing  bool                     // every Insert errors, as an unreachable record store would
}

func newInMemoryOrderRepo() *inMemoryOrderRepo {
	return &inMemoryOrderRepo{
		orders:   make(map[string]*domain.Order),
		byPublic: make(map[string]string),
	}
}

func (r *inMemoryOrderRepo) Insert(_ context.Context, o *domain.Order) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return false, errors.New("connection refused")
	}
	if _, exists := r.orders[o.OrderID]; exists {
		return false, nil
	}
	cp := *o
	r.orders[o.OrderID] = &cp
	r.byPublic[o.PublicOrderID] = o.OrderID
	return true, nil
}

func (r *inMemoryOrderRepo) GetByPublicID(_ context.Context, publicOrderID string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byPublic[publicOrderID]
	if !ok {
		return nil, nil
	}
	cp := *r.orders[id]
	return &cp, nil
}

func (r *inMemoryOrderRepo) ListPublicIDsByEmailIndex(_ context.Context, emailIndex string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matches []*domain.Order
	for _, o := range r.orders {
		if o.Customer.EmailIndex == emailIndex {
			matches = append(matches, o)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.After(matches[j].CreatedAt) })
	ids := make([]string, 0, len(matches))
	for _, o := range matches {
		ids = append(ids, o.PublicOrderID)
	}
	return ids, nil
}

func (r *inMemoryOrderRepo) get(orderID string) (*domain.Order, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[orderID]
	return o, ok
}

func (r *inMemoryOrderRepo) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}

func (r *inMemoryOrderRepo) setFailing(failing bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failing = failing
}

// --- In-Memory Merchant Repo ---

type inMemoryMerchantRepo struct {
	mu        sync.RWMutex
	merchants map[string]*domain.Merchant
}

func newInMemoryMerchantRepo() *inMemoryMerchantRepo {
	return &inMemoryMerchantRepo{merchants: make(map[string]*domain.Merchant)}
}

func (r *inMemoryMerchantRepo) put(m *domain.Merchant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.merchants[m.ShopID] = m
}

func (r *inMemoryMerchantRepo) GetByShopID(_ context.Context, shopID string) (*domain.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.merchants[shopID]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

// --- In-Memory Catalog Repo ---

type inMemoryCatalogRepo struct {
	mu           sync.RWMutex
	variants     map[string]*domain.Variant
	products     map[string]*domain.Product
	failing      bool
	variantReads int
}

func newInMemoryCatalogRepo() *inMemoryCatalogRepo {
	return &inMemoryCatalogRepo{
		variants: make(map[string]*domain.Variant),
		products: make(map[string]*domain.Product),
	}
}

func (r *inMemoryCatalogRepo) putProduct(p *domain.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ProductGID] = p
}

func (r *inMemoryCatalogRepo) putVariant(v *domain.Variant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variants[v.VariantGID] = v
}

func (r *inMemoryCatalogRepo) GetVariant(_ context.Context, variantGID string) (*domain.Variant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variantReads++
	if r.failing {
		return nil, errors.New("catalog unavailable")
	}
	v, ok := r.variants[variantGID]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (r *inMemoryCatalogRepo) setFailing(failing bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failing = failing
}

func (r *inMemoryCatalogRepo) reads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.variantReads
}

func (r *inMemoryCatalogRepo) GetProduct(_ context.Context, productGID string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[productGID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// --- In-Memory Webhook Request Repo ---

type inMemoryWebhookRequestRepo struct {
	mu       sync.Mutex
	requests []domain.WebhookRequest
}

func (r *inMemoryWebhookRequestRepo) Create(_ context.Context, req *domain.WebhookRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, *req)
	return nil
}

func (r *inMemoryWebhookRequestRepo) all() []domain.WebhookRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.WebhookRequest(nil), r.requests...)
}

// --- In-Memory Download Log Repo ---

type inMemoryDownloadLogRepo struct {
	mu   sync.Mutex
	logs []domain.DownloadLog
}

func (r *inMemoryDownloadLogRepo) Create(_ context.Context, l *domain.DownloadLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, *l)
	return nil
}

func (r *inMemoryDownloadLogRepo) all() []domain.DownloadLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.DownloadLog(nil), r.logs...)
}

// --- Recording Notifier ---

type recordingNotifier struct {
	mu   sync.Mutex
	sent []domain.EmailMessage
}

func (n *recordingNotifier) Send(_ context.Context, msg domain.EmailMessage) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return "msg-" + msg.ToEmail, nil
}

func (n *recordingNotifier) messages() []domain.EmailMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.EmailMessage(nil), n.sent...)
}
