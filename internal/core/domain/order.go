package domain

import (
	"errors"
	"time"
)

// ErrDuplicateOrder is returned by stores that already hold an order with
// the same OrderID.
var ErrDuplicateOrder = errors.New("order with this id already exists")

// Customer holds the buyer details kept on an order. The email is stored
// encrypted; EmailIndex is a keyed blind index used for support lookups.
type Customer struct {
	CustomerID string `json:"customerId"`
	EmailEnc   string `json:"customerEmail"`
	EmailIndex string `json:"customerEmailIndex,omitempty"`
}

// Order is a paid storefront order that entitles the customer to download
// the files attached to its variants.
type Order struct {
	OrderID         string    `json:"orderId"`
	PublicOrderID   string    `json:"publicOrderId"`
	OrderNumber     string    `json:"orderNumber"`
	ShopID          string    `json:"shopId"`
	ShopDomain      string    `json:"shopDomain"`
	Customer        Customer  `json:"customer"`
	FinancialStatus string    `json:"financialStatus"`
	VariantIDs      []string  `json:"variantIds"` // one entry per line item, duplicates preserved
	CreatedAt       time.Time `json:"createdAt"`
}

// IngestOutcome is the terminal state of processing one paid-order webhook.
type IngestOutcome string

const (
	IngestPersisted       IngestOutcome = "PERSISTED"
	IngestPersistFallback IngestOutcome = "PERSIST_FALLBACK"
	IngestDuplicate       IngestOutcome = "DUPLICATE"
	IngestReplayed        IngestOutcome = "REPLAYED"
	IngestRejected        IngestOutcome = "REJECTED"
)

// IngestResult reports what happened to a paid-order webhook.
type IngestResult struct {
	Outcome       IngestOutcome
	OrderID       string
	PublicOrderID string
	Notified      bool // notification was dispatched
}
