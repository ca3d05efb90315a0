package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrTicketNotFound is returned when a slug is unknown or its ticket expired.
var ErrTicketNotFound = errors.New("download ticket not found")

// ResolvedAsset is what a download ticket grants access to.
type ResolvedAsset struct {
	SignedURL        string `json:"signedUrl"`
	VariantID        string `json:"variantId"`
	OriginalFilePath string `json:"originalFilePath"`
}

// DownloadTicket maps a short slug to a resolved asset until ExpiresAt.
type DownloadTicket struct {
	Slug      string        `json:"slug"`
	Asset     ResolvedAsset `json:"asset"`
	IssuedAt  time.Time     `json:"issuedAt"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

// LiveAt reports whether the ticket may be redeemed at t. The ticket is dead
// from ExpiresAt onward.
func (t *DownloadTicket) LiveAt(now time.Time) bool {
	return now.Before(t.ExpiresAt)
}

// DeliverableProduct is one entry of an order listing.
type DeliverableProduct struct {
	URL              string `json:"url"`
	Title            string `json:"title"`
	FilePath         string `json:"filePath"`
	Size             int64  `json:"size"`
	DisplaySize      string `json:"displaySize"`
	Version          int    `json:"version"`
	OriginalFilePath string `json:"originalFilePath"`
}

// DownloadPath returns the public path for a ticket slug.
func DownloadPath(slug string) string {
	return "/download/" + slug
}

// HumanSize formats a byte count with decimal units and one decimal place,
// e.g. 1536000 -> "1.5 MB".
func HumanSize(bytes int64) string {
	const unit = 1000
	if bytes < unit {
		return fmt.Sprintf("%d bytes", bytes)
	}
	suffixes := []string{"KB", "MB", "GB"}
	div := int64(1)
	var tenths int64
	var suffix string
	for _, s := range suffixes {
		div *= unit
		suffix = s
		// Round half up to tenths first, so 999.95 KB becomes 1.0 MB.
		tenths = (bytes*10 + div/2) / div
		if tenths < unit*10 {
			break
		}
	}
	return fmt.Sprintf("%d.%d %s", tenths/10, tenths%10, suffix)
}
