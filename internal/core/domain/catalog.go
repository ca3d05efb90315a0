package domain

import "time"

const variantGIDPrefix = "gid://shopify/ProductVariant/"

// VariantGID converts a numeric line-item variant id into the global id
// under which variants are stored.
func VariantGID(variantID string) string {
	return variantGIDPrefix + variantID
}

// FileInfo describes one stored object.
type FileInfo struct {
	Name         string `json:"name"`
	OriginalName string `json:"originalName,omitempty"`
	Size         int64  `json:"size"` // bytes
}

// FileVersion is one upload in a variant's file history.
type FileVersion struct {
	File      FileInfo  `json:"file"`
	CreatedAt time.Time `json:"createdAt"`
}

// Variant is a purchasable product variant with its attached file.
type Variant struct {
	VariantGID         string        `json:"shopifyVariantId"`
	ShopID             string        `json:"shopId"`
	ProductGID         string        `json:"shopifyProductId"`
	File               FileInfo      `json:"file"`
	FileVersionHistory []FileVersion `json:"fileVersionHistory"`
	CreatedAt          time.Time     `json:"createdAt"`
}

// CurrentVersion returns the latest file version and its 1-based number.
// ok is false when the history is empty.
func (v *Variant) CurrentVersion() (FileVersion, int, bool) {
	n := len(v.FileVersionHistory)
	if n == 0 {
		return FileVersion{}, 0, false
	}
	return v.FileVersionHistory[n-1], n, true
}

// Product is the catalog entry a variant belongs to.
type Product struct {
	ProductGID string    `json:"shopifyProductId"`
	ShopID     string    `json:"shopId"`
	Title      string    `json:"title"`
	CreatedAt  time.Time `json:"createdAt"`
}
