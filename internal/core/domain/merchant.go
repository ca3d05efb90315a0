package domain

import "time"

// PlanSelfHosting is the plan under which a merchant supplies its own
// storage bucket and credentials.
const PlanSelfHosting = "SelfHosting"

// S3Settings are the merchant-supplied storage fields. The secret access key
// is kept encrypted at rest.
type S3Settings struct {
	AccessKeyID        string `json:"s3AccessKeyId"`
	SecretAccessKeyEnc string `json:"-"` // Encrypted, never expose
	BucketName         string `json:"s3BucketName"`
	Region             string `json:"s3Region"`
}

// Merchant is a storefront shop with its storage profile.
type Merchant struct {
	ShopID     string     `json:"shopId"`
	ShopDomain string     `json:"shopDomain"`
	PlanName   string     `json:"planName"`
	S3         S3Settings `json:"s3"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// IsSelfHosted returns true if the merchant's files live in its own bucket.
func (m *Merchant) IsSelfHosted() bool {
	return m.PlanName == PlanSelfHosting
}

// StorageCredentials are the plaintext credentials used to sign a URL.
// They exist only in memory for the duration of a listing.
type StorageCredentials struct {
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
	Endpoint        string // optional, S3-compatible providers
	UsePathStyle    bool
}

// Complete reports whether every field needed for signing is present.
func (c StorageCredentials) Complete() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != "" && c.Bucket != "" && c.Region != ""
}
