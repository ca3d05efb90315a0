package domain

import (
	"time"

	"github.com/google/uuid"
)

// DownloadLog is the access record written for every successful redemption.
type DownloadLog struct {
	ID            uuid.UUID `json:"id"`
	Event         string    `json:"event"`
	Level         string    `json:"level"`
	Service       string    `json:"service"`
	VariantID     string    `json:"variantId"`
	Slug          string    `json:"littleSlug"`
	SignedURLGzip string    `json:"signedUrlGzip"` // base64(gzip(signed url))
	ClientIP      string    `json:"clientIp"`
	CreatedAt     time.Time `json:"createdAt"`
}

// EmailMessage is an outbound transactional email.
type EmailMessage struct {
	FromName  string
	FromEmail string
	ToEmail   string
	Subject   string
	BodyHTML  string
	BodyText  string
}
