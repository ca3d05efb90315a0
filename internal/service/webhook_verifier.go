package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
)

// HeaderShopifyHMAC carries base64(HMAC-SHA256(secret, raw body)).
const HeaderShopifyHMAC = "X-Shopify-Hmac-Sha256"

// HMACWebhookVerifier implements ports.WebhookVerifier.
type HMACWebhookVerifier struct {
	secret []byte
}

// NewHMACWebhookVerifier creates a verifier for the shared webhook secret.
func NewHMACWebhookVerifier(secret string) *HMACWebhookVerifier {
	return &HMACWebhookVerifier{secret: []byte(secret)}
}

// Sign returns the base64 HMAC-SHA256 digest of rawBody.
func (v *HMACWebhookVerifier) Sign(rawBody []byte) string {
	return base64.StdEncoding.EncodeToString(v.digest(rawBody))
}

// Verify reports whether the signature header matches rawBody.
// A missing, empty or malformed header is treated as a mismatch. Digests are
// compared with hmac.Equal.
func (v *HMACWebhookVerifier) Verify(rawBody []byte, headers http.Header) bool {
	header := headers.Get(HeaderShopifyHMAC)
	if header == "" {
		return false
	}
	received, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return false
	}
	return hmac.Equal(received, v.digest(rawBody))
}

func (v *HMACWebhookVerifier) digest(rawBody []byte) []byte {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(rawBody)
	return mac.Sum(nil)
}
