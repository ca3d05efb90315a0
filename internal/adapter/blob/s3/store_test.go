package s3

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"digital-delivery-gateway/internal/core/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCreds() domain.StorageCredentials {
	return domain.StorageCredentials{
		AccessKeyID:     "AKIAEXAMPLE",
		SecretAccessKey: "secret",
		Bucket:          "acme-files",
		Region:          "us-west-2",
	}
}

func TestSignedURL_VirtualHosted(t *testing.T) {
	store := NewBlobStore(zerolog.Nop())

	raw, err := store.SignedURL(context.Background(), testCreds(), "shop/Guide v2.pdf", 15*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "https", u.Scheme)
	assert.Equal(t, "acme-files.s3.us-west-2.amazonaws.com", u.Host)
	assert.Equal(t, "/shop/Guide v2.pdf", u.Path)

	q := u.Query()
	assert.Equal(t, "900", q.Get("X-Amz-Expires"))
	assert.True(t, strings.HasPrefix(q.Get("X-Amz-Credential"), "AKIAEXAMPLE/"))
	assert.NotEmpty(t, q.Get("X-Amz-Signature"))
}

func TestSignedURL_CustomEndpointPathStyle(t *testing.T) {
	store := NewBlobStore(zerolog.Nop())
	creds := testCreds()
	creds.Endpoint = "http://localhost:9000"
	creds.UsePathStyle = true

	raw, err := store.SignedURL(context.Background(), creds, "file.zip", time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/acme-files/file.zip", u.Path)
	assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))
}

func TestSignedURL_DifferentCredentialsSignDifferently(t *testing.T) {
	store := NewBlobStore(zerolog.Nop())
	other := testCreds()
	other.AccessKeyID = "AKIAMERCHANT"

	a, err := store.SignedURL(context.Background(), testCreds(), "file.zip", time.Hour)
	require.NoError(t, err)
	b, err := store.SignedURL(context.Background(), other, "file.zip", time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Contains(t, b, "AKIAMERCHANT")
}

func TestSignedURL_Rejects(t *testing.T) {
	store := NewBlobStore(zerolog.Nop())

	tests := []struct {
		name  string
		creds func() domain.StorageCredentials
		key   string
		ttl   time.Duration
	}{
		{"missing secret", func() domain.StorageCredentials { c := testCreds(); c.SecretAccessKey = ""; return c }, "k", time.Hour},
		{"missing bucket", func() domain.StorageCredentials { c := testCreds(); c.Bucket = ""; return c }, "k", time.Hour},
		{"empty key", testCreds, "", time.Hour},
		{"zero ttl", testCreds, "k", 0},
		{"ttl beyond sigv4 limit", testCreds, "k", 8 * 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.SignedURL(context.Background(), tt.creds(), tt.key, tt.ttl)
			assert.Error(t, err)
		})
	}
}
