package service

import (
	"crypto/rand"
	"fmt"
	"io"
)

const (
	slugAlphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	slugLength       = 8
	publicIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
	publicIDLength   = 24
)

// randReader is swapped in tests.
var randReader io.Reader = rand.Reader

// GenerateSlug returns an 8-character download slug drawn from A-Z0-9.
func GenerateSlug() (string, error) {
	s, err := randomString(slugAlphabet, slugLength)
	if err != nil {
		return "", fmt.Errorf("generating slug: %w", err)
	}
	return s, nil
}

// GeneratePublicOrderID returns a 24-character URL-safe order reference.
// It is unrelated to the storefront order id and not guessable from it.
func GeneratePublicOrderID() (string, error) {
	s, err := randomString(publicIDAlphabet, publicIDLength)
	if err != nil {
		return "", fmt.Errorf("generating public order id: %w", err)
	}
	return s, nil
}

// randomString draws n symbols uniformly from alphabet. Bytes at or above
// the largest multiple of len(alphabet) are discarded to avoid modulo bias.
func randomString(alphabet string, n int) (string, error) {
	size := len(alphabet)
	limit := 256 - 256%size

	out := make([]byte, 0, n)
	buf := make([]byte, n+n/2)
	for len(out) < n {
		if _, err := io.ReadFull(randReader, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%size])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}
