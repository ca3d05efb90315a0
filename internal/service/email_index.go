package service

import (
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for the email blind index. The index is computed on
// every ingested order, so memory is kept well below password-hash settings.
const (
	indexArgon2Time    = 1
	indexArgon2Memory  = 19 * 1024 // 19MB
	indexArgon2Threads = 2
	indexArgon2KeyLen  = 32
)

// Argon2EmailIndexer implements ports.EmailIndexer. The same email and
// pepper always produce the same index, which lets support staff find orders
// by customer email while the address itself stays encrypted.
type Argon2EmailIndexer struct {
	pepper []byte
}

// NewArgon2EmailIndexer creates an indexer salted with pepper.
func NewArgon2EmailIndexer(pepper string) (*Argon2EmailIndexer, error) {
	if len(pepper) < 8 {
		return nil, errors.New("email index pepper must be at least 8 bytes")
	}
	return &Argon2EmailIndexer{pepper: []byte(pepper)}, nil
}

// Index returns the hex-encoded argon2id key of the normalized email.
func (s *Argon2EmailIndexer) Index(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	key := argon2.IDKey([]byte(normalized), s.pepper, indexArgon2Time, indexArgon2Memory, indexArgon2Threads, indexArgon2KeyLen)
	return hex.EncodeToString(key)
}
