// Package fallback keeps orders on local disk when the record store rejects
// a write. The file is a JSON object keyed by order id.
package fallback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"digital-delivery-gateway/internal/core/domain"

	"github.com/rs/zerolog"
)

// FileStore implements ports.FallbackOrderStore.
type FileStore struct {
	mu     sync.Mutex
	path   string
	orders map[string]domain.Order
	log    zerolog.Logger
}

// Open loads path if it exists. A missing file starts an empty store and is
// created on the first Add.
func Open(path string, log zerolog.Logger) (*FileStore, error) {
	s := &FileStore{
		path:   path,
		orders: make(map[string]domain.Order),
		log:    log,
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Warn().Str("path", path).Msg("fallback order file not found, starting empty")
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read fallback orders: %w", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.orders); err != nil {
			return nil, fmt.Errorf("decode fallback orders %s: %w", path, err)
		}
	}
	return s, nil
}

// Add keeps order unless one with the same OrderID is already held.
func (s *FileStore) Add(_ context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[order.OrderID]; ok {
		return domain.ErrDuplicateOrder
	}
	s.orders[order.OrderID] = *order

	if err := s.flush(); err != nil {
		delete(s.orders, order.OrderID)
		return err
	}
	s.log.Warn().Str("order_id", order.OrderID).Int("held", len(s.orders)).Msg("order written to fallback file")
	return nil
}

// Len returns the number of kept orders.
func (s *FileStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// flush rewrites the whole file through a temp file and rename so a crash
// never leaves a truncated document. Caller holds mu.
func (s *FileStore) flush() error {
	data, err := json.MarshalIndent(s.orders, "", "  ")
	if err != nil {
		return fmt.Errorf("encode fallback orders: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create fallback dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".orders-*.json")
	if err != nil {
		return fmt.Errorf("create fallback temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write fallback orders: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync fallback orders: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close fallback orders: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace fallback orders: %w", err)
	}
	return nil
}
