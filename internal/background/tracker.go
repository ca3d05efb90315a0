// Package background runs work that outlives the request that started it,
// such as paid-order processing after the webhook ack, and lets shutdown
// wait for it.
package background

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Tracker implements ports.TaskRunner.
type Tracker struct {
	wg      sync.WaitGroup
	pending atomic.Int64
	log     zerolog.Logger
}

// NewTracker creates an empty Tracker.
func NewTracker(log zerolog.Logger) *Tracker {
	return &Tracker{log: log}
}

// Go runs f on its own goroutine. A panic in f is logged and swallowed.
func (t *Tracker) Go(f func()) {
	t.wg.Add(1)
	t.pending.Add(1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				t.log.Error().Interface("panic", r).Msg("background task panicked")
			}
			t.pending.Add(-1)
			t.wg.Done()
		}()
		f()
	}()
}

// Pending reports how many tasks have not finished.
func (t *Tracker) Pending() int {
	return int(t.pending.Load())
}

// Wait blocks until every task has finished or ctx is done. Tasks started by
// running tasks are waited for too.
func (t *Tracker) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%d background tasks still running: %w", t.Pending(), ctx.Err())
	}
}
