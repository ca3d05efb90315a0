package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ReplayGuard implements ports.ReplayGuard using Redis SET NX.
type ReplayGuard struct {
	client goredis.UniversalClient
	prefix string
}

// NewReplayGuard creates a Redis-backed webhook replay guard.
func NewReplayGuard(client goredis.UniversalClient) *ReplayGuard {
	return &ReplayGuard{
		client: client,
		prefix: "webhook:",
	}
}

// CheckAndSet records a webhook delivery id under its topic.
// Returns true the first time an id is seen within ttl, false afterwards.
func (g *ReplayGuard) CheckAndSet(ctx context.Context, scope string, id string, ttl time.Duration) (bool, error) {
	key := g.key(scope, id)
	result, err := g.client.SetArgs(ctx, key, 1, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis replay check: %w", err)
	}
	return result == "OK", nil
}

// Forget deletes a recorded delivery id.
func (g *ReplayGuard) Forget(ctx context.Context, scope string, id string) error {
	if err := g.client.Del(ctx, g.key(scope, id)).Err(); err != nil {
		return fmt.Errorf("redis replay forget: %w", err)
	}
	return nil
}

func (g *ReplayGuard) key(scope, id string) string {
	return g.prefix + scope + ":" + id
}
