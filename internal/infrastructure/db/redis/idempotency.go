package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/h2eaux/gestion-api/internal/core/ports"
)

const (
	// idempotencyTTL is how long a finished create can be replayed.
	idempotencyTTL = 24 * time.Hour
	// reservationTTL bounds how long a crashed create can block its key.
	reservationTTL = 30 * time.Second
)

// IdempotencyStore maps Idempotency-Key headers to the client record they
// created. Keys live under idem:clients:<key>.
type IdempotencyStore struct {
	client *redis.Client
}

func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// Reserve sets the pending marker with SETNX. When the key is already held
// it returns the stored value instead.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (string, bool, error) {
	k := s.key(key)
	// The held key may expire between SETNX and GET; one retry covers it.
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.client.SetNX(ctx, k, ports.IdempotencyPending, reservationTTL).Result()
		if err != nil {
			return "", false, fmt.Errorf("idempotency reserve: %w", err)
		}
		if ok {
			return "", true, nil
		}

		stored, err := s.client.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("idempotency lookup: %w", err)
		}
		return stored, false, nil
	}
	return ports.IdempotencyPending, false, nil
}

// Bind overwrites key with clientID and starts the replay window.
func (s *IdempotencyStore) Bind(ctx context.Context, key, clientID string) error {
	if err := s.client.Set(ctx, s.key(key), clientID, idempotencyTTL).Err(); err != nil {
		return fmt.Errorf("idempotency bind: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) key(k string) string {
	return "idem:clients:" + k
}
