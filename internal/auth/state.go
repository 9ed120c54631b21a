package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// StateStore persists OAuth anti-forgery state between the login-start
// redirect and the provider callback. Each record maps the state token to the
// PKCE verifier issued with it, lives for a bounded TTL, and is consumed
// exactly once.
type StateStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStateStore constructs a StateStore.
func NewStateStore(client *redis.Client, ttl time.Duration) *StateStore {
	return &StateStore{client: client, ttl: ttl}
}

// Put records a freshly issued state token with its PKCE verifier.
func (s *StateStore) Put(ctx context.Context, state, verifier string) error {
	if err := s.client.Set(ctx, s.key(state), verifier, s.ttl).Err(); err != nil {
		return fmt.Errorf("auth: store oauth state: %w", err)
	}
	return nil
}

// Consume atomically fetches and deletes the record for a state token.
// Unknown, expired, or replayed tokens return ErrStateMismatch.
func (s *StateStore) Consume(ctx context.Context, state string) (string, error) {
	verifier, err := s.client.GetDel(ctx, s.key(state)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrStateMismatch
		}
		return "", fmt.Errorf("auth: consume oauth state: %w", err)
	}
	return verifier, nil
}

func (s *StateStore) key(state string) string {
	return "lyceum:oauth:state:" + state
}
