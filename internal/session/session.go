// Package session records access tokens revoked before their expiry.
package session

import (
	"context"
	"time"
)

// Store keeps revoked token ids until the tokens would have expired anyway.
type Store interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	// Sweep drops entries whose tokens have expired and returns how many were removed.
	Sweep(ctx context.Context) (int, error)
	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

// Open returns a Redis-backed store for redisURL, or a memory store when it is empty.
func Open(redisURL string) (Store, error) {
	if redisURL == "" {
		return NewMemoryStore(), nil
	}
	return NewRedisStore(redisURL)
}
