package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Revoke(ctx, "short", now.Add(time.Minute)))
	require.NoError(t, store.Revoke(ctx, "long", now.Add(time.Hour)))
	require.NoError(t, store.Revoke(ctx, "stale", now.Add(-time.Minute)))

	revoked, err := store.IsRevoked(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, revoked)

	now = now.Add(10 * time.Minute)

	revoked, err = store.IsRevoked(ctx, "short")
	require.NoError(t, err)
	assert.False(t, revoked, "expired entries no longer count")

	removed, err := store.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	revoked, err = store.IsRevoked(ctx, "long")
	require.NoError(t, err)
	assert.True(t, revoked)
}
