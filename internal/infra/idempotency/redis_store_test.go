package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_ClaimOncePerWindow(t *testing.T) {
	store := &memoryStore{claims: map[string]time.Time{}}
	ctx := context.Background()

	first, err := store.Claim(ctx, "evt_1", time.Minute)
	require.NoError(t, err)
	assert.True(t, first)

	replay, err := store.Claim(ctx, "evt_1", time.Minute)
	require.NoError(t, err)
	assert.False(t, replay)

	other, err := store.Claim(ctx, "evt_2", time.Minute)
	require.NoError(t, err)
	assert.True(t, other)
}

func TestMemoryStore_ExpiredClaimReopens(t *testing.T) {
	store := &memoryStore{claims: map[string]time.Time{}}
	ctx := context.Background()

	first, err := store.Claim(ctx, "evt_1", time.Nanosecond)
	require.NoError(t, err)
	assert.True(t, first)

	time.Sleep(2 * time.Millisecond)

	again, err := store.Claim(ctx, "evt_1", time.Minute)
	require.NoError(t, err)
	assert.True(t, again)
}
