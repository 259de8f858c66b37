package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_TTL(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "short", []byte("a"), time.Second))
	require.NoError(t, s.Set(ctx, "forever", []byte("b"), 0))

	v, ok, err := s.Get(ctx, "short")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("a"), v)

	now = now.Add(2 * time.Second)
	_, ok, _ = s.Get(ctx, "short")
	assert.False(t, ok, "expired key is gone")

	_, ok, _ = s.Get(ctx, "forever")
	assert.True(t, ok)
}

func TestMemoryStore_Sweep(t *testing.T) {
	now := time.Now()
	s := NewMemoryStore()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	_ = s.Set(ctx, "a", []byte("1"), time.Millisecond)
	_ = s.Set(ctx, "b", []byte("2"), time.Millisecond)
	_ = s.Set(ctx, "c", []byte("3"), time.Hour)

	now = now.Add(time.Second)
	assert.Equal(t, 2, s.Sweep())
}

func TestPackageHelpers_JSONRoundTrip(t *testing.T) {
	prev := Default()
	Use(NewMemoryStore())
	t.Cleanup(func() { Use(prev) })
	ctx := context.Background()

	type token struct {
		Value string `json:"value"`
	}
	require.NoError(t, Set(ctx, "csrf:1", token{Value: "abc"}, time.Minute))

	var got token
	assert.True(t, Get(ctx, "csrf:1", &got))
	assert.Equal(t, "abc", got.Value)

	require.NoError(t, Forget(ctx, "csrf:1"))
	assert.False(t, Get(ctx, "csrf:1", &got))
	assert.NoError(t, Del(ctx))
}
