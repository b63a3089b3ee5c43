package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSet(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	_, ok := m.Get(ctx, "grants", "tenant-a", "user-1")
	assert.False(t, ok)

	m.Set(ctx, "grants", "tenant-a", "user-1", []byte(`["stock:read"]`), time.Minute)
	value, ok := m.Get(ctx, "grants", "tenant-a", "user-1")
	require.True(t, ok)
	assert.Equal(t, []byte(`["stock:read"]`), value)

	// same key under another tenant stays independent
	_, ok = m.Get(ctx, "grants", "tenant-b", "user-1")
	assert.False(t, ok)

	m.Delete(ctx, "grants", "tenant-a", "user-1")
	_, ok = m.Get(ctx, "grants", "tenant-a", "user-1")
	assert.False(t, ok)
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	m.Set(ctx, "suppliers", "tenant-a", "sup-1", []byte("acme"), 10*time.Millisecond)
	_, ok := m.Get(ctx, "suppliers", "tenant-a", "sup-1")
	assert.True(t, ok)

	time.Sleep(20 * time.Millisecond)
	_, ok = m.Get(ctx, "suppliers", "tenant-a", "sup-1")
	assert.False(t, ok)
}

func TestMemorySweep(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	m.Set(ctx, "ns", "t", "a", []byte("1"), time.Millisecond)
	m.Set(ctx, "ns", "t", "b", []byte("2"), time.Hour)
	time.Sleep(5 * time.Millisecond)
	m.sweep()

	assert.Equal(t, 1, m.Size())
}
