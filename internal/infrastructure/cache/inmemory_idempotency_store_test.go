package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/connector/internal/infrastructure/config"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClockedStore(t *testing.T) (*InMemoryIdempotencyStore, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewInMemoryIdempotencyStore()
	store.now = clock.Now
	t.Cleanup(func() { _ = store.Close() })
	return store, clock
}

func TestInMemoryIdempotencyStore_Reserve(t *testing.T) {
	ctx := context.Background()
	store, clock := newClockedStore(t)

	ok, err := store.Reserve(ctx, "admin@acme POST /api/v1/bills k1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Reserve(ctx, "admin@acme POST /api/v1/bills k1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "a held key is refused")

	ok, err = store.Reserve(ctx, "admin@acme POST /api/v1/bills k2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "other keys are independent")

	clock.Advance(time.Minute)
	ok, err = store.Reserve(ctx, "admin@acme POST /api/v1/bills k1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "the key is free again once the ttl has run out")
}

func TestInMemoryIdempotencyStore_Reserved(t *testing.T) {
	ctx := context.Background()
	store, clock := newClockedStore(t)

	held, err := store.Reserved(ctx, "k")
	require.NoError(t, err)
	assert.False(t, held)

	_, err = store.Reserve(ctx, "k", time.Minute)
	require.NoError(t, err)
	held, _ = store.Reserved(ctx, "k")
	assert.True(t, held)

	clock.Advance(61 * time.Second)
	held, _ = store.Reserved(ctx, "k")
	assert.False(t, held)
}

func TestInMemoryIdempotencyStore_Sweep(t *testing.T) {
	ctx := context.Background()
	store, clock := newClockedStore(t)

	for _, k := range []string{"a", "b"} {
		_, _ = store.Reserve(ctx, k, time.Second)
	}
	_, _ = store.Reserve(ctx, "c", time.Hour)
	require.Equal(t, 3, store.Len())

	clock.Advance(time.Minute)
	store.sweep()

	assert.Equal(t, 1, store.Len())
	held, _ := store.Reserved(ctx, "c")
	assert.True(t, held)
}

func TestInMemoryIdempotencyStore_SingleWinner(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, err := store.Reserve(context.Background(), "same", time.Hour); err == nil && ok {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, winners)
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestStoreFactory_RedisDisabled(t *testing.T) {
	stores, err := NewStoreFactory(config.RedisConfig{Enabled: false}).Create(context.Background())
	require.NoError(t, err)
	defer stores.Close()

	assert.IsType(t, &InMemoryIdempotencyStore{}, stores.Idempotency)
	assert.NotNil(t, stores.Blacklist)
}

func TestStoreFactory_UnreachableRedis(t *testing.T) {
	// Port 1 on loopback refuses connections immediately
	cfg := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}

	_, err := NewStoreFactory(cfg).Create(context.Background())
	require.Error(t, err)

	stores, err := NewStoreFactory(cfg, WithInMemoryFallback(true)).Create(context.Background())
	require.NoError(t, err)
	defer stores.Close()
	assert.IsType(t, &InMemoryIdempotencyStore{}, stores.Idempotency)
}
