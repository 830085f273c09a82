package cache

import (
	"context"
	"sync"
	"time"

	"github.com/erp/connector/internal/domain/shared"
)

// sweepEvery is the interval between expired-key sweeps
const sweepEvery = 5 * time.Minute

// InMemoryIdempotencyStore keeps reserved keys in process memory. Keys are
// not shared between instances; use the Redis store behind a load balancer.
type InMemoryIdempotencyStore struct {
	mu      sync.Mutex
	held    map[string]time.Time // key -> expiry
	now     func() time.Time
	done    chan struct{}
	stopped sync.WaitGroup
	once    sync.Once
}

// NewInMemoryIdempotencyStore starts a store and its sweeper
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		held: make(map[string]time.Time),
		now:  time.Now,
		done: make(chan struct{}),
	}
	s.stopped.Add(1)
	go s.sweeper()
	return s
}

// Reserve claims key until now+ttl
func (s *InMemoryIdempotencyStore) Reserve(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.live(key, now) {
		return false, nil
	}
	s.held[key] = now.Add(ttl)
	return true, nil
}

// Reserved reports whether key is held
func (s *InMemoryIdempotencyStore) Reserved(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live(key, s.now()), nil
}

// Close stops the sweeper. It may be called more than once.
func (s *InMemoryIdempotencyStore) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.stopped.Wait()
	})
	return nil
}

// Len is the number of keys currently stored, expired or not
func (s *InMemoryIdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.held)
}

// live must be called with mu held
func (s *InMemoryIdempotencyStore) live(key string, now time.Time) bool {
	exp, ok := s.held[key]
	return ok && now.Before(exp)
}

func (s *InMemoryIdempotencyStore) sweeper() {
	defer s.stopped.Done()
	t := time.NewTicker(sweepEvery)
	defer t.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-t.C:
			s.sweep()
		}
	}
}

func (s *InMemoryIdempotencyStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for key := range s.held {
		if !s.live(key, now) {
			delete(s.held, key)
		}
	}
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
