package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist revokes tokens before they expire
type TokenBlacklist interface {
	// Revoke blacklists one token id. ttl should be the token's remaining lifetime.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error

	// IsRevoked checks if a token id is blacklisted
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// RevokeSubject invalidates every token of subject (username@db) issued
	// up to now
	RevokeSubject(ctx context.Context, subject string, ttl time.Duration) error

	// IsSubjectRevoked reports whether a token issued at issuedAt falls before
	// the subject's invalidation time
	IsSubjectRevoked(ctx context.Context, subject string, issuedAt time.Time) (bool, error)
}

const blacklistKeyPrefix = "ledger:token:blacklist:"

// RedisTokenBlacklist implements TokenBlacklist using Redis
type RedisTokenBlacklist struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisTokenBlacklist creates a token blacklist on an existing Redis client
func NewRedisTokenBlacklist(client redis.UniversalClient) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{client: client, keyPrefix: blacklistKeyPrefix}
}

func (b *RedisTokenBlacklist) jtiKey(jti string) string {
	return b.keyPrefix + "jti:" + jti
}

func (b *RedisTokenBlacklist) subjectKey(subject string) string {
	return b.keyPrefix + "subject:" + subject
}

// Revoke adds a token id to the blacklist
func (b *RedisTokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already expired; the signature check rejects it anyway
		return nil
	}
	if err := b.client.Set(ctx, b.jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to add token to blacklist: %w", err)
	}
	return nil
}

// IsRevoked checks if a token id is in the blacklist
func (b *RedisTokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, b.jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return n > 0, nil
}

// RevokeSubject stores the invalidation time in unix seconds
func (b *RedisTokenBlacklist) RevokeSubject(ctx context.Context, subject string, ttl time.Duration) error {
	err := b.client.Set(ctx, b.subjectKey(subject), time.Now().Unix(), ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to invalidate subject tokens: %w", err)
	}
	return nil
}

// IsSubjectRevoked compares issuedAt with the stored invalidation time
func (b *RedisTokenBlacklist) IsSubjectRevoked(ctx context.Context, subject string, issuedAt time.Time) (bool, error) {
	raw, err := b.client.Get(ctx, b.subjectKey(subject)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check subject invalidation: %w", err)
	}
	invalidatedAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse invalidation timestamp: %w", err)
	}
	return issuedAt.Unix() <= invalidatedAt, nil
}

var _ TokenBlacklist = (*RedisTokenBlacklist)(nil)

// InMemoryTokenBlacklist keeps revocations in process memory.
// WARNING: revocations are not shared between instances
type InMemoryTokenBlacklist struct {
	mu       sync.Mutex
	tokens   map[string]time.Time // jti -> expiry of the entry
	subjects map[string]time.Time // subject -> invalidation time
	now      func() time.Time
}

// NewInMemoryTokenBlacklist creates a new in-memory token blacklist
func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{
		tokens:   make(map[string]time.Time),
		subjects: make(map[string]time.Time),
		now:      time.Now,
	}
}

func (b *InMemoryTokenBlacklist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[jti] = b.now().Add(ttl)
	return nil
}

func (b *InMemoryTokenBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	expiry, ok := b.tokens[jti]
	if !ok {
		return false, nil
	}
	if b.now().After(expiry) {
		delete(b.tokens, jti)
		return false, nil
	}
	return true, nil
}

func (b *InMemoryTokenBlacklist) RevokeSubject(_ context.Context, subject string, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subjects[subject] = b.now()
	return nil
}

func (b *InMemoryTokenBlacklist) IsSubjectRevoked(_ context.Context, subject string, issuedAt time.Time) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	invalidatedAt, ok := b.subjects[subject]
	if !ok {
		return false, nil
	}
	return !issuedAt.After(invalidatedAt), nil
}

var _ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
