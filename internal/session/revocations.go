package session

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revocations remembers revoked token ids until a given time.
type Revocations interface {
	Revoke(ctx context.Context, id string, until time.Time) error
	IsRevoked(ctx context.Context, id string) (bool, error)
}

// MemoryRevocations is a process-local revocation list.
type MemoryRevocations struct {
	mu      sync.Mutex
	entries map[string]time.Time
	Now     func() time.Time
}

func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{entries: map[string]time.Time{}}
}

func (m *MemoryRevocations) Revoke(_ context.Context, id string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := now(m.Now)
	for k, exp := range m.entries {
		if !t.Before(exp) {
			delete(m.entries, k)
		}
	}
	m.entries[id] = until
	return nil
}

func (m *MemoryRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.entries[id]
	return ok && now(m.Now).Before(exp), nil
}

// RedisRevocations shares the revocation list between instances.  Each id
// is stored under Prefix:id with a TTL matching the token's remaining life.
type RedisRevocations struct {
	RDB    *redis.Client
	Prefix string
}

func NewRedisRevocations(rdb *redis.Client, prefix string) *RedisRevocations {
	if prefix == "" {
		prefix = "revoked"
	}
	return &RedisRevocations{RDB: rdb, Prefix: prefix}
}

func (r *RedisRevocations) Revoke(ctx context.Context, id string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return r.RDB.SetEx(ctx, r.Prefix+":"+id, 1, ttl).Err()
}

func (r *RedisRevocations) IsRevoked(ctx context.Context, id string) (bool, error) {
	n, err := r.RDB.Exists(ctx, r.Prefix+":"+id).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
