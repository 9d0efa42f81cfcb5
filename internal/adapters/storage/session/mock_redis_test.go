package session

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// mockRedis is a minimal in-memory stand-in for the commands the store uses.
type mockRedis struct {
	mu   sync.RWMutex
	data map[string]mockValue
	ttls map[string]time.Duration

	SetError error
	GetError error
	DelError error
}

type mockValue struct {
	value     string
	expiresAt time.Time
}

func newMockRedis() *mockRedis {
	return &mockRedis{data: make(map[string]mockValue), ttls: make(map[string]time.Duration)}
}

func (m *mockRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := redis.NewStatusCmd(ctx)
	if m.SetError != nil {
		cmd.SetErr(m.SetError)
		return cmd
	}
	expiresAt := time.Time{}
	if expiration > 0 {
		expiresAt = time.Now().Add(expiration)
	}
	m.data[key] = mockValue{value: value.(string), expiresAt: expiresAt}
	m.ttls[key] = expiration
	cmd.SetVal("OK")
	return cmd
}

func (m *mockRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cmd := redis.NewStringCmd(ctx)
	if m.GetError != nil {
		cmd.SetErr(m.GetError)
		return cmd
	}
	val, ok := m.data[key]
	if !ok || (!val.expiresAt.IsZero() && time.Now().After(val.expiresAt)) {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(val.value)
	return cmd
}

func (m *mockRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := redis.NewIntCmd(ctx)
	if m.DelError != nil {
		cmd.SetErr(m.DelError)
		return cmd
	}
	var deleted int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			delete(m.data, key)
			deleted++
		}
	}
	cmd.SetVal(deleted)
	return cmd
}

func (m *mockRedis) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("PONG")
	return cmd
}

func (m *mockRedis) ttl(key string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ttls[key]
}
