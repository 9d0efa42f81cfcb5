package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domain "gymfront/internal/domain/session"
)

const keyPrefix = "gymfront:session:"

// RedisClient is the subset of go-redis the store needs.
type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

var _ RedisClient = (*redis.Client)(nil)

// RedisStore keeps sessions in Redis with a TTL matching their expiry.
type RedisStore struct {
	client RedisClient
	now    func() time.Time
}

// NewRedisStore creates a store over client.
func NewRedisStore(client RedisClient) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

// Create stores s with a TTL equal to its remaining lifetime.
// PRE: s.ExpiresAt is in the future
func (st *RedisStore) Create(ctx context.Context, s domain.Session) (string, error) {
	ttl := s.ExpiresAt.Sub(st.now())
	if ttl <= 0 {
		return "", fmt.Errorf("store session: already expired at %s", s.ExpiresAt.Format(time.RFC3339))
	}
	token, err := NewToken()
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	if err := st.client.Set(ctx, keyPrefix+token, string(data), ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Get retrieves a live session by token.
func (st *RedisStore) Get(ctx context.Context, token string) (domain.Session, error) {
	data, err := st.client.Get(ctx, keyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session: %w", err)
	}
	var s domain.Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return domain.Session{}, fmt.Errorf("decode session: %w", err)
	}
	if s.Expired(st.now()) {
		return domain.Session{}, domain.ErrNotFound
	}
	return s, nil
}

// Delete removes a session.
func (st *RedisStore) Delete(ctx context.Context, token string) error {
	if err := st.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (st *RedisStore) Ping(ctx context.Context) error {
	return st.client.Ping(ctx).Err()
}
