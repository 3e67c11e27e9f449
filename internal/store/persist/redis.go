package persist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyNamespace = "storefront"

type cmdable interface {
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// RedisStore keeps snapshots in Redis under a namespaced per-session key,
// for deployments where several kiosks share one logical session.
type RedisStore struct {
	store   cmdable
	raw     *redis.Client
	session string
	ttl     time.Duration
}

// NewRedisStore connects to Redis and verifies connectivity.
func NewRedisStore(ctx context.Context, rawURL, session string, ttl time.Duration) (*RedisStore, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, errors.New("redis url is required")
	}
	if strings.TrimSpace(session) == "" {
		return nil, errors.New("session name is required")
	}
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{store: raw, raw: raw, session: session, ttl: ttl}, nil
}

func (r *RedisStore) Save(ctx context.Context, data []byte) error {
	if r.store == nil {
		return errors.New("redis store not initialized")
	}
	return r.store.Set(ctx, r.key(), data, r.ttl).Err()
}

func (r *RedisStore) Load(ctx context.Context) ([]byte, bool, error) {
	if r.store == nil {
		return nil, false, errors.New("redis store not initialized")
	}
	data, err := r.store.Get(ctx, r.key()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if r.store == nil {
		return errors.New("redis store not initialized")
	}
	return r.store.Del(ctx, r.key()).Err()
}

// Close shuts down the underlying client if available.
func (r *RedisStore) Close() error {
	if r.raw == nil {
		return nil
	}
	return r.raw.Close()
}

func (r *RedisStore) key() string {
	return strings.Join([]string{keyNamespace, "session", r.session}, ":")
}
