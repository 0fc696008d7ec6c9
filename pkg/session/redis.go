package session

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/depscope/pkg/cache"
)

const redisKeyPrefix = "depscope:session:"

// RedisConfig configures a RedisStore.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisStore keeps snapshots in Redis so several server instances can share
// sessions. Keys expire after the configured TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: redis %s: %v", cache.ErrUnavailable, cfg.Addr, err)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	var data []byte
	err := cache.RetryWithBackoff(ctx, retryBase, func() error {
		b, err := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
		if err != nil {
			return transient(err)
		}
		data = b
		return nil
	})
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", id, err)
	}
	snap, _, err := decode(data)
	return snap, err
}

func (s *RedisStore) Set(ctx context.Context, snap *Snapshot) error {
	data, err := encode(snap, s.ttl)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return cache.RetryWithBackoff(ctx, retryBase, func() error {
		return transient(s.client.Set(ctx, redisKeyPrefix+snap.ID, data, s.ttl).Err())
	})
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, redisKeyPrefix+id).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)

const retryBase = 100 * time.Millisecond

// transient marks network failures as retryable.
func transient(err error) error {
	var netErr net.Error
	if err != nil && errors.As(err, &netErr) {
		return cache.Retryable(err)
	}
	return err
}
