package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"CRMDashboard/internal/domain"
	"CRMDashboard/internal/ports"
)

const snapshotKey = "crmdashboard:snapshot"

// RedisSnapshotCache shares the last snapshot between service instances.
type RedisSnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.SnapshotCache = (*RedisSnapshotCache)(nil)

// NewRedisSnapshotCache connects to redisURL and verifies the connection.
func NewRedisSnapshotCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisSnapshotCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	return NewRedisSnapshotCacheFromClient(client, ttl), nil
}

// NewRedisSnapshotCacheFromClient wraps an existing client.
func NewRedisSnapshotCacheFromClient(client *redis.Client, ttl time.Duration) *RedisSnapshotCache {
	return &RedisSnapshotCache{client: client, ttl: ttl}
}

// Load returns false when nothing is cached or the entry expired.
func (c *RedisSnapshotCache) Load(ctx context.Context) (domain.Snapshot, bool, error) {
	raw, err := c.client.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Snapshot{}, false, nil
	}
	if err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("get snapshot: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, true, nil
}

// Store replaces the cached snapshot.
func (c *RedisSnapshotCache) Store(ctx context.Context, snapshot domain.Snapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := c.client.Set(ctx, snapshotKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set snapshot: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (c *RedisSnapshotCache) Close() error {
	return c.client.Close()
}
