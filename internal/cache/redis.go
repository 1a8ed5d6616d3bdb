package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis is a Store shared across instances. Values are JSON encoded.
// Any Redis error is logged and treated as a miss.
type Redis[V any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return client, nil
}

// NewRedis wraps client as a Store whose keys are namespaced by prefix.
func NewRedis[V any](client *redis.Client, prefix string, ttl time.Duration, log *zap.Logger) *Redis[V] {
	return &Redis[V]{client: client, prefix: prefix, ttl: ttl, log: log}
}

func (r *Redis[V]) key(k string) string {
	return r.prefix + ":" + k
}

func (r *Redis[V]) Get(ctx context.Context, key string) (V, bool) {
	var v V
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn("redis get failed", zap.String("key", r.key(key)), zap.Error(err))
		}
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		r.log.Warn("redis decode failed", zap.String("key", r.key(key)), zap.Error(err))
		return v, false
	}
	return v, true
}

func (r *Redis[V]) Set(ctx context.Context, key string, v V) {
	data, err := json.Marshal(v)
	if err != nil {
		r.log.Warn("redis encode failed", zap.String("key", r.key(key)), zap.Error(err))
		return
	}
	if err := r.client.Set(ctx, r.key(key), data, r.ttl).Err(); err != nil {
		r.log.Warn("redis set failed", zap.String("key", r.key(key)), zap.Error(err))
	}
}
