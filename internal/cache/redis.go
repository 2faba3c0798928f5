// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sybila/biodivine/internal/config"
	"github.com/sybila/biodivine/internal/log"
)

const redisOpTimeout = 2 * time.Second

// Redis caches analysis results in a Redis instance so multiple daemon
// replicas share one result set.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedis connects to the configured Redis instance and verifies the
// connection with a ping.
func NewRedis(cfg config.Cache) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	return &Redis{client: client, ttl: cfg.TTL, logger: log.WithComponent("cache")}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	value, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn().Err(err).Str("key", key).Msg("redis get failed")
		}
		return nil, false
	}
	return value, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	if err := r.client.Set(ctx, key, value, r.ttl).Err(); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("redis set failed")
	}
}

func (r *Redis) Invalidate(ctx context.Context, prefix string) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	iter := r.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		r.logger.Warn().Err(err).Str("prefix", prefix).Msg("redis scan failed")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Warn().Err(err).Str("prefix", prefix).Msg("redis delete failed")
	}
}

func (r *Redis) Close() error {
	return r.client.Close()
}
