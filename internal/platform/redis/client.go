// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis provides a managed client for volatile coordination data.

The publishing service uses it for per-comic publish locks: short-lived keys
with a TTL that guarantees a crashed holder cannot block a comic forever.

Core Responsibilities:

  - Volatility: Handles data with TTL (Time-To-Live).
  - Coordination: Atomic SET NX and scripted compare-and-delete.
  - Safety: Manages connection pooling automatically.
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Default timeouts for Redis operations.
const (
	dialTimeout  = 3 * time.Second
	readTimeout  = 2 * time.Second
	writeTimeout = 2 * time.Second
	pingTimeout  = 2 * time.Second
)

/*
NewClient parses a Redis URL and returns a ready-to-use client.

Parameters:
  - context: Context for the initial ping.
  - redisURL: Redis connection URL.
  - logger: Structured logger for connection events.

Returns:
  - *redis.Client: A client that has answered a ping.
  - error: URL parse or connectivity failures.
*/
func NewClient(context stdctx.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	// Lock traffic is tiny; a small pool is enough.
	options.PoolSize = 5
	options.MinIdleConns = 1
	options.MaxIdleConns = 3

	options.DialTimeout = dialTimeout
	options.ReadTimeout = readTimeout
	options.WriteTimeout = writeTimeout

	client := redis.NewClient(options)

	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_client_connected",
		slog.String("addr", options.Addr),
		slog.Int("pool_size", options.PoolSize),
	)

	return client, nil
}

// Ping verifies that the Redis client is healthy.
func Ping(context stdctx.Context, client *redis.Client) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}

	return nil
}
