// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package publish

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/yomira-publish/internal/platform/constants"
	"github.com/taibuivan/yomira-publish/pkg/uuid"
)

// # Locks

// Unlock releases a lock obtained from a [Locker].
type Unlock func(ctx context.Context) error

// Locker grants one publish or unpublish run per comic at a time.
type Locker interface {
	// Acquire returns ErrLockHeld when another run owns the comic.
	Acquire(ctx context.Context, comicID string) (Unlock, error)
}

// releaseScript deletes the key only if it still holds our token, so a run
// whose lock expired cannot free a newer holder's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements [Locker] with SET NX PX, shared across replicas.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLocker builds a locker whose keys expire after ttl (zero uses
// [constants.PublishLockTTL]).
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = constants.PublishLockTTL
	}
	return &RedisLocker{client: client, ttl: ttl}
}

func (locker *RedisLocker) Acquire(ctx context.Context, comicID string) (Unlock, error) {
	key := constants.RedisPrefixPublishLock + comicID
	token := uuid.New()

	acquired, err := locker.client.SetNX(ctx, key, token, locker.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("publish lock: %w", err)
	}
	if !acquired {
		return nil, ErrLockHeld
	}

	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, locker.client, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("publish lock release: %w", err)
		}
		return nil
	}, nil
}

// LocalLocker implements [Locker] in process memory, for single-replica
// deployments without Redis and for the CLI.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]string
}

// NewLocalLocker returns an empty in-process locker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]string)}
}

func (locker *LocalLocker) Acquire(_ context.Context, comicID string) (Unlock, error) {
	locker.mu.Lock()
	defer locker.mu.Unlock()

	if _, busy := locker.held[comicID]; busy {
		return nil, ErrLockHeld
	}
	token := uuid.New()
	locker.held[comicID] = token

	return func(context.Context) error {
		locker.mu.Lock()
		defer locker.mu.Unlock()
		if locker.held[comicID] == token {
			delete(locker.held, comicID)
		}
		return nil
	}, nil
}
