package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/lingvoclub/placement-backend/internal/config"
)

// SessionLock serializes mutations of a single session across concurrent
// requests with a short-lived Redis lock (SET NX). A request that fails to
// acquire the lock lost a race with a duplicate submit and must not apply a
// second transition.
type SessionLock struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSessionLock creates a SessionLock. ttl bounds how long a crashed
// request can hold a session hostage.
func NewSessionLock(rdb *redis.Client, ttl time.Duration) *SessionLock {
	return &SessionLock{rdb: rdb, ttl: ttl}
}

// Acquire takes the per-session lock. It returns a release func on success
// and ok=false when another request already holds the lock.
func (l *SessionLock) Acquire(ctx context.Context, sessionID uuid.UUID) (release func(), ok bool, err error) {
	key := config.CacheKey.SessionLockKey(sessionID.String())
	token := uuid.New().String()

	acquired, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !acquired {
		return nil, false, nil
	}

	release = func() {
		// Only delete the lock if we still own it.
		const script = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) else return 0 end`
		_ = l.rdb.Eval(context.Background(), script, []string{key}, token).Err()
	}
	return release, true, nil
}
