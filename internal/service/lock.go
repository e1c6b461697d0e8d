package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"parking/internal/metrics"
	"parking/internal/redis"
)

// LockOptions controls how long a lock is held and how long callers wait for it.
type LockOptions struct {
	TTL           time.Duration // lock expiry if the holder dies
	Wait          time.Duration // give up with ErrResourceBusy after this
	RetryInterval time.Duration
}

// DefaultLockOptions returns the default lock configuration.
func DefaultLockOptions() LockOptions {
	return LockOptions{
		TTL:           10 * time.Second,
		Wait:          2 * time.Second,
		RetryInterval: 25 * time.Millisecond,
	}
}

func sessionLockKey(plate string) string {
	return "session:" + plate
}

func dayLockKey(day time.Time) string {
	return "day:" + day.Format("2006-01-02")
}

// withLock runs fn while holding key in store.
func withLock(ctx context.Context, store redis.LockStoreInterface, opts LockOptions, key string, fn func() error) error {
	deadline := time.Now().Add(opts.Wait)

	for {
		token, ok, err := store.Acquire(ctx, key, opts.TTL)
		if err != nil {
			return fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			defer store.Release(context.WithoutCancel(ctx), key, token)
			return fn()
		}

		metrics.LockContentionTotal.WithLabelValues(lockResource(key)).Inc()
		if !time.Now().Before(deadline) {
			return fmt.Errorf("%w: %s", ErrResourceBusy, key)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(opts.RetryInterval):
		}
	}
}

func lockResource(key string) string {
	resource, _, _ := strings.Cut(key, ":")
	return resource
}

// LocalLockStore is an in-process lock store for single-instance deployments
// and for running without Redis.
type LocalLockStore struct {
	mu    sync.Mutex
	locks map[string]localLock
	seq   atomic.Int64
}

type localLock struct {
	token  string
	expiry time.Time
}

// NewLocalLockStore creates a new LocalLockStore.
func NewLocalLockStore() *LocalLockStore {
	return &LocalLockStore{locks: make(map[string]localLock)}
}

// Acquire takes the lock for key unless another unexpired holder has it.
func (l *LocalLockStore) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if held, exists := l.locks[key]; exists && now.Before(held.expiry) {
		return "", false, nil
	}

	token := strconv.FormatInt(l.seq.Add(1), 10)
	l.locks[key] = localLock{token: token, expiry: now.Add(ttl)}
	return token, true, nil
}

// Release frees key if it is still held with token.
func (l *LocalLockStore) Release(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if held, exists := l.locks[key]; exists && held.token == token {
		delete(l.locks, key)
	}
	return nil
}

var _ redis.LockStoreInterface = (*LocalLockStore)(nil)
