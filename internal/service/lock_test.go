package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLocalLockStore_AcquireRelease(t *testing.T) {
	t.Parallel()

	store := NewLocalLockStore()
	ctx := context.Background()

	token, ok, err := store.Acquire(ctx, "session:AB-123", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected first acquire to succeed, got ok=%v err=%v", ok, err)
	}

	if _, ok, _ := store.Acquire(ctx, "session:AB-123", time.Minute); ok {
		t.Error("expected second acquire to fail while held")
	}

	// A stale token must not release the current holder.
	_ = store.Release(ctx, "session:AB-123", "stale")
	if _, ok, _ := store.Acquire(ctx, "session:AB-123", time.Minute); ok {
		t.Error("expected release with wrong token to be ignored")
	}

	_ = store.Release(ctx, "session:AB-123", token)
	if _, ok, _ := store.Acquire(ctx, "session:AB-123", time.Minute); !ok {
		t.Error("expected acquire to succeed after release")
	}
}

func TestLocalLockStore_ExpiredLockCanBeTaken(t *testing.T) {
	t.Parallel()

	store := NewLocalLockStore()
	ctx := context.Background()

	if _, ok, _ := store.Acquire(ctx, "day:2024-03-15", time.Millisecond); !ok {
		t.Fatal("expected acquire to succeed")
	}
	time.Sleep(5 * time.Millisecond)

	if _, ok, _ := store.Acquire(ctx, "day:2024-03-15", time.Minute); !ok {
		t.Error("expected expired lock to be taken over")
	}
}

func TestWithLock_SerializesCallers(t *testing.T) {
	t.Parallel()

	store := NewLocalLockStore()
	opts := LockOptions{TTL: time.Second, Wait: 5 * time.Second, RetryInterval: time.Millisecond}

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := withLock(context.Background(), store, opts, "session:AB-123", func() error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Errorf("expected at most one holder, saw %d", maxInside)
	}
}

func TestWithLock_GivesUpWhenBusy(t *testing.T) {
	t.Parallel()

	store := NewLocalLockStore()
	ctx := context.Background()
	if _, ok, _ := store.Acquire(ctx, "day:2024-03-15", time.Minute); !ok {
		t.Fatal("expected acquire to succeed")
	}

	called := false
	err := withLock(ctx, store, LockOptions{TTL: time.Second, Wait: 20 * time.Millisecond, RetryInterval: 5 * time.Millisecond},
		"day:2024-03-15", func() error {
			called = true
			return nil
		})
	if !errors.Is(err, ErrResourceBusy) {
		t.Fatalf("expected ErrResourceBusy, got: %v", err)
	}
	if called {
		t.Error("expected fn not to run without the lock")
	}
}

func TestWithLock_ReleasesOnError(t *testing.T) {
	t.Parallel()

	store := NewLocalLockStore()
	opts := LockOptions{TTL: time.Minute, Wait: 0, RetryInterval: time.Millisecond}
	boom := errors.New("boom")

	if err := withLock(context.Background(), store, opts, "session:AB-123", func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got: %v", err)
	}

	if _, ok, _ := store.Acquire(context.Background(), "session:AB-123", time.Minute); !ok {
		t.Error("expected lock to be released after fn failed")
	}
}

func TestLockKeys(t *testing.T) {
	t.Parallel()

	if got := sessionLockKey("AB-123"); got != "session:AB-123" {
		t.Errorf("unexpected session key %q", got)
	}
	if got := dayLockKey(time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)); got != "day:2024-03-05" {
		t.Errorf("unexpected day key %q", got)
	}
	if got := lockResource("day:2024-03-05"); got != "day" {
		t.Errorf("unexpected resource %q", got)
	}
}
