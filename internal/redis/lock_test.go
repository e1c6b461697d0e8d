package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestLockStore_AcquireIsExclusivePerKey(t *testing.T) {
	t.Parallel()

	mr, client := newTestClient(t)
	store := NewLockStore(client)
	ctx := context.Background()

	token, ok, err := store.Acquire(ctx, "session:AB-123", 10*time.Second)
	if err != nil || !ok {
		t.Fatalf("expected first acquire to succeed, got ok=%v err=%v", ok, err)
	}
	if token == "" {
		t.Fatal("expected a holder token")
	}
	if got, _ := mr.Get("lock:session:AB-123"); got != token {
		t.Errorf("expected stored token %q, got %q", token, got)
	}
	if ttl := mr.TTL("lock:session:AB-123"); ttl != 10*time.Second {
		t.Errorf("expected ttl 10s, got %v", ttl)
	}

	if _, ok, err := store.Acquire(ctx, "session:AB-123", 10*time.Second); err != nil || ok {
		t.Errorf("expected held lock to be refused, got ok=%v err=%v", ok, err)
	}
	if _, ok, err := store.Acquire(ctx, "session:CD-456", 10*time.Second); err != nil || !ok {
		t.Errorf("expected other key to be free, got ok=%v err=%v", ok, err)
	}
}

func TestLockStore_ReleaseRequiresHolderToken(t *testing.T) {
	t.Parallel()

	mr, client := newTestClient(t)
	store := NewLockStore(client)
	ctx := context.Background()

	token, _, err := store.Acquire(ctx, "day:2024-03-15", 10*time.Second)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	if err := store.Release(ctx, "day:2024-03-15", "someone-else"); err != nil {
		t.Fatalf("release with foreign token: %v", err)
	}
	if !mr.Exists("lock:day:2024-03-15") {
		t.Fatal("expected foreign token to leave the lock in place")
	}

	if err := store.Release(ctx, "day:2024-03-15", token); err != nil {
		t.Fatalf("release: %v", err)
	}
	if mr.Exists("lock:day:2024-03-15") {
		t.Fatal("expected holder token to free the lock")
	}

	if _, ok, err := store.Acquire(ctx, "day:2024-03-15", 10*time.Second); err != nil || !ok {
		t.Errorf("expected lock to be free again, got ok=%v err=%v", ok, err)
	}
}

func TestLockStore_ExpiredLockCanBeRetaken(t *testing.T) {
	t.Parallel()

	mr, client := newTestClient(t)
	store := NewLockStore(client)
	ctx := context.Background()

	stale, _, err := store.Acquire(ctx, "session:AB-123", 2*time.Second)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	mr.FastForward(3 * time.Second)

	fresh, ok, err := store.Acquire(ctx, "session:AB-123", 2*time.Second)
	if err != nil || !ok {
		t.Fatalf("expected expired lock to be retaken, got ok=%v err=%v", ok, err)
	}
	if fresh == stale {
		t.Fatal("expected a new holder token")
	}

	if err := store.Release(ctx, "session:AB-123", stale); err != nil {
		t.Fatalf("release with stale token: %v", err)
	}
	if got, _ := mr.Get("lock:session:AB-123"); got != fresh {
		t.Errorf("expected stale holder to leave the new lock alone, got %q", got)
	}
}
