package redis

import (
	"context"
	"testing"
	"time"
)

func TestIdempotencyStore_RoundTrip(t *testing.T) {
	t.Parallel()

	mr, client := newTestClient(t)
	store := NewIdempotencyStore(client, 0)
	ctx := context.Background()

	key := "PUT:/v1/sessions/session-1/stop:key-1"
	if got, err := store.GetResponse(ctx, key); err != nil || got != nil {
		t.Fatalf("expected miss to return nil, nil; got %+v, %v", got, err)
	}

	resp := &StoredResponse{Status: 200, ContentType: "application/json; charset=utf-8", Body: []byte(`{"amount_due":"1.00"}`)}
	if err := store.SaveResponse(ctx, key, resp); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ttl := mr.TTL("idempotency:" + key); ttl != DefaultIdempotencyTTL {
		t.Errorf("expected ttl %v, got %v", DefaultIdempotencyTTL, ttl)
	}

	got, err := store.GetResponse(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Status != 200 || got.ContentType != resp.ContentType || string(got.Body) != string(resp.Body) {
		t.Errorf("unexpected stored response %+v", got)
	}

	mr.FastForward(DefaultIdempotencyTTL + time.Second)
	if got, err := store.GetResponse(ctx, key); err != nil || got != nil {
		t.Errorf("expected expired response to miss, got %+v, %v", got, err)
	}
}
