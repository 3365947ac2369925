package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, time.Minute)
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	type summary struct {
		Count int `json:"count"`
	}

	hit, err := store.Get(ctx, "reports:roles", &summary{})
	if err != nil {
		t.Fatalf("get empty: %v", err)
	}
	if hit {
		t.Fatalf("expected miss on empty cache")
	}

	if err := store.Set(ctx, "reports:roles", summary{Count: 4}); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got summary
	hit, err = store.Get(ctx, "reports:roles", &got)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !hit || got.Count != 4 {
		t.Fatalf("expected hit with count 4, got hit=%v count=%d", hit, got.Count)
	}

	if err := store.Invalidate(ctx, "reports:roles"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	hit, err = store.Get(ctx, "reports:roles", &got)
	if err != nil {
		t.Fatalf("get after invalidate: %v", err)
	}
	if hit {
		t.Fatalf("expected miss after invalidate")
	}
}

func TestNilStoreIsNoop(t *testing.T) {
	var store *Store
	ctx := context.Background()

	if err := store.Set(ctx, "k", 1); err != nil {
		t.Fatalf("nil set: %v", err)
	}
	var v int
	hit, err := store.Get(ctx, "k", &v)
	if err != nil || hit {
		t.Fatalf("nil get: hit=%v err=%v", hit, err)
	}
}
