package storage

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCache_Lock(t *testing.T) {
	cache := NewMemoryCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	if ok, _ := cache.AcquireLock(ctx, "item:1", "a", time.Second); !ok {
		t.Fatal("expected lock")
	}
	if ok, _ := cache.AcquireLock(ctx, "item:1", "b", time.Second); ok {
		t.Error("expected second holder to be refused")
	}

	cache.ReleaseLock(ctx, "item:1", "b")
	if ok, _ := cache.AcquireLock(ctx, "item:1", "b", time.Second); ok {
		t.Error("foreign token released the lock")
	}

	now = now.Add(2 * time.Second)
	if ok, _ := cache.AcquireLock(ctx, "item:1", "b", time.Second); !ok {
		t.Error("expected expired lock to be reclaimable")
	}

	cache.ReleaseLock(ctx, "item:1", "b")
	if ok, _ := cache.AcquireLock(ctx, "item:1", "c", time.Second); !ok {
		t.Error("expected released lock to be free")
	}
}

func TestMemoryCache_Idempotency(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	if ok, _ := cache.SetIdempotency(ctx, "k"); !ok {
		t.Fatal("expected first claim to succeed")
	}
	if ok, _ := cache.SetIdempotency(ctx, "k"); ok {
		t.Error("expected duplicate claim to fail")
	}

	cache.ClearIdempotency(ctx, "k")
	if ok, _ := cache.SetIdempotency(ctx, "k"); !ok {
		t.Error("expected claim after clear to succeed")
	}
}
