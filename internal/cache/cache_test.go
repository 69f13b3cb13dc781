package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestCache_SetGetExpire(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	c := New(10 * time.Second)
	c.now = func() time.Time { return now }

	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("expected miss on empty cache")
	}

	_ = c.Set(ctx, "k", []byte("v"))

	b, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || string(b) != "v" {
		t.Fatalf("expected hit, got %q %v %v", b, ok, err)
	}

	now = now.Add(11 * time.Second)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("expected expiry after ttl")
	}
}

func TestCache_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	c := New(time.Minute)

	_ = c.Set(ctx, "a", []byte("1"))
	_ = c.Set(ctx, "b", []byte("2"))
	_ = c.Delete(ctx, "a")

	if _, ok, _ := c.Get(ctx, "a"); ok {
		t.Fatalf("a should be deleted")
	}

	c.Clear()
	if _, ok, _ := c.Get(ctx, "b"); ok {
		t.Fatalf("b should be cleared")
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	c := NewRedis(RedisConfig{Addr: addr, TTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	key := UserKey("test-" + time.Now().Format(time.RFC3339Nano))
	if _, ok, err := c.Get(ctx, key); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	if err := c.Set(ctx, key, []byte(`{"name":"x"}`)); err != nil {
		t.Fatalf("set: %v", err)
	}

	b, ok, err := c.Get(ctx, key)
	if err != nil || !ok || string(b) != `{"name":"x"}` {
		t.Fatalf("unexpected get: %q %v %v", b, ok, err)
	}

	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := c.Get(ctx, key); ok {
		t.Fatalf("expected miss after delete")
	}
}
