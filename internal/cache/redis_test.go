package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis tests need a running Redis/Valkey server and are skipped unless
// REDIS_ADDRESS (e.g. "localhost:6379") is set.

func skipIfNoRedis(t *testing.T) string {
	t.Helper()
	addr := os.Getenv("REDIS_ADDRESS")
	if addr == "" {
		t.Skip("Skipping Redis tests: set REDIS_ADDRESS to enable")
	}
	return addr
}

// flushTestRedisDB clears DB 15 so tests start with a clean slate.
func flushTestRedisDB(t *testing.T, addr string) {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	defer client.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush Redis test DB: %v", err)
	}
}

func newTestRedisCache(t *testing.T, ttl time.Duration) Cache {
	t.Helper()
	addr := skipIfNoRedis(t)
	flushTestRedisDB(t, addr)
	c, err := New("redis", ProviderConfig{
		TTL:          ttl,
		RedisAddress: addr,
		RedisDB:      15,
	})
	if err != nil {
		t.Fatalf("New redis cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := newTestRedisCache(t, 10*time.Second)

	if val, ok := c.Get(ctx, "download:1:7"); ok || val != nil {
		t.Fatalf("Expected miss for new key, got %v, %v", val, ok)
	}

	c.Set(ctx, "download:1:7", []byte("hello"))
	val, ok := c.Get(ctx, "download:1:7")
	if !ok || string(val) != "hello" {
		t.Fatalf("Expected 'hello', got %q, %v", val, ok)
	}
}

func TestRedisCache_KeysArePrefixed(t *testing.T) {
	ctx := context.Background()
	c := newTestRedisCache(t, 10*time.Second)
	c.Set(ctx, "download:2:9", []byte("x"))

	raw := redis.NewClient(&redis.Options{Addr: os.Getenv("REDIS_ADDRESS"), DB: 15})
	defer raw.Close()
	n, err := raw.Exists(ctx, keyPrefix+"download:2:9").Result()
	if err != nil || n != 1 {
		t.Fatalf("Expected prefixed key to exist, got %d, %v", n, err)
	}
}

func TestRedisCache_DeleteAndLen(t *testing.T) {
	ctx := context.Background()
	c := newTestRedisCache(t, 10*time.Second)

	if n := c.Len(ctx); n != 0 {
		t.Fatalf("Expected Len 0 on clean DB, got %d", n)
	}

	c.Set(ctx, "a", []byte("1"))
	c.Set(ctx, "b", []byte("2"))
	if n := c.Len(ctx); n != 2 {
		t.Fatalf("Expected Len 2, got %d", n)
	}

	c.Delete(ctx, "a")
	if n := c.Len(ctx); n != 1 {
		t.Fatalf("Expected Len 1 after Delete, got %d", n)
	}
}

func TestRedisCache_TTL(t *testing.T) {
	ctx := context.Background()
	c := newTestRedisCache(t, 100*time.Millisecond)

	c.Set(ctx, "short", []byte("lived"))
	time.Sleep(300 * time.Millisecond)

	if _, ok := c.Get(ctx, "short"); ok {
		t.Fatal("Expected entry to expire")
	}
}
