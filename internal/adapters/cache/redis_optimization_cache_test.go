package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T, ttl time.Duration) (*RedisOptimizationCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisOptimizationCache(client, ttl), mr
}

func TestRedisOptimizationCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)

	if _, ok, err := c.GetResponse(ctx, "abc"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	if err := c.PutResponse(ctx, "abc", []byte(`{"code":0}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !mr.Exists(defaultKeyPrefix + "abc") {
		t.Fatalf("expected prefixed key to be stored")
	}

	got, ok, err := c.GetResponse(ctx, "abc")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(got) != `{"code":0}` {
		t.Fatalf("body = %q", got)
	}

	mr.FastForward(2 * time.Minute)

	if _, ok, err := c.GetResponse(ctx, "abc"); err != nil || ok {
		t.Fatalf("expected expiry, got ok=%v err=%v", ok, err)
	}
}

func TestRedisOptimizationCacheRejectsEmptyKey(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)

	if _, _, err := c.GetResponse(context.Background(), " "); err == nil {
		t.Fatalf("expected error for empty key")
	}
	if err := c.PutResponse(context.Background(), "", []byte("x")); err == nil {
		t.Fatalf("expected error for empty key")
	}
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()

	client, err := Connect(context.Background(), "redis://"+addr+"/0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = client.Close()

	mr.Close()
	if _, err := Connect(context.Background(), "redis://"+addr+"/0"); err == nil {
		t.Fatalf("expected error when server is down")
	}
}
