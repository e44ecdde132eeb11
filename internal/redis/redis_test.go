package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", time.Minute); !errors.Is(err, errNotInitialized) {
		t.Fatalf("expected errNotInitialized from Set, got %v", err)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, errNotInitialized) {
		t.Fatalf("expected errNotInitialized from Get, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close on nil client must be a no-op, got %v", err)
	}
}

func TestCacheMissSentinel(t *testing.T) {
	if !errors.Is(ErrCacheMiss, goredis.Nil) {
		t.Fatalf("ErrCacheMiss must match the driver's miss sentinel")
	}
	var c *Client
	if _, err := c.Get(context.Background(), "k"); errors.Is(err, ErrCacheMiss) {
		t.Fatalf("an uninitialized client must not report a cache miss")
	}
}
