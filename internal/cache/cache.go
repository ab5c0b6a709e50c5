package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "lbs:list:"
	generationKey = keyPrefix + "gen"
)

// Slot addresses one entry within the generation that was current when Get
// looked it up. Filling a slot after an invalidation writes into a dead
// generation, so a result computed before a write is never served after it.
type Slot string

// ListCache stores encoded list results keyed by query fingerprint.
type ListCache interface {
	// Get decodes the cached value into dst and reports whether it was found.
	// On a miss the returned slot is where the result should be stored.
	Get(ctx context.Context, key string, dst any) (Slot, bool, error)
	Set(ctx context.Context, slot Slot, v any) error
	// Invalidate drops every cached entry.
	Invalidate(ctx context.Context) error
}

// Noop is used when no redis is configured; it never hits.
type Noop struct{}

func (Noop) Get(context.Context, string, any) (Slot, bool, error) { return "", false, nil }
func (Noop) Set(context.Context, Slot, any) error                 { return nil }
func (Noop) Invalidate(context.Context) error                     { return nil }

// client is the part of *redis.Client the cache uses.
type client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Close() error
}

// Redis caches list results for ttl. Entries are namespaced by a generation
// counter, so invalidation is a single INCR and stale keys expire on their own.
type Redis struct {
	rc  client
	ttl time.Duration
}

// NewRedis connects to url and verifies the connection with a ping.
func NewRedis(ctx context.Context, url string, ttl time.Duration) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rc := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisWithClient(rc, ttl), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(rc *redis.Client, ttl time.Duration) *Redis {
	return &Redis{rc: rc, ttl: ttl}
}

func (c *Redis) Get(ctx context.Context, key string, dst any) (Slot, bool, error) {
	full, err := c.key(ctx, key)
	if err != nil {
		return "", false, err
	}
	slot := Slot(full)
	bs, err := c.rc.Get(ctx, full).Bytes()
	if errors.Is(err, redis.Nil) {
		return slot, false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache get failed: %w", err)
	}
	if err := json.Unmarshal(bs, dst); err != nil {
		return slot, false, fmt.Errorf("cache decode failed: %w", err)
	}
	return slot, true, nil
}

// Set stores v in slot. An empty slot is ignored.
func (c *Redis) Set(ctx context.Context, slot Slot, v any) error {
	if slot == "" {
		return nil
	}
	bs, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode failed: %w", err)
	}
	if err := c.rc.Set(ctx, string(slot), bs, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set failed: %w", err)
	}
	return nil
}

func (c *Redis) Invalidate(ctx context.Context) error {
	if err := c.rc.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("cache invalidate failed: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (c *Redis) Close() error {
	return c.rc.Close()
}

func (c *Redis) key(ctx context.Context, key string) (string, error) {
	gen, err := c.rc.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("cache generation lookup failed: %w", err)
	}
	return EntryKey(gen, key), nil
}

// EntryKey is the redis key of an entry in generation gen.
func EntryKey(gen int64, key string) string {
	return fmt.Sprintf("%s%d:%s", keyPrefix, gen, key)
}
