package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClient keeps values in memory and answers like redis would.
type stubClient struct {
	values map[string]string
	sets   []string
}

func newStubClient() *stubClient {
	return &stubClient{values: map[string]string{}}
}

func (s *stubClient) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := s.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (s *stubClient) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		s.values[key] = string(v)
	case string:
		s.values[key] = v
	}
	s.sets = append(s.sets, key)
	return redis.NewStatusResult("OK", nil)
}

func (s *stubClient) Incr(_ context.Context, key string) *redis.IntCmd {
	n, _ := strconv.ParseInt(s.values[key], 10, 64)
	n++
	s.values[key] = strconv.FormatInt(n, 10)
	return redis.NewIntResult(n, nil)
}

func (s *stubClient) Close() error { return nil }

func TestEntryKey(t *testing.T) {
	assert.Equal(t, "lbs:list:0:abc", EntryKey(0, "abc"))
	assert.Equal(t, "lbs:list:7:abc", EntryKey(7, "abc"))
	assert.NotEqual(t, EntryKey(1, "abc"), EntryKey(2, "abc"))
}

func TestNoopNeverHits(t *testing.T) {
	ctx := context.Background()
	var c ListCache = Noop{}

	var out map[string]int
	slot, found, err := c.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)
	require.NoError(t, c.Set(ctx, slot, map[string]int{"a": 1}))

	_, found, err = c.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, out)
	assert.NoError(t, c.Invalidate(ctx))
}

func TestRedisMissThenHit(t *testing.T) {
	ctx := context.Background()
	c := &Redis{rc: newStubClient(), ttl: time.Minute}

	var out map[string]int
	slot, found, err := c.Get(ctx, "fp", &out)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, Slot(EntryKey(0, "fp")), slot)

	require.NoError(t, c.Set(ctx, slot, map[string]int{"total": 3}))

	_, found, err = c.Get(ctx, "fp", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, map[string]int{"total": 3}, out)
}

func TestRedisInvalidateHidesEntries(t *testing.T) {
	ctx := context.Background()
	c := &Redis{rc: newStubClient(), ttl: time.Minute}

	var out map[string]int
	slot, _, err := c.Get(ctx, "fp", &out)
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, slot, map[string]int{"total": 3}))

	require.NoError(t, c.Invalidate(ctx))

	slot, found, err := c.Get(ctx, "fp", &out)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, Slot(EntryKey(1, "fp")), slot)
}

func TestRedisFillAfterInvalidateStaysInOldGeneration(t *testing.T) {
	ctx := context.Background()
	stub := newStubClient()
	c := &Redis{rc: stub, ttl: time.Minute}

	// A reader misses, then a write invalidates before the reader fills.
	var out map[string]int
	slot, found, err := c.Get(ctx, "fp", &out)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, c.Invalidate(ctx))
	require.NoError(t, c.Set(ctx, slot, map[string]int{"total": 3}))

	assert.Equal(t, []string{EntryKey(0, "fp")}, stub.sets)

	_, found, err = c.Get(ctx, "fp", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisSetIgnoresEmptySlot(t *testing.T) {
	stub := newStubClient()
	c := &Redis{rc: stub, ttl: time.Minute}

	require.NoError(t, c.Set(context.Background(), "", map[string]int{"a": 1}))
	assert.Empty(t, stub.sets)
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	_, err := NewRedis(context.Background(), "not-a-url", 0)
	assert.ErrorContains(t, err, "invalid redis url")
}
