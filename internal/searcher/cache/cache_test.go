package cache

import (
	"context"
	"errors"
	"path"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/config"
	pkgredis "github.com/Adithya-Monish-Kumar-K/diskindex/pkg/redis"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}}
}

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	default:
		return errors.New("unsupported value type")
	}
	return nil
}

func (m *memStore) FlushByPattern(_ context.Context, pattern string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k := range m.data {
		if ok, _ := path.Match(pattern, k); ok {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

func sampleResult(q string) *executor.SearchResult {
	return &executor.SearchResult{
		Query:     q,
		Words:     parser.Parse(q).Words,
		TotalHits: 1,
		Results:   []ranker.Result{{Document: "doc1", Rank: 2}},
	}
}

func TestGetOrComputeCachesResult(t *testing.T) {
	c := New(newMemStore(), config.RedisConfig{CacheTTL: time.Minute}, nil)
	ctx := context.Background()
	plan := parser.Parse("Pears bananas")

	var calls atomic.Int32
	compute := func() (*executor.SearchResult, error) {
		calls.Add(1)
		return sampleResult(plan.RawQuery), nil
	}

	res, hit, err := c.GetOrCompute(ctx, plan, 10, compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, sampleResult(plan.RawQuery), res)

	res, hit, err = c.GetOrCompute(ctx, parser.Parse("pears   BANANAS"), 10, compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []ranker.Result{{Document: "doc1", Rank: 2}}, res.Results)
	assert.Equal(t, int32(1), calls.Load())

	_, hit, err = c.GetOrCompute(ctx, plan, 5, compute)
	require.NoError(t, err)
	assert.False(t, hit, "limit is part of the key")

	_, hit, err = c.GetOrCompute(ctx, parser.Parse("bananas pears"), 10, compute)
	require.NoError(t, err)
	assert.False(t, hit, "word order is part of the key")

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(3), misses)
}

func TestGetOrComputeError(t *testing.T) {
	c := New(newMemStore(), config.RedisConfig{}, nil)
	boom := errors.New("shard down")
	_, _, err := c.GetOrCompute(context.Background(), parser.Parse("x"), 10, func() (*executor.SearchResult, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	_, ok := c.Get(context.Background(), parser.Parse("x"), 10)
	assert.False(t, ok)
}

func TestInvalidate(t *testing.T) {
	store := newMemStore()
	store.data["unrelated"] = "keep"
	c := New(store, config.RedisConfig{}, nil)
	ctx := context.Background()
	plan := parser.Parse("apples")
	c.Set(ctx, plan, 10, sampleResult("apples"))
	_, ok := c.Get(ctx, plan, 10)
	require.True(t, ok)

	require.NoError(t, c.Invalidate(ctx))
	_, ok = c.Get(ctx, plan, 10)
	assert.False(t, ok)
	assert.Equal(t, "keep", store.data["unrelated"])
}

type brokenStore struct{ calls atomic.Int32 }

func (b *brokenStore) Get(context.Context, string) (string, error) {
	b.calls.Add(1)
	return "", errors.New("connection refused")
}

func (b *brokenStore) Set(context.Context, string, interface{}, time.Duration) error {
	b.calls.Add(1)
	return errors.New("connection refused")
}

func (b *brokenStore) FlushByPattern(context.Context, string) (int64, error) {
	return 0, errors.New("connection refused")
}

func TestBrokenStoreFallsBackToCompute(t *testing.T) {
	store := &brokenStore{}
	c := New(store, config.RedisConfig{}, nil)
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		res, hit, err := c.GetOrCompute(ctx, parser.Parse("apples"), 10, func() (*executor.SearchResult, error) {
			return sampleResult("apples"), nil
		})
		require.NoError(t, err)
		assert.False(t, hit)
		assert.Equal(t, 1, res.TotalHits)
	}
	assert.Equal(t, int32(5), store.calls.Load(), "the store is skipped once the breaker opens")
	assert.Error(t, c.Invalidate(ctx))
}

func TestRedisIntegration(t *testing.T) {
	cfg := config.RedisConfig{Addr: "localhost:6379", PoolSize: 2, CacheTTL: time.Minute}
	client, err := pkgredis.NewClient(cfg)
	if err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
	defer client.Close()

	c := New(client, cfg, nil)
	ctx := context.Background()
	plan := parser.Parse("integration test query")
	c.Set(ctx, plan, 3, sampleResult(plan.RawQuery))
	res, ok := c.Get(ctx, plan, 3)
	require.True(t, ok)
	assert.Equal(t, 1, res.TotalHits)
	require.NoError(t, c.Invalidate(ctx))
}
