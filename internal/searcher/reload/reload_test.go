package reload

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/diskindex/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/resilience"
)

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.calls++
	return nil
}

func announce(t *testing.T, path string) []byte {
	t.Helper()
	b, err := json.Marshal(catalog.Entry{Path: path, Docs: 1})
	require.NoError(t, err)
	return b
}

func TestHandleMessageAddsShard(t *testing.T) {
	mi, dt, err := index.Build([]index.Document{{Name: "news.txt", Content: []byte("fresh news")}})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "news.idx")
	_, err = segment.WriteIndex(mi, dt, path)
	require.NoError(t, err)

	p, err := executor.Open(nil, true)
	require.NoError(t, err)
	defer p.Close()
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	inv := &countingInvalidator{}
	handle := HandleMessage(p, true, inv, m)
	ctx := context.Background()

	require.NoError(t, handle(ctx, []byte(path), announce(t, path)))
	require.NoError(t, handle(ctx, []byte(path), announce(t, path)), "a repeated announcement is ignored")

	assert.Equal(t, 1, p.NumShards())
	assert.Equal(t, 1, inv.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveShards))

	got, err := p.Process(ctx, []string{"news"})
	require.NoError(t, err)
	assert.Equal(t, []ranker.Result{{Document: "news.txt", Rank: 1}}, got)
}

func TestHandleMessageBadPayload(t *testing.T) {
	p, err := executor.Open(nil, true)
	require.NoError(t, err)
	defer p.Close()
	handle := HandleMessage(p, true, nil, nil)

	assert.NoError(t, handle(context.Background(), nil, []byte("{not json")))
	assert.NoError(t, handle(context.Background(), nil, []byte(`{"docs":3}`)))
	assert.Equal(t, 0, p.NumShards())
}

func TestHandleMessageMissingFile(t *testing.T) {
	p, err := executor.Open(nil, true)
	require.NoError(t, err)
	defer p.Close()
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	handle := HandleMessage(p, true, nil, m)

	path := filepath.Join(t.TempDir(), "gone.idx")
	err = handle(context.Background(), nil, announce(t, path))
	assert.ErrorIs(t, err, apperrors.ErrIO)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ShardOpenErrors))
	assert.Equal(t, 0, p.NumShards())
}

func TestHandleMessageMalformedFileIsNotRetried(t *testing.T) {
	p, err := executor.Open(nil, true)
	require.NoError(t, err)
	defer p.Close()
	handle := HandleMessage(p, true, nil, nil)

	path := filepath.Join(t.TempDir(), "junk.idx")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("x"), 64), 0o644))

	calls := 0
	err = resilience.Retry(context.Background(), "reload", resilience.RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond}, func() error {
		calls++
		return handle(context.Background(), nil, announce(t, path))
	})
	assert.ErrorIs(t, err, apperrors.ErrFormat)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, p.NumShards())
}
