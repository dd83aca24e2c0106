package indexer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/diskindex/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/metrics"
)

type recorder struct {
	mu      sync.Mutex
	entries []catalog.Entry
	events  []kafka.Event
	err     error
}

func (r *recorder) Register(_ context.Context, e catalog.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *recorder) Publish(_ context.Context, ev kafka.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func corpus(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "corpus")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0755))
	files := map[string]string{
		"a.txt":     "bananas pears apples",
		"sub/b.txt": "apples bananas",
		"bin.dat":   "\x00\x01\x02",
		"empty.txt": "123 456",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0644))
	}
	return root
}

func TestIndexDirectory(t *testing.T) {
	root := corpus(t)
	dataDir := t.TempDir()
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	rec := &recorder{}
	e := NewEngine(config.IndexerConfig{DataDir: dataDir, VerifyAfterWrite: true}, m, rec, rec)

	report, err := e.IndexDirectory(context.Background(), root, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "corpus.idx"), report.Path)
	assert.Equal(t, 4, report.Files)
	assert.Equal(t, 2, report.Docs)
	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, 3, report.Words)

	info, err := os.Stat(report.Path)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), report.Bytes)

	f, err := segment.OpenIndex(report.Path, true)
	require.NoError(t, err)
	assert.Equal(t, f.Header().Checksum, report.Checksum)
	f.Close()

	require.Len(t, rec.entries, 1)
	assert.Equal(t, report.Path, rec.entries[0].Path)
	assert.Equal(t, report.Checksum, rec.entries[0].Checksum)
	require.Len(t, rec.events, 1)
	assert.Equal(t, report.Path, rec.events[0].Key)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.IndexWritesTotal.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DocsIndexedTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DocsSkippedTotal))
	assert.Equal(t, float64(report.Bytes), testutil.ToFloat64(m.IndexBytesWritten))
}

func TestIndexDirectoryWithoutServices(t *testing.T) {
	root := corpus(t)
	out := filepath.Join(t.TempDir(), "nested", "out.idx")
	e := NewEngine(config.IndexerConfig{}, nil, nil, nil)
	report, err := e.IndexDirectory(context.Background(), root, out)
	require.NoError(t, err)
	assert.Equal(t, out, report.Path)
	assert.FileExists(t, out)
}

func TestIndexDirectoryBadRoot(t *testing.T) {
	e := NewEngine(config.IndexerConfig{DataDir: t.TempDir()}, nil, nil, nil)
	_, err := e.IndexDirectory(context.Background(), filepath.Join(t.TempDir(), "missing"), "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestIndexDirectoryRegisterFailureKeepsFile(t *testing.T) {
	root := corpus(t)
	rec := &recorder{err: errors.New("catalog down")}
	e := NewEngine(config.IndexerConfig{DataDir: t.TempDir()}, nil, rec, rec)
	e.retry.MaxAttempts = 1

	report, err := e.IndexDirectory(context.Background(), root, "")
	require.Error(t, err)
	require.NotNil(t, report)
	assert.FileExists(t, report.Path)
	assert.Empty(t, rec.events, "nothing is published for an unregistered file")
}

func TestDefaultOutput(t *testing.T) {
	e := NewEngine(config.IndexerConfig{DataDir: "/var/idx"}, nil, nil, nil)
	assert.Equal(t, filepath.Join("/var/idx", "docs.idx"), e.DefaultOutput("/srv/docs/"))
	assert.Equal(t, filepath.Join("/var/idx", "root.idx"), e.DefaultOutput("."))
}
