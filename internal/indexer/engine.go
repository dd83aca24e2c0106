// Package indexer turns a directory of text files into an on-disk index file.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/indexer/crawler"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/resilience"
)

// Registrar records written index files. *catalog.Catalog implements it.
type Registrar interface {
	Register(ctx context.Context, e catalog.Entry) error
}

// Publisher announces written index files. *kafka.Producer implements it.
type Publisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

// Report describes one completed indexing run.
type Report struct {
	Path     string
	Bytes    int64
	Files    int
	Docs     int
	Skipped  int
	Words    int
	Checksum uint32
	Duration time.Duration
}

// Entry converts r into a catalog record.
func (r *Report) Entry(at time.Time) catalog.Entry {
	return catalog.Entry{
		Path:      r.Path,
		Bytes:     r.Bytes,
		Docs:      r.Docs,
		Words:     r.Words,
		Checksum:  r.Checksum,
		WrittenAt: at,
	}
}

type Engine struct {
	cfg       config.IndexerConfig
	metrics   *metrics.Metrics
	registrar Registrar
	publisher Publisher
	retry     resilience.RetryConfig
	logger    *slog.Logger
}

// NewEngine creates an engine. m, reg and pub may each be nil.
func NewEngine(cfg config.IndexerConfig, m *metrics.Metrics, reg Registrar, pub Publisher) *Engine {
	return &Engine{
		cfg:       cfg,
		metrics:   m,
		registrar: reg,
		publisher: pub,
		retry:     resilience.RetryConfig{MaxAttempts: 3, InitialDelay: 200 * time.Millisecond},
		logger:    slog.Default().With("component", "indexer"),
	}
}

// IndexDirectory crawls root, writes the resulting index to out and, when
// configured, registers and announces the new file. An empty out writes
// into the configured data directory, named after root.
func (e *Engine) IndexDirectory(ctx context.Context, root, out string) (*Report, error) {
	if out == "" {
		out = e.DefaultOutput(root)
	}
	start := time.Now()
	e.logger.Info("indexing directory", "root", root, "out", out)

	res, err := crawler.Crawl(ctx, root)
	if err != nil {
		return nil, err
	}
	n, err := segment.WriteIndex(res.Index, res.DocTable, out)
	if err != nil {
		e.recordWrite("error", 0, res.Stats)
		return nil, err
	}

	f, err := segment.OpenIndex(out, e.cfg.VerifyAfterWrite)
	if err != nil {
		e.recordWrite("error", n, res.Stats)
		return nil, fmt.Errorf("reopening written index: %w", err)
	}
	checksum := f.Header().Checksum
	f.Close()
	e.recordWrite("ok", n, res.Stats)

	report := &Report{
		Path:     out,
		Bytes:    n,
		Files:    res.Stats.Files,
		Docs:     res.Stats.Indexed,
		Skipped:  res.Stats.Skipped,
		Words:    res.Index.NumWords(),
		Checksum: checksum,
		Duration: time.Since(start),
	}
	if err := e.announce(ctx, report); err != nil {
		return report, err
	}
	e.logger.Info("index written",
		"path", report.Path,
		"bytes", report.Bytes,
		"docs", report.Docs,
		"words", report.Words,
		"checksum", fmt.Sprintf("%08x", report.Checksum),
		"duration_ms", report.Duration.Milliseconds(),
	)
	return report, nil
}

// DefaultOutput is the index path used for root when none is given.
func (e *Engine) DefaultOutput(root string) string {
	name := filepath.Base(filepath.Clean(root))
	if name == "." || name == string(filepath.Separator) {
		name = "root"
	}
	return filepath.Join(e.cfg.DataDir, name+".idx")
}

// announce registers the file in the catalog and then publishes it. The
// file is already committed, so failures here are returned alongside the
// report.
func (e *Engine) announce(ctx context.Context, r *Report) error {
	entry := r.Entry(time.Now().UTC())
	if e.registrar != nil {
		err := resilience.Retry(ctx, "catalog-register", e.retry, func() error {
			return e.registrar.Register(ctx, entry)
		})
		if err != nil {
			return fmt.Errorf("registering index file: %w", err)
		}
	}
	if e.publisher != nil {
		err := resilience.Retry(ctx, "publish-index-complete", e.retry, func() error {
			return e.publisher.Publish(ctx, kafka.Event{Key: entry.Path, Value: entry})
		})
		if err != nil {
			return fmt.Errorf("publishing index-complete event: %w", err)
		}
	}
	return nil
}

func (e *Engine) recordWrite(status string, n int64, stats crawler.Stats) {
	if e.metrics == nil {
		return
	}
	e.metrics.IndexWritesTotal.WithLabelValues(status).Inc()
	e.metrics.DocsIndexedTotal.Add(float64(stats.Indexed))
	e.metrics.DocsSkippedTotal.Add(float64(stats.Skipped))
	e.metrics.IndexBytesWritten.Add(float64(n))
}
