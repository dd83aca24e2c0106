// Package reload attaches index files announced on the index-complete topic
// to a running query processor.
package reload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/searcher/executor"
	apperrors "github.com/Adithya-Monish-Kumar-K/diskindex/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/resilience"
)

// Invalidator drops cached query results. *cache.QueryCache implements it.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Reloader wraps a Kafka consumer that feeds HandleMessage.
type Reloader struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

func New(kafkaConsumer *kafka.Consumer) *Reloader {
	return &Reloader{
		consumer: kafkaConsumer,
		logger:   slog.Default().With("component", "shard-reload"),
	}
}

// Start consumes announcements until ctx is cancelled.
func (r *Reloader) Start(ctx context.Context) error {
	r.logger.Info("shard reload consumer starting")
	return r.consumer.Start(ctx)
}

// HandleMessage returns a handler that opens the announced index file and
// adds it to p. Files already served are ignored. Undecodable messages are
// logged and dropped. A file that fails to open is returned as an error so
// the consumer retries it, unless the file is malformed, which no retry
// fixes. inv and m may be nil.
func HandleMessage(p *executor.Processor, validate bool, inv Invalidator, m *metrics.Metrics) kafka.MessageHandler {
	logger := slog.Default().With("component", "shard-reload")
	return func(ctx context.Context, key []byte, value []byte) error {
		entry, err := kafka.DecodeJSON[catalog.Entry](value)
		if err != nil {
			logger.Error("failed to decode index-complete event",
				"error", err,
				"key", string(key),
			)
			return nil
		}
		if entry.Path == "" {
			logger.Warn("index-complete event without path", "key", string(key))
			return nil
		}
		if p.HasShard(entry.Path) {
			logger.Debug("shard already served", "path", entry.Path)
			return nil
		}

		if err := p.OpenShard(entry.Path, validate); err != nil {
			if m != nil {
				m.ShardOpenErrors.Inc()
			}
			err = fmt.Errorf("loading announced shard %s: %w", entry.Path, err)
			if errors.Is(err, apperrors.ErrFormat) {
				return resilience.Permanent(err)
			}
			return err
		}
		if m != nil {
			m.ActiveShards.Set(float64(p.NumShards()))
		}
		if inv != nil {
			if err := inv.Invalidate(ctx); err != nil {
				logger.Error("cache invalidation after reload failed", "error", err)
			}
		}

		logger.Info("shard added",
			"path", entry.Path,
			"docs", entry.Docs,
			"words", entry.Words,
			"shards", p.NumShards(),
		)
		return nil
	}
}
