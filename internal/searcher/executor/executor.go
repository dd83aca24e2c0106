package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/diskindex/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/metrics"
)

type SearchResult struct {
	Query     string          `json:"query"`
	Words     []string        `json:"words"`
	TotalHits int             `json:"total_hits"`
	Results   []ranker.Result `json:"results"`
}

type Executor struct {
	processor *Processor
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// New wraps a processor. m may be nil.
func New(p *Processor, m *metrics.Metrics) *Executor {
	return &Executor{
		processor: p,
		metrics:   m,
		logger:    slog.Default().With("component", "query-executor"),
	}
}

// Execute runs plan and returns at most limit results; limit <= 0 returns
// all of them. TotalHits counts every match.
func (e *Executor) Execute(ctx context.Context, plan *parser.QueryPlan, limit int) (*SearchResult, error) {
	if plan.Empty() {
		return nil, fmt.Errorf("execute: %w: query has no words", apperrors.ErrInvalidInput)
	}
	start := time.Now()
	results, total, err := e.processor.ProcessTop(ctx, plan.Words, limit)
	if err != nil {
		e.observe("error", 0)
		return nil, err
	}
	if results == nil {
		results = []ranker.Result{}
	}
	resultType := "hit"
	if total == 0 {
		resultType = "zero_result"
	}
	e.observe(resultType, total)

	e.logger.Info("query executed",
		"query", plan.RawQuery,
		"words", plan.Words,
		"shards", e.processor.NumShards(),
		"total_hits", total,
		"returned", len(results),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return &SearchResult{
		Query:     plan.RawQuery,
		Words:     plan.Words,
		TotalHits: total,
		Results:   results,
	}, nil
}

// Processor returns the wrapped processor.
func (e *Executor) Processor() *Processor {
	return e.processor
}

func (e *Executor) observe(resultType string, total int) {
	if e.metrics == nil {
		return
	}
	e.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	if resultType != "error" {
		e.metrics.SearchResultsCount.Observe(float64(total))
	}
}
