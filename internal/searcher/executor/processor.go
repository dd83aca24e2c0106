package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/indexer/shard"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/searcher/merger"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/diskindex/pkg/errors"
)

// Processor answers AND queries over a set of index files. Shards are opened
// once and reused for every query; more can be attached while queries run.
type Processor struct {
	shards *shard.Set
	logger *slog.Logger
}

func NewProcessor(set *shard.Set) *Processor {
	return &Processor{
		shards: set,
		logger: slog.Default().With("component", "query-processor"),
	}
}

// Open opens every path as a shard, in order. If any file fails to open the
// ones already opened are closed again.
func Open(paths []string, validate bool) (*Processor, error) {
	p := NewProcessor(shard.NewSet())
	for _, path := range paths {
		if err := p.OpenShard(path, validate); err != nil {
			p.Close()
			return nil, err
		}
	}
	return p, nil
}

// OpenShard opens path and adds it after the existing shards.
func (p *Processor) OpenShard(path string, validate bool) error {
	s, err := shard.Open(path, validate)
	if err != nil {
		return fmt.Errorf("opening shard: %w", err)
	}
	if err := p.AddShard(s); err != nil {
		s.Close()
		return err
	}
	return nil
}

// AddShard attaches an already opened shard.
func (p *Processor) AddShard(s *shard.Shard) error {
	return p.shards.Add(s)
}

// HasShard reports whether path is already served.
func (p *Processor) HasShard(path string) bool {
	return p.shards.Contains(path)
}

func (p *Processor) NumShards() int {
	return p.shards.Len()
}

// Process runs the query against every shard and returns all matches
// ordered by rank, document name and shard.
func (p *Processor) Process(ctx context.Context, words []string) ([]ranker.Result, error) {
	results, _, err := p.ProcessTop(ctx, words, 0)
	return results, err
}

// ProcessTop is Process keeping only the best limit matches; limit <= 0
// keeps all of them. total counts every match across all shards.
func (p *Processor) ProcessTop(ctx context.Context, words []string, limit int) (results []ranker.Result, total int, err error) {
	results, total, err = Query(ctx, p.shards.Snapshot(), words, limit)
	if err != nil {
		return nil, 0, err
	}
	p.logger.Debug("query processed", "words", words, "total", total, "returned", len(results))
	return results, total, nil
}

func (p *Processor) Close() error {
	return p.shards.Close()
}

// Query evaluates words as an AND query on each shard independently and
// merges the best limit results (all of them when limit <= 0). A document's
// rank is the sum over all query words of the word's occurrence count in it;
// a repeated word counts every time. total is the number of matches before
// the limit is applied.
func Query(ctx context.Context, shards []*shard.Shard, words []string, limit int) ([]ranker.Result, int, error) {
	if len(words) == 0 {
		return nil, 0, fmt.Errorf("query: %w: no words", apperrors.ErrInvalidInput)
	}
	perShard := make([][]ranker.Result, len(shards))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range shards {
		g.Go(func() error {
			results, err := queryShard(gctx, i, s, words)
			if err != nil {
				return fmt.Errorf("shard %s: %w", s.Path, err)
			}
			perShard[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	total := 0
	for _, results := range perShard {
		total += len(results)
	}
	return merger.Merge(perShard, limit), total, nil
}

func queryShard(ctx context.Context, idx int, s *shard.Shard, words []string) ([]ranker.Result, error) {
	first, err := s.Words().LookupWord(words[0])
	if err != nil {
		return nil, err
	}
	if first == nil {
		return nil, nil
	}
	docs, err := first.DocIDList()
	if err != nil {
		return nil, err
	}

	var acc ranker.Accumulator
	acc.Seed(docs)
	for _, word := range words[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		postings, err := s.Words().LookupWord(word)
		if err != nil {
			return nil, err
		}
		if postings == nil {
			acc.Clear()
			break
		}
		if err := acc.Intersect(postings.Count); err != nil {
			return nil, err
		}
		if acc.Len() == 0 {
			break
		}
	}

	results := make([]ranker.Result, 0, acc.Len())
	for _, e := range acc.Entries() {
		name, ok, err := s.Docs().LookupDocID(e.DocID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("doc %d: %w: referenced by the index but missing from the doctable", e.DocID, apperrors.ErrInvariant)
		}
		results = append(results, ranker.Result{Document: name, Rank: e.Rank, Shard: idx})
	}
	return results, nil
}

// IsShardFailure reports whether err came from reading an index file rather
// than from the query itself.
func IsShardFailure(err error) bool {
	return errors.Is(err, apperrors.ErrIO) || errors.Is(err, apperrors.ErrFormat) || errors.Is(err, apperrors.ErrInvariant)
}
