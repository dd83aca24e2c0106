// Package shell implements the interactive query loop used by idxtool.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/diskindex/pkg/errors"
)

const Prompt = "Enter query:"

// SearchFunc answers one AND query.
type SearchFunc func(ctx context.Context, words []string) ([]ranker.Result, error)

// Run prompts for queries on out, reads one per line from in and prints the
// matches until in is exhausted or ctx is done. Blank lines are ignored.
func Run(ctx context.Context, in io.Reader, out io.Writer, search SearchFunc) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(out, Prompt); err != nil {
			return fmt.Errorf("writing prompt: %w", err)
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading query: %w", err)
			}
			return nil
		}
		plan := parser.Parse(scanner.Text())
		if plan.Empty() {
			continue
		}
		results, err := search(ctx, plan.Words)
		if err != nil {
			return err
		}
		if err := Print(out, results); err != nil {
			return err
		}
	}
}

// Print writes one "  name (rank)" line per result, or "  [no results]".
func Print(out io.Writer, results []ranker.Result) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(out, "  [no results]")
		return err
	}
	for _, r := range results {
		if _, err := fmt.Fprintf(out, "  %s (%d)\n", r.Document, r.Rank); err != nil {
			return err
		}
	}
	return nil
}

// MemorySearch answers queries from an in-memory index.
func MemorySearch(mi *index.MemoryIndex, dt *index.DocTable) SearchFunc {
	return func(_ context.Context, words []string) ([]ranker.Result, error) {
		hits, err := mi.Search(words)
		if err != nil {
			return nil, err
		}
		results := make([]ranker.Result, 0, len(hits))
		for _, h := range hits {
			name, ok := dt.Name(h.DocID)
			if !ok {
				return nil, fmt.Errorf("doc %d: %w: missing from the doctable", h.DocID, apperrors.ErrInvariant)
			}
			results = append(results, ranker.Result{Document: name, Rank: h.Rank})
		}
		return results, nil
	}
}
