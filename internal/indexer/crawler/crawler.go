// Package crawler walks a directory tree and feeds every text file it finds
// into an in-memory index.
package crawler

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/diskindex/pkg/errors"
)

// Stats summarises one crawl.
type Stats struct {
	Files   int
	Indexed int
	Skipped int
	Bytes   int64
}

// Result is the output of a crawl.
type Result struct {
	Index    *index.MemoryIndex
	DocTable *index.DocTable
	Stats    Stats
}

// Crawl indexes every regular file below root, visiting entries in lexical
// order. Document names are the walked paths, root included. Files that are
// not ASCII text, or that contain no words, are counted as skipped.
func Crawl(ctx context.Context, root string) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("crawl %s: %w: %w", root, apperrors.ErrInvalidInput, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("crawl %s: %w: not a directory", root, apperrors.ErrInvalidInput)
	}

	logger := slog.Default().With("component", "crawler")
	b := index.NewBuilder()
	var stats Stats

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if d != nil && d.IsDir() && path != root {
				logger.Warn("skipping unreadable directory", "path", path, "error", walkErr)
				return fs.SkipDir
			}
			return walkErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		stats.Files++
		content, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping unreadable file", "path", path, "error", err)
			stats.Skipped++
			return nil
		}
		id, ok, err := b.Add(index.Document{Name: path, Content: content})
		if err != nil {
			return fmt.Errorf("indexing %s: %w", path, err)
		}
		if !ok {
			logger.Debug("skipping non-text or empty file", "path", path)
			stats.Skipped++
			return nil
		}
		stats.Indexed++
		stats.Bytes += int64(len(content))
		logger.Debug("indexed file", "path", path, "doc_id", id)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("crawl %s: %w", root, err)
	}

	logger.Info("crawl complete",
		"root", root,
		"files", stats.Files,
		"indexed", stats.Indexed,
		"skipped", stats.Skipped,
		"words", b.Index.NumWords(),
	)
	return &Result{Index: b.Index, DocTable: b.DocTable, Stats: stats}, nil
}
