// Package shard opens index files as query shards. Each shard owns one
// open file and the doctable and index readers bound to it; a Set holds the
// shards a processor queries, in the order they were added.
package shard

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/indexer/segment"
	apperrors "github.com/Adithya-Monish-Kumar-K/diskindex/pkg/errors"
)

// Extension is the file suffix Discover looks for.
const Extension = ".idx"

// Shard is one opened index file.
type Shard struct {
	Path  string
	file  *segment.FileIndexReader
	docs  *segment.DocTableReader
	words *segment.IndexTableReader
}

// Open opens path and binds its readers. With validate set the checksum is
// verified first.
func Open(path string, validate bool) (*Shard, error) {
	f, err := segment.OpenIndex(path, validate)
	if err != nil {
		return nil, err
	}
	docs, err := f.DocTable()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("index %s: %w", path, err)
	}
	words, err := f.IndexTable()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("index %s: %w", path, err)
	}
	return &Shard{Path: path, file: f, docs: docs, words: words}, nil
}

// Docs returns the shard's DocID -> name reader.
func (s *Shard) Docs() *segment.DocTableReader {
	return s.docs
}

// Words returns the shard's word -> postings reader.
func (s *Shard) Words() *segment.IndexTableReader {
	return s.words
}

// File returns the underlying index file.
func (s *Shard) File() *segment.FileIndexReader {
	return s.file
}

func (s *Shard) Close() error {
	return s.file.Close()
}

// Discover returns the index files directly inside dir, sorted by name.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrIO, err, "listing index directory %s", dir)
	}
	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), Extension) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Set is an ordered collection of shards safe for concurrent use. Shards
// can be added while queries run against a snapshot.
type Set struct {
	mu     sync.RWMutex
	shards []*Shard
	logger *slog.Logger
}

func NewSet() *Set {
	return &Set{logger: slog.Default().With("component", "shard-set")}
}

// Add appends s. Adding a second shard for the same path is rejected.
func (set *Set) Add(s *Shard) error {
	set.mu.Lock()
	defer set.mu.Unlock()
	for _, existing := range set.shards {
		if sameFile(existing.Path, s.Path) {
			return fmt.Errorf("shard %s: %w: already loaded", s.Path, apperrors.ErrInvalidInput)
		}
	}
	set.shards = append(set.shards, s)
	set.logger.Info("shard added", "path", s.Path, "shard_index", len(set.shards)-1)
	return nil
}

// Contains reports whether a shard for path is loaded.
func (set *Set) Contains(path string) bool {
	set.mu.RLock()
	defer set.mu.RUnlock()
	for _, s := range set.shards {
		if sameFile(s.Path, path) {
			return true
		}
	}
	return false
}

// Snapshot returns the current shards in order.
func (set *Set) Snapshot() []*Shard {
	set.mu.RLock()
	defer set.mu.RUnlock()
	out := make([]*Shard, len(set.shards))
	copy(out, set.shards)
	return out
}

func (set *Set) Len() int {
	set.mu.RLock()
	defer set.mu.RUnlock()
	return len(set.shards)
}

// Close closes every shard, returning the first error encountered.
func (set *Set) Close() error {
	set.mu.Lock()
	defer set.mu.Unlock()
	var firstErr error
	for _, s := range set.shards {
		if err := s.Close(); err != nil {
			set.logger.Error("close failed", "path", s.Path, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	set.shards = nil
	return firstErr
}

func sameFile(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}
