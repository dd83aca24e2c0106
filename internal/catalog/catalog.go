// Package catalog records every index file the indexer writes in PostgreSQL,
// so a searcher can find the current set of shards without scanning disks.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/postgres"
)

// Entry describes one written index file. It is also the payload of the
// index-complete event.
type Entry struct {
	Path      string    `json:"path"`
	Bytes     int64     `json:"bytes"`
	Docs      int       `json:"docs"`
	Words     int       `json:"words"`
	Checksum  uint32    `json:"checksum"`
	WrittenAt time.Time `json:"written_at"`
}

const schema = `
CREATE TABLE IF NOT EXISTS index_files (
	path       TEXT PRIMARY KEY,
	bytes      BIGINT NOT NULL,
	docs       INTEGER NOT NULL,
	words      INTEGER NOT NULL,
	checksum   BIGINT NOT NULL,
	written_at TIMESTAMPTZ NOT NULL
)`

type Catalog struct {
	client *postgres.Client
	logger *slog.Logger
}

func New(client *postgres.Client) *Catalog {
	return &Catalog{
		client: client,
		logger: logger.WithComponent("catalog"),
	}
}

// EnsureSchema creates the index_files table if it does not exist.
func (c *Catalog) EnsureSchema(ctx context.Context) error {
	if _, err := c.client.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating index_files table: %w", err)
	}
	return nil
}

// Register inserts e, replacing any earlier record for the same path.
func (c *Catalog) Register(ctx context.Context, e Entry) error {
	err := c.client.InTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO index_files (path, bytes, docs, words, checksum, written_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (path) DO UPDATE SET
				bytes = EXCLUDED.bytes,
				docs = EXCLUDED.docs,
				words = EXCLUDED.words,
				checksum = EXCLUDED.checksum,
				written_at = EXCLUDED.written_at`,
			e.Path, e.Bytes, e.Docs, e.Words, int64(e.Checksum), e.WrittenAt.UTC(),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("registering index file %s: %w", e.Path, err)
	}
	c.logger.Info("index file registered", "path", e.Path, "bytes", e.Bytes, "docs", e.Docs)
	return nil
}

// List returns all registered index files, oldest first.
func (c *Catalog) List(ctx context.Context) ([]Entry, error) {
	rows, err := c.client.DB.QueryContext(ctx, `
		SELECT path, bytes, docs, words, checksum, written_at
		FROM index_files
		ORDER BY written_at, path`)
	if err != nil {
		return nil, fmt.Errorf("listing index files: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			checksum int64
		)
		if err := rows.Scan(&e.Path, &e.Bytes, &e.Docs, &e.Words, &checksum, &e.WrittenAt); err != nil {
			return nil, fmt.Errorf("scanning index file row: %w", err)
		}
		e.Checksum = uint32(checksum)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating index files: %w", err)
	}
	return entries, nil
}

// Paths returns the path of every registered index file, oldest first.
func (c *Catalog) Paths(ctx context.Context) ([]string, error) {
	entries, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	return paths, nil
}
