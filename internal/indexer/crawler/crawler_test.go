package crawler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/diskindex/pkg/errors"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestCrawlLexicalOrder(t *testing.T) {
	root := writeTree(t, map[string]string{
		"b.txt":         "bananas pears apples",
		"a.txt":         "apples bananas",
		"sub/c.txt":     "Pears",
		"sub/empty.txt": "",
		"sub/bin.dat":   "abc\x00def",
		"sub/utf8.txt":  "na\xc3\xafve",
	})

	res, err := Crawl(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, Stats{Files: 6, Indexed: 3, Skipped: 3, Bytes: 20 + 14 + 5}, res.Stats)
	assert.Equal(t, 3, res.DocTable.Len())

	for i, name := range []string{"a.txt", "b.txt", filepath.Join("sub", "c.txt")} {
		got, ok := res.DocTable.Name(index.DocID(i + 1))
		require.True(t, ok)
		assert.Equal(t, filepath.Join(root, name), got)
	}

	hits, err := res.Index.Search([]string{"pears"})
	require.NoError(t, err)
	assert.Equal(t, []index.Hit{{DocID: 2, Rank: 1}, {DocID: 3, Rank: 1}}, hits)
}

func TestCrawlRejectsNonDirectory(t *testing.T) {
	root := writeTree(t, map[string]string{"file.txt": "hello"})

	_, err := Crawl(context.Background(), filepath.Join(root, "file.txt"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = Crawl(context.Background(), filepath.Join(root, "missing"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCrawlCancelled(t *testing.T) {
	root := writeTree(t, map[string]string{"a.txt": "hello"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Crawl(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}
