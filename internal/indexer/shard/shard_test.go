package shard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/indexer/segment"
	apperrors "github.com/Adithya-Monish-Kumar-K/diskindex/pkg/errors"
)

func writeIndex(t *testing.T, path string, docs ...index.Document) {
	t.Helper()
	mi, dt, err := index.Build(docs)
	require.NoError(t, err)
	_, err = segment.WriteIndex(mi, dt, path)
	require.NoError(t, err)
}

func TestOpenShard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one.idx")
	writeIndex(t, path, index.Document{Name: "a.txt", Content: []byte("hello world")})

	s, err := Open(path, true)
	require.NoError(t, err)
	defer s.Close()

	name, ok, err := s.Docs().LookupDocID(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a.txt", name)

	docIDs, err := s.Words().LookupWord("world")
	require.NoError(t, err)
	require.NotNil(t, docIDs)
	assert.Equal(t, uint32(segment.MagicNumber), s.File().Header().Magic)
}

func TestOpenRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.idx")
	require.NoError(t, os.WriteFile(path, []byte("definitely not an index file"), 0o644))
	_, err := Open(path, false)
	assert.ErrorIs(t, err, apperrors.ErrFormat)
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.idx", "a.idx", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "c.idx"), 0o755))

	paths, err := Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.idx"), filepath.Join(dir, "b.idx")}, paths)

	_, err = Discover(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, apperrors.ErrIO)
}

func TestSetOrderAndDuplicates(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.idx")
	second := filepath.Join(dir, "second.idx")
	writeIndex(t, first, index.Document{Name: "x", Content: []byte("alpha")})
	writeIndex(t, second, index.Document{Name: "y", Content: []byte("beta")})

	set := NewSet()
	s1, err := Open(first, true)
	require.NoError(t, err)
	s2, err := Open(second, true)
	require.NoError(t, err)
	require.NoError(t, set.Add(s1))
	require.NoError(t, set.Add(s2))

	dup, err := Open(filepath.Join(dir, ".", "first.idx"), false)
	require.NoError(t, err)
	err = set.Add(dup)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	dup.Close()

	snap := set.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, first, snap[0].Path)
	assert.Equal(t, second, snap[1].Path)
	assert.True(t, set.Contains(second))
	assert.Equal(t, 2, set.Len())

	require.NoError(t, set.Close())
	assert.Equal(t, 0, set.Len())
}
