package main

import (
	"math/rand"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/indexer/segment"
)

func TestVocabularyAndQueries(t *testing.T) {
	mi, dt, err := index.Build([]index.Document{
		{Name: "a", Content: []byte("pears apples")},
		{Name: "b", Content: []byte("bananas apples")},
	})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "v.idx")
	_, err = segment.WriteIndex(mi, dt, path)
	require.NoError(t, err)

	vocab, err := vocabulary(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"apples", "bananas", "pears"}, vocab)

	queries := buildQueries(vocab, 50, rand.New(rand.NewSource(7)))
	require.Len(t, queries, 50)
	for _, q := range queries {
		words := strings.Fields(q)
		assert.GreaterOrEqual(t, len(words), 1)
		assert.LessOrEqual(t, len(words), 3)
		for _, w := range words {
			assert.Contains(t, vocab, w)
		}
	}
}

func TestPercentile(t *testing.T) {
	sorted := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	assert.Equal(t, time.Duration(5), percentile(sorted, 50))
	assert.Equal(t, time.Duration(10), percentile(sorted, 99))
	assert.Equal(t, time.Duration(0), percentile(nil, 50))
}
