package ranker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/indexer/segment"
)

func counts(m map[index.DocID]int) CountFunc {
	return func(id index.DocID) (int, bool, error) {
		n, ok := m[id]
		return n, ok, nil
	}
}

func TestAccumulatorIntersectAddsRanks(t *testing.T) {
	var acc Accumulator
	acc.Seed([]segment.DocCount{{DocID: 3, Count: 2}, {DocID: 1, Count: 1}, {DocID: 7, Count: 4}})
	assert.Equal(t, 3, acc.Len())

	require.NoError(t, acc.Intersect(counts(map[index.DocID]int{1: 5, 7: 1, 9: 9})))
	assert.Equal(t, []Entry{{DocID: 1, Rank: 6}, {DocID: 7, Rank: 5}}, acc.Entries())

	require.NoError(t, acc.Intersect(counts(map[index.DocID]int{2: 1})))
	assert.Equal(t, 0, acc.Len())
}

func TestAccumulatorClear(t *testing.T) {
	var acc Accumulator
	acc.Seed([]segment.DocCount{{DocID: 1, Count: 1}})
	acc.Clear()
	assert.Equal(t, 0, acc.Len())
	assert.Empty(t, acc.Entries())
}

func TestAccumulatorIntersectError(t *testing.T) {
	var acc Accumulator
	acc.Seed([]segment.DocCount{{DocID: 1, Count: 1}})
	boom := errors.New("read failed")
	err := acc.Intersect(func(index.DocID) (int, bool, error) { return 0, false, boom })
	assert.ErrorIs(t, err, boom)
}
