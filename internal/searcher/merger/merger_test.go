package merger

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/searcher/ranker"
)

func TestMergeOrdersByRankNameShard(t *testing.T) {
	shards := [][]ranker.Result{
		{{Document: "b", Rank: 2, Shard: 0}, {Document: "z", Rank: 1, Shard: 0}},
		{{Document: "a", Rank: 2, Shard: 1}, {Document: "b", Rank: 2, Shard: 1}, {Document: "c", Rank: 5, Shard: 1}},
	}
	want := []ranker.Result{
		{Document: "c", Rank: 5, Shard: 1},
		{Document: "a", Rank: 2, Shard: 1},
		{Document: "b", Rank: 2, Shard: 0},
		{Document: "b", Rank: 2, Shard: 1},
		{Document: "z", Rank: 1, Shard: 0},
	}
	assert.Equal(t, want, Merge(shards, 0))
	assert.Equal(t, want[:3], Merge(shards, 3))
	assert.Equal(t, want, Merge(shards, 100))
}

func TestMergeEmpty(t *testing.T) {
	assert.Empty(t, Merge(nil, 0))
	assert.Empty(t, Merge([][]ranker.Result{{}, {}}, 5))
}

func TestTopMatchesFullSort(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	shards := make([][]ranker.Result, 4)
	for s := range shards {
		for i := 0; i < 50; i++ {
			shards[s] = append(shards[s], ranker.Result{
				Document: fmt.Sprintf("doc-%03d", rng.Intn(40)),
				Rank:     rng.Intn(6),
				Shard:    s,
			})
		}
	}
	full := Merge(shards, 0)
	for _, limit := range []int{1, 7, 25, 200} {
		want := full
		if limit < len(full) {
			want = full[:limit]
		}
		assert.Equal(t, want, Merge(shards, limit), "limit %d", limit)
	}
}
