package merger

import (
	"container/heap"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/searcher/ranker"
)

// Less orders results by rank descending, then document name, then shard.
func Less(a, b ranker.Result) bool {
	if a.Rank != b.Rank {
		return a.Rank > b.Rank
	}
	if a.Document != b.Document {
		return a.Document < b.Document
	}
	return a.Shard < b.Shard
}

// Sort orders results in place using Less.
func Sort(results []ranker.Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return Less(results[i], results[j])
	})
}

// Merge combines per-shard results into one ordered list. With limit > 0 only
// the best limit results are kept.
func Merge(shardResults [][]ranker.Result, limit int) []ranker.Result {
	if limit <= 0 {
		total := 0
		for _, results := range shardResults {
			total += len(results)
		}
		all := make([]ranker.Result, 0, total)
		for _, results := range shardResults {
			all = append(all, results...)
		}
		Sort(all)
		return all
	}
	h := &resultHeap{}
	heap.Init(h)
	for _, results := range shardResults {
		for _, r := range results {
			heap.Push(h, r)
			if h.Len() > limit {
				heap.Pop(h)
			}
		}
	}
	result := make([]ranker.Result, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(h).(ranker.Result)
	}
	return result
}

// resultHeap is a min-heap on Less, so the worst kept result is on top.
type resultHeap []ranker.Result

func (h resultHeap) Len() int { return len(h) }

func (h resultHeap) Less(i, j int) bool { return Less(h[j], h[i]) }

func (h resultHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *resultHeap) Push(x interface{}) {
	*h = append(*h, x.(ranker.Result))
}

func (h *resultHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
