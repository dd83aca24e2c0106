// Package ranker accumulates additive occurrence-count ranks for AND
// queries. One Accumulator tracks the surviving documents of a single shard
// while the query words are applied in order.
package ranker

import (
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/indexer/segment"
)

// Result is one ranked document. Shard is the position of the index file the
// document came from and only breaks ties.
type Result struct {
	Document string `json:"document"`
	Rank     int    `json:"rank"`
	Shard    int    `json:"-"`
}

// Entry is a surviving document and its rank so far.
type Entry struct {
	DocID index.DocID
	Rank  int
}

// CountFunc reports how often the current word occurs in a document.
type CountFunc func(id index.DocID) (count int, ok bool, err error)

// Accumulator holds the running result set of one shard.
type Accumulator struct {
	entries []Entry
}

// Seed starts the result set from the documents of the first word, ranking
// each by its occurrence count.
func (a *Accumulator) Seed(docs []segment.DocCount) {
	a.entries = make([]Entry, 0, len(docs))
	for _, d := range docs {
		a.entries = append(a.entries, Entry{DocID: d.DocID, Rank: d.Count})
	}
}

// Intersect keeps only the documents for which count reports a hit and adds
// the count to their rank. Order is preserved.
func (a *Accumulator) Intersect(count CountFunc) error {
	kept := a.entries[:0]
	for _, e := range a.entries {
		n, ok, err := count(e.DocID)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		e.Rank += n
		kept = append(kept, e)
	}
	a.entries = kept
	return nil
}

// Clear empties the result set.
func (a *Accumulator) Clear() {
	a.entries = nil
}

func (a *Accumulator) Len() int {
	return len(a.entries)
}

// Entries returns the surviving documents.
func (a *Accumulator) Entries() []Entry {
	return a.entries
}
