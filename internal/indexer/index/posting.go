package index

import (
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/container/hashtable"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/container/linkedlist"
)

// DocID identifies a document within one index file. IDs are assigned from 1.
type DocID uint64

// Initial bucket counts for the three kinds of table an index holds.
const (
	DocTableBuckets    = 1024
	MemoryIndexBuckets = 128
	PostingsBuckets    = 16
)

// Postings maps a document to the byte offsets at which one word occurs in
// it, in discovery order.
type Postings = hashtable.Table[DocID, *linkedlist.List[uint32]]

// WordPostings is the record stored per word in a MemoryIndex.
type WordPostings struct {
	Word     string
	Postings *Postings
}

func newWordPostings(word string) *WordPostings {
	return &WordPostings{
		Word:     word,
		Postings: hashtable.New[DocID, *linkedlist.List[uint32]](PostingsBuckets, hashtable.Identity[DocID]),
	}
}

// Count returns how many times the word occurs in doc.
func (wp *WordPostings) Count(doc DocID) int {
	positions, ok := wp.Postings.Find(doc)
	if !ok {
		return 0
	}
	return positions.Len()
}

// Hit is one in-memory search result.
type Hit struct {
	DocID DocID
	Rank  int
}
