package index

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/container/hashtable"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/container/linkedlist"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/diskindex/pkg/errors"
)

type MemoryIndex struct {
	mu        sync.RWMutex
	words     *hashtable.Table[string, *WordPostings]
	positions int
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		words: hashtable.New[string, *WordPostings](MemoryIndexBuckets, hashtable.HashString),
	}
}

// AddDocument records every token of one document under docID.
func (m *MemoryIndex) AddDocument(docID DocID, tokens []tokenizer.Token) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tok := range tokens {
		m.addPosition(tok.Term, docID, tok.Position)
	}
}

// AddPosition appends one occurrence of word in docID.
func (m *MemoryIndex) AddPosition(word string, docID DocID, position uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addPosition(word, docID, position)
}

func (m *MemoryIndex) addPosition(word string, docID DocID, position uint32) {
	wp := m.wordPostings(word)
	positions, ok := wp.Postings.Find(docID)
	if !ok {
		positions = linkedlist.New[uint32]()
		wp.Postings.Insert(docID, positions)
	}
	positions.Append(position)
	m.positions++
}

// AddPostingList stores a complete position list for word in docID. A
// document may only be given one list per word.
func (m *MemoryIndex) AddPostingList(word string, docID DocID, positions []uint32) error {
	if len(positions) == 0 {
		return fmt.Errorf("posting list for %q in doc %d: %w: no positions", word, docID, apperrors.ErrInvalidInput)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	wp := m.wordPostings(word)
	if _, exists := wp.Postings.Find(docID); exists {
		return fmt.Errorf("posting list for %q in doc %d: %w: already present", word, docID, apperrors.ErrInvalidInput)
	}
	list := linkedlist.New[uint32]()
	for _, p := range positions {
		list.Append(p)
	}
	wp.Postings.Insert(docID, list)
	m.positions += len(positions)
	return nil
}

func (m *MemoryIndex) wordPostings(word string) *WordPostings {
	wp, ok := m.words.Find(word)
	if !ok {
		wp = newWordPostings(word)
		m.words.Insert(word, wp)
	}
	return wp
}

// Lookup returns the postings of word.
func (m *MemoryIndex) Lookup(word string) (*WordPostings, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.words.Find(word)
}

// Search returns the documents containing every word, ranked by the summed
// occurrence counts. A nil result means no document matched.
func (m *MemoryIndex) Search(words []string) ([]Hit, error) {
	if len(words) == 0 {
		return nil, fmt.Errorf("search: %w: empty word list", apperrors.ErrInvalidInput)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	first, ok := m.words.Find(words[0])
	if !ok {
		return nil, nil
	}
	ranks := make(map[DocID]int, first.Postings.Len())
	first.Postings.Each(func(doc DocID, positions *linkedlist.List[uint32]) {
		ranks[doc] = positions.Len()
	})

	for _, word := range words[1:] {
		wp, ok := m.words.Find(word)
		if !ok {
			return nil, nil
		}
		for doc, rank := range ranks {
			n := wp.Count(doc)
			if n == 0 {
				delete(ranks, doc)
				continue
			}
			ranks[doc] = rank + n
		}
		if len(ranks) == 0 {
			return nil, nil
		}
	}

	hits := make([]Hit, 0, len(ranks))
	for doc, rank := range ranks {
		hits = append(hits, Hit{DocID: doc, Rank: rank})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Rank != hits[j].Rank {
			return hits[i].Rank > hits[j].Rank
		}
		return hits[i].DocID < hits[j].DocID
	})
	return hits, nil
}

func (m *MemoryIndex) NumWords() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.words.Len()
}

// NumPositions returns the total number of recorded occurrences.
func (m *MemoryIndex) NumPositions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.positions
}

// Table exposes the word table for serialization. It must not be modified
// while a writer holds it.
func (m *MemoryIndex) Table() *hashtable.Table[string, *WordPostings] {
	return m.words
}
