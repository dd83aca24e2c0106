package index

import (
	"errors"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/diskindex/pkg/errors"
)

// Document is a named piece of raw text to be indexed.
type Document struct {
	Name    string
	Content []byte
}

// Builder accumulates documents into a MemoryIndex and its DocTable.
type Builder struct {
	Index    *MemoryIndex
	DocTable *DocTable
}

func NewBuilder() *Builder {
	return &Builder{
		Index:    NewMemoryIndex(),
		DocTable: NewDocTable(),
	}
}

// Add tokenizes doc and indexes it. Documents that are not ASCII text, are
// too large or contain no words are skipped and get no DocID; ok reports
// whether doc was indexed. A name that is already indexed is an error.
func (b *Builder) Add(doc Document) (id DocID, ok bool, err error) {
	if _, exists := b.DocTable.ID(doc.Name); exists {
		return 0, false, fmt.Errorf("document %q: %w: already indexed", doc.Name, apperrors.ErrInvalidInput)
	}
	tokens, err := tokenizer.Tokenize(doc.Content)
	if errors.Is(err, tokenizer.ErrNotText) || errors.Is(err, tokenizer.ErrTooLarge) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if len(tokens) == 0 {
		return 0, false, nil
	}
	id = b.DocTable.Add(doc.Name)
	b.Index.AddDocument(id, tokens)
	return id, true, nil
}

// Build indexes docs in order.
func Build(docs []Document) (*MemoryIndex, *DocTable, error) {
	b := NewBuilder()
	for _, doc := range docs {
		if _, _, err := b.Add(doc); err != nil {
			return nil, nil, err
		}
	}
	return b.Index, b.DocTable, nil
}
