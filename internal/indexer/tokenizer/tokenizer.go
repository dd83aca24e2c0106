// Package tokenizer splits raw document bytes into lowercase alphabetic words
// tagged with the byte offset of their first character. Only pure ASCII
// documents are accepted; anything containing a NUL or a byte above 0x7F is
// rejected whole.
package tokenizer

import (
	"errors"
	"fmt"
	"math"
)

const (
	asciiUpperBound = 0x7F
	// MaxDocumentSize keeps every byte offset within a uint32.
	MaxDocumentSize = math.MaxUint32
)

var (
	// ErrNotText is returned for documents that are not plain ASCII text.
	ErrNotText = errors.New("document is not ASCII text")
	// ErrTooLarge is returned for documents whose offsets would not fit in
	// a 32-bit position.
	ErrTooLarge = errors.New("document too large")
)

// Token represents a single normalised word and the byte offset where it
// starts in the original document.
type Token struct {
	Term     string
	Position uint32
}

// Tokenize breaks content into lowercased alphabetic words. An empty
// document yields no tokens and no error.
func Tokenize(content []byte) ([]Token, error) {
	if err := Validate(content); err != nil {
		return nil, err
	}
	tokens := make([]Token, 0, len(content)/6)
	start := -1
	for i := 0; i <= len(content); i++ {
		if i < len(content) && isAlpha(content[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, Token{
				Term:     lower(content[start:i]),
				Position: uint32(start),
			})
			start = -1
		}
	}
	return tokens, nil
}

// Validate reports whether content can be indexed.
func Validate(content []byte) error {
	if err := checkSize(int64(len(content))); err != nil {
		return err
	}
	for i, c := range content {
		if c == 0 || c > asciiUpperBound {
			return fmt.Errorf("%w: byte %#02x at offset %d", ErrNotText, c, i)
		}
	}
	return nil
}

func checkSize(n int64) error {
	if n > MaxDocumentSize {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, n, int64(MaxDocumentSize))
	}
	return nil
}

// Normalize lowercases a query word the same way Tokenize lowercases
// document words.
func Normalize(word string) string {
	return lower([]byte(word))
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func lower(b []byte) string {
	out := make([]byte, len(b))
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}
