package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeOffsets(t *testing.T) {
	tokens, err := Tokenize([]byte("The  Fox  Can't   CATCH the  Chicken."))
	require.NoError(t, err)

	want := []Token{
		{"the", 0},
		{"fox", 5},
		{"can", 10},
		{"t", 14},
		{"catch", 18},
		{"the", 24},
		{"chicken", 29},
	}
	assert.Equal(t, want, tokens)
}

func TestTokenizeDigitsSplitWords(t *testing.T) {
	tokens, err := Tokenize([]byte("abc123def\nx"))
	require.NoError(t, err)
	assert.Equal(t, []Token{{"abc", 0}, {"def", 6}, {"x", 10}}, tokens)
}

func TestTokenizeEmpty(t *testing.T) {
	tokens, err := Tokenize(nil)
	require.NoError(t, err)
	assert.Empty(t, tokens)

	tokens, err = Tokenize([]byte("  123 !! "))
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestTokenizeRejectsNonASCII(t *testing.T) {
	_, err := Tokenize([]byte("caf\xc3\xa9 menu"))
	assert.ErrorIs(t, err, ErrNotText)

	_, err = Tokenize([]byte("null\x00byte"))
	assert.ErrorIs(t, err, ErrNotText)
}

func TestSizeLimitKeepsOffsetsIn32Bits(t *testing.T) {
	assert.NoError(t, checkSize(MaxDocumentSize))
	assert.ErrorIs(t, checkSize(int64(MaxDocumentSize)+1), ErrTooLarge)
	assert.NoError(t, Validate([]byte("small")))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "apples", Normalize("APPles"))
	assert.Equal(t, "a-b", Normalize("A-B"))
}

func BenchmarkTokenize(b *testing.B) {
	doc := []byte("Distributed search engines shard an inverted index across many files, " +
		"each of which answers lookups with a handful of seeks. ")
	b.ReportAllocs()
	b.SetBytes(int64(len(doc)))
	for i := 0; i < b.N; i++ {
		if _, err := Tokenize(doc); err != nil {
			b.Fatal(err)
		}
	}
}
