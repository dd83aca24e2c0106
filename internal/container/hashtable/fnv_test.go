package hashtable

import (
	"hash/fnv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHash64KnownValues(t *testing.T) {
	assert.Equal(t, uint64(0xcbf29ce484222325), Hash64(nil))
	assert.Equal(t, uint64(0xaf63dc4c8601ec8c), Hash64([]byte("a")))
	assert.Equal(t, uint64(0x85944171f73967e8), Hash64([]byte("foobar")))
}

func TestHash64MatchesFNV1a(t *testing.T) {
	for _, s := range []string{"", "apples", "bananas", "The Fox Can't CATCH", "pears\x00"} {
		ref := fnv.New64a()
		ref.Write([]byte(s))
		assert.Equal(t, ref.Sum64(), Hash64([]byte(s)), "input %q", s)
		assert.Equal(t, Hash64([]byte(s)), HashString(s), "input %q", s)
	}
}

func TestHash64SingleBitChange(t *testing.T) {
	base := []byte("inverted index")
	h := Hash64(base)
	for i := range base {
		for bit := 0; bit < 8; bit++ {
			flipped := append([]byte(nil), base...)
			flipped[i] ^= 1 << bit
			assert.NotEqual(t, h, Hash64(flipped), "byte %d bit %d", i, bit)
		}
	}
}

func TestIdentity(t *testing.T) {
	assert.Equal(t, uint64(42), Identity[uint64](42))
	assert.Equal(t, uint64(7), Identity[int](7))
}
