package hashtable

// FNV-1a parameters. They are part of the on-disk index format: bucket
// numbers in a written file are derived from these values.
const (
	fnvOffsetBasis uint64 = 0xcbf29ce484222325
	fnvPrime       uint64 = 0x100000001b3
)

// Hash64 returns the 64-bit FNV-1a hash of data.
func Hash64(data []byte) uint64 {
	h := fnvOffsetBasis
	for _, b := range data {
		h ^= uint64(b)
		h *= fnvPrime
	}
	return h
}

// HashString is Hash64 over the bytes of s without copying them.
func HashString(s string) uint64 {
	h := fnvOffsetBasis
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= fnvPrime
	}
	return h
}

// Identity hashes an integer key to itself. Tables keyed by document IDs use
// it so that bucket = id mod numBuckets.
func Identity[K ~uint64 | ~uint32 | ~int64 | ~int](k K) uint64 {
	return uint64(k)
}
