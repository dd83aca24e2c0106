// Package hashtable implements a chained hash table that grows automatically.
// Each bucket is a linkedlist.List of entries; the bucket for a key is its
// 64-bit hash modulo the bucket count. Entries remember their hash, so a
// resize only recomputes bucket numbers.
//
// Keys are compared exactly within a chain, so two distinct keys with the
// same 64-bit hash are stored side by side instead of replacing each other.
package hashtable

import (
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/container/linkedlist"
)

const (
	// loadFactor is the elements-per-bucket ratio that triggers growth.
	loadFactor = 3
	// growthFactor multiplies the bucket count on every resize.
	growthFactor = 9
)

// HashFunc maps a key to its 64-bit hash.
type HashFunc[K comparable] func(K) uint64

// KeyValue is one stored pair.
type KeyValue[K comparable, V any] struct {
	Key   K
	Value V
}

type entry[K comparable, V any] struct {
	hash  uint64
	key   K
	value V
}

// Table is a chained hash table. It is not safe for concurrent use.
type Table[K comparable, V any] struct {
	buckets     []*linkedlist.List[entry[K, V]]
	hash        HashFunc[K]
	numElements int
}

// New allocates a table with numBuckets initial buckets (at least one).
func New[K comparable, V any](numBuckets int, hash HashFunc[K]) *Table[K, V] {
	if numBuckets < 1 {
		numBuckets = 1
	}
	return &Table[K, V]{
		buckets: makeBuckets[K, V](numBuckets),
		hash:    hash,
	}
}

func makeBuckets[K comparable, V any](n int) []*linkedlist.List[entry[K, V]] {
	buckets := make([]*linkedlist.List[entry[K, V]], n)
	for i := range buckets {
		buckets[i] = linkedlist.New[entry[K, V]]()
	}
	return buckets
}

// Len returns the number of stored elements.
func (t *Table[K, V]) Len() int {
	return t.numElements
}

// NumBuckets returns the current bucket count.
func (t *Table[K, V]) NumBuckets() int {
	return len(t.buckets)
}

// BucketOf returns the bucket number a hash maps to in this table.
func (t *Table[K, V]) BucketOf(hash uint64) int {
	return int(hash % uint64(len(t.buckets)))
}

// Hash returns the table's hash of key.
func (t *Table[K, V]) Hash(key K) uint64 {
	return t.hash(key)
}

// Insert stores value under key. An existing entry for key is removed first
// and its value returned with existed set; the new entry goes to the tail of
// its chain.
func (t *Table[K, V]) Insert(key K, value V) (old V, existed bool) {
	t.maybeResize()

	h := t.hash(key)
	c := t.buckets[t.BucketOf(h)]
	old, existed = removeFromChain(c, key)
	if existed {
		t.numElements--
	}
	c.Append(entry[K, V]{hash: h, key: key, value: value})
	t.numElements++
	return old, existed
}

// Find looks up key.
func (t *Table[K, V]) Find(key K) (v V, ok bool) {
	c := t.buckets[t.BucketOf(t.hash(key))]
	for it := c.Iterator(); it.IsValid(); it.Next() {
		e, _ := it.Get()
		if e.key == key {
			return e.value, true
		}
	}
	return v, false
}

// Remove deletes key and returns its value.
func (t *Table[K, V]) Remove(key K) (v V, ok bool) {
	c := t.buckets[t.BucketOf(t.hash(key))]
	v, ok = removeFromChain(c, key)
	if ok {
		t.numElements--
	}
	return v, ok
}

// Chain returns a copy of the entries of bucket i in chain order.
func (t *Table[K, V]) Chain(i int) []KeyValue[K, V] {
	c := t.buckets[i]
	out := make([]KeyValue[K, V], 0, c.Len())
	c.Each(func(e entry[K, V]) {
		out = append(out, KeyValue[K, V]{Key: e.key, Value: e.value})
	})
	return out
}

// ChainLen returns the number of entries in bucket i.
func (t *Table[K, V]) ChainLen(i int) int {
	return t.buckets[i].Len()
}

// Each calls fn for every element, bucket by bucket in chain order.
func (t *Table[K, V]) Each(fn func(key K, value V)) {
	for _, c := range t.buckets {
		c.Each(func(e entry[K, V]) {
			fn(e.key, e.value)
		})
	}
}

func removeFromChain[K comparable, V any](c *linkedlist.List[entry[K, V]], key K) (v V, ok bool) {
	for it := c.Iterator(); it.IsValid(); it.Next() {
		e, _ := it.Get()
		if e.key == key {
			it.Remove()
			return e.value, true
		}
	}
	return v, false
}

// maybeResize grows the table by growthFactor once the load factor is
// reached. Entries are moved out of the old chains into the new ones; the
// old bucket array is dropped afterwards.
func (t *Table[K, V]) maybeResize() {
	if t.numElements < loadFactor*len(t.buckets) {
		return
	}
	grown := makeBuckets[K, V](len(t.buckets) * growthFactor)
	n := uint64(len(grown))
	for _, c := range t.buckets {
		for {
			e, ok := c.Pop()
			if !ok {
				break
			}
			grown[e.hash%n].Append(e)
		}
	}
	t.buckets = grown
}

// Iterator visits every element of the table. Inserting into the table while
// iterating invalidates the iterator; removing through it does not.
type Iterator[K comparable, V any] struct {
	table  *Table[K, V]
	bucket int
	chain  *linkedlist.Iterator[entry[K, V]]
}

// Iterator returns an iterator positioned at the first element.
func (t *Table[K, V]) Iterator() *Iterator[K, V] {
	it := &Iterator[K, V]{table: t}
	it.seek(0)
	return it
}

// seek positions the iterator at the head of the first non-empty bucket at
// or after from.
func (it *Iterator[K, V]) seek(from int) {
	for b := from; b < len(it.table.buckets); b++ {
		if it.table.buckets[b].Len() > 0 {
			it.bucket = b
			it.chain = it.table.buckets[b].Iterator()
			return
		}
	}
	it.bucket = len(it.table.buckets)
	it.chain = nil
}

// IsValid reports whether the iterator points at an element.
func (it *Iterator[K, V]) IsValid() bool {
	return it.chain != nil && it.chain.IsValid()
}

// Next advances to the next element. It returns false past the end.
func (it *Iterator[K, V]) Next() bool {
	if !it.IsValid() {
		return false
	}
	if !it.chain.Next() {
		it.seek(it.bucket + 1)
	}
	return it.IsValid()
}

// Get returns the current element.
func (it *Iterator[K, V]) Get() (kv KeyValue[K, V], ok bool) {
	if !it.IsValid() {
		return kv, false
	}
	e, _ := it.chain.Get()
	return KeyValue[K, V]{Key: e.key, Value: e.value}, true
}

// Remove deletes the current element, returns it, and advances the iterator
// to the following element.
func (it *Iterator[K, V]) Remove() (kv KeyValue[K, V], ok bool) {
	if !it.IsValid() {
		return kv, false
	}
	e, _ := it.chain.Get()
	atTail := !it.chain.HasNext()
	it.chain.Remove()
	it.table.numElements--
	if atTail {
		it.seek(it.bucket + 1)
	}
	return KeyValue[K, V]{Key: e.key, Value: e.value}, true
}
