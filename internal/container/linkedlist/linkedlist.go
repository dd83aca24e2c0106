// Package linkedlist provides a generic doubly linked list. It backs the
// hash table's bucket chains and the in-memory position lists of the
// inverted index.
package linkedlist

type node[T any] struct {
	value T
	prev  *node[T]
	next  *node[T]
}

// List is a doubly linked list. The zero value is an empty list ready to
// use.
type List[T any] struct {
	head *node[T]
	tail *node[T]
	len  int
}

// New returns an empty list.
func New[T any]() *List[T] {
	return &List[T]{}
}

// Len returns the number of elements in the list.
func (l *List[T]) Len() int {
	return l.len
}

// Push prepends v to the list.
func (l *List[T]) Push(v T) {
	n := &node[T]{value: v, next: l.head}
	if l.head == nil {
		l.tail = n
	} else {
		l.head.prev = n
	}
	l.head = n
	l.len++
}

// Append adds v to the end of the list.
func (l *List[T]) Append(v T) {
	n := &node[T]{value: v, prev: l.tail}
	if l.tail == nil {
		l.head = n
	} else {
		l.tail.next = n
	}
	l.tail = n
	l.len++
}

// Pop removes and returns the head element. ok is false on an empty list.
func (l *List[T]) Pop() (v T, ok bool) {
	if l.head == nil {
		return v, false
	}
	n := l.head
	l.unlink(n)
	return n.value, true
}

// Slice removes and returns the tail element. ok is false on an empty list.
func (l *List[T]) Slice() (v T, ok bool) {
	if l.tail == nil {
		return v, false
	}
	n := l.tail
	l.unlink(n)
	return n.value, true
}

// Values copies the list contents, head first, into a new slice.
func (l *List[T]) Values() []T {
	out := make([]T, 0, l.len)
	for n := l.head; n != nil; n = n.next {
		out = append(out, n.value)
	}
	return out
}

// Each calls fn for every element from head to tail.
func (l *List[T]) Each(fn func(v T)) {
	for n := l.head; n != nil; n = n.next {
		fn(n.value)
	}
}

// Sort orders the list in place with a stable bubble sort. less reports
// whether a sorts before b; when ascending is false the order is reversed.
// Lists in this codebase are short, so O(n^2) is fine.
func (l *List[T]) Sort(ascending bool, less func(a, b T) bool) {
	if l.len < 2 {
		return
	}
	for swapped := true; swapped; {
		swapped = false
		for n := l.head; n.next != nil; n = n.next {
			a, b := n.value, n.next.value
			var outOfOrder bool
			if ascending {
				outOfOrder = less(b, a)
			} else {
				outOfOrder = less(a, b)
			}
			if outOfOrder {
				n.value, n.next.value = b, a
				swapped = true
			}
		}
	}
}

// Iterator returns an iterator positioned at the head of the list.
func (l *List[T]) Iterator() *Iterator[T] {
	return &Iterator[T]{list: l, node: l.head}
}

func (l *List[T]) unlink(n *node[T]) {
	if n.prev == nil {
		l.head = n.next
	} else {
		n.prev.next = n.next
	}
	if n.next == nil {
		l.tail = n.prev
	} else {
		n.next.prev = n.prev
	}
	n.prev, n.next = nil, nil
	l.len--
}

// Iterator walks a List and can splice out the element it points at.
type Iterator[T any] struct {
	list *List[T]
	node *node[T]
}

// IsValid reports whether the iterator points at an element.
func (it *Iterator[T]) IsValid() bool {
	return it.node != nil
}

// Next advances the iterator. It returns false once it has moved past the
// tail.
func (it *Iterator[T]) Next() bool {
	if it.node == nil {
		return false
	}
	it.node = it.node.next
	return it.node != nil
}

// HasNext reports whether an element follows the current one.
func (it *Iterator[T]) HasNext() bool {
	return it.node != nil && it.node.next != nil
}

// Get returns the current element. ok is false when the iterator is not
// valid.
func (it *Iterator[T]) Get() (v T, ok bool) {
	if it.node == nil {
		return v, false
	}
	return it.node.value, true
}

// Remove splices the current element out of the list in O(1). Afterwards the
// iterator points at the successor, or at the predecessor when the tail was
// removed. It reports whether the list is still non-empty.
func (it *Iterator[T]) Remove() bool {
	n := it.node
	if n == nil {
		return it.list.len > 0
	}
	next, prev := n.next, n.prev
	it.list.unlink(n)
	if next != nil {
		it.node = next
	} else {
		it.node = prev
	}
	return it.list.len > 0
}
