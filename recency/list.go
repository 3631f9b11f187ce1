// Package recency implements the usage-ordered list behind the LRU cache.
package recency

import "fmt"

/*
This file implements a doubly linked list whose nodes live in an arena (a growable slice).

Instead of pointers, nodes point at each other with slot indexes (Handles).
Two slots are reserved when the list is created:
- slot 0 is the head sentinel (before the least recently used node)
- slot 1 is the tail sentinel (after the most recently used node)

Because the sentinels always exist, no splice needs an "is the list empty?" branch.
Freed slots are kept on a free list and reused by the next PushBack.
*/

// Handle identifies one node slot in the arena.
type Handle int

const (
	head Handle = 0
	tail Handle = 1

	// firstSlot is the first slot that can hold a real entry.
	firstSlot = 2
)

// node is one slot of the arena.
type node[K any, V any] struct {
	key   K
	value V

	// prev points to the node used just before this one (towards head).
	prev Handle

	// next points to the node used just after this one (towards tail).
	next Handle

	// linked is false for sentinels and for slots sitting on the free list.
	linked bool
}

// List keeps entries ordered from least recently used (front) to most recently used (back).
//
// The zero value is not valid, use New.
type List[K any, V any] struct {
	nodes []node[K, V]
	free  []Handle
	size  int
}

// New creates an empty list. sizeHint pre-allocates room for that many entries.
func New[K any, V any](sizeHint int) *List[K, V] {
	if sizeHint < 0 {
		sizeHint = 0
	}
	l := &List[K, V]{
		nodes: make([]node[K, V], firstSlot, firstSlot+sizeHint),
	}
	l.nodes[head].next = tail
	l.nodes[tail].prev = head
	return l
}

// Len returns the number of entries, sentinels excluded.
func (l *List[K, V]) Len() int { return l.size }

// PushBack stores a new entry and links it as the most recently used one.
func (l *List[K, V]) PushBack(key K, value V) Handle {
	h := l.alloc()
	n := &l.nodes[h]
	n.key = key
	n.value = value
	l.appendAtTail(h)
	return h
}

// MoveToBack marks h as the most recently used entry.
func (l *List[K, V]) MoveToBack(h Handle) {
	if l.nodes[tail].prev == h && l.nodes[h].linked {
		return
	}
	l.unlink(h)
	l.appendAtTail(h)
}

// Remove unlinks h and releases its slot. The entry's key and value are returned.
func (l *List[K, V]) Remove(h Handle) (K, V) {
	l.unlink(h)

	n := &l.nodes[h]
	key, value := n.key, n.value

	// Zero the slot so the arena does not keep payloads reachable.
	*n = node[K, V]{}
	l.free = append(l.free, h)
	return key, value
}

// Front returns the least recently used entry.
func (l *List[K, V]) Front() (Handle, bool) {
	h := l.nodes[head].next
	return h, h != tail
}

// Next returns the entry used just after h.
func (l *List[K, V]) Next(h Handle) (Handle, bool) {
	n := l.nodes[h].next
	return n, n != tail
}

// Key returns the key stored at h.
func (l *List[K, V]) Key(h Handle) K { return l.nodes[h].key }

// Value returns the value stored at h.
func (l *List[K, V]) Value(h Handle) V { return l.nodes[h].value }

// SetValue overwrites the value stored at h without changing its position.
func (l *List[K, V]) SetValue(h Handle, value V) { l.nodes[h].value = value }

// Reset drops every entry. The arena keeps its allocated capacity.
func (l *List[K, V]) Reset() {
	clear(l.nodes)
	l.nodes = l.nodes[:firstSlot]
	l.free = l.free[:0]
	l.size = 0
	l.nodes[head].next = tail
	l.nodes[tail].prev = head
}

// Slots returns the length of the arena, sentinels included.
func (l *List[K, V]) Slots() int { return len(l.nodes) }

func (l *List[K, V]) alloc() Handle {
	if n := len(l.free); n > 0 {
		h := l.free[n-1]
		l.free = l.free[:n-1]
		return h
	}
	l.nodes = append(l.nodes, node[K, V]{})
	return Handle(len(l.nodes) - 1)
}

/*
unlink splices h out of the list by connecting its predecessor directly to its successor.

It is only defined for real entries that are currently linked.
Calling it on a sentinel or on a freed slot means the cache index and the list
disagree, which cannot be repaired at runtime, so it panics.
*/
func (l *List[K, V]) unlink(h Handle) {
	if h < firstSlot || int(h) >= len(l.nodes) || !l.nodes[h].linked {
		panic(fmt.Sprintf("recency: unlink of slot %d which is not a linked entry", h))
	}
	n := &l.nodes[h]
	l.nodes[n.prev].next = n.next
	l.nodes[n.next].prev = n.prev
	n.prev, n.next = 0, 0
	n.linked = false
	l.size--
}

// appendAtTail splices h in immediately before the tail sentinel.
func (l *List[K, V]) appendAtTail(h Handle) {
	last := l.nodes[tail].prev

	n := &l.nodes[h]
	n.prev = last
	n.next = tail
	n.linked = true

	l.nodes[last].next = h
	l.nodes[tail].prev = h
	l.size++
}

// Verify walks the list from head to tail and reports the first structural problem it finds.
func (l *List[K, V]) Verify() error {
	if l.nodes[head].linked || l.nodes[tail].linked {
		return fmt.Errorf("recency: sentinel marked as entry")
	}

	seen := 0
	prev := head
	for h := l.nodes[head].next; h != tail; h = l.nodes[h].next {
		if h < firstSlot || int(h) >= len(l.nodes) {
			return fmt.Errorf("recency: link to invalid slot %d", h)
		}
		n := l.nodes[h]
		if !n.linked {
			return fmt.Errorf("recency: slot %d reachable but not linked", h)
		}
		if n.prev != prev {
			return fmt.Errorf("recency: slot %d has prev %d, want %d", h, n.prev, prev)
		}
		seen++
		if seen > l.size {
			return fmt.Errorf("recency: walk exceeds size %d, list has a cycle or size is stale", l.size)
		}
		prev = h
	}
	if l.nodes[tail].prev != prev {
		return fmt.Errorf("recency: tail prev is %d, want %d", l.nodes[tail].prev, prev)
	}
	if seen != l.size {
		return fmt.Errorf("recency: walked %d entries, size is %d", seen, l.size)
	}
	if seen+len(l.free)+firstSlot != len(l.nodes) {
		return fmt.Errorf("recency: %d linked + %d free slots do not cover arena of %d", seen, len(l.free), len(l.nodes)-firstSlot)
	}
	return nil
}
