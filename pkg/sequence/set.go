package sequence

import "iter"

// compactThreshold is the tombstone count below which OrderedSet never compacts.
const compactThreshold = 32

type slot[T comparable] struct {
	value T
	live  bool
}

// OrderedSet is an identity set that remembers insertion order.
// Removal leaves a tombstone which is reclaimed once tombstones outnumber live values.
// The zero value is ready to use. It is not safe for concurrent use.
type OrderedSet[T comparable] struct {
	index map[T]int
	slots []slot[T]
	dead  int
}

// NewOrderedSet creates an empty set with room for capacity values.
func NewOrderedSet[T comparable](capacity int) *OrderedSet[T] {
	return &OrderedSet[T]{
		index: make(map[T]int, capacity),
		slots: make([]slot[T], 0, capacity),
	}
}

// Add inserts v and reports whether it was absent.
func (s *OrderedSet[T]) Add(v T) bool {
	if s.index == nil {
		s.index = make(map[T]int)
	}
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = len(s.slots)
	s.slots = append(s.slots, slot[T]{value: v, live: true})
	return true
}

// Remove erases v and reports whether it was present.
func (s *OrderedSet[T]) Remove(v T) bool {
	i, ok := s.index[v]
	if !ok {
		return false
	}
	delete(s.index, v)
	var zero T
	s.slots[i] = slot[T]{value: zero}
	s.dead++
	if s.dead > compactThreshold && s.dead > len(s.index) {
		s.compact()
	}
	return true
}

func (s *OrderedSet[T]) Contains(v T) bool {
	_, ok := s.index[v]
	return ok
}

func (s *OrderedSet[T]) Len() int {
	return len(s.index)
}

// Clear removes every value but keeps the allocated storage.
func (s *OrderedSet[T]) Clear() {
	clear(s.index)
	clear(s.slots)
	s.slots = s.slots[:0]
	s.dead = 0
}

// AppendTo appends the live values to dst in insertion order and returns the result.
// Passing a reused buffer keeps per-frame snapshots allocation free.
func (s *OrderedSet[T]) AppendTo(dst []T) []T {
	for _, sl := range s.slots {
		if sl.live {
			dst = append(dst, sl.value)
		}
	}
	return dst
}

// All iterates live values in insertion order.
// Mutating the set during iteration is not supported; iterate a snapshot from AppendTo instead.
func (s *OrderedSet[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, sl := range s.slots {
			if sl.live && !yield(sl.value) {
				return
			}
		}
	}
}

func (s *OrderedSet[T]) compact() {
	n := 0
	for _, sl := range s.slots {
		if !sl.live {
			continue
		}
		s.slots[n] = sl
		s.index[sl.value] = n
		n++
	}
	clear(s.slots[n:])
	s.slots = s.slots[:n]
	s.dead = 0
}
