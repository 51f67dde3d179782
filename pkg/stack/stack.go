// Package stack provides a growable sequence that owns its elements.
//
// Each element may carry a destructor. Free runs them from the most recently
// pushed element backward, exactly once each.
package stack

import "iter"

// Increment is both the initial capacity and the fixed growth step.
const Increment = 10

type entry[T any] struct {
	value T
	free  func(T)
}

// Stack is a LIFO sequence with indexed access. The zero value is an empty
// stack ready to use; a nil *Stack behaves as an empty one for reads and Free.
type Stack[T any] struct {
	entries []entry[T]
}

// New returns an empty stack with capacity Increment.
func New[T any]() *Stack[T] {
	return &Stack[T]{entries: make([]entry[T], 0, Increment)}
}

// Of returns a stack holding values in push order, none of them owned.
func Of[T any](values ...T) *Stack[T] {
	s := New[T]()
	for _, v := range values {
		s.Push(v, nil)
	}
	return s
}

// Push appends v. When free is non-nil the stack owns v and calls free(v)
// from Free. Growth is by exactly Increment slots, so capacity only grows.
// Go allocation failures panic, so a push either completes or leaves the
// stack untouched.
func (s *Stack[T]) Push(v T, free func(T)) {
	if len(s.entries) == cap(s.entries) {
		grown := make([]entry[T], len(s.entries), cap(s.entries)+Increment)
		copy(grown, s.entries)
		s.entries = grown
	}
	s.entries = append(s.entries, entry[T]{value: v, free: free})
}

// Pop removes and returns the top value. Ownership passes to the caller: the
// destructor is not run.
func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	if s.IsEmpty() {
		return zero, false
	}
	top := len(s.entries) - 1
	v := s.entries[top].value
	s.entries[top] = entry[T]{}
	s.entries = s.entries[:top]
	return v, true
}

// Peek returns the top value without removing it.
func (s *Stack[T]) Peek() (T, bool) {
	return s.Get(s.Len() - 1)
}

// Get returns the value at index i, counted from the bottom.
func (s *Stack[T]) Get(i int) (T, bool) {
	var zero T
	if s == nil || i < 0 || i >= len(s.entries) {
		return zero, false
	}
	return s.entries[i].value, true
}

func (s *Stack[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

func (s *Stack[T]) Cap() int {
	if s == nil {
		return 0
	}
	return cap(s.entries)
}

func (s *Stack[T]) IsEmpty() bool {
	return s.Len() == 0
}

// All iterates from the bottom of the stack to the top.
func (s *Stack[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < s.Len(); i++ {
			if !yield(i, s.entries[i].value) {
				return
			}
		}
	}
}

// Values returns the values bottom to top in a fresh slice.
func (s *Stack[T]) Values() []T {
	out := make([]T, 0, s.Len())
	for _, v := range s.All() {
		out = append(out, v)
	}
	return out
}

// Free runs every destructor top to bottom, then releases the storage.
// Entries are detached before their destructor runs, so a destructor that
// frees a nested stack, or this one, never sees an entry twice.
func (s *Stack[T]) Free() {
	if s == nil {
		return
	}
	for len(s.entries) > 0 {
		top := len(s.entries) - 1
		e := s.entries[top]
		s.entries[top] = entry[T]{}
		s.entries = s.entries[:top]
		if e.free != nil {
			e.free(e.value)
		}
	}
	s.entries = nil
}
