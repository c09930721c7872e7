package foreman

import (
	"fmt"
	"time"
)

var _ kindStore = &SlotStore[int]{}

type slot[T any] struct {
	value    T
	occupied bool
}

// SlotStore owns every instance of one component kind. Slots are reused
// through a free-index stack before the backing array grows, so a live
// component keeps its index for the entity's lifetime. Reads of
// out-of-range or vacated indices report absence instead of faulting;
// stale indices legitimately arise across entity pooling boundaries.
type SlotStore[T any] struct {
	slots   []slot[T]
	free    []int
	count   int
	ver     uint64
	touched time.Time
}

// Add stores a value and returns its slot index, reusing a freed slot when
// one is available.
func (s *SlotStore[T]) Add(value T) int {
	s.bump()
	s.count++
	if n := len(s.free); n > 0 {
		i := s.free[n-1]
		s.free = s.free[:n-1]
		s.slots[i] = slot[T]{value: value, occupied: true}
		return i
	}
	s.slots = append(s.slots, slot[T]{value: value, occupied: true})
	return len(s.slots) - 1
}

// Remove vacates the slot and pushes its index on the free stack. Removing
// an absent or out-of-range index is a no-op.
func (s *SlotStore[T]) Remove(index int) {
	if index < 0 || index >= len(s.slots) || !s.slots[index].occupied {
		return
	}
	s.slots[index] = slot[T]{}
	s.free = append(s.free, index)
	s.count--
	s.bump()
}

// Get returns a pointer to the value at index, or false if the slot is
// vacant or out of range. The pointer is valid until the store next grows.
func (s *SlotStore[T]) Get(index int) (*T, bool) {
	if index < 0 || index >= len(s.slots) || !s.slots[index].occupied {
		return nil, false
	}
	return &s.slots[index].value, true
}

// Set replaces the value at an occupied index.
func (s *SlotStore[T]) Set(index int, value T) bool {
	if index < 0 || index >= len(s.slots) || !s.slots[index].occupied {
		return false
	}
	s.slots[index].value = value
	s.bump()
	return true
}

// Len reports the number of live components.
func (s *SlotStore[T]) Len() int {
	return s.count
}

// Version increments on every mutating operation.
func (s *SlotStore[T]) Version() uint64 {
	return s.ver
}

// LastMutated reports the wall time of the most recent mutation.
func (s *SlotStore[T]) LastMutated() time.Time {
	return s.touched
}

func (s *SlotStore[T]) bump() {
	s.ver++
	s.touched = time.Now()
}

func (s *SlotStore[T]) add(value any) (int, error) {
	v, ok := value.(T)
	if !ok {
		var zero T
		return -1, ComponentValueTypeError{Kind: fmt.Sprintf("%T", zero), Value: value}
	}
	return s.Add(v), nil
}

func (s *SlotStore[T]) remove(index int) {
	s.Remove(index)
}

func (s *SlotStore[T]) get(index int) (any, bool) {
	v, ok := s.Get(index)
	if !ok {
		return nil, false
	}
	return v, true
}

func (s *SlotStore[T]) set(index int, value any) error {
	v, ok := value.(T)
	if !ok {
		var zero T
		return ComponentValueTypeError{Kind: fmt.Sprintf("%T", zero), Value: value}
	}
	if !s.Set(index, v) {
		var zero T
		return ComponentNotFoundError{Kind: fmt.Sprintf("%T", zero)}
	}
	return nil
}

func (s *SlotStore[T]) valueCopy(index int) (any, bool) {
	v, ok := s.Get(index)
	if !ok {
		return nil, false
	}
	return *v, true
}

func (s *SlotStore[T]) length() int {
	return s.count
}

func (s *SlotStore[T]) version() uint64 {
	return s.ver
}

func (s *SlotStore[T]) lastMutated() time.Time {
	return s.touched
}
