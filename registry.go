package foreman

import "fmt"

// registry is a small insertion-ordered name index used for systems and
// system groups.
type registry[T any] struct {
	items       []T
	itemIndices map[string]int
	maxCapacity int
}

func newRegistry[T any](cap int) *registry[T] {
	return &registry[T]{
		itemIndices: make(map[string]int),
		maxCapacity: cap,
	}
}

func (r *registry[T]) GetIndex(key string) (int, bool) {
	index, ok := r.itemIndices[key]
	return index, ok
}

func (r *registry[T]) Get(key string) (T, bool) {
	index, ok := r.itemIndices[key]
	if !ok {
		var zero T
		return zero, false
	}
	return r.items[index], true
}

func (r *registry[T]) Register(key string, item T) (int, error) {
	if _, exists := r.itemIndices[key]; exists {
		return -1, fmt.Errorf("key already registered: %s", key)
	}
	if len(r.itemIndices) >= r.maxCapacity {
		return -1, fmt.Errorf("registry at maximum capacity (%d)", r.maxCapacity)
	}
	index := len(r.items)
	r.itemIndices[key] = index
	r.items = append(r.items, item)
	return index, nil
}

// Items returns the backing slice in registration order; callers must not
// modify it.
func (r *registry[T]) Items() []T {
	return r.items
}

func (r *registry[T]) Len() int {
	return len(r.items)
}
