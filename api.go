package foreman

import "time"

// Component identifies a component kind. Kinds are created once with
// FactoryNewComponent and shared; the integer type token is the key into
// the per-kind stores and the per-entity component map.
type Component interface {
	TypeID() TypeID
	KindName() string

	newStore() kindStore
}

// Validator is consulted by Entity.AddComponent before a component of the
// registered kind is inserted. Dependencies must already be present on the
// entity, Conflicts must not be. A non-nil result from Validate aborts the
// add with no partial mutation.
type Validator struct {
	Validate     func(value any) error
	Dependencies []Component
	Conflicts    []Component
}

// PassFunc runs once per system step, before or after the per-entity pass.
type PassFunc func(w *World, dt time.Duration)

// EachFunc runs for every entity matching the system's query. components
// holds pointers to the entity's components in the order of the filter's
// All list. The pointers are valid for the duration of the callback only.
type EachFunc func(w *World, e *Entity, dt time.Duration, components []any)

// Predicate gates system execution per tick.
type Predicate func(w *World) bool

// kindStore is the type-erased surface the entity store drives. Concrete
// stores are SlotStore[T] instances created lazily per kind.
type kindStore interface {
	add(value any) (int, error)
	remove(index int)
	get(index int) (any, bool)
	set(index int, value any) error
	valueCopy(index int) (any, bool)
	length() int
	version() uint64
	lastMutated() time.Time
}
