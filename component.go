package foreman

// TypeID is the stable integer token assigned to a component kind at
// creation. It is the bit position in entity kind masks.
type TypeID uint32

// MaxComponentTypes caps the number of distinct component kinds. The cap
// matches the mask width used for query evaluation.
const MaxComponentTypes = 256

// ComponentType is the typed handle for a component kind. It implements
// Component and carries the typed accessors used inside system callbacks.
type ComponentType[T any] struct {
	id   TypeID
	name string
}

func (c ComponentType[T]) TypeID() TypeID {
	return c.id
}

func (c ComponentType[T]) KindName() string {
	return c.name
}

func (c ComponentType[T]) newStore() kindStore {
	return &SlotStore[T]{}
}

// Add attaches a component of this kind to the entity. It is a no-op if the
// kind is already present.
func (c ComponentType[T]) Add(e *Entity, value T) error {
	return e.AddComponent(c, value)
}

// GetFromEntity returns a pointer to the entity's component of this kind.
// The pointer is valid until the kind's store next grows.
func (c ComponentType[T]) GetFromEntity(e *Entity) (*T, error) {
	v, err := e.GetComponent(c)
	if err != nil {
		return nil, err
	}
	return v.(*T), nil
}

// Set replaces the stored value for an entity that already has the kind.
func (c ComponentType[T]) Set(e *Entity, value T) error {
	idx, ok := e.components[c.id]
	if !ok {
		return ComponentNotFoundError{Kind: c.name}
	}
	return e.sto.storeFor(c).set(idx, value)
}
