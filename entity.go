package foreman

import (
	"sort"

	"github.com/TheBitDrifter/mask"
)

// EntityID is the opaque identity of an entity. Ids are issued by the
// owning EntityStore and never reused, even when the Entity object itself
// is recycled through the pool.
type EntityID uint64

// Entity is an identity plus indices into per-kind component stores, a tag
// set, and hierarchy links. Entities never own component memory; they hold
// slot indices. Structural mutations bump the change version and are routed
// to the store's queries and secondary indices.
type Entity struct {
	sto         *EntityStore
	id          EntityID
	seq         int
	name        string
	components  map[TypeID]int
	kinds       mask.Mask
	tags        map[string]struct{}
	parent      *Entity
	children    map[EntityID]*Entity
	dirty       bool
	pendingFree bool
	version     uint64
}

func (e *Entity) ID() EntityID {
	return e.id
}

// Seq is the secondary numeric id: the entity's current position in the
// store's dense index. It changes when other entities are released.
func (e *Entity) Seq() int {
	return e.seq
}

func (e *Entity) Name() string {
	return e.name
}

// Version increments on every structural mutation (component add/remove,
// tag add/remove, reparenting).
func (e *Entity) Version() uint64 {
	return e.version
}

func (e *Entity) Dirty() bool {
	return e.dirty
}

func (e *Entity) ClearDirty() {
	e.dirty = false
}

// PendingFree reports whether the entity is flagged for the next cleanup
// pass.
func (e *Entity) PendingFree() bool {
	return e.pendingFree
}

// AddComponent attaches a component of the given kind. Adding a kind that
// is already present is a no-op and does not reset the stored value. When a
// validator is registered for the kind, its dependency, conflict, and value
// checks run first; any failure aborts the add before the store is touched.
func (e *Entity) AddComponent(c Component, value any) error {
	if _, ok := e.components[c.TypeID()]; ok {
		return nil
	}
	if v, ok := e.sto.validators[c.TypeID()]; ok {
		for _, dep := range v.Dependencies {
			if !e.HasComponent(dep) {
				return MissingDependencyError{Kind: c.KindName(), Dependency: dep.KindName()}
			}
		}
		for _, conflict := range v.Conflicts {
			if e.HasComponent(conflict) {
				return ConflictError{Kind: c.KindName(), Conflict: conflict.KindName()}
			}
		}
		if v.Validate != nil {
			if err := v.Validate(value); err != nil {
				return ValidationError{Kind: c.KindName(), Err: err}
			}
		}
	}
	index, err := e.sto.storeFor(c).add(value)
	if err != nil {
		return err
	}
	e.components[c.TypeID()] = index
	e.kinds.Mark(uint32(c.TypeID()))
	e.touch()
	return nil
}

// RemoveComponent detaches a kind and frees its slot. Removing an absent
// kind is a no-op.
func (e *Entity) RemoveComponent(c Component) {
	index, ok := e.components[c.TypeID()]
	if !ok {
		return
	}
	if st, found := e.sto.stores[c.TypeID()]; found {
		st.remove(index)
	}
	delete(e.components, c.TypeID())
	e.kinds.Unmark(uint32(c.TypeID()))
	e.touch()
}

func (e *Entity) HasComponent(c Component) bool {
	_, ok := e.components[c.TypeID()]
	return ok
}

// GetComponent returns a pointer to the entity's component of the given
// kind. Asking for a kind the entity does not claim is an error, distinct
// from a vacated slot.
func (e *Entity) GetComponent(c Component) (any, error) {
	v, ok := e.componentPtr(c)
	if !ok {
		return nil, ComponentNotFoundError{Kind: c.KindName()}
	}
	return v, nil
}

func (e *Entity) componentPtr(c Component) (any, bool) {
	index, ok := e.components[c.TypeID()]
	if !ok {
		return nil, false
	}
	st, ok := e.sto.stores[c.TypeID()]
	if !ok {
		return nil, false
	}
	return st.get(index)
}

// Kinds returns the entity's component-kind mask.
func (e *Entity) Kinds() mask.Mask {
	return e.kinds
}

func (e *Entity) AddTag(tag string) {
	if _, ok := e.tags[tag]; ok {
		return
	}
	e.tags[tag] = struct{}{}
	e.sto.tagAdded(e, tag)
	e.touch()
}

func (e *Entity) RemoveTag(tag string) {
	if _, ok := e.tags[tag]; !ok {
		return
	}
	delete(e.tags, tag)
	e.sto.tagRemoved(e, tag)
	e.touch()
}

func (e *Entity) HasTag(tag string) bool {
	_, ok := e.tags[tag]
	return ok
}

// Tags returns the tag set sorted for deterministic iteration.
func (e *Entity) Tags() []string {
	if len(e.tags) == 0 {
		return nil
	}
	tags := make([]string, 0, len(e.tags))
	for tag := range e.tags {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// SetParent detaches the entity from its current parent (if any) and
// attaches it to p. Passing the current parent is a no-op; passing nil
// detaches. A parent that is the entity itself or one of its descendants
// is rejected, keeping the hierarchy acyclic.
func (e *Entity) SetParent(p *Entity) error {
	if p == e.parent {
		return nil
	}
	if p != nil {
		for ancestor := p; ancestor != nil; ancestor = ancestor.parent {
			if ancestor == e {
				return HierarchyCycleError{Child: e.id, Parent: p.id}
			}
		}
	}
	if e.parent != nil {
		delete(e.parent.children, e.id)
		e.parent.touch()
	}
	e.parent = p
	if p != nil {
		p.children[e.id] = e
		p.touch()
	}
	e.touch()
	return nil
}

func (e *Entity) Parent() *Entity {
	return e.parent
}

func (e *Entity) AddChild(child *Entity) error {
	return child.SetParent(e)
}

// RemoveChild detaches child if it is currently parented to e.
func (e *Entity) RemoveChild(child *Entity) {
	if child.parent == e {
		_ = child.SetParent(nil)
	}
}

// Children returns the child set sorted by id.
func (e *Entity) Children() []*Entity {
	if len(e.children) == 0 {
		return nil
	}
	children := make([]*Entity, 0, len(e.children))
	for _, child := range e.children {
		children = append(children, child)
	}
	sort.Slice(children, func(i, j int) bool { return children[i].id < children[j].id })
	return children
}

// QueueFree flags the entity for destruction. The entity stays live until
// the store's next cleanup pass, so iteration over matching sets is never
// invalidated mid-step. Deletion propagates to children at cleanup time.
func (e *Entity) QueueFree() {
	if e.pendingFree {
		return
	}
	e.pendingFree = true
	e.sto.queueFree(e)
}

func (e *Entity) touch() {
	e.version++
	e.dirty = true
	e.sto.entityChanged(e)
}
