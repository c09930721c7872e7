package foreman

import (
	"iter"
	"sort"

	"github.com/TheBitDrifter/mask"
	iter_util "github.com/TheBitDrifter/util/iter"
	"github.com/rs/zerolog"
)

// EntityStore allocates and recycles entities, owns the per-kind component
// stores, and maintains the name/id/tag secondary indices incrementally.
// Destruction is deferred: QueueFree only flags, and Cleanup releases
// flagged entities at the end of a tick.
type EntityStore struct {
	log        zerolog.Logger
	nextID     EntityID
	byID       map[EntityID]*Entity
	byName     map[string]*Entity
	byTag      map[string]map[EntityID]*Entity
	dense      []*Entity
	stores     map[TypeID]kindStore
	kinds      map[TypeID]Component
	validators map[TypeID]Validator
	queries    []*Query
	pool       []*Entity
	pending    []*Entity
	pendingSet map[EntityID]struct{}
}

func newEntityStore(log zerolog.Logger) *EntityStore {
	return &EntityStore{
		log:        log,
		nextID:     1,
		byID:       make(map[EntityID]*Entity),
		byName:     make(map[string]*Entity),
		byTag:      make(map[string]map[EntityID]*Entity),
		stores:     make(map[TypeID]kindStore),
		kinds:      make(map[TypeID]Component),
		validators: make(map[TypeID]Validator),
		pendingSet: make(map[EntityID]struct{}),
	}
}

// CreateEntity returns a pooled or freshly allocated entity with a new id.
// An optional name registers the entity in the name index.
func (s *EntityStore) CreateEntity(name ...string) *Entity {
	var e *Entity
	if n := len(s.pool); n > 0 {
		e = s.pool[n-1]
		s.pool = s.pool[:n-1]
	} else {
		e = &Entity{
			components: make(map[TypeID]int),
			tags:       make(map[string]struct{}),
			children:   make(map[EntityID]*Entity),
		}
	}
	e.sto = s
	e.id = s.nextID
	s.nextID++
	e.seq = len(s.dense)
	if len(name) > 0 && name[0] != "" {
		e.name = name[0]
		s.byName[e.name] = e
	}
	s.byID[e.id] = e
	s.dense = append(s.dense, e)
	s.entityChanged(e)
	return e
}

// Entity looks up a live entity by id.
func (s *EntityStore) Entity(id EntityID) (*Entity, bool) {
	e, ok := s.byID[id]
	return e, ok
}

// EntityByName looks up a live entity by its registered name.
func (s *EntityStore) EntityByName(name string) (*Entity, bool) {
	e, ok := s.byName[name]
	return e, ok
}

// EntitiesByTag returns the entities carrying tag, sorted by id.
func (s *EntityStore) EntitiesByTag(tag string) []*Entity {
	entities := iter_util.Collect(s.tagged(tag))
	sort.Slice(entities, func(i, j int) bool { return entities[i].id < entities[j].id })
	return entities
}

func (s *EntityStore) tagged(tag string) iter.Seq[*Entity] {
	return func(yield func(*Entity) bool) {
		for _, e := range s.byTag[tag] {
			if !yield(e) {
				return
			}
		}
	}
}

// Entities iterates the live entities in dense-index order.
func (s *EntityStore) Entities() iter.Seq[*Entity] {
	return func(yield func(*Entity) bool) {
		for _, e := range s.dense {
			if !yield(e) {
				return
			}
		}
	}
}

// Count reports the number of live entities, including ones flagged for
// deletion but not yet released.
func (s *EntityStore) Count() int {
	return len(s.dense)
}

// RegisterValidator installs the validator consulted by AddComponent for
// the given kind. Registering again replaces the previous validator.
func (s *EntityStore) RegisterValidator(c Component, v Validator) {
	s.validators[c.TypeID()] = v
}

// CreateQuery builds a query, seeds its matching set from the current live
// entities, and subscribes it to future mutation events.
func (s *EntityStore) CreateQuery(f Filter) *Query {
	q := newQuery(s, f)
	s.queries = append(s.queries, q)
	for _, e := range s.dense {
		q.Match(e)
	}
	return q
}

// Store exposes the type-erased store for a kind, creating it lazily.
func (s *EntityStore) storeFor(c Component) kindStore {
	st, ok := s.stores[c.TypeID()]
	if !ok {
		st = c.newStore()
		s.stores[c.TypeID()] = st
		s.kinds[c.TypeID()] = c
	}
	return st
}

// Cleanup releases every entity flagged since the last pass: deletion is
// propagated to children, components are stripped, indices and query
// matching sets are updated, and the Entity objects return to the pool.
func (s *EntityStore) Cleanup() {
	if len(s.pending) == 0 {
		return
	}
	// Children flagged here append to the queue being walked.
	for i := 0; i < len(s.pending); i++ {
		for _, child := range s.pending[i].Children() {
			child.QueueFree()
		}
	}
	released := len(s.pending)
	for _, e := range s.pending {
		s.release(e)
	}
	s.pending = s.pending[:0]
	clear(s.pendingSet)
	s.log.Debug().Int("released", released).Msg("entity cleanup pass")
}

func (s *EntityStore) release(e *Entity) {
	for tid, index := range e.components {
		if st, ok := s.stores[tid]; ok {
			st.remove(index)
		}
	}
	clear(e.components)
	e.kinds = mask.Mask{}

	for tag := range e.tags {
		s.tagRemoved(e, tag)
	}
	clear(e.tags)

	if e.parent != nil {
		delete(e.parent.children, e.id)
		e.parent = nil
	}
	for _, child := range e.children {
		if child.parent == e {
			child.parent = nil
		}
	}
	clear(e.children)

	for _, q := range s.queries {
		q.drop(e)
	}

	delete(s.byID, e.id)
	if e.name != "" {
		delete(s.byName, e.name)
		e.name = ""
	}

	last := len(s.dense) - 1
	s.dense[e.seq] = s.dense[last]
	s.dense[e.seq].seq = e.seq
	s.dense = s.dense[:last]

	e.sto = nil
	e.id = 0
	e.seq = -1
	e.version = 0
	e.dirty = false
	e.pendingFree = false
	s.pool = append(s.pool, e)
}

func (s *EntityStore) queueFree(e *Entity) {
	if _, ok := s.pendingSet[e.id]; ok {
		return
	}
	s.pendingSet[e.id] = struct{}{}
	s.pending = append(s.pending, e)
	// Drop the entity from matching sets right away; release happens later.
	s.entityChanged(e)
}

func (s *EntityStore) entityChanged(e *Entity) {
	for _, q := range s.queries {
		q.Match(e)
	}
}

func (s *EntityStore) tagAdded(e *Entity, tag string) {
	m := s.byTag[tag]
	if m == nil {
		m = make(map[EntityID]*Entity)
		s.byTag[tag] = m
	}
	m[e.id] = e
}

func (s *EntityStore) tagRemoved(e *Entity, tag string) {
	if m, ok := s.byTag[tag]; ok {
		delete(m, e.id)
		if len(m) == 0 {
			delete(s.byTag, tag)
		}
	}
}
