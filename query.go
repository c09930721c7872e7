package foreman

import (
	"sort"

	"github.com/TheBitDrifter/mask"
)

// Filter is the declarative entity filter evaluated by a Query. Component
// axes are evaluated as kind masks, tag axes against the entity's tag set.
// Empty All and Any lists match everything on their axis.
type Filter struct {
	All         []Component
	Any         []Component
	None        []Component
	Tags        []string
	WithoutTags []string
}

// Query pairs an immutable Filter with an incrementally maintained set of
// matching entities. Every structural mutation on a live entity is routed
// through Match, so the set stays exact without periodic rescans. A
// flattened view is cached and rebuilt only when the set has changed.
type Query struct {
	sto       *EntityStore
	filter    Filter
	all       mask.Mask
	anyOf     mask.Mask
	none      mask.Mask
	hasAny    bool
	matched   map[EntityID]*Entity
	changes   uint64
	built     uint64
	view      []*Entity
	viewValid bool
}

func newQuery(sto *EntityStore, f Filter) *Query {
	q := &Query{
		sto:     sto,
		filter:  f,
		hasAny:  len(f.Any) > 0,
		matched: make(map[EntityID]*Entity),
	}
	for _, c := range f.All {
		q.all.Mark(uint32(c.TypeID()))
	}
	for _, c := range f.Any {
		q.anyOf.Mark(uint32(c.TypeID()))
	}
	for _, c := range f.None {
		q.none.Mark(uint32(c.TypeID()))
	}
	return q
}

func (q *Query) Filter() Filter {
	return q.filter
}

// Match re-evaluates the filter against the entity's current state, adds or
// removes it from the matching set accordingly, and returns the result. It
// is idempotent and safe to call repeatedly.
func (q *Query) Match(e *Entity) bool {
	ok := q.test(e)
	_, in := q.matched[e.id]
	if ok && !in {
		q.matched[e.id] = e
		q.changes++
	}
	if !ok && in {
		delete(q.matched, e.id)
		q.changes++
	}
	return ok
}

func (q *Query) test(e *Entity) bool {
	if e == nil || e.pendingFree {
		return false
	}
	if !e.kinds.ContainsAll(q.all) {
		return false
	}
	if q.hasAny && !e.kinds.ContainsAny(q.anyOf) {
		return false
	}
	if !e.kinds.ContainsNone(q.none) {
		return false
	}
	for _, tag := range q.filter.Tags {
		if !e.HasTag(tag) {
			return false
		}
	}
	for _, tag := range q.filter.WithoutTags {
		if e.HasTag(tag) {
			return false
		}
	}
	return true
}

// Contains reports whether the entity is currently in the matching set.
func (q *Query) Contains(e *Entity) bool {
	_, ok := q.matched[e.id]
	return ok
}

// Size reports the number of matching entities.
func (q *Query) Size() int {
	return len(q.matched)
}

// Version increments whenever the matching set changes. An unchanged
// version guarantees Entities returns the identical cached slice.
func (q *Query) Version() uint64 {
	return q.changes
}

// Entities returns the matching entities ordered by id. The slice is cached
// and rebuilt only when the matching set has changed since the last call;
// callers must not modify it.
func (q *Query) Entities() []*Entity {
	if !q.viewValid || q.built != q.changes {
		q.view = make([]*Entity, 0, len(q.matched))
		for _, e := range q.matched {
			q.view = append(q.view, e)
		}
		sort.Slice(q.view, func(i, j int) bool { return q.view[i].id < q.view[j].id })
		q.built = q.changes
		q.viewValid = true
	}
	return q.view
}

// drop removes a released entity without re-testing the filter.
func (q *Query) drop(e *Entity) {
	if _, ok := q.matched[e.id]; ok {
		delete(q.matched, e.id)
		q.changes++
	}
}
