package foreman

import "iter"

// Cursor iterates a query's matching entities over a snapshot taken at the
// first advance. Mutations made while iterating do not disturb the
// snapshot; they surface on the next pass after Reset.
type Cursor struct {
	query       *Query
	view        []*Entity
	index       int
	initialized bool
}

func newCursor(query *Query) *Cursor {
	return &Cursor{query: query, index: -1}
}

// Next advances to the next matching entity, resetting and returning false
// when the snapshot is exhausted.
func (c *Cursor) Next() bool {
	if !c.initialized {
		c.initialize()
	}
	if c.index+1 < len(c.view) {
		c.index++
		return true
	}
	c.Reset()
	return false
}

// CurrentEntity returns the entity at the cursor position.
func (c *Cursor) CurrentEntity() *Entity {
	return c.view[c.index]
}

// Entities yields index/entity pairs over a fresh snapshot.
func (c *Cursor) Entities() iter.Seq2[int, *Entity] {
	return func(yield func(int, *Entity) bool) {
		c.initialize()
		for c.index+1 < len(c.view) {
			c.index++
			if !yield(c.index, c.view[c.index]) {
				c.Reset()
				return
			}
		}
		c.Reset()
	}
}

func (c *Cursor) initialize() {
	if c.initialized {
		return
	}
	c.view = c.query.Entities()
	c.index = -1
	c.initialized = true
}

func (c *Cursor) Reset() {
	c.view = nil
	c.index = -1
	c.initialized = false
}

// TotalMatched reports the size of the current snapshot, taking one if the
// cursor has not started iterating.
func (c *Cursor) TotalMatched() int {
	if !c.initialized {
		c.initialize()
	}
	return len(c.view)
}
