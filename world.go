package foreman

import (
	"time"

	"github.com/rs/zerolog"
)

// World is the facade over the entity store, the query engine, the
// scheduler, and the event bus. All access is single-threaded and
// synchronous: every system callback runs to completion before the next
// begins, and ordering between systems comes entirely from the scheduler.
// Panics from system bodies propagate to the caller of Update.
type World struct {
	log    zerolog.Logger
	store  *EntityStore
	sched  *Scheduler
	events *EventBus
}

// EntityStore exposes the underlying store.
func (w *World) EntityStore() *EntityStore {
	return w.store
}

// Events exposes the world's event bus.
func (w *World) Events() *EventBus {
	return w.events
}

// CreateEntity allocates an entity, optionally named.
func (w *World) CreateEntity(name ...string) *Entity {
	return w.store.CreateEntity(name...)
}

func (w *World) Entity(id EntityID) (*Entity, bool) {
	return w.store.Entity(id)
}

func (w *World) EntityByName(name string) (*Entity, bool) {
	return w.store.EntityByName(name)
}

func (w *World) EntitiesByTag(tag string) []*Entity {
	return w.store.EntitiesByTag(tag)
}

// FindEntity returns the first live entity satisfying the predicate.
func (w *World) FindEntity(pred func(*Entity) bool) (*Entity, bool) {
	for e := range w.store.Entities() {
		if pred(e) {
			return e, true
		}
	}
	return nil, false
}

// CreateQuery builds an incrementally maintained query over the world's
// entities.
func (w *World) CreateQuery(f Filter) *Query {
	return w.store.CreateQuery(f)
}

// CreateSystem registers a variable-rate system that runs exactly once per
// Update.
func (w *World) CreateSystem(name string, f Filter, opts SystemOptions) (*System, error) {
	return w.createSystem(name, f, opts, false)
}

// CreateFixedSystem registers a fixed-rate system driven by the
// fixed-timestep accumulator.
func (w *World) CreateFixedSystem(name string, f Filter, opts SystemOptions) (*System, error) {
	return w.createSystem(name, f, opts, true)
}

func (w *World) createSystem(name string, f Filter, opts SystemOptions, fixed bool) (*System, error) {
	// Register first so a failed registration does not leave an orphaned
	// query subscribed to the store.
	sys := newSystem(name, nil, opts, fixed)
	if err := w.sched.AddSystem(sys); err != nil {
		return nil, err
	}
	sys.query = w.store.CreateQuery(f)
	return sys, nil
}

func (w *World) System(name string) (*System, bool) {
	return w.sched.System(name)
}

// CreateSystemGroup registers a named group; systems opt in by name.
func (w *World) CreateSystemGroup(name string, priority int) (*SystemGroup, error) {
	g := &SystemGroup{name: name, priority: priority, enabled: true}
	if err := w.sched.AddGroup(g); err != nil {
		return nil, err
	}
	return g, nil
}

func (w *World) SystemGroup(name string) (*SystemGroup, bool) {
	return w.sched.Group(name)
}

// EnableSystemGroup enables the named group, reporting whether it exists.
func (w *World) EnableSystemGroup(name string) bool {
	return w.setGroupEnabled(name, true)
}

// DisableSystemGroup disables the named group between ticks.
func (w *World) DisableSystemGroup(name string) bool {
	return w.setGroupEnabled(name, false)
}

func (w *World) setGroupEnabled(name string, enabled bool) bool {
	g, ok := w.sched.Group(name)
	if !ok {
		w.log.Warn().Str("group", name).Msg("toggling unregistered system group")
		return false
	}
	g.SetEnabled(enabled)
	return true
}

// RegisterComponentValidator installs the validator consulted by
// AddComponent for the kind.
func (w *World) RegisterComponentValidator(c Component, v Validator) {
	w.store.RegisterValidator(c, v)
}

// Update advances the simulation by dt: the fixed-rate batch runs zero or
// more accumulator steps, the variable-rate batch runs once, and the
// cleanup pass releases entities flagged during the tick. A cycle in the
// ordering constraints is returned before any system body executes.
func (w *World) Update(dt time.Duration) error {
	if err := w.sched.update(w, dt); err != nil {
		return err
	}
	w.store.Cleanup()
	return nil
}

// Clock is the total simulated time fed through Update.
func (w *World) Clock() time.Duration {
	return w.sched.Clock()
}

// FixedInterval is the fixed-rate step size.
func (w *World) FixedInterval() time.Duration {
	return w.sched.Interval()
}

// Logger exposes the world's logger for collaborators.
func (w *World) Logger() zerolog.Logger {
	return w.log
}
