package foreman

import "time"

// SystemOptions configures a system at creation. The zero value is a
// variable-rate system with priority 0, no callbacks, and no constraints.
type SystemOptions struct {
	// Priority orders systems without dependency constraints; higher runs
	// first.
	Priority int
	// Group names the containing SystemGroup. Groups execute before
	// ungrouped systems, ordered by group priority.
	Group string
	// RunAfter and RunBefore constrain ordering by system name. Names that
	// do not resolve to a registered system in the same batch are logged
	// and ignored.
	RunAfter  []string
	RunBefore []string

	Before PassFunc
	Each   EachFunc
	After  PassFunc

	// Once runs the system a single time and never again.
	Once bool
	// Every skips the system until the interval has elapsed since its last
	// run.
	Every time.Duration
	// RunIf skips this tick when it returns false.
	RunIf Predicate
	// EnableWhen and DisableWhen toggle the enabled flag between ticks.
	EnableWhen  Predicate
	DisableWhen Predicate

	// Disabled creates the system disabled.
	Disabled bool
}

// Profile is a system's execution record.
type Profile struct {
	Calls   uint64
	Last    time.Duration
	Average time.Duration
}

// System is a named, prioritized unit of logic over a query's matching
// entities, with optional ordering constraints, group membership, and
// conditional-execution predicates.
type System struct {
	name      string
	priority  int
	enabled   bool
	fixed     bool
	group     string
	groupRef  *SystemGroup
	runAfter  []string
	runBefore []string
	query     *Query

	before PassFunc
	each   EachFunc
	after  PassFunc

	once        bool
	fired       bool
	every       time.Duration
	lastRun     time.Duration
	hasRun      bool
	runIf       Predicate
	enableWhen  Predicate
	disableWhen Predicate

	profile Profile
}

func newSystem(name string, query *Query, opts SystemOptions, fixed bool) *System {
	return &System{
		name:        name,
		priority:    opts.Priority,
		enabled:     !opts.Disabled,
		fixed:       fixed,
		group:       opts.Group,
		runAfter:    opts.RunAfter,
		runBefore:   opts.RunBefore,
		query:       query,
		before:      opts.Before,
		each:        opts.Each,
		after:       opts.After,
		once:        opts.Once,
		every:       opts.Every,
		runIf:       opts.RunIf,
		enableWhen:  opts.EnableWhen,
		disableWhen: opts.DisableWhen,
	}
}

func (s *System) Name() string {
	return s.name
}

func (s *System) Priority() int {
	return s.priority
}

func (s *System) Enabled() bool {
	return s.enabled
}

// SetEnabled toggles the system between ticks; a running step is never
// interrupted.
func (s *System) SetEnabled(enabled bool) {
	s.enabled = enabled
}

func (s *System) Group() string {
	return s.group
}

func (s *System) IsFixed() bool {
	return s.fixed
}

func (s *System) Query() *Query {
	return s.query
}

func (s *System) Profile() Profile {
	return s.profile
}

// step runs one tick: conditional predicates first, then the pre-pass, the
// per-entity pass over a snapshot of the matching set, the post-pass, and
// the profile update. clock is the scheduler's total elapsed time, used for
// interval conditions.
func (s *System) step(w *World, dt time.Duration, clock time.Duration) {
	if s.enableWhen != nil && !s.enabled && s.enableWhen(w) {
		s.enabled = true
	}
	if s.disableWhen != nil && s.enabled && s.disableWhen(w) {
		s.enabled = false
	}
	if !s.enabled {
		return
	}
	if s.once && s.fired {
		return
	}
	if s.every > 0 && s.hasRun && clock-s.lastRun < s.every {
		return
	}
	if s.runIf != nil && !s.runIf(w) {
		return
	}

	start := time.Now()
	if s.before != nil {
		s.before(w, dt)
	}
	if s.each != nil {
		// The snapshot stays intact when callbacks mutate entities; the
		// query rebuilds its view into a fresh slice.
		view := s.query.Entities()
		kinds := s.query.filter.All
		for _, e := range view {
			components := make([]any, len(kinds))
			for i, c := range kinds {
				components[i], _ = e.componentPtr(c)
			}
			s.each(w, e, dt, components)
		}
	}
	if s.after != nil {
		s.after(w, dt)
	}

	s.fired = true
	s.hasRun = true
	s.lastRun = clock
	elapsed := time.Since(start)
	s.profile.Calls++
	s.profile.Last = elapsed
	s.profile.Average += (elapsed - s.profile.Average) / time.Duration(s.profile.Calls)
}

// SystemGroup bundles systems for coarse ordering and bulk enable/disable.
// Membership does not alter dependency semantics within the group.
type SystemGroup struct {
	name     string
	priority int
	enabled  bool
}

func (g *SystemGroup) Name() string {
	return g.name
}

func (g *SystemGroup) Priority() int {
	return g.priority
}

func (g *SystemGroup) Enabled() bool {
	return g.enabled
}

func (g *SystemGroup) SetEnabled(enabled bool) {
	g.enabled = enabled
}
