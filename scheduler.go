package foreman

import (
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// Scheduler owns the registered systems and groups, resolves execution
// order, and drives the fixed-timestep accumulator. Order is recomputed
// lazily when the system or group population changes; enable/disable flags
// are checked at execution time and never force a reorder.
type Scheduler struct {
	log     zerolog.Logger
	systems *registry[*System]
	groups  *registry[*SystemGroup]

	variable []*System
	fixed    []*System

	orderedVariable []*System
	orderedFixed    []*System
	ordered         bool

	interval    time.Duration
	maxCatchUp  int
	accumulator time.Duration
	clock       time.Duration
}

func newScheduler(log zerolog.Logger, interval time.Duration, maxCatchUp int, capacity int) *Scheduler {
	return &Scheduler{
		log:        log,
		systems:    newRegistry[*System](capacity),
		groups:     newRegistry[*SystemGroup](capacity),
		interval:   interval,
		maxCatchUp: maxCatchUp,
	}
}

// AddSystem registers a system under its unique name.
func (s *Scheduler) AddSystem(sys *System) error {
	if _, exists := s.systems.GetIndex(sys.name); exists {
		return SystemExistsError{Name: sys.name}
	}
	if _, err := s.systems.Register(sys.name, sys); err != nil {
		return err
	}
	if sys.fixed {
		s.fixed = append(s.fixed, sys)
	} else {
		s.variable = append(s.variable, sys)
	}
	s.ordered = false
	return nil
}

// AddGroup registers a system group under its unique name.
func (s *Scheduler) AddGroup(g *SystemGroup) error {
	if _, exists := s.groups.GetIndex(g.name); exists {
		return GroupExistsError{Name: g.name}
	}
	if _, err := s.groups.Register(g.name, g); err != nil {
		return err
	}
	s.ordered = false
	return nil
}

func (s *Scheduler) System(name string) (*System, bool) {
	return s.systems.Get(name)
}

func (s *Scheduler) Group(name string) (*SystemGroup, bool) {
	return s.groups.Get(name)
}

// Clock is the total simulated time fed through update.
func (s *Scheduler) Clock() time.Duration {
	return s.clock
}

// Interval is the fixed-rate step size.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// update advances the fixed-step accumulator, running the fixed batch zero
// or more times (bounded by maxCatchUp, discarding the remainder at the
// bound), then runs the variable batch exactly once. Ordering problems
// surface here, before any system body executes.
func (s *Scheduler) update(w *World, dt time.Duration) error {
	if !s.ordered {
		orderedVariable, err := s.resolveOrder(s.variable)
		if err != nil {
			return err
		}
		orderedFixed, err := s.resolveOrder(s.fixed)
		if err != nil {
			return err
		}
		s.orderedVariable = orderedVariable
		s.orderedFixed = orderedFixed
		s.ordered = true
	}

	s.clock += dt
	s.accumulator += dt
	iterations := 0
	for s.accumulator >= s.interval && iterations < s.maxCatchUp {
		s.runBatch(w, s.orderedFixed, s.interval)
		s.accumulator -= s.interval
		iterations++
	}
	if iterations == s.maxCatchUp && s.accumulator > 0 {
		s.log.Warn().
			Dur("discarded", s.accumulator).
			Int("max_iterations", s.maxCatchUp).
			Msg("fixed-step accumulator exceeded catch-up budget, discarding remainder")
		s.accumulator = 0
	}
	s.runBatch(w, s.orderedVariable, dt)
	return nil
}

func (s *Scheduler) runBatch(w *World, batch []*System, dt time.Duration) {
	for _, sys := range batch {
		if sys.groupRef != nil && !sys.groupRef.enabled {
			continue
		}
		sys.step(w, dt, s.clock)
	}
}

// resolveOrder flattens one batch: systems in enabled-or-not registered
// groups first, groups ordered by descending priority, then ungrouped
// systems. Within each partition ordering is by constraints and priority.
func (s *Scheduler) resolveOrder(batch []*System) ([]*System, error) {
	grouped := make(map[string][]*System)
	var ungrouped []*System
	for _, sys := range batch {
		if sys.group != "" {
			if g, ok := s.groups.Get(sys.group); ok {
				sys.groupRef = g
				grouped[sys.group] = append(grouped[sys.group], sys)
				continue
			}
			s.log.Warn().
				Str("system", sys.name).
				Str("group", sys.group).
				Msg("system references unregistered group, scheduling as ungrouped")
			sys.groupRef = nil
		}
		ungrouped = append(ungrouped, sys)
	}

	var withMembers []*SystemGroup
	for _, g := range s.groups.Items() {
		if len(grouped[g.name]) > 0 {
			withMembers = append(withMembers, g)
		}
	}
	sort.SliceStable(withMembers, func(i, j int) bool {
		return withMembers[i].priority > withMembers[j].priority
	})

	out := make([]*System, 0, len(batch))
	for _, g := range withMembers {
		ordered, err := s.orderSystems(grouped[g.name])
		if err != nil {
			return nil, err
		}
		out = append(out, ordered...)
	}
	ordered, err := s.orderSystems(ungrouped)
	if err != nil {
		return nil, err
	}
	return append(out, ordered...), nil
}

// orderSystems sorts one partition. Pure descending priority when nobody
// declares constraints; otherwise Kahn's algorithm over the constraint
// graph, with descending priority breaking ties among ready systems.
// Constraint names that do not resolve within the partition are logged and
// ignored.
func (s *Scheduler) orderSystems(batch []*System) ([]*System, error) {
	if len(batch) == 0 {
		return nil, nil
	}
	constrained := false
	for _, sys := range batch {
		if len(sys.runAfter) > 0 || len(sys.runBefore) > 0 {
			constrained = true
			break
		}
	}

	ordered := make([]*System, len(batch))
	copy(ordered, batch)
	if !constrained {
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].priority > ordered[j].priority
		})
		return ordered, nil
	}

	index := make(map[string]*System, len(batch))
	position := make(map[string]int, len(batch))
	for i, sys := range batch {
		index[sys.name] = sys
		position[sys.name] = i
	}

	inDegree := make(map[string]int, len(batch))
	dependents := make(map[string][]string)
	for _, sys := range batch {
		inDegree[sys.name] += 0
		for _, dep := range sys.runAfter {
			if _, ok := index[dep]; !ok {
				s.log.Warn().
					Str("system", sys.name).
					Str("run_after", dep).
					Msg("ignoring unresolved ordering constraint")
				continue
			}
			inDegree[sys.name]++
			dependents[dep] = append(dependents[dep], sys.name)
		}
		for _, successor := range sys.runBefore {
			if _, ok := index[successor]; !ok {
				s.log.Warn().
					Str("system", sys.name).
					Str("run_before", successor).
					Msg("ignoring unresolved ordering constraint")
				continue
			}
			inDegree[successor]++
			dependents[sys.name] = append(dependents[sys.name], successor)
		}
	}

	var ready []string
	for _, sys := range batch {
		if inDegree[sys.name] == 0 {
			ready = append(ready, sys.name)
		}
	}

	result := make([]*System, 0, len(batch))
	for len(ready) > 0 {
		sort.SliceStable(ready, func(i, j int) bool {
			a, b := index[ready[i]], index[ready[j]]
			if a.priority != b.priority {
				return a.priority > b.priority
			}
			return position[a.name] < position[b.name]
		})
		name := ready[0]
		ready = ready[1:]
		result = append(result, index[name])
		for _, dependent := range dependents[name] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	if len(result) != len(batch) {
		var unresolved []string
		for name, degree := range inDegree {
			if degree > 0 {
				unresolved = append(unresolved, name)
			}
		}
		sort.Strings(unresolved)
		return nil, CircularDependencyError{Systems: unresolved}
	}
	return result, nil
}
