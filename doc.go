/*
Package foreman is a runtime for simulations assembled from entities,
components, and scheduled systems.

Entities hold slot indices into per-kind component stores rather than
owning component memory. Queries are declarative filters over component
and tag presence, maintained incrementally as entities mutate. Systems
wrap a query with prioritized, dependency-ordered callbacks, driven by a
fixed-timestep scheduler with a bounded catch-up loop.

Core Concepts:

  - Entity: an identity plus component indices, tags, and hierarchy links.
  - Component: a plain data record attached to at most one slot per kind.
  - Query: an incrementally maintained filter over entities.
  - System: a scheduled unit of logic over a query's matching entities.

Basic Usage:

	world := foreman.Factory.NewWorld()

	// Define components
	position := foreman.FactoryNewComponent[Position]()
	velocity := foreman.FactoryNewComponent[Velocity]()

	// Create an entity
	player := world.CreateEntity("player")
	position.Add(player, Position{X: 0, Y: 0})
	velocity.Add(player, Velocity{X: 1, Y: 2})

	// Register a fixed-rate system over both kinds
	world.CreateFixedSystem("movement",
		foreman.Filter{All: []foreman.Component{position, velocity}},
		foreman.SystemOptions{
			Each: func(w *foreman.World, e *foreman.Entity, dt time.Duration, components []any) {
				pos := components[0].(*Position)
				vel := components[1].(*Velocity)
				pos.X += vel.X * dt.Seconds()
				pos.Y += vel.Y * dt.Seconds()
			},
		})

	// Drive the simulation
	world.Update(time.Second / 60)

Execution is single-threaded and cooperative: no locking guards the
stores, and safety comes from every callback running to completion before
the next. Entity destruction is deferred to a cleanup pass at the end of
each update, so iteration over matching sets is never invalidated
mid-step.
*/
package foreman
