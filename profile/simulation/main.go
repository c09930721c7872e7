// Profiling:
// go build ./profile/simulation
// go tool pprof -http=":8000" ./simulation cpu.pprof

package main

import (
	"time"

	"github.com/TheBitDrifter/foreman"
	"github.com/pkg/profile"
)

type Position struct {
	X float64
	Y float64
}

type Velocity struct {
	X float64
	Y float64
}

type Lifetime struct {
	Remaining int
}

var (
	position = foreman.FactoryNewComponent[Position]()
	velocity = foreman.FactoryNewComponent[Velocity]()
	lifetime = foreman.FactoryNewComponent[Lifetime]()
)

func main() {
	p := profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	defer p.Stop()

	run(200, 10_000, 2_000)
}

func run(rounds, updates, numEntities int) {
	for range rounds {
		world := foreman.Factory.NewWorld()

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
		world.CreateSystem("expiry",
			foreman.Filter{All: []foreman.Component{lifetime}},
			foreman.SystemOptions{
				Each: func(w *foreman.World, e *foreman.Entity, dt time.Duration, components []any) {
					life := components[0].(*Lifetime)
					life.Remaining--
					if life.Remaining <= 0 {
						e.QueueFree()
					}
				},
			})

		for i := 0; i < numEntities; i++ {
			e := world.CreateEntity()
			position.Add(e, Position{})
			velocity.Add(e, Velocity{X: 1, Y: 2})
			lifetime.Add(e, Lifetime{Remaining: 60 + i%600})
		}

		for range updates {
			if err := world.Update(time.Second / 60); err != nil {
				panic(err)
			}
			// Keep the population churning so the pool and free lists work.
			if world.EntityStore().Count() < numEntities {
				e := world.CreateEntity()
				position.Add(e, Position{})
				velocity.Add(e, Velocity{X: -1, Y: 1})
				lifetime.Add(e, Lifetime{Remaining: 120})
			}
		}
	}
}
