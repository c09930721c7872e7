// Profiling:
// go build ./profile/query
// go tool pprof -http=":8000" ./query cpu.pprof

package main

import (
	"github.com/TheBitDrifter/foreman"
	"github.com/pkg/profile"
)

type comp1 struct{ V, W int64 }
type comp2 struct{ V, W int64 }
type comp3 struct{ V, W int64 }
type comp4 struct{ V, W int64 }

var (
	c1 = foreman.FactoryNewComponent[comp1]()
	c2 = foreman.FactoryNewComponent[comp2]()
	c3 = foreman.FactoryNewComponent[comp3]()
	c4 = foreman.FactoryNewComponent[comp4]()
)

func main() {
	p := profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	defer p.Stop()

	run(50, 10_000, 50_000)
}

func run(rounds, iters, numEntities int) {
	for range rounds {
		world := foreman.Factory.NewWorld()
		store := world.EntityStore()

		for i := 0; i < numEntities; i++ {
			e := store.CreateEntity()
			c1.Add(e, comp1{V: 1})
			c2.Add(e, comp2{V: 2})
			if i%2 == 0 {
				c3.Add(e, comp3{V: 3})
			}
			if i%3 == 0 {
				c4.Add(e, comp4{V: 4})
				e.AddTag("tracked")
			}
		}

		query := world.CreateQuery(foreman.Filter{
			All:         []foreman.Component{c1, c2},
			Any:         []foreman.Component{c3, c4},
			WithoutTags: []string{"ignored"},
		})

		for range iters {
			cursor := foreman.Factory.NewCursor(query)
			for cursor.Next() {
				e := cursor.CurrentEntity()
				a, _ := c1.GetFromEntity(e)
				b, _ := c2.GetFromEntity(e)
				a.V += b.V
				a.W += b.W
			}
		}
	}
}
