package foreman

import "testing"

type damageEvent struct {
	Target EntityID
	Amount int
}

type spawnEvent struct {
	Name string
}

// TestEventBusDispatch tests typed subscription and synchronous dispatch
func TestEventBusDispatch(t *testing.T) {
	bus := newEventBus(8)

	var received []damageEvent
	Subscribe(bus, func(ev damageEvent) {
		received = append(received, ev)
	})
	Subscribe(bus, func(ev damageEvent) {
		received = append(received, ev)
	})
	spawns := 0
	Subscribe(bus, func(spawnEvent) { spawns++ })

	Publish(bus, damageEvent{Target: 1, Amount: 5})

	if len(received) != 2 {
		t.Errorf("damage handlers fired %d times, want 2", len(received))
	}
	for _, ev := range received {
		if ev.Amount != 5 {
			t.Errorf("handler saw %+v, want Amount=5", ev)
		}
	}
	if spawns != 0 {
		t.Errorf("spawn handler fired for a damage event")
	}
}

// TestEventBusNoSubscribers tests that publishing without handlers is safe
func TestEventBusNoSubscribers(t *testing.T) {
	bus := newEventBus(4)
	Publish(bus, spawnEvent{Name: "ignored"})
	if got := len(bus.History()); got != 1 {
		t.Errorf("unhandled event missing from history, got %d entries", got)
	}
}

// TestEventBusHistory tests the bounded ring
func TestEventBusHistory(t *testing.T) {
	bus := newEventBus(3)
	if bus.HistorySize() != 3 {
		t.Fatalf("HistorySize() = %d, want 3", bus.HistorySize())
	}

	for i := 0; i < 5; i++ {
		Publish(bus, damageEvent{Amount: i})
	}

	history := bus.History()
	if len(history) != 3 {
		t.Fatalf("History() holds %d events, want 3", len(history))
	}
	// Oldest first, holding the 3 most recent publishes.
	for i, entry := range history {
		if entry.Name != "damageEvent" {
			t.Errorf("entry %d name = %q, want damageEvent", i, entry.Name)
		}
		if got := entry.Value.(damageEvent).Amount; got != i+2 {
			t.Errorf("entry %d Amount = %d, want %d", i, got, i+2)
		}
	}
}

// TestEventBusEmptyHistory tests the zero cases
func TestEventBusEmptyHistory(t *testing.T) {
	bus := newEventBus(4)
	if got := bus.History(); got != nil {
		t.Errorf("History() on fresh bus = %v, want nil", got)
	}

	// A zero-size ring retains nothing but still dispatches.
	silent := newEventBus(0)
	fired := false
	Subscribe(silent, func(damageEvent) { fired = true })
	Publish(silent, damageEvent{Amount: 1})
	if !fired {
		t.Errorf("zero-history bus dropped dispatch")
	}
	if len(silent.History()) != 0 {
		t.Errorf("zero-history bus retained events")
	}
}

// TestWorldEvents tests the bus wired through the world facade
func TestWorldEvents(t *testing.T) {
	world := Factory.NewWorld(WithEventHistorySize(16))
	bus := world.Events()

	total := 0
	Subscribe(bus, func(ev damageEvent) { total += ev.Amount })
	Publish(bus, damageEvent{Amount: 3})
	Publish(bus, damageEvent{Amount: 4})

	if total != 7 {
		t.Errorf("total = %d, want 7", total)
	}
	if bus.HistorySize() != 16 {
		t.Errorf("HistorySize() = %d, want the configured 16", bus.HistorySize())
	}
}
