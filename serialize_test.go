package foreman

import (
	"encoding/json"
	"errors"
	"testing"
)

func testKindRegistry() *KindRegistry {
	reg := NewKindRegistry()
	RegisterKind(reg, positionComp)
	RegisterKind(reg, velocityComp)
	RegisterKind(reg, healthComp)
	return reg
}

// TestSerializeEntity tests snapshotting components, tags, and children
func TestSerializeEntity(t *testing.T) {
	world := newTestWorld()
	parent := world.CreateEntity("boss")
	positionComp.Add(parent, Position{X: 1, Y: 2})
	healthComp.Add(parent, Health{Current: 50, Max: 100})
	parent.AddTag("enemy")

	child := world.CreateEntity("minion")
	positionComp.Add(child, Position{X: 3})
	parent.AddChild(child)

	rec := parent.Serialize()
	if rec.Name != "boss" {
		t.Errorf("Name = %q, want boss", rec.Name)
	}
	if len(rec.Tags) != 1 || rec.Tags[0] != "enemy" {
		t.Errorf("Tags = %v, want [enemy]", rec.Tags)
	}
	if got := rec.Components["Position"].(Position); got.X != 1 || got.Y != 2 {
		t.Errorf("Position = %v, want {1 2}", got)
	}
	if got := rec.Components["Health"].(Health); got.Current != 50 {
		t.Errorf("Health = %v, want Current=50", got)
	}
	if len(rec.Children) != 1 || rec.Children[0].Name != "minion" {
		t.Fatalf("Children = %v, want one minion record", rec.Children)
	}

	// The record holds copies, not aliases.
	pos, _ := positionComp.GetFromEntity(parent)
	pos.X = 99
	if rec.Components["Position"].(Position).X != 1 {
		t.Errorf("record aliases live component state")
	}
}

// TestRestoreEntity tests rebuilding from an in-memory record
func TestRestoreEntity(t *testing.T) {
	source := newTestWorld()
	e := source.CreateEntity("hero")
	positionComp.Add(e, Position{X: 4, Y: 5})
	e.AddTag("player")
	rec := e.Serialize()

	target := newTestWorld()
	restored, err := testKindRegistry().Restore(target, rec)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if restored.Name() != "hero" || !restored.HasTag("player") {
		t.Errorf("identity not restored")
	}
	pos, err := positionComp.GetFromEntity(restored)
	if err != nil {
		t.Fatal(err)
	}
	if pos.X != 4 || pos.Y != 5 {
		t.Errorf("Position = %v, want {4 5}", *pos)
	}
}

// TestRestoreAfterJSONRoundTrip tests records rebuilt from generic decoded
// maps
func TestRestoreAfterJSONRoundTrip(t *testing.T) {
	source := newTestWorld()
	parent := source.CreateEntity("squad")
	positionComp.Add(parent, Position{X: 1})
	child := source.CreateEntity("grunt")
	healthComp.Add(child, Health{Current: 7, Max: 9})
	parent.AddChild(child)

	encoded, err := json.Marshal(parent.Serialize())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var rec EntityRecord
	if err := json.Unmarshal(encoded, &rec); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	target := newTestWorld()
	restored, err := testKindRegistry().Restore(target, &rec)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	pos, err := positionComp.GetFromEntity(restored)
	if err != nil {
		t.Fatal(err)
	}
	if pos.X != 1 {
		t.Errorf("Position.X = %v, want 1", pos.X)
	}
	children := restored.Children()
	if len(children) != 1 {
		t.Fatalf("restored %d children, want 1", len(children))
	}
	h, err := healthComp.GetFromEntity(children[0])
	if err != nil {
		t.Fatal(err)
	}
	if h.Current != 7 || h.Max != 9 {
		t.Errorf("Health = %v, want {7 9}", *h)
	}
}

// TestRestoreOrdersValidatorDependencies tests that restore retries kinds
// blocked on same-entity dependencies
func TestRestoreOrdersValidatorDependencies(t *testing.T) {
	source := newTestWorld()
	e := source.CreateEntity()
	healthComp.Add(e, Health{Current: 1, Max: 1})
	armorComp.Add(e, Armor{Rating: 2})
	rec := e.Serialize()

	// "Armor" sorts before "Health" yet needs it already attached.
	target := newTestWorld()
	target.RegisterComponentValidator(armorComp, Validator{
		Dependencies: []Component{healthComp},
	})
	reg := testKindRegistry()
	RegisterKind(reg, armorComp)
	restored, err := reg.Restore(target, rec)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if !restored.HasComponent(armorComp) || !restored.HasComponent(healthComp) {
		t.Errorf("dependent kinds not restored")
	}
}

// TestRestoreFailureLeavesNoResidue tests that a failed restore queues the
// partial tree for cleanup instead of leaking it into the world
func TestRestoreFailureLeavesNoResidue(t *testing.T) {
	t.Run("Rejected component", func(t *testing.T) {
		source := newTestWorld()
		e := source.CreateEntity("broken")
		positionComp.Add(e, Position{X: 1})
		healthComp.Add(e, Health{Current: 1, Max: 1})
		rec := e.Serialize()

		target := newTestWorld()
		target.RegisterComponentValidator(healthComp, Validator{
			Validate: func(any) error { return errors.New("always rejected") },
		})
		before := target.EntityStore().Count()
		if _, err := testKindRegistry().Restore(target, rec); err == nil {
			t.Fatalf("Restore succeeded despite rejecting validator")
		}
		target.EntityStore().Cleanup()
		if got := target.EntityStore().Count(); got != before {
			t.Errorf("failed restore leaked %d entities", got-before)
		}
		if _, ok := target.EntityByName("broken"); ok {
			t.Errorf("failed restore left the name registered")
		}
	})

	t.Run("Failed child", func(t *testing.T) {
		source := newTestWorld()
		parent := source.CreateEntity("squad")
		positionComp.Add(parent, Position{})
		child := source.CreateEntity("grunt")
		armorComp.Add(child, Armor{Rating: 1})
		parent.AddChild(child)
		rec := parent.Serialize()

		target := newTestWorld()
		target.RegisterComponentValidator(armorComp, Validator{
			Validate: func(any) error { return errors.New("always rejected") },
		})
		reg := testKindRegistry()
		RegisterKind(reg, armorComp)
		before := target.EntityStore().Count()
		if _, err := reg.Restore(target, rec); err == nil {
			t.Fatalf("Restore succeeded despite rejecting validator")
		}
		target.EntityStore().Cleanup()
		if got := target.EntityStore().Count(); got != before {
			t.Errorf("failed child restore leaked %d entities", got-before)
		}
		if _, ok := target.EntityByName("squad"); ok {
			t.Errorf("failed child restore left the parent live")
		}
	})
}

// TestRestoreUnknownKind tests the failure for unregistered kind names
func TestRestoreUnknownKind(t *testing.T) {
	target := newTestWorld()
	reg := NewKindRegistry()
	_, err := reg.Restore(target, &EntityRecord{
		Components: map[string]any{"Mystery": map[string]any{}},
	})
	if _, ok := err.(UnknownKindError); !ok {
		t.Errorf("error = %T, want UnknownKindError", err)
	}
}
