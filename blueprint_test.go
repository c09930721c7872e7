package foreman

import (
	"errors"
	"testing"
)

// TestBlueprintInstantiate tests expanding a template tree
func TestBlueprintInstantiate(t *testing.T) {
	bp := &Blueprint{
		Name: "turret",
		Tags: []string{"enemy", "structure"},
		Components: []BlueprintComponent{
			{Kind: positionComp, Value: Position{X: 10, Y: 20}},
			{Kind: healthComp, Value: Health{Current: 100, Max: 100}},
		},
		Children: []*Blueprint{
			{
				Name: "barrel",
				Components: []BlueprintComponent{
					{Kind: positionComp, Value: Position{X: 10, Y: 21}},
				},
			},
		},
	}

	world := newTestWorld()
	e, err := bp.Instantiate(world)
	if err != nil {
		t.Fatalf("Instantiate failed: %v", err)
	}

	if e.Name() != "turret" || !e.HasTag("enemy") || !e.HasTag("structure") {
		t.Errorf("identity not applied")
	}
	pos, err := positionComp.GetFromEntity(e)
	if err != nil {
		t.Fatal(err)
	}
	if pos.X != 10 || pos.Y != 20 {
		t.Errorf("Position = %v, want {10 20}", *pos)
	}
	children := e.Children()
	if len(children) != 1 || children[0].Name() != "barrel" {
		t.Fatalf("child not instantiated")
	}

	// Instances are independent.
	second, err := bp.Instantiate(world)
	if err != nil {
		t.Fatal(err)
	}
	secondPos, _ := positionComp.GetFromEntity(second)
	secondPos.X = 999
	if pos, _ := positionComp.GetFromEntity(e); pos.X != 10 {
		t.Errorf("instances share component state")
	}
}

// TestBlueprintValidatorFailure tests that a rejected component aborts the
// instance and flags the partial tree
func TestBlueprintValidatorFailure(t *testing.T) {
	world := newTestWorld()
	world.RegisterComponentValidator(healthComp, Validator{
		Validate: func(value any) error {
			if value.(Health).Max <= 0 {
				return errors.New("max must be positive")
			}
			return nil
		},
	})

	bp := &Blueprint{
		Name: "broken",
		Components: []BlueprintComponent{
			{Kind: positionComp, Value: Position{}},
			{Kind: healthComp, Value: Health{Max: 0}},
		},
	}

	before := world.EntityStore().Count()
	_, err := bp.Instantiate(world)
	var invalid ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	world.EntityStore().Cleanup()
	if world.EntityStore().Count() != before {
		t.Errorf("partial instance survived the cleanup pass")
	}
}

// TestBlueprintQueriesSeeInstances tests that instantiation flows through
// normal query matching
func TestBlueprintQueriesSeeInstances(t *testing.T) {
	world := newTestWorld()
	query := world.CreateQuery(Filter{
		All:  []Component{positionComp},
		Tags: []string{"enemy"},
	})

	bp := &Blueprint{
		Tags: []string{"enemy"},
		Components: []BlueprintComponent{
			{Kind: positionComp, Value: Position{}},
		},
	}
	e, err := bp.Instantiate(world)
	if err != nil {
		t.Fatal(err)
	}
	if !query.Contains(e) {
		t.Errorf("instantiated entity missing from matching set")
	}
}
