package foreman

import "fmt"

// Blueprint is a declarative entity template. Instantiation goes through
// the same public operations as hand-built entities, so validators and
// query matching apply normally.
type Blueprint struct {
	Name       string
	Tags       []string
	Components []BlueprintComponent
	Children   []*Blueprint
}

// BlueprintComponent pairs a kind with the initial value each instance
// receives.
type BlueprintComponent struct {
	Kind  Component
	Value any
}

// Instantiate expands the template into a fresh entity tree. On failure the
// partially built tree is queued for cleanup and the error returned.
func (b *Blueprint) Instantiate(w *World) (*Entity, error) {
	e := w.CreateEntity(b.Name)
	for _, bc := range b.Components {
		if err := e.AddComponent(bc.Kind, bc.Value); err != nil {
			e.QueueFree()
			return nil, fmt.Errorf("instantiating blueprint %q: %w", b.Name, err)
		}
	}
	for _, tag := range b.Tags {
		e.AddTag(tag)
	}
	for _, childBlueprint := range b.Children {
		child, err := childBlueprint.Instantiate(w)
		if err != nil {
			e.QueueFree()
			return nil, err
		}
		if err := e.AddChild(child); err != nil {
			e.QueueFree()
			return nil, err
		}
	}
	return e, nil
}
