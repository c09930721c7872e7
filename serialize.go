package foreman

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// EntityRecord is the plain tree form of an entity: name, tags, component
// values keyed by kind name, and child records. Records marshal to JSON and
// are rebuilt exclusively through the public entity operations, so no
// private state crosses the snapshot boundary.
type EntityRecord struct {
	Name       string          `json:"name,omitempty"`
	Tags       []string        `json:"tags,omitempty"`
	Components map[string]any  `json:"components,omitempty"`
	Children   []*EntityRecord `json:"children,omitempty"`
}

// Serialize walks the entity's components, tags, and children into a
// record tree. Component values are copies of the stored state.
func (e *Entity) Serialize() *EntityRecord {
	rec := &EntityRecord{
		Name: e.name,
		Tags: e.Tags(),
	}
	if len(e.components) > 0 {
		rec.Components = make(map[string]any, len(e.components))
		for tid, index := range e.components {
			kind, ok := e.sto.kinds[tid]
			if !ok {
				continue
			}
			if value, found := e.sto.stores[tid].valueCopy(index); found {
				rec.Components[kind.KindName()] = value
			}
		}
	}
	for _, child := range e.Children() {
		rec.Children = append(rec.Children, child.Serialize())
	}
	return rec
}

// KindRegistry maps kind names to component handles and decoders, enough
// for the restore path to reconstruct records that have round-tripped
// through JSON.
type KindRegistry struct {
	kinds map[string]kindEntry
}

type kindEntry struct {
	component Component
	decode    func(raw any) (any, error)
}

func NewKindRegistry() *KindRegistry {
	return &KindRegistry{kinds: make(map[string]kindEntry)}
}

// RegisterKind makes a component kind restorable under its kind name.
func RegisterKind[T any](r *KindRegistry, c ComponentType[T]) {
	r.kinds[c.KindName()] = kindEntry{
		component: c,
		decode: func(raw any) (any, error) {
			if v, ok := raw.(T); ok {
				return v, nil
			}
			// Values that crossed a JSON boundary arrive as generic maps.
			encoded, err := json.Marshal(raw)
			if err != nil {
				return nil, fmt.Errorf("re-encoding %s value: %w", c.KindName(), err)
			}
			var out T
			if err := json.Unmarshal(encoded, &out); err != nil {
				return nil, fmt.Errorf("decoding %s value: %w", c.KindName(), err)
			}
			return out, nil
		},
	}
}

// Restore rebuilds an entity tree from a record through the public API.
// Components are added in passes so validator dependencies between kinds
// on the same entity resolve regardless of map order; a pass with no
// progress surfaces the blocking error. On failure the partially built
// tree is queued for cleanup and the error returned.
func (r *KindRegistry) Restore(w *World, rec *EntityRecord) (*Entity, error) {
	e := w.CreateEntity(rec.Name)
	if err := r.restore(w, e, rec); err != nil {
		e.QueueFree()
		return nil, err
	}
	return e, nil
}

func (r *KindRegistry) restore(w *World, e *Entity, rec *EntityRecord) error {
	pending := make([]string, 0, len(rec.Components))
	for name := range rec.Components {
		pending = append(pending, name)
	}
	sort.Strings(pending)

	for len(pending) > 0 {
		progressed := false
		var blocked []string
		var lastErr error
		for _, name := range pending {
			entry, ok := r.kinds[name]
			if !ok {
				return UnknownKindError{Kind: name}
			}
			value, err := entry.decode(rec.Components[name])
			if err != nil {
				return err
			}
			if err := e.AddComponent(entry.component, value); err != nil {
				var missing MissingDependencyError
				if errors.As(err, &missing) {
					blocked = append(blocked, name)
					lastErr = err
					continue
				}
				return err
			}
			progressed = true
		}
		if !progressed {
			return lastErr
		}
		pending = blocked
	}

	for _, tag := range rec.Tags {
		e.AddTag(tag)
	}
	for _, childRec := range rec.Children {
		child, err := r.Restore(w, childRec)
		if err != nil {
			return err
		}
		if err := e.AddChild(child); err != nil {
			child.QueueFree()
			return err
		}
	}
	return nil
}
