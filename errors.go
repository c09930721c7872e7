package foreman

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Kind string
	Err  error
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("component %s rejected by validator: %v", e.Kind, e.Err)
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

type MissingDependencyError struct {
	Kind       string
	Dependency string
}

func (e MissingDependencyError) Error() string {
	return fmt.Sprintf("component %s requires %s, which is not present on the entity", e.Kind, e.Dependency)
}

type ConflictError struct {
	Kind     string
	Conflict string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("component %s conflicts with %s, which is present on the entity", e.Kind, e.Conflict)
}

type ComponentNotFoundError struct {
	Kind string
}

func (e ComponentNotFoundError) Error() string {
	return fmt.Sprintf("component does not exist on entity: %s", e.Kind)
}

type ComponentValueTypeError struct {
	Kind  string
	Value any
}

func (e ComponentValueTypeError) Error() string {
	return fmt.Sprintf("value of type %T is not assignable to component kind %s", e.Value, e.Kind)
}

type HierarchyCycleError struct {
	Child  EntityID
	Parent EntityID
}

func (e HierarchyCycleError) Error() string {
	return fmt.Sprintf("entity %d cannot become parent of entity %d: it is already a descendant", e.Parent, e.Child)
}

type CircularDependencyError struct {
	Systems []string
}

func (e CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency among systems: %s", strings.Join(e.Systems, ", "))
}

type SystemExistsError struct {
	Name string
}

func (e SystemExistsError) Error() string {
	return fmt.Sprintf("system already registered: %s", e.Name)
}

type GroupExistsError struct {
	Name string
}

func (e GroupExistsError) Error() string {
	return fmt.Sprintf("system group already registered: %s", e.Name)
}

type UnknownKindError struct {
	Kind string
}

func (e UnknownKindError) Error() string {
	return fmt.Sprintf("component kind is not registered for restoration: %s", e.Kind)
}
