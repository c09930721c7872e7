package foreman

import (
	"reflect"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

type factory struct{}

var Factory factory

// WorldOption overrides a package default for one world.
type WorldOption func(*worldConfig)

type worldConfig struct {
	logger           zerolog.Logger
	fixedInterval    time.Duration
	maxCatchUp       int
	eventHistorySize int
	maxSystems       int
}

func WithLogger(logger zerolog.Logger) WorldOption {
	return func(cfg *worldConfig) { cfg.logger = logger }
}

func WithFixedInterval(interval time.Duration) WorldOption {
	return func(cfg *worldConfig) { cfg.fixedInterval = interval }
}

func WithMaxCatchUp(iterations int) WorldOption {
	return func(cfg *worldConfig) { cfg.maxCatchUp = iterations }
}

func WithEventHistorySize(size int) WorldOption {
	return func(cfg *worldConfig) { cfg.eventHistorySize = size }
}

// NewWorld assembles a world from the package defaults and the given
// overrides.
func (f factory) NewWorld(opts ...WorldOption) *World {
	cfg := worldConfig{
		logger:           Config.logger,
		fixedInterval:    Config.fixedInterval,
		maxCatchUp:       Config.maxCatchUp,
		eventHistorySize: Config.eventHistorySize,
		maxSystems:       Config.maxSystems,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &World{
		log:    cfg.logger,
		store:  newEntityStore(cfg.logger),
		sched:  newScheduler(cfg.logger, cfg.fixedInterval, cfg.maxCatchUp, cfg.maxSystems),
		events: newEventBus(cfg.eventHistorySize),
	}
}

// NewCursor wraps a query in a snapshot iterator.
func (f factory) NewCursor(query *Query) *Cursor {
	return newCursor(query)
}

var nextTypeID atomic.Uint32

// FactoryNewComponent creates the typed handle for a component kind,
// assigning the next type token. Handles are created once and shared;
// creating two handles for the same Go type yields two distinct kinds.
func FactoryNewComponent[T any]() ComponentType[T] {
	id := nextTypeID.Add(1) - 1
	if id >= MaxComponentTypes {
		panic("foreman: too many component types")
	}
	return ComponentType[T]{
		id:   TypeID(id),
		name: reflect.TypeFor[T]().Name(),
	}
}
