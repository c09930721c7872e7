package foreman

import "reflect"

// MaxEventTypes caps the number of distinct event types on one bus.
const MaxEventTypes = 256

// PublishedEvent is one entry in the bus history.
type PublishedEvent struct {
	Name  string
	Value any
}

// EventBus is a synchronous typed publish/subscribe bus for inter-system
// messaging, with a bounded ring of recently published events. Handlers run
// in subscription order before Publish returns.
type EventBus struct {
	eventTypeMap    map[reflect.Type]uint8
	handlers        [MaxEventTypes][]any
	nextEventTypeID uint8

	history []PublishedEvent
	next    int
	count   int
}

func newEventBus(historySize int) *EventBus {
	return &EventBus{
		history: make([]PublishedEvent, historySize),
	}
}

// Subscribe registers a handler for events of type T.
func Subscribe[T any](bus *EventBus, handler func(T)) {
	t := reflect.TypeFor[T]()
	id := bus.getEventTypeID(t)
	if cap(bus.handlers[id]) == 0 {
		bus.handlers[id] = make([]any, 0, 4)
	}
	bus.handlers[id] = append(bus.handlers[id], handler)
}

// Publish dispatches the event to every handler registered for T and
// records it in the history ring.
func Publish[T any](bus *EventBus, event T) {
	t := reflect.TypeFor[T]()
	bus.record(t.Name(), event)
	if id, ok := bus.eventTypeMap[t]; ok {
		for _, h := range bus.handlers[id] {
			h.(func(T))(event)
		}
	}
}

// History returns the retained events, oldest first.
func (bus *EventBus) History() []PublishedEvent {
	if bus.count == 0 {
		return nil
	}
	out := make([]PublishedEvent, 0, bus.count)
	start := bus.next - bus.count
	if start < 0 {
		start += len(bus.history)
	}
	for i := 0; i < bus.count; i++ {
		out = append(out, bus.history[(start+i)%len(bus.history)])
	}
	return out
}

// HistorySize reports the retention capacity.
func (bus *EventBus) HistorySize() int {
	return len(bus.history)
}

func (bus *EventBus) record(name string, value any) {
	if len(bus.history) == 0 {
		return
	}
	bus.history[bus.next] = PublishedEvent{Name: name, Value: value}
	bus.next = (bus.next + 1) % len(bus.history)
	if bus.count < len(bus.history) {
		bus.count++
	}
}

func (bus *EventBus) getEventTypeID(t reflect.Type) uint8 {
	if bus.eventTypeMap == nil {
		bus.eventTypeMap = make(map[reflect.Type]uint8)
	}
	if id, ok := bus.eventTypeMap[t]; ok {
		return id
	}
	if len(bus.eventTypeMap) >= MaxEventTypes {
		panic("foreman: too many event types")
	}
	id := bus.nextEventTypeID
	bus.nextEventTypeID++
	bus.eventTypeMap[t] = id
	return id
}
