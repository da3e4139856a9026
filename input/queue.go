package input

import "time"

// EventKind discriminates raw input events
type EventKind uint8

const (
	EventKeyPress EventKind = iota
	EventKeyRelease
	EventCursor // absolute cursor position in X, Y
	EventLook   // relative cursor nudge in X, Y
	EventQuit
)

// Event is one raw input occurrence
type Event struct {
	Kind   EventKind
	Action Action
	X, Y   float32
	At     time.Time
}

// Queue buffers raw events until the frame loop drains them in arrival order
// Not safe for concurrent use; the host feeds it from its own loop.
type Queue struct {
	events []Event
}

// NewQueue creates an empty event queue
func NewQueue() *Queue {
	return &Queue{events: make([]Event, 0, 16)}
}

// Push appends an event
func (q *Queue) Push(ev Event) {
	q.events = append(q.events, ev)
}

// Len returns the number of buffered events
func (q *Queue) Len() int {
	return len(q.events)
}

// Drain returns all buffered events and empties the queue
func (q *Queue) Drain() []Event {
	out := q.events
	q.events = make([]Event, 0, cap(out))
	return out
}
