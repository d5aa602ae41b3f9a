// Package engine provides the discrete-event / ticking substrate that
// drives a network side forward one tick at a time. It is deliberately
// small: a network side has no use for the richer secondary-event and
// parallel-engine machinery that a full hardware simulator needs.
package engine

import "github.com/rs/xid"

// VTimeInSec is simulated time, in seconds.
type VTimeInSec float64

// Event is something scheduled to happen at a point in simulated time.
type Event interface {
	Time() VTimeInSec
	Handler() Handler
}

// Handler processes events scheduled against it. A handler may only
// schedule events for itself.
type Handler interface {
	Handle(e Event) error
}

// EventBase provides the common fields of an Event.
type EventBase struct {
	ID      string
	time    VTimeInSec
	handler Handler
}

// NewEventBase creates an EventBase scheduled at t for handler.
func NewEventBase(t VTimeInSec, handler Handler) *EventBase {
	return &EventBase{
		ID:      xid.New().String(),
		time:    t,
		handler: handler,
	}
}

// Time returns when the event is scheduled to happen.
func (e *EventBase) Time() VTimeInSec { return e.time }

// Handler returns the handler that owns the event.
func (e *EventBase) Handler() Handler { return e.handler }

// TickEvent is the generic event used to advance a ticking component.
type TickEvent struct {
	*EventBase
}

// NewTickEvent creates a TickEvent for handler at time t.
func NewTickEvent(t VTimeInSec, handler Handler) TickEvent {
	return TickEvent{EventBase: NewEventBase(t, handler)}
}
