// Package events is the synchronous publish/subscribe bus connecting the
// panel components.
//
// Events are delivered once, in subscription order, on the publisher's
// goroutine. Nothing is queued or retained. Each type has a fixed table of
// subscriber slots; a full table rejects new subscribers.
//
// A callback may publish events of other types. Publishing the type being
// delivered from its own callback is not supported.
package events

import (
	"errors"
	"reflect"
)

// MaxSubscribers is the number of subscriber slots per event type.
const MaxSubscribers = 8

var (
	ErrFull        = errors.New("events: subscriber table full")
	ErrNilCallback = errors.New("events: nil callback")
	ErrUnknownType = errors.New("events: unknown event type")
)

// Callback receives a published event and the context given at subscription.
type Callback func(e *Event, ctx any)

type slot struct {
	cb     Callback
	ctx    any
	active bool
}

// Bus routes events to subscribers. The zero value is ready to use.
type Bus struct {
	slots [numTypes][MaxSubscribers]slot
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers cb for events of type t. ctx is handed back on every
// call and, together with cb, identifies the subscription.
func (b *Bus) Subscribe(t Type, cb Callback, ctx any) error {
	if cb == nil {
		return ErrNilCallback
	}
	if !t.Valid() {
		return ErrUnknownType
	}
	for i := range b.slots[t] {
		s := &b.slots[t][i]
		if !s.active {
			*s = slot{cb: cb, ctx: ctx, active: true}
			return nil
		}
	}
	return ErrFull
}

// Unsubscribe removes the first subscription matching (cb, ctx).
func (b *Bus) Unsubscribe(t Type, cb Callback, ctx any) bool {
	if cb == nil || !t.Valid() {
		return false
	}
	for i := range b.slots[t] {
		s := &b.slots[t][i]
		if s.active && sameCallback(s.cb, cb) && sameContext(s.ctx, ctx) {
			*s = slot{}
			return true
		}
	}
	return false
}

// Publish calls every subscriber of e.Type in slot order.
func (b *Bus) Publish(e *Event) {
	if e == nil || !e.Type.Valid() {
		return
	}
	for i := range b.slots[e.Type] {
		s := b.slots[e.Type][i]
		if s.active {
			s.cb(e, s.ctx)
		}
	}
}

// Clear removes every subscription.
func (b *Bus) Clear() {
	b.slots = [numTypes][MaxSubscribers]slot{}
}

// Count returns the number of subscribers of t.
func (b *Bus) Count(t Type) int {
	if !t.Valid() {
		return 0
	}
	n := 0
	for _, s := range b.slots[t] {
		if s.active {
			n++
		}
	}
	return n
}

// sameCallback compares function identity. Closures of the same literal and
// method values of the same method compare equal; the context tells them
// apart.
func sameCallback(a, b Callback) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

func sameContext(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
