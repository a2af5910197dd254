// Package input turns decoded keypad events into debounced controls with
// per-frame edge detection: buttons, a quadrature encoder and a
// multi-position switch.
//
// Time is a uint32 millisecond counter. Durations are computed with unsigned
// subtraction, so they stay correct when the counter wraps.
//
// Every control follows the same frame protocol: Update(now) at the start of
// a frame saves the previous state, then events are applied, then the Was*
// and Changed queries report what happened during the frame.
package input

// Button tracks press and release state and timing.
type Button struct {
	current    bool
	previous   bool
	pressTime  uint32
	changeTime uint32
}

// OnPress records a press. A press while already pressed is rejected and
// reports false.
func (b *Button) OnPress(now uint32) bool {
	if b.current {
		return false
	}
	b.previous = b.current
	b.current = true
	b.pressTime = now
	b.changeTime = now
	return true
}

// OnRelease records a release. A release while already released is rejected
// and reports false.
func (b *Button) OnRelease(now uint32) bool {
	if !b.current {
		return false
	}
	b.previous = b.current
	b.current = false
	b.changeTime = now
	return true
}

// Update starts a new frame.
func (b *Button) Update(now uint32) {
	b.previous = b.current
}

// IsPressed reports whether the button is held.
func (b *Button) IsPressed() bool {
	return b.current
}

// WasJustPressed reports a press during the current frame.
func (b *Button) WasJustPressed() bool {
	return b.current && !b.previous
}

// WasJustReleased reports a release during the current frame.
func (b *Button) WasJustReleased() bool {
	return !b.current && b.previous
}

// IsLongPressed reports whether the button has been held for at least th ms.
func (b *Button) IsLongPressed(now, th uint32) bool {
	return b.current && now-b.pressTime >= th
}

// WasLongPress reports whether the release in the current frame ended a hold
// of at least th ms.
func (b *Button) WasLongPress(th uint32) bool {
	return b.WasJustReleased() && b.changeTime-b.pressTime >= th
}

// PressDuration returns how long the button has been held, 0 when released.
func (b *Button) PressDuration(now uint32) uint32 {
	if !b.current {
		return 0
	}
	return now - b.pressTime
}

// TimeSinceChange returns the time since the last accepted transition.
func (b *Button) TimeSinceChange(now uint32) uint32 {
	return now - b.changeTime
}
