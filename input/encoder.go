package input

// Channel is one of the two quadrature outputs.
type Channel int

const (
	ChannelA Channel = iota
	ChannelB
)

// Strategy turns a channel state change into a position delta.
//
// States are 2-bit Gray codes (A<<1 | B). progress holds the strategy's
// partial-detent counter between calls.
type Strategy interface {
	Step(prev, next uint8, progress *int8) int
}

// FullDetent counts one detent per complete four-step Gray cycle.
//
// Clockwise is 00→01→11→10→00. A transition that flips both bits resets
// progress without moving.
type FullDetent struct{}

// cw maps a state to its clockwise successor.
var cw = [4]uint8{0b01, 0b11, 0b00, 0b10}

// Step implements Strategy.
func (FullDetent) Step(prev, next uint8, progress *int8) int {
	switch {
	case prev == next:
		return 0
	case cw[prev] == next:
		*progress++
		if *progress >= 4 {
			*progress = 0
			return 1
		}
	case cw[next] == prev:
		*progress--
		if *progress <= -4 {
			*progress = 0
			return -1
		}
	default:
		*progress = 0
	}
	return 0
}

// EdgeCount counts one detent per rising edge of Edge. The other channel's
// level gives the direction: low is clockwise.
//
// This suits encoders whose detents sit on a single edge, or lines that
// miss intermediate states.
type EdgeCount struct {
	Edge Channel
}

// Step implements Strategy.
func (s EdgeCount) Step(prev, next uint8, progress *int8) int {
	edgeBit, otherBit := uint8(0b01), uint8(0b10)
	if s.Edge == ChannelA {
		edgeBit, otherBit = otherBit, edgeBit
	}
	if prev&edgeBit != 0 || next&edgeBit == 0 {
		return 0
	}
	if next&otherBit == 0 {
		return 1
	}
	return -1
}

// Encoder tracks a rotary encoder's position and its push button.
type Encoder struct {
	strategy         Strategy
	position         int
	previousPosition int
	lastA, lastB     bool
	detentProgress   int8
	button           Button
}

// NewEncoder returns an encoder using s. A nil s selects FullDetent.
func NewEncoder(s Strategy) *Encoder {
	return &Encoder{strategy: s}
}

func (e *Encoder) state(a, b bool) uint8 {
	var s uint8
	if a {
		s |= 0b10
	}
	if b {
		s |= 0b01
	}
	return s
}

// OnChannel sets the level of one channel.
func (e *Encoder) OnChannel(ch Channel, level bool, now uint32) {
	a, b := e.lastA, e.lastB
	if ch == ChannelA {
		a = level
	} else {
		b = level
	}
	e.Sample(a, b, now)
}

// Sample sets both channel levels at once.
func (e *Encoder) Sample(a, b bool, now uint32) {
	prev := e.state(e.lastA, e.lastB)
	next := e.state(a, b)
	if prev == next {
		return
	}
	s := e.strategy
	if s == nil {
		s = FullDetent{}
	}
	e.position += s.Step(prev, next, &e.detentProgress)
	e.lastA, e.lastB = a, b
}

// Seed sets the resting levels of both channels without counting
// movement. Lines that idle high start at state 11.
func (e *Encoder) Seed(a, b bool) {
	e.lastA, e.lastB = a, b
	e.detentProgress = 0
}

// Update starts a new frame.
func (e *Encoder) Update(now uint32) {
	e.previousPosition = e.position
	e.button.Update(now)
}

// Position returns the detent count since start.
func (e *Encoder) Position() int {
	return e.position
}

// Delta returns the detents moved during the current frame.
func (e *Encoder) Delta() int {
	return e.position - e.previousPosition
}

// Changed reports movement during the current frame.
func (e *Encoder) Changed() bool {
	return e.Delta() != 0
}

// State returns the last Gray state (A<<1 | B).
func (e *Encoder) State() uint8 {
	return e.state(e.lastA, e.lastB)
}

// DetentProgress returns the partial-detent counter.
func (e *Encoder) DetentProgress() int {
	return int(e.detentProgress)
}

// Button returns the encoder's push button.
func (e *Encoder) Button() *Button {
	return &e.button
}
