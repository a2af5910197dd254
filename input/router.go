package input

import "github.com/flavioheleno/retropanel/tca8418"

// ModeNames are the labels of the mode selector positions.
var ModeNames = []string{"Stereo", "Stereo-Far", "Q", "Mono"}

// Layout places the controls on the keypad matrix.
type Layout struct {
	PresetRow int
	Presets   int

	EncoderRow       int
	EncoderColA      int
	EncoderColB      int
	EncoderColButton int

	ModeRow       int
	ModePositions int // Columns 0..ModePositions-1
}

// DefaultLayout is the panel wiring: presets on row 0, the encoder on row 1
// (A, B and push button on columns 1-3), the mode selector on row 2.
var DefaultLayout = Layout{
	PresetRow:        0,
	Presets:          9,
	EncoderRow:       1,
	EncoderColA:      1,
	EncoderColB:      2,
	EncoderColButton: 3,
	ModeRow:          2,
	ModePositions:    len(ModeNames),
}

// Router dispatches keypad events onto registered controls.
//
// The hooks, when set, are called for every accepted transition so that no
// edge is lost when several events arrive in one frame.
type Router struct {
	layout  Layout
	presets []*Button
	encoder *Encoder
	mode    *Switch

	// OnPreset is called after a preset button accepts a transition.
	OnPreset func(index int, pressed bool, now uint32)
	// OnEncoderButton is called after the encoder button accepts a transition.
	OnEncoderButton func(pressed bool, now uint32)
	// OnMode is called after the mode selector moves.
	OnMode func(position int, now uint32)
}

// NewRouter creates the controls described by l. A nil encoder strategy
// selects FullDetent.
func NewRouter(l Layout, s Strategy) *Router {
	r := &Router{
		layout:  l,
		presets: make([]*Button, l.Presets),
		encoder: NewEncoder(s),
		mode:    NewSwitch(l.ModePositions),
	}
	for i := range r.presets {
		r.presets[i] = &Button{}
	}
	return r
}

// Preset returns preset button i, or nil when out of range.
func (r *Router) Preset(i int) *Button {
	if i < 0 || i >= len(r.presets) {
		return nil
	}
	return r.presets[i]
}

// NumPresets returns the number of preset buttons.
func (r *Router) NumPresets() int { return len(r.presets) }

// Encoder returns the rotary encoder.
func (r *Router) Encoder() *Encoder { return r.encoder }

// Mode returns the mode selector.
func (r *Router) Mode() *Switch { return r.mode }

// ModeName returns the label of the current mode selector position.
func (r *Router) ModeName() string {
	p := r.mode.Position()
	if p < len(ModeNames) {
		return ModeNames[p]
	}
	return ""
}

// Update starts a new frame on every control.
func (r *Router) Update(now uint32) {
	for _, b := range r.presets {
		b.Update(now)
	}
	r.encoder.Update(now)
	r.mode.Update(now)
}

// Dispatch routes one event. It reports whether a control took it; invalid
// and unmapped events are dropped.
func (r *Router) Dispatch(ev tca8418.KeyEvent, now uint32) bool {
	if !ev.Valid() {
		return false
	}
	row, col := int(ev.Row), int(ev.Col)
	l := r.layout

	switch {
	case row == l.EncoderRow && (col == l.EncoderColA || col == l.EncoderColB):
		ch := ChannelA
		if col == l.EncoderColB {
			ch = ChannelB
		}
		r.encoder.OnChannel(ch, ev.Pressed, now)
		return true

	case row == l.EncoderRow && col == l.EncoderColButton:
		b := r.encoder.Button()
		var ok bool
		if ev.Pressed {
			ok = b.OnPress(now)
		} else {
			ok = b.OnRelease(now)
		}
		if ok && r.OnEncoderButton != nil {
			r.OnEncoderButton(ev.Pressed, now)
		}
		return true

	case row == l.PresetRow && col < len(r.presets):
		b := r.presets[col]
		var ok bool
		if ev.Pressed {
			ok = b.OnPress(now)
		} else {
			ok = b.OnRelease(now)
		}
		if ok && r.OnPreset != nil {
			r.OnPreset(col, ev.Pressed, now)
		}
		return true

	case row == l.ModeRow && col < r.mode.NumPositions():
		// Each position is a separate contact; only the closing edge selects.
		if ev.Pressed && r.mode.SetPosition(col, now) && r.OnMode != nil {
			r.OnMode(col, now)
		}
		return true
	}
	return false
}
