package main

import (
	"image"

	"github.com/flavioheleno/retropanel/config"
	"github.com/flavioheleno/retropanel/control"
	"github.com/flavioheleno/retropanel/i2csim"
	"github.com/flavioheleno/retropanel/input"
	"github.com/flavioheleno/retropanel/preset"
	"github.com/flavioheleno/retropanel/pwmimage"
)

// sim is a panel running against emulated chips.
type sim struct {
	bus    *i2csim.Bus
	chips  []*i2csim.LEDChip
	leds   *i2csim.LEDChip
	keypad *i2csim.Keypad
	layout input.Layout
	loop   *control.Loop
	now    uint32
}

func newSim(cfg *config.Config, opts *control.Opts) (*sim, error) {
	s := &sim{bus: i2csim.New(), layout: input.DefaultLayout}
	for _, addr := range cfg.Display.Addresses {
		s.chips = append(s.chips, s.bus.AddLEDChip(addr))
	}
	if cfg.LEDs.Enabled {
		s.leds = s.bus.AddLEDChip(cfg.LEDs.Address)
	}
	s.keypad = s.bus.AddKeypad(cfg.Keypad.Address)

	o := control.Opts{}
	if opts != nil {
		o = *opts
	}
	o.Config = cfg
	loop, err := control.New(s.bus, &o)
	if err != nil {
		return nil, err
	}
	s.loop = loop
	return s, nil
}

// step advances the clock by dt milliseconds and runs one tick.
func (s *sim) step(dt uint32) error {
	s.now += dt
	return s.loop.Tick(s.now)
}

// advance runs ticks of control.DefaultPeriod for ms milliseconds.
func (s *sim) advance(ms uint32) error {
	period := uint32(control.DefaultPeriod.Milliseconds())
	for end := s.now + ms; s.now < end; {
		if err := s.step(period); err != nil {
			return err
		}
	}
	return nil
}

func (s *sim) pressPreset(i int) {
	s.keypad.Press(uint8(s.layout.PresetRow), uint8(i))
}

func (s *sim) releasePreset(i int) {
	s.keypad.Release(uint8(s.layout.PresetRow), uint8(i))
}

func (s *sim) pressButton() {
	s.keypad.Press(uint8(s.layout.EncoderRow), uint8(s.layout.EncoderColButton))
}

func (s *sim) releaseButton() {
	s.keypad.Release(uint8(s.layout.EncoderRow), uint8(s.layout.EncoderColButton))
}

// selectMode moves the mode selector to position p.
func (s *sim) selectMode(p int) {
	row, col := uint8(s.layout.ModeRow), uint8(p)
	s.keypad.Press(row, col)
	s.keypad.Release(row, col)
}

// turn queues one full Gray cycle per detent on the encoder columns.
// Positive detents are clockwise. The keypad FIFO holds ten events, so no
// more than two detents fit between polls.
func (s *sim) turn(detents int) {
	row := uint8(s.layout.EncoderRow)
	a, b := uint8(s.layout.EncoderColA), uint8(s.layout.EncoderColB)
	if detents < 0 {
		a, b = b, a
		detents = -detents
	}
	for i := 0; i < detents; i++ {
		s.keypad.Press(row, b)
		s.keypad.Press(row, a)
		s.keypad.Release(row, b)
		s.keypad.Release(row, a)
	}
}

// frame is the display as the chips show it.
func (s *sim) frame() *pwmimage.Frame {
	return i2csim.View(s.loop.Panel(), s.chips)
}

// presetLEDs returns the visible level of every preset LED.
func (s *sim) presetLEDs() [preset.NumButtons]uint8 {
	var out [preset.NumButtons]uint8
	if s.leds == nil {
		return out
	}
	for i, p := range preset.DefaultLEDMap() {
		out[i] = s.leds.Lit(p.Col, p.Row)
	}
	return out
}

// composite stacks the display above a strip of preset LEDs, one cell per
// button, separated by a dark row.
func (s *sim) composite() *pwmimage.Frame {
	disp := s.frame()
	w, h := disp.Bounds().Dx(), disp.Bounds().Dy()
	out := pwmimage.NewFrame(image.Rect(0, 0, w, h+2))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.SetLevel(x, y, disp.LevelAt(x, y))
		}
	}
	cell := w / preset.NumButtons
	for i, v := range s.presetLEDs() {
		for x := i*cell + 1; x < (i+1)*cell-1; x++ {
			out.SetLevel(x, h+1, pwmimage.Level{V: v})
		}
	}
	return out
}

func (s *sim) close() error {
	err := s.loop.Close()
	s.bus.Close()
	return err
}
