// Package control runs the panel: it owns the event bus and advances every
// component once per tick.
//
// A tick performs, in order: keypad polling, input routing, encoder
// handling, preset transitions, announcement timeout, scroll advancement,
// the display flush and bridge command processing. Everything runs on the
// goroutine calling Tick; nothing here is safe for concurrent use.
package control

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/flavioheleno/retropanel"
	"github.com/flavioheleno/retropanel/announce"
	"github.com/flavioheleno/retropanel/bridge"
	"github.com/flavioheleno/retropanel/config"
	"github.com/flavioheleno/retropanel/events"
	"github.com/flavioheleno/retropanel/input"
	"github.com/flavioheleno/retropanel/is31fl3737"
	"github.com/flavioheleno/retropanel/preset"
	"github.com/flavioheleno/retropanel/slots"
	"github.com/flavioheleno/retropanel/tca8418"
	"github.com/flavioheleno/retropanel/textrender"
	"periph.io/x/conn/v3/i2c"
)

// DefaultPeriod is the tick period used by Run when none is given.
const DefaultPeriod = 10 * time.Millisecond

// Volume limits.
const (
	MaxVolume     = 100
	DefaultVolume = 30
)

// Edge is a level change on a directly wired encoder line.
type Edge struct {
	Channel input.Channel
	Level   bool
}

// Opts holds the loop configuration.
type Opts struct {
	// Config is the panel configuration (default: config.Default()).
	Config *config.Config

	// Logger receives operational messages (default: silent).
	Logger *log.Logger

	// Bridge links the panel to a controller (default: a stub bridge).
	// The loop closes it.
	Bridge bridge.Bridge

	// Slots holds the preset slots. When nil a store is created and
	// loaded from Config.Slots.Path.
	Slots *slots.Store

	// KeypadIRQ reports whether the keypad INT line is asserted. When set,
	// the keypad is only read while it is.
	KeypadIRQ func() bool

	// Encoder delivers edges of directly wired encoder lines. When nil the
	// encoder is read through the keypad matrix.
	Encoder <-chan Edge

	// EncoderLevels reads the levels of the encoder lines A and B. It is
	// called once by New, before any edge is applied.
	EncoderLevels func() (a, b bool)

	// ResetDelay overrides the LED chip reset settle time.
	ResetDelay time.Duration
}

// Loop is the running panel.
type Loop struct {
	cfg *config.Config
	log *log.Logger

	bus      *events.Bus
	panel    *retropanel.Panel
	surface  *frameSurface
	ledChip  *is31fl3737.Dev
	keypad   *tca8418.Dev
	router   *input.Router
	presets  *preset.Manager
	modeLEDs *preset.ModeLEDs
	announce *announce.Module
	text     *textrender.Engine
	bridge   bridge.Bridge
	slots    *slots.Store

	irq       func() bool
	edges     <-chan Edge
	unforward func()

	now      uint32
	message  string
	prefix   string
	showing  bool
	shownSeq uint32
	volume   int
	ledErr   bool
}

// frameSurface defers the panel flush to the flush step of the tick.
type frameSurface struct {
	*retropanel.Surface
	dirty bool
}

func (s *frameSurface) Display() error {
	s.dirty = true
	return nil
}

// New brings up the panel on bus. The display boards and the keypad are
// required: New fails if any of them does not answer. A missing preset LED
// chip is logged and the panel runs without it.
//
// opts can be nil to use defaults.
func New(bus i2c.Bus, opts *Opts) (*Loop, error) {
	if opts == nil {
		opts = &Opts{}
	}
	l := &Loop{
		cfg:    opts.Config,
		log:    opts.Logger,
		bridge: opts.Bridge,
		slots:  opts.Slots,
		irq:    opts.KeypadIRQ,
		edges:  opts.Encoder,
		volume: DefaultVolume,
	}
	if l.cfg == nil {
		l.cfg = config.Default()
	}
	if l.log == nil {
		l.log = log.New(io.Discard, "", 0)
	}
	if err := l.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("control: %w", err)
	}
	cfg := l.cfg

	chipOpts := &is31fl3737.Opts{
		GlobalCurrent: cfg.Display.Brightness / 2,
		ResetDelay:    opts.ResetDelay,
	}
	boards := make([]retropanel.Board, 0, len(cfg.Display.Addresses))
	for i, addr := range cfg.Display.Addresses {
		d, err := is31fl3737.New(bus, addr, chipOpts)
		if err != nil {
			return nil, fmt.Errorf("control: display %d: %w", i, err)
		}
		boards = append(boards, d)
	}
	panel, err := retropanel.New(boards, &retropanel.Opts{Inverted: cfg.Display.Inverted})
	if err != nil {
		return nil, fmt.Errorf("control: %w", err)
	}
	l.panel = panel
	l.log.Printf("control: %s ready", panel)

	var leds preset.LEDSink
	dimmers := []preset.Dimmer{panel}
	if cfg.LEDs.Enabled {
		d, err := is31fl3737.New(bus, cfg.LEDs.Address, chipOpts)
		if err != nil {
			l.log.Printf("control: preset LEDs unavailable: %v", err)
		} else {
			l.ledChip = d
			cl := preset.ChipLEDs{Chip: d}
			leds = cl
			dimmers = append(dimmers, cl)
		}
	}

	l.keypad, err = tca8418.New(bus, &tca8418.Opts{
		Addr:   cfg.Keypad.Address,
		Rows:   cfg.Keypad.Rows,
		Cols:   cfg.Keypad.Cols,
		Logger: l.log,
	})
	if err != nil {
		return nil, fmt.Errorf("control: keypad: %w", err)
	}

	strategy, err := cfg.EncoderStrategy()
	if err != nil {
		return nil, fmt.Errorf("control: %w", err)
	}
	l.router = input.NewRouter(input.DefaultLayout, strategy)
	l.router.OnPreset = l.onPreset
	l.router.OnEncoderButton = l.onEncoderButton
	l.router.OnMode = l.onMode
	if opts.EncoderLevels != nil {
		l.router.Encoder().Seed(opts.EncoderLevels())
	}
	l.modeLEDs = preset.NewModeLEDs(leds, nil, 0)
	l.modeLEDs.Select(l.router.Mode().Position())

	l.bus = events.NewBus()
	l.presets, err = preset.New(l.bus, leds, &preset.Opts{
		Dimmers:    dimmers,
		Logger:     l.log,
		Brightness: cfg.Display.Brightness,
	})
	if err != nil {
		return nil, fmt.Errorf("control: %w", err)
	}
	l.announce, err = announce.New(l.bus, &announce.Opts{Logger: l.log})
	if err != nil {
		return nil, fmt.Errorf("control: %w", err)
	}

	textOpts, err := cfg.TextOpts()
	if err != nil {
		return nil, fmt.Errorf("control: %w", err)
	}
	l.surface = &frameSurface{Surface: panel.Surface()}
	l.text = textrender.New(l.surface, textOpts)
	l.applyMode(l.presets.Mode())

	if l.slots == nil {
		l.slots = slots.New(0)
		if cfg.Slots.Path != "" {
			if err := l.slots.Load(cfg.Slots.Path); err != nil {
				l.log.Printf("control: %v", err)
			}
		}
	}

	if l.bridge == nil {
		l.bridge = bridge.NewStub(&bridge.Opts{Logger: l.log})
	}
	l.bridge.SetHandler(l)
	l.unforward, err = bridge.Forward(l.bus, l.bridge, l.log)
	if err != nil {
		return nil, fmt.Errorf("control: %w", err)
	}

	l.SetMessage(cfg.StartupText)
	return l, nil
}

// Tick runs one pass of the loop at now (milliseconds). It returns an
// error only when the display cannot be flushed.
func (l *Loop) Tick(now uint32) error {
	l.now = now

	// 1. Keypad
	var keys []tca8418.KeyEvent
	if l.irq == nil || l.irq() {
		var err error
		keys, err = l.keypad.Poll(0)
		if err != nil {
			l.log.Printf("control: %v", err)
		}
	}

	// 2. Input state and routing
	l.router.Update(now)
	for _, ev := range keys {
		if !l.router.Dispatch(ev, now) {
			l.log.Printf("control: unmapped key r%d c%d", ev.Row, ev.Col)
		}
	}

	// 3. Encoder
	l.drainEdges(now)
	if enc := l.router.Encoder(); enc.Changed() {
		l.onEncoder(enc.Delta(), enc.Position(), now)
	}

	// 4. Presets
	if err := l.presets.Update(now); err != nil {
		if !l.ledErr {
			l.log.Printf("control: %v", err)
		}
		l.ledErr = true
	} else {
		l.ledErr = false
	}
	if l.presets.ModeChanged() {
		l.presets.ClearModeChanged()
		l.onModeChanged(now)
	}

	// 5. Announcements
	l.announce.Update(now)
	l.syncAnnouncement()

	// 6. Scroll
	l.text.Update(now)

	// 7. Flush
	if l.surface.dirty {
		l.surface.dirty = false
		if err := l.panel.Show(); err != nil {
			return fmt.Errorf("control: flush: %w", err)
		}
	}

	// 8. Bridge
	l.bridge.Update()
	return nil
}

// Run ticks every period until ctx is done or a tick fails. The clock
// starts at zero when Run is called.
func (l *Loop) Run(ctx context.Context, period time.Duration) error {
	if period <= 0 {
		period = DefaultPeriod
	}
	start := time.Now()
	t := time.NewTicker(period)
	defer t.Stop()
	for {
		if err := l.Tick(uint32(time.Since(start) / time.Millisecond)); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}

// Close stops forwarding events, closes the bridge, saves the slots and
// blanks the panel.
func (l *Loop) Close() error {
	if l.unforward != nil {
		l.unforward()
	}
	l.presets.Close()
	l.announce.Close()
	err := l.bridge.Close()
	if l.cfg.Slots.Path != "" {
		err = errors.Join(err, l.slots.Save(l.cfg.Slots.Path))
	}
	if l.ledChip != nil {
		err = errors.Join(err, l.ledChip.Halt())
	}
	return errors.Join(err, l.panel.Halt())
}

func (l *Loop) drainEdges(now uint32) {
	if l.edges == nil {
		return
	}
	enc := l.router.Encoder()
	for {
		select {
		case e, ok := <-l.edges:
			if !ok {
				l.edges = nil
				return
			}
			enc.OnChannel(e.Channel, e.Level, now)
		default:
			return
		}
	}
}

func (l *Loop) publish(t events.Type, now uint32, fields ...events.Field) {
	l.bus.Publish(events.New(t, now, events.Object(fields...)))
}

func (l *Loop) onPreset(i int, pressed bool, now uint32) {
	t := events.PresetReleased
	if pressed {
		t = events.PresetPressed
	}
	l.publish(t, now, events.Number("value", i))
}

func (l *Loop) onEncoderButton(pressed bool, now uint32) {
	v := 0
	if pressed {
		v = 1
	}
	l.publish(events.EncoderPressed, now, events.Number("value", v))
}

func (l *Loop) onMode(position int, now uint32) {
	name := l.router.ModeName()
	l.log.Printf("control: selector at %d (%s)", position, name)
	l.modeLEDs.Select(position)
	l.announce.Show(name, announce.DefaultDuration, now)
}

// onEncoder publishes the turn and steps the volume by the detent count.
func (l *Loop) onEncoder(delta, position int, now uint32) {
	l.publish(events.EncoderTurned, now,
		events.Number("value", delta),
		events.Number("position", position))
	v := min(max(l.volume+delta, 0), MaxVolume)
	if v == l.volume {
		return
	}
	l.volume = v
	l.publish(events.VolumeChanged, now, events.Number("value", v))
	l.announce.Show("Volume "+strconv.Itoa(v), announce.DefaultDuration, now)
}

// onModeChanged restyles the text for the new mode and shows the name of
// the media bound to the active preset, if any.
func (l *Loop) onModeChanged(now uint32) {
	l.applyMode(l.presets.Mode())
	i := l.presets.ActiveButton()
	if !l.slots.Touch(i, now) {
		return
	}
	if s, _ := l.slots.Get(i); s.DisplayName != "" {
		l.SetMessage(s.DisplayName)
	}
}

// playPrefix is pinned left of the message in Animation mode.
const playPrefix = "<f:i>p</f> "

func (l *Loop) applyMode(m preset.DisplayMode) {
	l.prefix = ""
	switch m {
	case preset.Retro:
		l.text.SetFont(textrender.Retro)
		l.text.SetClassifier(textrender.UppercaseWords(textrender.Bright, textrender.Normal))
	case preset.Clock:
		l.text.SetFont(textrender.Modern)
		l.text.SetClassifier(textrender.ClockFormat(textrender.Bright, textrender.Dim))
	case preset.Animation:
		l.text.SetFont(textrender.Modern)
		l.text.SetClassifier(nil)
		l.prefix = playPrefix
	default:
		l.text.SetFont(textrender.Modern)
		l.text.SetClassifier(nil)
	}
	if !l.showing {
		l.showMessage()
	}
}

// showMessage puts the regular message, behind the mode prefix, on the
// display.
func (l *Loop) showMessage() {
	l.text.SetMessageWithMarkup(l.prefix + l.message)
	if l.prefix != "" {
		clean, _, _ := textrender.ParseMarkup(l.prefix)
		l.text.SetStationaryPrefix(len([]rune(clean)))
	}
}

// syncAnnouncement puts the active announcement on the display and restores
// the regular message once it is gone.
func (l *Loop) syncAnnouncement() {
	switch {
	case l.announce.Active():
		if !l.showing || l.announce.Seq() != l.shownSeq {
			l.showing = true
			l.shownSeq = l.announce.Seq()
			l.text.SetMessage(l.announce.Text())
		}
	case l.showing:
		l.showing = false
		l.showMessage()
	}
}

// SetMessage sets the regular display content. Markup tags are honoured.
// While an announcement is shown the message is displayed once it ends.
func (l *Loop) SetMessage(s string) {
	l.message = s
	if !l.showing {
		l.showMessage()
	}
}

// Message returns the regular display content.
func (l *Loop) Message() string { return l.message }

// Volume returns the current volume.
func (l *Loop) Volume() int { return l.volume }

func (l *Loop) Bus() *events.Bus            { return l.bus }
func (l *Loop) Panel() *retropanel.Panel    { return l.panel }
func (l *Loop) Presets() *preset.Manager    { return l.presets }
func (l *Loop) ModeLEDs() *preset.ModeLEDs  { return l.modeLEDs }
func (l *Loop) Announcer() *announce.Module { return l.announce }
func (l *Loop) Text() *textrender.Engine    { return l.text }
func (l *Loop) Slots() *slots.Store         { return l.slots }
func (l *Loop) Router() *input.Router       { return l.router }
