package preset

import (
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/flavioheleno/retropanel/events"
)

// LEDSink receives preset LED levels.
type LEDSink interface {
	SetLED(row, col int, v uint8)
	Show() error
}

// Dimmer receives panel-wide brightness changes. *retropanel.Panel
// satisfies it.
type Dimmer interface {
	SetBrightness(level uint8) error
}

// Chip is a pixel-addressed LED chip such as *is31fl3737.Dev.
type Chip interface {
	SetPixel(x, y int, v uint8)
	Show() error
}

// ChipLEDs adapts a Chip to an LEDSink. Rows map to y, columns to x.
type ChipLEDs struct {
	Chip Chip
}

func (c ChipLEDs) SetLED(row, col int, v uint8) { c.Chip.SetPixel(col, row, v) }
func (c ChipLEDs) Show() error                  { return c.Chip.Show() }

// currentSetter is implemented by chips with a chip-wide current setting.
type currentSetter interface {
	SetGlobalCurrent(v uint8) error
}

// SetBrightness forwards to the chip global current when it has one.
func (c ChipLEDs) SetBrightness(level uint8) error {
	if s, ok := c.Chip.(currentSetter); ok {
		return s.SetGlobalCurrent(level / 2)
	}
	return nil
}

// Opts holds the Manager configuration. Nil tables select DefaultBindings
// and MenuBindings.
type Opts struct {
	Default *Bindings
	Menu    *Bindings
	LEDMap  *[NumButtons]Position
	Dimmers []Dimmer
	Logger  *log.Logger

	// Brightness is the starting level, rounded to the closest ladder
	// rung. Zero selects DefaultBrightness. Dimmers are not called.
	Brightness uint8
}

// Manager tracks preset button state and drives the preset LEDs.
type Manager struct {
	bus     *events.Bus
	leds    LEDSink
	dimmers []Dimmer
	log     *log.Logger

	tables [2]Bindings
	ledMap [NumButtons]Position

	context     Context
	mode        DisplayMode
	active      int
	held        int
	modeChanged bool
	brightness  int

	states   [NumButtons]State
	changed  [NumButtons]uint32
	pressed  [NumButtons]uint32
	released [NumButtons]uint32
	levels   [NumButtons]uint8
}

// New returns a Manager subscribed to preset events on bus. leds may be nil
// when the LED chip is missing.
func New(bus *events.Bus, leds LEDSink, opts *Opts) (*Manager, error) {
	if opts == nil {
		opts = &Opts{}
	}
	m := &Manager{
		bus:     bus,
		leds:    leds,
		dimmers: opts.Dimmers,
		log:     opts.Logger,
		tables:  [2]Bindings{DefaultBindings, MenuBindings},
		ledMap:  DefaultLEDMap(),
		mode:    Modern,
		active:  0,
		held:    -1,
	}
	if m.log == nil {
		m.log = log.New(io.Discard, "", 0)
	}
	if opts.Default != nil {
		m.tables[Default] = *opts.Default
	}
	if opts.Menu != nil {
		m.tables[Menu] = *opts.Menu
	}
	if opts.LEDMap != nil {
		m.ledMap = *opts.LEDMap
	}
	start := opts.Brightness
	if start == 0 {
		start = DefaultBrightness
	}
	m.brightness = nearest(int(start))
	m.states[m.active] = Active

	if bus != nil {
		if err := bus.Subscribe(events.PresetPressed, handlePressed, m); err != nil {
			return nil, fmt.Errorf("preset: subscribe: %w", err)
		}
		if err := bus.Subscribe(events.PresetReleased, handleReleased, m); err != nil {
			bus.Unsubscribe(events.PresetPressed, handlePressed, m)
			return nil, fmt.Errorf("preset: subscribe: %w", err)
		}
	}
	return m, nil
}

// Close removes the bus subscriptions.
func (m *Manager) Close() {
	if m.bus == nil {
		return
	}
	m.bus.Unsubscribe(events.PresetPressed, handlePressed, m)
	m.bus.Unsubscribe(events.PresetReleased, handleReleased, m)
}

func handlePressed(e *events.Event, ctx any) {
	m, ok := ctx.(*Manager)
	if !ok {
		return
	}
	if i, ok := e.Int("value"); ok {
		m.Press(i, e.Timestamp)
	}
}

func handleReleased(e *events.Event, ctx any) {
	m, ok := ctx.(*Manager)
	if !ok {
		return
	}
	if i, ok := e.Int("value"); ok {
		m.Release(i, e.Timestamp)
	}
}

// Mode returns the selected display mode.
func (m *Manager) Mode() DisplayMode { return m.mode }

// Context returns the active binding context.
func (m *Manager) Context() Context { return m.context }

// ActiveButton returns the button of the selected mode.
func (m *Manager) ActiveButton() int { return m.active }

// Brightness returns the current brightness level.
func (m *Manager) Brightness() uint8 { return BrightnessLevels[m.brightness] }

// ModeChanged reports whether the mode changed since ClearModeChanged.
func (m *Manager) ModeChanged() bool { return m.modeChanged }

// ClearModeChanged resets the mode-changed flag.
func (m *Manager) ClearModeChanged() { m.modeChanged = false }

// State returns the state of button i, or Disabled when i is out of range.
func (m *Manager) State(i int) State {
	if i < 0 || i >= NumButtons {
		return Disabled
	}
	return m.states[i]
}

// Binding returns the binding of button i in the active context.
func (m *Manager) Binding(i int) (Binding, bool) {
	if i < 0 || i >= NumButtons {
		return Binding{}, false
	}
	return m.tables[m.context][i], true
}

// Level returns the LED level of button i as of the last Update.
func (m *Manager) Level(i int) uint8 {
	if i < 0 || i >= NumButtons {
		return 0
	}
	return m.levels[i]
}

// SetMode selects mode without a button press, as done by a remote
// controller. The button bound to mode becomes active.
func (m *Manager) SetMode(mode DisplayMode, now uint32) {
	for i, b := range m.tables[Default] {
		if b.Action == SelectMode && DisplayMode(b.Value) == mode {
			m.selectMode(i, b, now)
			if m.states[i] != Pressed {
				m.setState(i, Active, now)
			}
			return
		}
	}
	if m.mode != mode {
		m.mode = mode
		m.modeChanged = true
	}
}

// SetBrightness jumps to the ladder rung closest to level.
func (m *Manager) SetBrightness(level int, now uint32) {
	m.applyBrightness(nearest(level), now)
}

// nearest returns the index of the ladder rung closest to level.
func nearest(level int) int {
	best := 0
	for i, v := range BrightnessLevels {
		if abs(int(v)-level) < abs(int(BrightnessLevels[best])-level) {
			best = i
		}
	}
	return best
}

// Press handles a press of button i at now.
func (m *Manager) Press(i int, now uint32) {
	if i < 0 || i >= NumButtons {
		return
	}
	m.held = i
	m.pressed[i] = now
	m.setState(i, Pressed, now)
	if b := m.tables[m.context][i]; b.Label != "" {
		m.announce(b.Label, pressAnnounce, now)
	}
}

// Release handles a release of button i at now and runs its action.
func (m *Manager) Release(i int, now uint32) {
	if i < 0 || i >= NumButtons {
		return
	}
	if m.held == i {
		m.held = -1
	}
	m.released[i] = now
	long := now-m.pressed[i] >= LongPressThreshold
	m.setState(i, Transitioning, now)

	b := m.tables[m.context][i]
	m.log.Printf("preset: button %d released (%s, long=%v)", i, b.Action, long)
	switch b.Action {
	case SelectMode:
		m.selectMode(i, b, now)
		m.announce(b.Label, releaseAnnounce, now)
	case BrightnessDelta:
		m.stepBrightness(b.Value, now)
	case EnterMenu:
		if long {
			m.enterMenu(now)
		} else {
			m.announce(b.Label, releaseAnnounce, now)
		}
	case ExitMenuSave:
		m.exitMenu(now)
	default:
		if b.Label != "" {
			m.announce(b.Label, releaseAnnounce, now)
		}
	}
}

func (m *Manager) selectMode(i int, b Binding, now uint32) {
	prev := m.active
	m.active = i
	if prev == i {
		return
	}
	m.modeChanged = true
	m.mode = DisplayMode(b.Value)
	m.setState(prev, Idle, now)
	m.publish(events.ModeChanged, now,
		events.Number("value", int(m.mode)),
		events.String("name", b.Label),
		events.Number("preset", i))
}

func (m *Manager) stepBrightness(delta int, now uint32) {
	n := len(BrightnessLevels)
	idx := m.brightness
	switch {
	case delta > 0:
		idx = (idx + 1) % n
	case delta < 0:
		idx = (idx + n - 1) % n
	}
	m.applyBrightness(idx, now)
}

func (m *Manager) applyBrightness(idx int, now uint32) {
	m.brightness = idx
	v := BrightnessLevels[idx]
	for _, d := range m.dimmers {
		if err := d.SetBrightness(v); err != nil {
			m.log.Printf("preset: brightness %d: %v", v, err)
		}
	}
	m.publish(events.BrightnessChanged, now, events.Number("value", int(v)))
	m.announce("Brightness "+strconv.Itoa(int(v)), menuAnnounce, now)
}

func (m *Manager) enterMenu(now uint32) {
	m.context = Menu
	m.publish(events.ModeChanged, now, events.String("context", Menu.String()))
	m.announce("Menu", menuAnnounce, now)
}

func (m *Manager) exitMenu(now uint32) {
	m.context = Default
	if m.states[m.active] != Pressed && m.states[m.active] != Transitioning {
		m.setState(m.active, Active, now)
	}
	m.publish(events.ModeChanged, now, events.String("context", Default.String()))
	m.announce("Saved", menuAnnounce, now)
}

func (m *Manager) setState(i int, s State, now uint32) {
	if i < 0 || i >= NumButtons || m.states[i] == s {
		return
	}
	m.states[i] = s
	m.changed[i] = now
}

func (m *Manager) publish(t events.Type, now uint32, fields ...events.Field) {
	if m.bus == nil {
		return
	}
	m.bus.Publish(events.New(t, now, events.Object(fields...)))
}

func (m *Manager) announce(text string, ms int, now uint32) {
	m.publish(events.AnnouncementRequested, now,
		events.String("text", text),
		events.Number("duration", ms))
}

// Update finishes elapsed fades and redraws the preset LEDs.
func (m *Manager) Update(now uint32) error {
	for i := range m.states {
		if m.states[i] != Transitioning || now-m.changed[i] < FadeDuration {
			continue
		}
		if i == m.active {
			m.setState(i, Active, now)
		} else {
			m.setState(i, Idle, now)
		}
	}

	m.levels = [NumButtons]uint8{}
	if lit, v := m.lit(now); lit >= 0 {
		m.levels[lit] = v
	}
	if m.leds == nil {
		return nil
	}
	// Only the preset positions are written; other LEDs on the chip
	// belong to other owners.
	for i, v := range m.levels {
		m.leds.SetLED(m.ledMap[i].Row, m.ledMap[i].Col, v)
	}
	if err := m.leds.Show(); err != nil {
		return fmt.Errorf("preset: leds: %w", err)
	}
	return nil
}

// lit picks the one button to light: the held button, else the latest
// released one still fading, else the active one.
func (m *Manager) lit(now uint32) (int, uint8) {
	if m.held >= 0 && m.states[m.held] == Pressed {
		return m.held, LevelPressed
	}
	latest := -1
	for i, s := range m.states {
		if s != Transitioning {
			continue
		}
		if latest < 0 || m.changed[i]-m.changed[latest] < 1<<31 {
			latest = i
		}
	}
	if latest >= 0 {
		return latest, fade(now - m.changed[latest])
	}
	if m.states[m.active] == Active {
		return m.active, LevelActive
	}
	return -1, 0
}

// fade is the Transitioning level after elapsed milliseconds.
func fade(elapsed uint32) uint8 {
	if elapsed >= FadeDuration {
		return LevelActive
	}
	span := uint32(LevelPressed - LevelActive)
	return LevelPressed - uint8(span*elapsed/FadeDuration)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
