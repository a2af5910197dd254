// Package preset is the state machine behind the nine preset buttons.
//
// Each button maps to a Binding in the current Context. Pressing and
// releasing a button runs its action: select a display mode, step the
// brightness, or enter and leave the menu. The Manager also owns the preset
// LEDs and re-derives them from button state on every Update, so at most one
// LED is lit at a time.
package preset

import (
	"fmt"
	"strings"
)

// NumButtons is the number of preset buttons.
const NumButtons = 9

// Timing, in milliseconds.
const (
	FadeDuration       = 300
	LongPressThreshold = 600
)

// LED levels.
const (
	LevelPressed uint8 = 255
	LevelActive  uint8 = 128
)

// Announcement durations, in milliseconds.
const (
	pressAnnounce   = 500
	releaseAnnounce = 800
	menuAnnounce    = 1000
)

// Action is what a button does on release.
type Action uint8

const (
	None Action = iota
	SelectMode
	BrightnessDelta
	EnterMenu
	ExitMenuSave
)

func (a Action) String() string {
	switch a {
	case None:
		return "none"
	case SelectMode:
		return "select_mode"
	case BrightnessDelta:
		return "brightness_delta"
	case EnterMenu:
		return "enter_menu"
	case ExitMenuSave:
		return "exit_menu_save"
	}
	return fmt.Sprintf("Action(%d)", a)
}

// Context selects the active binding table.
type Context uint8

const (
	Default Context = iota
	Menu
)

func (c Context) String() string {
	if c == Menu {
		return "menu"
	}
	return "default"
}

// State is the per-button state.
type State uint8

const (
	Idle State = iota
	Pressed
	Transitioning
	Active
	Disabled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pressed:
		return "pressed"
	case Transitioning:
		return "transitioning"
	case Active:
		return "active"
	case Disabled:
		return "disabled"
	}
	return fmt.Sprintf("State(%d)", s)
}

// DisplayMode is what the panel shows.
type DisplayMode int

const (
	Retro DisplayMode = iota
	Modern
	Clock
	Animation
)

func (m DisplayMode) String() string {
	switch m {
	case Retro:
		return "Retro"
	case Modern:
		return "Modern"
	case Clock:
		return "Clock"
	case Animation:
		return "Animation"
	}
	return "Unknown"
}

// Valid reports whether m is a known mode.
func (m DisplayMode) Valid() bool {
	return m >= Retro && m <= Animation
}

// ParseDisplayMode returns the mode called name, ignoring case.
func ParseDisplayMode(name string) (DisplayMode, bool) {
	for m := Retro; m <= Animation; m++ {
		if strings.EqualFold(m.String(), name) {
			return m, true
		}
	}
	return 0, false
}

// Binding is the action of one button.
type Binding struct {
	Action Action
	Value  int
	Label  string
}

// Bindings is a full binding table, indexed by button.
type Bindings [NumButtons]Binding

var DefaultBindings = Bindings{
	{SelectMode, int(Modern), "Modern"},
	{SelectMode, int(Retro), "Retro"},
	{SelectMode, int(Clock), "Clock"},
	{SelectMode, int(Animation), "Animation"},
	{None, 0, "Preset 4"},
	{None, 0, "Preset 5"},
	{BrightnessDelta, +1, "Bright +"},
	{BrightnessDelta, -1, "Bright -"},
	{EnterMenu, 0, "Menu"},
}

var MenuBindings = Bindings{
	{None, 0, "Unused"},
	{None, 0, "Unused"},
	{None, 0, "Unused"},
	{None, 0, "Unused"},
	{None, 0, "Preset 4"},
	{None, 0, "Preset 5"},
	{BrightnessDelta, +1, "Bright +"},
	{BrightnessDelta, -1, "Bright -"},
	{ExitMenuSave, 0, "Save"},
}

// BrightnessLevels is the brightness ladder stepped by BrightnessDelta.
var BrightnessLevels = [...]uint8{8, 20, 40, 64, 100, 128, 160, 200, 230, 255}

// DefaultBrightness is the starting rung of BrightnessLevels.
const DefaultBrightness uint8 = 128

// Position is the LED chip coordinate of a button's LED.
type Position struct {
	Row, Col int
}

// DefaultLEDMap places button i at (0, i).
func DefaultLEDMap() [NumButtons]Position {
	var m [NumButtons]Position
	for i := range m {
		m[i] = Position{Row: 0, Col: i}
	}
	return m
}
