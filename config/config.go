// Package config loads the optional panel configuration file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/flavioheleno/retropanel/input"
	"github.com/flavioheleno/retropanel/is31fl3737"
	"github.com/flavioheleno/retropanel/tca8418"
	"github.com/flavioheleno/retropanel/textrender"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// Schema is the configuration format version written by Default.
const Schema = "v1.0.0"

// Bridge kinds.
const (
	BridgeStub      = "stub"
	BridgeSerial    = "serial"
	BridgeWebSocket = "websocket"
)

// Encoder strategies.
const (
	FullDetent = "full_detent"
	EdgeCount  = "edge_count"
)

// Config represents the panel configuration file.
type Config struct {
	Schema      string        `yaml:"schema"`
	I2C         I2CConfig     `yaml:"i2c"`
	Display     DisplayConfig `yaml:"display"`
	LEDs        LEDConfig     `yaml:"leds"`
	Keypad      KeypadConfig  `yaml:"keypad"`
	Encoder     EncoderConfig `yaml:"encoder"`
	Text        TextConfig    `yaml:"text"`
	Bridge      BridgeConfig  `yaml:"bridge"`
	Slots       SlotsConfig   `yaml:"slots"`
	StartupText string        `yaml:"startup_text"`
}

// I2CConfig selects the bus. An empty name opens the first bus found.
type I2CConfig struct {
	Bus string `yaml:"bus"`
}

// DisplayConfig describes the three display boards.
type DisplayConfig struct {
	Addresses  []uint16 `yaml:"addresses"`
	Inverted   bool     `yaml:"inverted"`
	Brightness uint8    `yaml:"brightness"`
}

// LEDConfig describes the preset LED chip.
type LEDConfig struct {
	Address uint16 `yaml:"address"`
	Enabled bool   `yaml:"enabled"`
}

// KeypadConfig describes the keypad controller. A negative InterruptLine
// means the controller is polled.
type KeypadConfig struct {
	Address       uint16 `yaml:"address"`
	Rows          int    `yaml:"rows"`
	Cols          int    `yaml:"cols"`
	InterruptLine int    `yaml:"interrupt_line"`
}

// EncoderConfig selects the quadrature strategy and, optionally, direct
// GPIO wiring of the A/B lines.
type EncoderConfig struct {
	Strategy string     `yaml:"strategy"`
	GPIO     GPIOConfig `yaml:"gpio"`
}

// GPIOConfig names the encoder lines. An empty Chip means the encoder is
// wired through the keypad matrix.
type GPIOConfig struct {
	Chip string `yaml:"chip"`
	A    int    `yaml:"a"`
	B    int    `yaml:"b"`
}

// TextConfig holds the text engine settings.
type TextConfig struct {
	ScrollStyle  string `yaml:"scroll_style"`
	ScrollMode   string `yaml:"scroll_mode"`
	IntervalMS   uint32 `yaml:"interval_ms"`
	StartDelayMS uint32 `yaml:"start_delay_ms"`
	Font         string `yaml:"font"`
	Loop         bool   `yaml:"loop"`
}

// BridgeConfig selects the controller link. Device is a tty path for the
// serial bridge and a ws:// URL for the websocket bridge.
type BridgeConfig struct {
	Kind   string `yaml:"kind"`
	Device string `yaml:"device"`
}

// SlotsConfig locates the preset slot file. An empty path keeps slots in
// memory only.
type SlotsConfig struct {
	Path string `yaml:"path"`
}

// Default returns the configuration of the stock panel.
func Default() *Config {
	return &Config{
		Schema: Schema,
		Display: DisplayConfig{
			Addresses:  []uint16{is31fl3737.AddrGND, is31fl3737.AddrSDA, is31fl3737.AddrVCC},
			Inverted:   true,
			Brightness: is31fl3737.DefaultGlobalCurrent,
		},
		LEDs: LEDConfig{
			Address: is31fl3737.AddrSCL,
			Enabled: true,
		},
		Keypad: KeypadConfig{
			Address:       tca8418.DefaultAddr,
			Rows:          4,
			Cols:          10,
			InterruptLine: -1,
		},
		Encoder: EncoderConfig{
			Strategy: FullDetent,
			GPIO:     GPIOConfig{A: -1, B: -1},
		},
		Text: TextConfig{
			ScrollStyle:  textrender.Smooth.String(),
			ScrollMode:   textrender.Auto.String(),
			IntervalMS:   textrender.DefaultInterval,
			StartDelayMS: textrender.DefaultStartDelay,
			Font:         textrender.Modern.String(),
		},
		Bridge: BridgeConfig{
			Kind: BridgeStub,
		},
		StartupText: "CONNECTING...",
	}
}

// Load reads the file at path over Default. A missing file yields the
// defaults. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if !semver.IsValid(c.Schema) {
		return fmt.Errorf("schema %q is not a semantic version", c.Schema)
	}
	if semver.Compare(semver.Major(c.Schema), semver.Major(Schema)) > 0 {
		return fmt.Errorf("schema %s is newer than supported %s", c.Schema, Schema)
	}

	if len(c.Display.Addresses) != 3 {
		return fmt.Errorf("display.addresses must list 3 boards (got %d)", len(c.Display.Addresses))
	}
	seen := map[uint16]bool{}
	for i, a := range c.Display.Addresses {
		if !chipAddr(a) {
			return fmt.Errorf("display.addresses[%d] %#02x is not an IS31FL3737 address", i, a)
		}
		if seen[a] {
			return fmt.Errorf("display.addresses[%d] %#02x is used twice", i, a)
		}
		seen[a] = true
	}
	if c.LEDs.Enabled {
		if !chipAddr(c.LEDs.Address) {
			return fmt.Errorf("leds.address %#02x is not an IS31FL3737 address", c.LEDs.Address)
		}
		if seen[c.LEDs.Address] {
			return fmt.Errorf("leds.address %#02x is shared with a display board", c.LEDs.Address)
		}
	}

	if c.Keypad.Rows < 1 || c.Keypad.Rows > tca8418.MaxRows || c.Keypad.Cols < 1 || c.Keypad.Cols > tca8418.MaxCols {
		return fmt.Errorf("keypad: %dx%d: %w", c.Keypad.Rows, c.Keypad.Cols, tca8418.ErrMatrixSize)
	}

	if _, err := c.EncoderStrategy(); err != nil {
		return err
	}
	if c.Encoder.GPIO.Chip != "" && (c.Encoder.GPIO.A < 0 || c.Encoder.GPIO.B < 0 || c.Encoder.GPIO.A == c.Encoder.GPIO.B) {
		return fmt.Errorf("encoder.gpio: lines a=%d b=%d are invalid", c.Encoder.GPIO.A, c.Encoder.GPIO.B)
	}

	if _, err := c.TextOpts(); err != nil {
		return err
	}

	switch c.Bridge.Kind {
	case BridgeStub:
	case BridgeSerial:
		if c.Bridge.Device == "" {
			return errors.New("bridge.device is required for the serial bridge")
		}
	case BridgeWebSocket:
		u, err := url.Parse(c.Bridge.Device)
		if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
			return fmt.Errorf("bridge.device %q is not a ws:// or wss:// URL", c.Bridge.Device)
		}
	default:
		return fmt.Errorf("bridge.kind %q is unknown (want %s, %s or %s)", c.Bridge.Kind, BridgeStub, BridgeSerial, BridgeWebSocket)
	}
	return nil
}

func chipAddr(a uint16) bool {
	switch a {
	case is31fl3737.AddrGND, is31fl3737.AddrSCL, is31fl3737.AddrSDA, is31fl3737.AddrVCC:
		return true
	}
	return false
}

// EncoderStrategy returns the configured quadrature decoder.
func (c *Config) EncoderStrategy() (input.Strategy, error) {
	switch strings.ToLower(c.Encoder.Strategy) {
	case FullDetent, "":
		return input.FullDetent{}, nil
	case EdgeCount:
		return input.EdgeCount{Edge: input.ChannelB}, nil
	}
	return nil, fmt.Errorf("encoder.strategy %q is unknown (want %s or %s)", c.Encoder.Strategy, FullDetent, EdgeCount)
}

// TextOpts returns the text engine options.
func (c *Config) TextOpts() (*textrender.Opts, error) {
	o := textrender.DefaultOpts
	var ok bool
	if o.Style, ok = parse(c.Text.ScrollStyle, textrender.Smooth, textrender.Character, textrender.Static); !ok {
		return nil, fmt.Errorf("text.scroll_style %q is unknown", c.Text.ScrollStyle)
	}
	if o.Mode, ok = parse(c.Text.ScrollMode, textrender.Auto, textrender.Always, textrender.Never); !ok {
		return nil, fmt.Errorf("text.scroll_mode %q is unknown", c.Text.ScrollMode)
	}
	if o.Font, ok = parse(c.Text.Font, textrender.Modern, textrender.Retro, textrender.Icon); !ok {
		return nil, fmt.Errorf("text.font %q is unknown", c.Text.Font)
	}
	o.Interval = c.Text.IntervalMS
	o.StartDelay = c.Text.StartDelayMS
	o.Loop = c.Text.Loop
	return &o, nil
}

// parse returns the candidate whose name is s. An empty s selects the
// first candidate.
func parse[T fmt.Stringer](s string, candidates ...T) (T, bool) {
	if s == "" {
		return candidates[0], true
	}
	for _, c := range candidates {
		if strings.EqualFold(c.String(), s) {
			return c, true
		}
	}
	var zero T
	return zero, false
}
