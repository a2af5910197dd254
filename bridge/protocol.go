package bridge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/flavioheleno/retropanel/events"
)

var (
	ErrUnknownCommand = errors.New("bridge: unknown command")
	ErrUnknownEvent   = errors.New("bridge: unknown event")
	ErrMalformed      = errors.New("bridge: malformed frame")
	ErrTooLong        = errors.New("bridge: frame too long")
)

// CommandName identifies a controller to panel command.
type CommandName uint8

const (
	UnknownCommand CommandName = iota
	SetMode
	SetVolume
	SetBrightness
	SetMetadata
	RequestStatus
)

var commandNames = [...]string{
	UnknownCommand: "unknown",
	SetMode:        "set_mode",
	SetVolume:      "set_volume",
	SetBrightness:  "set_brightness",
	SetMetadata:    "set_metadata",
	RequestStatus:  "request_status",
}

func (n CommandName) String() string {
	if int(n) < len(commandNames) {
		return commandNames[n]
	}
	return commandNames[UnknownCommand]
}

// ParseCommandName returns the command called s, or UnknownCommand.
func ParseCommandName(s string) CommandName {
	for i, name := range commandNames {
		if i > 0 && name == s {
			return CommandName(i)
		}
	}
	return UnknownCommand
}

// Command is one command frame. Negative integers and empty strings are
// absent.
type Command struct {
	Name     CommandName
	Mode     int
	Preset   int
	Value    int
	ModeName string
	Text     string
}

// NewCommand returns a command with every integer field absent.
func NewCommand(name CommandName) Command {
	return Command{Name: name, Mode: -1, Preset: -1, Value: -1}
}

// EncodeCommand serializes c as one newline terminated frame.
func EncodeCommand(c Command) []byte {
	obj := events.Object(
		events.String("cmd", c.Name.String()),
		events.NumberIf("mode", c.Mode, c.Mode >= 0),
		events.NumberIf("preset", c.Preset, c.Preset >= 0),
		events.NumberIf("value", c.Value, c.Value >= 0),
		events.String("mode_name", c.ModeName),
		events.String("text", c.Text),
	)
	return append([]byte(obj), '\n')
}

type commandFrame struct {
	Cmd      string          `json:"cmd"`
	Mode     json.RawMessage `json:"mode"`
	Preset   json.RawMessage `json:"preset"`
	Value    json.RawMessage `json:"value"`
	ModeName json.RawMessage `json:"mode_name"`
	Text     json.RawMessage `json:"text"`
}

// DecodeCommand parses one command frame. Integer fields accept numbers
// with a fraction, which is truncated, and quoted numbers. Missing or
// unusable integers decode to -1 and missing or non-string text to "".
func DecodeCommand(line []byte) (Command, error) {
	var f commandFrame
	if err := json.Unmarshal(bytes.TrimSpace(line), &f); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	name := ParseCommandName(f.Cmd)
	if name == UnknownCommand {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, f.Cmd)
	}
	c := NewCommand(name)
	c.Mode = intField(f.Mode)
	c.Preset = intField(f.Preset)
	c.Value = intField(f.Value)
	c.ModeName = stringField(f.ModeName)
	c.Text = stringField(f.Text)
	return c, nil
}

func intField(raw json.RawMessage) int {
	if len(raw) == 0 {
		return -1
	}
	// json.Number also takes a quoted number.
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return -1
	}
	v, err := strconv.ParseFloat(n.String(), 64)
	if err != nil || v < 0 {
		return -1
	}
	return int(min(v, math.MaxInt32))
}

func stringField(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// Dispatch calls the handler method matching c.
func Dispatch(c Command, h CommandHandler) error {
	if h == nil {
		return nil
	}
	switch c.Name {
	case SetMode:
		h.OnSetMode(c.Mode, c.ModeName, c.Preset)
	case SetVolume:
		h.OnSetVolume(c.Value)
	case SetBrightness:
		h.OnSetBrightness(c.Value)
	case SetMetadata:
		h.OnSetMetadata(c.Text)
	case RequestStatus:
		h.OnRequestStatus()
	default:
		return ErrUnknownCommand
	}
	return nil
}

// eventNames holds the frame name of every event type, in catalog order.
var eventNames = [...]string{
	events.PresetPressed:         "preset_pressed",
	events.PresetReleased:        "preset_released",
	events.EncoderTurned:         "encoder_turned",
	events.EncoderPressed:        "encoder_pressed",
	events.BrightnessChanged:     "brightness_changed",
	events.AnnouncementRequested: "announcement_requested",
	events.AnnouncementCompleted: "announcement_completed",
	events.ModeChanged:           "mode_changed",
	events.VolumeChanged:         "volume_changed",
}

// EventName returns the frame name of t, or "unknown".
func EventName(t events.Type) string {
	if t.Valid() && int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// ParseEventName returns the event type called s.
func ParseEventName(s string) (events.Type, bool) {
	for i, name := range eventNames {
		if name == s {
			return events.Type(i), true
		}
	}
	return 0, false
}

// EventMessage is the compact event frame.
type EventMessage struct {
	Type      events.Type
	Timestamp uint32
	I1, I2    int32
	Text      string
}

// EncodeEvent serializes m as one newline terminated frame.
func EncodeEvent(m EventMessage) []byte {
	obj := events.Object(
		events.String("type", EventName(m.Type)),
		events.Raw("ts", strconv.FormatUint(uint64(m.Timestamp), 10)),
		events.Number("i1", int(m.I1)),
		events.Number("i2", int(m.I2)),
		events.String("text", m.Text),
	)
	return append([]byte(obj), '\n')
}

type eventFrame struct {
	Type string `json:"type"`
	TS   uint32 `json:"ts"`
	I1   int32  `json:"i1"`
	I2   int32  `json:"i2"`
	Text string `json:"text"`
}

// DecodeEvent parses one compact event frame. Missing fields decode to 0.
func DecodeEvent(line []byte) (EventMessage, error) {
	var f eventFrame
	if err := json.Unmarshal(bytes.TrimSpace(line), &f); err != nil {
		return EventMessage{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	t, ok := ParseEventName(f.Type)
	if !ok {
		return EventMessage{}, fmt.Errorf("%w: %q", ErrUnknownEvent, f.Type)
	}
	return EventMessage{Type: t, Timestamp: f.TS, I1: f.I1, I2: f.I2, Text: f.Text}, nil
}

// ToMessage condenses a bus event into a compact frame. I1 carries the
// payload "value", I2 the "preset" (or "duration"), and Text the first of
// "name", "text" and "context".
func ToMessage(e *events.Event) EventMessage {
	m := EventMessage{Type: e.Type, Timestamp: e.Timestamp}
	if v, ok := e.Int("value"); ok {
		m.I1 = int32(v)
	}
	for _, k := range []string{"preset", "duration"} {
		if v, ok := e.Int(k); ok {
			m.I2 = int32(v)
			break
		}
	}
	for _, k := range []string{"name", "text", "context"} {
		if s, ok := e.Str(k); ok && s != "" {
			m.Text = s
			break
		}
	}
	return m
}

// EncodePublished serializes e in the full publish format:
//
//	{"type_id":4,"type_name":"settings.brightness","timestamp":12345,"value":{"value":180}}
func EncodePublished(e *events.Event) []byte {
	payload := e.Payload
	if payload == "" {
		payload = "{}"
	}
	obj := events.Object(
		events.Number("type_id", int(e.ID())),
		events.String("type_name", e.Name()),
		events.Raw("timestamp", strconv.FormatUint(uint64(e.Timestamp), 10)),
		events.Raw("value", payload),
	)
	return append([]byte(obj), '\n')
}

type publishedFrame struct {
	TypeID    *uint16         `json:"type_id"`
	TypeName  string          `json:"type_name"`
	Timestamp uint32          `json:"timestamp"`
	Value     json.RawMessage `json:"value"`
}

// DecodePublished parses a frame written by EncodePublished.
func DecodePublished(line []byte) (*events.Event, error) {
	var f publishedFrame
	if err := json.Unmarshal(bytes.TrimSpace(line), &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	entry := events.LookupName(f.TypeName)
	if entry == events.Unknown && f.TypeID != nil {
		entry = events.LookupID(*f.TypeID)
	}
	if entry == events.Unknown {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, f.TypeName)
	}
	return events.New(entry.Type, f.Timestamp, string(f.Value)), nil
}
