package bridge

import (
	"bytes"
	"errors"
	"io"
	"log"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/flavioheleno/retropanel/events"
)

type recorder struct {
	calls []string
}

func (r *recorder) OnSetMode(mode int, name string, preset int) {
	r.calls = append(r.calls, "mode:"+strconv.Itoa(mode)+":"+name+":"+strconv.Itoa(preset))
}
func (r *recorder) OnSetVolume(v int)      { r.calls = append(r.calls, "volume:"+strconv.Itoa(v)) }
func (r *recorder) OnSetBrightness(v int)  { r.calls = append(r.calls, "brightness:"+strconv.Itoa(v)) }
func (r *recorder) OnSetMetadata(t string) { r.calls = append(r.calls, "metadata:"+t) }
func (r *recorder) OnRequestStatus()       { r.calls = append(r.calls, "status") }

func TestEncodeCommand(t *testing.T) {
	full := Command{Name: SetMode, Mode: 2, Preset: 5, Value: 10, ModeName: "clock", Text: "..."}
	tests := []struct {
		name string
		in   Command
		want string
	}{
		{"full", full, `{"cmd":"set_mode","mode":2,"preset":5,"value":10,"mode_name":"clock","text":"..."}` + "\n"},
		{"absent fields", NewCommand(RequestStatus), `{"cmd":"request_status"}` + "\n"},
		{"zero is present", Command{Name: SetVolume, Mode: -1, Preset: -1, Value: 0}, `{"cmd":"set_volume","value":0}` + "\n"},
		{"escaped text", Command{Name: SetMetadata, Mode: -1, Preset: -1, Value: -1, Text: "a\"b\nc"}, `{"cmd":"set_metadata","text":"a\"b\nc"}` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(EncodeCommand(tt.in)); got != tt.want {
				t.Errorf("EncodeCommand() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeCommand(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Command
		wantErr error
	}{
		{
			"full",
			`{"cmd":"set_mode","mode":2,"preset":5,"value":10,"mode_name":"clock","text":"x"}`,
			Command{Name: SetMode, Mode: 2, Preset: 5, Value: 10, ModeName: "clock", Text: "x"},
			nil,
		},
		{"missing ints", `{"cmd":"set_brightness"}`, NewCommand(SetBrightness), nil},
		{"trailing newline", "{\"cmd\":\"set_volume\",\"value\":7}\r\n", Command{Name: SetVolume, Mode: -1, Preset: -1, Value: 7}, nil},
		{"escapes", `{"cmd":"set_metadata","text":"a\"b"}`, Command{Name: SetMetadata, Mode: -1, Preset: -1, Value: -1, Text: `a"b`}, nil},
		{"unknown", `{"cmd":"reboot"}`, Command{}, ErrUnknownCommand},
		{"no cmd", `{"mode":1}`, Command{}, ErrUnknownCommand},
		{"malformed", `set_mode`, Command{}, ErrMalformed},
		{"float value", `{"cmd":"set_volume","value":40.0}`, Command{Name: SetVolume, Mode: -1, Preset: -1, Value: 40}, nil},
		{"fraction truncated", `{"cmd":"set_volume","value":40.9}`, Command{Name: SetVolume, Mode: -1, Preset: -1, Value: 40}, nil},
		{"exponent", `{"cmd":"set_brightness","value":1.8e2}`, Command{Name: SetBrightness, Mode: -1, Preset: -1, Value: 180}, nil},
		{"quoted value", `{"cmd":"set_volume","value":"40"}`, Command{Name: SetVolume, Mode: -1, Preset: -1, Value: 40}, nil},
		{"quoted fraction", `{"cmd":"set_mode","mode":"2.5","preset":"3"}`, Command{Name: SetMode, Mode: 2, Preset: 3, Value: -1}, nil},
		{"word value", `{"cmd":"set_volume","value":"abc"}`, NewCommand(SetVolume), nil},
		{"null value", `{"cmd":"set_volume","value":null}`, NewCommand(SetVolume), nil},
		{"bool value", `{"cmd":"set_volume","value":true}`, NewCommand(SetVolume), nil},
		{"negative value", `{"cmd":"set_volume","value":-0.5}`, NewCommand(SetVolume), nil},
		{"numeric text", `{"cmd":"set_metadata","text":5}`, NewCommand(SetMetadata), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeCommand([]byte(tt.in))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("DecodeCommand() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DecodeCommand() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCommandRoundTrip(t *testing.T) {
	in := Command{Name: SetMode, Mode: 3, Preset: -1, Value: -1, ModeName: "anim"}
	got, err := DecodeCommand(EncodeCommand(in))
	if err != nil || got != in {
		t.Errorf("round trip = %+v, %v, want %+v", got, err, in)
	}
}

func TestDispatch(t *testing.T) {
	r := &recorder{}
	for _, c := range []Command{
		{Name: SetMode, Mode: 2, ModeName: "clock", Preset: 5},
		{Name: SetVolume, Value: 30},
		{Name: SetBrightness, Value: 180},
		{Name: SetMetadata, Text: "Song"},
		{Name: RequestStatus},
	} {
		if err := Dispatch(c, r); err != nil {
			t.Fatalf("Dispatch(%v) error = %v", c.Name, err)
		}
	}
	want := []string{"mode:2:clock:5", "volume:30", "brightness:180", "metadata:Song", "status"}
	if strings.Join(r.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", r.calls, want)
	}
	if err := Dispatch(Command{}, r); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Dispatch(unknown) error = %v", err)
	}
	if err := Dispatch(NewCommand(SetVolume), nil); err != nil {
		t.Errorf("Dispatch() with nil handler error = %v", err)
	}
}

func TestEventFrames(t *testing.T) {
	m := EventMessage{Type: events.BrightnessChanged, Timestamp: 12345, I1: 180, I2: -1, Text: "hi"}
	want := `{"type":"brightness_changed","ts":12345,"i1":180,"i2":-1,"text":"hi"}` + "\n"
	if got := string(EncodeEvent(m)); got != want {
		t.Errorf("EncodeEvent() = %q, want %q", got, want)
	}
	got, err := DecodeEvent([]byte(want))
	if err != nil || got != m {
		t.Errorf("DecodeEvent() = %+v, %v, want %+v", got, err, m)
	}

	got, err = DecodeEvent([]byte(`{"type":"mode_changed"}`))
	if err != nil || got != (EventMessage{Type: events.ModeChanged}) {
		t.Errorf("DecodeEvent(missing fields) = %+v, %v", got, err)
	}
	if _, err := DecodeEvent([]byte(`{"type":"nope"}`)); !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("DecodeEvent(unknown) error = %v", err)
	}
	if _, err := DecodeEvent([]byte(`{`)); !errors.Is(err, ErrMalformed) {
		t.Errorf("DecodeEvent(malformed) error = %v", err)
	}
}

func TestEventNames(t *testing.T) {
	for _, entry := range events.Catalog() {
		name := EventName(entry.Type)
		if name == "unknown" || strings.Contains(name, ".") {
			t.Errorf("EventName(%v) = %q", entry.Type, name)
		}
		if got, ok := ParseEventName(name); !ok || got != entry.Type {
			t.Errorf("ParseEventName(%q) = %v, %v", name, got, ok)
		}
	}
	if EventName(events.Type(99)) != "unknown" {
		t.Error("EventName(99) should be unknown")
	}
}

func TestToMessage(t *testing.T) {
	tests := []struct {
		name string
		in   *events.Event
		want EventMessage
	}{
		{
			"mode changed",
			events.New(events.ModeChanged, 7, `{"value":2,"name":"Clock","preset":2}`),
			EventMessage{Type: events.ModeChanged, Timestamp: 7, I1: 2, I2: 2, Text: "Clock"},
		},
		{
			"menu context",
			events.New(events.ModeChanged, 8, `{"context":"menu"}`),
			EventMessage{Type: events.ModeChanged, Timestamp: 8, Text: "menu"},
		},
		{
			"announcement",
			events.New(events.AnnouncementRequested, 9, `{"text":"Saved","duration":1000}`),
			EventMessage{Type: events.AnnouncementRequested, Timestamp: 9, I2: 1000, Text: "Saved"},
		},
		{
			"brightness",
			events.New(events.BrightnessChanged, 10, `{"value":180}`),
			EventMessage{Type: events.BrightnessChanged, Timestamp: 10, I1: 180},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToMessage(tt.in); got != tt.want {
				t.Errorf("ToMessage() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPublishedFrame(t *testing.T) {
	e := events.New(events.BrightnessChanged, 12345, `{"value":180}`)
	want := `{"type_id":4,"type_name":"settings.brightness","timestamp":12345,"value":{"value":180}}` + "\n"
	if got := string(EncodePublished(e)); got != want {
		t.Fatalf("EncodePublished() = %q, want %q", got, want)
	}
	back, err := DecodePublished([]byte(want))
	if err != nil {
		t.Fatalf("DecodePublished() error = %v", err)
	}
	if back.Type != e.Type || back.Timestamp != e.Timestamp || back.Payload != e.Payload {
		t.Errorf("DecodePublished() = %+v, want %+v", back, e)
	}

	byID, err := DecodePublished([]byte(`{"type_id":7,"timestamp":1}`))
	if err != nil || byID.Type != events.ModeChanged || byID.Payload != "{}" {
		t.Errorf("DecodePublished(by id) = %+v, %v", byID, err)
	}
	if _, err := DecodePublished([]byte(`{"type_name":"x.y"}`)); !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("DecodePublished(unknown) error = %v", err)
	}
}

func TestStub(t *testing.T) {
	var buf bytes.Buffer
	s := NewStub(&Opts{Logger: log.New(&buf, "", 0)})
	s.SetHandler(&recorder{})
	s.Update()
	if err := s.PublishEvent(events.New(events.VolumeChanged, 0, `{"value":3}`)); err != nil {
		t.Fatalf("PublishEvent() error = %v", err)
	}
	if !strings.Contains(buf.String(), `bridge: settings.volume (id:8) = {"value":3}`) {
		t.Errorf("log = %q", buf.String())
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	var _ Bridge = s
}

func waitDone(t *testing.T, s *Serial) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("reader did not finish")
	}
}

func TestSerialCommands(t *testing.T) {
	in := strings.NewReader(strings.Join([]string{
		`{"cmd":"set_mode","mode":2,"mode_name":"clock","preset":5}`,
		``,
		`garbage`,
		`{"cmd":"reboot"}`,
		`{"cmd":"set_brightness","value":200}`,
	}, "\n") + "\n")
	var out bytes.Buffer
	s := NewSerial(in, &out, nil)
	var _ Bridge = s
	r := &recorder{}
	s.SetHandler(r)
	waitDone(t, s)

	s.Update()
	want := "mode:2:clock:5,brightness:200"
	if got := strings.Join(r.calls, ","); got != want {
		t.Errorf("calls = %s, want %s", got, want)
	}
	s.Update()
	if len(r.calls) != 2 {
		t.Errorf("second Update() replayed commands: %v", r.calls)
	}
}

func TestSerialLongFrame(t *testing.T) {
	long := `{"cmd":"set_metadata","text":"` + strings.Repeat("x", 1100) + `"}`
	in := strings.NewReader(long + "\n" + `{"cmd":"set_volume","value":40}` + "\n")
	var logs bytes.Buffer
	s := NewSerial(in, io.Discard, &Opts{Logger: log.New(&logs, "", 0)})
	r := &recorder{}
	s.SetHandler(r)
	waitDone(t, s)

	s.Update()
	if got := strings.Join(r.calls, ","); got != "volume:40" {
		t.Errorf("calls = %s, want volume:40", got)
	}
	if !strings.Contains(logs.String(), ErrTooLong.Error()) {
		t.Errorf("log = %q, want %q", logs.String(), ErrTooLong)
	}
}

func TestSerialUnterminatedFrame(t *testing.T) {
	s := NewSerial(strings.NewReader(`{"cmd":"set_volume","value":3}`), io.Discard, nil)
	r := &recorder{}
	s.SetHandler(r)
	waitDone(t, s)

	s.Update()
	if got := strings.Join(r.calls, ","); got != "volume:3" {
		t.Errorf("calls = %s, want volume:3", got)
	}
}

func TestSerialPublish(t *testing.T) {
	var out bytes.Buffer
	s := NewSerial(strings.NewReader(""), &out, nil)
	defer s.Close()
	if err := s.PublishEvent(events.New(events.BrightnessChanged, 12345, `{"value":180}`)); err != nil {
		t.Fatalf("PublishEvent() error = %v", err)
	}
	want := `{"type_id":4,"type_name":"settings.brightness","timestamp":12345,"value":{"value":180}}` + "\n"
	if out.String() != want {
		t.Errorf("wrote %q, want %q", out.String(), want)
	}
}

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) { return 0, io.ErrClosedPipe }

func TestSerialPublishError(t *testing.T) {
	s := NewSerial(strings.NewReader(""), failWriter{}, nil)
	if err := s.PublishEvent(events.New(events.ModeChanged, 0, "")); !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("PublishEvent() error = %v, want ErrClosedPipe", err)
	}
}

func TestSerialClose(t *testing.T) {
	pr, pw := io.Pipe()
	s := NewSerial(pr, io.Discard, nil)
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	waitDone(t, s)
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	pw.Close()
}

func TestClient(t *testing.T) {
	var cmds bytes.Buffer
	in := strings.NewReader(
		`{"type_id":7,"type_name":"system.mode","timestamp":42,"value":{"value":2,"name":"Clock","preset":2}}` + "\n" +
			"\n" +
			`{"type":"volume_changed","ts":43,"i1":11}` + "\n")
	c := NewClient(in, &cmds)

	if err := c.SetMode(2, "clock", -1); err != nil {
		t.Fatalf("SetMode() error = %v", err)
	}
	c.SetVolume(30)
	c.SetBrightness(180)
	c.SetMetadata("Song")
	c.RequestStatus()
	want := strings.Join([]string{
		`{"cmd":"set_mode","mode":2,"mode_name":"clock"}`,
		`{"cmd":"set_volume","value":30}`,
		`{"cmd":"set_brightness","value":180}`,
		`{"cmd":"set_metadata","text":"Song"}`,
		`{"cmd":"request_status"}`,
	}, "\n") + "\n"
	if cmds.String() != want {
		t.Errorf("commands = %q, want %q", cmds.String(), want)
	}

	m, err := c.Next()
	if err != nil || m != (EventMessage{Type: events.ModeChanged, Timestamp: 42, I1: 2, I2: 2, Text: "Clock"}) {
		t.Errorf("Next() = %+v, %v", m, err)
	}
	m, err = c.Next()
	if err != nil || m != (EventMessage{Type: events.VolumeChanged, Timestamp: 43, I1: 11}) {
		t.Errorf("Next() = %+v, %v", m, err)
	}
	if _, err := c.Next(); err != io.EOF {
		t.Errorf("Next() at end error = %v, want io.EOF", err)
	}
}

func TestClientLongFrame(t *testing.T) {
	in := strings.NewReader(strings.Repeat("y", 2000) + "\n" + `{"type":"volume_changed","ts":7,"i1":9}` + "\n")
	c := NewClient(in, io.Discard)
	if _, err := c.Next(); !errors.Is(err, ErrTooLong) {
		t.Fatalf("Next() error = %v, want ErrTooLong", err)
	}
	m, err := c.Next()
	if err != nil || m != (EventMessage{Type: events.VolumeChanged, Timestamp: 7, I1: 9}) {
		t.Errorf("Next() = %+v, %v", m, err)
	}
}

func TestClientToSerial(t *testing.T) {
	// Controller -> panel over a pipe, decoded by the serial bridge.
	pr, pw := io.Pipe()
	s := NewSerial(pr, io.Discard, nil)
	r := &recorder{}
	s.SetHandler(r)

	c := NewClient(strings.NewReader(""), pw)
	go func() {
		c.SetBrightness(64)
		pw.Close()
	}()
	waitDone(t, s)
	s.Update()
	if len(r.calls) != 1 || r.calls[0] != "brightness:64" {
		t.Errorf("calls = %v", r.calls)
	}
}

func TestForward(t *testing.T) {
	bus := events.NewBus()
	var out bytes.Buffer
	s := NewSerial(strings.NewReader(""), &out, nil)
	cancel, err := Forward(bus, s, nil)
	if err != nil {
		t.Fatalf("Forward() error = %v", err)
	}
	bus.Publish(events.New(events.VolumeChanged, 1, `{"value":5}`))
	bus.Publish(events.New(events.PresetPressed, 2, `{"value":0}`))
	if n := strings.Count(out.String(), "\n"); n != 2 {
		t.Errorf("forwarded %d frames, want 2", n)
	}

	cancel()
	bus.Publish(events.New(events.VolumeChanged, 3, `{"value":6}`))
	if n := strings.Count(out.String(), "\n"); n != 2 {
		t.Errorf("forwarded after cancel: %q", out.String())
	}
	for _, entry := range events.Catalog() {
		if bus.Count(entry.Type) != 0 {
			t.Errorf("Count(%v) = %d after cancel", entry.Type, bus.Count(entry.Type))
		}
	}
}
