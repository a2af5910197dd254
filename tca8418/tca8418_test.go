package tca8418

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"
)

// regBus is a register-level fake of the chip with a scripted FIFO.
type regBus struct {
	regs   [0x30]byte
	fifo   []byte
	writes [][]byte
	fail   bool
}

func (b *regBus) String() string                    { return "regbus" }
func (b *regBus) SetSpeed(f physic.Frequency) error { return nil }
func (b *regBus) Tx(addr uint16, w, r []byte) error {
	if b.fail {
		return errors.New("nack")
	}
	if len(w) == 0 {
		return nil
	}
	if len(r) == 0 {
		b.writes = append(b.writes, append([]byte(nil), w...))
		if len(w) == 2 {
			b.regs[w[0]] = w[1]
		}
		return nil
	}
	switch w[0] {
	case RegKeyEvent:
		if len(b.fifo) == 0 {
			r[0] = 0
			return nil
		}
		r[0] = b.fifo[0]
		b.fifo = b.fifo[1:]
	case RegKeyLckEC:
		r[0] = byte(len(b.fifo)) & countMask
	default:
		r[0] = b.regs[w[0]]
	}
	return nil
}

func TestDecodeKeyEvent(t *testing.T) {
	tests := []struct {
		name string
		in   byte
		want KeyEvent
	}{
		{"press key 1", 0x81, KeyEvent{Pressed: true, Row: 0, Col: 0}},
		{"release key 1", 0x01, KeyEvent{Pressed: false, Row: 0, Col: 0}},
		{"press key 12", 0x8C, KeyEvent{Pressed: true, Row: 1, Col: 1}},
		{"release key 80", 0x50, KeyEvent{Pressed: false, Row: 7, Col: 9}},
		{"zero", 0x00, KeyEvent{Row: Invalid, Col: Invalid}},
		{"press zero", 0x80, KeyEvent{Pressed: true, Row: Invalid, Col: Invalid}},
		{"GPI event", 0xDB, KeyEvent{Pressed: true, Row: Invalid, Col: Invalid}},
		{"code 81", 0x51, KeyEvent{Row: Invalid, Col: Invalid}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeKeyEvent(tt.in); got != tt.want {
				t.Errorf("DecodeKeyEvent(%#02x) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestKeyEventRoundTrip(t *testing.T) {
	for code := 1; code <= MaxEvents; code++ {
		for _, press := range []byte{0, 0x80} {
			b := byte(code) | press
			ev := DecodeKeyEvent(b)
			if !ev.Valid() {
				t.Fatalf("DecodeKeyEvent(%#02x) invalid", b)
			}
			if got := EncodeKeyEvent(ev); got != b {
				t.Errorf("EncodeKeyEvent(DecodeKeyEvent(%#02x)) = %#02x", b, got)
			}
		}
	}
}

func TestEncodeKeyEventInvalid(t *testing.T) {
	if got := EncodeKeyEvent(KeyEvent{Row: Invalid, Col: Invalid}); got != 0 {
		t.Errorf("EncodeKeyEvent(invalid) = %#02x, want 0", got)
	}
}

func TestMatrixMasks(t *testing.T) {
	tests := []struct {
		rows, cols                 int
		wantRow, wantLow, wantHigh byte
	}{
		{4, 10, 0x0F, 0xFF, 0x03},
		{8, 8, 0xFF, 0xFF, 0x00},
		{3, 4, 0x07, 0x0F, 0x00},
		{1, 9, 0x01, 0xFF, 0x01},
	}

	for _, tt := range tests {
		row, low, high := matrixMasks(tt.rows, tt.cols)
		if row != tt.wantRow || low != tt.wantLow || high != tt.wantHigh {
			t.Errorf("matrixMasks(%d, %d) = (%#02x, %#02x, %#02x), want (%#02x, %#02x, %#02x)",
				tt.rows, tt.cols, row, low, high, tt.wantRow, tt.wantLow, tt.wantHigh)
		}
	}
}

func TestNewSetupSequence(t *testing.T) {
	bus := &regBus{fifo: []byte{0x81, 0x01}}
	rec := &i2ctest.Record{Bus: bus}
	dev, err := New(rec, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	want := [][]byte{
		{RegGPIODir1, 0x00}, {RegGPIODir2, 0x00}, {RegGPIODir3, 0x00},
		{RegGPIEM1, 0xFF}, {RegGPIEM2, 0xFF}, {RegGPIEM3, 0xFF},
		{RegKPGPIO1, 0x0F}, {RegKPGPIO2, 0xFF}, {RegKPGPIO3, 0x03},
		{RegCFG, cfgKEIEN},
		{RegIntStat, intStatClear},
	}
	if len(bus.writes) != len(want) {
		t.Fatalf("len(writes) = %d, want %d", len(bus.writes), len(want))
	}
	for i := range want {
		if !bytes.Equal(bus.writes[i], want[i]) {
			t.Errorf("writes[%d] = % X, want % X", i, bus.writes[i], want[i])
		}
	}
	if len(bus.fifo) != 0 {
		t.Errorf("FIFO not flushed, %d events left", len(bus.fifo))
	}
	for _, op := range rec.Ops {
		if op.Addr != DefaultAddr {
			t.Errorf("op address = %#x, want %#x", op.Addr, DefaultAddr)
		}
	}
	if got := dev.String(); got != "tca8418.Dev{0x34, 4x10}" {
		t.Errorf("String() = %q", got)
	}
}

func TestNewMatrixTooLarge(t *testing.T) {
	tests := []struct {
		name string
		opts *Opts
	}{
		{"nine rows", &Opts{Rows: 9, Cols: 10}},
		{"eleven cols", &Opts{Rows: 4, Cols: 11}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(&regBus{}, tt.opts)
			if !errors.Is(err, ErrMatrixSize) {
				t.Errorf("New() error = %v, want ErrMatrixSize", err)
			}
		})
	}
}

func TestNewDetectFailure(t *testing.T) {
	if _, err := New(&regBus{fail: true}, nil); err == nil {
		t.Error("New() should fail when the device does not answer")
	}
}

func TestPoll(t *testing.T) {
	bus := &regBus{}
	var logs bytes.Buffer
	dev, err := New(bus, &Opts{Logger: log.New(&logs, "", 0)})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	bus.fifo = []byte{0x8C, 0xDB, 0x0C}
	bus.writes = nil
	events, err := dev.Poll(0)
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	want := []KeyEvent{{Pressed: true, Row: 1, Col: 1}, {Pressed: false, Row: 1, Col: 1}}
	if len(events) != len(want) {
		t.Fatalf("Poll() = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("Poll()[%d] = %+v, want %+v", i, events[i], want[i])
		}
	}
	if !strings.Contains(logs.String(), "discarding event 0xdb") {
		t.Errorf("invalid event not logged: %q", logs.String())
	}
	if len(bus.writes) != 1 || !bytes.Equal(bus.writes[0], []byte{RegIntStat, intStatClear}) {
		t.Errorf("Poll() writes = %v, want INT_STAT clear", bus.writes)
	}
}

func TestPollLimit(t *testing.T) {
	bus := &regBus{}
	dev, err := New(bus, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	bus.fifo = []byte{0x81, 0x01, 0x82, 0x02}
	events, err := dev.Poll(3)
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if len(events) != 3 {
		t.Errorf("len(Poll(3)) = %d, want 3", len(events))
	}
	if n, _ := dev.Available(); n != 1 {
		t.Errorf("Available() = %d, want 1", n)
	}
}

func TestPollEmpty(t *testing.T) {
	dev, err := New(&regBus{}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	events, err := dev.Poll(0)
	if err != nil || len(events) != 0 {
		t.Errorf("Poll() = (%v, %v), want (nil, nil)", events, err)
	}
}
