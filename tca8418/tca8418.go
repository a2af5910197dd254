// Package tca8418 reads key events from a TCA8418 keypad scan controller via
// I²C.
//
// The chip scans up to 8 rows × 10 columns and queues press and release
// events in a 10-deep FIFO. Each event is one byte: bit 7 set for a press,
// bits 6-0 the 1-based key number (row*10 + col + 1).
package tca8418

import (
	"errors"
	"fmt"
	"io"
	"log"

	"periph.io/x/conn/v3/i2c"
)

// DefaultAddr is the fixed I²C address of the TCA8418.
const DefaultAddr uint16 = 0x34

// Registers used by the driver.
const (
	RegCFG      = 0x01
	RegIntStat  = 0x02
	RegKeyLckEC = 0x03
	RegKeyEvent = 0x04 // KEY_EVENT_A, FIFO head
	RegKPGPIO1  = 0x1D
	RegKPGPIO2  = 0x1E
	RegKPGPIO3  = 0x1F
	RegGPIEM1   = 0x20
	RegGPIEM2   = 0x21
	RegGPIEM3   = 0x22
	RegGPIODir1 = 0x23
	RegGPIODir2 = 0x24
	RegGPIODir3 = 0x25

	cfgKEIEN     = 0x01 // Key event interrupt enable
	intStatClear = 0x03 // K_INT | GPI_INT
	countMask    = 0x0F
)

// Matrix limits.
const (
	MaxRows   = 8
	MaxCols   = 10
	MaxEvents = 80 // Highest matrix key number
	FIFODepth = 10

	flushLimit = 100
)

// Invalid marks the row and column of an undecodable event.
const Invalid uint8 = 0xFF

// ErrMatrixSize is returned when the requested matrix exceeds 8×10.
var ErrMatrixSize = errors.New("tca8418: matrix size exceeds 8x10")

// KeyEvent is a decoded FIFO entry.
type KeyEvent struct {
	Pressed bool
	Row     uint8
	Col     uint8
}

// Valid reports whether the event decoded to a matrix key.
func (e KeyEvent) Valid() bool {
	return e.Row != Invalid && e.Col != Invalid
}

// DecodeKeyEvent decodes one FIFO byte.
//
// Bit 7 set means press (verified on hardware, some vendor headers document
// the opposite). Codes outside 1..80, including GPI events, decode to
// Invalid row and column.
func DecodeKeyEvent(b byte) KeyEvent {
	ev := KeyEvent{Pressed: b&0x80 != 0}
	code := b & 0x7F
	if code < 1 || code > MaxEvents {
		ev.Row, ev.Col = Invalid, Invalid
		return ev
	}
	k := code - 1
	ev.Row = k / MaxCols
	ev.Col = k % MaxCols
	return ev
}

// EncodeKeyEvent is the inverse of DecodeKeyEvent. Invalid events encode to 0.
func EncodeKeyEvent(ev KeyEvent) byte {
	if ev.Row >= MaxRows || ev.Col >= MaxCols {
		return 0
	}
	b := ev.Row*MaxCols + ev.Col + 1
	if ev.Pressed {
		b |= 0x80
	}
	return b
}

// Opts is the configuration for the TCA8418.
type Opts struct {
	Addr   uint16      // I²C address (default: 0x34)
	Rows   int         // Scanned rows (default: 4, max 8)
	Cols   int         // Scanned columns (default: 10, max 10)
	Logger *log.Logger // Receives discarded events (default: silent)
}

// Dev is the device handle for a TCA8418.
type Dev struct {
	c      i2c.Dev
	rows   int
	cols   int
	logger *log.Logger
}

// New detects and configures a TCA8418 on the given bus.
//
// The sequence is: detect (read CFG and INT_STAT), configure the matrix,
// flush up to 100 stale events, clear INT_STAT.
//
// opts can be nil to use defaults (0x34, 4×10 matrix).
func New(bus i2c.Bus, opts *Opts) (*Dev, error) {
	o := Opts{Addr: DefaultAddr, Rows: 4, Cols: 10}
	if opts != nil {
		o = *opts
		if o.Addr == 0 {
			o.Addr = DefaultAddr
		}
		if o.Rows == 0 {
			o.Rows = 4
		}
		if o.Cols == 0 {
			o.Cols = 10
		}
	}
	if o.Rows < 0 || o.Rows > MaxRows || o.Cols < 0 || o.Cols > MaxCols {
		return nil, ErrMatrixSize
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard, "", 0)
	}

	d := &Dev{
		c:      i2c.Dev{Bus: bus, Addr: o.Addr},
		rows:   o.Rows,
		cols:   o.Cols,
		logger: o.Logger,
	}
	if err := d.detect(); err != nil {
		return nil, err
	}
	if err := d.configureMatrix(); err != nil {
		return nil, err
	}
	if err := d.Flush(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dev) readReg(reg byte) (byte, error) {
	var r [1]byte
	if err := d.c.Tx([]byte{reg}, r[:]); err != nil {
		return 0, err
	}
	return r[0], nil
}

func (d *Dev) writeReg(reg, value byte) error {
	return d.c.Tx([]byte{reg, value}, nil)
}

func (d *Dev) detect() error {
	if _, err := d.readReg(RegCFG); err != nil {
		return fmt.Errorf("tca8418: failed to detect device at %#02x: %w", d.c.Addr, err)
	}
	if _, err := d.readReg(RegIntStat); err != nil {
		return fmt.Errorf("tca8418: failed to read interrupt status: %w", err)
	}
	return nil
}

// matrixMasks returns the KP_GPIO masks that put pins in the key matrix.
func matrixMasks(rows, cols int) (rowMask, colLow, colHigh byte) {
	for r := 0; r < rows; r++ {
		rowMask |= 1 << r
	}
	for c := 0; c < cols && c < 8; c++ {
		colLow |= 1 << c
	}
	for c := 8; c < cols; c++ {
		colHigh |= 1 << (c - 8)
	}
	return rowMask, colLow, colHigh
}

func (d *Dev) configureMatrix() error {
	for _, reg := range []byte{RegGPIODir1, RegGPIODir2, RegGPIODir3} {
		if err := d.writeReg(reg, 0x00); err != nil {
			return fmt.Errorf("tca8418: failed to set GPIO direction: %w", err)
		}
	}
	for _, reg := range []byte{RegGPIEM1, RegGPIEM2, RegGPIEM3} {
		if err := d.writeReg(reg, 0xFF); err != nil {
			return fmt.Errorf("tca8418: failed to enable GPI event mode: %w", err)
		}
	}

	rowMask, colLow, colHigh := matrixMasks(d.rows, d.cols)
	if err := d.writeReg(RegKPGPIO1, rowMask); err != nil {
		return fmt.Errorf("tca8418: failed to set row mask: %w", err)
	}
	if err := d.writeReg(RegKPGPIO2, colLow); err != nil {
		return fmt.Errorf("tca8418: failed to set column mask: %w", err)
	}
	if d.cols > 8 {
		if err := d.writeReg(RegKPGPIO3, colHigh); err != nil {
			return fmt.Errorf("tca8418: failed to set column mask: %w", err)
		}
	}

	if err := d.writeReg(RegCFG, cfgKEIEN); err != nil {
		return fmt.Errorf("tca8418: failed to enable key event interrupts: %w", err)
	}
	return nil
}

// Flush discards up to 100 queued events and clears INT_STAT.
func (d *Dev) Flush() error {
	n := 0
	for ; n < flushLimit; n++ {
		b, err := d.readReg(RegKeyEvent)
		if err != nil {
			return fmt.Errorf("tca8418: failed to flush events: %w", err)
		}
		if b == 0 {
			break
		}
	}
	if n > 0 {
		d.logger.Printf("tca8418: flushed %d pending events", n)
	}
	return d.ClearInterrupts()
}

// ClearInterrupts clears the key and GPI interrupt flags.
func (d *Dev) ClearInterrupts() error {
	if err := d.writeReg(RegIntStat, intStatClear); err != nil {
		return fmt.Errorf("tca8418: failed to clear interrupt status: %w", err)
	}
	return nil
}

// Available returns the number of queued events.
func (d *Dev) Available() (int, error) {
	b, err := d.readReg(RegKeyLckEC)
	if err != nil {
		return 0, fmt.Errorf("tca8418: failed to read event count: %w", err)
	}
	return int(b & countMask), nil
}

// ReadEvent pops one event from the FIFO. The event may be invalid.
func (d *Dev) ReadEvent() (KeyEvent, error) {
	b, err := d.readReg(RegKeyEvent)
	if err != nil {
		return KeyEvent{Row: Invalid, Col: Invalid}, fmt.Errorf("tca8418: failed to read event: %w", err)
	}
	return DecodeKeyEvent(b), nil
}

// Poll drains at most max events (10 when max <= 0) and clears INT_STAT.
// Invalid events are logged and dropped.
func (d *Dev) Poll(max int) ([]KeyEvent, error) {
	if max <= 0 {
		max = FIFODepth
	}
	n, err := d.Available()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	if n > max {
		n = max
	}

	events := make([]KeyEvent, 0, n)
	for i := 0; i < n; i++ {
		b, err := d.readReg(RegKeyEvent)
		if err != nil {
			return events, fmt.Errorf("tca8418: failed to read event: %w", err)
		}
		ev := DecodeKeyEvent(b)
		if !ev.Valid() {
			d.logger.Printf("tca8418: discarding event %#02x", b)
			continue
		}
		events = append(events, ev)
	}
	return events, d.ClearInterrupts()
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("tca8418.Dev{%#02x, %dx%d}", d.c.Addr, d.rows, d.cols)
}
