package is31fl3737

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/flavioheleno/retropanel/pwmimage"
	"periph.io/x/conn/v3/i2c"
)

// Opts is the configuration for the IS31FL3737 chip.
type Opts struct {
	// GlobalCurrent scales every LED (0-255). Used as given.
	GlobalCurrent uint8

	// ResetDelay is the settle time after the read-triggered reset
	// (default: 10ms).
	ResetDelay time.Duration
}

// Dev is the device handle for one IS31FL3737 chip.
type Dev struct {
	// Communication
	c     i2c.Dev
	page  byte // Last page selected, valid when paged is set
	paged bool

	// Pixel buffers
	buffer [Width * Height]byte // Logical 12x12 duty cycles
	regs   [PWMRegisters]byte   // Register image being built
	last   [PWMRegisters]byte   // Register image last pushed
	synced bool                 // last reflects the chip contents
	chunk  [ChunkSize + 1]byte

	// Settings
	globalCurrent uint8

	// State
	initialized bool
	halted      bool
}

// New opens an IS31FL3737 on the given bus and runs the initialization
// sequence: read-triggered software reset, enable every LED, leave software
// shutdown, set the global current, clear and select the PWM page.
//
// opts can be nil to use defaults (global current 128, 10ms reset delay).
func New(bus i2c.Bus, addr uint16, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{GlobalCurrent: DefaultGlobalCurrent}
	}
	if !validAddr(addr) {
		return nil, fmt.Errorf("is31fl3737: invalid address %#02x (want 0x50, 0x55, 0x5A or 0x5F)", addr)
	}

	d := &Dev{
		c:             i2c.Dev{Bus: bus, Addr: addr},
		globalCurrent: opts.GlobalCurrent,
	}

	if err := d.init(opts); err != nil {
		return nil, err
	}

	return d, nil
}

func validAddr(addr uint16) bool {
	switch addr {
	case AddrGND, AddrSCL, AddrSDA, AddrVCC:
		return true
	}
	return false
}

// init sends the initialization sequence to the chip.
func (d *Dev) init(opts *Opts) error {
	delay := opts.ResetDelay
	if delay == 0 {
		delay = 10 * time.Millisecond
	}

	if err := d.reset(); err != nil {
		return err
	}
	time.Sleep(delay)

	// Enable every LED (24 registers of 8 bits each)
	if err := d.selectPage(PageLEDControl); err != nil {
		return err
	}
	enable := make([]byte, 1+ledControlCount)
	enable[0] = ledControlFirst
	for i := 1; i < len(enable); i++ {
		enable[i] = 0xFF
	}
	if err := d.c.Tx(enable, nil); err != nil {
		return fmt.Errorf("is31fl3737: failed to enable LEDs: %w", err)
	}

	// Leave software shutdown and apply the global current
	if err := d.selectPage(PageFunction); err != nil {
		return err
	}
	if err := d.writeReg(regConfig, configSSD); err != nil {
		return fmt.Errorf("is31fl3737: failed to configure: %w", err)
	}
	if err := d.writeReg(regGlobalCurrent, d.globalCurrent); err != nil {
		return fmt.Errorf("is31fl3737: failed to set global current: %w", err)
	}

	// The reset cleared the PWM registers
	d.Clear()
	d.synced = true

	if err := d.selectPage(PagePWM); err != nil {
		return err
	}

	d.initialized = true
	return nil
}

// reset triggers a software reset by reading the function page reset register.
func (d *Dev) reset() error {
	if err := d.selectPage(PageFunction); err != nil {
		return err
	}
	var r [1]byte
	if err := d.c.Tx([]byte{regReset}, r[:]); err != nil {
		return fmt.Errorf("is31fl3737: failed to reset: %w", err)
	}
	return nil
}

// selectPage unlocks the command register and selects page.
func (d *Dev) selectPage(page byte) error {
	if err := d.c.Tx([]byte{regUnlock, unlockKey}, nil); err != nil {
		d.paged = false
		return fmt.Errorf("is31fl3737: failed to unlock command register: %w", err)
	}
	if err := d.c.Tx([]byte{regCommand, page}, nil); err != nil {
		d.paged = false
		return fmt.Errorf("is31fl3737: failed to select page %d: %w", page, err)
	}
	d.page = page
	d.paged = true
	return nil
}

// writeReg writes a single register on the selected page.
func (d *Dev) writeReg(reg, value byte) error {
	return d.c.Tx([]byte{reg, value}, nil)
}

// RegisterAddress returns the PWM register for the logical pixel (x, y).
//
// CS7-CS12 sit two register columns further than their index, so x values
// 6 to 11 land on register columns 8 to 13.
func RegisterAddress(x, y int) (reg int, ok bool) {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return 0, false
	}
	cs := x + 1
	sw := y + 1
	if cs >= 7 && cs <= 12 {
		cs += 2
	}
	return (sw-1)*RegisterStride + (cs - 1), true
}

// Initialized reports whether the initialization sequence completed.
func (d *Dev) Initialized() bool {
	return d.initialized
}

// SetPixel sets the duty cycle of the LED at (x, y) in the buffer.
// Out-of-range coordinates and uninitialized devices are ignored.
func (d *Dev) SetPixel(x, y int, brightness uint8) {
	if !d.initialized || x < 0 || x >= Width || y < 0 || y >= Height {
		return
	}
	d.buffer[y*Width+x] = brightness
}

// Pixel returns the buffered duty cycle of the LED at (x, y).
func (d *Dev) Pixel(x, y int) uint8 {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return 0
	}
	return d.buffer[y*Width+x]
}

// Clear turns every LED off in the buffer.
func (d *Dev) Clear() {
	d.Fill(0)
}

// Fill sets every LED in the buffer to v.
func (d *Dev) Fill(v uint8) {
	for i := range d.buffer {
		d.buffer[i] = v
	}
}

// Show pushes the buffer to the chip PWM registers.
//
// Only 64-byte chunks that differ from the last successful push are sent.
// Uninitialized devices ignore the call.
func (d *Dev) Show() error {
	if d.halted {
		return errors.New("is31fl3737: halted")
	}
	if !d.initialized {
		return nil
	}

	d.buildRegisters()
	dirty := d.calculateDiff()
	if dirty == 0 {
		return nil
	}

	if !d.paged || d.page != PagePWM {
		if err := d.selectPage(PagePWM); err != nil {
			return err
		}
	}

	for i := 0; i*ChunkSize < PWMRegisters; i++ {
		if dirty&(1<<i) == 0 {
			continue
		}
		start := i * ChunkSize
		end := start + ChunkSize
		if end > PWMRegisters {
			end = PWMRegisters
		}
		d.chunk[0] = byte(start)
		n := copy(d.chunk[1:], d.regs[start:end])
		if err := d.c.Tx(d.chunk[:n+1], nil); err != nil {
			d.synced = false
			return fmt.Errorf("is31fl3737: failed to write PWM chunk at %#02x: %w", start, err)
		}
		copy(d.last[start:end], d.regs[start:end])
	}
	d.synced = true
	return nil
}

// Refresh forces the next Show to rewrite every chunk.
func (d *Dev) Refresh() {
	d.synced = false
}

// buildRegisters maps the logical buffer into the register image.
func (d *Dev) buildRegisters() {
	for i := range d.regs {
		d.regs[i] = 0
	}
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			reg, _ := RegisterAddress(x, y)
			d.regs[reg] = d.buffer[y*Width+x]
		}
	}
}

// calculateDiff returns a bitmask of chunks whose registers changed since
// the last push. Every chunk is dirty when the chip state is unknown.
func (d *Dev) calculateDiff() (dirty uint) {
	for i := 0; i*ChunkSize < PWMRegisters; i++ {
		start := i * ChunkSize
		end := start + ChunkSize
		if end > PWMRegisters {
			end = PWMRegisters
		}
		if !d.synced {
			dirty |= 1 << i
			continue
		}
		for j := start; j < end; j++ {
			if d.regs[j] != d.last[j] {
				dirty |= 1 << i
				break
			}
		}
	}
	return dirty
}

// GlobalCurrent returns the cached global current.
func (d *Dev) GlobalCurrent() uint8 {
	return d.globalCurrent
}

// SetGlobalCurrent sets the chip-wide current scale (0-255).
//
// The value is cached and, once initialized, written to the function page.
// The PWM page is selected again afterwards.
func (d *Dev) SetGlobalCurrent(v uint8) error {
	if d.halted {
		return errors.New("is31fl3737: halted")
	}
	d.globalCurrent = v
	if !d.initialized {
		return nil
	}
	if err := d.selectPage(PageFunction); err != nil {
		return err
	}
	if err := d.writeReg(regGlobalCurrent, v); err != nil {
		return fmt.Errorf("is31fl3737: failed to set global current: %w", err)
	}
	return d.selectPage(PagePWM)
}

// ColorModel returns the color model of the chip.
func (d *Dev) ColorModel() color.Model {
	return pwmimage.LevelModel
}

// Bounds returns the logical 12×12 bounds.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, Width, Height)
}

// Draw renders src into the buffer and pushes it to the chip.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if d.halted {
		return errors.New("is31fl3737: halted")
	}
	r := dst.Intersect(d.Bounds())
	if r.Empty() {
		return nil
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := src.At(sp.X+x-dst.Min.X, sp.Y+y-dst.Min.Y)
			d.SetPixel(x, y, pwmimage.LevelModel.Convert(c).(pwmimage.Level).V)
		}
	}
	return d.Show()
}

// Halt puts the chip in software shutdown.
// After calling Halt, the chip will not respond to further updates
// until a new device is opened.
func (d *Dev) Halt() error {
	d.halted = true
	if !d.initialized {
		return nil
	}
	if err := d.selectPage(PageFunction); err != nil {
		return err
	}
	return d.writeReg(regConfig, 0x00)
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("is31fl3737.Dev{%#02x}", d.c.Addr)
}
