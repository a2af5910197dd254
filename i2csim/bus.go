// Package i2csim emulates the panel's I²C peripherals on a periph i2c.Bus.
//
// A Bus routes transactions by address to emulated IS31FL3737 LED chips and
// a TCA8418 keypad controller. The emulation covers the registers the
// drivers use: the page-select unlock sequence, auto-increment writes, the
// read-triggered reset and the keypad event FIFO. It is used by tests and
// by the simulator binary.
package i2csim

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

var _ i2c.BusCloser = (*Bus)(nil)

var (
	// ErrNoDevice is returned for transactions to an address nothing
	// answers on.
	ErrNoDevice = errors.New("i2csim: no device at address")
	// ErrClosed is returned once the bus is closed.
	ErrClosed = errors.New("i2csim: bus closed")
)

// device is one emulated peripheral.
type device interface {
	tx(w, r []byte) error
}

// Bus is an emulated I²C bus. It is safe for concurrent use.
type Bus struct {
	mu     sync.Mutex
	devs   map[uint16]device
	faults map[uint16]error
	speed  physic.Frequency
	txs    int
	closed bool
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{
		devs:   map[uint16]device{},
		faults: map[uint16]error{},
		speed:  400 * physic.KiloHertz,
	}
}

// AddLEDChip attaches an IS31FL3737 at addr, replacing any device there.
func (b *Bus) AddLEDChip(addr uint16) *LEDChip {
	c := newLEDChip()
	b.attach(addr, c)
	return c
}

// AddKeypad attaches a TCA8418 at addr, replacing any device there.
func (b *Bus) AddKeypad(addr uint16) *Keypad {
	k := newKeypad()
	b.attach(addr, k)
	return k
}

func (b *Bus) attach(addr uint16, d device) {
	b.mu.Lock()
	b.devs[addr] = d
	b.mu.Unlock()
}

// Remove detaches the device at addr.
func (b *Bus) Remove(addr uint16) {
	b.mu.Lock()
	delete(b.devs, addr)
	b.mu.Unlock()
}

// SetFault makes every transaction to addr fail with err. A nil err
// clears the fault.
func (b *Bus) SetFault(addr uint16, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.faults, addr)
		return
	}
	b.faults[addr] = err
}

// Addresses returns the attached addresses in ascending order.
func (b *Bus) Addresses() []uint16 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]uint16, 0, len(b.devs))
	for a := range b.devs {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Transactions returns the number of transactions attempted.
func (b *Bus) Transactions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.txs
}

// Tx implements i2c.Bus.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.txs++
	if b.closed {
		return ErrClosed
	}
	if err := b.faults[addr]; err != nil {
		return err
	}
	d, ok := b.devs[addr]
	if !ok {
		return fmt.Errorf("%w %#02x", ErrNoDevice, addr)
	}
	return d.tx(w, r)
}

// SetSpeed implements i2c.Bus.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	if f <= 0 {
		return fmt.Errorf("i2csim: invalid speed %s", f)
	}
	b.mu.Lock()
	b.speed = f
	b.mu.Unlock()
	return nil
}

// Speed returns the last speed set.
func (b *Bus) Speed() physic.Frequency {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.speed
}

// Close implements i2c.BusCloser.
func (b *Bus) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	return nil
}

func (b *Bus) String() string {
	return "i2csim"
}
