// Package tinyi2c exposes a TinyGo drivers.I2C as a periph i2c.Bus, so the
// panel drivers run unchanged on microcontrollers.
//
// The TinyGo bus must be configured (pins and frequency) before use:
//
//	machine.I2C0.Configure(machine.I2CConfig{Frequency: 400 * machine.KHz})
//	bus := tinyi2c.New(machine.I2C0)
//	dev, err := is31fl3737.New(bus, is31fl3737.AddrGND, nil)
package tinyi2c

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"tinygo.org/x/drivers"
)

var _ i2c.Bus = (*Bus)(nil)

// baudSetter is implemented by TinyGo machine.I2C.
type baudSetter interface {
	SetBaudRate(br uint32) error
}

// Bus adapts a drivers.I2C.
type Bus struct {
	i2c drivers.I2C
}

// New wraps bus.
func New(bus drivers.I2C) *Bus {
	return &Bus{i2c: bus}
}

// Tx implements i2c.Bus.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	if err := b.i2c.Tx(addr, w, r); err != nil {
		return fmt.Errorf("tinyi2c: tx %#02x: %w", addr, err)
	}
	return nil
}

// SetSpeed implements i2c.Bus. Buses without a baud rate setting keep the
// frequency they were configured with.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	s, ok := b.i2c.(baudSetter)
	if !ok {
		return nil
	}
	hz := f / physic.Hertz
	if hz <= 0 || hz > 1<<32-1 {
		return fmt.Errorf("tinyi2c: invalid speed %s", f)
	}
	if err := s.SetBaudRate(uint32(hz)); err != nil {
		return fmt.Errorf("tinyi2c: set speed: %w", err)
	}
	return nil
}

func (b *Bus) String() string {
	return "tinyi2c"
}
