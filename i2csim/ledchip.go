package i2csim

import (
	"image"
	"sync"

	"github.com/flavioheleno/retropanel/is31fl3737"
	"github.com/flavioheleno/retropanel/pwmimage"
)

// IS31FL3737 register map as seen on the wire.
const (
	ledRegCommand = 0xFD
	ledRegUnlock  = 0xFE
	ledUnlockKey  = 0xC5

	ledRegConfig  = 0x00
	ledRegCurrent = 0x01
	ledRegReset   = 0x11

	ledPages = 4
)

// LEDChip emulates one IS31FL3737.
type LEDChip struct {
	mu       sync.Mutex
	pages    [ledPages][256]byte
	page     byte
	unlocked bool
	resets   int
	bursts   int
}

func newLEDChip() *LEDChip {
	return &LEDChip{}
}

func (c *LEDChip) tx(w, r []byte) error {
	if len(w) == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	reg := w[0]
	data := w[1:]
	switch reg {
	case ledRegUnlock:
		if len(data) > 0 {
			c.unlocked = data[0] == ledUnlockKey
		}
		for i := range r {
			r[i] = 0
		}
		return nil
	case ledRegCommand:
		if len(data) > 0 {
			// A page write without the unlock key is ignored; the key is
			// consumed either way.
			if c.unlocked && data[0] < ledPages {
				c.page = data[0]
			}
			c.unlocked = false
		}
		for i := range r {
			r[i] = c.page
		}
		return nil
	}

	if len(data) > 0 && c.page == is31fl3737.PagePWM {
		c.bursts++
	}
	for i, v := range data {
		c.pages[c.page][byte(int(reg)+i)] = v
	}
	for i := range r {
		a := byte(int(reg) + i)
		if c.page == is31fl3737.PageFunction && a == ledRegReset {
			c.reset()
		}
		r[i] = c.pages[c.page][a]
	}
	return nil
}

// reset restores the power-on register values. The selected page is kept.
func (c *LEDChip) reset() {
	for p := range c.pages {
		clear(c.pages[p][:])
	}
	c.resets++
}

// Page returns the selected register page.
func (c *LEDChip) Page() byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// Register returns register reg of page.
func (c *LEDChip) Register(page, reg byte) byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if page >= ledPages {
		return 0
	}
	return c.pages[page][reg]
}

// GlobalCurrent returns the global current register.
func (c *LEDChip) GlobalCurrent() uint8 {
	return c.Register(is31fl3737.PageFunction, ledRegCurrent)
}

// Shutdown reports whether the chip is in software shutdown.
func (c *LEDChip) Shutdown() bool {
	return c.Register(is31fl3737.PageFunction, ledRegConfig)&0x01 == 0
}

// Resets returns the number of read-triggered resets.
func (c *LEDChip) Resets() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resets
}

// Bursts returns the number of writes to the PWM page.
func (c *LEDChip) Bursts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bursts
}

// Enabled reports whether the LED at the logical pixel (x, y) is switched
// on in the LED control page.
func (c *LEDChip) Enabled(x, y int) bool {
	reg, ok := is31fl3737.RegisterAddress(x, y)
	if !ok {
		return false
	}
	b := c.Register(is31fl3737.PageLEDControl, byte(reg/8))
	return b&(1<<(reg%8)) != 0
}

// Pixel returns the PWM duty cycle of the logical pixel (x, y).
func (c *LEDChip) Pixel(x, y int) uint8 {
	reg, ok := is31fl3737.RegisterAddress(x, y)
	if !ok {
		return 0
	}
	return c.Register(is31fl3737.PagePWM, byte(reg))
}

// Lit returns the perceived level of the logical pixel (x, y): its duty
// cycle scaled by the global current, or 0 when the LED is off or the chip
// is shut down.
func (c *LEDChip) Lit(x, y int) uint8 {
	if c.Shutdown() || !c.Enabled(x, y) {
		return 0
	}
	return uint8(int(c.Pixel(x, y)) * int(c.GlobalCurrent()) / 255)
}

// Image returns the lit levels of the 12×12 logical matrix.
func (c *LEDChip) Image() *pwmimage.Frame {
	f := pwmimage.NewFrame(image.Rect(0, 0, is31fl3737.Width, is31fl3737.Height))
	for y := 0; y < is31fl3737.Height; y++ {
		for x := 0; x < is31fl3737.Width; x++ {
			f.SetLevel(x, y, pwmimage.Level{V: c.Lit(x, y)})
		}
	}
	return f
}
