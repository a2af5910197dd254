package i2csim

import (
	"sync"

	"github.com/flavioheleno/retropanel/tca8418"
)

const (
	intKey      = 0x01 // K_INT
	intOverflow = 0x08 // OVR_FLOW_INT
)

// Keypad emulates a TCA8418 with its 10-deep event FIFO.
type Keypad struct {
	mu   sync.Mutex
	regs [0x30]byte
	fifo []byte
	held map[[2]uint8]bool
}

func newKeypad() *Keypad {
	return &Keypad{held: map[[2]uint8]bool{}}
}

func (k *Keypad) tx(w, r []byte) error {
	if len(w) == 0 {
		return nil
	}
	k.mu.Lock()
	defer k.mu.Unlock()

	reg := w[0]
	for i, v := range w[1:] {
		k.write(reg+byte(i), v)
	}
	for i := range r {
		r[i] = k.read(reg + byte(i))
	}
	return nil
}

func (k *Keypad) write(reg, v byte) {
	if int(reg) >= len(k.regs) {
		return
	}
	if reg == tca8418.RegIntStat {
		k.regs[reg] &^= v
		return
	}
	k.regs[reg] = v
}

func (k *Keypad) read(reg byte) byte {
	switch {
	case reg == tca8418.RegKeyLckEC:
		return byte(len(k.fifo)) & 0x0F
	case reg == tca8418.RegKeyEvent:
		if len(k.fifo) == 0 {
			return 0
		}
		b := k.fifo[0]
		k.fifo = k.fifo[1:]
		return b
	case int(reg) < len(k.regs):
		return k.regs[reg]
	}
	return 0
}

// push queues a raw event byte. A full FIFO sets the overflow flag and
// drops the event.
func (k *Keypad) push(b byte) bool {
	if len(k.fifo) >= tca8418.FIFODepth {
		k.regs[tca8418.RegIntStat] |= intOverflow
		return false
	}
	k.fifo = append(k.fifo, b)
	k.regs[tca8418.RegIntStat] |= intKey
	return true
}

// inMatrix reports whether (row, col) is configured as a key.
func (k *Keypad) inMatrix(row, col uint8) bool {
	if row >= tca8418.MaxRows || col >= tca8418.MaxCols {
		return false
	}
	if k.regs[tca8418.RegKPGPIO1]&(1<<row) == 0 {
		return false
	}
	if col < 8 {
		return k.regs[tca8418.RegKPGPIO2]&(1<<col) != 0
	}
	return k.regs[tca8418.RegKPGPIO3]&(1<<(col-8)) != 0
}

// Press closes the key at (row, col). It reports whether an event was
// queued: keys outside the configured matrix, keys already held and a
// full FIFO queue nothing.
func (k *Keypad) Press(row, col uint8) bool {
	return k.key(row, col, true)
}

// Release opens the key at (row, col).
func (k *Keypad) Release(row, col uint8) bool {
	return k.key(row, col, false)
}

func (k *Keypad) key(row, col uint8, pressed bool) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	if !k.inMatrix(row, col) {
		return false
	}
	pos := [2]uint8{row, col}
	if k.held[pos] == pressed {
		return false
	}
	if !k.push(tca8418.EncodeKeyEvent(tca8418.KeyEvent{Pressed: pressed, Row: row, Col: col})) {
		return false
	}
	k.held[pos] = pressed
	return true
}

// Inject queues a raw FIFO byte, valid or not.
func (k *Keypad) Inject(b byte) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.push(b)
}

// Pending returns the number of queued events.
func (k *Keypad) Pending() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.fifo)
}

// Interrupt reports whether the INT line is asserted: a key event flag is
// set and key event interrupts are enabled.
func (k *Keypad) Interrupt() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.regs[tca8418.RegCFG]&0x01 != 0 && k.regs[tca8418.RegIntStat]&intKey != 0
}

// Overflowed reports whether an event was dropped since the flag was last
// cleared.
func (k *Keypad) Overflowed() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.regs[tca8418.RegIntStat]&intOverflow != 0
}

// Matrix returns the configured matrix size.
func (k *Keypad) Matrix() (rows, cols int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	for r := 0; r < 8; r++ {
		if k.regs[tca8418.RegKPGPIO1]&(1<<r) != 0 {
			rows++
		}
	}
	for c := 0; c < 8; c++ {
		if k.regs[tca8418.RegKPGPIO2]&(1<<c) != 0 {
			cols++
		}
	}
	for c := 0; c < 2; c++ {
		if k.regs[tca8418.RegKPGPIO3]&(1<<c) != 0 {
			cols++
		}
	}
	return rows, cols
}
