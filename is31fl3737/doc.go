// Package is31fl3737 controls an IS31FL3737 12×12 LED matrix driver via I²C.
//
// The IS31FL3737 drives up to 144 LEDs (12 current sinks × 12 switches) with
// an 8-bit PWM duty cycle per LED and a chip-wide global current. This driver
// keeps a logical 12×12 buffer and implements the display.Drawer interface
// from periph.io.
//
// # Register Pages
//
// Registers are split into four pages selected through the command register
// 0xFD, which must be unlocked by writing 0xC5 to 0xFE before every change:
//
//	0x00  LED control (on/off bit per LED)
//	0x01  PWM duty cycle (one byte per LED)
//	0x02  Auto breath mode
//	0x03  Function (configuration, global current, reset)
//
// # Register Layout
//
// PWM registers are laid out with a stride of 16 per SW row. CS7 to CS12 are
// wired to register columns 9 to 14, so the logical-to-register mapping is
//
//	cs := x + 1
//	if cs >= 7 { cs += 2 }
//	reg := y*16 + cs - 1
//
// RegisterAddress exposes this mapping. Show rebuilds the 192-byte register
// image and writes it in 64-byte auto-increment bursts, skipping bursts that
// did not change since the last successful push.
//
// # Hardware Connection
//
//	Chip Pin → System Pin
//	GND      → GND
//	VCC      → 3.3V
//	SCL      → I²C SCL
//	SDA      → I²C SDA
//	ADDR     → GND (0x50), SCL (0x55), SDA (0x5A) or VCC (0x5F)
//
// # Basic Usage
//
//	package main
//
//	import (
//		"log"
//
//		"github.com/flavioheleno/retropanel/is31fl3737"
//		"periph.io/x/conn/v3/i2c/i2creg"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		if _, err := host.Init(); err != nil {
//			log.Fatal(err)
//		}
//		bus, err := i2creg.Open("")
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer bus.Close()
//
//		dev, err := is31fl3737.New(bus, is31fl3737.AddrGND, nil)
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer dev.Halt()
//
//		dev.SetPixel(0, 0, 255)
//		if err := dev.Show(); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// # Limitations
//
// - Auto breath mode is not supported
// - Open/short detection registers are not read
package is31fl3737
