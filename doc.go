// Package retropanel composes IS31FL3737 LED matrix chips into the 72×6
// text display of the retro control panel.
//
// Each display board carries one IS31FL3737 and six 4×6 character cells. The
// board is wired so that characters 0-2 use SW1-SW6 and characters 3-5 use
// SW7-SW12, which turns the 24×6 board strip into the chip's 12×12 matrix.
// The three boards are mounted upside down, so the whole panel is flipped
// before mapping.
//
// # Pixel Pipeline
//
// Every logical pixel (x, y) of the panel goes through pure functions:
//
//	sx, sy := p.Flip(x, y)            // 71-x, 5-y when inverted
//	board := BoardFor(sx)             // sx / 24
//	lx := LocalX(sx)                  // sx % 24
//	px, py := LocalToPhysical(lx, sy) // character split
//
// MapPixel composes them. None of them touch the bus.
//
// # Hardware Connection
//
//	Board        Address  ADDR pin
//	Display 1    0x50     GND
//	Display 2    0x5A     SDA
//	Display 3    0x5F     VCC
//	Preset LEDs  0x55     SCL
//
// # Basic Usage
//
//	bus, _ := i2creg.Open("")
//	var boards []retropanel.Board
//	for _, addr := range retropanel.DefaultAddresses {
//		dev, err := is31fl3737.New(bus, addr, nil)
//		if err != nil {
//			log.Fatal(err)
//		}
//		boards = append(boards, dev)
//	}
//	panel, _ := retropanel.New(boards, nil)
//	panel.SetPixel(0, 0, 255)
//	panel.Show()
//
// # Drawing Text
//
// Surface adapts the panel to tinygo's drivers.Displayer, so any tinyfont
// font draws straight onto it:
//
//	tinyfont.WriteLine(panel.Surface(), font4x6.Modern, 0, 5, "HELLO", pwmimage.Gray(70))
//	panel.Show()
//
// # Compatibility with periph.io
//
// Panel implements the display.Drawer interface from periph.io over its
// 72×6 surface.
package retropanel
