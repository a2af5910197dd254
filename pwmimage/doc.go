// Package pwmimage provides an 8-bit LED duty-cycle image format for the
// IS31FL3737 matrix driver and the panel composer.
//
// Each pixel is one byte holding the PWM duty cycle of a single LED, from
// 0 (off) to 255 (full on). The panel LEDs are monochrome, so colors are
// reduced to their brightest channel rather than to luminance: a pure red
// glyph drives the LED at full duty.
//
// Memory layout for a 4-pixel row:
//
//	Pixels: 0    1    2    3
//	Values: 0    70   150  255
//	Bytes:  0x00 0x46 0x96 0xFF
//
// This package provides:
//
// - Level: a color type holding one duty-cycle value
// - LevelModel: a color model converting standard Go colors to Level
// - Frame: a draw.Image implementation backed by one byte per LED
//
// Example usage:
//
//	// Create a 72x6 frame
//	img := pwmimage.NewFrame(image.Rect(0, 0, 72, 6))
//
//	// Set a pixel to the "normal" text level
//	img.SetLevel(10, 2, pwmimage.Level{V: 70})
//
//	// Use with standard Go image operations
//	draw.Draw(img, img.Bounds(), image.NewUniform(pwmimage.Level{V: 255}), image.Point{}, draw.Src)
package pwmimage
