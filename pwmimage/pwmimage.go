package pwmimage

import (
	"image"
	"image/color"
)

// Level is a single LED duty cycle (0-255).
type Level struct {
	V uint8
}

// RGBA converts the Level to a gray RGBA color.
func (c Level) RGBA() (r, g, b, a uint32) {
	// Scale 8-bit (0-255) to 16-bit (0-65535): 0xFF * 0x101 = 0xFFFF
	y := uint32(c.V) * 0x101
	return y, y, y, 0xFFFF
}

// toLevel converts any color.Color to Level using its brightest channel,
// premultiplied by alpha.
func toLevel(c color.Color) color.Color {
	if l, ok := c.(Level); ok {
		return l
	}
	r, g, b, _ := c.RGBA()
	m := r
	if g > m {
		m = g
	}
	if b > m {
		m = b
	}
	return Level{V: uint8(m >> 8)}
}

// LevelModel converts colors to Level.
var LevelModel = color.ModelFunc(toLevel)

// FromRGBA reduces a tinygo-style RGBA color to a duty cycle.
func FromRGBA(c color.RGBA) uint8 {
	m := c.R
	if c.G > m {
		m = c.G
	}
	if c.B > m {
		m = c.B
	}
	return m
}

// Gray returns the RGBA color whose reduction is v.
func Gray(v uint8) color.RGBA {
	return color.RGBA{R: v, G: v, B: v, A: 0xFF}
}

// Frame is an image with one duty-cycle byte per pixel.
type Frame struct {
	Pix    []uint8         // Pixel data (1 byte per pixel)
	Stride int             // Bytes per row
	Rect   image.Rectangle // Image bounds
}

// NewFrame creates a new Frame with the specified bounds.
func NewFrame(r image.Rectangle) *Frame {
	w, h := r.Dx(), r.Dy()
	if w < 0 || h < 0 {
		return &Frame{Rect: r}
	}
	return &Frame{
		Pix:    make([]uint8, w*h),
		Stride: w,
		Rect:   r,
	}
}

// ColorModel returns the color model of the image.
func (p *Frame) ColorModel() color.Model {
	return LevelModel
}

// Bounds returns the image bounds.
func (p *Frame) Bounds() image.Rectangle {
	return p.Rect
}

// At returns the color of the pixel at (x, y).
func (p *Frame) At(x, y int) color.Color {
	return p.LevelAt(x, y)
}

// LevelAt returns the duty cycle of the pixel at (x, y).
func (p *Frame) LevelAt(x, y int) Level {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return Level{}
	}
	return Level{V: p.Pix[p.PixOffset(x, y)]}
}

// Set sets the color of the pixel at (x, y).
func (p *Frame) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	p.Pix[p.PixOffset(x, y)] = LevelModel.Convert(c).(Level).V
}

// SetLevel sets the duty cycle of the pixel at (x, y) without color conversion.
func (p *Frame) SetLevel(x, y int, c Level) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	p.Pix[p.PixOffset(x, y)] = c.V
}

// PixOffset returns the index of the pixel at (x, y) in Pix.
func (p *Frame) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x - p.Rect.Min.X)
}

// Fill sets every pixel to v.
func (p *Frame) Fill(v uint8) {
	for i := range p.Pix {
		p.Pix[i] = v
	}
}

// Clear turns every pixel off.
func (p *Frame) Clear() {
	p.Fill(0)
}
