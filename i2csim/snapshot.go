package i2csim

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/flavioheleno/retropanel/pwmimage"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Mapper places logical display pixels on chips. *retropanel.Panel
// implements it.
type Mapper interface {
	Width() int
	Height() int
	MapPixel(x, y int) (board, px, py int, ok bool)
}

// View reads the logical display back from the emulated chips. Pixels of
// boards without a chip stay dark.
func View(m Mapper, chips []*LEDChip) *pwmimage.Frame {
	f := pwmimage.NewFrame(image.Rect(0, 0, m.Width(), m.Height()))
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			board, px, py, ok := m.MapPixel(x, y)
			if !ok || board >= len(chips) || chips[board] == nil {
				continue
			}
			f.SetLevel(x, y, pwmimage.Level{V: chips[board].Lit(px, py)})
		}
	}
	return f
}

// Render scales src by scale with nearest-neighbour sampling. A non-empty
// caption is printed below the image.
func Render(src image.Image, scale int, caption string) *image.Gray {
	if scale < 1 {
		scale = 1
	}
	b := src.Bounds()
	w, h := b.Dx()*scale, b.Dy()*scale
	footer := 0
	if caption != "" {
		footer = basicfont.Face7x13.Height + 4
	}

	dst := image.NewGray(image.Rect(0, 0, w, h+footer))
	draw.NearestNeighbor.Scale(dst, image.Rect(0, 0, w, h), src, b, draw.Src, nil)

	if caption != "" {
		d := font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(color.Gray{Y: 0xC0}),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(2, h+basicfont.Face7x13.Ascent+2),
		}
		d.DrawString(caption)
	}
	return dst
}

// Snapshot writes src to w as a PNG scaled by scale.
func Snapshot(w io.Writer, src image.Image, scale int, caption string) error {
	if err := png.Encode(w, Render(src, scale, caption)); err != nil {
		return fmt.Errorf("i2csim: snapshot: %w", err)
	}
	return nil
}
