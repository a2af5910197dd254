// Package font4x6 provides the 4×6 bitmap fonts of the panel display.
//
// Every glyph fits a 4×6 cell: 3 columns of ink and 1 column of gap, 5 rows
// above the baseline and 1 descender row. Glyph rows are stored as hex digits,
// one per row, with bit 8 as the leftmost column.
//
// The fonts implement tinyfont.Fonter so tinyfont and the text engine can draw
// them onto any drivers.Displayer. Concurrent access is not safe due to
// internal glyph reuse.
package font4x6

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

// Cell geometry.
const (
	Width  = 4
	Height = 6
)

// Rows holds one glyph, top row first.
type Rows [Height]uint8

// Font is a 4×6 bitmap font with an optional fallback for missing runes.
type Font struct {
	Name     string
	glyphs   map[rune]Rows
	fallback *Font
	g        Glyph
}

// Glyph is the glyph handed out by GetGlyph.
type Glyph struct {
	Rune rune
	Rows Rows
}

var (
	// Modern is the rounded 3×5 font with lowercase and descenders.
	Modern = newFont("modern", modernTable, nil)

	// Retro squares off digits and capitals, falling back to Modern.
	Retro = newFont("retro", retroTable, Modern)

	// Icons maps a few ASCII letters to symbols, falling back to Modern.
	Icons = newFont("icons", iconTable, Modern)
)

var _ tinyfont.Fonter = Modern

func newFont(name string, table map[rune]string, fallback *Font) *Font {
	f := &Font{Name: name, glyphs: make(map[rune]Rows, len(table)), fallback: fallback}
	for r, s := range table {
		f.glyphs[r] = parseRows(s)
	}
	return f
}

// parseRows decodes a 6-digit hex glyph. Malformed digits are blank.
func parseRows(s string) Rows {
	var rows Rows
	for i := 0; i < Height && i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			rows[i] = c - '0'
		case c >= 'A' && c <= 'F':
			rows[i] = c - 'A' + 10
		case c >= 'a' && c <= 'f':
			rows[i] = c - 'a' + 10
		}
	}
	return rows
}

// Lookup returns the rows of r, trying the fallback chain. Missing runes are
// blank and report false.
func (f *Font) Lookup(r rune) (Rows, bool) {
	for cur := f; cur != nil; cur = cur.fallback {
		if rows, ok := cur.glyphs[r]; ok {
			return rows, true
		}
	}
	return Rows{}, false
}

func (f *Font) GetYAdvance() uint8 { return Height }

func (f *Font) GetGlyph(r rune) tinyfont.Glypher {
	f.g.Rune = r
	f.g.Rows, _ = f.Lookup(r)
	return &f.g
}

// Draw paints the glyph with its baseline at y. Row 0 lands on y-5.
func (g *Glyph) Draw(display drivers.Displayer, x, y int16, c color.RGBA) {
	for row := 0; row < Height; row++ {
		b := g.Rows[row]
		if b == 0 {
			continue
		}
		for col := 0; col < Width; col++ {
			if b&(0x8>>col) == 0 {
				continue
			}
			display.SetPixel(x+int16(col), y-int16(Height-1-row), c)
		}
	}
}

func (g *Glyph) Info() tinyfont.GlyphInfo {
	return tinyfont.GlyphInfo{
		Rune:     g.Rune,
		Width:    Width,
		Height:   Height,
		XAdvance: Width,
		XOffset:  0,
		YOffset:  -(Height - 1),
	}
}
