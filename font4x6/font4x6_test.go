package font4x6

import (
	"image/color"
	"testing"

	"tinygo.org/x/tinyfont"
)

// canvas is a minimal drivers.Displayer recording lit pixels.
type canvas struct {
	lit map[[2]int16]color.RGBA
}

func newCanvas() *canvas { return &canvas{lit: map[[2]int16]color.RGBA{}} }

func (c *canvas) Size() (x, y int16)                  { return 16, 6 }
func (c *canvas) SetPixel(x, y int16, col color.RGBA) { c.lit[[2]int16{x, y}] = col }
func (c *canvas) Display() error                      { return nil }

func TestParseRows(t *testing.T) {
	tests := []struct {
		in   string
		want Rows
	}{
		{"4AEAA0", Rows{0x4, 0xA, 0xE, 0xA, 0xA, 0x0}},
		{"06a62c", Rows{0x0, 0x6, 0xA, 0x6, 0x2, 0xC}},
		{"E", Rows{0xE}},
		{"XY0000", Rows{}},
	}

	for _, tt := range tests {
		if got := parseRows(tt.in); got != tt.want {
			t.Errorf("parseRows(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name   string
		font   *Font
		r      rune
		want   string
		wantOK bool
	}{
		{"modern digit", Modern, '0', "4AAA40", true},
		{"retro digit", Retro, '0', "EAAAE0", true},
		{"retro falls back for lowercase", Retro, 'g', "06A62C", true},
		{"icon play", Icons, 'p', "8CEC80", true},
		{"icon falls back", Icons, 'A', "4AEAA0", true},
		{"note", Modern, '♪', "64CC00", true},
		{"missing rune", Modern, '€', "000000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.font.Lookup(tt.r)
			if got != parseRows(tt.want) || ok != tt.wantOK {
				t.Errorf("Lookup(%q) = (%v, %v), want (%v, %v)", tt.r, got, ok, parseRows(tt.want), tt.wantOK)
			}
		})
	}
}

func TestGlyphsFitCell(t *testing.T) {
	for _, f := range []*Font{Modern, Retro, Icons} {
		for r, rows := range f.glyphs {
			for i, b := range rows {
				if b > 0xF {
					t.Errorf("%s %q row %d = %#x, wider than the cell", f.Name, r, i, b)
				}
			}
		}
	}
}

func TestGlyphDraw(t *testing.T) {
	c := newCanvas()
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Modern.GetGlyph('T').Draw(c, 4, 5, white)

	// T is XXX on the top row then a centre stem.
	want := [][2]int16{{4, 0}, {5, 0}, {6, 0}, {5, 1}, {5, 2}, {5, 3}, {5, 4}}
	if len(c.lit) != len(want) {
		t.Fatalf("lit %d pixels, want %d", len(c.lit), len(want))
	}
	for _, p := range want {
		if _, ok := c.lit[p]; !ok {
			t.Errorf("pixel %v not lit", p)
		}
	}
}

func TestGlyphDescender(t *testing.T) {
	c := newCanvas()
	Modern.GetGlyph('g').Draw(c, 0, 5, color.RGBA{A: 255})
	if _, ok := c.lit[[2]int16{0, 5}]; !ok {
		t.Error("descender row of 'g' not lit")
	}
}

func TestGlyphInfo(t *testing.T) {
	info := Retro.GetGlyph('A').Info()
	want := tinyfont.GlyphInfo{Rune: 'A', Width: 4, Height: 6, XAdvance: 4, YOffset: -5}
	if info != want {
		t.Errorf("Info() = %+v, want %+v", info, want)
	}
	if got := Retro.GetYAdvance(); got != 6 {
		t.Errorf("GetYAdvance() = %d, want 6", got)
	}
}

func TestLineWidth(t *testing.T) {
	_, outbox := tinyfont.LineWidth(Modern, "HELLO")
	if outbox != 20 {
		t.Errorf("LineWidth() outbox = %d, want 20", outbox)
	}
}
