package retropanel

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/flavioheleno/retropanel/pwmimage"
)

// fakeBoard records pixels written through the panel.
type fakeBoard struct {
	pix     [12][12]uint8
	shows   int
	current uint8
	halted  bool
	err     error
}

func (b *fakeBoard) SetPixel(x, y int, v uint8) {
	if x < 0 || x >= 12 || y < 0 || y >= 12 {
		return
	}
	b.pix[y][x] = v
}

func (b *fakeBoard) Clear() { b.pix = [12][12]uint8{} }

func (b *fakeBoard) Show() error {
	b.shows++
	return b.err
}

func (b *fakeBoard) SetGlobalCurrent(v uint8) error {
	b.current = v
	return nil
}

func (b *fakeBoard) Halt() error {
	b.halted = true
	return nil
}

func newFakePanel(t *testing.T, opts *Opts) (*Panel, []*fakeBoard) {
	t.Helper()
	fakes := []*fakeBoard{{}, {}, {}}
	p, err := New([]Board{fakes[0], fakes[1], fakes[2]}, opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p, fakes
}

func TestLocalToPhysical(t *testing.T) {
	tests := []struct {
		name           string
		lx, ly         int
		wantPx, wantPy int
	}{
		{"char 0 col 0", 0, 0, 0, 0},
		{"char 0 col 3", 3, 2, 3, 2},
		{"char 2 col 3", 11, 5, 11, 5},
		{"char 3 col 0", 12, 0, 0, 6},
		{"char 4 col 1", 17, 3, 5, 9},
		{"char 5 col 3", 23, 5, 11, 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			px, py := LocalToPhysical(tt.lx, tt.ly)
			if px != tt.wantPx || py != tt.wantPy {
				t.Errorf("LocalToPhysical(%d, %d) = (%d, %d), want (%d, %d)", tt.lx, tt.ly, px, py, tt.wantPx, tt.wantPy)
			}
		})
	}
}

func TestBoardForLocalX(t *testing.T) {
	tests := []struct {
		sx        int
		wantBoard int
		wantLocal int
	}{
		{0, 0, 0},
		{23, 0, 23},
		{24, 1, 0},
		{47, 1, 23},
		{48, 2, 0},
		{71, 2, 23},
	}

	for _, tt := range tests {
		if got := BoardFor(tt.sx); got != tt.wantBoard {
			t.Errorf("BoardFor(%d) = %d, want %d", tt.sx, got, tt.wantBoard)
		}
		if got := LocalX(tt.sx); got != tt.wantLocal {
			t.Errorf("LocalX(%d) = %d, want %d", tt.sx, got, tt.wantLocal)
		}
	}
}

func TestMapPixel(t *testing.T) {
	tests := []struct {
		name      string
		inverted  bool
		x, y      int
		wantBoard int
		wantPx    int
		wantPy    int
		wantOK    bool
	}{
		{"inverted origin", true, 0, 0, 2, 11, 11, true},
		{"inverted far corner", true, 71, 5, 0, 0, 0, true},
		{"inverted board 0 last column", true, 48, 0, 0, 11, 11, true},
		{"inverted char 2", true, 60, 2, 0, 11, 3, true},
		{"inverted char 3", true, 59, 2, 0, 0, 9, true},
		{"upright origin", false, 0, 0, 0, 0, 0, true},
		{"upright board 1", false, 30, 1, 1, 6, 1, true},
		{"upright last pixel", false, 71, 5, 2, 11, 11, true},
		{"x out of range", true, 72, 0, 0, 0, 0, false},
		{"y out of range", true, 0, 6, 0, 0, 0, false},
		{"negative", true, -1, 0, 0, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newFakePanel(t, &Opts{Inverted: tt.inverted})
			b, px, py, ok := p.MapPixel(tt.x, tt.y)
			if b != tt.wantBoard || px != tt.wantPx || py != tt.wantPy || ok != tt.wantOK {
				t.Errorf("MapPixel(%d, %d) = (%d, %d, %d, %v), want (%d, %d, %d, %v)",
					tt.x, tt.y, b, px, py, ok, tt.wantBoard, tt.wantPx, tt.wantPy, tt.wantOK)
			}
		})
	}
}

func TestMapPixelCoversEveryLED(t *testing.T) {
	p, _ := newFakePanel(t, nil)
	seen := map[[3]int]bool{}
	for y := 0; y < 6; y++ {
		for x := 0; x < 72; x++ {
			b, px, py, ok := p.MapPixel(x, y)
			if !ok {
				t.Fatalf("MapPixel(%d, %d) not ok", x, y)
			}
			k := [3]int{b, px, py}
			if seen[k] {
				t.Fatalf("MapPixel(%d, %d) = %v, already used", x, y, k)
			}
			seen[k] = true
		}
	}
	if len(seen) != 3*144 {
		t.Errorf("mapped %d LEDs, want %d", len(seen), 3*144)
	}
}

func TestNewDefaults(t *testing.T) {
	p, _ := newFakePanel(t, nil)
	if !p.inverted {
		t.Error("nil opts should default to inverted mounting")
	}
	if got := p.Bounds(); got != image.Rect(0, 0, 72, 6) {
		t.Errorf("Bounds() = %v, want (0,0)-(72,6)", got)
	}
	if _, err := New(nil, nil); err == nil {
		t.Error("New() without boards should fail")
	}
}

func TestShowWritesZeros(t *testing.T) {
	p, fakes := newFakePanel(t, nil)
	for i := range fakes {
		for y := 0; y < 12; y++ {
			for x := 0; x < 12; x++ {
				fakes[i].pix[y][x] = 0xAA
			}
		}
	}
	p.SetPixel(0, 0, 200)
	if err := p.Show(); err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if got := fakes[2].pix[11][11]; got != 200 {
		t.Errorf("board 2 (11, 11) = %d, want 200", got)
	}
	if got := fakes[0].pix[0][0]; got != 0 {
		t.Errorf("board 0 (0, 0) = %d, want 0", got)
	}
	for i, f := range fakes {
		if f.shows != 1 {
			t.Errorf("board %d shows = %d, want 1", i, f.shows)
		}
	}
}

func TestShowSkipsMissingBoard(t *testing.T) {
	live := &fakeBoard{}
	p, err := New([]Board{nil, live, nil}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	p.SetPixel(0, 0, 1)
	p.SetPixel(30, 0, 2)
	if err := p.Show(); err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if live.shows != 1 {
		t.Errorf("live board shows = %d, want 1", live.shows)
	}
}

func TestShowReturnsFirstError(t *testing.T) {
	p, fakes := newFakePanel(t, nil)
	fakes[1].err = errors.New("nack")
	if err := p.Show(); err == nil {
		t.Error("Show() should return the board error")
	}
	if fakes[2].shows != 1 {
		t.Error("Show() should still push the remaining boards")
	}
}

func TestSetBrightness(t *testing.T) {
	p, fakes := newFakePanel(t, nil)
	if err := p.SetBrightness(200); err != nil {
		t.Fatalf("SetBrightness() error = %v", err)
	}
	for i, f := range fakes {
		if f.current != 100 {
			t.Errorf("board %d current = %d, want 100", i, f.current)
		}
	}
}

func TestSurface(t *testing.T) {
	p, _ := newFakePanel(t, nil)
	s := p.Surface()
	if x, y := s.Size(); x != 72 || y != 6 {
		t.Errorf("Size() = (%d, %d), want (72, 6)", x, y)
	}
	s.SetPixel(5, 1, color.RGBA{R: 10, G: 90, B: 30, A: 255})
	if got := p.Pixel(5, 1); got != 90 {
		t.Errorf("Pixel(5, 1) = %d, want 90", got)
	}
	s.ClearBuffer()
	if got := p.Pixel(5, 1); got != 0 {
		t.Errorf("Pixel(5, 1) after ClearBuffer = %d, want 0", got)
	}
}

func TestPanelDraw(t *testing.T) {
	p, _ := newFakePanel(t, nil)
	src := image.NewUniform(pwmimage.Level{V: 42})
	if err := p.Draw(p.Bounds(), src, image.Point{}); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	if got := p.Pixel(71, 5); got != 42 {
		t.Errorf("Pixel(71, 5) = %d, want 42", got)
	}
}

func TestPanelHalt(t *testing.T) {
	p, fakes := newFakePanel(t, nil)
	p.SetPixel(1, 1, 9)
	if err := p.Halt(); err != nil {
		t.Fatalf("Halt() error = %v", err)
	}
	for i, f := range fakes {
		if !f.halted {
			t.Errorf("board %d not halted", i)
		}
	}
	if err := p.Show(); err == nil {
		t.Error("Show should fail when halted")
	}
}

func TestPanelString(t *testing.T) {
	p, _ := newFakePanel(t, nil)
	want := "retropanel.Panel{72x6, 3 boards}"
	if got := p.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
