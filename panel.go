package retropanel

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/flavioheleno/retropanel/is31fl3737"
	"github.com/flavioheleno/retropanel/pwmimage"
	"periph.io/x/conn/v3/display"
	"tinygo.org/x/drivers"
)

var (
	_ display.Drawer    = (*Panel)(nil)
	_ drivers.Displayer = (*Surface)(nil)
	_ Board             = (*is31fl3737.Dev)(nil)
)

// DefaultAddresses are the I²C addresses of the three display boards, left to
// right as seen from the front.
var DefaultAddresses = []uint16{is31fl3737.AddrGND, is31fl3737.AddrSDA, is31fl3737.AddrVCC}

// Board is one chip behind the panel. *is31fl3737.Dev satisfies it.
type Board interface {
	SetPixel(x, y int, v uint8)
	Clear()
	Show() error
}

// dimmer is implemented by boards with a chip-wide current setting.
type dimmer interface {
	SetGlobalCurrent(v uint8) error
}

// halter is implemented by boards that can be shut down.
type halter interface {
	Halt() error
}

// Opts is the configuration for the panel.
type Opts struct {
	// Inverted rotates the panel by 180° before mapping (boards are mounted
	// upside down). Defaults to true when opts is nil.
	Inverted bool
}

// Panel tiles boards into one logical surface of len(boards)*24 × 6 pixels.
type Panel struct {
	boards   []Board
	inverted bool
	frame    *pwmimage.Frame
	surface  Surface
	halted   bool
}

// New creates a panel over boards, left to right. A nil entry marks a board
// that failed to initialize; its pixels are dropped.
//
// opts can be nil to use defaults (inverted mounting).
func New(boards []Board, opts *Opts) (*Panel, error) {
	if opts == nil {
		opts = &Opts{Inverted: true}
	}
	if len(boards) == 0 {
		return nil, errors.New("retropanel: at least one board is required")
	}
	p := &Panel{
		boards:   boards,
		inverted: opts.Inverted,
		frame:    pwmimage.NewFrame(image.Rect(0, 0, len(boards)*BoardWidth, BoardHeight)),
	}
	p.surface.p = p
	return p, nil
}

// Width returns the logical width in pixels.
func (p *Panel) Width() int {
	return p.frame.Rect.Dx()
}

// Height returns the logical height in pixels.
func (p *Panel) Height() int {
	return BoardHeight
}

// Flip applies the mounting rotation to a logical pixel.
func (p *Panel) Flip(x, y int) (int, int) {
	if !p.inverted {
		return x, y
	}
	return p.Width() - 1 - x, BoardHeight - 1 - y
}

// MapPixel returns the board and chip coordinates of the logical pixel (x, y).
func (p *Panel) MapPixel(x, y int) (board, px, py int, ok bool) {
	if x < 0 || x >= p.Width() || y < 0 || y >= BoardHeight {
		return 0, 0, 0, false
	}
	sx, sy := p.Flip(x, y)
	board = BoardFor(sx)
	px, py = LocalToPhysical(LocalX(sx), sy)
	return board, px, py, true
}

// SetPixel sets the brightness of the logical pixel (x, y) in the frame.
func (p *Panel) SetPixel(x, y int, v uint8) {
	p.frame.SetLevel(x, y, pwmimage.Level{V: v})
}

// Pixel returns the brightness of the logical pixel (x, y).
func (p *Panel) Pixel(x, y int) uint8 {
	return p.frame.LevelAt(x, y).V
}

// ClearBuffer turns every pixel off in the frame.
func (p *Panel) ClearBuffer() {
	p.frame.Clear()
}

// Frame returns the logical framebuffer.
func (p *Panel) Frame() *pwmimage.Frame {
	return p.frame
}

// Show writes every logical pixel to its board and pushes every live board.
// It returns the first error but still shows the remaining boards.
func (p *Panel) Show() error {
	if p.halted {
		return errors.New("retropanel: halted")
	}
	w := p.Width()
	for y := 0; y < BoardHeight; y++ {
		for x := 0; x < w; x++ {
			b, px, py, _ := p.MapPixel(x, y)
			if p.boards[b] == nil {
				continue
			}
			p.boards[b].SetPixel(px, py, p.frame.Pix[y*p.frame.Stride+x])
		}
	}

	var first error
	for i, b := range p.boards {
		if b == nil {
			continue
		}
		if err := b.Show(); err != nil && first == nil {
			first = fmt.Errorf("retropanel: board %d: %w", i, err)
		}
	}
	return first
}

// SetBrightness sets the global current of every board to level/2.
func (p *Panel) SetBrightness(level uint8) error {
	var first error
	for i, b := range p.boards {
		d, ok := b.(dimmer)
		if b == nil || !ok {
			continue
		}
		if err := d.SetGlobalCurrent(level / 2); err != nil && first == nil {
			first = fmt.Errorf("retropanel: board %d: %w", i, err)
		}
	}
	return first
}

// Surface returns the tinygo drivers.Displayer view of the panel.
func (p *Panel) Surface() *Surface {
	return &p.surface
}

// ColorModel returns the color model of the panel.
func (p *Panel) ColorModel() color.Model {
	return pwmimage.LevelModel
}

// Bounds returns the logical bounds of the panel.
func (p *Panel) Bounds() image.Rectangle {
	return p.frame.Rect
}

// Draw renders src into the frame and shows it.
func (p *Panel) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if p.halted {
		return errors.New("retropanel: halted")
	}
	r := dst.Intersect(p.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := src.At(sp.X+x-dst.Min.X, sp.Y+y-dst.Min.Y)
			p.frame.Set(x, y, c)
		}
	}
	return p.Show()
}

// Halt blanks the panel and halts every board that supports it.
func (p *Panel) Halt() error {
	p.frame.Clear()
	err := p.Show()
	p.halted = true
	for i, b := range p.boards {
		h, ok := b.(halter)
		if b == nil || !ok {
			continue
		}
		if herr := h.Halt(); herr != nil && err == nil {
			err = fmt.Errorf("retropanel: board %d: %w", i, herr)
		}
	}
	return err
}

// String returns a string representation of the panel.
func (p *Panel) String() string {
	return fmt.Sprintf("retropanel.Panel{%dx%d, %d boards}", p.Width(), BoardHeight, len(p.boards))
}

// Surface adapts a Panel to tinygo's drivers.Displayer.
type Surface struct {
	p *Panel
}

// Size returns the panel dimensions.
func (s *Surface) Size() (x, y int16) {
	return int16(s.p.Width()), BoardHeight
}

// SetPixel sets a pixel from an RGBA color, using its brightest channel.
func (s *Surface) SetPixel(x, y int16, c color.RGBA) {
	s.p.SetPixel(int(x), int(y), pwmimage.FromRGBA(c))
}

// Display pushes the frame to the boards.
func (s *Surface) Display() error {
	return s.p.Show()
}

// ClearBuffer turns every pixel off in the frame.
func (s *Surface) ClearBuffer() {
	s.p.ClearBuffer()
}
