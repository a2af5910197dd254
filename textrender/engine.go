// Package textrender draws scrolling text on the 72×6 panel.
//
// An Engine holds one message and renders it onto a Surface in one of three
// scroll styles: pixel-smooth, character-stepped or static. Per-character
// brightness comes from highlight spans, a Classifier or the default level.
// Per-character fonts come from font spans. A short inline markup sets both.
//
// The engine keeps no clock. Update receives the current millisecond counter
// and decides whether a step is due.
package textrender

import (
	"image/color"

	"github.com/flavioheleno/retropanel/font4x6"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

// Display geometry.
const (
	DisplayChars = 18
	CharWidth    = font4x6.Width
	DisplayWidth = DisplayChars * CharWidth
	baseline     = font4x6.Height - 1
)

// Span table capacities.
const (
	MaxHighlights = 4
	MaxFontSpans  = 8
)

// Timing defaults, in milliseconds.
const (
	DefaultInterval   = 50
	DefaultStartDelay = 1000
)

// loopGap is the number of blank characters between repeats of a looping
// message.
const loopGap = 3

// Brightness levels.
const (
	Bright  uint8 = 150
	Normal  uint8 = 70
	Dim     uint8 = 20
	VeryDim uint8 = 8
)

// Font selects one of the panel fonts.
type Font uint8

const (
	Modern Font = iota
	Retro
	Icon
)

func (f Font) fonter() tinyfont.Fonter {
	switch f {
	case Retro:
		return font4x6.Retro
	case Icon:
		return font4x6.Icons
	default:
		return font4x6.Modern
	}
}

func (f Font) String() string {
	switch f {
	case Modern:
		return "modern"
	case Retro:
		return "retro"
	case Icon:
		return "icon"
	}
	return "unknown"
}

// Style is the scroll style.
type Style uint8

const (
	Smooth Style = iota
	Character
	Static
)

func (s Style) String() string {
	switch s {
	case Smooth:
		return "smooth"
	case Character:
		return "character"
	case Static:
		return "static"
	}
	return "unknown"
}

// Mode decides when a message scrolls.
type Mode uint8

const (
	// Auto scrolls only when the text does not fit.
	Auto Mode = iota
	Always
	Never
)

func (m Mode) String() string {
	switch m {
	case Auto:
		return "auto"
	case Always:
		return "always"
	case Never:
		return "never"
	}
	return "unknown"
}

// Surface is a drawing target that can be wiped between frames.
type Surface interface {
	drivers.Displayer
	ClearBuffer()
}

// Classifier returns the brightness of text[i], or false to use the default.
type Classifier func(text []rune, i int) (uint8, bool)

// HighlightSpan sets the brightness of the characters Start to End,
// inclusive.
type HighlightSpan struct {
	Start, End int
	Value      uint8
	Active     bool
}

// FontSpan sets the font of the characters Start to End, inclusive.
type FontSpan struct {
	Start, End int
	Value      Font
	Active     bool
}

// Opts holds the engine configuration. Zero Interval, StartDelay and
// Brightness select the defaults.
type Opts struct {
	Font       Font
	Style      Style
	Mode       Mode
	Interval   uint32
	StartDelay uint32
	Loop       bool
	Brightness uint8
	Classifier Classifier
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	Font:       Modern,
	Style:      Smooth,
	Mode:       Auto,
	Interval:   DefaultInterval,
	StartDelay: DefaultStartDelay,
	Brightness: Normal,
}

// Engine renders one message at a time. It is not safe for concurrent use.
type Engine struct {
	s    Surface
	clip clipSurface

	font       Font
	style      Style
	mode       Mode
	interval   uint32
	startDelay uint32
	loop       bool
	brightness uint8
	spacing    int
	classify   Classifier

	text       []rune
	prefix     int
	highlights [MaxHighlights]HighlightSpan
	fonts      [MaxFontSpans]FontSpan

	charPos     int
	pixelOffset int
	started     bool
	startTime   uint32
	lastStep    uint32
	complete    bool
	dirty       bool
	err         error
}

// New returns an engine drawing on s. A nil opts means DefaultOpts.
func New(s Surface, opts *Opts) *Engine {
	if opts == nil {
		opts = &DefaultOpts
	}
	e := &Engine{
		s:          s,
		clip:       clipSurface{s: s},
		font:       opts.Font,
		style:      opts.Style,
		mode:       opts.Mode,
		interval:   opts.Interval,
		startDelay: opts.StartDelay,
		loop:       opts.Loop,
		brightness: opts.Brightness,
		spacing:    1,
		classify:   opts.Classifier,
	}
	if e.interval == 0 {
		e.interval = DefaultInterval
	}
	if e.startDelay == 0 {
		e.startDelay = DefaultStartDelay
	}
	if e.brightness == 0 {
		e.brightness = Normal
	}
	return e
}

// SetFont sets the font used outside font spans.
func (e *Engine) SetFont(f Font) {
	e.font = f
	e.dirty = true
}

// Font returns the default font.
func (e *Engine) Font() Font { return e.font }

// SetStyle sets the scroll style and restarts the scroll.
func (e *Engine) SetStyle(s Style) {
	e.style = s
	e.Reset()
}

// Style returns the scroll style.
func (e *Engine) Style() Style { return e.style }

// SetMode sets the scroll mode and restarts the scroll.
func (e *Engine) SetMode(m Mode) {
	e.mode = m
	e.Reset()
}

// SetLoop enables wrapping back to the start once the message has scrolled
// through.
func (e *Engine) SetLoop(loop bool) {
	e.loop = loop
	e.Reset()
}

// SetInterval sets the time between scroll steps.
func (e *Engine) SetInterval(ms uint32) {
	if ms == 0 {
		ms = DefaultInterval
	}
	e.interval = ms
}

// SetStartDelay sets how long the first frame is held before scrolling.
func (e *Engine) SetStartDelay(ms uint32) {
	e.startDelay = ms
}

// SetBrightness sets the default character brightness.
func (e *Engine) SetBrightness(v uint8) {
	e.brightness = v
	e.dirty = true
}

// SetSpacing sets the gap between characters in smooth style.
func (e *Engine) SetSpacing(px int) {
	if px < 0 {
		px = 0
	}
	e.spacing = px
	e.Reset()
}

// SetClassifier sets the brightness classifier. nil removes it.
func (e *Engine) SetClassifier(c Classifier) {
	e.classify = c
	e.dirty = true
}

// SetMessage replaces the message, clears every span and the stationary
// prefix, and restarts the scroll.
func (e *Engine) SetMessage(s string) {
	e.text = []rune(s)
	e.prefix = 0
	e.ClearHighlights()
	e.ClearFontSpans()
	e.Reset()
}

// Message returns the current message.
func (e *Engine) Message() string {
	return string(e.text)
}

// SetMessageWithMarkup parses s and sets the clean text with its spans.
// Spans that do not fit the tables are dropped.
func (e *Engine) SetMessageWithMarkup(s string) {
	clean, hs, fs := ParseMarkup(s)
	e.SetMessage(clean)
	for _, h := range hs {
		e.HighlightText(h.Start, h.End, h.Value)
	}
	for _, f := range fs {
		e.SetFontSpan(f.Start, f.End, f.Value)
	}
}

// SetStationaryPrefix pins the first n characters in place. The rest of the
// message scrolls to their right.
func (e *Engine) SetStationaryPrefix(n int) {
	if n < 0 {
		n = 0
	}
	if n > DisplayChars {
		n = DisplayChars
	}
	if n > len(e.text) {
		n = len(e.text)
	}
	e.prefix = n
	e.Reset()
}

// StationaryPrefix returns the number of pinned characters.
func (e *Engine) StationaryPrefix() int { return e.prefix }

// HighlightText sets the brightness of characters start to end. It returns
// false when the highlight table is full.
func (e *Engine) HighlightText(start, end int, v uint8) bool {
	for i := range e.highlights {
		if !e.highlights[i].Active {
			e.highlights[i] = HighlightSpan{Start: start, End: end, Value: v, Active: true}
			e.dirty = true
			return true
		}
	}
	return false
}

// ClearHighlights removes every highlight span.
func (e *Engine) ClearHighlights() {
	e.highlights = [MaxHighlights]HighlightSpan{}
	e.dirty = true
}

// SetFontSpan sets the font of characters start to end. It returns false
// when the font span table is full.
func (e *Engine) SetFontSpan(start, end int, f Font) bool {
	for i := range e.fonts {
		if !e.fonts[i].Active {
			e.fonts[i] = FontSpan{Start: start, End: end, Value: f, Active: true}
			e.dirty = true
			return true
		}
	}
	return false
}

// ClearFontSpans removes every font span.
func (e *Engine) ClearFontSpans() {
	e.fonts = [MaxFontSpans]FontSpan{}
	e.dirty = true
}

// Highlights returns the active highlight spans.
func (e *Engine) Highlights() []HighlightSpan {
	var out []HighlightSpan
	for _, h := range e.highlights {
		if h.Active {
			out = append(out, h)
		}
	}
	return out
}

// FontSpans returns the active font spans.
func (e *Engine) FontSpans() []FontSpan {
	var out []FontSpan
	for _, f := range e.fonts {
		if f.Active {
			out = append(out, f)
		}
	}
	return out
}

// Reset moves the scroll back to the start and restarts the start delay.
func (e *Engine) Reset() {
	e.charPos = 0
	e.pixelOffset = 0
	e.started = false
	e.complete = false
	e.dirty = true
}

// SetScrollChars jumps to character position n.
func (e *Engine) SetScrollChars(n int) {
	e.charPos = n
	e.pixelOffset = n * e.charStep()
	e.complete = false
	e.dirty = true
}

// SetScrollPixels jumps to pixel offset px.
func (e *Engine) SetScrollPixels(px int) {
	e.pixelOffset = px
	e.charPos = px / CharWidth
	e.complete = false
	e.dirty = true
}

// CurrentCharPosition returns the scroll position in characters.
func (e *Engine) CurrentCharPosition() int { return e.charPos }

// CurrentPixelOffset returns the scroll position in pixels.
func (e *Engine) CurrentPixelOffset() int { return e.pixelOffset }

// IsComplete reports whether the message has been fully shown.
func (e *Engine) IsComplete() bool { return e.complete }

// IsScrolling reports whether the message is still moving.
func (e *Engine) IsScrolling() bool {
	return len(e.text) > 0 && !e.complete && e.scrolls()
}

// Err returns the last error reported by the surface.
func (e *Engine) Err() error { return e.err }

// Update advances the scroll if a step is due at now and renders. It
// reports whether a frame was drawn.
func (e *Engine) Update(now uint32) bool {
	if len(e.text) == 0 {
		if e.dirty {
			e.dirty = false
			e.s.ClearBuffer()
			e.err = e.s.Display()
			return true
		}
		return false
	}

	if !e.started {
		e.started = true
		e.startTime = now
		e.lastStep = now
		if !e.scrolls() {
			e.complete = true
		}
		e.render()
		return true
	}

	if !e.complete && e.scrolls() &&
		now-e.startTime >= e.startDelay && now-e.lastStep >= e.interval {
		e.lastStep = now
		if e.step() {
			e.render()
			return true
		}
	}

	if e.dirty {
		e.render()
		return true
	}
	return false
}

// scrolls reports whether the current message moves at all.
func (e *Engine) scrolls() bool {
	if e.style == Static || e.mode == Never {
		return false
	}
	if e.mode == Always {
		return true
	}
	return len(e.text)-e.prefix > DisplayChars-e.prefix
}

// charStep is the pixel pitch of scrolling characters.
func (e *Engine) charStep() int {
	if e.style == Smooth {
		return CharWidth + e.spacing
	}
	return CharWidth
}

// step advances one position. It reports false when the scroll was already
// complete.
func (e *Engine) step() bool {
	n := len(e.text) - e.prefix
	w := DisplayChars - e.prefix
	ecw := e.charStep()

	if e.loop {
		switch e.style {
		case Smooth:
			e.pixelOffset++
			if e.pixelOffset >= (n+loopGap)*ecw {
				e.pixelOffset = 0
			}
			e.charPos = e.pixelOffset / CharWidth
		case Character:
			e.charPos++
			if e.charPos >= n+loopGap {
				e.charPos = 0
			}
			e.pixelOffset = e.charPos * CharWidth
		}
		return true
	}

	switch e.style {
	case Smooth:
		total := n*ecw - w*ecw + ecw
		if e.pixelOffset >= total {
			e.complete = true
			return false
		}
		e.pixelOffset++
		e.charPos = e.pixelOffset / CharWidth
		if e.pixelOffset >= total {
			e.complete = true
		}
	case Character:
		total := n - w + 1
		if e.charPos >= total {
			e.complete = true
			return false
		}
		e.charPos++
		e.pixelOffset = e.charPos * CharWidth
		if e.charPos >= total {
			e.complete = true
		}
	}
	return true
}

func (e *Engine) render() {
	e.dirty = false
	e.s.ClearBuffer()

	if !e.scrolls() {
		for i := 0; i < len(e.text) && i < DisplayChars; i++ {
			e.drawChar(e.s, i, i*CharWidth)
		}
		e.err = e.s.Display()
		return
	}

	for i := 0; i < e.prefix; i++ {
		e.drawChar(e.s, i, i*CharWidth)
	}

	left := e.prefix * CharWidth
	e.clip.minX = int16(left)
	ecw := e.charStep()
	n := len(e.text) - e.prefix
	copies := 1
	if e.loop {
		copies = 2
	}
	for c := 0; c < copies; c++ {
		base := left - e.pixelOffset + c*(n+loopGap)*ecw
		for j := 0; j < n; j++ {
			x := base + j*ecw
			if x > left-CharWidth && x < DisplayWidth {
				e.drawChar(&e.clip, e.prefix+j, x)
			}
		}
	}
	e.err = e.s.Display()
}

func (e *Engine) drawChar(d drivers.Displayer, i, x int) {
	v := e.brightnessAt(i)
	c := color.RGBA{R: v, G: v, B: v, A: 0xFF}
	e.fontAt(i).fonter().GetGlyph(e.text[i]).Draw(d, int16(x), baseline, c)
}

// brightnessAt resolves the brightness of character i: highlight first,
// then the classifier, then the default.
func (e *Engine) brightnessAt(i int) uint8 {
	for _, h := range e.highlights {
		if h.Active && i >= h.Start && i <= h.End {
			return h.Value
		}
	}
	if e.classify != nil {
		if v, ok := e.classify(e.text, i); ok {
			return v
		}
	}
	return e.brightness
}

func (e *Engine) fontAt(i int) Font {
	for _, f := range e.fonts {
		if f.Active && i >= f.Start && i <= f.End {
			return f.Value
		}
	}
	return e.font
}

// clipSurface drops pixels left of minX.
type clipSurface struct {
	s    Surface
	minX int16
}

func (c *clipSurface) Size() (x, y int16) { return c.s.Size() }

func (c *clipSurface) SetPixel(x, y int16, col color.RGBA) {
	if x < c.minX {
		return
	}
	c.s.SetPixel(x, y, col)
}

func (c *clipSurface) Display() error { return c.s.Display() }
