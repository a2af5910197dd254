//go:build cgo

package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const tps = 60

var (
	presetKeys = []ebiten.Key{
		ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5,
		ebiten.Key6, ebiten.Key7, ebiten.Key8, ebiten.Key9,
	}
	modeKeys = []ebiten.Key{ebiten.KeyF1, ebiten.KeyF2, ebiten.KeyF3, ebiten.KeyF4}
)

// runWindow shows the panel in a desktop window until it is closed or
// Escape is pressed.
func runWindow(s *sim, scale int) error {
	if scale < 1 {
		scale = 1
	}
	b := s.composite().Bounds()
	g := &game{s: s, w: b.Dx() * scale, h: b.Dy() * scale, scale: scale}
	ebiten.SetWindowTitle("retropanel")
	ebiten.SetWindowSize(g.w, g.h)
	ebiten.SetTPS(tps)
	return ebiten.RunGame(g)
}

type game struct {
	s     *sim
	w, h  int
	scale int
	fb    *ebiten.Image
	pix   []byte
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	for i, k := range presetKeys {
		if inpututil.IsKeyJustPressed(k) {
			g.s.pressPreset(i)
		}
		if inpututil.IsKeyJustReleased(k) {
			g.s.releasePreset(i)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
		g.s.turn(1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
		g.s.turn(-1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.s.pressButton()
	}
	if inpututil.IsKeyJustReleased(ebiten.KeyEnter) {
		g.s.releaseButton()
	}
	for p, k := range modeKeys {
		if inpututil.IsKeyJustPressed(k) {
			g.s.selectMode(p)
		}
	}
	return g.s.step(1000 / tps)
}

// Draw paints every lit LED in amber.
func (g *game) Draw(screen *ebiten.Image) {
	f := g.s.composite()
	w, h := f.Bounds().Dx(), f.Bounds().Dy()
	if g.fb == nil {
		g.fb = ebiten.NewImage(w, h)
		g.pix = make([]byte, 4*w*h)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := f.LevelAt(x, y).V
			j := 4 * (y*w + x)
			g.pix[j+0] = v
			g.pix[j+1] = uint8(uint16(v) * 3 / 4)
			g.pix[j+2] = 0
			g.pix[j+3] = 0xFF
		}
	}
	g.fb.WritePixels(g.pix)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.fb, op)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.w, g.h
}
