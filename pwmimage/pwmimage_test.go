package pwmimage

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func TestLevelRGBA(t *testing.T) {
	tests := []struct {
		name  string
		level Level
		want  uint32
	}{
		{"off", Level{V: 0}, 0x0000},
		{"very dim", Level{V: 8}, 0x0808},
		{"normal", Level{V: 70}, 0x4646},
		{"bright", Level{V: 150}, 0x9696},
		{"full", Level{V: 255}, 0xFFFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b, a := tt.level.RGBA()
			if r != tt.want || g != tt.want || b != tt.want || a != 0xFFFF {
				t.Errorf("RGBA() = (%x, %x, %x, %x), want (%x, %x, %x, %x)",
					r, g, b, a, tt.want, tt.want, tt.want, uint32(0xFFFF))
			}
		})
	}
}

func TestLevelModelConvert(t *testing.T) {
	tests := []struct {
		name  string
		input color.Color
		want  uint8
	}{
		{"level passthrough", Level{V: 42}, 42},
		{"black", color.Black, 0},
		{"white", color.White, 255},
		{"gray", color.Gray{Y: 0x80}, 0x80},
		{"pure red keeps full duty", color.RGBA{0xFF, 0, 0, 0xFF}, 255},
		{"brightest channel wins", color.RGBA{0x10, 0x90, 0x20, 0xFF}, 0x90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := LevelModel.Convert(tt.input).(Level)
			if result.V != tt.want {
				t.Errorf("LevelModel.Convert(%v).V = %d, want %d", tt.input, result.V, tt.want)
			}
		})
	}
}

func TestFromRGBA(t *testing.T) {
	for _, v := range []uint8{0, 1, 8, 20, 70, 150, 254, 255} {
		if got := FromRGBA(Gray(v)); got != v {
			t.Errorf("FromRGBA(Gray(%d)) = %d, want %d", v, got, v)
		}
	}
}

func TestNewFrame(t *testing.T) {
	tests := []struct {
		name       string
		rect       image.Rectangle
		wantStride int
		wantPixLen int
	}{
		{"72x6 panel", image.Rect(0, 0, 72, 6), 72, 432},
		{"12x12 chip", image.Rect(0, 0, 12, 12), 12, 144},
		{"odd width", image.Rect(0, 0, 5, 2), 5, 10},
		{"offset rect", image.Rect(10, 20, 14, 22), 4, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := NewFrame(tt.rect)
			if img.Rect != tt.rect {
				t.Errorf("Rect = %v, want %v", img.Rect, tt.rect)
			}
			if img.Stride != tt.wantStride {
				t.Errorf("Stride = %d, want %d", img.Stride, tt.wantStride)
			}
			if len(img.Pix) != tt.wantPixLen {
				t.Errorf("len(Pix) = %d, want %d", len(img.Pix), tt.wantPixLen)
			}
		})
	}
}

func TestFrameSetGet(t *testing.T) {
	img := NewFrame(image.Rect(0, 0, 4, 2))

	img.SetLevel(0, 0, Level{V: 5})
	img.SetLevel(3, 1, Level{V: 200})
	img.Set(1, 0, color.White)

	if got := img.LevelAt(0, 0).V; got != 5 {
		t.Errorf("LevelAt(0, 0) = %d, want 5", got)
	}
	if got := img.LevelAt(3, 1).V; got != 200 {
		t.Errorf("LevelAt(3, 1) = %d, want 200", got)
	}
	if got := img.At(1, 0).(Level).V; got != 255 {
		t.Errorf("At(1, 0) = %d, want 255", got)
	}
	if img.Pix[7] != 200 {
		t.Errorf("Pix[7] = %d, want 200", img.Pix[7])
	}
}

func TestFrameOutOfBounds(t *testing.T) {
	img := NewFrame(image.Rect(0, 0, 4, 2))

	// Out-of-range writes are ignored.
	img.SetLevel(-1, 0, Level{V: 9})
	img.SetLevel(4, 0, Level{V: 9})
	img.Set(0, 2, color.White)

	for i, v := range img.Pix {
		if v != 0 {
			t.Errorf("Pix[%d] = %d, want 0", i, v)
		}
	}
	if got := img.LevelAt(10, 10).V; got != 0 {
		t.Errorf("LevelAt(10, 10) = %d, want 0", got)
	}
}

func TestFramePixOffset(t *testing.T) {
	img := NewFrame(image.Rect(10, 20, 14, 22))
	tests := []struct {
		x, y int
		want int
	}{
		{10, 20, 0},
		{13, 20, 3},
		{10, 21, 4},
		{13, 21, 7},
	}
	for _, tt := range tests {
		if got := img.PixOffset(tt.x, tt.y); got != tt.want {
			t.Errorf("PixOffset(%d, %d) = %d, want %d", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestFrameFillClear(t *testing.T) {
	img := NewFrame(image.Rect(0, 0, 3, 3))
	img.Fill(128)
	for i, v := range img.Pix {
		if v != 128 {
			t.Fatalf("after Fill Pix[%d] = %d, want 128", i, v)
		}
	}
	img.Clear()
	for i, v := range img.Pix {
		if v != 0 {
			t.Fatalf("after Clear Pix[%d] = %d, want 0", i, v)
		}
	}
}

func TestFrameDrawInterop(t *testing.T) {
	img := NewFrame(image.Rect(0, 0, 8, 2))
	draw.Draw(img, image.Rect(2, 0, 4, 2), image.NewUniform(Level{V: 70}), image.Point{}, draw.Src)

	for x := 0; x < 8; x++ {
		want := uint8(0)
		if x >= 2 && x < 4 {
			want = 70
		}
		if got := img.LevelAt(x, 1).V; got != want {
			t.Errorf("LevelAt(%d, 1) = %d, want %d", x, got, want)
		}
	}
	if img.ColorModel() != LevelModel {
		t.Error("ColorModel() did not return LevelModel")
	}
}
