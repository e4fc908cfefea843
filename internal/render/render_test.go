package render

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"testing"

	"shufflerd/internal/clock"
	"shufflerd/internal/frame"
	"shufflerd/internal/shuffler"
)

func solid(id, w, h int, c color.RGBA) *frame.Buffer {
	b := frame.NewBuffer(id, w, h)
	draw.Draw(b.Img, b.Img.Rect, image.NewUniform(c), image.Point{}, draw.Src)
	return b
}

var (
	red   = color.RGBA{R: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
)

func TestCoverRect(t *testing.T) {
	cases := []struct {
		name string
		sr   image.Rectangle
		size image.Point
		want image.Rectangle
	}{
		{"same aspect", image.Rect(0, 0, 640, 384), image.Pt(320, 192), image.Rect(0, 0, 640, 384)},
		{"wider source", image.Rect(0, 0, 800, 384), image.Pt(640, 384), image.Rect(80, 0, 720, 384)},
		{"taller source", image.Rect(0, 0, 640, 640), image.Pt(640, 384), image.Rect(0, 128, 640, 512)},
		{"offset source", image.Rect(10, 10, 30, 20), image.Pt(10, 10), image.Rect(15, 10, 25, 20)},
	}
	for _, tc := range cases {
		if got := CoverRect(tc.sr, tc.size); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestScaleCopierFastPathAndScale(t *testing.T) {
	c, err := NewScaleCopier("")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	src := solid(0, 8, 4, red)
	dst := frame.NewBuffer(1, 8, 4)
	c.Copy(src.Img, dst)
	if !bytes.Equal(src.Img.Pix, dst.Img.Pix) {
		t.Fatalf("same-size copy differs")
	}

	big := image.NewNRGBA(image.Rect(0, 0, 32, 16))
	draw.Draw(big, big.Rect, image.NewUniform(blue), image.Point{}, draw.Src)
	c.Copy(big, dst)
	if got := dst.Img.RGBAAt(3, 2); got != blue {
		t.Fatalf("scaled pixel = %v, want %v", got, blue)
	}
}

func TestScaleCopierKernels(t *testing.T) {
	for _, k := range []string{KernelNearest, KernelApprox, KernelBilinear, "CatmullRom"} {
		if _, err := NewScaleCopier(k); err != nil {
			t.Fatalf("kernel %q: %v", k, err)
		}
	}
	if _, err := NewScaleCopier("lanczos"); err == nil {
		t.Fatalf("expected error for unknown kernel")
	}
}

func TestComposeCrossfade(t *testing.T) {
	c := NewCompositor(4, 4)
	v := shuffler.View{
		Current: solid(0, 4, 4, red),
		Next:    solid(1, 4, 4, blue),
		Clock:   clock.View{Flip: 0},
	}
	c.Compose(v)
	if got := c.out.RGBAAt(1, 1); got != red {
		t.Fatalf("flip 0 shows %v, want current", got)
	}
	v.Clock.Flip = 1
	c.Compose(v)
	if got := c.out.RGBAAt(1, 1); got != blue {
		t.Fatalf("flip 1 shows %v, want next", got)
	}
	v.Clock.Flip = 0.5
	c.Compose(v)
	got := c.out.RGBAAt(1, 1)
	if got.R < 100 || got.R > 155 || got.B < 100 || got.B > 155 {
		t.Fatalf("flip 0.5 shows %v, want a blend", got)
	}
	if c.Frames() != 3 {
		t.Fatalf("frames = %d", c.Frames())
	}
}

func TestComposeRevealLayer(t *testing.T) {
	c := NewCompositor(4, 8)
	v := shuffler.View{
		Current:  solid(0, 4, 8, red),
		Next:     solid(1, 4, 8, red),
		Revealed: solid(2, 4, 8, green),
		Clock:    clock.View{Flip: 1, RevealVisible: false, RevealLift: -1, RevealCutoff: -1},
	}
	c.Compose(v)
	if got := c.out.RGBAAt(2, 6); got != red {
		t.Fatalf("hidden reveal drew %v", got)
	}

	v.Clock = clock.View{Flip: 1, RevealVisible: true, RevealLift: 0, RevealCutoff: 0}
	c.Compose(v)
	if got := c.out.RGBAAt(2, 0); got != green {
		t.Fatalf("open reveal shows %v at top, want reveal", got)
	}

	// Half the layer is wiped from the top.
	v.Clock.RevealCutoff = 0.5
	c.Compose(v)
	if got := c.out.RGBAAt(2, 1); got != red {
		t.Fatalf("wiped row shows %v", got)
	}
	if got := c.out.RGBAAt(2, 6); got != green {
		t.Fatalf("kept row shows %v", got)
	}

	// Lifted by a quarter of the height: the bottom rows uncover.
	v.Clock.RevealCutoff = 0
	v.Clock.RevealLift = 0.25
	c.Compose(v)
	if got := c.out.RGBAAt(2, 7); got != red {
		t.Fatalf("lifted layer still covers the bottom row: %v", got)
	}
	if got := c.out.RGBAAt(2, 2); got != green {
		t.Fatalf("lifted layer missing at row 2: %v", got)
	}
}

func TestComposeIgnoresMissingBuffers(t *testing.T) {
	c := NewCompositor(2, 2)
	c.Compose(shuffler.View{Clock: clock.View{Flip: 1, RevealVisible: true}})
	c.Draw(nil, Transform{}, Opaque)
	c.Draw(&frame.Buffer{ID: 9}, Transform{}, Opaque)
}

func TestDrawScaledLayer(t *testing.T) {
	c := NewCompositor(8, 8)
	c.Draw(solid(0, 8, 8, red), Transform{}, Opaque)
	c.Draw(solid(1, 2, 2, blue), Transform{Scale: 0.5}, Blend{Alpha: 1})
	if got := c.out.RGBAAt(1, 1); got != blue {
		t.Fatalf("scaled layer missing: %v", got)
	}
	if got := c.out.RGBAAt(6, 6); got != red {
		t.Fatalf("scaled layer overflowed: %v", got)
	}
}

func TestEncodePNG(t *testing.T) {
	c := NewCompositor(4, 2)
	c.Draw(solid(0, 4, 2, blue), Transform{}, Opaque)
	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 2 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	pix := make([]byte, 4*2*4)
	if n := c.CopyPixels(pix); n != len(pix) {
		t.Fatalf("copied %d bytes", n)
	}
	if pix[2] != 255 {
		t.Fatalf("blue channel = %d", pix[2])
	}
}
