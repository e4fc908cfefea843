package render

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"sync"
	"sync/atomic"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"shufflerd/internal/clock"
	"shufflerd/internal/frame"
	"shufflerd/internal/shuffler"
)

// Transform places a layer on the output: a uniform scale about the origin
// followed by a translation in output pixels. The zero value is identity.
type Transform struct {
	Scale  float64
	DX, DY float64
}

func (t Transform) identity() bool {
	return (t.Scale == 0 || t.Scale == 1) && t.DX == 0 && t.DY == 0
}

// aff3 maps source pixels onto the output, fitting src to out first.
func (t Transform) aff3(src, out image.Rectangle) f64.Aff3 {
	s := t.Scale
	if s == 0 {
		s = 1
	}
	sx := s * float64(out.Dx()) / float64(src.Dx())
	sy := s * float64(out.Dy()) / float64(src.Dy())
	return f64.Aff3{
		sx, 0, float64(out.Min.X) - sx*float64(src.Min.X) + t.DX,
		0, sy, float64(out.Min.Y) - sy*float64(src.Min.Y) + t.DY,
	}
}

// Blend controls how a layer is combined with what is already drawn.
type Blend struct {
	// Alpha is the layer opacity in [0,1].
	Alpha float64
	// Replace overwrites the output instead of compositing over it.
	Replace bool
	// ClipTop hides the top fraction of the output from this layer.
	ClipTop float64
}

// Opaque replaces the output with the layer.
var Opaque = Blend{Alpha: 1, Replace: true}

// Compositor draws pipeline views into one output image: the current frame,
// the next frame faded in by flip progress, and the reveal layer lifted and
// wiped by the reveal easing.
type Compositor struct {
	mu     sync.Mutex
	out    *image.RGBA
	interp xdraw.Interpolator
	mask   *image.Uniform
	enc    png.Encoder
	frames atomic.Uint64
}

// NewCompositor allocates the w x h output image.
func NewCompositor(w, h int) *Compositor {
	return &Compositor{
		out:    image.NewRGBA(image.Rect(0, 0, w, h)),
		interp: xdraw.ApproxBiLinear,
		mask:   image.NewUniform(color.Alpha16{A: 0xffff}),
		enc:    png.Encoder{CompressionLevel: png.BestSpeed},
	}
}

// Bounds returns the output rectangle.
func (c *Compositor) Bounds() image.Rectangle { return c.out.Rect }

// Frames returns how many views were composed.
func (c *Compositor) Frames() uint64 { return c.frames.Load() }

// Compose draws v. It is meant to be passed to Pipeline.Render.
func (c *Compositor) Compose(v shuffler.View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draw(v.Current, Transform{}, Opaque)
	c.draw(v.Next, Transform{}, Blend{Alpha: v.Clock.Flip})
	if v.Clock.RevealVisible {
		lift := v.Clock.RevealLift * float64(c.out.Rect.Dy())
		c.draw(v.Revealed, Transform{DY: -lift}, Blend{Alpha: 1, ClipTop: v.Clock.RevealCutoff})
	}
	c.frames.Add(1)
}

// Draw composites one buffer onto the output.
func (c *Compositor) Draw(b *frame.Buffer, t Transform, bl Blend) {
	c.mu.Lock()
	c.draw(b, t, bl)
	c.mu.Unlock()
}

func (c *Compositor) draw(b *frame.Buffer, t Transform, bl Blend) {
	if b == nil || b.Img == nil || bl.Alpha <= 0 {
		return
	}
	r := c.out.Rect
	if bl.ClipTop > 0 {
		r.Min.Y += int(math.Round(clock.Clamp01(bl.ClipTop) * float64(r.Dy())))
		if r.Empty() {
			return
		}
	}
	op := xdraw.Over
	if bl.Replace {
		op = xdraw.Src
	}
	var mask image.Image
	if bl.Alpha < 1 {
		c.mask.C = color.Alpha16{A: uint16(clock.Clamp01(bl.Alpha) * 0xffff)}
		mask = c.mask
	}
	dst := c.out.SubImage(r).(*image.RGBA)
	sb := b.Img.Bounds()
	if t.identity() && sb.Size() == c.out.Rect.Size() {
		xdraw.DrawMask(dst, r, b.Img, sb.Min.Add(r.Min.Sub(c.out.Rect.Min)), mask, image.Point{}, op)
		return
	}
	c.interp.Transform(dst, t.aff3(sb, c.out.Rect), b.Img, sb, op, &xdraw.Options{SrcMask: mask})
}

// EncodePNG writes the last composed image.
func (c *Compositor) EncodePNG(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enc.Encode(w, c.out)
}

// CopyPixels copies the RGBA pixels of the last composed image into dst and
// returns the number of bytes written.
func (c *Compositor) CopyPixels(dst []byte) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copy(dst, c.out.Pix)
}
