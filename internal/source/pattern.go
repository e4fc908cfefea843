// Package source provides the source collaborators of the pipeline: a
// synthetic animated pattern and a slideshow over an image directory.
package source

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// Pattern is a synthetic moving source standing in for a camera: diagonal
// color bands drifting over time with a few seeded blocks on top.
type Pattern struct {
	mu     sync.Mutex
	img    *image.RGBA
	period time.Duration
	start  time.Time
	now    func() time.Time
	blocks []image.Rectangle
	tints  []color.RGBA
}

// NewPattern returns a w x h pattern whose bands complete one cycle every
// period. The same seed always yields the same blocks.
func NewPattern(w, h int, period time.Duration, seed uint64) *Pattern {
	if period <= 0 {
		period = 4 * time.Second
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	p := &Pattern{
		img:    image.NewRGBA(image.Rect(0, 0, w, h)),
		period: period,
		now:    time.Now,
	}
	p.start = p.now()
	for range 6 {
		bw, bh := 1+rng.IntN(max(1, w/4)), 1+rng.IntN(max(1, h/4))
		x, y := rng.IntN(max(1, w-bw)), rng.IntN(max(1, h-bh))
		p.blocks = append(p.blocks, image.Rect(x, y, x+bw, y+bh))
		p.tints = append(p.tints, color.RGBA{R: uint8(rng.Uint32()), G: uint8(rng.Uint32()), B: uint8(rng.Uint32()), A: 255})
	}
	return p
}

// CurrentImage redraws the pattern for the current time. The returned image
// is reused by the next call.
func (p *Pattern) CurrentImage() image.Image {
	p.mu.Lock()
	defer p.mu.Unlock()
	phase := float64(p.now().Sub(p.start)%p.period) / float64(p.period)
	p.paint(phase)
	return p.img
}

func (p *Pattern) paint(phase float64) {
	b := p.img.Rect
	w, h := float64(b.Dx()), float64(b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := p.img.Pix[p.img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			t := (float64(x)/w+float64(y)/h)/2 + phase
			i := x * 4
			row[i] = band(t)
			row[i+1] = band(t + 1.0/3)
			row[i+2] = band(t + 2.0/3)
			row[i+3] = 255
		}
	}
	// Blocks orbit with the phase so consecutive frames differ.
	shift := image.Pt(int(math.Round(math.Cos(2*math.Pi*phase)*w/16)), int(math.Round(math.Sin(2*math.Pi*phase)*h/16)))
	for i, r := range p.blocks {
		r = r.Add(shift).Intersect(b)
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				p.img.SetRGBA(x, y, p.tints[i])
			}
		}
	}
}

func band(t float64) uint8 {
	return uint8(127.5 + 127.5*math.Sin(2*math.Pi*t))
}
