// Package generate provides generation collaborators: a latency simulator
// used when no model backend is configured, and a Gemini-backed restyler.
package generate

import (
	"context"
	"errors"
	"image"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"shufflerd/internal/frame"
	"shufflerd/internal/shuffler"
)

// Defaults for the dummy latency window.
const (
	DefaultDummyMinLatency = 500 * time.Millisecond
	DefaultDummyMaxLatency = 2 * time.Second
)

// DummyConfig configures Dummy.
type DummyConfig struct {
	MinLatency time.Duration
	MaxLatency time.Duration
	// Seed feeds the latency stream.
	Seed   uint64
	Copier shuffler.Copier
	Logger zerolog.Logger
}

// Dummy copies the source into the destination, posterizes it so results
// are visible on screen, and then waits a random latency.
type Dummy struct {
	min, max time.Duration
	copier   shuffler.Copier
	log      zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewDummy validates cfg and applies defaults.
func NewDummy(cfg DummyConfig) (*Dummy, error) {
	if cfg.Copier == nil {
		return nil, errors.New("dummy generator: copier is required")
	}
	if cfg.MinLatency <= 0 && cfg.MaxLatency <= 0 {
		cfg.MinLatency, cfg.MaxLatency = DefaultDummyMinLatency, DefaultDummyMaxLatency
	}
	if cfg.MinLatency < 0 {
		cfg.MinLatency = 0
	}
	if cfg.MaxLatency < cfg.MinLatency {
		return nil, errors.New("dummy generator: max latency below min latency")
	}
	return &Dummy{
		min:    cfg.MinLatency,
		max:    cfg.MaxLatency,
		copier: cfg.Copier,
		log:    cfg.Logger.With().Str("generator", "dummy").Logger(),
		rng:    rand.New(rand.NewPCG(cfg.Seed, 0xd0d0)),
	}, nil
}

func (d *Dummy) latency() time.Duration {
	if d.max == d.min {
		return d.min
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.min + time.Duration(d.rng.Int64N(int64(d.max-d.min)+1))
}

// Generate implements shuffler.Generator.
func (d *Dummy) Generate(ctx context.Context, src image.Image, p shuffler.Params, dst *frame.Buffer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.copier.Copy(src, dst)
	Posterize(dst.Img, levels(p.Strength))

	wait := d.latency()
	d.log.Debug().Dur("latency", wait).Int64("seed", p.Seed).Msg("simulating generation")
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// levels maps strength (0,1] to posterize levels: stronger means coarser.
func levels(strength float64) int {
	if strength <= 0 {
		strength = 0.5
	}
	if strength > 1 {
		strength = 1
	}
	return 2 + int((1-strength)*14)
}

// Posterize quantizes each color channel of img to n levels in place.
func Posterize(img *image.RGBA, n int) {
	if img == nil || n < 2 || n >= 256 {
		return
	}
	step := 255.0 / float64(n-1)
	var lut [256]uint8
	for i := range lut {
		q := int(float64(i)/step + 0.5)
		lut[i] = uint8(float64(q)*step + 0.5)
	}
	b := img.Rect
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y) : img.PixOffset(b.Min.X, y)+b.Dx()*4]
		for i := 0; i < len(row); i += 4 {
			row[i] = lut[row[i]]
			row[i+1] = lut[row[i+1]]
			row[i+2] = lut[row[i+2]]
		}
	}
}
