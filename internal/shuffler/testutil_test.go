package shuffler

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"shufflerd/internal/frame"
)

// stubSource returns a tiny solid image.
type stubSource struct {
	img   *image.RGBA
	calls atomic.Int64
}

func newStubSource() *stubSource {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	draw.Draw(img, img.Rect, image.NewUniform(color.RGBA{R: 10, G: 20, B: 30, A: 255}), image.Point{}, draw.Src)
	return &stubSource{img: img}
}

func (s *stubSource) CurrentImage() image.Image {
	s.calls.Add(1)
	return s.img
}

// stubCopier counts copies and stamps the buffer.
type stubCopier struct{ copies atomic.Int64 }

func (c *stubCopier) Copy(src image.Image, dst *frame.Buffer) {
	c.copies.Add(1)
	draw.Draw(dst.Img, dst.Img.Rect, src, src.Bounds().Min, draw.Src)
}

// trackingGenerator wraps a behaviour and records concurrency.
type trackingGenerator struct {
	behaviour func(ctx context.Context, dst *frame.Buffer) error

	inflight    atomic.Int64
	maxInflight atomic.Int64
	calls       atomic.Int64
	cancelled   atomic.Int64
	mu          sync.Mutex
	seeds       []int64
	prompts     []string
}

func (g *trackingGenerator) Generate(ctx context.Context, src image.Image, p Params, dst *frame.Buffer) error {
	n := g.inflight.Add(1)
	defer g.inflight.Add(-1)
	for {
		m := g.maxInflight.Load()
		if n <= m || g.maxInflight.CompareAndSwap(m, n) {
			break
		}
	}
	g.calls.Add(1)
	g.mu.Lock()
	g.seeds = append(g.seeds, p.Seed)
	g.prompts = append(g.prompts, p.Prompt)
	g.mu.Unlock()
	err := g.behaviour(ctx, dst)
	if errors.Is(err, context.Canceled) {
		g.cancelled.Add(1)
	}
	return err
}

func (g *trackingGenerator) Prompts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.prompts...)
}

var paint = color.RGBA{R: 200, G: 10, B: 10, A: 255}

func instantGen() *trackingGenerator {
	return &trackingGenerator{behaviour: func(ctx context.Context, dst *frame.Buffer) error {
		draw.Draw(dst.Img, dst.Img.Rect, image.NewUniform(paint), image.Point{}, draw.Src)
		return nil
	}}
}

func delayedGen(d time.Duration) *trackingGenerator {
	return &trackingGenerator{behaviour: func(ctx context.Context, dst *frame.Buffer) error {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
		draw.Draw(dst.Img, dst.Img.Rect, image.NewUniform(paint), image.Point{}, draw.Src)
		return nil
	}}
}

func blockingGen() *trackingGenerator {
	return &trackingGenerator{behaviour: func(ctx context.Context, dst *frame.Buffer) error {
		<-ctx.Done()
		return ctx.Err()
	}}
}

var errUnavailable = errors.New("resource unavailable")

func failingGen() *trackingGenerator {
	return &trackingGenerator{behaviour: func(ctx context.Context, dst *frame.Buffer) error {
		return errUnavailable
	}}
}

// scaledConfig flips every 10ms and reveals every 100ms, so admission waits
// ten flips.
func scaledConfig() Config {
	return Config{
		Width:          8,
		Height:         8,
		FlipInterval:   10 * time.Millisecond,
		RevealInterval: 100 * time.Millisecond,
		InsertionCount: 5,
		PoolSize:       4,
		SeedPolicy:     SeedRandom,
	}
}

type harness struct {
	p       *Pipeline
	src     *stubSource
	copier  *stubCopier
	events  *MemoryPublisher
	cancel  context.CancelFunc
	runErr  chan error
	stopped chan struct{}
	halt    sync.Once

	censusChecks  atomic.Int64
	censusBroken  atomic.Int64
	lastBadCensus atomic.Value
}

// startHarness builds, initializes and runs a pipeline, sampling the buffer
// census every millisecond until stop.
func startHarness(t *testing.T, cfg Config, gen Generator) *harness {
	t.Helper()
	h := &harness{src: newStubSource(), copier: &stubCopier{}, events: NewMemoryPublisher()}
	p, err := New(cfg, Collaborators{Source: h.src, Generator: gen, Copier: h.copier})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	p.SetEventPublisher(h.events)
	if err := p.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	h.p = p
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	h.runErr = make(chan error, 1)
	h.stopped = make(chan struct{})
	go func() { h.runErr <- p.Run(ctx) }()
	go func() {
		tk := time.NewTicker(time.Millisecond)
		defer tk.Stop()
		for {
			select {
			case <-h.stopped:
				return
			case <-tk.C:
				c := p.Census()
				if c.Total == 0 {
					continue
				}
				h.censusChecks.Add(1)
				if c.Sum() != c.Total {
					h.censusBroken.Add(1)
					h.lastBadCensus.Store(c)
				}
			}
		}
	}()
	t.Cleanup(func() {
		cancel()
		p.Shutdown()
	})
	return h
}

// stop cancels the run and returns Run's error.
func (h *harness) stop(t *testing.T) error {
	t.Helper()
	h.cancel()
	return h.result(t)
}

// result waits for Run to return and stops the census sampler.
func (h *harness) result(t *testing.T) error {
	t.Helper()
	h.halt.Do(func() { close(h.stopped) })
	select {
	case err := <-h.runErr:
		return err
	case <-time.After(2 * time.Second):
		t.Fatalf("run did not return after cancel")
		return nil
	}
}

func waitFor(t *testing.T, d time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", d)
}
