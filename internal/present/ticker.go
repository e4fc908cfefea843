// Package present drives the presentation side of a pipeline without a
// window: a ticker at the display frame rate advances the animation clock and
// composes the current view.
package present

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"shufflerd/internal/shuffler"
)

// DefaultFPS is the display rate used when none is configured.
const DefaultFPS = 24

var (
	ticksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "shufflerd",
		Subsystem: "present",
		Name:      "ticks_total",
		Help:      "Presentation ticks.",
	})
	skippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "shufflerd",
		Subsystem: "present",
		Name:      "skipped_total",
		Help:      "Ticks with nothing to draw.",
	})
)

func init() {
	prometheus.MustRegister(ticksTotal, skippedTotal)
}

// Renderer is the presentation surface of a pipeline.
type Renderer interface {
	Tick(dt time.Duration)
	Render(fn func(shuffler.View)) bool
}

// Ticker calls Tick and Render on every display frame.
type Ticker struct {
	fps     int
	r       Renderer
	compose func(shuffler.View)
	log     zerolog.Logger
	ticks   atomic.Uint64
	drawn   atomic.Uint64
}

// NewTicker returns a ticker at fps frames per second; fps <= 0 means
// DefaultFPS.
func NewTicker(fps int, r Renderer, compose func(shuffler.View), log zerolog.Logger) *Ticker {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Ticker{fps: fps, r: r, compose: compose, log: log.With().Str("component", "present").Logger()}
}

// Interval is the duration of one display frame.
func (t *Ticker) Interval() time.Duration { return time.Second / time.Duration(t.fps) }

// Ticks returns how many ticks ran.
func (t *Ticker) Ticks() uint64 { return t.ticks.Load() }

// Drawn returns how many ticks composed a view.
func (t *Ticker) Drawn() uint64 { return t.drawn.Load() }

// Run ticks until ctx is done. The clock advances by the measured time
// between ticks, so a late tick catches up instead of slowing the animation.
func (t *Ticker) Run(ctx context.Context) error {
	tk := time.NewTicker(t.Interval())
	defer tk.Stop()
	t.log.Info().Int("fps", t.fps).Msg("presenter running")
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			t.log.Info().Uint64("ticks", t.ticks.Load()).Msg("presenter stopped")
			return nil
		case now := <-tk.C:
			t.step(now.Sub(last))
			last = now
		}
	}
}

func (t *Ticker) step(dt time.Duration) {
	t.ticks.Add(1)
	ticksTotal.Inc()
	t.r.Tick(dt)
	if t.compose == nil {
		return
	}
	if t.r.Render(t.compose) {
		t.drawn.Add(1)
	} else {
		skippedTotal.Inc()
	}
}
