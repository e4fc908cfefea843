// Package clock tracks the two animation timelines of the display: the fast
// flip crossfade and the slower reveal of the latest generated frame.
//
// The presentation tick calls Advance; the pipeline loop calls ResetFlip and
// StartReveal. Both may run on different goroutines.
package clock

import (
	"sync"
	"time"
)

// Params are the fixed timing parameters.
type Params struct {
	Flip           time.Duration
	Reveal         time.Duration
	InsertionCount int
	LiftScale      float64
}

// View is an eased snapshot consumed by the compositor.
type View struct {
	// Flip is the crossfade weight between the current and next frames.
	Flip float64
	// RevealProgress is seconds since the last reveal started.
	RevealProgress float64
	// RevealCutoff is 0 when the reveal window opens and 1 when it closes.
	RevealCutoff float64
	// RevealLift is the cubic offset of the reveal layer. Negative when no
	// generated frame has been integrated yet.
	RevealLift float64
	// RevealVisible reports whether the reveal layer should be drawn.
	RevealVisible bool
}

// Clock holds flip and reveal progress.
type Clock struct {
	mu     sync.Mutex
	p      Params
	flip   float64
	reveal time.Duration
	armed  bool
}

// New returns a clock with no reveal armed and the flip finished.
func New(p Params) *Clock {
	if p.LiftScale == 0 {
		p.LiftScale = 1
	}
	return &Clock{p: p, flip: 1}
}

// Advance moves both timelines forward by dt.
func (c *Clock) Advance(dt time.Duration) {
	if dt <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.p.Flip > 0 {
		c.flip += float64(dt) / float64(c.p.Flip)
	} else {
		c.flip = 1
	}
	if c.flip > 1 {
		c.flip = 1
	}
	if c.armed {
		c.reveal += dt
	}
}

// ResetFlip restarts the flip crossfade.
func (c *Clock) ResetFlip() {
	c.mu.Lock()
	c.flip = 0
	c.mu.Unlock()
}

// StartReveal restarts both timelines for a newly integrated frame.
func (c *Clock) StartReveal() {
	c.mu.Lock()
	c.flip = 0
	c.reveal = 0
	c.armed = true
	c.mu.Unlock()
}

// FlipProgress returns the raw flip progress in [0,1].
func (c *Clock) FlipProgress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flip
}

// View computes the eased values.
func (c *Clock) View() View {
	c.mu.Lock()
	flip, reveal, armed := c.flip, c.reveal, c.armed
	c.mu.Unlock()

	v := View{Flip: Clamp01(flip), RevealLift: -1, RevealCutoff: -1}
	if !armed {
		return v
	}
	rp := reveal.Seconds()
	flipSec := c.p.Flip.Seconds()
	v.RevealProgress = rp
	if c.p.Reveal > 0 {
		v.RevealCutoff = (rp - flipSec*float64(c.p.InsertionCount)) / c.p.Reveal.Seconds()
	} else {
		v.RevealCutoff = 2
	}
	v.RevealLift = EaseInCubic(PositivePart(rp-flipSec)) * c.p.LiftScale
	v.RevealVisible = v.RevealLift >= 0 && v.RevealCutoff >= 0 && v.RevealCutoff <= 1
	return v
}
