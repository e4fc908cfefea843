package shuffler

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"shufflerd/internal/frame"
)

// outcome is the single resolution of one generation request.
type outcome struct {
	target   *frame.Buffer
	seed     int64
	err      error
	duration time.Duration
}

func (o outcome) cancelled() bool {
	return errors.Is(o.err, context.Canceled) || errors.Is(o.err, context.DeadlineExceeded)
}

// Coordinator runs at most one generation at a time and decides when the
// next one may start. Admit, Start, Poll and Step are called from the pipeline
// loop only; the counters and InFlight may be read from anywhere.
type Coordinator struct {
	gen        Generator
	policy     AdmissionPolicy
	threshold  int
	retryAfter int

	// genCh has capacity 1: holding its token means a generation is in flight
	// or its result has not been collected by Poll yet.
	genCh  chan struct{}
	done   chan outcome
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	target *frame.Buffer

	cycles  int
	drained bool

	started   atomic.Uint64
	completed atomic.Uint64
	failed    atomic.Uint64
	cancelled atomic.Uint64
}

func newCoordinator(gen Generator, policy AdmissionPolicy, threshold, retryAfter int) *Coordinator {
	c := &Coordinator{
		gen:        gen,
		policy:     policy,
		threshold:  threshold,
		retryAfter: retryAfter,
		genCh:      make(chan struct{}, 1),
		done:       make(chan outcome, 1),
	}
	// The first generation is admitted as soon as the loop asks.
	c.cycles = threshold
	c.drained = true
	return c
}

// Step records one elapsed flip cycle.
func (c *Coordinator) Step() { c.cycles++ }

// MarkDrained records that the stock queue ran empty.
func (c *Coordinator) MarkDrained() { c.drained = true }

// InFlight reports whether a generation holds the single slot.
func (c *Coordinator) InFlight() bool { return len(c.genCh) == 1 }

// Target returns the buffer the in-flight generation writes into.
func (c *Coordinator) Target() *frame.Buffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// Admit reports whether a new generation may start now.
func (c *Coordinator) Admit() bool {
	if c.InFlight() || c.gen == nil {
		return false
	}
	switch c.policy {
	case AdmitDrained:
		return c.drained
	default:
		return c.cycles >= c.threshold
	}
}

// Start launches a generation writing into target. Starting while another
// generation holds the slot is an invariant violation.
func (c *Coordinator) Start(ctx context.Context, src image.Image, p Params, target *frame.Buffer) error {
	select {
	case c.genCh <- struct{}{}:
	default:
		return invariantError{op: "generation start", err: errors.New("a generation is already in flight or awaiting integration")}
	}
	gctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.target = target
	c.cancel = cancel
	c.mu.Unlock()
	c.cycles = 0
	c.drained = false
	c.started.Add(1)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		start := time.Now()
		err := c.gen.Generate(gctx, src, p, target)
		if err == nil && gctx.Err() != nil {
			err = gctx.Err()
		}
		c.done <- outcome{target: target, seed: p.Seed, err: err, duration: time.Since(start)}
	}()
	return nil
}

// Poll collects a finished generation without blocking. It frees the single
// slot, so the caller must integrate or recycle the returned target.
func (c *Coordinator) Poll() (outcome, bool) {
	select {
	case out := <-c.done:
		c.resolve(out)
		return out, true
	default:
		return outcome{}, false
	}
}

// Done exposes completion for callers that want to wait.
func (c *Coordinator) Done() <-chan outcome { return c.done }

func (c *Coordinator) resolve(out outcome) {
	c.mu.Lock()
	c.target = nil
	c.cancel = nil
	c.mu.Unlock()
	switch {
	case out.err == nil:
		c.completed.Add(1)
	case out.cancelled():
		c.cancelled.Add(1)
	default:
		c.failed.Add(1)
		// Retry retryAfter cycles from now rather than a full threshold later.
		c.cycles = c.threshold - c.retryAfter
		if c.cycles < 0 {
			c.cycles = 0
		}
	}
	<-c.genCh
}

// Cancel signals the in-flight generation, if any.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the generation goroutine exits. The outcome stays
// pending for Poll.
func (c *Coordinator) Wait() { c.wg.Wait() }

// CoordinatorStats are the lifetime counters.
type CoordinatorStats struct {
	Started   uint64
	Completed uint64
	Failed    uint64
	Cancelled uint64
	InFlight  bool
}

// Stats returns a counters snapshot.
func (c *Coordinator) Stats() CoordinatorStats {
	return CoordinatorStats{
		Started:   c.started.Load(),
		Completed: c.completed.Load(),
		Failed:    c.failed.Load(),
		Cancelled: c.cancelled.Load(),
		InFlight:  c.InFlight(),
	}
}
