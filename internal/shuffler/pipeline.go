package shuffler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"shufflerd/internal/clock"
	"shufflerd/internal/frame"
)

// Pipeline is the frame scheduler: it banks cheap source copies, rotates them
// through the flip slots at a fixed cadence, and folds in slow generation
// results as a separately revealed layer.
//
// Only the Run goroutine transfers buffer ownership. mu guards those
// transfers so that Render, Census and Status observe whole steps.
type Pipeline struct {
	cfg    Config
	collab Collaborators
	log    zerolog.Logger

	mu     sync.RWMutex
	state  State
	err    string
	pool   *frame.Pool
	stock  *frame.Queue
	slots  slots
	coord  *Coordinator
	clock  *clock.Clock
	seeds  *seeder
	params Params
	// filling is the buffer a refill step holds between acquire and push.
	filling *frame.Buffer

	events EventPublisher

	running   atomic.Bool
	runCancel context.CancelFunc
	runDone   chan struct{}
	timer     *time.Timer

	cycles     atomic.Uint64
	flips      atomic.Uint64
	rotations  atomic.Uint64
	refills    atomic.Uint64
	integrated atomic.Uint64
	released   int
	startTime  time.Time
}

// New constructs a pipeline. Buffers are not allocated until Initialize.
func New(cfg Config, collab Collaborators) (*Pipeline, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if collab.Source == nil || collab.Copier == nil {
		return nil, errors.New("source and copier are required")
	}
	return &Pipeline{
		cfg:       cfg,
		collab:    collab,
		log:       cfg.Logger.With().Str("component", "pipeline").Logger(),
		state:     StateIdle,
		params:    cfg.Params,
		events:    noopPublisher{},
		startTime: time.Now(),
	}, nil
}

// Config returns the defaulted configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// SetEventPublisher installs an event sink. Call before Run.
func (p *Pipeline) SetEventPublisher(pub EventPublisher) {
	if pub == nil {
		pub = noopPublisher{}
	}
	p.mu.Lock()
	p.events = pub
	p.mu.Unlock()
}

func (p *Pipeline) publish(name string, fields map[string]any) {
	p.events.Publish(Event{Name: name, Cycle: p.cycles.Load(), Fields: fields})
}

// Run drives the loop until ctx is cancelled or an invariant breaks. It
// returns nil on cancellation.
func (p *Pipeline) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	// The initialized check and the cancel registration share one critical
	// section so a concurrent Shutdown either sees the loop or has already
	// claimed the pipeline.
	p.mu.Lock()
	if p.pool == nil || p.pool.Closed() || p.state == StateStopping {
		p.mu.Unlock()
		cancel()
		return errNotInitialized
	}
	if !p.running.CompareAndSwap(false, true) {
		p.mu.Unlock()
		cancel()
		return errAlreadyRunning
	}
	p.runCancel = cancel
	p.runDone = done
	p.primeLocked()
	p.state = StateRunning
	p.mu.Unlock()
	defer func() {
		cancel()
		p.running.Store(false)
		close(done)
	}()

	p.timer = time.NewTimer(p.cfg.FlipInterval)
	p.timer.Stop()
	defer p.timer.Stop()

	p.log.Info().Dur("flip", p.cfg.FlipInterval).Dur("reveal", p.cfg.RevealInterval).
		Int("pool", p.cfg.PoolSize).Str("admission", string(p.cfg.Admission)).Msg("pipeline running")

	for {
		if ctx.Err() != nil {
			return p.stopped()
		}
		if err := p.cycle(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return p.stopped()
			}
			return p.abort(err)
		}
		p.cycles.Add(1)
		observeCensus(p.Census())
	}
}

// cycle runs one outer iteration: drain, integrate, admit, refill.
func (p *Pipeline) cycle(ctx context.Context) error {
	rotated := 0
	for p.stockLen() > 0 {
		if err := p.rotate(); err != nil {
			return err
		}
		rotated++
		if !p.wait(ctx) {
			return context.Canceled
		}
		p.coord.Step()
	}
	if rotated > 0 {
		p.coord.MarkDrained()
		p.publish(EventStockDrained, map[string]any{"rotated": rotated})
	}

	if err := p.integrateGeneration(); err != nil {
		return err
	}
	if err := p.maybeStart(ctx); err != nil {
		return err
	}

	refilled := 0
	for p.freeCount() > 1 {
		if err := p.refill(ctx); err != nil {
			return err
		}
		refilled++
		p.coord.Step()
	}

	if rotated == 0 && refilled == 0 {
		// Nothing to show or bank; keep the cadence while the generation runs.
		if !p.wait(ctx) {
			return context.Canceled
		}
		p.coord.Step()
	}
	return nil
}

// wait suspends for one flip interval and counts it. It reports false on
// cancellation.
func (p *Pipeline) wait(ctx context.Context) bool {
	p.timer.Reset(p.cfg.FlipInterval)
	select {
	case <-ctx.Done():
		p.timer.Stop()
		return false
	case <-p.timer.C:
		p.flips.Add(1)
		return true
	}
}

// primeLocked fills the flip slots with the current source so the first
// frames shown are not blank. Callers hold p.mu for writing, so Render never
// sees a half-copied slot.
func (p *Pipeline) primeLocked() {
	src := p.collab.Source.CurrentImage()
	if src == nil {
		return
	}
	p.collab.Copier.Copy(src, p.slots.current)
	p.collab.Copier.Copy(src, p.slots.next)
}

// rotate moves the stock head into the next slot, shifts next to current and
// recycles the previous current.
func (p *Pipeline) rotate() error {
	p.mu.Lock()
	b, ok := p.stock.Pop()
	if !ok {
		p.mu.Unlock()
		return invariantError{op: "rotate", err: errors.New("stock queue empty")}
	}
	old := p.slots.current
	p.slots.current = p.slots.next
	p.slots.next = b
	err := p.pool.Release(old)
	p.mu.Unlock()
	if err != nil {
		return invariantError{op: "rotate", err: err}
	}
	p.clock.ResetFlip()
	p.rotations.Add(1)
	rotationsTotal.Inc()
	p.publish(EventRotate, map[string]any{"buffer": b.ID, "recycled": old.ID})
	return nil
}

// refill banks one cheap source copy, throttled to one per flip interval.
func (p *Pipeline) refill(ctx context.Context) error {
	p.mu.Lock()
	b, err := p.pool.Acquire()
	if err == nil {
		p.filling = b
	}
	p.mu.Unlock()
	if err != nil {
		return invariantError{op: "refill", err: err}
	}

	if src := p.collab.Source.CurrentImage(); src != nil {
		p.collab.Copier.Copy(src, b)
	}

	ok := p.wait(ctx)
	p.mu.Lock()
	p.filling = nil
	if ok {
		if !p.stock.Push(b) {
			err = invariantError{op: "refill", err: errors.New("stock queue full")}
		}
	} else if rerr := p.pool.Release(b); rerr != nil {
		err = invariantError{op: "refill", err: rerr}
	}
	p.mu.Unlock()
	if err != nil {
		return err
	}
	if !ok {
		return context.Canceled
	}
	p.refills.Add(1)
	refillsTotal.Inc()
	p.publish(EventRefill, map[string]any{"buffer": b.ID})
	return nil
}

// maybeStart asks the coordinator for admission and starts a generation on a
// fresh source snapshot.
func (p *Pipeline) maybeStart(ctx context.Context) error {
	if !p.coord.Admit() {
		return nil
	}
	src := p.collab.Source.CurrentImage()
	if src == nil {
		return nil
	}
	p.mu.RLock()
	staging := p.slots.staging
	p.mu.RUnlock()
	// staging is only read by generations and none is in flight.
	p.collab.Copier.Copy(src, staging)

	p.mu.Lock()
	params := p.params
	params.Seed = p.seeds.next()
	target, err := p.pool.Acquire()
	if err != nil {
		p.mu.Unlock()
		return invariantError{op: "generation start", err: err}
	}
	if err = p.coord.Start(ctx, staging.Img, params, target); err != nil {
		_ = p.pool.Release(target)
	}
	p.mu.Unlock()
	if err != nil {
		return err
	}
	p.log.Debug().Int("target", target.ID).Int64("seed", params.Seed).Str("prompt", params.Prompt).Msg("generation start")
	p.publish(EventGenerationStart, map[string]any{"target": target.ID, "seed": params.Seed})
	return nil
}

// integrateGeneration collects a finished generation, if any. A success
// replaces the reveal slot; a failure or cancellation recycles the target.
// Collection and the ownership transfer happen in one locked step.
func (p *Pipeline) integrateGeneration() error {
	p.mu.Lock()
	out, ok := p.coord.Poll()
	if !ok {
		p.mu.Unlock()
		return nil
	}
	var err error
	if out.err == nil {
		old := p.slots.revealed
		p.slots.revealed = out.target
		err = p.pool.Release(old)
	} else {
		err = p.pool.Release(out.target)
	}
	if out.err != nil && !out.cancelled() {
		p.err = out.err.Error()
	}
	p.mu.Unlock()
	if err != nil {
		return invariantError{op: "integrate", err: err}
	}

	generationDuration.Observe(out.duration.Seconds())
	switch {
	case out.err == nil:
		p.clock.StartReveal()
		p.integrated.Add(1)
		generationsTotal.WithLabelValues("done").Inc()
		p.log.Debug().Int("target", out.target.ID).Dur("took", out.duration).Msg("generation integrated")
		p.publish(EventGenerationDone, map[string]any{"target": out.target.ID, "took": out.duration})
		p.publish(EventRevealIntegrated, map[string]any{"target": out.target.ID, "flip": p.flips.Load()})
	case out.cancelled():
		generationsTotal.WithLabelValues("cancelled").Inc()
		p.publish(EventGenerationCancelled, map[string]any{"target": out.target.ID})
	default:
		failure := generationFailedError{err: out.err}
		generationsTotal.WithLabelValues("failed").Inc()
		p.log.Warn().Err(failure).Int("target", out.target.ID).Msg("keeping cheap frames")
		p.publish(EventGenerationFailed, map[string]any{"target": out.target.ID, "error": failure.Error()})
	}
	return nil
}

func (p *Pipeline) stockLen() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stock.Len()
}

func (p *Pipeline) freeCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pool.Free()
}

func (p *Pipeline) stopped() error {
	p.mu.Lock()
	if p.state == StateRunning {
		p.state = StateReady
	}
	p.mu.Unlock()
	p.log.Info().Uint64("cycles", p.cycles.Load()).Msg("pipeline loop exited")
	return nil
}

func (p *Pipeline) abort(err error) error {
	invariantTotal.Inc()
	p.mu.Lock()
	p.state = StateError
	p.err = err.Error()
	p.mu.Unlock()
	p.log.Error().Err(err).Msg("pipeline aborted")
	p.publish(EventInvariant, map[string]any{"error": err.Error()})
	return err
}

// Ready reports whether the loop is running.
func (p *Pipeline) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state == StateRunning
}
