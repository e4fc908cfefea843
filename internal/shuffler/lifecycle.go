package shuffler

import (
	"errors"

	"shufflerd/internal/clock"
	"shufflerd/internal/frame"
)

// Initialize allocates every buffer up front: the display slots first, then
// the free-queue allotment. Nothing is allocated after it returns.
func (p *Pipeline) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pool != nil {
		return errors.New("pipeline already initialized")
	}
	cfg := p.cfg
	pool := frame.NewPool(cfg.TotalBuffers(), cfg.Width, cfg.Height, 0)
	var taken [slotCount]*frame.Buffer
	for i := range taken {
		b, err := pool.Acquire()
		if err != nil {
			return invariantError{op: "initialize", err: err}
		}
		taken[i] = b
	}
	p.pool = pool
	p.slots = slots{current: taken[0], next: taken[1], revealed: taken[2], staging: taken[3]}
	p.stock = frame.NewQueue(cfg.PoolSize)
	p.coord = newCoordinator(p.collab.Generator, cfg.Admission, cfg.AdmissionThreshold, cfg.InsertionCount)
	p.clock = clock.New(clock.Params{
		Flip:           cfg.FlipInterval,
		Reveal:         cfg.RevealInterval,
		InsertionCount: cfg.InsertionCount,
		LiftScale:      cfg.LiftScale,
	})
	p.seeds = newSeeder(cfg.SeedPolicy, cfg.Params.Seed)
	p.state = StateReady
	p.log.Info().Int("buffers", pool.Size()).Int("width", cfg.Width).Int("height", cfg.Height).Msg("pipeline initialized")
	p.events.Publish(Event{Name: EventInitialized, Fields: map[string]any{"buffers": pool.Size()}})
	return nil
}

// Shutdown cancels the loop and any in-flight generation, waits for both to
// stop, then releases every buffer wherever it is held. Calling it again is a
// no-op.
func (p *Pipeline) Shutdown() {
	p.mu.Lock()
	if p.pool == nil || p.pool.Closed() {
		p.mu.Unlock()
		return
	}
	p.state = StateStopping
	cancel, done := p.runCancel, p.runDone
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	p.coord.Cancel()
	p.coord.Wait()

	p.mu.Lock()
	out, collected := p.coord.Poll()
	p.stock = nil
	p.slots = slots{}
	p.filling = nil
	p.released = p.pool.Close()
	p.state = StateStopped
	released := p.released
	p.mu.Unlock()

	if collected {
		generationsTotal.WithLabelValues("cancelled").Inc()
		p.publish(EventGenerationCancelled, map[string]any{"target": out.target.ID})
	}
	p.log.Info().Int("released", released).Msg("pipeline shut down")
	p.publish(EventShutdown, map[string]any{"released": released})
}

// Released returns how many buffers Shutdown released.
func (p *Pipeline) Released() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.released
}

// Census counts buffers by owner.
func (p *Pipeline) Census() Census {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.pool == nil || p.pool.Closed() {
		return Census{}
	}
	c := Census{
		Free:  p.pool.Free(),
		Stock: p.stock.Len(),
		Slots: p.slots.count(),
		Total: p.pool.Size(),
	}
	if p.coord.Target() != nil {
		c.InFlight = 1
	}
	if p.filling != nil {
		c.Refilling = 1
	}
	return c
}
