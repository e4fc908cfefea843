package shuffler

import "time"

// Tick advances the animation clock. It is called once per presentation
// tick and never waits on the pipeline loop.
func (p *Pipeline) Tick(dt time.Duration) {
	p.mu.RLock()
	c := p.clock
	p.mu.RUnlock()
	if c != nil {
		c.Advance(dt)
	}
}

// Render calls fn with the current view. The buffers stay in their slots for
// the duration of fn; the loop waits for fn before recycling any of them, so
// fn must be quick and must not retain the buffers. Render reports false when
// there is nothing to draw.
func (p *Pipeline) Render(fn func(View)) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.clock == nil || p.slots.current == nil || p.pool.Closed() {
		return false
	}
	fn(View{
		Current:  p.slots.current,
		Next:     p.slots.next,
		Revealed: p.slots.revealed,
		Clock:    p.clock.View(),
	})
	return true
}
