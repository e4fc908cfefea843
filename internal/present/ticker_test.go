package present

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shufflerd/internal/shuffler"
)

type fakeRenderer struct {
	mu      sync.Mutex
	elapsed time.Duration
	ticks   int
	ready   bool
}

func (f *fakeRenderer) Tick(dt time.Duration) {
	f.mu.Lock()
	f.elapsed += dt
	f.ticks++
	f.mu.Unlock()
}

func (f *fakeRenderer) Render(fn func(shuffler.View)) bool {
	f.mu.Lock()
	ready := f.ready
	f.mu.Unlock()
	if !ready {
		return false
	}
	fn(shuffler.View{})
	return true
}

func TestTickerAdvancesAndComposes(t *testing.T) {
	r := &fakeRenderer{ready: true}
	var composed int
	tk := NewTicker(200, r, func(shuffler.View) { composed++ }, zerolog.Nop())
	assert.Equal(t, 5*time.Millisecond, tk.Interval())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	start := time.Now()
	require.NoError(t, tk.Run(ctx))
	wall := time.Since(start)

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Positive(t, r.ticks)
	assert.Equal(t, uint64(r.ticks), tk.Ticks())
	assert.Equal(t, r.ticks, composed)
	assert.Equal(t, tk.Ticks(), tk.Drawn())
	assert.LessOrEqual(t, r.elapsed, wall, "clock never runs ahead of wall time")
	assert.Greater(t, r.elapsed, wall/2)
}

func TestTickerSkipsWhenNothingToDraw(t *testing.T) {
	r := &fakeRenderer{}
	tk := NewTicker(0, r, func(shuffler.View) { t.Fatal("composed without a view") }, zerolog.Nop())
	assert.Equal(t, time.Second/DefaultFPS, tk.Interval())
	tk.step(10 * time.Millisecond)
	tk.step(10 * time.Millisecond)
	assert.Equal(t, uint64(2), tk.Ticks())
	assert.Zero(t, tk.Drawn())
	assert.Equal(t, 20*time.Millisecond, r.elapsed)
}
