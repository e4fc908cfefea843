package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams() Params {
	return Params{Flip: 100 * time.Millisecond, Reveal: time.Second, InsertionCount: 5, LiftScale: 1}
}

func TestClock_FlipMonotonicAndClamped(t *testing.T) {
	c := New(testParams())
	c.ResetFlip()
	require.Equal(t, 0.0, c.FlipProgress())

	prev := 0.0
	for i := 0; i < 20; i++ {
		c.Advance(16 * time.Millisecond)
		cur := c.FlipProgress()
		assert.GreaterOrEqual(t, cur, prev)
		assert.LessOrEqual(t, cur, 1.0)
		prev = cur
	}
	assert.Equal(t, 1.0, prev)

	c.ResetFlip()
	assert.Equal(t, 0.0, c.FlipProgress())
}

func TestClock_FlipHalfway(t *testing.T) {
	c := New(testParams())
	c.ResetFlip()
	c.Advance(50 * time.Millisecond)
	assert.InDelta(t, 0.5, c.View().Flip, 1e-9)
}

func TestClock_RevealHiddenUntilArmed(t *testing.T) {
	c := New(testParams())
	for i := 0; i < 100; i++ {
		c.Advance(50 * time.Millisecond)
		v := c.View()
		assert.False(t, v.RevealVisible)
		assert.Less(t, v.RevealLift, 0.0)
	}
}

func TestClock_RevealWindow(t *testing.T) {
	c := New(testParams())
	c.StartReveal()
	assert.Equal(t, 0.0, c.FlipProgress())

	// Waits InsertionCount flips before the window opens.
	c.Advance(400 * time.Millisecond)
	v := c.View()
	assert.False(t, v.RevealVisible)
	assert.InDelta(t, -0.1, v.RevealCutoff, 1e-9)

	c.Advance(200 * time.Millisecond)
	v = c.View()
	assert.True(t, v.RevealVisible)
	assert.InDelta(t, 0.1, v.RevealCutoff, 1e-9)
	assert.InDelta(t, 0.125, v.RevealLift, 1e-9) // (0.6-0.1)^3

	// Window closes RevealInterval after it opened.
	c.Advance(time.Second)
	v = c.View()
	assert.False(t, v.RevealVisible)
	assert.Greater(t, v.RevealCutoff, 1.0)
	assert.GreaterOrEqual(t, v.RevealLift, 0.0)

	// A new result re-arms the window.
	c.StartReveal()
	c.Advance(600 * time.Millisecond)
	assert.True(t, c.View().RevealVisible)
}

func TestEaseHelpers(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-3))
	assert.Equal(t, 1.0, Clamp01(3))
	assert.Equal(t, 0.0, PositivePart(-1))
	assert.Equal(t, 0.125, EaseInCubic(0.5))
	assert.Equal(t, 5.0, Lerp(0, 10, 0.5))
}
