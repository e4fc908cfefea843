package shuffler

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shufflerd/internal/frame"
)

func waitOutcome(t *testing.T, c *Coordinator) outcome {
	t.Helper()
	c.Wait()
	out, ok := c.Poll()
	require.True(t, ok, "expected a pending outcome")
	return out
}

func TestCoordinatorSingleInFlight(t *testing.T) {
	release := make(chan struct{})
	gen := GeneratorFunc(func(ctx context.Context, _ image.Image, _ Params, _ *frame.Buffer) error {
		<-release
		return nil
	})
	c := newCoordinator(gen, AdmitThreshold, 3, 1)
	src := image.NewRGBA(image.Rect(0, 0, 1, 1))

	require.True(t, c.Admit(), "first generation is admitted immediately")
	a, b := frame.NewBuffer(1, 1, 1), frame.NewBuffer(2, 1, 1)
	require.NoError(t, c.Start(context.Background(), src, Params{}, a))
	assert.True(t, c.InFlight())
	assert.Same(t, a, c.Target())
	assert.False(t, c.Admit())

	err := c.Start(context.Background(), src, Params{}, b)
	require.Error(t, err)
	assert.True(t, IsInvariant(err))

	close(release)
	c.Wait()
	// The result is still pending: the slot stays taken until Poll.
	assert.True(t, c.InFlight())
	assert.False(t, c.Admit())
	err = c.Start(context.Background(), src, Params{}, b)
	assert.True(t, IsInvariant(err))

	out, ok := c.Poll()
	require.True(t, ok)
	assert.NoError(t, out.err)
	assert.Same(t, a, out.target)
	assert.False(t, c.InFlight())
	assert.Nil(t, c.Target())

	_, ok = c.Poll()
	assert.False(t, ok, "an outcome is delivered once")
	assert.Equal(t, CoordinatorStats{Started: 1, Completed: 1}, c.Stats())
}

func TestCoordinatorThresholdAdmission(t *testing.T) {
	c := newCoordinator(GeneratorFunc(func(context.Context, image.Image, Params, *frame.Buffer) error { return nil }), AdmitThreshold, 3, 1)
	require.NoError(t, c.Start(context.Background(), nil, Params{}, frame.NewBuffer(0, 1, 1)))
	waitOutcome(t, c)

	for range 2 {
		c.Step()
		assert.False(t, c.Admit())
	}
	c.Step()
	assert.True(t, c.Admit())
}

func TestCoordinatorDrainedAdmission(t *testing.T) {
	c := newCoordinator(GeneratorFunc(func(context.Context, image.Image, Params, *frame.Buffer) error { return nil }), AdmitDrained, 3, 1)
	require.True(t, c.Admit())
	require.NoError(t, c.Start(context.Background(), nil, Params{}, frame.NewBuffer(0, 1, 1)))
	waitOutcome(t, c)

	for range 10 {
		c.Step()
	}
	assert.False(t, c.Admit(), "cycles alone do not admit under the drained policy")
	c.MarkDrained()
	assert.True(t, c.Admit())
}

func TestCoordinatorRetriesSoonerAfterFailure(t *testing.T) {
	boom := errors.New("boom")
	c := newCoordinator(GeneratorFunc(func(context.Context, image.Image, Params, *frame.Buffer) error { return boom }), AdmitThreshold, 10, 2)
	require.NoError(t, c.Start(context.Background(), nil, Params{}, frame.NewBuffer(0, 1, 1)))
	out := waitOutcome(t, c)
	assert.ErrorIs(t, out.err, boom)
	assert.False(t, out.cancelled())

	c.Step()
	assert.False(t, c.Admit())
	c.Step()
	assert.True(t, c.Admit(), "retry after two cycles, not ten")
	assert.Equal(t, uint64(1), c.Stats().Failed)
}

func TestCoordinatorCancel(t *testing.T) {
	c := newCoordinator(GeneratorFunc(func(ctx context.Context, _ image.Image, _ Params, _ *frame.Buffer) error {
		<-ctx.Done()
		return ctx.Err()
	}), AdmitThreshold, 1, 1)
	require.NoError(t, c.Start(context.Background(), nil, Params{}, frame.NewBuffer(0, 1, 1)))

	done := make(chan struct{})
	go func() {
		c.Cancel()
		c.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cancel did not stop the generation")
	}
	out, ok := c.Poll()
	require.True(t, ok)
	assert.True(t, out.cancelled())
	assert.Equal(t, uint64(1), c.Stats().Cancelled)
}

func TestCoordinatorCancelIgnoredResult(t *testing.T) {
	// A generator that ignores ctx and reports success is still treated as
	// cancelled once its context is done.
	c := newCoordinator(GeneratorFunc(func(ctx context.Context, _ image.Image, _ Params, _ *frame.Buffer) error {
		<-ctx.Done()
		return nil
	}), AdmitThreshold, 1, 1)
	require.NoError(t, c.Start(context.Background(), nil, Params{}, frame.NewBuffer(0, 1, 1)))
	c.Cancel()
	out := waitOutcome(t, c)
	assert.True(t, out.cancelled())
}

func TestCoordinatorWithoutGenerator(t *testing.T) {
	c := newCoordinator(nil, AdmitThreshold, 1, 1)
	assert.False(t, c.Admit())
	c.Cancel()
	c.Wait()
	_, ok := c.Poll()
	assert.False(t, ok)
}
