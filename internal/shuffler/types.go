package shuffler

import (
	"shufflerd/internal/clock"
	"shufflerd/internal/frame"
)

// State represents the lifecycle state of a pipeline.
type State string

const (
	StateIdle     State = "idle"
	StateReady    State = "ready"
	StateRunning  State = "running"
	StateStopping State = "stopping"
	StateStopped  State = "stopped"
	StateError    State = "error"
)

// Params are the generation parameters handed to the Generator. They are
// opaque to the scheduler.
type Params struct {
	Prompt    string
	Strength  float64
	StepCount int
	Guidance  float64
	Seed      int64
}

// View is what the presentation step reads: the displayed buffers and the
// eased animation values. Buffers in a View must not be retained after the
// Render callback returns.
type View struct {
	Current  *frame.Buffer
	Next     *frame.Buffer
	Revealed *frame.Buffer
	Clock    clock.View
}

// Census counts buffers by owner. Total always equals the pool size while
// the pipeline is initialized.
type Census struct {
	Free      int
	Stock     int
	Slots     int
	InFlight  int
	Refilling int
	Total     int
}

// Sum adds every owner bucket.
func (c Census) Sum() int { return c.Free + c.Stock + c.Slots + c.InFlight + c.Refilling }

// slots are the named display buffers. staging holds the source snapshot a
// generation reads from; it is never drawn.
type slots struct {
	current  *frame.Buffer
	next     *frame.Buffer
	revealed *frame.Buffer
	staging  *frame.Buffer
}

const slotCount = 4

func (s *slots) count() int {
	n := 0
	for _, b := range []*frame.Buffer{s.current, s.next, s.revealed, s.staging} {
		if b != nil {
			n++
		}
	}
	return n
}
