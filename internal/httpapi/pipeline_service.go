package httpapi

import (
	"io"
	"net/http"
	"sync"
	"time"

	"shufflerd/internal/render"
	"shufflerd/internal/shuffler"
	"shufflerd/pkg/types"
)

// ErrNoFrame is returned by WriteFrame before the pipeline has a frame.
var ErrNoFrame error = noFrameError{}

type noFrameError struct{}

func (noFrameError) Error() string   { return "no frame available yet" }
func (noFrameError) StatusCode() int { return http.StatusServiceUnavailable }

// PipelineService serves a pipeline over HTTP. Frames are composited on
// demand into c; events come from bus when it is set.
type PipelineService struct {
	p   *shuffler.Pipeline
	c   *render.Compositor
	bus *shuffler.Broadcaster
}

// NewPipelineService wires p, c and an optional event bus.
func NewPipelineService(p *shuffler.Pipeline, c *render.Compositor, bus *shuffler.Broadcaster) *PipelineService {
	return &PipelineService{p: p, c: c, bus: bus}
}

func (s *PipelineService) Status() types.StatusResponse { return s.p.Status() }

func (s *PipelineService) Ready() bool { return s.p.Ready() }

func (s *PipelineService) Params() types.Params {
	p := s.p.Params()
	return types.Params{Prompt: p.Prompt, Strength: p.Strength, StepCount: p.StepCount, Guidance: p.Guidance, Seed: p.Seed}
}

func (s *PipelineService) SetParams(u types.ParamsUpdate) error {
	return s.p.SetParams(shuffler.ParamsUpdate{Prompt: u.Prompt, Strength: u.Strength, StepCount: u.StepCount, Guidance: u.Guidance})
}

func (s *PipelineService) Prompts() types.PromptsResponse {
	return types.PromptsResponse{Prompts: s.p.Prompts(), Current: s.p.Params().Prompt}
}

func (s *PipelineService) SelectPrompt(index int) error { return s.p.SelectPrompt(index) }

func (s *PipelineService) WriteFrame(w io.Writer) error {
	if !s.p.Render(s.c.Compose) {
		return ErrNoFrame
	}
	return s.c.EncodePNG(w)
}

// Subscribe forwards pipeline events as API events. Without a bus the
// channel stays open and empty until unsubscribed.
func (s *PipelineService) Subscribe(buf int) (<-chan types.Event, func()) {
	out := make(chan types.Event, buf)
	if s.bus == nil {
		var once sync.Once
		return out, func() { once.Do(func() { close(out) }) }
	}
	in, unsubscribe := s.bus.Subscribe(buf)
	go func() {
		defer close(out)
		for ev := range in {
			select {
			case out <- toAPIEvent(ev):
			default:
			}
		}
	}()
	return out, unsubscribe
}

func toAPIEvent(ev shuffler.Event) types.Event {
	return types.Event{Name: ev.Name, Cycle: ev.Cycle, Fields: ev.Fields, TimeMS: time.Now().UnixMilli()}
}
