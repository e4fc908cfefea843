package httpapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"shufflerd/internal/render"
	"shufflerd/internal/shuffler"
	"shufflerd/internal/source"
	"shufflerd/pkg/types"
)

func newTestPipeline(t *testing.T) *shuffler.Pipeline {
	t.Helper()
	copier, err := render.NewScaleCopier(render.KernelNearest)
	if err != nil {
		t.Fatalf("copier: %v", err)
	}
	p, err := shuffler.New(shuffler.Config{
		Width:          16,
		Height:         8,
		FlipInterval:   10 * time.Millisecond,
		RevealInterval: 100 * time.Millisecond,
		Prompts:        []string{"first", "second"},
	}, shuffler.Collaborators{Source: source.NewPattern(16, 8, time.Second, 1), Copier: copier})
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	return p
}

// pipelineErrors returns real invalid-params and prompt-not-found errors.
func pipelineErrors(t *testing.T) (invalid, notFound error) {
	t.Helper()
	p := newTestPipeline(t)
	bad := 2.0
	invalid = p.SetParams(shuffler.ParamsUpdate{Strength: &bad})
	notFound = p.SelectPrompt(99)
	if invalid == nil || notFound == nil {
		t.Fatalf("expected errors, got %v / %v", invalid, notFound)
	}
	return invalid, notFound
}

func TestPipelineService_Endpoints(t *testing.T) {
	p := newTestPipeline(t)
	svc := NewPipelineService(p, render.NewCompositor(16, 8), nil)
	h := NewMux(svc)

	if w := do(t, h, http.MethodGet, "/frame.png", "", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("frame before init: status=%d", w.Code)
	}
	if err := p.Initialize(); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer p.Shutdown()

	w := do(t, h, http.MethodGet, "/frame.png", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("frame: status=%d body=%s", w.Code, w.Body.String())
	}
	img, err := png.Decode(w.Body)
	if err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 8 {
		t.Fatalf("frame bounds=%v", img.Bounds())
	}

	var st types.StatusResponse
	_ = json.Unmarshal(do(t, h, http.MethodGet, "/status", "", "").Body.Bytes(), &st)
	if st.State != "ready" || st.Buffers.Total != st.Buffers.Free+st.Buffers.Slots {
		t.Fatalf("status=%+v", st)
	}

	if w := do(t, h, http.MethodPut, "/params", `{"strength":2}`, "application/json"); w.Code != http.StatusBadRequest {
		t.Fatalf("invalid strength: status=%d", w.Code)
	}
	if w := do(t, h, http.MethodPut, "/params", `{"step_count":3,"guidance":2}`, "application/json"); w.Code != http.StatusOK {
		t.Fatalf("valid update: status=%d", w.Code)
	}
	if got := svc.Params(); got.StepCount != 3 || got.Guidance != 2 || got.Prompt != "first" {
		t.Fatalf("params=%+v", got)
	}

	if w := do(t, h, http.MethodPost, "/prompt/5", "", ""); w.Code != http.StatusNotFound {
		t.Fatalf("missing prompt: status=%d", w.Code)
	}
	if w := do(t, h, http.MethodPost, "/prompt/1", "", ""); w.Code != http.StatusOK {
		t.Fatalf("select prompt: status=%d", w.Code)
	}
	if pr := svc.Prompts(); pr.Current != "second" || len(pr.Prompts) != 2 {
		t.Fatalf("prompts=%+v", pr)
	}
}

type eventService struct {
	mockService
	ch chan types.Event
}

func (e *eventService) Subscribe(int) (<-chan types.Event, func()) { return e.ch, func() {} }

func TestEventsStreamsNDJSON(t *testing.T) {
	svc := &eventService{ch: make(chan types.Event, 2)}
	svc.ch <- types.Event{Name: "rotate", Cycle: 1}
	svc.ch <- types.Event{Name: "refill", Cycle: 1}
	close(svc.ch)

	w := do(t, NewMux(svc), http.MethodGet, "/events", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/x-ndjson" {
		t.Fatalf("content-type=%s", ct)
	}
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 ndjson lines, got %d: %q", len(lines), w.Body.String())
	}
	var ev types.Event
	if err := json.Unmarshal([]byte(lines[1]), &ev); err != nil || ev.Name != "refill" {
		t.Fatalf("line=%q err=%v", lines[1], err)
	}
}

func TestEventsEndsOnServerShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	SetBaseContext(ctx)
	defer SetBaseContext(nil)

	svc := &eventService{ch: make(chan types.Event)}
	done := make(chan struct{})
	go func() {
		defer close(done)
		do(t, NewMux(svc), http.MethodGet, "/events", "", "")
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not end after base context was cancelled")
	}
}

func TestEventsDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))
	defer func() { zlog = nil }()

	svc := &eventService{ch: make(chan types.Event, 1)}
	svc.ch <- types.Event{Name: "generation_done"}
	close(svc.ch)
	do(t, NewMux(svc), http.MethodGet, "/events?log=debug", "", "")

	out := buf.String()
	for _, want := range []string{"events start", "generation_done", "events end"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in log: %q", want, out)
		}
	}
}

func TestPipelineService_EventStream(t *testing.T) {
	p := newTestPipeline(t)
	bus := shuffler.NewBroadcaster()
	p.SetEventPublisher(bus)
	svc := NewPipelineService(p, render.NewCompositor(16, 8), bus)
	srv := httptest.NewServer(NewMux(svc))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/events")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	deadline := time.Now().Add(2 * time.Second)
	for bus.Subscribers() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("stream never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if err := p.Initialize(); err != nil {
		t.Fatalf("init: %v", err)
	}
	p.Shutdown()

	names := readEvents(t, resp.Body, 2)
	if names[0] != shuffler.EventInitialized || names[1] != shuffler.EventShutdown {
		t.Fatalf("events=%v", names)
	}
}

func readEvents(t *testing.T, r io.Reader, n int) []string {
	t.Helper()
	lines := make(chan string, 16)
	go func() {
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()
	var names []string
	for len(names) < n {
		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatalf("stream closed after %v", names)
			}
			var ev types.Event
			if err := json.Unmarshal([]byte(line), &ev); err != nil {
				t.Fatalf("bad line %q: %v", line, err)
			}
			if ev.TimeMS == 0 {
				t.Fatalf("event without timestamp: %q", line)
			}
			names = append(names, ev.Name)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %v", names)
		}
	}
	return names
}

func TestPipelineService_SubscribeWithoutBus(t *testing.T) {
	svc := NewPipelineService(newTestPipeline(t), render.NewCompositor(1, 1), nil)
	ch, unsubscribe := svc.Subscribe(1)
	unsubscribe()
	unsubscribe()
	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel")
	}
}
