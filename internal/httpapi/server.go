package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shufflerd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Status() types.StatusResponse
	Ready() bool
	Params() types.Params
	SetParams(types.ParamsUpdate) error
	Prompts() types.PromptsResponse
	SelectPrompt(index int) error
	// WriteFrame encodes the current composited frame as PNG.
	WriteFrame(w io.Writer) error
}

// EventSource is implemented by services that can stream pipeline events.
// The returned func unsubscribes and closes the channel.
type EventSource interface {
	Subscribe(buf int) (<-chan types.Event, func())
}

type api struct {
	svc Service
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Compression for JSON endpoints; PNG and NDJSON are left alone.
	r.Use(middleware.Compress(5, "application/json"))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}

	a := &api{svc: svc}
	r.Get("/status", a.status)
	r.Get("/params", a.getParams)
	r.Put("/params", a.putParams)
	r.Get("/prompts", a.prompts)
	r.Post("/prompt/{index}", a.selectPrompt)
	r.Get("/frame.png", a.frame)
	if es, ok := svc.(EventSource); ok {
		r.Get("/events", eventsHandler(es))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("starting"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
	}
}

// status godoc
// @Summary Pipeline status
// @Description Lifecycle state, counters, buffer census and animation progress.
// @Tags pipeline
// @Produce json
// @Success 200 {object} types.StatusResponse
// @Router /status [get]
func (a *api) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, a.svc.Status())
}

// getParams godoc
// @Summary Generation parameters
// @Tags params
// @Produce json
// @Success 200 {object} types.Params
// @Router /params [get]
func (a *api) getParams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, a.svc.Params())
}

// putParams godoc
// @Summary Update generation parameters
// @Description Omitted fields are unchanged. A running generation keeps the values it started with.
// @Tags params
// @Accept json
// @Produce json
// @Param body body types.ParamsUpdate true "parameter changes"
// @Success 200 {object} types.Params
// @Failure 400 {object} types.ErrorResponse
// @Failure 415 {object} types.ErrorResponse
// @Router /params [put]
func (a *api) putParams(w http.ResponseWriter, r *http.Request) {
	lvl := requestLogLevel(r)
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		IncrementRejected("content_type")
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var u types.ParamsUpdate
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		IncrementRejected("body")
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := a.svc.SetParams(u); err != nil {
		status := statusFor(err)
		if status == http.StatusBadRequest {
			IncrementRejected("params")
		}
		writeJSONError(w, status, err.Error())
		logRequest(r, lvl, status, err)
		return
	}
	logRequest(r, lvl, http.StatusOK, nil)
	writeJSON(w, a.svc.Params())
}

// prompts godoc
// @Summary Prompt bank
// @Tags params
// @Produce json
// @Success 200 {object} types.PromptsResponse
// @Router /prompts [get]
func (a *api) prompts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, a.svc.Prompts())
}

// selectPrompt godoc
// @Summary Select a prompt from the bank
// @Tags params
// @Produce json
// @Param index path int true "prompt index"
// @Success 200 {object} types.Params
// @Failure 400 {object} types.ErrorResponse
// @Failure 404 {object} types.ErrorResponse
// @Router /prompt/{index} [post]
func (a *api) selectPrompt(w http.ResponseWriter, r *http.Request) {
	lvl := requestLogLevel(r)
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		IncrementRejected("index")
		writeJSONError(w, http.StatusBadRequest, "index must be an integer")
		return
	}
	if err := a.svc.SelectPrompt(idx); err != nil {
		status := statusFor(err)
		writeJSONError(w, status, err.Error())
		logRequest(r, lvl, status, err)
		return
	}
	logRequest(r, lvl, http.StatusOK, nil)
	writeJSON(w, a.svc.Params())
}

// frame godoc
// @Summary Current composited frame
// @Tags pipeline
// @Produce png
// @Success 200 {file} binary
// @Failure 503 {object} types.ErrorResponse
// @Router /frame.png [get]
func (a *api) frame(w http.ResponseWriter, r *http.Request) {
	// Encode first so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := a.svc.WriteFrame(&buf); err != nil {
		status := statusFor(err)
		writeJSONError(w, status, err.Error())
		logRequest(r, requestLogLevel(r), status, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}

// eventsHandler streams pipeline events as NDJSON until the client leaves
// or the server shuts down.
// @Summary Pipeline event stream
// @Tags pipeline
// @Produce application/x-ndjson
// @Success 200 {object} types.Event
// @Router /events [get]
func eventsHandler(es EventSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		w.Header().Set("Cache-Control", "no-store")
		var flush func()
		if f, ok := w.(http.Flusher); ok {
			flush = f.Flush
		}
		writer := io.Writer(w)
		lvl := requestLogLevel(r)
		if lvl >= LevelDebug {
			writer = io.MultiWriter(w, &loggingLineWriter{})
		}
		if lvl >= LevelInfo && zlog != nil {
			z := zlog.Info().Str("path", r.URL.Path)
			if rid := middleware.GetReqID(r.Context()); rid != "" {
				z = z.Str("request_id", rid)
			}
			z.Msg("events start")
		}

		events, unsubscribe := es.Subscribe(eventBuffer)
		defer unsubscribe()
		eventStreams.Inc()
		defer eventStreams.Dec()

		// Join server base context with request context so shutdown ends
		// the stream too.
		ctx, cancel := joinContexts(baseContext(), r.Context())
		defer cancel()

		w.WriteHeader(http.StatusOK)
		if flush != nil {
			flush()
		}
		start := time.Now()
		n := streamEvents(ctx, events, writer, flush)
		if lvl >= LevelInfo && zlog != nil {
			zlog.Info().Int("events", n).Dur("dur", time.Since(start)).Msg("events end")
		}
	}
}

func streamEvents(ctx context.Context, events <-chan types.Event, w io.Writer, flush func()) int {
	enc := json.NewEncoder(w)
	n := 0
	for {
		select {
		case <-ctx.Done():
			return n
		case ev, ok := <-events:
			if !ok {
				return n
			}
			if err := enc.Encode(ev); err != nil {
				return n
			}
			n++
			if flush != nil {
				flush()
			}
		}
	}
}
