package types

// Params are the generation parameters used by the next generation.
type Params struct {
	// Prompt describing the target style.
	// example: Surrealistic painting by J. C. Leyendecker
	Prompt string `json:"prompt" example:"Surrealistic painting by J. C. Leyendecker"`
	// Denoising strength in (0,1].
	// example: 0.5
	Strength float64 `json:"strength" example:"0.5"`
	// Number of diffusion steps.
	// example: 7
	StepCount int `json:"step_count" example:"7"`
	// Classifier-free guidance scale.
	// example: 1.25
	Guidance float64 `json:"guidance" example:"1.25"`
	// Base seed (random policy derives per-generation seeds from it).
	// example: 1
	Seed int64 `json:"seed" example:"1"`
}

// ParamsUpdate is the body of PUT /params. Omitted fields are unchanged.
type ParamsUpdate struct {
	Prompt    *string  `json:"prompt,omitempty" example:"vincent van gogh"`
	Strength  *float64 `json:"strength,omitempty" example:"0.7"`
	StepCount *int     `json:"step_count,omitempty" example:"5"`
	Guidance  *float64 `json:"guidance,omitempty" example:"6"`
}

// PromptsResponse is returned by GET /prompts.
type PromptsResponse struct {
	Prompts []string `json:"prompts"`
	// Prompt currently in use.
	Current string `json:"current"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// BufferCensus counts pool buffers by owner.
type BufferCensus struct {
	Free      int `json:"free" example:"3"`
	Stock     int `json:"stock" example:"5"`
	Slots     int `json:"slots" example:"4"`
	InFlight  int `json:"inflight" example:"1"`
	Refilling int `json:"refilling" example:"0"`
	Total     int `json:"total" example:"14"`
}

// GenerationStats are lifetime generation counters.
type GenerationStats struct {
	Started   uint64 `json:"started" example:"12"`
	Completed uint64 `json:"completed" example:"10"`
	Failed    uint64 `json:"failed" example:"1"`
	Cancelled uint64 `json:"cancelled" example:"0"`
	InFlight  bool   `json:"inflight" example:"true"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Pipeline lifecycle state (idle, ready, running, stopping, stopped, error).
	// example: running
	State string `json:"state" example:"running"`
	// Last error observed (generation failure or invariant violation).
	LastError string `json:"last_error,omitempty"`
	// Completed outer loop cycles.
	// example: 42
	Cycles uint64 `json:"cycles" example:"42"`
	// Stock buffers rotated into the flip slots.
	// example: 300
	Rotations uint64 `json:"rotations" example:"300"`
	// Cheap copies banked.
	// example: 310
	Refills uint64 `json:"refills" example:"310"`
	// Generated frames integrated into the reveal slot.
	// example: 9
	Integrated uint64          `json:"integrated" example:"9"`
	Generation GenerationStats `json:"generation"`
	Buffers    BufferCensus    `json:"buffers"`
	// Current flip crossfade progress in [0,1].
	// example: 0.5
	FlipProgress float64 `json:"flip_progress" example:"0.5"`
	// Seconds since the current reveal started.
	// example: 0.8
	RevealProgress float64 `json:"reveal_progress" example:"0.8"`
	// Whether the reveal layer is being drawn.
	// example: true
	RevealVisible bool `json:"reveal_visible" example:"true"`
	// Flip interval in seconds.
	// example: 0.175
	FlipIntervalSec float64 `json:"flip_interval_sec" example:"0.175"`
	// Reveal interval in seconds.
	// example: 1.5
	RevealIntervalSec float64 `json:"reveal_interval_sec" example:"1.5"`
	// example: 5
	InsertionCount int `json:"insertion_count" example:"5"`
	// example: threshold
	Admission string `json:"admission" example:"threshold"`
	Params    Params `json:"params"`
	// Uptime of the pipeline in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}

// Event is one line of the GET /events NDJSON stream.
type Event struct {
	// example: rotate
	Name string `json:"name" example:"rotate"`
	// example: 42
	Cycle  uint64         `json:"cycle" example:"42"`
	Fields map[string]any `json:"fields,omitempty"`
	// Unix milliseconds when the event was forwarded.
	// example: 1700000000000
	TimeMS int64 `json:"time_ms" example:"1700000000000"`
}
