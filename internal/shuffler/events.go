package shuffler

// Event names published by the pipeline.
const (
	EventInitialized         = "initialized"
	EventRotate              = "rotate"
	EventStockDrained        = "stock_drained"
	EventRefill              = "refill"
	EventGenerationStart     = "generation_start"
	EventGenerationDone      = "generation_done"
	EventGenerationFailed    = "generation_failed"
	EventGenerationCancelled = "generation_cancelled"
	EventRevealIntegrated    = "reveal_integrated"
	EventInvariant           = "invariant_violation"
	EventShutdown            = "shutdown"
)

// Event represents a pipeline lifecycle event.
// Minimal and stable: name + cycle number and optional fields via key/values.
type Event struct {
	Name   string
	Cycle  uint64
	Fields map[string]any
}

// EventPublisher receives events from the pipeline. Implementations should be
// lightweight and non-blocking; Publish must not panic or call back into the
// pipeline.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
