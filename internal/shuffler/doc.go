// Package shuffler schedules a fast, fixed-cadence display against a slow,
// variable-latency image generator. It is structured into small files by
// concern:
//
//   - pipeline.go: Pipeline type, constructor and the Run loop
//     (drain stock -> integrate result -> admit generation -> refill).
//   - coordinator.go: single in-flight generation, admission policies, outcomes.
//   - lifecycle.go: Initialize/Shutdown and the buffer Census.
//   - view.go: Tick/Render used by the presentation side.
//   - config.go: Config and package defaults; withDefaults derives pool size
//     and admission threshold from the intervals.
//   - types.go: State, Params, View, Census and the display slots.
//   - errors.go: error types and helpers (IsInvariant, IsGenerationFailed).
//   - params.go: live generation parameters and the prompt bank.
//   - events.go, eventpub_memory.go: lifecycle events and an in-memory sink.
//   - metrics.go: Prometheus collectors.
//   - status_report.go: Snapshot/Status reporting.
//
// External packages should treat Pipeline as the orchestration layer and use
// public methods only (New, Initialize, Run, Shutdown, Tick, Render, Status).
package shuffler
