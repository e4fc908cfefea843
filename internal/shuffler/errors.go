package shuffler

import (
	"errors"
	"strconv"
)

// invariantError signals a scheduling bug: a double start, a start while a
// result waits for integration, or a buffer ownership violation. The pipeline
// aborts instead of continuing with corrupt ownership.
type invariantError struct {
	op  string
	err error
}

func (e invariantError) Error() string {
	if e.err != nil {
		return "invariant violated in " + e.op + ": " + e.err.Error()
	}
	return "invariant violated in " + e.op
}

func (e invariantError) Unwrap() error { return e.err }

// IsInvariant reports whether err indicates a scheduling invariant violation.
func IsInvariant(err error) bool {
	var e invariantError
	return errors.As(err, &e)
}

// generationFailedError wraps a collaborator-reported generation failure.
type generationFailedError struct{ err error }

func (e generationFailedError) Error() string { return "generation failed: " + e.err.Error() }

func (e generationFailedError) Unwrap() error { return e.err }

// IsGenerationFailed reports whether err is a non-cancellation generation failure.
func IsGenerationFailed(err error) bool {
	var e generationFailedError
	return errors.As(err, &e)
}

// promptNotFoundError is returned by SelectPrompt for an out-of-range index.
type promptNotFoundError struct{ index, size int }

func (e promptNotFoundError) Error() string {
	return "prompt index " + strconv.Itoa(e.index) + " out of range (bank has " + strconv.Itoa(e.size) + ")"
}

// IsPromptNotFound reports whether err indicates a missing prompt bank entry.
func IsPromptNotFound(err error) bool {
	var e promptNotFoundError
	return errors.As(err, &e)
}

// invalidParamsError rejects a parameter update.
type invalidParamsError struct{ field, msg string }

func (e invalidParamsError) Error() string { return e.field + " " + e.msg }

// IsInvalidParams reports whether err rejects a parameter update.
func IsInvalidParams(err error) bool {
	var e invalidParamsError
	return errors.As(err, &e)
}

// errNotInitialized is returned by Run before Initialize.
var errNotInitialized = errors.New("pipeline not initialized")

// errAlreadyRunning is returned by a second concurrent Run.
var errAlreadyRunning = errors.New("pipeline already running")
