package httpapi

import (
	"context"
	"sync/atomic"
)

// baseCtx is cancelled when the daemon shuts down so long-lived streams end
// even while their clients stay connected.
var baseCtx atomic.Pointer[context.Context]

// SetBaseContext sets the process-level context used by streaming handlers.
// nil resets it to Background.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		baseCtx.Store(nil)
		return
	}
	baseCtx.Store(&ctx)
}

func baseContext() context.Context {
	if p := baseCtx.Load(); p != nil {
		return *p
	}
	return context.Background()
}

// joinContexts derives from req and additionally cancels when base is done.
// The returned cancel func must be called when the handler ends.
func joinContexts(base, req context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(req)
	stop := context.AfterFunc(base, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
