package search

import (
	"context"
	"sync"
)

// Outcome is the delivered result of one async search.
type Outcome struct {
	Results []Result
	Err     error
}

// Runner offloads scans to a goroutine so the caller's thread never
// blocks. Starting a new query cancels the previous in-flight one:
// supersession is fire-and-forget, the old channel simply reports a
// context error that nobody needs to read.
type Runner struct {
	engine *Engine

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewRunner wraps an engine.
func NewRunner(engine *Engine) *Runner {
	return &Runner{engine: engine}
}

// Go starts the scan in the background and returns a buffered channel that
// receives exactly one Outcome. The scan works over a mirror snapshot, so
// it is unaffected by concurrent imports (and conversely may reflect a
// corpus that is about to change; that is accepted).
func (r *Runner) Go(ctx context.Context, req Request) <-chan Outcome {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.mu.Unlock()

	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)
		results, err := r.engine.SearchContext(ctx, req)
		ch <- Outcome{Results: results, Err: err}
	}()
	return ch
}

// Stop cancels any in-flight query.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}
