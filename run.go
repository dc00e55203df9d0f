package prefs

import (
	"context"
	"time"
)

// DefaultTickInterval is used by Run when interval is not positive.
const DefaultTickInterval = 250 * time.Millisecond

// Run loads the document if needed and then ticks every interval until ctx is
// done. steps run before each Tick on the same goroutine; hosts without their
// own loop mutate their values there. Run returns ctx.Err().
func (e *Engine) Run(ctx context.Context, interval time.Duration, steps ...func(context.Context)) error {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if !e.loaded {
		if _, err := e.Load(ctx); err != nil {
			return err
		}
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, step := range steps {
				if step != nil {
					step(ctx)
				}
			}
			e.Tick(ctx)
		}
	}
}

// Flush is a best-effort teardown helper. It waits for the in-flight write
// and then writes any remaining change synchronously. The returned error is
// the write failure, if any; the engine stays dirty in that case.
func (e *Engine) Flush(ctx context.Context) error {
	if e.inFlight {
		select {
		case result := <-e.done:
			e.complete(ctx, result)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if !e.loaded {
		return nil
	}
	e.detect()
	if !e.dirty {
		return nil
	}
	job, err := e.prepare()
	if err != nil {
		return err
	}
	result := runWrite(ctx, e.store, job)
	e.complete(ctx, result)
	return e.lastError
}
