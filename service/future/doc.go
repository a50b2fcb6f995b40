// Package future provides settle-once handles for values produced on another
// goroutine. A Future created with New is a deferred result: whoever holds it
// completes it later. Supply, Then and ThenAsync build futures whose work runs
// on an Executor (typically the worker pool), and Go runs work on a dedicated
// goroutine for waits that should not occupy a pool worker.
//
//	f := future.Supply(ctx, pool, "process", work.Process)
//	r := future.ThenAsync(ctx, f, pool, "reverse", reverse)
//	value, err := r.Get(ctx)
package future
