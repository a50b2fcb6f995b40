// Package asyncweb hosts an HTTP endpoint group that demonstrates ways of
// waiting for slow work: blocking the handler, parking on a deferred result
// settled by a worker pool, composing futures, and calling back into the
// process over loopback without blocking.
//
// The Service façade wires the sub-packages together:
//
//   - work     – the simulated unit of work (delay, then an opaque id)
//   - worker   – the pool running async work off the handler goroutine
//   - future   – settle-once results and continuations
//   - client   – loopback calls to the process itself
//   - endpoint – routes and middleware
//
// Typical use:
//
//	cfg, _ := asyncweb.LoadConfig(ctx, "config.yaml")
//	srv, _ := asyncweb.New(asyncweb.WithConfig(cfg))
//	_ = srv.Start(ctx)
//	defer srv.Shutdown(ctx)
package asyncweb
