// Package endpoint exposes the HTTP routes of the service. Each route returns
// a plain-text body and illustrates one way of waiting for the simulated work:
//
//	GET  /sync                      blocks the handler for the delay
//	GET  /asyncDeferred             deferred result settled by a pool worker
//	GET  /asyncCompletable          future supplied by the pool
//	GET  /asyncCompletableComposed  future chained with an async reverse step
//	GET  /asyncMono                 non-blocking loopback call, first 4 characters
//	GET  /syncMono                  blocking loopback call, first 4 characters
//	GET  /mock, POST /mock          literal OK
package endpoint
