package worker

import "errors"

var (
	// ErrClosed is returned by Submit after Shutdown and passed to the reject
	// callback of jobs dropped on shutdown.
	ErrClosed = errors.New("worker: pool is closed")

	// ErrJobPanicked wraps the value recovered from a panicking job.
	ErrJobPanicked = errors.New("worker: job panicked")
)
