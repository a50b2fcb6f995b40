// Package worker hosts the pool that runs asynchronously dispatched work.
// Every worker consumes jobs from a messaging.Queue and runs them with the
// submitter's context, so cancelling one request interrupts only its own
// job. Jobs still queued when the pool shuts down are rejected.
package worker
