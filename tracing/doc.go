// Package tracing wraps OpenTelemetry so that handlers, pool workers and the
// loopback client can open spans without importing the upstream packages.
// Until Init (or InitWithExporter) runs, spans go to the global no-op
// provider.
package tracing
