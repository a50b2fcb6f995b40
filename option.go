package asyncweb

import (
	"net/http"
	"time"

	"github.com/viant/asyncweb/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the service
type Option func(s *Service)

// WithConfig sets the service configuration
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			cloned := *config
			s.config = &cloned
		}
	}
}

// WithBaseURL overrides the target of loopback calls
func WithBaseURL(URL string) Option {
	return func(s *Service) {
		s.baseURL = URL
	}
}

// WithHTTPClient sets the http client used for loopback calls
func WithHTTPClient(httpClient *http.Client) Option {
	return func(s *Service) {
		s.httpClient = httpClient
	}
}

// WithWorkers sets the worker pool size
func WithWorkers(count int) Option {
	return func(s *Service) {
		s.config.Pool.WorkerCount = count
	}
}

// WithDelay sets the simulated work delay
func WithDelay(delay time.Duration) Option {
	return func(s *Service) {
		s.config.Work.Delay = delay
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile is empty the
// stdout exporter is used; otherwise traces are written to the supplied file path. The first
// successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		s.tracingInit = func() error { return tracing.Init(serviceName, serviceVersion, outputFile) }
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter, for
// example OTLP, Jaeger or an in-memory test exporter.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		s.tracingInit = func() error { return tracing.InitWithExporter(serviceName, serviceVersion, exporter) }
	}
}
