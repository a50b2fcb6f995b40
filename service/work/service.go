// Package work implements the simulated unit of work: a fixed delay standing
// in for I/O followed by generation of an opaque identifier, plus the string
// reversal used by composed routes.
package work

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/viant/asyncweb/internal/clock"
	"github.com/viant/asyncweb/internal/idgen"
	"github.com/viant/asyncweb/tracing"
)

// DefaultDelay is the simulated latency of a unit of work.
const DefaultDelay = 5 * time.Second

// ErrInterrupted is returned when the simulated delay is cut short.
var ErrInterrupted = errors.New("work: processing interrupted")

// Service performs the simulated work
type Service struct {
	delay time.Duration
}

// Option customises the service
type Option func(*Service)

// WithDelay sets the simulated delay
func WithDelay(delay time.Duration) Option {
	return func(s *Service) {
		s.delay = delay
	}
}

// New creates a work service
func New(options ...Option) *Service {
	s := &Service{delay: DefaultDelay}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Delay returns the configured delay
func (s *Service) Delay() time.Duration {
	return s.delay
}

// Process waits for the configured delay and returns a fresh opaque id. When
// ctx is done before the delay elapses the request is failed with
// ErrInterrupted.
func (s *Service) Process(ctx context.Context) (id string, err error) {
	ctx, span := tracing.StartSpan(ctx, "work.process", tracing.KindInternal)
	defer func() { tracing.EndSpan(span, err) }()

	log.Printf("[work] start processing request")
	if err = clock.Sleep(ctx, s.delay); err != nil {
		log.Printf("[work] processing interrupted: %v", err)
		return "", fmt.Errorf("%w: %w", ErrInterrupted, err)
	}
	id = idgen.New()
	span.WithAttributes(map[string]string{"work.id": id})
	log.Printf("[work] completed processing request")
	return id, nil
}

// Reverse returns s with its characters in reverse order.
func (s *Service) Reverse(ctx context.Context, value string) string {
	_, span := tracing.StartSpan(ctx, "work.reverse", tracing.KindInternal)
	defer tracing.EndSpan(span, nil)

	log.Printf("[work] start reversing string")
	reversed := Reverse(value)
	log.Printf("[work] completed reversing string")
	return reversed
}

// Reverse returns value with its runes in reverse order.
func Reverse(value string) string {
	runes := []rune(value)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
