package worker

import (
	"github.com/viant/asyncweb/progress"
	"github.com/viant/asyncweb/service/messaging"
)

// Option customises the pool.
type Option func(*Service)

// WithMessageQueue sets the queue implementation
func WithMessageQueue(queue messaging.Queue[Job]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithWorkers sets the number of worker goroutines
func WithWorkers(count int) Option {
	return func(s *Service) {
		s.config.WorkerCount = count
	}
}

// WithQueueBuffer sets the capacity of the default in-memory queue
func WithQueueBuffer(size int) Option {
	return func(s *Service) {
		s.config.QueueBuffer = size
	}
}

// WithTracker sets the progress tracker updated by every worker
func WithTracker(tracker *progress.Progress) Option {
	return func(s *Service) {
		s.tracker = tracker
	}
}

// WithConfig sets the configuration for the service
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}
