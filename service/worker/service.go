package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/viant/asyncweb/internal/clock"
	"github.com/viant/asyncweb/progress"
	"github.com/viant/asyncweb/service/messaging"
	"github.com/viant/asyncweb/service/messaging/memory"
	"github.com/viant/asyncweb/tracing"
)

// Config represents pool configuration
type Config struct {
	// WorkerCount is the number of workers running jobs
	WorkerCount int `json:"workers" yaml:"workers"`

	// QueueBuffer is the capacity of the default in-memory queue
	QueueBuffer int `json:"queueBuffer" yaml:"queueBuffer"`
}

// DefaultConfig returns the default pool configuration
func DefaultConfig() Config {
	return Config{
		WorkerCount: runtime.GOMAXPROCS(0),
		QueueBuffer: memory.DefaultConfig().QueueBuffer,
	}
}

// Job is a unit of work waiting in the queue.
type Job struct {
	Name        string
	Context     context.Context
	Run         func(ctx context.Context)
	Reject      func(err error)
	SubmittedAt time.Time
}

// Service runs submitted jobs on a fixed set of workers
type Service struct {
	config  Config
	queue   messaging.Queue[Job]
	tracker *progress.Progress

	mu       sync.RWMutex
	closed   bool
	workers  []*worker
	workerWg sync.WaitGroup
}

type worker struct {
	id       int
	service  *Service
	ctx      context.Context
	cancelFn context.CancelFunc
}

// New creates a new pool
func New(options ...Option) (*Service, error) {
	s := &Service{config: DefaultConfig()}
	for _, opt := range options {
		opt(s)
	}
	if s.config.WorkerCount <= 0 {
		return nil, fmt.Errorf("worker count must be > 0, got %d", s.config.WorkerCount)
	}
	if s.queue == nil {
		s.queue = memory.NewQueue[Job](memory.Config{DeadLetter: true, QueueBuffer: s.config.QueueBuffer})
	}
	if s.tracker == nil {
		s.tracker = progress.New("worker", nil)
	}
	return s, nil
}

// Start launches the worker goroutines
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if len(s.workers) > 0 {
		return fmt.Errorf("worker pool already started")
	}
	for i := 0; i < s.config.WorkerCount; i++ {
		workerCtx, cancel := context.WithCancel(ctx)
		w := &worker{
			id:       i,
			service:  s,
			ctx:      workerCtx,
			cancelFn: cancel,
		}
		s.workers = append(s.workers, w)
		s.workerWg.Add(1)
		go w.run()
	}
	log.Printf("[worker] pool started with %d workers", s.config.WorkerCount)
	return nil
}

// Submit queues run for execution. The job runs with ctx; reject is called
// instead of run if the job is dropped after being accepted.
func (s *Service) Submit(ctx context.Context, name string, run func(ctx context.Context), reject func(err error)) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	job := &Job{
		Name:        name,
		Context:     ctx,
		Run:         run,
		Reject:      reject,
		SubmittedAt: clock.Now(),
	}
	if err := s.queue.Publish(ctx, job); err != nil {
		return fmt.Errorf("failed to submit %v: %w", name, err)
	}
	s.tracker.Update(progress.Delta{Submitted: 1})
	return nil
}

// Progress returns a snapshot of the job counters
func (s *Service) Progress() progress.Counters {
	return s.tracker.Snapshot()
}

// IsClosed reports whether Shutdown has been called
func (s *Service) IsClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// run processes messages from the queue
func (w *worker) run() {
	defer w.service.workerWg.Done()
	for {
		if w.ctx.Err() != nil {
			return
		}
		msg, err := w.service.queue.Consume(w.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			time.Sleep(100 * time.Millisecond)
			continue
		}
		if msg == nil {
			continue
		}
		if w.ctx.Err() != nil {
			w.service.reject(msg, ErrClosed)
			return
		}
		w.service.process(w.id, msg)
	}
}

func (s *Service) process(workerID int, msg messaging.Message[Job]) {
	job := msg.T()
	ctx := job.Context
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := tracing.StartSpan(ctx, "worker.run "+job.Name, tracing.KindConsumer)
	span.WithAttributes(map[string]string{
		"worker.id":     strconv.Itoa(workerID),
		"job.name":      job.Name,
		"job.queued_ms": strconv.FormatInt(clock.Since(job.SubmittedAt).Milliseconds(), 10),
	})

	s.tracker.Update(progress.Delta{Running: 1})
	err := s.invoke(ctx, job)
	if err != nil {
		s.tracker.Update(progress.Delta{Running: -1, Failed: 1})
		log.Printf("[worker %d] job %v failed: %v", workerID, job.Name, err)
		if job.Reject != nil {
			job.Reject(err)
		}
		_ = msg.Nack(err)
	} else {
		s.tracker.Update(progress.Delta{Running: -1, Completed: 1})
		_ = msg.Ack()
	}
	tracing.EndSpan(span, err)
}

func (s *Service) invoke(ctx context.Context, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrJobPanicked, r)
		}
	}()
	if job.Run != nil {
		job.Run(ctx)
	}
	return nil
}

func (s *Service) reject(msg messaging.Message[Job], err error) {
	job := msg.T()
	s.tracker.Update(progress.Delta{Rejected: 1})
	if job.Reject != nil {
		job.Reject(err)
	}
	_ = msg.Nack(err)
}

// Shutdown stops accepting jobs, waits for running jobs to finish and rejects
// the ones still queued. It is safe to call more than once.
func (s *Service) Shutdown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for _, w := range s.workers {
		w.cancelFn()
	}
	s.mu.Unlock()

	s.workerWg.Wait()
	if drainer, ok := s.queue.(interface{ Drain() []messaging.Message[Job] }); ok {
		for _, msg := range drainer.Drain() {
			s.reject(msg, ErrClosed)
		}
	}
	log.Printf("[worker] pool stopped, %v", s.tracker.Snapshot())
}
