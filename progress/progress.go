package progress

import (
	"fmt"
	"sync"
	"time"
)

// Delta represents an incremental counter change emitted by the pool. The
// fields are signed, so Running can be moved up and down.
type Delta struct {
	Submitted int
	Running   int
	Completed int
	Failed    int
	Rejected  int
}

// Counters is a point-in-time copy of a tracker.
type Counters struct {
	Name      string
	StartedAt time.Time

	SubmittedJobs int
	RunningJobs   int
	CompletedJobs int
	FailedJobs    int
	RejectedJobs  int
}

// Pending returns the number of submitted jobs that have not finished yet.
func (c Counters) Pending() int {
	return c.SubmittedJobs - c.CompletedJobs - c.FailedJobs - c.RejectedJobs
}

func (c Counters) String() string {
	return fmt.Sprintf("%s: submitted=%d running=%d completed=%d failed=%d rejected=%d",
		c.Name, c.SubmittedJobs, c.RunningJobs, c.CompletedJobs, c.FailedJobs, c.RejectedJobs)
}

// Progress keeps aggregated job counters. It is safe for concurrent use.
type Progress struct {
	mu       sync.Mutex
	counters Counters
	onChange func(Counters)
}

// New creates a tracker; onChange may be nil.
func New(name string, onChange func(Counters)) *Progress {
	return &Progress{
		counters: Counters{Name: name, StartedAt: time.Now()},
		onChange: onChange,
	}
}

// Update applies the supplied delta. The onChange callback, if any, receives
// a copy outside the critical section so it may do slow work.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.counters.SubmittedJobs += d.Submitted
	p.counters.RunningJobs += d.Running
	p.counters.CompletedJobs += d.Completed
	p.counters.FailedJobs += d.Failed
	p.counters.RejectedJobs += d.Rejected
	snapshot := p.counters
	cb := p.onChange
	p.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy of the counters.
func (p *Progress) Snapshot() Counters {
	if p == nil {
		return Counters{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counters
}

// OnChange registers a callback invoked after every Update. Passing nil
// disables it.
func (p *Progress) OnChange(cb func(Counters)) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.onChange = cb
	p.mu.Unlock()
}
