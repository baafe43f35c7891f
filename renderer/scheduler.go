package renderer

import (
	"time"
)

// Clock is a monotonic time source.
type Clock interface {
	Now() time.Duration
}

// Scheduler runs a callback on a later display refresh. The returned
// function cancels the callback if it has not run yet.
type Scheduler interface {
	Schedule(cb func()) (cancel func())
}

// SystemClock measures wall time from its creation.
type SystemClock struct {
	start time.Time
}

func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

func (c *SystemClock) Now() time.Duration {
	return time.Since(c.start)
}

type scheduled struct {
	cb        func()
	cancelled bool
}

// HostScheduler queues callbacks until the host drains them once per
// display refresh with RunPending. It is not safe for concurrent use.
type HostScheduler struct {
	queue []*scheduled
}

func NewHostScheduler() *HostScheduler {
	return &HostScheduler{}
}

func (s *HostScheduler) Schedule(cb func()) func() {
	e := &scheduled{cb: cb}
	s.queue = append(s.queue, e)
	return func() { e.cancelled = true }
}

// Pending returns the number of queued callbacks that were not cancelled.
func (s *HostScheduler) Pending() int {
	n := 0
	for _, e := range s.queue {
		if !e.cancelled {
			n++
		}
	}
	return n
}

// RunPending runs the callbacks queued before the call. Callbacks scheduled
// while running wait for the next call.
func (s *HostScheduler) RunPending() int {
	queue := s.queue
	s.queue = nil
	ran := 0
	for _, e := range queue {
		if e.cancelled {
			continue
		}
		e.cancelled = true
		e.cb()
		ran++
	}
	return ran
}

// VirtualClock is a manually advanced clock.
type VirtualClock struct {
	now time.Duration
}

func (c *VirtualClock) Now() time.Duration {
	return c.now
}

// Advance moves the clock forward by d.
func (c *VirtualClock) Advance(d time.Duration) {
	c.now += d
}

// VirtualScheduler is a HostScheduler driven by a VirtualClock: each Step
// is one simulated display refresh.
type VirtualScheduler struct {
	HostScheduler
	Clock *VirtualClock
}

func NewVirtualScheduler(clock *VirtualClock) *VirtualScheduler {
	if clock == nil {
		clock = &VirtualClock{}
	}
	return &VirtualScheduler{Clock: clock}
}

// Step advances the clock by d and then runs the pending callbacks.
func (s *VirtualScheduler) Step(d time.Duration) int {
	s.Clock.Advance(d)
	return s.RunPending()
}
