package renderer

import (
	"math"
	"time"
)

// State is the play state of the render loop.
type State int

const (
	Idle State = iota
	Running
	Paused
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

const fpsWindow = time.Second

// Loop drives the per-frame callback. Elapsed time advances only while
// Running; time spent paused is never added. The next frame is scheduled
// only after the current one returns.
type Loop struct {
	clock Clock
	sched Scheduler
	frame func(elapsed float64)

	state          State
	elapsedAtPause time.Duration
	resumedAt      time.Duration
	frameCount     uint64

	fpsWindowStart time.Duration
	fpsFrames      int
	fps            float64

	cancel func()
}

// NewLoop returns an idle loop calling frame with the elapsed time in
// seconds.
func NewLoop(clock Clock, sched Scheduler, frame func(elapsed float64)) *Loop {
	return &Loop{clock: clock, sched: sched, frame: frame}
}

func (l *Loop) State() State {
	return l.state
}

// FrameCount returns the number of frames rendered since creation.
func (l *Loop) FrameCount() uint64 {
	return l.frameCount
}

// FPS returns the frame rate measured over the last complete one second
// window.
func (l *Loop) FPS() float64 {
	return l.fps
}

// Elapsed returns the animation time in seconds.
func (l *Loop) Elapsed() float64 {
	return l.elapsed().Seconds()
}

func (l *Loop) elapsed() time.Duration {
	if l.state == Running {
		return l.elapsedAtPause + (l.clock.Now() - l.resumedAt)
	}
	return l.elapsedAtPause
}

// Start begins animating from the current elapsed time.
func (l *Loop) Start() {
	if l.state != Idle {
		return
	}
	l.run()
}

// Pause stops time and the frame stream. The last frame stays visible.
func (l *Loop) Pause() {
	if l.state != Running {
		return
	}
	l.elapsedAtPause = l.elapsed()
	l.state = Paused
	l.cancelPending()
	l.fps = 0
}

// Resume continues from the pause point.
func (l *Loop) Resume() {
	if l.state != Paused {
		return
	}
	l.run()
}

func (l *Loop) run() {
	now := l.clock.Now()
	l.resumedAt = now
	l.fpsWindowStart = now
	l.fpsFrames = 0
	l.state = Running
	l.schedule()
}

// Toggle switches between Running and Paused, starting an idle loop.
func (l *Loop) Toggle() {
	switch l.state {
	case Idle:
		l.Start()
	case Running:
		l.Pause()
	case Paused:
		l.Resume()
	}
}

// Seek sets the elapsed time.
func (l *Loop) Seek(seconds float64) {
	l.elapsedAtPause = time.Duration(seconds * float64(time.Second))
	l.resumedAt = l.clock.Now()
	l.Invalidate()
}

// Invalidate requests a frame while paused so an edit becomes visible.
// Requests made before that frame runs are coalesced. A running loop
// redraws anyway and ignores the request.
func (l *Loop) Invalidate() {
	if l.state == Paused {
		l.schedule()
	}
}

// Stop cancels any pending frame and returns to Idle. The elapsed time is
// kept.
func (l *Loop) Stop() {
	l.elapsedAtPause = l.elapsed()
	l.cancelPending()
	l.state = Idle
}

func (l *Loop) schedule() {
	if l.cancel != nil {
		return
	}
	l.cancel = l.sched.Schedule(l.tick)
}

func (l *Loop) cancelPending() {
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

func (l *Loop) tick() {
	l.cancel = nil
	if l.state == Idle {
		return
	}
	l.frame(l.Elapsed())
	l.frameCount++

	if l.state != Running {
		return
	}
	l.countFrame()
	l.schedule()
}

func (l *Loop) countFrame() {
	l.fpsFrames++
	now := l.clock.Now()
	dt := now - l.fpsWindowStart
	if dt >= fpsWindow {
		l.fps = math.Round(float64(l.fpsFrames) / dt.Seconds())
		l.fpsFrames = 0
		l.fpsWindowStart = now
	}
}
