package renderer

import (
	"fmt"
	"image"
	"log"
	"time"
)

// idleWait bounds how long a paused window blocks waiting for events
// before it checks for submitted sources again.
const idleWait = 1.0 / 30

type refreshDriven interface {
	RunPending() int
}

// Run presents frames in the window until it is closed. Frames are drawn
// when the loop has one pending; a paused loop only redraws on edits and
// resizes.
func (r *Renderer) Run() error {
	host, ok := r.sched.(refreshDriven)
	if !ok || r.context == nil {
		return fmt.Errorf("interactive mode requires a window and a host scheduler")
	}

	r.lastW, r.lastH = r.Size()
	r.loop.Start()
	lastFPS, lastDiag := -1.0, ""
	for !r.context.ShouldClose() {
		r.Poll()
		if fps, diag := r.loop.FPS(), r.Diagnostic(); r.onStatus != nil && (fps != lastFPS || diag != lastDiag) {
			lastFPS, lastDiag = fps, diag
			r.onStatus(fps, diag)
		}
		if w, h := r.Size(); w != r.lastW || h != r.lastH {
			r.lastW, r.lastH = w, h
			r.loop.Invalidate()
		}
		if host.RunPending() > 0 {
			r.context.EndFrame()
		} else {
			r.context.WaitEvents(idleWait)
		}
	}
	r.loop.Stop()
	log.Printf("Render loop stopped after %d frames", r.loop.FrameCount())
	return nil
}

// FrameSink receives recorded frames in order.
type FrameSink interface {
	WriteFrame(img *image.RGBA) error
}

// Record renders frames at a fixed rate on virtual time and hands each one
// to sink. The renderer must have been created with a VirtualScheduler.
func (r *Renderer) Record(frames, fps int, sink FrameSink) error {
	vs, ok := r.sched.(*VirtualScheduler)
	if !ok {
		return fmt.Errorf("recording requires a virtual scheduler")
	}
	if fps <= 0 {
		return fmt.Errorf("invalid frame rate %d", fps)
	}
	if r.programs.Active() == nil {
		return fmt.Errorf("no program to record")
	}

	start := vs.Clock.Now()
	r.loop.Start()
	defer r.loop.Stop()

	w, h := r.Size()
	for i := 0; i < frames; i++ {
		if vs.RunPending() == 0 {
			return fmt.Errorf("frame %d was not scheduled", i)
		}
		img, err := r.device.ReadPixels(w, h)
		if err != nil {
			return fmt.Errorf("failed to read frame %d: %w", i, err)
		}
		if err := sink.WriteFrame(img); err != nil {
			return fmt.Errorf("failed to write frame %d: %w", i, err)
		}
		next := start + time.Duration(i+1)*time.Second/time.Duration(fps)
		vs.Clock.Advance(next - vs.Clock.Now())
	}
	return nil
}
