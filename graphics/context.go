package graphics

// Context defines the interface for the window or surface that owns the
// OpenGL context.
type Context interface {
	Shutdown()
	ShouldClose() bool
	// EndFrame presents the drawn frame and processes pending events.
	EndFrame()
	// WaitEvents processes events without presenting, blocking for at most
	// timeout seconds.
	WaitEvents(timeout float64)
	// GetFramebufferSize returns the drawable size in device pixels.
	GetFramebufferSize() (int, int)
	// GetPointer returns the pointer position normalized to [0,1] with y
	// pointing up, and whether the primary button is held.
	GetPointer() (x, y float32, pressed bool)
}
