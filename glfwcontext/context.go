package glfwcontext

import (
	"log"
	"runtime"

	glfw "github.com/go-gl/glfw/v3.3/glfw"

	"github.com/richinsley/goshaderlab/graphics"
)

// Context is a GLFW window with a GL 4.1 core context.
type Context struct {
	window *glfw.Window
	// A map to store functions to be called on key presses.
	keyCallbacks map[glfw.Key]func()
	// pointer in normalized coordinates, kept while the cursor is outside
	pointerX, pointerY float32
}

var _ graphics.Context = (*Context)(nil)

// Options configures the window.
type Options struct {
	Width   int
	Height  int
	Title   string
	Visible bool
	VSync   bool
}

// New creates and initializes a new GLFW window and returns a Context object.
func New(opts Options) (*Context, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	if opts.Visible {
		glfw.WindowHint(glfw.Resizable, glfw.True)
		glfw.WindowHint(glfw.Visible, glfw.True)
	} else {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}

	title := opts.Title
	if title == "" {
		title = "goshaderlab"
	}
	win, err := glfw.CreateWindow(opts.Width, opts.Height, title, nil, nil)
	if err != nil {
		return nil, err
	}

	c := &Context{
		window:       win,
		keyCallbacks: make(map[glfw.Key]func()),
		pointerX:     0.5,
		pointerY:     0.5,
	}
	win.SetKeyCallback(c.glfwKeyCallback)

	c.MakeCurrent()
	if opts.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	return c, nil
}

// RegisterKeyCallback allows the main application to register a function to be
// called when a specific key is pressed.
func (c *Context) RegisterKeyCallback(key glfw.Key, f func()) {
	c.keyCallbacks[key] = f
}

func (c *Context) glfwKeyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		w.SetShouldClose(true)
	}
	if action == glfw.Press {
		if callback, ok := c.keyCallbacks[key]; ok {
			callback()
		}
	}
}

// SetTitle updates the window title.
func (c *Context) SetTitle(title string) {
	c.window.SetTitle(title)
}

// GetPointer returns the cursor normalized to the window with y up. Outside
// the window the last inside position is kept.
func (c *Context) GetPointer() (float32, float32, bool) {
	winWidth, winHeight := c.window.GetSize()
	cursorX, cursorY := c.window.GetCursorPos()
	if winWidth > 0 && winHeight > 0 &&
		cursorX >= 0 && cursorY >= 0 && cursorX <= float64(winWidth) && cursorY <= float64(winHeight) {
		c.pointerX = float32(cursorX / float64(winWidth))
		c.pointerY = 1 - float32(cursorY/float64(winHeight))
	}
	const mouseLeft = glfw.MouseButtonLeft
	pressed := c.window.GetMouseButton(mouseLeft) == glfw.Press
	return c.pointerX, c.pointerY, pressed
}

// MakeCurrent makes the context current for the calling goroutine.
func (c *Context) MakeCurrent() {
	c.window.MakeContextCurrent()
}

// Shutdown destroys the window.
func (c *Context) Shutdown() {
	c.window.Destroy()
}

func (c *Context) ShouldClose() bool {
	return c.window.ShouldClose()
}

func (c *Context) EndFrame() {
	c.window.SwapBuffers()
	glfw.PollEvents()
}

func (c *Context) WaitEvents(timeout float64) {
	glfw.WaitEventsTimeout(timeout)
}

func (c *Context) GetFramebufferSize() (int, int) {
	return c.window.GetFramebufferSize()
}

// InitGraphics initializes the main graphics subsystem (GLFW). Must be called from the main thread.
func InitGraphics() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return err
	}
	log.Printf("GLFW Initialized")
	return nil
}

// TerminateGraphics shuts down the graphics subsystem. Must be called from the main thread.
func TerminateGraphics() {
	glfw.Terminate()
	log.Printf("GLFW Terminated")
}
