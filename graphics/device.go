package graphics

import (
	"fmt"
	"image"
)

// Device is the GPU command surface used by the renderer. All methods must
// be called on the thread that owns the current context.
type Device interface {
	// CompileProgram compiles and links a vertex and fragment stage. It
	// returns a *CompileError or *LinkError on failure.
	CompileProgram(vertex, fragment string) (uint32, error)
	DeleteProgram(program uint32)
	UseProgram(program uint32)
	// UniformLocation returns -1 when the program has no active uniform
	// with that name.
	UniformLocation(program uint32, name string) int32
	AttribLocation(program uint32, name string) int32

	Uniform1f(loc int32, v float32)
	Uniform2f(loc int32, x, y float32)
	Uniform3f(loc int32, x, y, z float32)
	Uniform4f(loc int32, x, y, z, w float32)
	Uniform1i(loc int32, v int32)

	CreateTexture() uint32
	// UploadTexture replaces the full content of tex with img. Row 0 of img
	// is the bottom row of the texture.
	UploadTexture(tex uint32, img *image.RGBA)
	DeleteTexture(tex uint32)
	BindTexture(unit int, tex uint32)

	Viewport(width, height int)
	Clear()
	// DrawQuad draws the fullscreen quad feeding positions to attrib.
	DrawQuad(attrib int32)
	// ReadPixels reads the current render target into a top-down image.
	ReadPixels(width, height int) (*image.RGBA, error)
}

// CompileError reports a shader stage that failed to compile.
type CompileError struct {
	Stage string
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile %s shader: %s", e.Stage, e.Log)
}

// LinkError reports a program that failed to link.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("failed to link program: %s", e.Log)
}
