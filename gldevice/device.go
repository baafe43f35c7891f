// Package gldevice implements graphics.Device on OpenGL 4.1 core.
package gldevice

import (
	"fmt"
	"image"
	"log"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/richinsley/goshaderlab/graphics"
)

var quadVertices = []float32{
	-1.0, 1.0, -1.0, -1.0, 1.0, -1.0,
	-1.0, 1.0, 1.0, -1.0, 1.0, 1.0,
}

// Device issues GL calls against the context current on the calling thread.
type Device struct {
	quadVAO uint32
	quadVBO uint32
}

var _ graphics.Device = (*Device)(nil)

// New loads the GL entry points and creates the fullscreen quad. A context
// must be current.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Printf("OpenGL version: %s", gl.GoStr(gl.GetString(gl.VERSION)))

	d := &Device{}
	gl.GenVertexArrays(1, &d.quadVAO)
	gl.GenBuffers(1, &d.quadVBO)
	gl.BindVertexArray(d.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	gl.ClearColor(0, 0, 0, 1)
	return d, nil
}

// Destroy releases the quad buffers.
func (d *Device) Destroy() {
	gl.DeleteBuffers(1, &d.quadVBO)
	gl.DeleteVertexArrays(1, &d.quadVAO)
}

func (d *Device) CompileProgram(vertexSource, fragmentSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertexShader)

	fragmentShader, err := compileShader(fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragmentShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(logText))
		gl.DeleteProgram(program)
		return 0, &graphics.LinkError{Log: strings.TrimRight(logText, "\x00")}
	}
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		gl.DeleteShader(shader)

		stage := "fragment"
		if shaderType == gl.VERTEX_SHADER {
			stage = "vertex"
		}
		return 0, &graphics.CompileError{Stage: stage, Log: strings.TrimRight(logText, "\x00")}
	}
	return shader, nil
}

func (d *Device) DeleteProgram(program uint32) {
	gl.DeleteProgram(program)
}

func (d *Device) UseProgram(program uint32) {
	gl.UseProgram(program)
}

func (d *Device) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (d *Device) AttribLocation(program uint32, name string) int32 {
	return gl.GetAttribLocation(program, gl.Str(name+"\x00"))
}

func (d *Device) Uniform1f(loc int32, v float32)          { gl.Uniform1f(loc, v) }
func (d *Device) Uniform2f(loc int32, x, y float32)       { gl.Uniform2f(loc, x, y) }
func (d *Device) Uniform3f(loc int32, x, y, z float32)    { gl.Uniform3f(loc, x, y, z) }
func (d *Device) Uniform4f(loc int32, x, y, z, w float32) { gl.Uniform4f(loc, x, y, z, w) }
func (d *Device) Uniform1i(loc int32, v int32)            { gl.Uniform1i(loc, v) }

func (d *Device) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (d *Device) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (d *Device) DrawQuad(attrib int32) {
	gl.BindVertexArray(d.quadVAO)
	if attrib >= 0 {
		gl.BindBuffer(gl.ARRAY_BUFFER, d.quadVBO)
		gl.EnableVertexAttribArray(uint32(attrib))
		gl.VertexAttribPointer(uint32(attrib), 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
		gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	}
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
}

func (d *Device) ReadPixels(width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid read size %dx%d", width, height)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	if e := gl.GetError(); e != gl.NO_ERROR {
		return nil, fmt.Errorf("glReadPixels failed: 0x%x", e)
	}
	flipRows(img)
	return img, nil
}

// flipRows swaps rows in place so row 0 becomes the top of the image.
func flipRows(img *image.RGBA) {
	h := img.Rect.Dy()
	rowSize := img.Rect.Dx() * 4
	tmp := make([]byte, rowSize)
	for y := 0; y < h/2; y++ {
		top := img.Pix[y*img.Stride : y*img.Stride+rowSize]
		bottom := img.Pix[(h-1-y)*img.Stride : (h-1-y)*img.Stride+rowSize]
		copy(tmp, top)
		copy(top, bottom)
		copy(bottom, tmp)
	}
}
