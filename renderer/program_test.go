package renderer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/goshaderlab/graphics"
)

const texturedSource = `
uniform float u_time;
uniform vec2 u_resolution;
uniform sampler2D u_image;
uniform vec2 u_imageResolution;
uniform float u_zoom; // default: 2, min: 1, max: 4
uniform vec3 u_color; // default: 1, 0, 0
void main() {
  vec2 uv = gl_FragCoord.xy / u_resolution;
  gl_FragColor = texture2D(u_image, uv * u_zoom) * vec4(u_color, 1.0);
}
`

const brokenSource = `
uniform float u_zoom;
void main() { BROKEN
`

func TestCompileInstallsProgram(t *testing.T) {
	dev := newFakeDevice()
	m := NewProgramManager(dev, nil)

	prog, err := m.Compile(texturedSource)
	require.NoError(t, err)
	require.NotNil(t, prog)
	assert.Same(t, prog, m.Active())
	assert.Empty(t, m.Diagnostic())

	assert.Equal(t, []string{"u_color", "u_image", "u_zoom"}, prog.Signature)
	for _, name := range []string{"u_time", "u_resolution", "u_image", "u_imageResolution", "u_zoom", "u_color"} {
		assert.GreaterOrEqual(t, prog.Location(name), int32(0), name)
	}
	assert.Equal(t, int32(-1), prog.Location("u_mouse"), "undeclared built-in has no location")
	assert.Equal(t, int32(0), prog.Attrib)
}

func TestCompileFailureKeepsPrevious(t *testing.T) {
	dev := newFakeDevice()
	dev.failOn = "BROKEN"
	m := NewProgramManager(dev, nil)

	good, err := m.Compile(texturedSource)
	require.NoError(t, err)

	got, err := m.Compile(brokenSource)
	require.Error(t, err)
	var compileErr *graphics.CompileError
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, "fragment", compileErr.Stage)
	assert.Same(t, good, got, "the previous program is returned")
	assert.Same(t, good, m.Active())
	assert.NotEmpty(t, m.Diagnostic())
	assert.Empty(t, dev.deleted, "a failed compile disposes nothing")

	next, err := m.Compile(texturedSource + "\n// edit\n")
	require.NoError(t, err)
	assert.Equal(t, []uint32{good.Handle}, dev.deleted)
	assert.Empty(t, m.Diagnostic())
	assert.Greater(t, next.ID, good.ID)
}

func TestCompileFirstFailureHasNoProgram(t *testing.T) {
	dev := newFakeDevice()
	dev.failOn = "BROKEN"
	m := NewProgramManager(dev, nil)

	prog, err := m.Compile(brokenSource)
	assert.Error(t, err)
	assert.Nil(t, prog)
	assert.Nil(t, m.Active())
}

func TestCompileLinkError(t *testing.T) {
	dev := newFakeDevice()
	dev.linkFailOn = "u_link"
	m := NewProgramManager(dev, nil)

	_, err := m.Compile(`uniform float u_link; void main() {}`)
	var linkErr *graphics.LinkError
	require.True(t, errors.As(err, &linkErr))
	assert.Contains(t, m.Diagnostic(), "link")
}

func TestCompileTranslatorFailure(t *testing.T) {
	m := NewProgramManager(newFakeDevice(), failingTranslator{})
	_, err := m.Compile(texturedSource)
	var compileErr *graphics.CompileError
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, "fragment", compileErr.Stage)
	assert.Contains(t, compileErr.Log, "undeclared identifier")
}

func TestCompileRebuildsOnSameSignature(t *testing.T) {
	dev := newFakeDevice()
	m := NewProgramManager(dev, nil)

	first, err := m.Compile(`uniform float u_a; void main() { gl_FragColor = vec4(u_a); }`)
	require.NoError(t, err)
	second, err := m.Compile(`uniform float u_a; void main() { gl_FragColor = vec4(u_a * 0.5); }`)
	require.NoError(t, err)

	assert.True(t, SameSignature(first, second))
	assert.NotEqual(t, first.Handle, second.Handle)
	assert.Equal(t, []uint32{first.Handle}, dev.deleted)
	assert.Len(t, dev.programs, 1, "only one program is alive")
}

func TestCompileResolvesMappedNames(t *testing.T) {
	dev := newFakeDevice()
	m := NewProgramManager(dev, prefixTranslator{})

	prog, err := m.Compile(texturedSource)
	require.NoError(t, err)
	assert.Equal(t, dev.programs[prog.Handle].uniforms["_uu_zoom"], prog.Location("u_zoom"))
	assert.GreaterOrEqual(t, prog.Location("u_imageResolution"), int32(0))
	assert.Equal(t, int32(0), prog.Attrib)
}

func TestDispose(t *testing.T) {
	dev := newFakeDevice()
	m := NewProgramManager(dev, nil)
	prog, err := m.Compile(texturedSource)
	require.NoError(t, err)

	m.Dispose()
	assert.Nil(t, m.Active())
	assert.Equal(t, []uint32{prog.Handle}, dev.deleted)
	m.Dispose()
	assert.Len(t, dev.deleted, 1)
}
