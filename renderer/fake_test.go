package renderer

import (
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"regexp"
	"sort"
	"strings"

	"github.com/richinsley/goshaderlab/graphics"
	"github.com/richinsley/goshaderlab/translator"
)

var fakeUniformRe = regexp.MustCompile(`uniform\s+(?:(?:lowp|mediump|highp)\s+)?(\w+)\s+(\w+)\s*;`)

type fakeProgram struct {
	uniforms map[string]int32
	attrib   int32
}

// fakeDevice records GPU calls. Every uniform declared in a fragment gets
// a location; pixels read back are a hash of the last draw.
type fakeDevice struct {
	failOn     string
	linkFailOn string

	lastProgram uint32
	programs    map[uint32]*fakeProgram
	deleted     []uint32
	current     uint32

	floats map[int32][]float32
	ints   map[int32]int32
	// types holds the declared GLSL type per location. A setter that does
	// not fit the type is counted in invalid and stores nothing, as GL
	// raises GL_INVALID_OPERATION.
	types   map[int32]string
	invalid int

	lastTexture uint32
	textures    map[uint32]*image.RGBA
	texDeleted  []uint32
	texUploads  int
	bound       map[int]uint32

	viewportW, viewportH int
	draws                int
	lastDraw             string
}

var _ graphics.Device = (*fakeDevice)(nil)

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		programs: make(map[uint32]*fakeProgram),
		floats:   make(map[int32][]float32),
		ints:     make(map[int32]int32),
		types:    make(map[int32]string),
		textures: make(map[uint32]*image.RGBA),
		bound:    make(map[int]uint32),
	}
}

func (d *fakeDevice) CompileProgram(vs, fs string) (uint32, error) {
	if d.failOn != "" && strings.Contains(fs, d.failOn) {
		return 0, &graphics.CompileError{Stage: "fragment", Log: "ERROR: 0:1: syntax error"}
	}
	if d.linkFailOn != "" && strings.Contains(fs, d.linkFailOn) {
		return 0, &graphics.LinkError{Log: "error: unresolved symbol"}
	}
	d.lastProgram++
	h := d.lastProgram
	p := &fakeProgram{uniforms: make(map[string]int32), attrib: -1}
	for i, m := range fakeUniformRe.FindAllStringSubmatch(fs, -1) {
		if _, dup := p.uniforms[m[2]]; !dup {
			loc := int32(h)*100 + int32(i)
			p.uniforms[m[2]] = loc
			d.types[loc] = m[1]
		}
	}
	if idx := strings.Index(vs, "a_position"); idx >= 0 {
		p.attrib = 0
	}
	d.programs[h] = p
	return h, nil
}

func (d *fakeDevice) DeleteProgram(program uint32) {
	delete(d.programs, program)
	d.deleted = append(d.deleted, program)
}

func (d *fakeDevice) UseProgram(program uint32) { d.current = program }

func (d *fakeDevice) UniformLocation(program uint32, name string) int32 {
	if p, ok := d.programs[program]; ok {
		if loc, ok := p.uniforms[name]; ok {
			return loc
		}
	}
	return -1
}

func (d *fakeDevice) AttribLocation(program uint32, name string) int32 {
	if p, ok := d.programs[program]; ok && strings.HasSuffix(name, "a_position") {
		return p.attrib
	}
	return -1
}

func (d *fakeDevice) accepts(loc int32, types ...string) bool {
	for _, t := range types {
		if d.types[loc] == t {
			return true
		}
	}
	d.invalid++
	return false
}

func (d *fakeDevice) Uniform1f(loc int32, v float32) {
	if d.accepts(loc, "float", "bool") {
		d.floats[loc] = []float32{v}
	}
}

func (d *fakeDevice) Uniform2f(loc int32, x, y float32) {
	if d.accepts(loc, "vec2") {
		d.floats[loc] = []float32{x, y}
	}
}

func (d *fakeDevice) Uniform3f(loc int32, x, y, z float32) {
	if d.accepts(loc, "vec3") {
		d.floats[loc] = []float32{x, y, z}
	}
}

func (d *fakeDevice) Uniform4f(loc int32, x, y, z, w float32) {
	if d.accepts(loc, "vec4") {
		d.floats[loc] = []float32{x, y, z, w}
	}
}

func (d *fakeDevice) Uniform1i(loc int32, v int32) {
	if d.accepts(loc, "int", "bool", "sampler2D") {
		d.ints[loc] = v
	}
}

func (d *fakeDevice) CreateTexture() uint32 {
	d.lastTexture++
	d.textures[d.lastTexture] = nil
	return d.lastTexture
}

func (d *fakeDevice) UploadTexture(tex uint32, img *image.RGBA) {
	d.textures[tex] = img
	d.texUploads++
}

func (d *fakeDevice) DeleteTexture(tex uint32) {
	delete(d.textures, tex)
	d.texDeleted = append(d.texDeleted, tex)
}

func (d *fakeDevice) BindTexture(unit int, tex uint32) { d.bound[unit] = tex }

func (d *fakeDevice) Viewport(w, h int) { d.viewportW, d.viewportH = w, h }

func (d *fakeDevice) Clear() {}

func (d *fakeDevice) DrawQuad(attrib int32) {
	d.draws++
	p := d.programs[d.current]
	if p == nil {
		d.lastDraw = "none"
		return
	}
	var parts []string
	for name, loc := range p.uniforms {
		if v, ok := d.floats[loc]; ok {
			parts = append(parts, fmt.Sprintf("%s=%v", name, v))
		}
		if v, ok := d.ints[loc]; ok {
			parts = append(parts, fmt.Sprintf("%s=i%d", name, v))
		}
	}
	sort.Strings(parts)
	d.lastDraw = fmt.Sprintf("%d|%s", d.current, strings.Join(parts, ","))
}

func (d *fakeDevice) ReadPixels(w, h int) (*image.RGBA, error) {
	hash := fnv.New32a()
	hash.Write([]byte(d.lastDraw))
	sum := hash.Sum32()
	c := color.RGBA{R: uint8(sum), G: uint8(sum >> 8), B: uint8(sum >> 16), A: 0xff}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img, nil
}

// valueOf returns the last float upload for a uniform of the current
// program.
func (d *fakeDevice) valueOf(name string) []float32 {
	p := d.programs[d.current]
	if p == nil {
		return nil
	}
	loc, ok := p.uniforms[name]
	if !ok {
		return nil
	}
	return d.floats[loc]
}

func (d *fakeDevice) intOf(name string) (int32, bool) {
	p := d.programs[d.current]
	if p == nil {
		return 0, false
	}
	loc, ok := p.uniforms[name]
	if !ok {
		return 0, false
	}
	v, ok := d.ints[loc]
	return v, ok
}

// prefixTranslator renames declared uniforms and the position attribute
// the way a real translator mangles identifiers.
type prefixTranslator struct{}

func (prefixTranslator) Translate(source, stage string) (*translator.Translation, error) {
	names := make(map[string]string)
	for _, m := range fakeUniformRe.FindAllStringSubmatch(source, -1) {
		names[m[2]] = "_u" + m[2]
	}
	if stage == "vertex" {
		names["a_position"] = "_ua_position"
	}
	code := source
	for from, to := range names {
		code = regexp.MustCompile(`\b`+regexp.QuoteMeta(from)+`\b`).ReplaceAllString(code, to)
	}
	return &translator.Translation{Code: code, Names: names}, nil
}

type failingTranslator struct{}

func (failingTranslator) Translate(source, stage string) (*translator.Translation, error) {
	if stage == "fragment" {
		return nil, fmt.Errorf("ERROR: 0:4: 'foo' : undeclared identifier")
	}
	return &translator.Translation{Code: source}, nil
}

// fakeContext is a window that closes after limit loop iterations.
type fakeContext struct {
	width, height      int
	pointerX, pointerY float32
	pressed            bool

	limit, iterations int
	frames, waits     int
}

var _ graphics.Context = (*fakeContext)(nil)

func (c *fakeContext) Shutdown()         {}
func (c *fakeContext) ShouldClose() bool { return c.iterations >= c.limit }

func (c *fakeContext) EndFrame() {
	c.frames++
	c.iterations++
}

func (c *fakeContext) WaitEvents(float64) {
	c.waits++
	c.iterations++
}

func (c *fakeContext) GetFramebufferSize() (int, int) { return c.width, c.height }

func (c *fakeContext) GetPointer() (float32, float32, bool) {
	return c.pointerX, c.pointerY, c.pressed
}
