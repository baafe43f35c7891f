package renderer

import (
	"log"
	"slices"
	"sort"

	"github.com/richinsley/goshaderlab/graphics"
	"github.com/richinsley/goshaderlab/shader"
	"github.com/richinsley/goshaderlab/translator"
)

// CompiledProgram is a linked program together with the uniform locations
// resolved against it. Locations belong to one program and are never
// carried over to its replacement.
type CompiledProgram struct {
	// ID increases with every successful compile.
	ID     uint64
	Handle uint32
	Source string
	// Signature is the sorted set of custom uniform names.
	Signature []string
	Schema    *shader.Schema
	// Locations maps source uniform names to active locations. Names
	// without an active location are absent.
	Locations map[string]int32
	Attrib    int32
}

// Location returns the location of a source uniform name, or -1.
func (p *CompiledProgram) Location(name string) int32 {
	if p == nil {
		return -1
	}
	if loc, ok := p.Locations[name]; ok {
		return loc
	}
	return -1
}

// ProgramManager compiles shader sources and owns the active program.
// A failed compile leaves the active program in place.
type ProgramManager struct {
	device     graphics.Device
	translator translator.Translator
	active     *CompiledProgram
	diagnostic string
	lastID     uint64
}

func NewProgramManager(device graphics.Device, tr translator.Translator) *ProgramManager {
	if tr == nil {
		tr = translator.Passthrough{}
	}
	return &ProgramManager{device: device, translator: tr}
}

// Active returns the program currently used for drawing, or nil.
func (m *ProgramManager) Active() *CompiledProgram {
	return m.active
}

// Diagnostic returns the message of the last failed compile, or "" when
// the last compile succeeded.
func (m *ProgramManager) Diagnostic() string {
	return m.diagnostic
}

// Compile builds a program from fragment source. On success the previous
// program is deleted and the new one becomes active. On failure the
// previous program stays active and is returned with a *graphics.CompileError
// or *graphics.LinkError.
func (m *ProgramManager) Compile(src string) (*CompiledProgram, error) {
	prog, err := m.build(src)
	if err != nil {
		m.diagnostic = err.Error()
		return m.active, err
	}
	if m.active != nil {
		if SameSignature(m.active, prog) {
			log.Printf("Rebuilt program %d, uniforms unchanged", prog.ID)
		}
		m.device.DeleteProgram(m.active.Handle)
	}
	m.active = prog
	m.diagnostic = ""
	return prog, nil
}

func (m *ProgramManager) build(src string) (*CompiledProgram, error) {
	schema := shader.Parse(src)

	vs, err := m.translator.Translate(shader.VertexSource(), "vertex")
	if err != nil {
		return nil, &graphics.CompileError{Stage: "vertex", Log: err.Error()}
	}
	fs, err := m.translator.Translate(shader.AssembleFragment(src), "fragment")
	if err != nil {
		return nil, &graphics.CompileError{Stage: "fragment", Log: err.Error()}
	}

	handle, err := m.device.CompileProgram(vs.Code, fs.Code)
	if err != nil {
		return nil, err
	}

	m.lastID++
	prog := &CompiledProgram{
		ID:        m.lastID,
		Handle:    handle,
		Source:    src,
		Signature: signature(schema),
		Schema:    schema,
		Locations: make(map[string]int32),
		Attrib:    m.device.AttribLocation(handle, vs.MappedName(shader.AttribPosition)),
	}

	names := []string{
		shader.UniformTime,
		shader.UniformResolution,
		shader.UniformPointer,
		shader.UniformPointerPressed,
	}
	for _, spec := range schema.Specs() {
		names = append(names, spec.Name)
		if spec.Kind == shader.KindTexture {
			names = append(names, shader.CompanionName(spec.Name))
		}
	}
	for _, name := range names {
		if loc := m.device.UniformLocation(handle, fs.MappedName(name)); loc >= 0 {
			prog.Locations[name] = loc
		}
	}
	if prog.Attrib < 0 {
		log.Printf("Warning: program %d has no %s attribute", prog.ID, shader.AttribPosition)
	}
	return prog, nil
}

// Dispose deletes the active program.
func (m *ProgramManager) Dispose() {
	if m.active != nil {
		m.device.DeleteProgram(m.active.Handle)
		m.active = nil
	}
}

func signature(schema *shader.Schema) []string {
	names := schema.Names()
	sort.Strings(names)
	return names
}

// SameSignature reports whether two programs expose the same custom
// uniform names.
func SameSignature(a, b *CompiledProgram) bool {
	if a == nil || b == nil {
		return a == b
	}
	return slices.Equal(a.Signature, b.Signature)
}
