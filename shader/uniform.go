package shader

import (
	"fmt"
	"strings"
)

// Kind is the shape of a tunable uniform.
type Kind int

const (
	KindScalar Kind = iota
	KindVec2
	KindVec3
	KindVec4
	KindBool
	KindTexture
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindVec2:
		return "vec2"
	case KindVec3:
		return "vec3"
	case KindVec4:
		return "vec4"
	case KindBool:
		return "bool"
	case KindTexture:
		return "texture"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Components returns the number of float components a value of this kind
// carries. Textures carry none.
func (k Kind) Components() int {
	switch k {
	case KindScalar, KindBool:
		return 1
	case KindVec2:
		return 2
	case KindVec3:
		return 3
	case KindVec4:
		return 4
	default:
		return 0
	}
}

// IsVector reports whether k is vec2, vec3 or vec4.
func (k Kind) IsVector() bool {
	return k == KindVec2 || k == KindVec3 || k == KindVec4
}

// Built-in uniforms supplied by the engine every frame. They are never
// part of a tunable schema.
const (
	UniformTime           = "u_time"
	UniformResolution     = "u_resolution"
	UniformPointer        = "u_mouse"
	UniformPointerPressed = "u_mousePressed"
)

// ResolutionSuffix names the companion vec2 of a sampler2D uniform:
// u_image pairs with u_imageResolution.
const ResolutionSuffix = "Resolution"

var builtinPrefixes = []string{UniformTime, UniformResolution, UniformPointer}

// IsBuiltin reports whether name is reserved for an engine-supplied uniform.
// Matching is by prefix, so u_mousePressed is covered by u_mouse.
func IsBuiltin(name string) bool {
	for _, p := range builtinPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// CompanionName returns the resolution companion uniform for a texture.
func CompanionName(texture string) string {
	return texture + ResolutionSuffix
}

// UniformSpec describes one tunable uniform extracted from shader source.
type UniformSpec struct {
	Name     string
	Kind     Kind
	GLSLType string
	// Integer marks an int declaration: a scalar uploaded as an integer.
	Integer bool
	Default Value
	Min     float64
	Max     float64
	Step    float64
	IsColor bool
}

// Schema is the ordered set of tunable uniforms of one shader source.
// Iteration follows declaration order.
type Schema struct {
	specs []UniformSpec
	index map[string]int
}

// NewSchema builds a schema from specs in order. Later duplicates of a name
// are ignored.
func NewSchema(specs ...UniformSpec) *Schema {
	s := &Schema{index: make(map[string]int, len(specs))}
	for _, spec := range specs {
		s.add(spec)
	}
	return s
}

func (s *Schema) add(spec UniformSpec) bool {
	if _, dup := s.index[spec.Name]; dup {
		return false
	}
	s.index[spec.Name] = len(s.specs)
	s.specs = append(s.specs, spec)
	return true
}

// Len returns the number of uniforms in the schema.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.specs)
}

// Lookup returns the spec for name.
func (s *Schema) Lookup(name string) (UniformSpec, bool) {
	if s == nil {
		return UniformSpec{}, false
	}
	i, ok := s.index[name]
	if !ok {
		return UniformSpec{}, false
	}
	return s.specs[i], true
}

// Names returns uniform names in declaration order.
func (s *Schema) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.specs))
	for i, spec := range s.specs {
		names[i] = spec.Name
	}
	return names
}

// Specs returns a copy of the specs in declaration order.
func (s *Schema) Specs() []UniformSpec {
	if s == nil {
		return nil
	}
	out := make([]UniformSpec, len(s.specs))
	copy(out, s.specs)
	return out
}
