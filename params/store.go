// Package params holds the live value of every tunable uniform and keeps it
// consistent with the schema of the current shader source.
package params

import (
	"fmt"
	"log"
	"math"
	"math/rand/v2"

	"github.com/richinsley/goshaderlab/shader"
)

// Store maps uniform names to their current values. It is owned by the
// render thread and is not safe for concurrent use.
type Store struct {
	schema *shader.Schema
	values map[string]shader.Value
	rng    *rand.Rand
}

// NewStore returns an empty store. A nil rng uses the global source.
func NewStore(rng *rand.Rand) *Store {
	return &Store{
		schema: shader.NewSchema(),
		values: make(map[string]shader.Value),
		rng:    rng,
	}
}

// Schema returns the schema the store currently tracks.
func (s *Store) Schema() *shader.Schema {
	return s.schema
}

// SetSchema installs a new schema. A value whose name survives with the
// same kind is kept as is, new names take their default, and removed names
// are dropped. A name whose kind changed is reset to its new default.
func (s *Store) SetSchema(schema *shader.Schema) {
	if schema == nil {
		schema = shader.NewSchema()
	}
	next := make(map[string]shader.Value, schema.Len())
	for _, spec := range schema.Specs() {
		if v, ok := s.values[spec.Name]; ok && v.Kind == spec.Kind {
			next[spec.Name] = v
			continue
		}
		next[spec.Name] = spec.Default
	}
	s.schema = schema
	s.values = next
}

// Get returns the value stored for name.
func (s *Store) Get(name string) (shader.Value, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Set stores v for name. The name must be in the schema and the kinds
// must match.
func (s *Store) Set(name string, v shader.Value) error {
	spec, ok := s.schema.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown uniform %q", name)
	}
	if spec.Kind != v.Kind {
		return fmt.Errorf("uniform %q is %s, got %s", name, spec.Kind, v.Kind)
	}
	s.values[name] = v
	return nil
}

// Entry is one name/value pair in declaration order.
type Entry struct {
	Spec  shader.UniformSpec
	Value shader.Value
}

// Entries returns every value paired with its spec, in declaration order.
func (s *Store) Entries() []Entry {
	specs := s.schema.Specs()
	out := make([]Entry, 0, len(specs))
	for _, spec := range specs {
		v, ok := s.values[spec.Name]
		if !ok || v.Kind != spec.Kind {
			v = spec.Default
		}
		out = append(out, Entry{Spec: spec, Value: v})
	}
	return out
}

// Values returns a copy of the current name to value map.
func (s *Store) Values() map[string]shader.Value {
	out := make(map[string]shader.Value, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Defaults returns the schema default of every uniform.
func (s *Store) Defaults() map[string]shader.Value {
	out := make(map[string]shader.Value, s.schema.Len())
	for _, spec := range s.schema.Specs() {
		out[spec.Name] = spec.Default
	}
	return out
}

// Reset sets every value back to its schema default.
func (s *Store) Reset() {
	s.values = s.Defaults()
}

func (s *Store) float() float64 {
	if s.rng != nil {
		return s.rng.Float64()
	}
	return rand.Float64()
}

// randomInt returns a whole number in [from, to], both ends included.
func (s *Store) randomInt(from, to float64) float64 {
	lo, hi := math.Ceil(from), math.Floor(to)
	if hi < lo {
		return lo
	}
	return math.Min(lo+math.Floor(s.float()*(hi-lo+1)), hi)
}

// Randomize assigns random values: float scalars within [min, max), ints
// within [min, max], color vec3 and vec2 components within [0, 1), bools
// by coin flip. Other kinds, textures included, are left untouched.
func (s *Store) Randomize() {
	for _, spec := range s.schema.Specs() {
		switch {
		case spec.Kind == shader.KindScalar && spec.Integer:
			s.values[spec.Name] = shader.Scalar(s.randomInt(spec.Min, spec.Max))
		case spec.Kind == shader.KindScalar:
			s.values[spec.Name] = shader.Scalar(spec.Min + s.float()*(spec.Max-spec.Min))
		case spec.Kind == shader.KindVec3 && spec.IsColor:
			s.values[spec.Name] = shader.Vec3(s.float(), s.float(), s.float())
		case spec.Kind == shader.KindVec2:
			s.values[spec.Name] = shader.Vec2(s.float(), s.float())
		case spec.Kind == shader.KindBool:
			s.values[spec.Name] = shader.Bool(s.float() < 0.5)
		}
	}
}

// ApplyPreset overwrites only the names present in preset. Names outside
// the schema and values of the wrong kind are skipped and logged; the
// number of applied values is returned.
func (s *Store) ApplyPreset(preset map[string]shader.Value) int {
	applied := 0
	for name, v := range preset {
		if err := s.Set(name, v); err != nil {
			log.Printf("Warning: preset value skipped: %v", err)
			continue
		}
		applied++
	}
	return applied
}
