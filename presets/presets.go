// Package presets reads and writes named parameter sets as YAML.
//
// A preset file looks like:
//
//	presets:
//	  - name: sunset
//	    shader: shaders/sky.frag
//	    values:
//	      u_speed: 2.5
//	      u_color1: [1.0, 0.5, 0.0]
package presets

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/richinsley/goshaderlab/params"
	"github.com/richinsley/goshaderlab/shader"
)

// Preset is a partial map of uniform values. Values are plain decoded YAML
// (numbers, bools, lists of numbers).
type Preset struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Shader      string         `yaml:"shader,omitempty"`
	Values      map[string]any `yaml:"values"`
}

// File is a collection of presets.
type File struct {
	Presets []Preset `yaml:"presets"`
}

// Parse decodes a preset document. Presets must be named and names must be
// unique.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}
	seen := make(map[string]bool, len(f.Presets))
	for i, p := range f.Presets {
		if p.Name == "" {
			return nil, fmt.Errorf("preset %d has no name", i)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate preset %q", p.Name)
		}
		seen[p.Name] = true
	}
	return &f, nil
}

// Load reads a preset file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets: %w", err)
	}
	return Parse(data)
}

// Lookup finds a preset by name.
func (f *File) Lookup(name string) (*Preset, bool) {
	for i := range f.Presets {
		if f.Presets[i].Name == name {
			return &f.Presets[i], true
		}
	}
	return nil, false
}

// Names lists the presets in file order.
func (f *File) Names() []string {
	names := make([]string, len(f.Presets))
	for i, p := range f.Presets {
		names[i] = p.Name
	}
	return names
}

// Put adds p, replacing a preset with the same name.
func (f *File) Put(p Preset) {
	for i := range f.Presets {
		if f.Presets[i].Name == p.Name {
			f.Presets[i] = p
			return
		}
	}
	f.Presets = append(f.Presets, p)
}

// Save writes the file as YAML.
func (f *File) Save(path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode presets: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write presets: %w", err)
	}
	return nil
}

// Snapshot captures the current non-texture values of a store.
func Snapshot(name string, store *params.Store) Preset {
	p := Preset{Name: name, Values: make(map[string]any)}
	for _, e := range store.Entries() {
		switch e.Value.Kind {
		case shader.KindTexture:
			continue
		case shader.KindBool:
			p.Values[e.Spec.Name] = e.Value.Bool
		case shader.KindScalar:
			p.Values[e.Spec.Name] = e.Value.Num[0]
		default:
			p.Values[e.Spec.Name] = e.Value.Components()
		}
	}
	return p
}
