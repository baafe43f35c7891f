package params

import (
	"fmt"

	"github.com/richinsley/goshaderlab/shader"
)

// FromAny converts a loosely typed value, as decoded from YAML, TOML or
// JSON, into a Value of the kind spec requires. Numbers may be any Go
// numeric type, vectors any []any or []float64 of the right length.
func FromAny(spec shader.UniformSpec, raw any) (shader.Value, error) {
	if spec.Kind.IsVector() {
		comps, err := toFloats(raw)
		if err != nil {
			return shader.Value{}, fmt.Errorf("%s: %w", spec.Name, err)
		}
		if len(comps) != spec.Kind.Components() {
			return shader.Value{}, fmt.Errorf("%s: expected %d components, got %d", spec.Name, spec.Kind.Components(), len(comps))
		}
		return shader.Vector(comps...)
	}
	switch spec.Kind {
	case shader.KindScalar:
		f, err := toFloat(raw)
		if err != nil {
			return shader.Value{}, fmt.Errorf("%s: %w", spec.Name, err)
		}
		return shader.Scalar(f), nil
	case shader.KindBool:
		switch b := raw.(type) {
		case bool:
			return shader.Bool(b), nil
		default:
			f, err := toFloat(raw)
			if err != nil {
				return shader.Value{}, fmt.Errorf("%s: expected bool, got %T", spec.Name, raw)
			}
			return shader.Bool(f != 0), nil
		}
	case shader.KindTexture:
		return shader.Value{}, fmt.Errorf("%s: texture values cannot be set from plain data", spec.Name)
	}
	return shader.Value{}, fmt.Errorf("%s: unsupported kind %s", spec.Name, spec.Kind)
}

func toFloat(raw any) (float64, error) {
	switch n := raw.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("expected number, got %T", raw)
	}
}

func toFloats(raw any) ([]float64, error) {
	switch v := raw.(type) {
	case []float64:
		return v, nil
	case []float32:
		out := make([]float64, len(v))
		for i, f := range v {
			out[i] = float64(f)
		}
		return out, nil
	case []any:
		out := make([]float64, len(v))
		for i, e := range v {
			f, err := toFloat(e)
			if err != nil {
				return nil, fmt.Errorf("component %d: %w", i, err)
			}
			out[i] = f
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected list of numbers, got %T", raw)
	}
}

// ConvertPreset converts a plain preset map against schema. Entries that
// do not fit are returned as errors and left out of the result.
func ConvertPreset(schema *shader.Schema, raw map[string]any) (map[string]shader.Value, []error) {
	out := make(map[string]shader.Value, len(raw))
	var errs []error
	for name, r := range raw {
		spec, ok := schema.Lookup(name)
		if !ok {
			errs = append(errs, fmt.Errorf("unknown uniform %q", name))
			continue
		}
		v, err := FromAny(spec, r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out[name] = v
	}
	return out, errs
}
