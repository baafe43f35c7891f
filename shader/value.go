package shader

import (
	"fmt"

	"github.com/richinsley/goshaderlab/inputs"
)

// Value is the current setting of one uniform. Kind is the discriminant:
// scalars and vectors use Num[:Kind.Components()], bools use Bool and
// textures use Texture (nil means no image is bound).
type Value struct {
	Kind    Kind
	Num     [4]float64
	Bool    bool
	Texture *inputs.Image
}

// Scalar returns a scalar value.
func Scalar(v float64) Value {
	return Value{Kind: KindScalar, Num: [4]float64{v}}
}

// Vec2 returns a two component vector value.
func Vec2(x, y float64) Value {
	return Value{Kind: KindVec2, Num: [4]float64{x, y}}
}

// Vec3 returns a three component vector value.
func Vec3(x, y, z float64) Value {
	return Value{Kind: KindVec3, Num: [4]float64{x, y, z}}
}

// Vec4 returns a four component vector value.
func Vec4(x, y, z, w float64) Value {
	return Value{Kind: KindVec4, Num: [4]float64{x, y, z, w}}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{Kind: KindBool, Bool: b}
}

// Texture returns a texture value bound to img, which may be nil.
func Texture(img *inputs.Image) Value {
	return Value{Kind: KindTexture, Texture: img}
}

// Vector builds a vector value from exactly n = len(comps) components.
func Vector(comps ...float64) (Value, error) {
	var k Kind
	switch len(comps) {
	case 2:
		k = KindVec2
	case 3:
		k = KindVec3
	case 4:
		k = KindVec4
	default:
		return Value{}, fmt.Errorf("vector must have 2, 3 or 4 components, got %d", len(comps))
	}
	v := Value{Kind: k}
	copy(v.Num[:], comps)
	return v, nil
}

// Components returns the numeric components of a scalar or vector value.
func (v Value) Components() []float64 {
	n := v.Kind.Components()
	if v.Kind == KindBool {
		n = 0
	}
	out := make([]float64, n)
	copy(out, v.Num[:n])
	return out
}

// Float returns the scalar component, or 1/0 for a bool.
func (v Value) Float() float64 {
	if v.Kind == KindBool {
		if v.Bool {
			return 1
		}
		return 0
	}
	return v.Num[0]
}

// Equal reports whether two values are identical. Texture values compare
// by image identity.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindBool:
		return v.Bool == o.Bool
	case KindTexture:
		return imageID(v.Texture) == imageID(o.Texture)
	default:
		return v.Num == o.Num
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindScalar:
		return fmt.Sprintf("%g", v.Num[0])
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindTexture:
		if v.Texture == nil {
			return "texture(none)"
		}
		return fmt.Sprintf("texture(%s %dx%d)", v.Texture.Name, v.Texture.Width(), v.Texture.Height())
	default:
		return fmt.Sprintf("%v", v.Components())
	}
}

func imageID(img *inputs.Image) uint64 {
	if img == nil {
		return 0
	}
	return img.ID
}
