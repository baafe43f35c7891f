package shader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScalarHints(t *testing.T) {
	schema := Parse(`uniform float u_x; // default: 2, min: 0, max: 5, step: 0.1`)
	require.Equal(t, 1, schema.Len())

	spec, ok := schema.Lookup("u_x")
	require.True(t, ok)
	assert.Equal(t, KindScalar, spec.Kind)
	assert.Equal(t, Scalar(2), spec.Default)
	assert.Equal(t, 0.0, spec.Min)
	assert.Equal(t, 5.0, spec.Max)
	assert.Equal(t, 0.1, spec.Step)
	assert.False(t, spec.IsColor)
}

func TestParseSingleSpeedUniform(t *testing.T) {
	schema := Parse(`
precision highp float;
uniform float u_speed; // default: 1.0, min: 0.0, max: 5.0, step: 0.1
void main() { gl_FragColor = vec4(u_speed); }
`)
	assert.Equal(t, []string{"u_speed"}, schema.Names())
	spec, _ := schema.Lookup("u_speed")
	assert.Equal(t, Scalar(1), spec.Default)
	assert.Equal(t, 0.0, spec.Min)
	assert.Equal(t, 5.0, spec.Max)
	assert.Equal(t, 0.1, spec.Step)
	assert.False(t, spec.IsColor)
}

func TestParseKindDefaults(t *testing.T) {
	schema := Parse(`
uniform float u_a;
uniform int u_count;
uniform vec2 u_offset;
uniform vec3 u_dir;
uniform vec4 u_tint;
uniform bool u_flag;
uniform sampler2D u_image;
`)
	require.Equal(t, []string{"u_a", "u_count", "u_offset", "u_dir", "u_tint", "u_flag", "u_image"}, schema.Names())

	tests := []struct {
		name     string
		kind     Kind
		def      Value
		min, max float64
		step     float64
	}{
		{"u_a", KindScalar, Scalar(1), 0, 10, 0.01},
		{"u_count", KindScalar, Scalar(1), 0, 10, 1},
		{"u_offset", KindVec2, Vec2(0.5, 0.5), 0, 1, 0.01},
		{"u_dir", KindVec3, Vec3(0.5, 0.5, 0.5), 0, 1, 0.01},
		{"u_tint", KindVec4, Vec4(0.5, 0.5, 0.5, 1), 0, 1, 0.01},
		{"u_flag", KindBool, Bool(false), 0, 1, 1},
		{"u_image", KindTexture, Texture(nil), 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, ok := schema.Lookup(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.kind, spec.Kind)
			assert.True(t, tt.def.Equal(spec.Default), "default %v", spec.Default)
			assert.Equal(t, tt.min, spec.Min)
			assert.Equal(t, tt.max, spec.Max)
			assert.Equal(t, tt.step, spec.Step)
		})
	}

	count, _ := schema.Lookup("u_count")
	assert.True(t, count.Integer)
}

func TestParseExcludesBuiltins(t *testing.T) {
	schema := Parse(`
uniform float u_time;
uniform vec2 u_resolution;
uniform vec2 u_mouse;
uniform float u_mousePressed;
uniform float u_timeScale;
uniform float u_speed;
`)
	assert.Equal(t, []string{"u_speed"}, schema.Names())
}

func TestParseColorDetection(t *testing.T) {
	schema := Parse(`
uniform vec3 u_color1; // default: [1.0, 0.0, 0.0]
uniform vec3 u_Colour;
uniform vec4 u_tintRGB;
uniform vec3 u_glow; // Color of the glow
uniform vec2 u_offset; // rgb split
uniform vec3 u_position;
uniform float u_colorMix;
uniform bool u_useRgb;
uniform float u_gain; // any
`)
	tests := []struct {
		name  string
		color bool
	}{
		{"u_color1", true},
		{"u_Colour", true},
		{"u_tintRGB", true},
		{"u_glow", true},
		{"u_offset", true},
		{"u_position", false},
		{"u_colorMix", true},
		{"u_useRgb", true},
		{"u_gain", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, ok := schema.Lookup(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.color, spec.IsColor)
		})
	}
}

func TestParseVectorDefaultArity(t *testing.T) {
	schema := Parse(`
uniform vec3 u_short; // default: [0.1, 0.2]
uniform vec2 u_long; // default: [0.1, 0.2, 0.3, 0.4]
uniform vec4 u_neg; // default: -1, 2.5, -.5, 1e1
`)
	short, _ := schema.Lookup("u_short")
	assert.Equal(t, Vec3(0.1, 0.2, 0.5), short.Default)

	long, _ := schema.Lookup("u_long")
	assert.Equal(t, Vec2(0.1, 0.2), long.Default)

	neg, _ := schema.Lookup("u_neg")
	assert.Equal(t, Vec4(-1, 2.5, -0.5, 10), neg.Default)
}

func TestParseBoolDefaults(t *testing.T) {
	schema := Parse(`
uniform bool u_a; // default: true
uniform bool u_b; // default: 1
uniform bool u_c; // default: false
uniform bool u_d; // default: maybe
`)
	a, _ := schema.Lookup("u_a")
	b, _ := schema.Lookup("u_b")
	c, _ := schema.Lookup("u_c")
	d, _ := schema.Lookup("u_d")
	assert.True(t, a.Default.Bool)
	assert.True(t, b.Default.Bool)
	assert.False(t, c.Default.Bool)
	assert.False(t, d.Default.Bool)
}

func TestParseHintsIndependent(t *testing.T) {
	schema := Parse(`uniform float u_x; // max: 3 default: oops MIN 1`)
	spec, _ := schema.Lookup("u_x")
	assert.Equal(t, Scalar(1), spec.Default)
	assert.Equal(t, 1.0, spec.Min)
	assert.Equal(t, 3.0, spec.Max)
	assert.Equal(t, 0.01, spec.Step)
}

func TestParseMalformedDeclarationsDropped(t *testing.T) {
	schema := Parse(`
uniform float u_missingSemi
uniform float u_arr[4];
uniform float u_a, u_b;
uniform mat4 u_matrix;
uniform ;
uniform highp float u_ok; // default: 3
`)
	assert.Equal(t, []string{"u_ok"}, schema.Names())
	ok, _ := schema.Lookup("u_ok")
	assert.Equal(t, Scalar(3), ok.Default)
}

func TestParseCommentsAndDirectives(t *testing.T) {
	schema := Parse(`
#extension GL_OES_standard_derivatives : enable
#define uniform_helper 1
/* uniform float u_hidden; // default: 4
   uniform float u_alsoHidden; */
// uniform float u_commented;
uniform float u_visible; /* default: 9 */
uniform float u_next;
// default: 7
`)
	assert.Equal(t, []string{"u_visible", "u_next"}, schema.Names())
	visible, _ := schema.Lookup("u_visible")
	assert.Equal(t, Scalar(1), visible.Default, "block comments do not carry hints")
	next, _ := schema.Lookup("u_next")
	assert.Equal(t, Scalar(1), next.Default, "a comment on the following line is not a hint")
}

func TestParseMultipleDeclarationsPerLine(t *testing.T) {
	schema := Parse(`uniform float u_a; uniform float u_b; // default: 4`)
	assert.Equal(t, []string{"u_a", "u_b"}, schema.Names())
	a, _ := schema.Lookup("u_a")
	b, _ := schema.Lookup("u_b")
	assert.Equal(t, Scalar(1), a.Default)
	assert.Equal(t, Scalar(4), b.Default)
}

func TestParseTextureCompanionExcluded(t *testing.T) {
	schema := Parse(`
uniform sampler2D u_image;
uniform vec2 u_imageResolution;
uniform vec2 u_otherResolution;
`)
	assert.Equal(t, []string{"u_image", "u_otherResolution"}, schema.Names())
}

func TestParseDuplicateKeepsFirst(t *testing.T) {
	schema := Parse(`
uniform float u_a; // default: 2
uniform float u_a; // default: 3
`)
	require.Equal(t, 1, schema.Len())
	a, _ := schema.Lookup("u_a")
	assert.Equal(t, Scalar(2), a.Default)
}

func TestParseEmptyAndNilSchema(t *testing.T) {
	assert.Equal(t, 0, Parse("").Len())
	var s *Schema
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.Names())
	_, ok := s.Lookup("u_a")
	assert.False(t, ok)
}
