package shader

import (
	"regexp"
	"strconv"
	"strings"
)

// glslTypes maps the declaration types the editor can expose to their kind.
var glslTypes = map[string]Kind{
	"float":     KindScalar,
	"int":       KindScalar,
	"bool":      KindBool,
	"vec2":      KindVec2,
	"vec3":      KindVec3,
	"vec4":      KindVec4,
	"sampler2D": KindTexture,
}

var precisionQualifiers = map[string]bool{
	"lowp":    true,
	"mediump": true,
	"highp":   true,
}

var colorMarkers = []string{"color", "colour", "rgb"}

// declaration is one well-formed `uniform <type> <name>;` statement.
type declaration struct {
	glslType string
	name     string
	hint     string
	hasHint  bool
}

// Parse extracts the tunable uniform schema from shader source.
//
// The grammar is `uniform [precision] <type> <name> ;` optionally followed,
// on the same line, by a // comment carrying hints. Anything else that
// starts with `uniform` (arrays, multiple declarators, unsupported types,
// missing semicolon) is dropped silently. When several declarations share a
// line only the last one, the one the comment directly follows, gets the
// hint. Built-in uniforms and <texture>Resolution companions of declared
// sampler2D uniforms are excluded.
func Parse(src string) *Schema {
	decls := scanDeclarations(lex(src))

	textures := make(map[string]bool)
	for _, d := range decls {
		if glslTypes[d.glslType] == KindTexture {
			textures[d.name] = true
		}
	}

	schema := NewSchema()
	for _, d := range decls {
		if IsBuiltin(d.name) {
			continue
		}
		if base, ok := strings.CutSuffix(d.name, ResolutionSuffix); ok && textures[base] && d.glslType == "vec2" {
			continue
		}
		schema.add(buildSpec(d))
	}
	return schema
}

func scanDeclarations(toks []token) []declaration {
	var decls []declaration
	for i := 0; i < len(toks); i++ {
		if toks[i].kind != tokIdent || toks[i].text != "uniform" {
			continue
		}
		j := i + 1
		if j < len(toks) && toks[j].kind == tokIdent && precisionQualifiers[toks[j].text] {
			j++
		}
		if j+2 >= len(toks) {
			break
		}
		typ, name, semi := toks[j], toks[j+1], toks[j+2]
		if typ.kind != tokIdent || name.kind != tokIdent || semi.kind != tokPunct || semi.text != ";" {
			continue
		}
		if _, ok := glslTypes[typ.text]; !ok {
			continue
		}
		d := declaration{glslType: typ.text, name: name.text}
		if k := j + 3; k < len(toks) && toks[k].kind == tokComment && toks[k].line == semi.line {
			d.hint = toks[k].text
			d.hasHint = true
			i = k
		} else {
			i = j + 2
		}
		decls = append(decls, d)
	}
	return decls
}

func buildSpec(d declaration) UniformSpec {
	kind := glslTypes[d.glslType]
	spec := UniformSpec{
		Name:     d.name,
		Kind:     kind,
		GLSLType: d.glslType,
		Integer:  d.glslType == "int",
	}
	applyKindDefaults(&spec)

	h := parseHints(d.hint)
	if h.min != nil {
		spec.Min = *h.min
	}
	if h.max != nil {
		spec.Max = *h.max
	}
	if h.step != nil {
		spec.Step = *h.step
	}
	if h.hasDefault {
		spec.Default = defaultFromHint(kind, h.defaultText, spec.Default)
	}
	spec.IsColor = hasColorMarker(d.name) || hasColorMarker(d.hint)
	return spec
}

func applyKindDefaults(spec *UniformSpec) {
	switch spec.Kind {
	case KindScalar:
		spec.Default = Scalar(1)
		spec.Min, spec.Max, spec.Step = 0, 10, 0.01
		if spec.Integer {
			spec.Step = 1
		}
	case KindVec2:
		spec.Default = Vec2(0.5, 0.5)
		spec.Min, spec.Max, spec.Step = 0, 1, 0.01
	case KindVec3:
		spec.Default = Vec3(0.5, 0.5, 0.5)
		spec.Min, spec.Max, spec.Step = 0, 1, 0.01
	case KindVec4:
		spec.Default = Vec4(0.5, 0.5, 0.5, 1)
		spec.Min, spec.Max, spec.Step = 0, 1, 0.01
	case KindBool:
		spec.Default = Bool(false)
		spec.Min, spec.Max, spec.Step = 0, 1, 1
	case KindTexture:
		spec.Default = Texture(nil)
	}
}

// hints holds the raw result of scanning one trailing comment. Each key is
// parsed on its own; a bad value for one key does not affect the others.
type hints struct {
	hasDefault  bool
	defaultText string
	min         *float64
	max         *float64
	step        *float64
}

var (
	hintKeyRe = regexp.MustCompile(`(?i)\b(default|min|max|step)[:\s]+`)
	numberRe  = regexp.MustCompile(`[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`)
)

func parseHints(comment string) hints {
	var h hints
	if comment == "" {
		return h
	}
	locs := hintKeyRe.FindAllStringSubmatchIndex(comment, -1)
	for n, loc := range locs {
		key := strings.ToLower(comment[loc[2]:loc[3]])
		end := len(comment)
		if n+1 < len(locs) {
			end = locs[n+1][0]
		}
		text := strings.TrimSpace(comment[loc[1]:end])

		switch key {
		case "default":
			if !h.hasDefault {
				h.hasDefault = true
				h.defaultText = text
			}
		case "min":
			if h.min == nil {
				h.min = firstNumber(text)
			}
		case "max":
			if h.max == nil {
				h.max = firstNumber(text)
			}
		case "step":
			if h.step == nil {
				h.step = firstNumber(text)
			}
		}
	}
	return h
}

func firstNumber(text string) *float64 {
	m := numberRe.FindString(text)
	if m == "" {
		return nil
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	return &f
}

func allNumbers(text string) []float64 {
	var out []float64
	for _, m := range numberRe.FindAllString(text, -1) {
		if f, err := strconv.ParseFloat(m, 64); err == nil {
			out = append(out, f)
		}
	}
	return out
}

// defaultFromHint interprets a default: hint for kind. Vectors take the
// numeric tokens in order; missing components keep the kind default and
// extra ones are ignored.
func defaultFromHint(kind Kind, text string, fallback Value) Value {
	switch kind {
	case KindScalar:
		if f := firstNumber(text); f != nil {
			return Scalar(*f)
		}
	case KindBool:
		lower := strings.ToLower(text)
		switch {
		case strings.HasPrefix(lower, "true"):
			return Bool(true)
		case strings.HasPrefix(lower, "false"):
			return Bool(false)
		}
		if f := firstNumber(text); f != nil {
			return Bool(*f != 0)
		}
	case KindVec2, KindVec3, KindVec4:
		nums := allNumbers(text)
		if len(nums) == 0 {
			return fallback
		}
		v := fallback
		n := kind.Components()
		for i := 0; i < n && i < len(nums); i++ {
			v.Num[i] = nums[i]
		}
		return v
	}
	return fallback
}

func hasColorMarker(s string) bool {
	lower := strings.ToLower(s)
	for _, m := range colorMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
