package shader

import (
	"regexp"
	"strings"
)

// ────────────────────────────────── Vertex stage ──────────────────────────────────

// AttribPosition is the clip-space position attribute of the fullscreen quad.
const AttribPosition = "a_position"

const vertexShaderSource = `#version 300 es
in vec2 a_position;
out vec2 vUv;
void main() {
    vUv = a_position * 0.5 + 0.5;
    gl_Position = vec4(a_position, 0.0, 1.0);
}
`

// VertexSource returns the fullscreen-quad vertex stage paired with every
// fragment program.
func VertexSource() string {
	return vertexShaderSource
}

// ────────────────────────────────── Fragment stage ─────────────────────────────────

const fragColorName = "shaderlab_FragColor"

var (
	fragColorRe   = regexp.MustCompile(`\bgl_FragColor\b`)
	texture2DRe   = regexp.MustCompile(`\btexture2D\b`)
	varyingRe     = regexp.MustCompile(`\bvarying\b`)
	vUvUseRe      = regexp.MustCompile(`\bvUv\b`)
	vUvDeclaredRe = regexp.MustCompile(`\b(?:varying|in)\s+(?:(?:lowp|mediump|highp)\s+)?vec2\s+vUv\b`)
)

// SplitExtensions removes #extension and #version directives from src.
// Removed lines are blanked rather than deleted so line numbers in
// compiler diagnostics still match the editor.
func SplitExtensions(src string) (extensions []string, body string) {
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "#extension"):
			extensions = append(extensions, trimmed)
			lines[i] = ""
		case strings.HasPrefix(trimmed, "#version"):
			lines[i] = ""
		}
	}
	return extensions, strings.Join(lines, "\n")
}

// AssembleFragment wraps user fragment source into a complete GLSL ES 3.00
// compilation unit. Extension directives are only legal before any other
// token, so they are hoisted directly below #version, ahead of the
// precision boilerplate. WebGL1-style sources (gl_FragColor, texture2D,
// varying) are mapped onto their ES 3.00 equivalents.
func AssembleFragment(src string) string {
	extensions, body := SplitExtensions(src)

	var b strings.Builder
	b.WriteString("#version 300 es\n")
	for _, ext := range extensions {
		b.WriteString(ext)
		b.WriteByte('\n')
	}
	b.WriteString("precision highp float;\n")
	b.WriteString("precision highp int;\n")

	if texture2DRe.MatchString(body) {
		b.WriteString("#define texture2D texture\n")
	}
	if varyingRe.MatchString(body) {
		b.WriteString("#define varying in\n")
	}
	if vUvUseRe.MatchString(body) && !vUvDeclaredRe.MatchString(body) {
		b.WriteString("in vec2 vUv;\n")
	}
	if fragColorRe.MatchString(body) {
		b.WriteString("out vec4 " + fragColorName + ";\n")
		body = fragColorRe.ReplaceAllString(body, fragColorName)
	}

	b.WriteString("#line 1\n")
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteByte('\n')
	}
	return b.String()
}
