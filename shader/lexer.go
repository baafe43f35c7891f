package shader

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokNumber
	tokPunct
	tokComment // single-line // comment, text excludes the slashes
	tokDirective
)

type token struct {
	kind tokenKind
	text string
	line int
}

// lex splits GLSL source into the tokens the declaration scanner cares
// about. Block comments are dropped entirely, so declarations inside them
// are never seen. Preprocessor lines become a single directive token.
func lex(src string) []token {
	var toks []token
	line := 1
	atLineStart := true

	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '\n':
			line++
			atLineStart = true
			i++
			continue
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			i++
			continue
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			start := i + 2
			j := start
			for j < len(src) && src[j] != '\n' {
				j++
			}
			toks = append(toks, token{kind: tokComment, text: src[start:j], line: line})
			i = j
			continue
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			j := i + 2
			for j < len(src) && !(src[j] == '*' && j+1 < len(src) && src[j+1] == '/') {
				if src[j] == '\n' {
					line++
				}
				j++
			}
			i = j + 2
			if i > len(src) {
				i = len(src)
			}
			continue
		case c == '#' && atLineStart:
			start := i
			j := i
			for j < len(src) && src[j] != '\n' {
				// backslash-newline continues the directive
				if src[j] == '\\' && j+1 < len(src) && src[j+1] == '\n' {
					line++
					j += 2
					continue
				}
				j++
			}
			toks = append(toks, token{kind: tokDirective, text: src[start:j], line: line})
			i = j
			continue
		}

		atLineStart = false
		switch {
		case isIdentStart(c):
			j := i + 1
			for j < len(src) && isIdentPart(src[j]) {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: src[i:j], line: line})
			i = j
		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			j := i + 1
			for j < len(src) && (isIdentPart(src[j]) || src[j] == '.') {
				j++
			}
			toks = append(toks, token{kind: tokNumber, text: src[i:j], line: line})
			i = j
		default:
			toks = append(toks, token{kind: tokPunct, text: src[i : i+1], line: line})
			i++
		}
	}
	return toks
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
