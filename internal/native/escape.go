package native

import (
	"fmt"
	"strings"
)

// EscapeCLiteral escapes s for use inside a double-quoted C string literal.
// Quotes, backslashes, carriage returns and line feeds become \uNNNN.
//
// C11 forbids universal character names below U+00A0 other than $, @ and `,
// so gcc and clang reject every escape this produces. The harness only
// compiles after the embedder rewrites them; use EscapeCStandard for a
// source that builds as emitted.
func EscapeCLiteral(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/8)
	for _, r := range s {
		switch r {
		case '"', '\\', '\r', '\n':
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EscapeCStandard escapes s with the simple C escape sequences \", \\, \r
// and \n.
func EscapeCStandard(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/8)
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\r':
			b.WriteString(`\r`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// identifier replaces every character that is not valid in a C identifier
// with an underscore.
func identifier(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
