package rustgen

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/gobuffalo/flect"

	"github.com/roach88/pyrs/internal/ir"
)

// Quote returns s as a Rust string literal. With format set, braces are
// doubled so a format macro prints them verbatim.
func Quote(s string, format bool) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case 0:
			sb.WriteString(`\0`)
		case '{', '}':
			if format {
				sb.WriteRune(r)
			}
			sb.WriteRune(r)
		default:
			if unicode.IsControl(r) {
				fmt.Fprintf(&sb, `\u{%x}`, r)
				continue
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// Reserved words of Rust 2021, strict and reserved.
var rustKeywords = map[string]bool{
	"as": true, "async": true, "await": true, "break": true, "const": true,
	"continue": true, "dyn": true, "else": true, "enum": true, "extern": true,
	"false": true, "fn": true, "for": true, "if": true, "impl": true, "in": true,
	"let": true, "loop": true, "match": true, "mod": true, "move": true,
	"mut": true, "pub": true, "ref": true, "return": true, "static": true,
	"struct": true, "trait": true, "true": true, "type": true, "unsafe": true,
	"use": true, "where": true, "while": true,
	"abstract": true, "become": true, "box": true, "do": true, "final": true,
	"macro": true, "override": true, "priv": true, "try": true, "typeof": true,
	"unsized": true, "virtual": true, "yield": true,
}

// Path keywords cannot be written as raw identifiers.
var pathKeywords = map[string]bool{
	"self": true, "Self": true, "super": true, "crate": true,
}

// Ident spells a source variable name as a Rust local: camelCase and
// PascalCase become snake_case, keywords become raw identifiers.
func Ident(name ir.Identifier) string {
	s := string(name)
	if hasUpper(s) {
		trimmed := strings.TrimLeft(s, "_")
		s = s[:len(s)-len(trimmed)] + flect.Underscore(trimmed)
	}
	switch {
	case pathKeywords[s]:
		return s + "_"
	case rustKeywords[s]:
		return "r#" + s
	}
	return s
}

func hasUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}
