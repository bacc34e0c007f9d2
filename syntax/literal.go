package syntax

import "strings"

// StringContent returns the raw (still escaped) content between the quotes
// of a string literal token. Text blocks are reported as not plain.
func StringContent(token string) (string, bool) {
	if strings.HasPrefix(token, `"""`) {
		return "", false
	}
	if len(token) < 2 || token[0] != '"' || token[len(token)-1] != '"' {
		return "", false
	}
	return token[1 : len(token)-1], true
}

// Quote wraps raw, already escaped content in double quotes.
func Quote(raw string) string { return `"` + raw + `"` }

// Escape escapes a plain string value for use inside a Java string literal.
func Escape(value string) string {
	var builder strings.Builder
	for _, r := range value {
		switch r {
		case '"':
			builder.WriteString(`\"`)
		case '\\':
			builder.WriteString(`\\`)
		case '\n':
			builder.WriteString(`\n`)
		case '\r':
			builder.WriteString(`\r`)
		case '\t':
			builder.WriteString(`\t`)
		default:
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// IsStringLiteral reports whether id is a plain (non text block) string literal.
func (t *Tree) IsStringLiteral(id NodeID) bool {
	if id == NoNode || t.nodes[id].Kind != KindStringLiteral {
		return false
	}
	_, ok := StringContent(t.Text(id))
	return ok
}

// StringValue returns the raw content of a plain string literal.
func (t *Tree) StringValue(id NodeID) (string, bool) {
	if id == NoNode || t.nodes[id].Kind != KindStringLiteral {
		return "", false
	}
	return StringContent(t.Text(id))
}

// IsEmptyString reports whether id is the literal "".
func (t *Tree) IsEmptyString(id NodeID) bool {
	value, ok := t.StringValue(id)
	return ok && value == ""
}
