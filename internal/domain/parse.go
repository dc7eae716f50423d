package domain

import "strings"

// Delimiter separates fields in the source files.
const Delimiter = ','

// ParseLine splits one line of delimited text into trimmed fields.
//
// A double quote toggles a quoted region; inside it the delimiter is literal
// content. Quote characters are consumed, never copied into a field. An
// unterminated quote simply leaves the rest of the line quoted.
//
// The last field is emitted only when something was accumulated after the
// final delimiter, so "a,b," yields two fields, not three.
func ParseLine(line string, delim rune) []string {
	var (
		fields  []string
		current strings.Builder
		quoted  bool
	)

	for _, ch := range line {
		switch {
		case ch == '"':
			quoted = !quoted
		case ch == delim && !quoted:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}

	if current.Len() > 0 {
		fields = append(fields, strings.TrimSpace(current.String()))
	}
	return fields
}
