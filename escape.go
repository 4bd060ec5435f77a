package splice

import "strings"

// chainReserved lists the characters that carry meaning inside a rendered
// filter expression and must be backslash-escaped in parameter values: the
// escape character itself, quoting, key/value and parameter separators, and
// the chain and label markers.
const chainReserved = `\'=:,;[]`

// escapeValue renders a parameter value for embedding in a filter
// expression. Values containing characters the grammar cannot carry at all
// (NUL, newline, carriage return) produce an EscapeError.
func escapeValue(v any) (string, error) {
	text := formatValue(v)
	for _, r := range text {
		switch r {
		case 0, '\n', '\r':
			return "", &EscapeError{Value: text}
		}
	}
	if !strings.ContainsAny(text, chainReserved) {
		return text, nil
	}
	var b strings.Builder
	b.Grow(len(text) + 8)
	for _, r := range text {
		if r < 0x80 && strings.ContainsRune(chainReserved, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String(), nil
}

// EscapeText prepares literal text for text-expanding filters such as
// drawtext, whose expansion grammar reserves backslash, quote, and percent.
// The result still passes through expression escaping when rendered, so
// callers supply plain text and nothing else.
func EscapeText(text string) string {
	if !strings.ContainsAny(text, `\'%`) {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + 4)
	for _, r := range text {
		switch r {
		case '\\', '\'', '%':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
