package layout

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

func isControl(r rune) bool {
	switch {
	case r <= 0x08, r == 0x0B, r == 0x0C:
		return true
	case r >= 0x0E && r <= 0x1F, r == 0x7F:
		return true
	}
	return false
}

// control strips C0 controls except tab, newline and carriage return, plus DEL
var control = runes.Remove(runes.Predicate(isControl))

// Sanitize removes control characters from s
// Sanitize(Sanitize(s)) == Sanitize(s)
func Sanitize(s string) string {
	out, _, err := transform.String(control, s)
	if err != nil {
		return strings.Map(func(r rune) rune {
			if isControl(r) {
				return -1
			}
			return r
		}, s)
	}
	return out
}
