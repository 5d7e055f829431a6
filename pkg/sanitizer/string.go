package sanitizer

import (
	"strings"
	"unicode"
)

func Trim(s string) string {
	return strings.TrimSpace(s)
}

// TrimAndNormalize trims the string and collapses internal whitespace runs
// into single spaces.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// NormalizeEmail trims surrounding whitespace. The address itself is left
// untouched; case-sensitivity of the local part is the remote service's call.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

// NormalizeToken strips whitespace a user may pick up when copying a bearer
// token out of browser dev tools.
func NormalizeToken(token string) string {
	return strings.TrimSpace(token)
}
