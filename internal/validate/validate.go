package validate

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	reID  = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reTag = regexp.MustCompile(`^[\p{L}0-9 _'./&-]{1,30}$`)
)

// Q cleans a free-text search: control characters and angle brackets are
// dropped and the result is capped at 60 characters. ok is false only when
// nothing searchable is left.
func Q(s string) (string, bool) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == '<' || r == '>' {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > 60 {
		s = strings.TrimSpace(string(r[:60]))
	}
	return s, s != ""
}

// Tag validates a single tag value.
func Tag(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reTag.MatchString(s)
}

// Page parses a 1-based page number; junk becomes 1.
func Page(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	if n > 10000 {
		return 10000
	} // clamp to avoid abuse
	return n
}

// ID validates a simple resource identifier (watch/pref ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// IDs drops invalid and repeated ids, keeping order.
func IDs(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if id, ok := ID(s); ok && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// Password enforces a simple length window plus character classes for the
// operator password.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 72 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}
