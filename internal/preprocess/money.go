package preprocess

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount converts a monetary string to a float64. It strips currency
// symbols and thousands separators, and treats parenthesized or minus-affixed
// values as negative: "(1,234.56)" parses to -1234.56.
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || s == "--" || s == "—" {
		return 0, false
	}

	// Sign wrappers can nest ("-(100)"), so strip until none remain and
	// let each one flip the sign.
	negative := false
	for {
		next, stripped := stripSign(s)
		if !stripped {
			break
		}
		negative = !negative
		s = next
	}

	var b strings.Builder
	for _, r := range s {
		switch r {
		case '$', '€', '£', '¥', ',', ' ', ' ':
			// currency symbols and separators
		default:
			b.WriteRune(r)
		}
	}
	cleaned := strings.TrimSpace(b.String())
	if cleaned == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

// stripSign removes one negative wrapper: enclosing parentheses, a leading
// minus, or a trailing minus.
func stripSign(s string) (string, bool) {
	switch {
	case len(s) >= 2 && strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")"):
		return strings.TrimSpace(s[1 : len(s)-1]), true
	case strings.HasPrefix(s, "-"):
		return strings.TrimSpace(s[1:]), true
	case strings.HasSuffix(s, "-"):
		return strings.TrimSpace(s[:len(s)-1]), true
	}
	return s, false
}

// LooksNumeric reports whether a cell parses as a monetary or plain number.
func LooksNumeric(s string) bool {
	_, ok := ParseAmount(s)
	return ok
}
