// Package numeric parses locale-ambiguous numeric strings into canonical
// decimals. Financial statements mix grouping styles freely (1,234.56 /
// 1.234,56 / 1'234.56 / 1 234,56), so the parser decides separator roles
// from position rather than assuming one locale.
package numeric

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Locale selects an output convention for Format.
type Locale int

const (
	// LocaleUS groups with commas and uses a period decimal point.
	LocaleUS Locale = iota
	// LocaleEU groups with periods and uses a comma decimal point.
	LocaleEU
)

// Parse normalizes a raw numeric string into a decimal value.
// Returns false for strings with no digits, multiple decimal points
// after normalization, or trailing non-numeric garbage.
//
// Rules:
//   - whitespace, apostrophes and backticks are treated as group
//     separators and removed when they sit before 3-digit groups
//   - when both '.' and ',' appear, the rightmost one is the decimal
//     point and all occurrences of the other are group separators
//   - a single '.' or ',' followed by exactly three digits is a group
//     separator (1.000 -> 1000); anything else makes it a decimal point
//   - a leading '-' or wrapping parentheses negate the value
//   - a leading currency symbol ($, €, £) is ignored
func Parse(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, false
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimSpace(s[1:])
	}
	for _, sym := range []string{"$", "€", "£"} {
		s = strings.TrimPrefix(s, sym)
	}
	s = strings.TrimSpace(s)

	// Soft separators are always grouping, never decimal points.
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\'', '`', ' ', ' ':
			return -1
		}
		return r
	}, s)

	if s == "" || !hasDigit(s) {
		return decimal.Zero, false
	}

	dot := strings.LastIndexByte(s, '.')
	comma := strings.LastIndexByte(s, ',')

	switch {
	case dot >= 0 && comma >= 0:
		// Rightmost separator wins as decimal point.
		if dot > comma {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		}
	case comma >= 0:
		s = resolveLoneSeparator(s, ',')
	case dot >= 0:
		s = resolveLoneSeparator(s, '.')
	}

	if strings.Count(s, ".") > 1 {
		return decimal.Zero, false
	}
	for _, r := range s {
		if r != '.' && (r < '0' || r > '9') {
			return decimal.Zero, false
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if neg {
		d = d.Neg()
	}
	return d, true
}

// resolveLoneSeparator decides whether the only separator character in s
// is grouping or decimal. A separator is grouping when the digits form
// valid 3-digit groups ("1.000", "1,051,375"); a single separator that
// doesn't is a decimal point ("48,75", "0.125", "1234,567"). Repeated
// separators with invalid grouping are left in place so validation
// rejects the string.
func resolveLoneSeparator(s string, sep byte) string {
	sepStr := string(sep)
	parts := strings.Split(s, sepStr)

	if validGrouping(parts) && (len(parts) > 2 || len(parts[len(parts)-1]) == 3) {
		return strings.Join(parts, "")
	}
	if len(parts) > 2 {
		return s
	}
	if sep == ',' {
		return strings.Replace(s, ",", ".", 1)
	}
	return s
}

// validGrouping checks 3-digit grouping: a 1-3 digit leading group that
// isn't a bare zero, followed by exact 3-digit groups.
func validGrouping(parts []string) bool {
	if len(parts) < 2 {
		return false
	}
	if l := len(parts[0]); l == 0 || l > 3 || parts[0] == "0" {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 {
			return false
		}
	}
	return true
}

func hasDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

// Format renders a decimal in the given locale with grouped thousands,
// preserving the value's exponent. It is the inverse of Parse for
// well-formed inputs of the same locale.
func Format(d decimal.Decimal, loc Locale) string {
	s := d.String()

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	groupSep, decSep := ",", "."
	if loc == LocaleEU {
		groupSep, decSep = ".", ","
	}

	out := strings.Join(groups, groupSep)
	if fracPart != "" {
		out += decSep + fracPart
	}
	if neg {
		out = "-" + out
	}
	return out
}
