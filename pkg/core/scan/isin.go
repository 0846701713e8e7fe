// Package scan locates financial instrument identifiers in free text and
// structured tables, and carves out the context each downstream stage
// needs: a window of surrounding text, or the full table row.
package scan

import "regexp"

// isinRe matches ISIN-shaped tokens: two letters, nine alphanumerics,
// one check digit. Shape alone is not enough; every candidate must also
// pass the checksum gate before it is treated as an identifier.
var isinRe = regexp.MustCompile(`[A-Z]{2}[A-Z0-9]{9}[0-9]`)

// ValidISIN verifies the ISIN check digit using the modulus-10
// double-add-double scheme: letters expand to two digits (A=10 .. Z=35),
// then every second digit from the right is doubled and the digit sum
// must be divisible by 10. Candidates failing this are discarded, which
// removes nearly all alphanumeric false positives.
func ValidISIN(code string) bool {
	if len(code) != 12 {
		return false
	}

	digits := make([]int, 0, 24)
	for i, r := range code {
		switch {
		case r >= '0' && r <= '9':
			if i < 2 {
				return false // country prefix must be alphabetic
			}
			digits = append(digits, int(r-'0'))
		case r >= 'A' && r <= 'Z':
			if i == 11 {
				return false // check digit must be numeric
			}
			v := int(r-'A') + 10
			digits = append(digits, v/10, v%10)
		default:
			return false
		}
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := digits[i]
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// findISINs returns all checksum-valid ISINs in text with their offsets,
// skipping matches embedded in longer alphanumeric runs.
func findISINs(text string) []isinMatch {
	var out []isinMatch
	for _, loc := range isinRe.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		if start > 0 && isAlnum(text[start-1]) {
			continue
		}
		if end < len(text) && isAlnum(text[end]) {
			continue
		}
		code := text[start:end]
		if ValidISIN(code) {
			out = append(out, isinMatch{code: code, start: start, end: end})
		}
	}
	return out
}

type isinMatch struct {
	code  string
	start int
	end   int
}

func isAlnum(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
