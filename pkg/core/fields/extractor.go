package fields

import (
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"secrecon/pkg/core/numeric"
	"secrecon/pkg/core/scan"
)

// Candidate is one proposed value for a field: the raw matched
// substring, its normalized decimal, the static confidence inherited
// from the producing pattern, and a provenance tag.
type Candidate struct {
	Kind       Kind
	Raw        string
	Value      decimal.Decimal
	Confidence float64
	Source     string // rule id or "table-column"
}

// Reasonableness bounds: a lexically valid but physically absurd number
// is never emitted, regardless of pattern confidence.
var (
	maxQuantity = decimal.NewFromInt(10_000_000)
	maxPrice    = decimal.NewFromInt(1_000_000)
	maxValue    = decimal.NewFromInt(10_000_000_000)
)

// Extractor proposes field candidates from raw contexts using a static
// rule table.
type Extractor struct {
	rules RuleSet
}

// NewExtractor builds an extractor around the given pattern table; use
// DefaultRuleSet for the calibrated defaults.
func NewExtractor(rules RuleSet) *Extractor {
	return &Extractor{rules: rules}
}

// Extract returns the ranked candidate list for one field of one
// context. All rule matches are kept; ranking is by confidence
// (descending, stable), and selection happens downstream.
//
// Table-backed contexts with a column matching the field's header
// vocabulary emit that single cell as a candidate and skip the
// free-text rules: structured data is inherently more trustworthy
// than pattern matching.
func (e *Extractor) Extract(ctx scan.RawContext, kind Kind) []Candidate {
	if ctx.Row != nil {
		return e.extractFromRow(ctx.Row, kind)
	}

	var out []Candidate
	for _, rule := range e.rules.rulesFor(kind) {
		for _, m := range rule.Re.FindAllStringSubmatchIndex(ctx.Window, -1) {
			start, end := submatchSpan(m, rule.Group)
			if start < 0 || !cleanBoundary(ctx.Window, start, end) {
				continue
			}
			if rule.SkipInParens && insideParens(ctx.Window, start) {
				continue
			}
			raw := ctx.Window[start:end]
			if c, ok := makeCandidate(kind, raw, rule.Confidence, rule.ID); ok {
				out = append(out, c)
			}
		}
	}

	// Keyword proximity is a last resort: a value physically near a
	// field keyword, used only when no tiered rule matched.
	if len(out) == 0 {
		out = e.proximitySearch(ctx.Window, kind)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	return out
}

func (e *Extractor) extractFromRow(row *scan.TableRow, kind Kind) []Candidate {
	cell, ok := row.Cell(e.rules.TableHeaders[kind]...)
	if !ok {
		return nil
	}
	c, ok := makeCandidate(kind, cell, ConfTableColumn, "table-column")
	if !ok {
		return nil
	}
	return []Candidate{c}
}

var proximityNumRe = regexp.MustCompile(numPat)

// proximityRadius bounds how far (in bytes) a number may sit from a
// field keyword to count as "near".
const proximityRadius = 40

func (e *Extractor) proximitySearch(window string, kind Kind) []Candidate {
	lower := strings.ToLower(window)
	numbers := proximityNumRe.FindAllStringIndex(window, -1)

	var out []Candidate
	seen := make(map[int]bool)
	for _, kw := range e.rules.ProximityKeywords[kind] {
		for at := 0; ; {
			i := strings.Index(lower[at:], kw)
			if i < 0 {
				break
			}
			kwStart := at + i
			kwEnd := kwStart + len(kw)
			at = kwEnd

			for _, loc := range numbers {
				if seen[loc[0]] {
					continue
				}
				if loc[0] >= kwEnd+proximityRadius || loc[1] <= kwStart-proximityRadius {
					continue
				}
				if !cleanBoundary(window, loc[0], loc[1]) {
					continue
				}
				raw := window[loc[0]:loc[1]]
				if c, ok := makeCandidate(kind, raw, ConfProximity, kind.String()+"-proximity"); ok {
					seen[loc[0]] = true
					out = append(out, c)
				}
			}
		}
	}
	return out
}

func makeCandidate(kind Kind, raw string, conf float64, source string) (Candidate, bool) {
	d, ok := numeric.Parse(raw)
	if !ok || !reasonable(kind, d) {
		return Candidate{}, false
	}
	return Candidate{
		Kind:       kind,
		Raw:        raw,
		Value:      d,
		Confidence: conf,
		Source:     source,
	}, true
}

// reasonable applies the domain sanity range for each field.
func reasonable(kind Kind, d decimal.Decimal) bool {
	if d.Sign() <= 0 {
		return false
	}
	switch kind {
	case KindQuantity:
		return d.LessThanOrEqual(maxQuantity)
	case KindPrice:
		return d.LessThanOrEqual(maxPrice)
	default:
		return d.LessThanOrEqual(maxValue)
	}
}

// submatchSpan resolves the rule's capture group; group -1 selects the
// first non-empty group (for alternation rules).
func submatchSpan(m []int, group int) (int, int) {
	if group > 0 && 2*group+1 < len(m) {
		return m[2*group], m[2*group+1]
	}
	if group == -1 {
		for g := 1; 2*g+1 < len(m); g++ {
			if m[2*g] >= 0 {
				return m[2*g], m[2*g+1]
			}
		}
	}
	return -1, -1
}

// cleanBoundary rejects matches embedded in a longer alphanumeric run,
// such as the digit tail of an identifier code.
func cleanBoundary(s string, start, end int) bool {
	if start > 0 {
		b := s[start-1]
		if isWordByte(b) || b == '.' || b == ',' {
			return false
		}
	}
	if end < len(s) && isWordByte(s[end]) {
		return false
	}
	return true
}

// insideParens reports whether the nearest non-space byte before start
// is an opening parenthesis.
func insideParens(s string, start int) bool {
	for i := start - 1; i >= 0; i-- {
		if s[i] == ' ' {
			continue
		}
		return s[i] == '('
	}
	return false
}

func isWordByte(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
