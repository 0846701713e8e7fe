// Package fields proposes confidence-scored candidate values for the
// quantity, price and value of an instrument, given one raw context.
// Extraction returns the full ranked candidate list; picking a winner is
// a separate reduction done by the reconcile stage, so the two halves
// stay independently testable.
package fields

import "regexp"

// Kind identifies the target field of a candidate.
type Kind int

const (
	KindQuantity Kind = iota
	KindPrice
	KindValue
)

func (k Kind) String() string {
	switch k {
	case KindQuantity:
		return "quantity"
	case KindPrice:
		return "price"
	case KindValue:
		return "value"
	}
	return "unknown"
}

// Confidence weights, calibrated empirically. Kept in one place so the
// ranking can be tuned without touching extraction control flow.
const (
	ConfLabeled     = 0.95 // explicit field label ("Quantity: 100")
	ConfUnit        = 0.85 // value adjacent to a unit keyword ("100 shares")
	ConfParenUnit   = 0.80 // parenthesized value with unit ("(100 shares)")
	ConfParen       = 0.70 // bare parenthesized value
	ConfProximity   = 0.85 // keyword near value, no strict adjacency
	ConfTableColumn = 0.95 // structured table cell under a matching header
)

// numPat matches a number in any supported locale: grouped thousands
// with comma, period, apostrophe, backtick or space, and either comma or
// period decimals, so "1'000.00" and "1.000,00" hit the same rule.
const numPat = `(?:\d{1,3}(?:[.,'` + "`" + ` ]\d{3})+(?:[.,]\d+)?|\d+(?:[.,]\d+)?)`

// Rule is one extraction pattern with its static confidence weight.
// Group is the submatch index holding the numeric string. SkipInParens
// excludes matches sitting right after an opening parenthesis, so the
// dedicated parenthesis tiers claim those instead.
type Rule struct {
	ID           string
	Re           *regexp.Regexp
	Confidence   float64
	Group        int
	SkipInParens bool
}

// RuleSet is the full pattern table for all three fields, passed into
// the extractor so alternative calibrations can be swapped in.
type RuleSet struct {
	Quantity []Rule
	Price    []Rule
	Value    []Rule

	// ProximityKeywords drive the fallback keyword-proximity search,
	// used only when no tiered rule matched a field.
	ProximityKeywords map[Kind][]string

	// TableHeaders maps a field to the header vocabulary that marks a
	// table column as carrying that field.
	TableHeaders map[Kind][]string
}

func (rs RuleSet) rulesFor(kind Kind) []Rule {
	switch kind {
	case KindQuantity:
		return rs.Quantity
	case KindPrice:
		return rs.Price
	default:
		return rs.Value
	}
}

// currencyPat optionally consumes a currency marker between a label and
// its number, symbol or code ("$125.78", "USD 25,156.00").
const currencyPat = `(?:(?:[$€£]|(?i:EUR|USD|GBP|CHF|JPY|SEK|NOK|DKK|CAD|AUD))\s*)?`

// DefaultRuleSet returns the calibrated pattern table. Rules are ordered
// by tier; all matches of all rules are kept and ranked downstream.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Quantity: []Rule{
			{
				ID:         "qty-label",
				Re:         regexp.MustCompile(`(?i:quantity|qty|holding|shares held|units held|number of shares|number of units|nominal)\s*[:=]?\s*(` + numPat + `)`),
				Confidence: ConfLabeled,
				Group:      1,
			},
			{
				ID:           "qty-unit",
				Re:           regexp.MustCompile(`(` + numPat + `)\s*(?i:shares|units|pcs)`),
				Confidence:   ConfUnit,
				Group:        1,
				SkipInParens: true,
			},
			{
				ID:         "qty-paren-unit",
				Re:         regexp.MustCompile(`\(\s*(` + numPat + `)\s*(?i:shares|units|pcs)\s*\)`),
				Confidence: ConfParenUnit,
				Group:      1,
			},
			{
				ID:         "qty-paren",
				Re:         regexp.MustCompile(`\(\s*(` + numPat + `)\s*\)`),
				Confidence: ConfParen,
				Group:      1,
			},
		},
		Price: []Rule{
			{
				ID:         "price-label",
				Re:         regexp.MustCompile(`(?i:market price|unit price|price per share|price per unit|price|rate|nav)\s*[:=]?\s*` + currencyPat + `(` + numPat + `)`),
				Confidence: ConfLabeled,
				Group:      1,
			},
			{
				ID:         "price-currency",
				Re:         regexp.MustCompile(`[$€£]\s*(` + numPat + `)|(` + numPat + `)\s*(?:EUR|USD|GBP|CHF|JPY|SEK|NOK|DKK|CAD|AUD)`),
				Confidence: ConfUnit,
				Group:      -1, // first non-empty group
			},
		},
		Value: []Rule{
			{
				ID:         "value-label",
				Re:         regexp.MustCompile(`(?i:market value|total value|valuation|value|amount)\s*[:=]?\s*` + currencyPat + `(` + numPat + `)`),
				Confidence: ConfLabeled,
				Group:      1,
			},
			{
				ID:         "value-currency",
				Re:         regexp.MustCompile(`[$€£]\s*(` + numPat + `)|(` + numPat + `)\s*(?:EUR|USD|GBP|CHF|JPY|SEK|NOK|DKK|CAD|AUD)`),
				Confidence: ConfUnit,
				Group:      -1,
			},
		},
		ProximityKeywords: map[Kind][]string{
			KindQuantity: {"quantity", "qty", "shares", "units", "holding"},
			KindPrice:    {"price", "rate", "nav"},
			KindValue:    {"value", "amount", "total"},
		},
		TableHeaders: map[Kind][]string{
			KindQuantity: {"quantity", "qty", "shares", "units", "nominal", "holding"},
			KindPrice:    {"price", "rate", "nav"},
			KindValue:    {"value", "amount"},
		},
	}
}
