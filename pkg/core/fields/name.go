package fields

import (
	"regexp"
	"strings"

	"secrecon/pkg/core/scan"
	"secrecon/pkg/core/security"
)

// Confidence for descriptive fields; tables beat adjacent-line guesses.
const (
	confNameTable  = 0.90
	confNameText   = 0.80
	confTickerText = 0.90
)

var nameHeaders = []string{"name", "description", "instrument", "product"}
var tickerHeaders = []string{"ticker"}

var tickerRe = regexp.MustCompile(`(?i:ticker|symbol)\s*[:=]?\s*([A-Z][A-Z0-9]{0,5})\b`)

// labelPrefixes are line starters that disqualify a line as a security
// name.
var labelPrefixes = []string{
	"isin", "quantity", "qty", "price", "value", "amount", "total",
	"holding", "lot", "currency", "date", "market",
}

// ExtractName proposes a security name for a context: the matching table
// cell, or a plausible line adjacent to the identifier in text. Returns
// nil when nothing name-like is found.
func ExtractName(ctx scan.RawContext) *security.StrField {
	if ctx.Row != nil {
		if cell, ok := ctx.Row.Cell(nameHeaders...); ok && looksLikeName(cell) {
			return &security.StrField{Value: cell, Confidence: confNameTable}
		}
		return nil
	}

	lines := strings.Split(ctx.Window, "\n")
	for i, line := range lines {
		if !strings.Contains(line, ctx.ISIN) {
			continue
		}
		// Statements usually print the name on the line right after or
		// right before the identifier.
		for _, j := range []int{i + 1, i - 1} {
			if j < 0 || j >= len(lines) {
				continue
			}
			cand := strings.TrimSpace(lines[j])
			if looksLikeName(cand) {
				return &security.StrField{Value: cand, Confidence: confNameText}
			}
		}
	}
	return nil
}

// ExtractTicker proposes a ticker symbol from a table cell or a labeled
// token in text.
func ExtractTicker(ctx scan.RawContext) *security.StrField {
	if ctx.Row != nil {
		if cell, ok := ctx.Row.Cell(tickerHeaders...); ok && cell != "" && len(cell) <= 6 {
			return &security.StrField{Value: strings.ToUpper(cell), Confidence: ConfTableColumn}
		}
		return nil
	}
	m := tickerRe.FindStringSubmatch(ctx.Window)
	if m == nil {
		return nil
	}
	tok := m[1]
	// All-uppercase only: the (?i) label match must not loosen the token.
	if tok != strings.ToUpper(tok) {
		return nil
	}
	return &security.StrField{Value: tok, Confidence: confTickerText}
}

var assetClassKeywords = []struct {
	keyword string
	class   string
}{
	{"bond", "bond"},
	{"note", "bond"},
	{"etf", "etf"},
	{"fund", "fund"},
	{"option", "derivative"},
	{"warrant", "derivative"},
	{"share", "equity"},
	{"stock", "equity"},
	{"equity", "equity"},
}

// ClassifyAssetClass tags a context with a coarse asset class based on
// vocabulary, or "" when nothing matches.
func ClassifyAssetClass(ctx scan.RawContext) string {
	text := ctx.Window
	if ctx.Row != nil {
		text = strings.Join(ctx.Row.Headers, " ") + " " + strings.Join(ctx.Row.Cells, " ")
	}
	lower := strings.ToLower(text)
	for _, kc := range assetClassKeywords {
		if strings.Contains(lower, kc.keyword) {
			return kc.class
		}
	}
	return ""
}

// ContextCurrency finds the currency mentioned in a context.
func ContextCurrency(ctx scan.RawContext) string {
	if ctx.Row != nil {
		return security.DetectCurrency(strings.Join(ctx.Row.Headers, " ") + " " + strings.Join(ctx.Row.Cells, " "))
	}
	return security.DetectCurrency(ctx.Window)
}

// looksLikeName filters out lines that are field labels, codes or
// numeric noise.
func looksLikeName(s string) bool {
	if len(s) < 3 || len(s) > 80 {
		return false
	}
	lower := strings.ToLower(s)
	for _, p := range labelPrefixes {
		if strings.HasPrefix(lower, p) {
			return false
		}
	}
	letters, digits := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			letters++
		}
	}
	return letters >= 3 && digits <= letters/2
}
