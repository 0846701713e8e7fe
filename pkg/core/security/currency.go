package security

import (
	"regexp"
	"strings"

	"github.com/Rhymond/go-money"
)

var currencyCodeRe = regexp.MustCompile(`\b[A-Z]{3}\b`)

// symbol currencies seen in statements; codes are handled generically.
var symbolCurrencies = []struct {
	symbol string
	code   string
}{
	{"$", money.USD},
	{"€", money.EUR},
	{"£", money.GBP},
	{"¥", money.JPY},
}

// ValidCurrency reports whether code is a known ISO 4217 currency.
func ValidCurrency(code string) bool {
	return money.GetCurrency(code) != nil
}

// DetectCurrency finds the first currency mentioned in a span of text,
// by symbol or by ISO code. Returns "" when none is found.
func DetectCurrency(text string) string {
	firstIdx := len(text) + 1
	first := ""

	for _, sc := range symbolCurrencies {
		if i := strings.Index(text, sc.symbol); i >= 0 && i < firstIdx {
			firstIdx = i
			first = sc.code
		}
	}
	for _, loc := range currencyCodeRe.FindAllStringIndex(text, -1) {
		code := text[loc[0]:loc[1]]
		if ValidCurrency(code) && loc[0] < firstIdx {
			firstIdx = loc[0]
			first = code
		}
	}
	return first
}

// InferCurrency picks the document's default currency: the most frequent
// valid currency mention across the whole text. Used for records whose
// own context carries no currency signal.
func InferCurrency(text string) string {
	counts := make(map[string]int)

	for _, sc := range symbolCurrencies {
		if n := strings.Count(text, sc.symbol); n > 0 {
			counts[sc.code] += n
		}
	}
	for _, code := range currencyCodeRe.FindAllString(text, -1) {
		if ValidCurrency(code) {
			counts[code]++
		}
	}

	best, bestN := "", 0
	for code, n := range counts {
		if n > bestN || (n == bestN && code < best) {
			best, bestN = code, n
		}
	}
	return best
}
