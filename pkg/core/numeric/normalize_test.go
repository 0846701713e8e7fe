package numeric

import (
	"testing"

	"github.com/shopspring/decimal"
)

func mustParse(t *testing.T, raw string) decimal.Decimal {
	t.Helper()
	d, ok := Parse(raw)
	if !ok {
		t.Fatalf("Parse(%q) failed, expected success", raw)
	}
	return d
}

func TestParseUSLocale(t *testing.T) {
	cases := map[string]string{
		"1,234.56":     "1234.56",
		"350.45":       "350.45",
		"35,045.00":    "35045",
		"1,051,375.00": "1051375",
		"100":          "100",
		"0.125":        "0.125",
	}
	for raw, want := range cases {
		got := mustParse(t, raw)
		if !got.Equal(decimal.RequireFromString(want)) {
			t.Errorf("Parse(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestParseEULocale(t *testing.T) {
	cases := map[string]string{
		"1.234,56":  "1234.56",
		"1.000,00":  "1000",
		"48,75":     "48.75",
		"48.750,00": "48750",
	}
	for raw, want := range cases {
		got := mustParse(t, raw)
		if !got.Equal(decimal.RequireFromString(want)) {
			t.Errorf("Parse(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestParseSoftSeparators(t *testing.T) {
	// Apostrophe and space grouping (Swiss / French statements).
	cases := map[string]string{
		"1'234.56": "1234.56",
		"1 234,56": "1234.56",
		"1`000":    "1000",
	}
	for raw, want := range cases {
		got := mustParse(t, raw)
		if !got.Equal(decimal.RequireFromString(want)) {
			t.Errorf("Parse(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestParseLoneSeparatorAmbiguity(t *testing.T) {
	// A lone separator before exactly three digits is grouping; anything
	// else is a decimal point.
	cases := map[string]string{
		"1.000":  "1000",
		"1,000":  "1000",
		"12.345": "12345",
		"1.5":    "1.5",
		"12,34":  "12.34",
	}
	for raw, want := range cases {
		got := mustParse(t, raw)
		if !got.Equal(decimal.RequireFromString(want)) {
			t.Errorf("Parse(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestParseNegativesAndCurrency(t *testing.T) {
	cases := map[string]string{
		"(100)":      "-100",
		"-1,234.56":  "-1234.56",
		"$350.45":    "350.45",
		"€1.000,00":  "1000",
		"£12.50":     "12.50",
		"(1,500.00)": "-1500",
	}
	for raw, want := range cases {
		got := mustParse(t, raw)
		if !got.Equal(decimal.RequireFromString(want)) {
			t.Errorf("Parse(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, raw := range []string{
		"",
		"abc",
		"12.34.56,78.90",
		"1,23,456", // broken grouping with repeated separators
		"$",
		"()",
	} {
		if d, ok := Parse(raw); ok {
			t.Errorf("Parse(%q) = %s, expected failure", raw, d)
		}
	}
}

func TestFormatRoundTrip(t *testing.T) {
	for _, s := range []string{"1234.56", "1051375", "-1500", "0.125", "48.75"} {
		d := decimal.RequireFromString(s)
		for _, loc := range []Locale{LocaleUS, LocaleEU} {
			rendered := Format(d, loc)
			back, ok := Parse(rendered)
			if !ok {
				t.Fatalf("Parse(Format(%s, %v) = %q) failed", s, loc, rendered)
			}
			if !back.Equal(d) {
				t.Errorf("round trip %s via %q (loc %v) = %s", s, rendered, loc, back)
			}
		}
	}
}

func TestFormatGrouping(t *testing.T) {
	d := decimal.RequireFromString("1051375.25")
	if got := Format(d, LocaleUS); got != "1,051,375.25" {
		t.Errorf("Format US = %q, want 1,051,375.25", got)
	}
	if got := Format(d, LocaleEU); got != "1.051.375,25" {
		t.Errorf("Format EU = %q, want 1.051.375,25", got)
	}
}
