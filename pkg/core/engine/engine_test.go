package engine

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"secrecon/pkg/core/document"
	"secrecon/pkg/core/security"
)

func extract(t *testing.T, doc document.Document) ([]security.Record, security.Report) {
	t.Helper()
	return New(DefaultConfig()).Extract(doc)
}

func wantDecimal(t *testing.T, got *decimal.Decimal, want string, field string) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s is nil, want %s", field, want)
	}
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s = %s, want %s", field, got, want)
	}
}

func TestExtractLabeledStatement(t *testing.T) {
	doc := document.FromText(`Portfolio Statement

Microsoft Corporation
ISIN: US5949181045
Quantity: 100
Price: $350.45
Market Value: $35,045.00
`)
	records, report := extract(t, doc)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.ISIN != "US5949181045" {
		t.Errorf("isin = %s", rec.ISIN)
	}
	if rec.Name != "Microsoft Corporation" {
		t.Errorf("name = %q", rec.Name)
	}
	wantDecimal(t, rec.Quantity, "100", "quantity")
	wantDecimal(t, rec.Price, "350.45", "price")
	wantDecimal(t, rec.Value, "35045", "value")
	if rec.Currency != "USD" {
		t.Errorf("currency = %q, want USD", rec.Currency)
	}
	if rec.Provenance != security.SourceText {
		t.Errorf("provenance = %s", rec.Provenance)
	}
	if report.Complete != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestExtractDerivesMissingQuantity(t *testing.T) {
	doc := document.FromText(
		"Position in ISIN US0378331005. Price per share: $125.78. Amount: USD 25,156.00.")

	records, _ := extract(t, doc)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	wantDecimal(t, records[0].Quantity, "200", "derived quantity")
	wantDecimal(t, records[0].Price, "125.78", "price")
	wantDecimal(t, records[0].Value, "25156", "value")
}

func TestExtractLotSizeRepair(t *testing.T) {
	doc := document.FromText(`Bond position
ISIN: US0231351067
Holding: 25 units
Market Price: $420.55
Total Value: $1,051,375.00
`)
	records, _ := extract(t, doc)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	wantDecimal(t, rec.Quantity, "2500", "repaired quantity")
	if rec.LotSizeAdjustment != 100 {
		t.Errorf("lot size adjustment = %d, want 100", rec.LotSizeAdjustment)
	}
}

func TestExtractEuropeanLocale(t *testing.T) {
	doc := document.FromText(`SAP SE
ISIN: DE0007164600
Quantity: 1.000,00
Price: 48,75 EUR
Value: 48.750,00 EUR
`)
	records, _ := extract(t, doc)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	wantDecimal(t, rec.Quantity, "1000", "quantity")
	wantDecimal(t, rec.Price, "48.75", "price")
	wantDecimal(t, rec.Value, "48750", "value")
	if rec.Currency != "EUR" {
		t.Errorf("currency = %q, want EUR", rec.Currency)
	}
}

func TestExtractMergesTextAndTable(t *testing.T) {
	doc := document.Document{
		Text: "Some commentary mentioning US5949181045 without any figures.",
		Tables: []document.Table{{
			Headers: []string{"ISIN", "Name", "Quantity", "Price", "Value"},
			Rows:    [][]string{{"US5949181045", "Microsoft Corp", "100", "350.45", "35,045.00"}},
		}},
	}
	records, _ := extract(t, doc)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1 (same identifier via both paths)", len(records))
	}
	rec := records[0]
	if rec.Provenance != security.SourceMerged {
		t.Errorf("provenance = %s, want %s", rec.Provenance, security.SourceMerged)
	}
	if rec.Name != "Microsoft Corp" {
		t.Errorf("name = %q", rec.Name)
	}
	wantDecimal(t, rec.Quantity, "100", "quantity")
}

func TestExtractResettlesConflictingSources(t *testing.T) {
	// The table wins the quantity on a confidence tie while price and
	// value come from the text; the resulting triple is off by 5× and
	// must be settled again, not shipped as-is.
	doc := document.Document{
		Text: `Microsoft Corporation
ISIN: US5949181045
Quantity: 100
Price: $350.45
Market Value: $35,045.00
`,
		Tables: []document.Table{{
			Headers: []string{"ISIN", "Quantity"},
			Rows:    [][]string{{"US5949181045", "500"}},
		}},
	}

	records, report := extract(t, doc)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.Provenance != security.SourceMerged {
		t.Fatalf("provenance = %s, want %s", rec.Provenance, security.SourceMerged)
	}
	wantDecimal(t, rec.Quantity, "100", "resettled quantity")
	wantDecimal(t, rec.Price, "350.45", "price")
	wantDecimal(t, rec.Value, "35045", "value")

	// quantity×price must match value within 10% on every assembled
	// record that lacks a lot-size annotation.
	if rec.LotSizeAdjustment == 0 {
		diff := rec.Quantity.Mul(*rec.Price).Sub(*rec.Value).Abs()
		limit := rec.Value.Abs().Mul(decimal.RequireFromString("0.10"))
		if diff.GreaterThan(limit) {
			t.Errorf("inconsistent triple assembled: %s × %s vs %s", rec.Quantity, rec.Price, rec.Value)
		}
	}
	if report.Complete != 1 {
		t.Errorf("report = %+v, want 1 complete", report)
	}
}

func TestExtractTableOnly(t *testing.T) {
	doc := document.Document{
		Tables: []document.Table{{
			Title:   "Holdings",
			Headers: []string{"ISIN", "Ticker", "Quantity", "Price", "Value"},
			Rows: [][]string{
				{"US5949181045", "MSFT", "100", "350.45", "35045.00"},
				{"US0378331005", "AAPL", "200", "125.78", "25156.00"},
			},
		}},
	}
	records, report := extract(t, doc)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Ticker != "MSFT" || records[1].Ticker != "AAPL" {
		t.Errorf("tickers = %s, %s", records[0].Ticker, records[1].Ticker)
	}
	if report.Complete != 2 {
		t.Errorf("report = %+v", report)
	}
}

func TestExtractIdentifierOnly(t *testing.T) {
	doc := document.FromText("Watch list entry: US5949181045, nothing held.")
	records, report := extract(t, doc)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if !security.IsPlaceholderName(rec.Name) {
		t.Errorf("name = %q, want placeholder", rec.Name)
	}
	if rec.Quantity != nil || rec.Price != nil || rec.Value != nil {
		t.Errorf("unexpected numeric fields: %+v", rec)
	}
	if report.Minimal != 1 {
		t.Errorf("report = %+v", report)
	}
}

func TestExtractChecksumRejectsLookalike(t *testing.T) {
	doc := document.FromText("Valid US5949181045 but bogus US5949181046 too.")
	records, _ := extract(t, doc)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].ISIN != "US5949181045" {
		t.Errorf("isin = %s", records[0].ISIN)
	}
}

func TestExtractDeterministic(t *testing.T) {
	doc := document.Document{
		Text: `Microsoft Corporation
ISIN: US5949181045
Quantity: 100
Price: $350.45

SAP SE
ISIN: DE0007164600
Quantity: 1.000,00
Value: 48.750,00 EUR
`,
		Tables: []document.Table{{
			Headers: []string{"ISIN", "Quantity", "Price", "Value"},
			Rows: [][]string{
				{"US0378331005", "200", "125.78", "25,156.00"},
				{"US5949181045", "100", "350.45", "35,045.00"},
			},
		}},
	}

	e := New(DefaultConfig())
	first, firstReport := e.Extract(doc)
	for i := 0; i < 5; i++ {
		records, report := e.Extract(doc)
		a, _ := json.Marshal(first)
		b, _ := json.Marshal(records)
		if !bytes.Equal(a, b) {
			t.Fatalf("run %d differs:\n%s\n%s", i, a, b)
		}
		if report != firstReport {
			t.Fatalf("report differs: %+v vs %+v", report, firstReport)
		}
	}

	// Text identifiers come before table-only ones, each first-seen.
	want := []string{"US5949181045", "DE0007164600", "US0378331005"}
	for i, isin := range want {
		if first[i].ISIN != isin {
			t.Errorf("order[%d] = %s, want %s", i, first[i].ISIN, isin)
		}
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.WindowRadius != 200 || cfg.Tolerance != 0.10 {
		t.Errorf("defaults = %+v", cfg)
	}
	if len(cfg.LotSizes) != 3 {
		t.Errorf("lot sizes = %v", cfg.LotSizes)
	}
}

func TestConfigValidation(t *testing.T) {
	bad := Config{WindowRadius: 100, Tolerance: 1.5}
	if err := bad.validate(); err == nil {
		t.Error("tolerance 1.5 accepted")
	}
	bad = Config{WindowRadius: 100, Tolerance: 0.1, LotSizes: []int{1}}
	if err := bad.validate(); err == nil {
		t.Error("lot size 1 accepted")
	}
}
