// Package security defines the durable output entities of the extraction
// engine: per-instrument records with confidence and provenance, plus the
// run-level report. Intermediate stages exchange Draft values carrying
// per-field confidence; the assembler freezes them into Records.
package security

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Provenance identifies which extraction source produced a record.
type Provenance string

const (
	SourceText   Provenance = "text-only"
	SourceTable  Provenance = "table-only"
	SourceMerged Provenance = "merged"
)

// NumField is a numeric field value with its extraction confidence.
type NumField struct {
	Value      decimal.Decimal
	Confidence float64
	Source     string // pattern id or "table-column"
}

// StrField is a string field value with its extraction confidence.
type StrField struct {
	Value      string
	Confidence float64
}

// Draft is a security record in progress: one per identifier per source,
// before merging. Field pointers are nil when nothing was extracted.
type Draft struct {
	ISIN     string
	Name     *StrField
	Ticker   *StrField
	Quantity *NumField
	Price    *NumField
	Value    *NumField

	Currency   string
	AssetClass string
	Provenance Provenance

	// LotSize is the multiplier applied to the printed quantity when
	// cross-validation explained a mismatch that way; 0 means none.
	LotSize int
	// Method records how the quantity was settled (agreement, lot-size,
	// derived, proposed, passthrough).
	Method string
}

// Record is the final, immutable extraction result for one instrument.
// Corrections never mutate a Record; they produce a replacement.
type Record struct {
	ISIN       string           `json:"isin"`
	Name       string           `json:"name,omitempty"`
	Ticker     string           `json:"ticker,omitempty"`
	Quantity   *decimal.Decimal `json:"quantity,omitempty"`
	Price      *decimal.Decimal `json:"price,omitempty"`
	Value      *decimal.Decimal `json:"value,omitempty"`
	Currency   string           `json:"currency,omitempty"`
	AssetClass string           `json:"asset_class,omitempty"`
	Confidence float64          `json:"confidence"`
	Provenance Provenance       `json:"provenance"`

	// LotSizeAdjustment annotates records whose quantity was scaled to
	// reconcile quantity×price with value; 0 means no adjustment.
	LotSizeAdjustment int `json:"lot_size_adjustment,omitempty"`
}

// Report summarizes one extraction run.
type Report struct {
	TotalRecords int `json:"total_records"`
	// Complete: quantity, price and value all present and consistent.
	Complete int `json:"complete"`
	// Partial: at least one numeric field present.
	Partial int `json:"partial"`
	// Minimal: identifier (and possibly name) only.
	Minimal int `json:"minimal"`

	CompletePct float64 `json:"complete_pct"`
	PartialPct  float64 `json:"partial_pct"`
	MinimalPct  float64 `json:"minimal_pct"`
}

// PlaceholderName builds the fallback name for records where no real
// name could be extracted.
func PlaceholderName(isin string) string {
	return fmt.Sprintf("Security with ISIN %s", isin)
}

// IsPlaceholderName reports whether a name is a generated fallback
// rather than an extracted one. Placeholder names always lose to real
// names during merging, regardless of numeric confidence.
func IsPlaceholderName(name string) bool {
	return strings.HasPrefix(name, "Security with ISIN ")
}
