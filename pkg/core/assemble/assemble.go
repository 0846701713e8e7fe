// Package assemble freezes merged drafts into final records and computes
// the run-level completeness report.
package assemble

import (
	"github.com/shopspring/decimal"

	"secrecon/pkg/core/reconcile"
	"secrecon/pkg/core/security"
)

// confIdentifierOnly is the aggregate confidence assigned to records
// carrying nothing but a checksum-valid identifier. The checksum gate
// makes the identifier itself trustworthy even when every field around
// it failed to extract.
const confIdentifierOnly = 0.5

// Assemble converts drafts into immutable records, in input order, and
// summarizes completeness against the given relative tolerance. Missing
// names get a generated placeholder so every record is presentable.
//
// A record only counts as complete when all three numeric fields are
// present and quantity×price matches value within the tolerance; a full
// but inconsistent triple is demoted to partial.
func Assemble(drafts []security.Draft, tolerance float64) ([]security.Record, security.Report) {
	records := make([]security.Record, 0, len(drafts))
	var report security.Report

	for _, d := range drafts {
		rec := freeze(d)
		records = append(records, rec)

		numeric := 0
		for _, f := range []*decimal.Decimal{rec.Quantity, rec.Price, rec.Value} {
			if f != nil {
				numeric++
			}
		}
		switch {
		case numeric == 3 && reconcile.Consistent(*rec.Quantity, *rec.Price, *rec.Value, tolerance):
			report.Complete++
		case numeric > 0:
			report.Partial++
		default:
			report.Minimal++
		}
	}

	report.TotalRecords = len(records)
	if report.TotalRecords > 0 {
		n := float64(report.TotalRecords)
		report.CompletePct = 100 * float64(report.Complete) / n
		report.PartialPct = 100 * float64(report.Partial) / n
		report.MinimalPct = 100 * float64(report.Minimal) / n
	}
	return records, report
}

func freeze(d security.Draft) security.Record {
	rec := security.Record{
		ISIN:       d.ISIN,
		Currency:   d.Currency,
		AssetClass: d.AssetClass,
		Provenance: d.Provenance,
		Confidence: aggregate(d),
	}

	if d.Name != nil {
		rec.Name = d.Name.Value
	} else {
		rec.Name = security.PlaceholderName(d.ISIN)
	}
	if d.Ticker != nil {
		rec.Ticker = d.Ticker.Value
	}
	rec.Quantity = numValue(d.Quantity)
	rec.Price = numValue(d.Price)
	rec.Value = numValue(d.Value)

	if d.LotSize > 1 {
		rec.LotSizeAdjustment = d.LotSize
	}
	return rec
}

// aggregate computes record confidence as a weighted mean of the
// per-field confidences: numeric fields weigh double because they are
// both harder to extract and more consequential when wrong.
func aggregate(d security.Draft) float64 {
	var sum, weight float64

	for _, f := range []*security.NumField{d.Quantity, d.Price, d.Value} {
		if f != nil {
			sum += 2 * f.Confidence
			weight += 2
		}
	}
	for _, f := range []*security.StrField{d.Name, d.Ticker} {
		if f != nil {
			sum += f.Confidence
			weight++
		}
	}

	if weight == 0 {
		return confIdentifierOnly
	}
	return sum / weight
}

func numValue(f *security.NumField) *decimal.Decimal {
	if f == nil {
		return nil
	}
	v := f.Value
	return &v
}
