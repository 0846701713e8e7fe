// Package merge fuses per-source drafts of the same instrument into one
// draft per identifier. Text and table pipelines run independently and
// often disagree; merging is field-wise, keeping whichever source is
// more confident about each individual field.
package merge

import (
	"secrecon/pkg/core/security"
)

// Merge combines text-sourced and table-sourced drafts keyed by
// identifier. Output order is first-seen order across the two inputs
// (text first), so repeated runs over the same document produce the
// same sequence.
//
// Confidence ties go to the table draft: structured rows misread less
// often than regex windows. A placeholder name never displaces a real
// one regardless of confidence.
func Merge(textDrafts, tableDrafts []security.Draft) []security.Draft {
	byISIN := make(map[string]*security.Draft)
	var order []string

	for _, d := range textDrafts {
		d := d
		byISIN[d.ISIN] = &d
		order = append(order, d.ISIN)
	}

	for _, td := range tableDrafts {
		existing, ok := byISIN[td.ISIN]
		if !ok {
			td := td
			byISIN[td.ISIN] = &td
			order = append(order, td.ISIN)
			continue
		}
		merged := mergeDrafts(*existing, td)
		byISIN[td.ISIN] = &merged
	}

	out := make([]security.Draft, 0, len(order))
	for _, isin := range order {
		out = append(out, *byISIN[isin])
	}
	return out
}

// mergeDrafts fuses a text draft with a table draft for one identifier.
func mergeDrafts(text, table security.Draft) security.Draft {
	out := security.Draft{
		ISIN:       text.ISIN,
		Provenance: security.SourceMerged,
		LotSize:    1,
	}

	out.Name = betterName(text.Name, table.Name)
	out.Ticker = betterStr(text.Ticker, table.Ticker)
	out.Quantity = betterNum(text.Quantity, table.Quantity)
	out.Price = betterNum(text.Price, table.Price)
	out.Value = betterNum(text.Value, table.Value)

	out.Currency = table.Currency
	if out.Currency == "" {
		out.Currency = text.Currency
	}
	out.AssetClass = table.AssetClass
	if out.AssetClass == "" {
		out.AssetClass = text.AssetClass
	}

	// Carry the reconciliation trace of whichever source supplied the
	// winning quantity.
	if out.Quantity == table.Quantity {
		out.LotSize, out.Method = table.LotSize, table.Method
	} else {
		out.LotSize, out.Method = text.LotSize, text.Method
	}
	if out.LotSize == 0 {
		out.LotSize = 1
	}
	return out
}

// betterNum keeps the higher-confidence field; ties favor the table
// side (b).
func betterNum(a, b *security.NumField) *security.NumField {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.Confidence > b.Confidence {
		return a
	}
	return b
}

func betterStr(a, b *security.StrField) *security.StrField {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.Confidence > b.Confidence {
		return a
	}
	return b
}

// betterName is betterStr plus the placeholder rule: a synthesized
// name loses to any real one.
func betterName(a, b *security.StrField) *security.StrField {
	if a != nil && b != nil {
		aPlace := security.IsPlaceholderName(a.Value)
		bPlace := security.IsPlaceholderName(b.Value)
		if aPlace != bPlace {
			if aPlace {
				return b
			}
			return a
		}
	}
	return betterStr(a, b)
}
