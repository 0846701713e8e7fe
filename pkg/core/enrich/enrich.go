package enrich

import (
	"context"
	"fmt"
	"log"
	"strings"

	"secrecon/pkg/core/security"
)

const systemPrompt = `You are a securities reference data assistant.
Given an ISIN, return what is publicly known about the instrument as JSON
with exactly these keys: "name" (official security name, or "" if
unknown), "ticker" (primary exchange ticker, or ""), "asset_class" (one
of equity, bond, fund, etf, derivative, or ""). Return only the JSON
object. Never guess: prefer "" over an uncertain answer.`

type lookup struct {
	Name       string `json:"name"`
	Ticker     string `json:"ticker"`
	AssetClass string `json:"asset_class"`
}

// Enricher fills descriptive gaps in records via a Provider.
type Enricher struct {
	provider Provider
}

func New(provider Provider) *Enricher {
	return &Enricher{provider: provider}
}

// Enrich returns a new record slice with descriptive gaps filled where
// the provider knew the instrument. Input records are never mutated, and
// extracted values are never overridden: only placeholder names, empty
// tickers and empty asset classes are candidates. Provider failures are
// logged and leave the affected record unchanged.
func (e *Enricher) Enrich(ctx context.Context, records []security.Record) []security.Record {
	out := make([]security.Record, len(records))
	copy(out, records)

	for i := range out {
		rec := &out[i]
		needsName := security.IsPlaceholderName(rec.Name)
		if !needsName && rec.Ticker != "" && rec.AssetClass != "" {
			continue
		}

		info, err := e.lookupISIN(ctx, rec.ISIN)
		if err != nil {
			log.Printf("[Enricher] lookup failed for %s: %v", rec.ISIN, err)
			continue
		}

		if needsName && info.Name != "" {
			rec.Name = info.Name
		}
		if rec.Ticker == "" && info.Ticker != "" {
			rec.Ticker = strings.ToUpper(info.Ticker)
		}
		if rec.AssetClass == "" && info.AssetClass != "" {
			rec.AssetClass = strings.ToLower(info.AssetClass)
		}
	}
	return out
}

func (e *Enricher) lookupISIN(ctx context.Context, isin string) (lookup, error) {
	raw, err := e.provider.Generate(ctx, systemPrompt, fmt.Sprintf("ISIN: %s", isin))
	if err != nil {
		return lookup{}, err
	}

	var info lookup
	if err := parseModelOutput(raw, &info); err != nil {
		return lookup{}, err
	}
	return info, nil
}
