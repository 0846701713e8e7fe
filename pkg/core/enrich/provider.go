// Package enrich fills descriptive gaps in extraction records (name,
// ticker, asset class) using a language model. Enrichment is strictly
// additive: it only touches records whose name is a generated
// placeholder, never overrides an extracted field, and a provider
// failure degrades to the unenriched record.
package enrich

import "context"

// Provider abstracts a text-generation backend.
type Provider interface {
	// Generate sends a system/user prompt pair and returns the raw model
	// output.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
