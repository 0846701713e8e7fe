package scan

import (
	"log"
	"strings"
	"unicode/utf8"

	"secrecon/pkg/core/document"
)

// DefaultRadius is the context window radius around a text match, in
// bytes, used when the caller does not override it.
const DefaultRadius = 200

// identifierHeaders is the header vocabulary marking a table column as
// holding instrument identifiers.
var identifierHeaders = []string{"isin", "security id", "symbol"}

// RawContext is one sighting of an identifier together with the material
// field extraction will look at: a window of surrounding text, or — for
// table sightings — the entire row zipped with its headers.
type RawContext struct {
	ISIN   string
	Window string
	Row    *TableRow
}

// TableRow carries one table row with its header labels.
type TableRow struct {
	Headers []string
	Cells   []string
}

// Cell returns the cell under the first header containing any of the
// given labels (case-insensitive), with ok=false when none matches.
func (r *TableRow) Cell(labels ...string) (string, bool) {
	for i, h := range r.Headers {
		norm := strings.ToLower(strings.TrimSpace(h))
		for _, label := range labels {
			if strings.Contains(norm, label) {
				return strings.TrimSpace(r.Cells[i]), true
			}
		}
	}
	return "", false
}

// Scanner finds identifiers in a document and produces RawContexts.
type Scanner struct {
	Radius int
}

// NewScanner returns a scanner with the given window radius; radius <= 0
// selects DefaultRadius.
func NewScanner(radius int) *Scanner {
	if radius <= 0 {
		radius = DefaultRadius
	}
	return &Scanner{Radius: radius}
}

// ScanText finds every checksum-valid ISIN in the text blob and attaches
// a ±Radius byte window around each match. Duplicate sightings of the
// same identifier all survive; they are reduced after candidate
// extraction, not here, so no signal is lost prematurely.
func (s *Scanner) ScanText(text string) []RawContext {
	matches := findISINs(text)
	out := make([]RawContext, 0, len(matches))
	for _, m := range matches {
		start := m.start - s.Radius
		if start < 0 {
			start = 0
		}
		end := m.end + s.Radius
		if end > len(text) {
			end = len(text)
		}
		// Window edges must not split a multi-byte rune.
		for start > 0 && !utf8.RuneStart(text[start]) {
			start--
		}
		for end < len(text) && !utf8.RuneStart(text[end]) {
			end++
		}
		out = append(out, RawContext{ISIN: m.code, Window: text[start:end]})
	}
	return out
}

// ScanTables walks every table whose headers include an identifier
// column and emits one RawContext per row with a valid ISIN in that
// column. Rows whose cell count does not match the header count are
// skipped and logged, never fatal.
func (s *Scanner) ScanTables(tables []document.Table) []RawContext {
	var out []RawContext
	for ti, t := range tables {
		col := identifierColumn(t.Headers)
		if col < 0 {
			continue
		}
		for ri := range t.Rows {
			if err := t.CheckRow(ti, ri); err != nil {
				log.Printf("[Scanner] skipping malformed row: %v", err)
				continue
			}
			code := extractISINCell(t.Rows[ri][col])
			if code == "" {
				continue
			}
			out = append(out, RawContext{
				ISIN: code,
				Row:  &TableRow{Headers: t.Headers, Cells: t.Rows[ri]},
			})
		}
	}
	return out
}

// Scan runs both text and table scanning over a document.
func (s *Scanner) Scan(doc document.Document) []RawContext {
	contexts := s.ScanText(doc.Text)
	return append(contexts, s.ScanTables(doc.Tables)...)
}

// identifierColumn returns the index of the first header matching the
// identifier vocabulary, or -1.
func identifierColumn(headers []string) int {
	for i, h := range headers {
		norm := strings.ToLower(strings.TrimSpace(h))
		for _, label := range identifierHeaders {
			if strings.Contains(norm, label) {
				return i
			}
		}
	}
	return -1
}

// extractISINCell pulls a checksum-valid ISIN out of a cell value,
// tolerating prefixes like "ISIN: DE0007164600".
func extractISINCell(cell string) string {
	matches := findISINs(strings.ToUpper(strings.TrimSpace(cell)))
	if len(matches) == 0 {
		return ""
	}
	return matches[0].code
}
