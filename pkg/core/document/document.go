// Package document defines the in-memory input contract of the extraction
// engine: a free-text blob plus the structured tables detected upstream.
// It also provides converters that build a Document from HTML or Markdown
// sources, so callers that only hold a raw file can still feed the engine.
package document

import "fmt"

// Table is one detected table: a header row plus data rows.
// Rows are expected to have the same cell count as Headers; rows that
// don't are reported as MalformedRowError by consumers and skipped.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Document is the full input to one extraction run.
// Text and Tables may overlap (a table rendered inside the text blob is
// fine): the merge stage reconciles records found through both paths.
type Document struct {
	Text   string
	Tables []Table
}

// MalformedRowError reports a table row whose cell count does not match
// the table's header count. The affected row is skipped; processing of
// the rest of the document continues.
type MalformedRowError struct {
	Table   int // index of the table within the document
	Row     int // index of the row within the table
	Cells   int
	Headers int
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("table %d row %d: %d cells for %d headers", e.Table, e.Row, e.Cells, e.Headers)
}

// CheckRow validates a row's shape against the table headers.
func (t Table) CheckRow(tableIdx, rowIdx int) error {
	if rowIdx < 0 || rowIdx >= len(t.Rows) {
		return fmt.Errorf("table %d: row %d out of range", tableIdx, rowIdx)
	}
	if len(t.Rows[rowIdx]) != len(t.Headers) {
		return &MalformedRowError{
			Table:   tableIdx,
			Row:     rowIdx,
			Cells:   len(t.Rows[rowIdx]),
			Headers: len(t.Headers),
		}
	}
	return nil
}

// FromText wraps a plain text blob with no structured tables.
func FromText(text string) Document {
	return Document{Text: text}
}
