package document

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FromHTML converts an HTML page into a Document: every <table> becomes a
// structured Table (first row as header), and the page's visible text
// becomes the free-text blob. Table content also appears in the text blob;
// the engine's source merger reconciles the two views.
func FromHTML(html string) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Document{}, err
	}

	var tables []Table
	doc.Find("table").Each(func(i int, sel *goquery.Selection) {
		t := parseHTMLTable(sel)
		if len(t.Headers) > 0 && len(t.Rows) > 0 {
			tables = append(tables, t)
		}
	})

	return Document{
		Text:   normalizeWhitespace(doc.Text()),
		Tables: tables,
	}, nil
}

// parseHTMLTable extracts header and data rows from a single <table>.
// The first row with more than one cell is taken as the header row;
// single-cell leading rows are treated as the table title.
func parseHTMLTable(sel *goquery.Selection) Table {
	var t Table

	sel.Find("tr").Each(func(_ int, row *goquery.Selection) {
		var cells []string
		row.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) == 0 {
			return
		}
		if len(cells) == 1 && len(t.Headers) == 0 {
			if t.Title == "" {
				t.Title = cells[0]
			}
			return
		}
		if len(t.Headers) == 0 {
			t.Headers = cells
			return
		}
		t.Rows = append(t.Rows, cells)
	})

	return t
}

// normalizeWhitespace collapses runs of blank lines left behind by tag
// stripping so context windows stay dense.
func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, trimmed)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
