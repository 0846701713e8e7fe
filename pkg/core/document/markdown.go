package document

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"
)

// FromMarkdown converts a Markdown document into a Document. Pipe tables
// (| a | b |) become structured Tables; everything, including the table
// lines, stays in the text blob so free-text scanning sees the same
// material. Input is cleaned of wrapping code fences first.
func FromMarkdown(md string) (Document, error) {
	cleaned := CleanMarkdown(md)

	var tables []Table
	lines := strings.Split(cleaned, "\n")
	i := 0
	for i < len(lines) {
		if !isPipeRow(lines[i]) {
			i++
			continue
		}
		t, next := parsePipeTable(lines, i)
		if len(t.Headers) > 0 && len(t.Rows) > 0 {
			t.Title = precedingTitle(lines, i)
			tables = append(tables, t)
		}
		i = next
	}

	return Document{Text: cleaned, Tables: tables}, nil
}

// CleanMarkdown strips outer markdown code fences (```markdown ... ```)
// that upstream converters sometimes wrap documents in.
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(input)
	if strings.HasPrefix(cleaned, "```markdown") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```markdown")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	} else if strings.HasPrefix(cleaned, "```") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}
	return cleaned
}

// ValidMarkdown reports whether the input parses under Goldmark.
// Goldmark is very permissive, so this is a basic sanity gate.
func ValidMarkdown(input string) bool {
	parser := goldmark.DefaultParser()
	reader := text.NewReader([]byte(input))
	return parser.Parse(reader) != nil
}

func isPipeRow(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|") && len(trimmed) > 2
}

func isSeparatorRow(line string) bool {
	trimmed := strings.Trim(strings.TrimSpace(line), "|")
	for _, c := range trimmed {
		if c != '-' && c != ':' && c != ' ' && c != '|' {
			return false
		}
	}
	return strings.Contains(trimmed, "-")
}

// parsePipeTable consumes a contiguous block of pipe rows starting at
// start and returns the parsed table plus the index of the first
// non-table line.
func parsePipeTable(lines []string, start int) (Table, int) {
	var t Table
	i := start
	for i < len(lines) && isPipeRow(lines[i]) {
		line := lines[i]
		i++
		if isSeparatorRow(line) {
			continue
		}
		cells := splitPipeRow(line)
		if len(t.Headers) == 0 {
			t.Headers = cells
			continue
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, i
}

func splitPipeRow(line string) []string {
	trimmed := strings.Trim(strings.TrimSpace(line), "|")
	parts := strings.Split(trimmed, "|")
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		cells = append(cells, strings.TrimSpace(p))
	}
	return cells
}

// precedingTitle walks backwards from a table start looking for a
// heading or bold line to use as the table title.
func precedingTitle(lines []string, start int) string {
	for j := start - 1; j >= 0 && j >= start-3; j-- {
		trimmed := strings.TrimSpace(lines[j])
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "**") {
			return strings.Trim(trimmed, "#* ")
		}
		return ""
	}
	return ""
}
