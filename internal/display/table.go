package display

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Table renders an aligned text table. Column widths are measured in
// terminal cells so Arabic labels and icons line up.
type Table struct {
	headers []string
	rows    [][]string
	// highlightRow is the 0-based row index to highlight. -1 = none.
	highlightRow int
	hideHeader   bool
}

// NewTable creates a new table with the given column headers.
func NewTable(headers []string) *Table {
	return &Table{
		headers:      headers,
		highlightRow: -1,
	}
}

// AddRow appends a row of values.
func (t *Table) AddRow(values []string) {
	t.rows = append(t.rows, values)
}

// SetHighlightRow sets which row index (0-based) should be highlighted.
func (t *Table) SetHighlightRow(idx int) {
	t.highlightRow = idx
}

// HideHeader drops the header and separator lines. Headers still fix
// the number of columns.
func (t *Table) HideHeader() {
	t.hideHeader = true
}

// Render produces the formatted table string with leading indent.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); i < len(widths) && w > widths[i] {
				widths[i] = w
			}
		}
	}

	var sb strings.Builder
	if !t.hideHeader {
		sb.WriteString("  " + Bold(formatRow(t.headers, widths)) + "\n")

		sep := make([]string, len(widths))
		for i, w := range widths {
			sep[i] = strings.Repeat("─", w)
		}
		sb.WriteString(Dim("  "+strings.Join(sep, "  ")) + "\n")
	}

	for i, row := range t.rows {
		line := formatRow(row, widths)
		if i == t.highlightRow {
			line = Accent(line)
		}
		sb.WriteString("  " + line + "\n")
	}

	return sb.String()
}

// formatRow pads each cell to its column width.
func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = runewidth.FillRight(cell, w)
	}
	return strings.Join(parts, "  ")
}
