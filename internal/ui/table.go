package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Table is a left-aligned text table. Cells wider than MaxCell are truncated.
type Table struct {
	Headers []string
	Rows    [][]string
	MaxCell int
	// Styled renders the header bold; off for pipes and golden output.
	Styled bool
}

// Render lays out the table with two spaces between columns. Widths are
// measured in terminal cells.
func (t *Table) Render() string {
	cols := len(t.Headers)
	for _, r := range t.Rows {
		cols = max(cols, len(r))
	}
	if cols == 0 {
		return ""
	}
	cell := func(row []string, i int) string {
		if i >= len(row) {
			return ""
		}
		if t.MaxCell > 0 {
			return Truncate(row[i], t.MaxCell)
		}
		return row[i]
	}
	widths := make([]int, cols)
	measure := func(row []string) {
		for i := range cols {
			widths[i] = max(widths[i], runewidth.StringWidth(cell(row, i)))
		}
	}
	measure(t.Headers)
	for _, r := range t.Rows {
		measure(r)
	}

	var b strings.Builder
	line := func(row []string, style *lipgloss.Style) {
		var sb strings.Builder
		for i := range cols {
			c := cell(row, i)
			if i < cols-1 {
				c = runewidth.FillRight(c, widths[i]) + "  "
			}
			sb.WriteString(c)
		}
		text := strings.TrimRight(sb.String(), " ")
		if style != nil {
			text = style.Render(text)
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	if len(t.Headers) > 0 {
		var style *lipgloss.Style
		if t.Styled {
			s := lipgloss.NewStyle().Bold(true)
			style = &s
		}
		line(t.Headers, style)
	}
	for _, r := range t.Rows {
		line(r, nil)
	}
	return b.String()
}

// Truncate shortens value to width terminal cells, marking the cut with "...".
func Truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
