package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const colGap = 2

// Table is an aligned plain-text table. Widths are measured on visible
// text so styled cells line up.
type Table struct {
	Headers []string
	Rows    [][]string
	// Right lists column indexes that are right-aligned (numbers).
	Right []int
}

func (t Table) rightAligned(col int) bool {
	for _, c := range t.Right {
		if c == col {
			return true
		}
	}
	return false
}

func (t Table) widths() []int {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i := 0; i < len(widths) && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}
	return widths
}

func (t Table) writeRow(b *strings.Builder, cells []string, widths []int, style func(string) string) {
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		pad := strings.Repeat(" ", max(0, w-lipgloss.Width(cell)))
		rendered := style(cell)
		last := i == len(widths)-1
		switch {
		case t.rightAligned(i):
			b.WriteString(pad + rendered)
		case last:
			b.WriteString(rendered)
		default:
			b.WriteString(rendered + pad)
		}
		if !last {
			b.WriteString(strings.Repeat(" ", colGap))
		}
	}
	b.WriteString("\n")
}

// Render returns the table with a header row and separator line. An empty
// header list renders nothing.
func (t Table) Render() string {
	if len(t.Headers) == 0 {
		return ""
	}
	widths := t.widths()

	var b strings.Builder
	t.writeRow(&b, t.Headers, widths, func(s string) string { return StyleHeader.Render(s) })

	for i, w := range widths {
		b.WriteString(StyleDim.Render(strings.Repeat("─", w)))
		if i < len(widths)-1 {
			b.WriteString(strings.Repeat(" ", colGap))
		}
	}
	b.WriteString("\n")

	for _, row := range t.Rows {
		t.writeRow(&b, row, widths, func(s string) string { return s })
	}
	return b.String()
}

// RenderTable renders headers and rows with every column left-aligned.
func RenderTable(headers []string, rows [][]string) string {
	return Table{Headers: headers, Rows: rows}.Render()
}
