package report

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/repolens/internal/textfmt"
)

// Table is a header row plus body rows of preformatted cells.
type Table struct {
	Headers []string
	Rows    [][]string
	// Right marks right-aligned columns.
	Right map[int]bool
}

// Lines lays the table out with columns padded to their widest cell.
func (t Table) Lines() []string {
	return formatTable(t.Headers, t.Rows, t.Right)
}

func formatTable(headers []string, rows [][]string, rightAlignCols map[int]bool) []string {
	colCount := len(headers)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, header := range headers {
		widths[i] = runewidth.StringWidth(header)
	}
	for _, row := range rows {
		for i := 0; i < colCount; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, formatRow(headers, widths, rightAlignCols))
	}
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlignCols))
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlignCols map[int]bool) string {
	var b strings.Builder
	for i := 0; i < len(widths); i++ {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if i > 0 {
			b.WriteString("  ")
		}
		if rightAlignCols[i] {
			b.WriteString(textfmt.PadLeft(cell, widths[i]))
		} else if i < len(widths)-1 {
			b.WriteString(textfmt.PadRight(cell, widths[i]))
		} else {
			b.WriteString(cell)
		}
	}
	return b.String()
}
