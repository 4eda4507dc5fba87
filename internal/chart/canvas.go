package chart

import (
	"math"
	"strings"

	"github.com/verte-zerg/repolens/internal/textfmt"
)

// canvas is a grid of braille cells, 2x4 dots each. Every dot remembers
// which series set it so a cell can take the color of its majority series.
type canvas struct {
	cols, rows int
	pw, ph     int
	grid       []int
}

func newCanvas(cols, rows int) *canvas {
	cols = maxInt(cols, 1)
	rows = maxInt(rows, 1)
	pw, ph := cols*2, rows*4
	grid := make([]int, pw*ph)
	for i := range grid {
		grid[i] = -1
	}
	return &canvas{cols: cols, rows: rows, pw: pw, ph: ph, grid: grid}
}

func (c *canvas) set(px, py, idx int) {
	if px < 0 || py < 0 || px >= c.pw || py >= c.ph {
		return
	}
	c.grid[py*c.pw+px] = idx
}

func (c *canvas) at(px, py int) int {
	if px < 0 || py < 0 || px >= c.pw || py >= c.ph {
		return -1
	}
	return c.grid[py*c.pw+px]
}

func (c *canvas) line(x0, y0, x1, y1, idx int) {
	drawLine(x0, y0, x1, y1, func(x, y int) {
		c.set(x, y, idx)
	})
}

// fillBelow fills the empty dots under the topmost dot of src in every
// column, keeping only dots accepted by keep.
func (c *canvas) fillBelow(src, idx int, keep func(px, py int) bool) {
	for px := 0; px < c.pw; px++ {
		top := -1
		for py := 0; py < c.ph; py++ {
			if c.grid[py*c.pw+px] == src {
				top = py
				break
			}
		}
		if top < 0 {
			continue
		}
		for py := top + 1; py < c.ph; py++ {
			if c.grid[py*c.pw+px] >= 0 {
				continue
			}
			if keep == nil || keep(px, py) {
				c.grid[py*c.pw+px] = idx
			}
		}
	}
}

// cell returns the dot mask of a cell and the series owning most of its
// dots. Ties go to the lower series index. idx is -1 for an empty cell.
func (c *canvas) cell(cx, cy int) (uint8, int) {
	var mask uint8
	var counts [8]int
	owners := [8]int{-1, -1, -1, -1, -1, -1, -1, -1}
	used := 0
	for dy := 0; dy < 4; dy++ {
		for dx := 0; dx < 2; dx++ {
			idx := c.at(cx*2+dx, cy*4+dy)
			if idx < 0 {
				continue
			}
			mask |= brailleDotMask(dx, dy)
			slot := -1
			for i := 0; i < used; i++ {
				if owners[i] == idx {
					slot = i
					break
				}
			}
			if slot < 0 {
				slot = used
				owners[slot] = idx
				used++
			}
			counts[slot]++
		}
	}
	best := -1
	bestCount := 0
	for i := 0; i < used; i++ {
		if counts[i] > bestCount || (counts[i] == bestCount && owners[i] < best) {
			best = owners[i]
			bestCount = counts[i]
		}
	}
	return mask, best
}

// cells renders every cell with paint, leaving empty cells as spaces.
// The result can be overlaid before joining rows with join.
func (c *canvas) cells(paint func(idx int, s string) string) [][]string {
	out := make([][]string, c.rows)
	for cy := 0; cy < c.rows; cy++ {
		row := make([]string, c.cols)
		for cx := 0; cx < c.cols; cx++ {
			mask, idx := c.cell(cx, cy)
			if mask == 0 {
				row[cx] = " "
				continue
			}
			row[cx] = paint(idx, string(brailleFromMask(mask)))
		}
		out[cy] = row
	}
	return out
}

func join(rows [][]string) []string {
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = strings.Join(row, "")
	}
	return out
}

func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := int(math.Abs(float64(x1 - x0)))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -int(math.Abs(float64(y1 - y0)))
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				break
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				break
			}
			err += dx
			y0 += sy
		}
	}
}

func brailleDotMask(x, y int) uint8 {
	switch {
	case x == 0 && y == 0:
		return 0x01
	case x == 0 && y == 1:
		return 0x02
	case x == 0 && y == 2:
		return 0x04
	case x == 0 && y == 3:
		return 0x40
	case x == 1 && y == 0:
		return 0x08
	case x == 1 && y == 1:
		return 0x10
	case x == 1 && y == 2:
		return 0x20
	case x == 1 && y == 3:
		return 0x80
	default:
		return 0
	}
}

func brailleFromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}

func valueToRow(v, maxVal float64, height int) int {
	if height <= 1 || maxVal <= 0 {
		return height - 1
	}
	pos := v / maxVal
	row := int(math.Round((1 - pos) * float64(height-1)))
	if row < 0 {
		row = 0
	}
	if row >= height {
		row = height - 1
	}
	return row
}

// axisPrefix pads an axis label and appends the separator.
func axisPrefix(label string, width int) string {
	return textfmt.PadLeft(label, width) + axisSeparator
}

const (
	axisSeparator      = " │ "
	axisSeparatorWidth = 3
)
