package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/repolens/internal/model"
	"github.com/verte-zerg/repolens/internal/textfmt"
)

const (
	// Slices at or below this share get no label inside the disc.
	pieLabelThreshold = 5.0
	pieLegendMinWidth = 16
	pieGap            = "  "
	legendSwatch      = "■"
	pointerMarker     = "▸"
)

// Pie draws a braille disc with one arc per slice, sized by percentage,
// starting at 12 o'clock and running clockwise.
func Pie(s *Surface, series *model.LanguageSeries, colors *ColorTable, opts Options) error {
	s.Clear()
	if series == nil || len(series.Slices) == 0 {
		return ErrEmptySeries
	}
	slices := series.Slices
	bounds, ok := arcBounds(slices)
	if !ok {
		return fmt.Errorf("%w: no positive percentages", ErrEmptySeries)
	}
	if colors == nil {
		colors = NewColorTable(series.Categories())
	}
	highlight := opts.highlight(s)
	if highlight >= len(slices) {
		highlight = -1
	}

	bodyRows := maxInt(s.height-1, 2)
	radius := bodyRows * 2
	if maxCols := s.width - pieLegendMinWidth - len(pieGap); radius > maxCols {
		radius = maxInt(maxCols, 2)
	}
	cols := radius
	rows := (radius + 1) / 2

	c := newCanvas(cols, rows)
	r := float64(radius)
	for py := 0; py < radius*2; py++ {
		for px := 0; px < radius*2; px++ {
			dx := float64(px) + 0.5 - r
			dy := float64(py) + 0.5 - r
			if dx*dx+dy*dy > r*r {
				continue
			}
			c.set(px, py, sliceAt(bounds, angleFraction(dx, dy)))
		}
	}
	cells := c.cells(func(idx int, glyph string) string {
		color := colors.Color(slices[idx].Category)
		if idx == highlight {
			return paintBold(opts, color, glyph)
		}
		return paint(opts, color, glyph)
	})

	taken := make([][]bool, len(cells))
	for i := range taken {
		taken[i] = make([]bool, cols)
	}
	start := 0.0
	for i, slice := range slices {
		end := bounds[i]
		if slice.Percentage > pieLabelThreshold {
			mid := (start + end) * math.Pi
			lx := r + math.Sin(mid)*r*0.6
			ly := r - math.Cos(mid)*r*0.6
			label := textfmt.Truncate(slice.Category, maxInt(cols/3, 3))
			placeLabel(cells, taken, int(lx)/2, int(ly)/4, bold(opts, label), runewidth.StringWidth(label))
		}
		start = end
	}

	legend := pieLegend(slices, colors, highlight, s.width-cols-len(pieGap), bodyRows, opts)
	disc := join(cells)
	height := minInt(maxInt(len(disc), len(legend)), bodyRows)
	lines := make([]string, 0, height+1)
	blank := strings.Repeat(" ", cols)
	for i := 0; i < height; i++ {
		left := blank
		if i < len(disc) {
			left = disc[i]
		}
		right := ""
		if i < len(legend) {
			right = legend[i]
		}
		lines = append(lines, strings.TrimRight(left+pieGap+right, " "))
	}
	lines = append(lines, languageDetailLine(slices, highlight))
	s.draw(lines)
	return nil
}

// arcBounds returns the cumulative end fraction of every slice.
// Non-positive percentages get an empty arc.
func arcBounds(slices []model.LanguageSlice) ([]float64, bool) {
	total := 0.0
	for _, slice := range slices {
		if slice.Percentage > 0 {
			total += slice.Percentage
		}
	}
	if total <= 0 {
		return nil, false
	}
	bounds := make([]float64, len(slices))
	acc := 0.0
	for i, slice := range slices {
		if slice.Percentage > 0 {
			acc += slice.Percentage
		}
		bounds[i] = acc / total
	}
	return bounds, true
}

// angleFraction maps an offset from the disc center to [0, 1),
// measured clockwise from 12 o'clock. dy grows downwards.
func angleFraction(dx, dy float64) float64 {
	a := math.Atan2(dx, -dy)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a / (2 * math.Pi)
}

func sliceAt(bounds []float64, f float64) int {
	for i, b := range bounds {
		if f < b {
			return i
		}
	}
	return len(bounds) - 1
}

func placeLabel(cells [][]string, taken [][]bool, cx, cy int, label string, width int) {
	if cy < 0 || cy >= len(cells) || width <= 0 || width > len(cells[cy]) {
		return
	}
	x := cx - width/2
	if x < 0 {
		x = 0
	}
	if x+width > len(cells[cy]) {
		x = len(cells[cy]) - width
	}
	for i := x; i < x+width; i++ {
		if taken[cy][i] {
			return
		}
	}
	cells[cy][x] = label
	taken[cy][x] = true
	for i := x + 1; i < x+width; i++ {
		cells[cy][i] = ""
		taken[cy][i] = true
	}
}

func pieLegend(slices []model.LanguageSlice, colors *ColorTable, highlight, width, maxLines int, opts Options) []string {
	nameWidth := maxInt(width-11, 4)
	visible := len(slices)
	if visible > maxLines {
		visible = maxInt(maxLines-1, 0)
	}
	lines := make([]string, 0, visible+1)
	for i := 0; i < visible; i++ {
		slice := slices[i]
		pointer := " "
		name := textfmt.PadRight(textfmt.Truncate(slice.Category, nameWidth), nameWidth)
		if i == highlight {
			pointer = pointerMarker
			name = bold(opts, name)
		}
		swatch := paint(opts, colors.Color(slice.Category), legendSwatch)
		lines = append(lines, fmt.Sprintf("%s %s %s %s", pointer, swatch, name, textfmt.PadLeft(textfmt.Percent(slice.Percentage), 6)))
	}
	if hidden := len(slices) - visible; hidden > 0 {
		lines = append(lines, fmt.Sprintf("  +%d more", hidden))
	}
	return lines
}

func languageDetailLine(slices []model.LanguageSlice, highlight int) string {
	if highlight < 0 || highlight >= len(slices) {
		return ""
	}
	slice := slices[highlight]
	parts := []string{pointerMarker, slice.Category, textfmt.Percent(slice.Percentage)}
	if slice.HasWeight {
		parts = append(parts, "~"+textfmt.Bytes(slice.ApproxWeight))
	}
	return strings.Join(parts, "  ")
}
