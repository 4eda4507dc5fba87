package chart

import (
	"strings"

	"github.com/samber/lo"

	"github.com/verte-zerg/repolens/internal/model"
	"github.com/verte-zerg/repolens/internal/textfmt"
)

// eighthBlocks holds partial bar tops, indexed by filled eighths.
var eighthBlocks = []string{" ", "▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

const maxBarWidth = 10

// Bar draws one vertical bar per slice in input order on a linear
// axis from 0 to the largest percentage.
func Bar(s *Surface, series *model.LanguageSeries, colors *ColorTable, opts Options) error {
	s.Clear()
	if series == nil || len(series.Slices) == 0 {
		return ErrEmptySeries
	}
	slices := series.Slices
	if colors == nil {
		colors = NewColorTable(series.Categories())
	}
	highlight := opts.highlight(s)
	if highlight >= len(slices) {
		highlight = -1
	}

	maxPct := lo.Max(lo.Map(slices, func(slice model.LanguageSlice, _ int) float64 {
		return slice.Percentage
	}))
	scale := maxPct
	if scale <= 0 {
		scale = 1
	}

	plotRows := maxInt(s.height-2, 2)
	labels := make([]string, plotRows)
	labels[0] = textfmt.Percent(maxPct)
	if plotRows > 2 {
		labels[plotRows/2] = textfmt.Percent(maxPct / 2)
	}
	labels[plotRows-1] = "0%"
	axisWidth := lo.Max(lo.Map(labels, func(l string, _ int) int { return len(l) }))

	plotWidth := maxInt(s.width-axisWidth-axisSeparatorWidth, 1)
	n := minInt(len(slices), plotWidth)
	slot := plotWidth / n
	barWidth := minInt(maxInt(slot-1, 1), maxBarWidth)
	gap := strings.Repeat(" ", slot-barWidth)

	heights := make([]int, n)
	for i := 0; i < n; i++ {
		pct := slices[i].Percentage
		if pct < 0 {
			pct = 0
		}
		heights[i] = int(pct/scale*float64(plotRows*8) + 0.5)
	}

	lines := make([]string, 0, plotRows+2)
	for row := 0; row < plotRows; row++ {
		fromBottom := plotRows - 1 - row
		var b strings.Builder
		b.WriteString(axisPrefix(labels[row], axisWidth))
		for i := 0; i < n; i++ {
			filled := heights[i] - fromBottom*8
			if filled < 0 {
				filled = 0
			}
			if filled > 8 {
				filled = 8
			}
			glyph := strings.Repeat(eighthBlocks[filled], barWidth)
			color := colors.Color(slices[i].Category)
			if i == highlight {
				b.WriteString(paintBold(opts, color, glyph))
			} else {
				b.WriteString(paint(opts, color, glyph))
			}
			b.WriteString(gap)
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}

	var names strings.Builder
	names.WriteString(strings.Repeat(" ", axisWidth+axisSeparatorWidth))
	for i := 0; i < n; i++ {
		name := textfmt.PadRight(textfmt.Truncate(slices[i].Category, barWidth), barWidth)
		if i == highlight {
			name = bold(opts, name)
		}
		names.WriteString(name)
		names.WriteString(gap)
	}
	lines = append(lines, strings.TrimRight(names.String(), " "))
	lines = append(lines, languageDetailLine(slices, highlight))
	s.draw(lines)
	return nil
}
