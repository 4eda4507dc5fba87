package chart

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/repolens/internal/model"
	"github.com/verte-zerg/repolens/internal/textfmt"
)

const (
	lineSeries = 0
	areaSeries = 1

	pointMarker       = "•"
	activePointMarker = "●"
)

// TimeSeries draws commits over time as a filled area under a line.
// The commit axis runs from 0 to the largest count and the time axis spans
// the earliest to the latest date. Points are connected in input order.
func TimeSeries(s *Surface, series *model.CommitSeries, opts Options) error {
	s.Clear()
	if series == nil || len(series.Points) == 0 {
		return ErrEmptySeries
	}
	points := series.Points
	highlight := opts.highlight(s)
	if highlight >= len(points) {
		highlight = -1
	}

	first, last := dateExtent(points)
	var maxCommits int64
	for _, p := range points {
		if p.Commits > maxCommits {
			maxCommits = p.Commits
		}
	}
	scale := float64(maxCommits)
	if scale <= 0 {
		scale = 1
	}

	plotRows := maxInt(s.height-2, 2)
	labels := make([]string, plotRows)
	labels[0] = textfmt.Compact(maxCommits)
	if plotRows > 2 {
		labels[plotRows/2] = textfmt.Compact(maxCommits / 2)
	}
	labels[plotRows-1] = "0"
	axisWidth := 0
	for _, l := range labels {
		axisWidth = maxInt(axisWidth, runewidth.StringWidth(l))
	}
	plotCols := maxInt(s.width-axisWidth-axisSeparatorWidth, 4)

	c := newCanvas(plotCols, plotRows)
	span := last.Sub(first)
	xs := make([]int, len(points))
	ys := make([]int, len(points))
	for i, p := range points {
		x := c.pw / 2
		if span > 0 {
			x = int(math.Round(float64(p.Date.Sub(first)) / float64(span) * float64(c.pw-1)))
		}
		xs[i] = x
		ys[i] = valueToRow(float64(maxInt64(p.Commits, 0)), scale, c.ph)
	}
	c.set(xs[0], ys[0], lineSeries)
	for i := 1; i < len(points); i++ {
		c.line(xs[i-1], ys[i-1], xs[i], ys[i], lineSeries)
	}
	c.fillBelow(lineSeries, areaSeries, func(px, py int) bool {
		return (px+py)%2 == 0
	})

	cells := c.cells(func(idx int, glyph string) string {
		if idx == areaSeries {
			return paintFaint(opts, commitColor, glyph)
		}
		return paint(opts, commitColor, glyph)
	})
	if len(points)*2 <= plotCols {
		for i := range points {
			cells[ys[i]/4][xs[i]/2] = paint(opts, commitColor, pointMarker)
		}
	}
	if highlight >= 0 {
		cells[ys[highlight]/4][xs[highlight]/2] = paintBold(opts, commitColor, activePointMarker)
	}

	plot := join(cells)
	lines := make([]string, 0, plotRows+2)
	for row := 0; row < plotRows; row++ {
		lines = append(lines, strings.TrimRight(axisPrefix(labels[row], axisWidth)+plot[row], " "))
	}
	lines = append(lines, strings.Repeat(" ", axisWidth+axisSeparatorWidth)+dateAxis(first, last, plotCols))
	lines = append(lines, commitDetailLine(points, highlight))
	s.draw(lines)
	return nil
}

func dateExtent(points []model.CommitPoint) (time.Time, time.Time) {
	first, last := points[0].Date, points[0].Date
	for _, p := range points[1:] {
		if p.Date.Before(first) {
			first = p.Date
		}
		if p.Date.After(last) {
			last = p.Date
		}
	}
	return first, last
}

func dateAxis(first, last time.Time, width int) string {
	if first.Equal(last) {
		return textfmt.Truncate(textfmt.Date(first), width)
	}
	for _, format := range []func(time.Time) string{textfmt.Date, textfmt.ShortDate} {
		left, right := format(first), format(last)
		used := runewidth.StringWidth(left) + runewidth.StringWidth(right)
		if used+1 <= width {
			return left + strings.Repeat(" ", width-used) + right
		}
	}
	return textfmt.Truncate(textfmt.ShortDate(first), width)
}

func commitDetailLine(points []model.CommitPoint, highlight int) string {
	if highlight < 0 || highlight >= len(points) {
		return ""
	}
	p := points[highlight]
	line := fmt.Sprintf("%s  %s  %s commits", pointerMarker, textfmt.Date(p.Date), textfmt.Grouped(p.Commits))
	if !p.Additions.Known && !p.Deletions.Known {
		return line
	}
	return fmt.Sprintf("%s  +%s / -%s", line, textfmt.GroupedCount(p.Additions), textfmt.GroupedCount(p.Deletions))
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
