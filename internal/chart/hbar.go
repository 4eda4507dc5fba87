package chart

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/repolens/internal/model"
	"github.com/verte-zerg/repolens/internal/textfmt"
)

const (
	hbarFill      = "█"
	hbarTrack     = "░"
	hbarMinBar    = 4
	hbarMinLabel  = 4
	hbarMaxLabelW = 24
)

// HBar draws one horizontal bar per contributor in input order on a linear
// axis from 0 to the largest count, with the count after each bar.
func HBar(s *Surface, series *model.ContributorSeries, opts Options) error {
	s.Clear()
	if series == nil || len(series.Entries) == 0 {
		return ErrEmptySeries
	}
	entries := series.Entries
	highlight := opts.highlight(s)
	if highlight >= len(entries) {
		highlight = -1
	}

	var maxCount int64
	labelWidth := hbarMinLabel
	valueWidth := 1
	for _, e := range entries {
		if e.Count > maxCount {
			maxCount = e.Count
		}
		labelWidth = maxInt(labelWidth, runewidth.StringWidth(e.Name))
		valueWidth = maxInt(valueWidth, runewidth.StringWidth(textfmt.Grouped(e.Count)))
	}
	labelWidth = minInt(labelWidth, minInt(hbarMaxLabelW, maxInt(s.width/3, hbarMinLabel)))
	scale := float64(maxCount)
	if scale <= 0 {
		scale = 1
	}
	barWidth := maxInt(s.width-labelWidth-valueWidth-5, hbarMinBar)

	visible := len(entries)
	if limit := s.height - 1; visible > limit {
		visible = maxInt(limit-1, 1)
	}
	lines := make([]string, 0, visible+2)
	for i := 0; i < visible; i++ {
		e := entries[i]
		count := e.Count
		if count < 0 {
			count = 0
		}
		barLen := int(float64(count) / scale * float64(barWidth))
		if barLen < 1 && count > 0 {
			barLen = 1
		}
		pointer := " "
		label := textfmt.PadRight(textfmt.Truncate(e.Name, labelWidth), labelWidth)
		value := textfmt.Grouped(e.Count)
		fill := strings.Repeat(hbarFill, barLen)
		if i == highlight {
			pointer = pointerMarker
			label = bold(opts, label)
			fill = paintBold(opts, contributorColor, fill)
			value = bold(opts, value)
		} else {
			fill = paint(opts, contributorColor, fill)
		}
		track := paintFaint(opts, neutralColor, strings.Repeat(hbarTrack, barWidth-barLen))
		lines = append(lines, fmt.Sprintf("%s %s %s%s %s", pointer, label, fill, track, value))
	}
	if hidden := len(entries) - visible; hidden > 0 {
		lines = append(lines, fmt.Sprintf("  +%d more", hidden))
	}
	lines = append(lines, contributorDetailLine(entries, highlight))
	s.draw(lines)
	return nil
}

func contributorDetailLine(entries []model.ContributorEntry, highlight int) string {
	if highlight < 0 || highlight >= len(entries) {
		return ""
	}
	e := entries[highlight]
	return fmt.Sprintf("%s  %s  %s contributions", pointerMarker, e.Name, textfmt.Grouped(e.Count))
}
