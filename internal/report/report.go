// Package report writes analytics and search history as plain text.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/repolens/internal/chart"
	"github.com/verte-zerg/repolens/internal/model"
)

const (
	// DefaultWidth is used when the output width is unknown.
	DefaultWidth    = 80
	chartHeight     = 12
	maxChartHeight  = 22
	sectionRuleRune = "─"
)

// Options control report layout.
type Options struct {
	Width int
	Color bool
	Style chart.LanguageStyle
}

// Write renders cm with every applicable chart and table.
func Write(w io.Writer, cm *model.ChartModel, opts Options) error {
	if cm == nil {
		return fmt.Errorf("nothing to report")
	}
	width := opts.Width
	if width <= 0 {
		width = DefaultWidth
	}

	layout := chart.DefaultLayout()
	board := chart.NewBoard(width, chartHeight, layout.Names()...)
	if cm.Contributors != nil {
		rows := len(cm.Contributors.Entries) + 1
		board.Surface(layout.Contributors).Resize(width, clamp(rows, chartHeight/2, maxChartHeight))
	}
	drawErr := chart.Default(opts.Style).Draw(board, cm, layout, chart.Options{Color: opts.Color})
	if drawErr != nil && !errors.Is(drawErr, chart.ErrEmptySeries) {
		return drawErr
	}

	b := &builder{width: width}
	b.title(kindLabel(cm.Kind))
	b.lines(HeaderLines(cm.Header)...)

	b.section("Overview")
	b.lines(MetricTable(cm).Lines()...)

	if cm.Languages != nil {
		b.section("Languages")
		b.surface(board.Surface(layout.Languages), "No language data available.")
		b.blank()
		b.lines(LanguageTable(cm).Lines()...)
	}
	if cm.Commits != nil {
		b.section("Commit Activity")
		b.surface(board.Surface(layout.Commits), "No commit activity recorded.")
	}
	if cm.Contributors != nil {
		b.section("Top Contributors")
		b.surface(board.Surface(layout.Contributors), "No contributors recorded.")
	}
	if cm.Projects != nil {
		b.section("Top Projects")
		b.lines(ProjectTable(cm).Lines()...)
	}
	if cm.Stats != nil {
		b.section(cm.Stats.Title)
		b.lines(StatTable(cm).Lines()...)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

type builder struct {
	strings.Builder
	width int
}

func (b *builder) title(s string) {
	b.WriteString(s)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat("═", min(b.width, max(len([]rune(s)), 1))))
	b.WriteByte('\n')
}

func (b *builder) section(name string) {
	b.blank()
	b.WriteString(name)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(sectionRuleRune, min(b.width, max(len([]rune(name)), 1))))
	b.WriteByte('\n')
}

func (b *builder) lines(lines ...string) {
	for _, line := range lines {
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteByte('\n')
	}
}

func (b *builder) surface(s *chart.Surface, empty string) {
	if s == nil || s.Hidden() {
		b.lines(empty)
		return
	}
	b.lines(s.Lines()...)
}

func (b *builder) blank() {
	b.WriteByte('\n')
}

func clamp(v, lower, upper int) int {
	return max(lower, min(v, upper))
}
