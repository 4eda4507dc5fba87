package report

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/verte-zerg/repolens/internal/model"
	"github.com/verte-zerg/repolens/internal/textfmt"
)

// MetricTable lists the headline metrics with grouped values.
func MetricTable(cm *model.ChartModel) Table {
	rows := lo.Map(cm.Metrics, func(m model.Metric, _ int) []string {
		return []string{m.Label, textfmt.GroupedCount(m.Value)}
	})
	return Table{Headers: []string{"Metric", "Value"}, Rows: rows, Right: map[int]bool{1: true}}
}

// LanguageTable lists each category with its share and approximate weight.
// It is empty when the model has no language series.
func LanguageTable(cm *model.ChartModel) Table {
	t := Table{Headers: []string{"Language", "Share", "Approx. weight"}, Right: map[int]bool{1: true, 2: true}}
	if cm.Languages == nil {
		return t
	}
	t.Rows = lo.Map(cm.Languages.Slices, func(s model.LanguageSlice, _ int) []string {
		weight := textfmt.Unknown
		if s.HasWeight {
			weight = "~" + textfmt.Bytes(s.ApproxWeight)
		}
		return []string{s.Category, textfmt.Percent(s.Percentage), weight}
	})
	return t
}

// ProjectTable lists an account's top projects.
func ProjectTable(cm *model.ChartModel) Table {
	t := Table{
		Headers: []string{"Project", "Language", "Stars", "Forks", "Commits", "Last push"},
		Right:   map[int]bool{2: true, 3: true, 4: true},
	}
	if cm.Projects == nil {
		return t
	}
	t.Rows = lo.Map(cm.Projects.Rows, func(r model.ProjectRow, _ int) []string {
		return []string{
			lo.CoalesceOrEmpty(r.Name, r.FullName, textfmt.Unknown),
			lo.CoalesceOrEmpty(r.Language, textfmt.Unknown),
			textfmt.GroupedCount(r.Stars),
			textfmt.GroupedCount(r.Forks),
			textfmt.GroupedCount(r.Commits),
			textfmt.Date(r.LastPush),
		}
	})
	return t
}

// StatTable lists the commit or repository statistics.
func StatTable(cm *model.ChartModel) Table {
	t := Table{Headers: []string{"Statistic", "Value"}, Right: map[int]bool{1: true}}
	if cm.Stats == nil {
		return t
	}
	t.Rows = lo.Map(cm.Stats.Rows, func(r model.StatRow, _ int) []string {
		return []string{r.Label, r.Value}
	})
	return t
}

// HeaderLines returns the title block: title, subtitle, description, facts and profile link.
func HeaderLines(h model.Header) []string {
	lines := []string{lo.CoalesceOrEmpty(h.Title, h.Path, textfmt.Unknown)}
	if h.Subtitle != "" {
		lines = append(lines, h.Subtitle)
	}
	if h.Description != "" {
		lines = append(lines, h.Description)
	}
	if facts := h.Facts(); len(facts) > 0 {
		lines = append(lines, strings.Join(facts, " · "))
	}
	if h.ProfileURL != "" {
		lines = append(lines, h.ProfileURL)
	}
	return lines
}

func kindLabel(k model.Kind) string {
	switch k {
	case model.KindAccount:
		return "Account Analytics"
	case model.KindProject:
		return "Project Analytics"
	default:
		return fmt.Sprintf("%s analytics", textfmt.Title(k.String()))
	}
}
