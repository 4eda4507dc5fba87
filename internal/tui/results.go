package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/verte-zerg/repolens/internal/chart"
	"github.com/verte-zerg/repolens/internal/model"
	"github.com/verte-zerg/repolens/internal/report"
	"github.com/verte-zerg/repolens/internal/textfmt"
)

type tabKind int

const (
	tabOverview tabKind = iota
	tabLanguages
	tabActivity
	tabContributors
	tabProjects
	tabStatistics
)

var tabTitles = map[tabKind]string{
	tabOverview:     "Overview",
	tabLanguages:    "Languages",
	tabActivity:     "Activity",
	tabContributors: "Contributors",
	tabProjects:     "Projects",
	tabStatistics:   "Statistics",
}

const (
	languageChartHeight = 14
	minChartHeight      = 6
)

type resultsView struct {
	cm        *model.ChartModel
	style     chart.LanguageStyle
	color     bool
	layout    chart.Layout
	board     *chart.Board
	tabs      []tabKind
	active    int
	highlight int
	viewports map[tabKind]*viewport.Model
	projects  table.Model
	drawErr   error
	width     int
	height    int
}

func newResultsView(style chart.LanguageStyle, color bool) resultsView {
	layout := chart.DefaultLayout()
	return resultsView{
		style:     style,
		color:     color,
		layout:    layout,
		board:     chart.NewBoard(0, 0, layout.Names()...),
		highlight: -1,
		viewports: map[tabKind]*viewport.Model{},
		projects:  newProjectTable(),
	}
}

// set shows cm and builds one tab per present series.
func (r *resultsView) set(cm *model.ChartModel) {
	r.cm = cm
	r.active = 0
	r.highlight = -1
	r.tabs = []tabKind{tabOverview}
	if cm != nil {
		if cm.Languages != nil {
			r.tabs = append(r.tabs, tabLanguages)
		}
		if cm.Commits != nil {
			r.tabs = append(r.tabs, tabActivity)
		}
		if cm.Contributors != nil {
			r.tabs = append(r.tabs, tabContributors)
		}
		if cm.Projects != nil {
			r.tabs = append(r.tabs, tabProjects)
		}
		if cm.Stats != nil {
			r.tabs = append(r.tabs, tabStatistics)
		}
		t := report.ProjectTable(cm)
		r.projects.SetRows(lo.Map(t.Rows, func(row []string, _ int) table.Row { return table.Row(row) }))
		r.projects.GotoTop()
	}
	for _, tab := range r.tabs {
		if _, ok := r.viewports[tab]; !ok {
			vp := viewport.New(0, 0)
			r.viewports[tab] = &vp
		}
		r.viewports[tab].GotoTop()
	}
	r.render()
}

func (r *resultsView) resize(width, height int) {
	r.width = width
	r.height = height
	r.render()
}

func (r *resultsView) activeTab() tabKind {
	if r.active < 0 || r.active >= len(r.tabs) {
		return tabOverview
	}
	return r.tabs[r.active]
}

func (r *resultsView) titles() []string {
	return lo.Map(r.tabs, func(t tabKind, _ int) string { return tabTitles[t] })
}

// focus returns the surface whose elements the highlight cycles through.
func (r *resultsView) focus() (string, int) {
	if r.cm == nil {
		return "", 0
	}
	switch r.activeTab() {
	case tabLanguages:
		return r.layout.Languages, len(r.cm.Languages.Slices)
	case tabActivity:
		return r.layout.Commits, len(r.cm.Commits.Points)
	case tabContributors:
		return r.layout.Contributors, len(r.cm.Contributors.Entries)
	default:
		return "", 0
	}
}

func (r *resultsView) update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "left", "h", "shift+tab":
		r.switchTab(-1)
		return nil
	case "right", "l", "tab":
		r.switchTab(1)
		return nil
	case "[":
		r.moveHighlight(-1)
		return nil
	case "]":
		r.moveHighlight(1)
		return nil
	case "c":
		if r.activeTab() == tabLanguages {
			if r.style == chart.StylePie {
				r.style = chart.StyleBar
			} else {
				r.style = chart.StylePie
			}
			r.render()
		}
		return nil
	}
	var cmd tea.Cmd
	if r.activeTab() == tabProjects {
		r.projects, cmd = r.projects.Update(msg)
		return cmd
	}
	if vp, ok := r.viewports[r.activeTab()]; ok {
		*vp, cmd = vp.Update(msg)
	}
	return cmd
}

func (r *resultsView) switchTab(delta int) {
	if len(r.tabs) == 0 {
		return
	}
	r.active = (r.active + delta + len(r.tabs)) % len(r.tabs)
	r.highlight = -1
	r.render()
}

func (r *resultsView) moveHighlight(delta int) {
	_, n := r.focus()
	if n == 0 {
		return
	}
	switch {
	case r.highlight < 0 && delta > 0:
		r.highlight = 0
	case r.highlight < 0:
		r.highlight = n - 1
	default:
		r.highlight += delta
		if r.highlight < 0 || r.highlight >= n {
			r.highlight = -1
		}
	}
	r.render()
}

func (r *resultsView) render() {
	if r.cm == nil || r.width <= 0 || r.height <= 0 {
		return
	}
	r.sizeSurfaces()
	name, _ := r.focus()
	opts := chart.Options{Color: r.color, Focus: name, Index: r.highlight}
	r.drawErr = chart.Default(r.style).Draw(r.board, r.cm, r.layout, opts)

	for _, tab := range r.tabs {
		vp := r.viewports[tab]
		vp.Width = r.width
		vp.Height = r.height
		vp.SetContent(r.content(tab))
	}
	r.projects.SetWidth(r.width)
	r.projects.SetHeight(maxInt(2, r.height-1))
}

func (r *resultsView) sizeSurfaces() {
	chartHeight := maxInt(minChartHeight, r.height-2)
	r.board.Surface(r.layout.Languages).Resize(r.width, minInt(languageChartHeight, chartHeight))
	r.board.Surface(r.layout.Commits).Resize(r.width, chartHeight)
	contributors := 0
	if r.cm.Contributors != nil {
		contributors = len(r.cm.Contributors.Entries)
	}
	r.board.Surface(r.layout.Contributors).Resize(r.width, maxInt(minChartHeight, minInt(contributors+1, chartHeight)))
}

func (r *resultsView) content(tab tabKind) string {
	switch tab {
	case tabOverview:
		return r.overview()
	case tabLanguages:
		lines := []string{r.surface(r.layout.Languages, "No language data recorded."), ""}
		lines = append(lines, tableLines(report.LanguageTable(r.cm))...)
		return strings.Join(lines, "\n")
	case tabActivity:
		return r.surface(r.layout.Commits, "No commit activity recorded.")
	case tabContributors:
		return r.surface(r.layout.Contributors, "No contributors recorded.")
	case tabStatistics:
		lines := []string{titleStyle.Render(lo.CoalesceOrEmpty(r.cm.Stats.Title, "Statistics")), ""}
		lines = append(lines, tableLines(report.StatTable(r.cm))...)
		return strings.Join(lines, "\n")
	default:
		return ""
	}
}

func (r *resultsView) surface(name, empty string) string {
	s := r.board.Surface(name)
	if s == nil || s.Hidden() {
		return tableMutedStyle.Render(empty)
	}
	return s.View()
}

func (r *resultsView) overview() string {
	h := r.cm.Header
	lines := []string{titleStyle.Render(lo.CoalesceOrEmpty(h.Title, h.Path, textfmt.Unknown))}
	if h.Subtitle != "" {
		lines = append(lines, accentStyle.Render(h.Subtitle))
	}
	if h.Description != "" {
		lines = append(lines, wrapText(r.width, segment{text: h.Description, style: lipgloss.NewStyle()}))
	}
	if facts := h.Facts(); len(facts) > 0 {
		lines = append(lines, wrapText(r.width, segment{text: strings.Join(facts, " · "), style: headerStyle}))
	}
	if h.ProfileURL != "" {
		lines = append(lines, tableMutedStyle.Render(textfmt.Truncate(h.ProfileURL, r.width)))
	}
	lines = append(lines, "", renderMetricCards(r.cm.Metrics, r.width))
	return strings.Join(lines, "\n")
}

func (r *resultsView) view() string {
	if r.activeTab() == tabProjects {
		return r.projects.View()
	}
	vp, ok := r.viewports[r.activeTab()]
	if !ok {
		return ""
	}
	return vp.View()
}

func tableLines(t report.Table) []string {
	lines := t.Lines()
	if len(lines) > 0 {
		lines[0] = cardTitleStyle.Render(lines[0])
	}
	return lines
}

func renderMetricCards(metrics []model.Metric, width int) string {
	if len(metrics) == 0 {
		return tableMutedStyle.Render("No metrics recorded.")
	}
	cards := lo.Map(metrics, func(m model.Metric, _ int) string {
		return metricCard(m.Label, textfmt.CompactCount(m.Value))
	})
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	rows := lo.Map(lo.Chunk(cards, 3), func(row []string, _ int) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, row...)
	})
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func metricCard(label, value string) string {
	content := cardTitleStyle.Render(label) + "\n" + cardValueStyle.Render(value)
	return cardStyle.Width(22).Render(content)
}

func newProjectTable() table.Model {
	columns := []table.Column{
		{Title: "Project", Width: 24},
		{Title: "Language", Width: 12},
		{Title: "Stars", Width: 8},
		{Title: "Forks", Width: 8},
		{Title: "Commits", Width: 8},
		{Title: "Last push", Width: 13},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(2),
	)
	t.SetStyles(projectTableStyles())
	return t
}

func projectTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}
