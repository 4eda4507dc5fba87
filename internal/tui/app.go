// Package tui provides the Bubble Tea analytics viewer.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/repolens/internal/chart"
	"github.com/verte-zerg/repolens/internal/model"
	"github.com/verte-zerg/repolens/internal/normalize"
	"github.com/verte-zerg/repolens/internal/query"
	"github.com/verte-zerg/repolens/internal/viewstate"
)

// Fetcher retrieves the analytics payload for one query.
type Fetcher interface {
	Fetch(ctx context.Context, ref query.Ref) (model.Record, error)
}

// Recorder persists fetched records and the search log.
type Recorder interface {
	SaveRecord(ctx context.Context, rec model.Record) (int64, error)
	LogSearch(ctx context.Context, entry model.SearchEntry) (int64, error)
}

// Options configure a Model. Recorder and Logger may be nil.
type Options struct {
	Resolver *query.Resolver
	Fetcher  Fetcher
	Recorder Recorder
	Logger   *slog.Logger
	Mode     query.Mode
	Style    chart.LanguageStyle
	Color    bool
	Examples []string
	Now      func() time.Time
}

type fetchedMsg struct {
	ticket  viewstate.Ticket
	ref     query.Ref
	rec     model.Record
	err     error
	elapsed time.Duration
}

// Model is the root Bubble Tea model.
type Model struct {
	resolver *query.Resolver
	fetcher  Fetcher
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time

	state   *viewstate.State
	search  searchForm
	results resultsView
	spinner spinner.Model
	notice  string
	width   int
	height  int
}

// NewModel builds the viewer in the input phase.
func NewModel(opts Options) *Model {
	if opts.Resolver == nil {
		opts.Resolver = query.NewResolver("")
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle
	m := &Model{
		resolver: opts.Resolver,
		fetcher:  opts.Fetcher,
		recorder: opts.Recorder,
		logger:   opts.Logger,
		now:      opts.Now,
		state:    viewstate.New(opts.Mode),
		search:   newSearchForm(opts.Mode, opts.Resolver.Parser, opts.Examples),
		results:  newResultsView(opts.Style, opts.Color),
		spinner:  sp,
	}
	m.search.focus()
	return m
}

// ShowRecord opens a stored record instead of starting at the search form.
// An expired record shows the empty view.
func (m *Model) ShowRecord(rec model.Record) {
	if err := m.state.Open(rec, m.now(), normalize.WithHost(m.resolver.Parser.Host())); err != nil {
		m.logger.Info("stored record not shown", "identifier", rec.Identifier, "err", err)
		return
	}
	m.search.blur()
	m.results.set(m.state.Model())
}

// ShowEmpty starts at the empty view, with reason when one is known.
func (m *Model) ShowEmpty(reason error) {
	m.state.Empty(reason)
	m.search.blur()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.state.Phase() == viewstate.PhaseInput || m.state.Phase() == viewstate.PhaseError {
		return m.search.focus()
	}
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.search.setWidth(msg.Width)
		m.results.resize(msg.Width, m.bodyHeight())
		return m, nil
	case spinner.TickMsg:
		if !m.state.Pending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case fetchedMsg:
		return m, m.handleFetched(msg)
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.state.Cancel()
			return m, tea.Quit
		}
		switch m.state.Phase() {
		case viewstate.PhaseLoading:
			return m, m.handleLoadingKey(msg)
		case viewstate.PhaseResults:
			return m, m.handleResultsKey(msg)
		case viewstate.PhaseEmpty:
			return m, m.handleEmptyKey(msg)
		default:
			return m, m.handleSearchKey(msg)
		}
	}
	if m.state.Phase() == viewstate.PhaseInput || m.state.Phase() == viewstate.PhaseError {
		return m, m.search.update(msg)
	}
	return m, nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	switch key {
	case "enter":
		return m.submit()
	case "tab", "down":
		return m.search.moveField(1)
	case "shift+tab", "up":
		return m.search.moveField(-1)
	case "ctrl+t":
		mode := nextMode(m.state.Mode())
		m.state.SetMode(mode)
		return m.search.setMode(mode)
	case "esc":
		m.state.SetMode(m.state.Mode())
		return nil
	}
	if i, ok := exampleIndex(key); ok {
		return m.runExample(i)
	}
	return m.search.update(msg)
}

// runExample submits example i. A pending query is superseded.
func (m *Model) runExample(i int) tea.Cmd {
	ex, ok := m.search.example(i)
	if !ok {
		return nil
	}
	mode := m.search.fill(ex)
	m.state.SetMode(mode)
	m.search.focus()
	return m.submit()
}

func (m *Model) handleLoadingKey(msg tea.KeyMsg) tea.Cmd {
	if i, ok := exampleIndex(msg.String()); ok {
		return m.runExample(i)
	}
	if msg.String() != "esc" {
		return nil
	}
	ref := m.state.Ref()
	if m.state.Cancel() {
		m.logger.Info("query cancelled", "kind", ref.Kind().String(), "identifier", ref.Identifier())
		m.notice = "Cancelled " + ref.Identifier() + "."
	}
	return m.search.focus()
}

func (m *Model) handleResultsKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return tea.Quit
	case "/", "esc":
		return m.newSearch()
	}
	cmd := m.results.update(msg)
	m.logDrawError()
	return cmd
}

func (m *Model) handleEmptyKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		return tea.Quit
	case "enter", "esc", "/":
		return m.newSearch()
	}
	return nil
}

func (m *Model) newSearch() tea.Cmd {
	m.state.Reset()
	m.notice = ""
	return m.search.setMode(m.state.Mode())
}

func exampleIndex(key string) (int, bool) {
	if len(key) != 5 || !strings.HasPrefix(key, "alt+") {
		return 0, false
	}
	d := key[4]
	if d < '1' || d > '9' {
		return 0, false
	}
	return int(d - '1'), true
}

// submit resolves the active form and starts a fetch, superseding any pending one.
func (m *Model) submit() tea.Cmd {
	m.notice = ""
	mode := m.state.Mode()
	ref, err := m.resolver.Resolve(mode, m.search.input())
	if err != nil {
		m.state.Reject(err)
		m.logger.Info("search rejected", "mode", mode.String(), "input", m.search.raw(), "err", err)
		m.logSearch(model.SearchEntry{
			Kind:       mode.Kind(),
			Identifier: m.search.raw(),
			ErrorCode:  model.CodeName(err),
		})
		return nil
	}
	if m.fetcher == nil {
		m.state.Reject(model.NetworkUnavailable(errors.New("no analytics backend configured")))
		return nil
	}
	ticket, ctx := m.state.Begin(context.Background(), ref)
	m.search.blur()
	m.logger.Debug("query started", "ticket", uint64(ticket), "kind", ref.Kind().String(), "identifier", ref.Identifier())
	return tea.Batch(m.spinner.Tick, fetchCmd(ctx, m.fetcher, ticket, ref, m.now))
}

func fetchCmd(ctx context.Context, f Fetcher, ticket viewstate.Ticket, ref query.Ref, now func() time.Time) tea.Cmd {
	return func() tea.Msg {
		start := now()
		rec, err := f.Fetch(ctx, ref)
		return fetchedMsg{ticket: ticket, ref: ref, rec: rec, err: err, elapsed: now().Sub(start)}
	}
}

func (m *Model) handleFetched(msg fetchedMsg) tea.Cmd {
	if !m.state.Current(msg.ticket) {
		m.logger.Debug("stale result discarded", "ticket", uint64(msg.ticket), "identifier", msg.ref.Identifier())
		return nil
	}
	entry := model.SearchEntry{
		Kind:           msg.ref.Kind(),
		Identifier:     msg.ref.Identifier(),
		ProcessingTime: msg.elapsed,
	}
	err := msg.err
	var opened *model.ChartModel
	if err == nil {
		opened, err = normalize.Open(msg.rec, m.now(), normalize.WithHost(m.resolver.Parser.Host()))
	}
	if err != nil {
		m.state.Fail(msg.ticket, err)
		entry.ErrorCode = model.CodeName(err)
		m.logSearch(entry)
		m.logger.Info("query failed", "identifier", entry.Identifier, "code", entry.ErrorCode, "err", err)
		return m.search.focus()
	}

	m.saveRecord(msg.rec)
	m.state.Resolve(msg.ticket, opened)
	m.results.set(opened)
	m.logDrawError()
	entry.Success = true
	m.logSearch(entry)
	m.logger.Info("query resolved", "identifier", entry.Identifier, "elapsed_ms", msg.elapsed.Milliseconds())
	return nil
}

func (m *Model) saveRecord(rec model.Record) {
	if m.recorder == nil {
		return
	}
	if _, err := m.recorder.SaveRecord(context.Background(), rec); err != nil {
		m.logger.Warn("failed to save record", "identifier", rec.Identifier, "err", err)
		m.notice = "Could not save this result: " + err.Error()
	}
}

func (m *Model) logSearch(entry model.SearchEntry) {
	if m.recorder == nil {
		return
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = m.now()
	}
	if _, err := m.recorder.LogSearch(context.Background(), entry); err != nil {
		m.logger.Warn("failed to log search", "identifier", entry.Identifier, "err", err)
	}
}

func (m *Model) logDrawError() {
	if err := m.results.drawErr; err != nil && !errors.Is(err, chart.ErrEmptySeries) {
		m.logger.Warn("chart draw failed", "err", err)
	}
}

func (m *Model) bodyHeight() int {
	return maxInt(1, m.height-tabsHeight()-2)
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	var header, body, footer string
	switch m.state.Phase() {
	case viewstate.PhaseLoading:
		header = titleStyle.Render("repolens")
		body = m.loadingView()
		footer = "esc: cancel  ctrl+c: quit"
	case viewstate.PhaseEmpty:
		header = titleStyle.Render("repolens")
		body = m.emptyView()
		footer = "enter: new search  q: quit"
	case viewstate.PhaseResults:
		header = renderTabs(m.results.titles(), m.results.active)
		body = m.results.view()
		footer = "←/→: tab  [/]: highlight  c: chart style  /: new search  q: quit"
	default:
		header = titleStyle.Render("repolens") + headerStyle.Render("  analytics for "+m.resolver.Parser.Host())
		title, msg := "", ""
		if m.state.Phase() == viewstate.PhaseError {
			title, msg = m.state.ErrorDetail()
		}
		body = m.search.view(title, msg)
		footer = "enter: search  tab: next field  ctrl+t: mode  ctrl+c: quit"
	}
	if m.notice != "" {
		footer = m.notice + "  " + footer
	}
	headerHeight := lipgloss.Height(header) + 1
	footerHeight := 1
	bodyHeight := maxInt(1, m.height-headerHeight-footerHeight)
	parts := []string{
		fitLines(header, m.width, headerHeight),
		fitLines(body, m.width, bodyHeight),
		headerStyle.Render(truncateLine(footer, m.width)),
	}
	return strings.Join(parts, "\n")
}

func (m *Model) loadingView() string {
	ref := m.state.Ref()
	label := "account"
	if ref.Kind() == model.KindProject {
		label = "project"
	}
	return fmt.Sprintf("\n%s Fetching %s analytics for %s...", m.spinner.View(), label, accentStyle.Render(ref.Identifier()))
}

func (m *Model) emptyView() string {
	title, msg := "No Data", "There is nothing to show yet. Start a new search."
	if err := m.state.Err(); err != nil {
		title, msg = model.Describe(err)
	}
	content := titleStyle.Render(title) + "\n\n" + wrapText(modalWidth(m.width)-6, segment{text: msg, style: lipgloss.NewStyle()})
	return "\n" + modalStyle.Width(modalWidth(m.width)).Render(content)
}
