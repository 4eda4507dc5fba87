package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/repolens/internal/model"
	"github.com/verte-zerg/repolens/internal/query"
)

var modeTitles = []string{"Account", "Project", "URL"}

// searchForm holds one text input per field of every mode, so switching
// modes keeps what was typed.
type searchForm struct {
	mode     query.Mode
	account  textinput.Model
	owner    textinput.Model
	project  textinput.Model
	url      textinput.Model
	field    int
	parser   query.Parser
	examples []string
	width    int
}

func newSearchForm(mode query.Mode, parser query.Parser, examples []string) searchForm {
	f := searchForm{
		mode:     mode,
		account:  newSearchInput("Account: ", "torvalds"),
		owner:    newSearchInput("Owner:   ", "golang"),
		project:  newSearchInput("Project: ", "go"),
		url:      newSearchInput("URL: ", "https://"+parser.Host()+"/owner/project"),
		parser:   parser,
		examples: examples,
	}
	return f
}

func newSearchInput(prompt, placeholder string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Placeholder = placeholder
	input.CharLimit = 256
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (f *searchForm) fields() []*textinput.Model {
	switch f.mode {
	case query.ModeProject:
		return []*textinput.Model{&f.owner, &f.project}
	case query.ModeURL:
		return []*textinput.Model{&f.url}
	default:
		return []*textinput.Model{&f.account}
	}
}

func (f *searchForm) all() []*textinput.Model {
	return []*textinput.Model{&f.account, &f.owner, &f.project, &f.url}
}

func (f *searchForm) setWidth(width int) {
	f.width = width
	for _, input := range f.all() {
		input.Width = maxInt(10, minInt(width, 72)-lipgloss.Width(input.Prompt)-2)
	}
}

func (f *searchForm) setMode(mode query.Mode) tea.Cmd {
	f.mode = mode
	f.field = 0
	return f.focus()
}

func nextMode(mode query.Mode) query.Mode {
	return query.Mode((int(mode) + 1) % len(modeTitles))
}

func (f *searchForm) focus() tea.Cmd {
	f.blur()
	fields := f.fields()
	if f.field >= len(fields) {
		f.field = 0
	}
	return fields[f.field].Focus()
}

func (f *searchForm) blur() {
	for _, input := range f.all() {
		input.Blur()
	}
}

func (f *searchForm) moveField(delta int) tea.Cmd {
	fields := f.fields()
	f.field = (f.field + delta + len(fields)) % len(fields)
	return f.focus()
}

func (f *searchForm) update(msg tea.Msg) tea.Cmd {
	fields := f.fields()
	input := fields[f.field]
	var cmd tea.Cmd
	*input, cmd = input.Update(msg)
	return cmd
}

func (f *searchForm) input() query.Input {
	return query.Input{
		Account: f.account.Value(),
		Owner:   f.owner.Value(),
		Project: f.project.Value(),
		URL:     f.url.Value(),
	}
}

// raw returns the text submitted in the active mode, for the search log.
func (f *searchForm) raw() string {
	switch f.mode {
	case query.ModeProject:
		owner := strings.TrimSpace(f.owner.Value())
		project := strings.TrimSpace(f.project.Value())
		if project == "" {
			return owner
		}
		return owner + "/" + project
	case query.ModeURL:
		return strings.TrimSpace(f.url.Value())
	default:
		return strings.TrimSpace(f.account.Value())
	}
}

// fill loads identifier into the fields of the mode it belongs to.
func (f *searchForm) fill(identifier string) query.Mode {
	mode, in := query.Guess(identifier)
	f.account.SetValue(in.Account)
	f.owner.SetValue(in.Owner)
	f.project.SetValue(in.Project)
	f.url.SetValue(in.URL)
	f.mode = mode
	f.field = 0
	return mode
}

func (f *searchForm) example(i int) (string, bool) {
	if i < 0 || i >= len(f.examples) {
		return "", false
	}
	return f.examples[i], true
}

// preview describes what the URL field currently points at.
func (f *searchForm) preview() string {
	raw := strings.TrimSpace(f.url.Value())
	if raw == "" {
		return headerStyle.Render(fmt.Sprintf("Supports: https://%s/account or https://%s/owner/project", f.parser.Host(), f.parser.Host()))
	}
	target, ok := f.parser.Parse(raw)
	if !ok {
		return errorStyle.Render("Not a recognised " + f.parser.Host() + " URL")
	}
	if target.Kind == model.KindProject {
		return okStyle.Render(fmt.Sprintf("Valid project URL detected: %s/%s", target.Owner, target.Project))
	}
	return okStyle.Render("Valid account URL detected: " + target.Account)
}

func (f *searchForm) view(errTitle, errMsg string) string {
	width := maxInt(20, minInt(f.width, 80))
	var b strings.Builder
	b.WriteString(renderTabs(modeTitles, int(f.mode)))
	b.WriteString("\n\n")
	for _, input := range f.fields() {
		b.WriteString(input.View())
		b.WriteString("\n")
	}
	if f.mode == query.ModeURL {
		b.WriteString("\n")
		b.WriteString(truncateLine(f.preview(), width))
		b.WriteString("\n")
	}
	if errTitle != "" {
		b.WriteString("\n")
		box := errorBoxStyle.Width(width - 2)
		content := wrapText(width-6,
			segment{text: errTitle + ": ", style: errorStyle.Bold(true)},
			segment{text: errMsg, style: lipgloss.NewStyle()},
		)
		b.WriteString(box.Render(content))
		b.WriteString("\n")
	}
	if len(f.examples) > 0 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("Examples:"))
		b.WriteString("\n")
		for i, ex := range f.examples {
			if i >= 9 {
				break
			}
			b.WriteString(fmt.Sprintf("  %s %s\n", accentStyle.Render(fmt.Sprintf("alt+%d", i+1)), ex))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
