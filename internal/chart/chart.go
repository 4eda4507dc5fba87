// Package chart renders normalized analytics series as terminal charts.
package chart

import (
	"errors"
	"fmt"
	"strings"

	"github.com/verte-zerg/repolens/internal/model"
)

// ErrEmptySeries is returned by a renderer asked to draw nothing.
var ErrEmptySeries = errors.New("empty series")

// Default surface names.
const (
	LanguageChart     = "languageChart"
	CommitChart       = "commitChart"
	ContributorsChart = "contributorsChart"
)

const (
	minSurfaceWidth  = 20
	minSurfaceHeight = 4
)

// Surface is a named, fixed-size drawing target.
type Surface struct {
	name   string
	width  int
	height int
	lines  []string
	hidden bool
}

// NewSurface returns an empty surface.
func NewSurface(name string, width, height int) *Surface {
	s := &Surface{name: name}
	s.Resize(width, height)
	return s
}

// Name returns the surface name.
func (s *Surface) Name() string { return s.name }

// Width returns the width in terminal columns.
func (s *Surface) Width() int { return s.width }

// Height returns the height in terminal rows.
func (s *Surface) Height() int { return s.height }

// Resize changes the drawing area. Existing content is kept until the next draw.
func (s *Surface) Resize(width, height int) {
	s.width = maxInt(width, minSurfaceWidth)
	s.height = maxInt(height, minSurfaceHeight)
}

// Clear removes the drawn content.
func (s *Surface) Clear() {
	s.lines = nil
}

// Hide clears the surface and marks it as not applicable.
func (s *Surface) Hide() {
	s.lines = nil
	s.hidden = true
}

// Hidden reports whether the last draw hid the surface.
func (s *Surface) Hidden() bool { return s.hidden }

// Lines returns a copy of the drawn rows.
func (s *Surface) Lines() []string {
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

// View returns the drawn rows joined by newlines.
func (s *Surface) View() string {
	return strings.Join(s.lines, "\n")
}

func (s *Surface) draw(lines []string) {
	s.lines = lines
	s.hidden = false
}

// Board holds the surfaces a results view draws onto.
type Board struct {
	order    []string
	surfaces map[string]*Surface
}

// NewBoard creates one surface per name, all of the same size.
func NewBoard(width, height int, names ...string) *Board {
	b := &Board{surfaces: make(map[string]*Surface, len(names))}
	for _, name := range names {
		if _, ok := b.surfaces[name]; ok {
			continue
		}
		b.order = append(b.order, name)
		b.surfaces[name] = NewSurface(name, width, height)
	}
	return b
}

// Surface returns the named surface or nil.
func (b *Board) Surface(name string) *Surface {
	if b == nil {
		return nil
	}
	return b.surfaces[name]
}

// Names returns the surface names in creation order.
func (b *Board) Names() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Resize resizes every surface.
func (b *Board) Resize(width, height int) {
	for _, s := range b.surfaces {
		s.Resize(width, height)
	}
}

// Options control color output and the highlighted element.
type Options struct {
	Color bool
	// Focus names the surface whose element at Index is highlighted.
	Focus string
	Index int
}

func (o Options) highlight(s *Surface) int {
	if o.Focus == "" || o.Focus != s.name {
		return -1
	}
	return o.Index
}

// Layout maps each series to the surface it is drawn on.
type Layout struct {
	Languages    string
	Commits      string
	Contributors string
}

// DefaultLayout uses the default surface names.
func DefaultLayout() Layout {
	return Layout{Languages: LanguageChart, Commits: CommitChart, Contributors: ContributorsChart}
}

// Names returns the surface names of l.
func (l Layout) Names() []string {
	return []string{l.Languages, l.Commits, l.Contributors}
}

// LanguageStyle selects the language renderer.
type LanguageStyle int

const (
	StylePie LanguageStyle = iota
	StyleBar
)

// ParseLanguageStyle maps a flag or config value to a LanguageStyle.
func ParseLanguageStyle(s string) (LanguageStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pie":
		return StylePie, nil
	case "bar":
		return StyleBar, nil
	default:
		return StylePie, fmt.Errorf("unknown chart style %q (want pie or bar)", s)
	}
}

func (l LanguageStyle) String() string {
	if l == StyleBar {
		return "bar"
	}
	return "pie"
}

// Renderers draws a ChartModel. A nil field hides its surface.
type Renderers struct {
	Languages    func(*Surface, *model.LanguageSeries, *ColorTable, Options) error
	Commits      func(*Surface, *model.CommitSeries, Options) error
	Contributors func(*Surface, *model.ContributorSeries, Options) error
}

// Default returns the standard renderers with the given language style.
func Default(style LanguageStyle) Renderers {
	r := Renderers{Languages: Pie, Commits: TimeSeries, Contributors: HBar}
	if style == StyleBar {
		r.Languages = Bar
	}
	return r
}

// Draw renders every series of cm onto the surfaces named by layout.
// Absent series hide their surface and never reach a renderer.
func (r Renderers) Draw(b *Board, cm *model.ChartModel, layout Layout, opts Options) error {
	if cm == nil {
		for _, name := range layout.Names() {
			if s := b.Surface(name); s != nil {
				s.Hide()
			}
		}
		return nil
	}

	var errs []error
	draw := func(name string, present bool, render func(*Surface) error) {
		s := b.Surface(name)
		if s == nil {
			return
		}
		if !present {
			s.Hide()
			return
		}
		if err := render(s); err != nil {
			s.Hide()
			errs = append(errs, fmt.Errorf("failed to draw %s: %w", name, err))
		}
	}

	colors := NewColorTable(cm.Languages.Categories())
	draw(layout.Languages, r.Languages != nil && cm.Languages != nil, func(s *Surface) error {
		return r.Languages(s, cm.Languages, colors, opts)
	})
	draw(layout.Commits, r.Commits != nil && cm.Commits != nil, func(s *Surface) error {
		return r.Commits(s, cm.Commits, opts)
	})
	draw(layout.Contributors, r.Contributors != nil && cm.Contributors != nil, func(s *Surface) error {
		return r.Contributors(s, cm.Contributors, opts)
	})
	return errors.Join(errs...)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
