package chart

import "github.com/charmbracelet/lipgloss"

// Palette is the fixed category palette, assigned in first-seen order.
var Palette = []lipgloss.Color{
	"#0366d6",
	"#28a745",
	"#ffc107",
	"#dc3545",
	"#6f42c1",
	"#fd7e14",
	"#20c997",
	"#6c757d",
	"#007bff",
	"#e83e8c",
}

var (
	commitColor      = lipgloss.Color("#0366d6")
	contributorColor = lipgloss.Color("#28a745")
	neutralColor     = lipgloss.Color("#6c757d")
)

// ColorTable assigns each category a palette color by first appearance.
// The same categories in the same order always get the same colors.
type ColorTable struct {
	slots map[string]int
	order []string
}

// NewColorTable assigns colors to categories. Duplicates keep their first slot.
func NewColorTable(categories []string) *ColorTable {
	t := &ColorTable{slots: make(map[string]int, len(categories))}
	for _, c := range categories {
		t.Add(c)
	}
	return t
}

// Add assigns the next slot to category if it has none and returns its slot.
func (t *ColorTable) Add(category string) int {
	if slot, ok := t.slots[category]; ok {
		return slot
	}
	slot := len(t.order)
	t.slots[category] = slot
	t.order = append(t.order, category)
	return slot
}

// Slot returns the category's slot.
func (t *ColorTable) Slot(category string) (int, bool) {
	if t == nil {
		return 0, false
	}
	slot, ok := t.slots[category]
	return slot, ok
}

// Color returns the category's color, cycling through Palette.
// Unknown categories get a neutral gray.
func (t *ColorTable) Color(category string) lipgloss.Color {
	slot, ok := t.Slot(category)
	if !ok {
		return neutralColor
	}
	return Palette[slot%len(Palette)]
}

// Len returns the number of categories.
func (t *ColorTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

func paint(opts Options, color lipgloss.Color, s string) string {
	if !opts.Color {
		return s
	}
	return lipgloss.NewStyle().Foreground(color).Render(s)
}

func paintFaint(opts Options, color lipgloss.Color, s string) string {
	if !opts.Color {
		return s
	}
	return lipgloss.NewStyle().Foreground(color).Faint(true).Render(s)
}

func bold(opts Options, s string) string {
	if !opts.Color {
		return s
	}
	return lipgloss.NewStyle().Bold(true).Render(s)
}

func paintBold(opts Options, color lipgloss.Color, s string) string {
	if !opts.Color {
		return s
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(s)
}
