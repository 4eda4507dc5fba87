package model

import "time"

// ChartModel is the shape-independent view of one payload.
// A nil series means the series does not apply to this payload.
type ChartModel struct {
	Kind         Kind
	Header       Header
	Metrics      []Metric
	Languages    *LanguageSeries
	Commits      *CommitSeries
	Contributors *ContributorSeries
	Projects     *ProjectTable
	// Stats holds commit statistics for projects and repository statistics for accounts.
	Stats *StatTable
}

// Header describes the account or project the model was built from.
type Header struct {
	// Path is "name" or "owner/name" on the web host.
	Path         string
	ProfileURL   string
	AvatarURL    string
	Title        string
	Subtitle     string
	Description  string
	CreatedLabel string
	UpdatedLabel string
	Details      []string
}

// Facts returns Details followed by the created and updated labels.
func (h Header) Facts() []string {
	facts := make([]string, 0, len(h.Details)+2)
	facts = append(facts, h.Details...)
	for _, label := range []string{h.CreatedLabel, h.UpdatedLabel} {
		if label != "" {
			facts = append(facts, label)
		}
	}
	return facts
}

// Count is an integer that may be missing from the payload.
type Count struct {
	Value int64
	Known bool
}

// CountOf converts an optional payload field.
func CountOf(v *int64) Count {
	if v == nil {
		return Count{}
	}
	return Count{Value: *v, Known: true}
}

// Metric is one labelled headline number.
type Metric struct {
	Label string
	Value Count
}

// LanguageSlice is one category of the language distribution.
type LanguageSlice struct {
	Category   string
	Percentage float64
	// ApproxWeight is an estimate derived from counts or sizes, not a measured byte total.
	ApproxWeight float64
	HasWeight    bool
}

// LanguageSeries holds the language distribution in display order.
type LanguageSeries struct {
	Slices []LanguageSlice
}

// Categories returns the category names in order.
func (s *LanguageSeries) Categories() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.Slices))
	for i, slice := range s.Slices {
		out[i] = slice.Category
	}
	return out
}

// CommitPoint is one day of commit activity.
type CommitPoint struct {
	Date      time.Time
	Commits   int64
	Additions Count
	Deletions Count
}

// CommitSeries holds commit points sorted by date.
type CommitSeries struct {
	Points []CommitPoint
}

// ContributorEntry is one contributor and their contribution count.
type ContributorEntry struct {
	Name  string
	Count int64
}

// ContributorSeries holds contributors in backend order.
type ContributorSeries struct {
	Entries []ContributorEntry
}

// ProjectRow is one row of an account's project table.
type ProjectRow struct {
	Name     string
	FullName string
	Language string
	Stars    Count
	Forks    Count
	Commits  Count
	LastPush time.Time
}

// ProjectTable lists an account's top projects.
type ProjectTable struct {
	Rows []ProjectRow
}

// StatRow is one label/value line of a StatTable.
type StatRow struct {
	Label string
	Value string
}

// StatTable is a titled list of preformatted statistics.
type StatTable struct {
	Title string
	Rows  []StatRow
}
