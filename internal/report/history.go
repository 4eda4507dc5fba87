package report

import (
	"fmt"
	"io"
	"time"

	"github.com/samber/lo"

	"github.com/verte-zerg/repolens/internal/model"
	"github.com/verte-zerg/repolens/internal/textfmt"
)

// WriteHistory renders the search log summary followed by the recent searches.
func WriteHistory(w io.Writer, summary model.SearchSummary, recent []model.SearchEntry) error {
	b := &builder{width: DefaultWidth}
	b.title("Search History")
	if summary.Total == 0 {
		b.lines("No searches recorded yet.")
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.lines(Table{
		Headers: []string{"Summary", "Value"},
		Rows: [][]string{
			{"Total searches", textfmt.Grouped(int64(summary.Total))},
			{"Successful", textfmt.Grouped(int64(summary.Successful))},
			{"Failed", textfmt.Grouped(int64(summary.Total - summary.Successful))},
			{"Success rate", textfmt.Percent(summary.SuccessRate())},
			{"Average processing", textfmt.Duration(summary.AverageProcessing)},
		},
		Right: map[int]bool{1: true},
	}.Lines()...)

	if len(summary.TopAccounts) > 0 {
		b.section("Most Searched Accounts")
		b.lines(countTable("Account", summary.TopAccounts).Lines()...)
	}
	if len(summary.TopProjects) > 0 {
		b.section("Most Searched Projects")
		b.lines(countTable("Project", summary.TopProjects).Lines()...)
	}
	if len(recent) > 0 {
		b.section("Recent Searches")
		b.lines(RecentTable(recent).Lines()...)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// RecentTable lists search log entries in the given order.
func RecentTable(entries []model.SearchEntry) Table {
	rows := lo.Map(entries, func(e model.SearchEntry, _ int) []string {
		outcome := "ok"
		if !e.Success {
			outcome = lo.CoalesceOrEmpty(e.ErrorCode, "failed")
		}
		return []string{
			e.CreatedAt.Local().Format(time.DateTime),
			e.Kind.String(),
			lo.CoalesceOrEmpty(e.Identifier, "-"),
			outcome,
			textfmt.Duration(e.ProcessingTime),
		}
	})
	return Table{
		Headers: []string{"When", "Kind", "Identifier", "Outcome", "Time"},
		Rows:    rows,
		Right:   map[int]bool{4: true},
	}
}

func countTable(label string, counts []model.SearchCount) Table {
	rows := lo.Map(counts, func(c model.SearchCount, i int) []string {
		return []string{fmt.Sprintf("%d.", i+1), c.Identifier, textfmt.Grouped(int64(c.Count))}
	})
	return Table{Headers: []string{"#", label, "Searches"}, Rows: rows, Right: map[int]bool{0: true, 2: true}}
}
