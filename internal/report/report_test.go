package report

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/repolens/internal/model"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	lines := Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Stars", "1,204"},
			{"Public Repositories", "8"},
		},
		Right: map[int]bool{1: true},
	}.Lines()
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Metric               Value" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "Stars                1,204" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "Public Repositories      8" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func accountModel() *model.ChartModel {
	return &model.ChartModel{
		Kind: model.KindAccount,
		Header: model.Header{
			Path:         "octo",
			ProfileURL:   "https://github.com/octo",
			Title:        "Octo Cat",
			Subtitle:     "@octo",
			CreatedLabel: "Joined Jan 2, 2020",
			Details:      []string{"Berlin"},
		},
		Metrics: []model.Metric{
			{Label: "Public Repositories", Value: model.Count{Value: 8, Known: true}},
			{Label: "Followers"},
		},
		Languages: &model.LanguageSeries{Slices: []model.LanguageSlice{
			{Category: "Go", Percentage: 60, ApproxWeight: 3000, HasWeight: true},
			{Category: "Shell", Percentage: 40},
		}},
		Projects: &model.ProjectTable{Rows: []model.ProjectRow{
			{Name: "widget", Language: "Go", Stars: model.Count{Value: 1204, Known: true}},
		}},
		Stats: &model.StatTable{Title: "Repository Statistics", Rows: []model.StatRow{{Label: "Average Stars", Value: "12.5"}}},
	}
}

func TestWriteAccountReport(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, accountModel(), Options{Width: 80}); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Account Analytics", "Octo Cat", "@octo", "Berlin · Joined Jan 2, 2020", "https://github.com/octo",
		"Public Repositories", "n/a", "Languages", "~3,000 bytes", "60.0%",
		"Top Projects", "1,204", "Repository Statistics", "12.5",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
	for _, absent := range []string{"Commit Activity", "Top Contributors"} {
		if strings.Contains(out, absent) {
			t.Fatalf("account report must not contain %q", absent)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("report without color must not contain escape codes")
	}
}

func TestWriteProjectReportEmptySeries(t *testing.T) {
	cm := &model.ChartModel{
		Kind:         model.KindProject,
		Header:       model.Header{Path: "acme/widget", Title: "acme/widget"},
		Commits:      &model.CommitSeries{},
		Contributors: &model.ContributorSeries{Entries: []model.ContributorEntry{{Name: "alice", Count: 40}}},
	}
	var buf bytes.Buffer
	if err := Write(&buf, cm, Options{}); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "No commit activity recorded.") {
		t.Fatalf("expected empty commit notice:\n%s", out)
	}
	if !strings.Contains(out, "alice") || !strings.Contains(out, "40") {
		t.Fatalf("expected contributor chart:\n%s", out)
	}
	if strings.Contains(out, "Languages") {
		t.Fatalf("absent language series must not be reported")
	}
}

func TestWriteRejectsNilModel(t *testing.T) {
	if err := Write(io.Discard, nil, Options{}); err == nil {
		t.Fatalf("expected error for nil model")
	}
}

func TestWriteHistory(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHistory(&buf, model.SearchSummary{}, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), "No searches recorded yet.") {
		t.Fatalf("unexpected empty history: %s", buf.String())
	}

	buf.Reset()
	summary := model.SearchSummary{
		Total:             3,
		Successful:        2,
		AverageProcessing: 250 * time.Millisecond,
		TopAccounts:       []model.SearchCount{{Identifier: "octo", Count: 2}},
	}
	recent := []model.SearchEntry{
		{Kind: model.KindAccount, Identifier: "ghost", ErrorCode: "not_found", CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	if err := WriteHistory(&buf, summary, recent); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"66.7%", "250 ms", "Most Searched Accounts", "octo", "Recent Searches", "ghost", "not_found"} {
		if !strings.Contains(out, want) {
			t.Fatalf("history missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Most Searched Projects") {
		t.Fatalf("empty project list must be omitted")
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.txt")
	if err := WriteFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "first\n")
		return err
	}); err != nil {
		t.Fatalf("write file: %v", err)
	}
	failure := errors.New("render failed")
	if err := WriteFile(path, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return failure
	}); !errors.Is(err, failure) {
		t.Fatalf("expected render error, got %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "first\n" {
		t.Fatalf("failed render must not replace the report, got %q", data)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil || len(entries) != 1 {
		t.Fatalf("temp files left behind: %v %v", entries, err)
	}
}
