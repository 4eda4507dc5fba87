package normalize

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/verte-zerg/repolens/internal/model"
)

func ptr[T any](v T) *T { return &v }

func TestAccountLanguageWeight(t *testing.T) {
	a := &model.AccountAnalytics{
		Login: "octo",
		LanguageBreakdown: []model.LanguageStat{
			{Language: "Go", Percentage: ptr(60.0), RepositoryCount: ptr(int64(3))},
		},
	}
	cm, err := Normalize(a)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cm.Languages == nil || len(cm.Languages.Slices) != 1 {
		t.Fatalf("unexpected languages: %+v", cm.Languages)
	}
	got := cm.Languages.Slices[0]
	want := model.LanguageSlice{Category: "Go", Percentage: 60, ApproxWeight: 3000, HasWeight: true}
	if got != want {
		t.Fatalf("unexpected slice: %+v, want %+v", got, want)
	}
	if cm.Commits != nil {
		t.Fatalf("account models never carry commits")
	}
	if cm.Contributors != nil {
		t.Fatalf("account models never carry contributors")
	}
}

func TestProjectLanguageWeight(t *testing.T) {
	p := &model.ProjectAnalytics{
		FullName:      "acme/widget",
		SizeKB:        ptr(int64(100)),
		CodeAnalytics: &model.CodeAnalytics{FileTypeDistribution: model.NewShares(model.Share{Key: "Go", Value: 50})},
	}
	cm, err := Normalize(p)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cm.Languages == nil || len(cm.Languages.Slices) != 1 {
		t.Fatalf("unexpected languages: %+v", cm.Languages)
	}
	if got := cm.Languages.Slices[0].ApproxWeight; got != 51200 {
		t.Fatalf("approxWeight = %v, want 51200", got)
	}
}

func TestProjectLanguageWeightWithoutSize(t *testing.T) {
	p := &model.ProjectAnalytics{
		CodeAnalytics: &model.CodeAnalytics{FileTypeDistribution: model.NewShares(model.Share{Key: "Go", Value: 50})},
	}
	cm, err := Normalize(p)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if slice := cm.Languages.Slices[0]; slice.HasWeight {
		t.Fatalf("weight should be unknown without a size: %+v", slice)
	}
}

func TestDuplicateCategoriesKeepFirst(t *testing.T) {
	a := &model.AccountAnalytics{
		LanguageBreakdown: []model.LanguageStat{
			{Language: "Go", Percentage: ptr(60.0)},
			{Language: "Shell", Percentage: ptr(30.0)},
			{Language: "Go", Percentage: ptr(10.0)},
		},
	}
	cm, err := Normalize(a)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	slices := cm.Languages.Slices
	if len(slices) != 2 || slices[0].Category != "Go" || slices[0].Percentage != 60 || slices[1].Category != "Shell" {
		t.Fatalf("unexpected slices: %+v", slices)
	}
}

func TestProjectCommitSeries(t *testing.T) {
	p := &model.ProjectAnalytics{
		CommitAnalytics: &model.CommitAnalytics{
			TotalCommits: ptr(int64(9)),
			CommitTimeline: []model.TimelineEntry{
				{Date: "2024-01-03", Commits: ptr(int64(4))},
				{Date: "garbage", Commits: ptr(int64(100))},
				{Date: "2024-01-01", Commits: ptr(int64(2)), Additions: ptr(int64(10))},
				{Date: "2024-01-02", Commits: ptr(int64(0))},
			},
		},
	}
	cm, err := Normalize(p)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cm.Commits == nil || len(cm.Commits.Points) != 3 {
		t.Fatalf("unexpected commits: %+v", cm.Commits)
	}
	for i, day := range []int{1, 2, 3} {
		if got := cm.Commits.Points[i].Date.Day(); got != day {
			t.Fatalf("point %d day = %d, want %d", i, got, day)
		}
	}
	first := cm.Commits.Points[0]
	if first.Additions != (model.Count{Value: 10, Known: true}) || first.Deletions.Known {
		t.Fatalf("unexpected line counts: %+v", first)
	}
	if cm.Stats == nil || cm.Stats.Title != "Commit Statistics" || cm.Stats.Rows[0].Value != "9" {
		t.Fatalf("unexpected commit statistics: %+v", cm.Stats)
	}
}

func TestMissingValuesAreDropped(t *testing.T) {
	cm, err := Normalize(&model.AccountAnalytics{
		LanguageBreakdown: []model.LanguageStat{
			{Language: "Go", Percentage: ptr(80.0)},
			{Language: "Perl", RepositoryCount: ptr(int64(2))},
		},
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if slices := cm.Languages.Slices; len(slices) != 1 || slices[0].Category != "Go" {
		t.Fatalf("language without a percentage should be dropped: %+v", slices)
	}

	cm, err = Normalize(&model.ProjectAnalytics{
		CommitAnalytics: &model.CommitAnalytics{
			CommitTimeline: []model.TimelineEntry{
				{Date: "2024-01-01", Additions: ptr(int64(5))},
				{Date: "2024-01-02", Commits: ptr(int64(3))},
			},
		},
		ContributorAnalytics: &model.ContributorAnalytics{
			TopContributors: []model.TopContributor{{Login: "ghost"}},
		},
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if points := cm.Commits.Points; len(points) != 1 || points[0].Commits != 3 {
		t.Fatalf("timeline entry without commits should be dropped: %+v", points)
	}
	if cm.Contributors != nil {
		t.Fatalf("contributors without counts should leave the series nil: %+v", cm.Contributors)
	}

	cm, err = Normalize(&model.AccountAnalytics{
		LanguageBreakdown: []model.LanguageStat{{Language: "Perl"}},
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cm.Languages != nil {
		t.Fatalf("no usable languages should leave the series nil: %+v", cm.Languages)
	}
}

func TestAccountHeader(t *testing.T) {
	cm, err := Normalize(&model.AccountAnalytics{
		Login:     "octo",
		Name:      "Octo Cat",
		AvatarURL: "https://avatars.example/octo.png",
		Location:  "Berlin",
		CreatedAt: model.Timestamp{Time: time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)},
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	h := cm.Header
	if h.ProfileURL != "https://github.com/octo" || h.AvatarURL != "https://avatars.example/octo.png" {
		t.Fatalf("unexpected links: %+v", h)
	}
	if h.Title != "Octo Cat" || h.CreatedLabel != "Joined Jan 2, 2020" || h.UpdatedLabel != "Last active unknown" {
		t.Fatalf("unexpected labels: %+v", h)
	}
	if len(h.Details) != 1 || h.Details[0] != "Berlin" {
		t.Fatalf("dates should not be repeated in details: %+v", h.Details)
	}
}

func TestProjectHeaderUsesHost(t *testing.T) {
	cm, err := Normalize(&model.ProjectAnalytics{
		FullName:  "acme/widget",
		Owner:     &model.Owner{Login: "acme", AvatarURL: "https://avatars.example/acme.png"},
		UpdatedAt: model.Timestamp{Time: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
	}, WithHost("git.example.com"))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	h := cm.Header
	if h.ProfileURL != "https://git.example.com/acme/widget" {
		t.Fatalf("unexpected profile url: %q", h.ProfileURL)
	}
	if h.AvatarURL != "https://avatars.example/acme.png" || h.UpdatedLabel != "Updated May 1, 2024" {
		t.Fatalf("unexpected header: %+v", h)
	}

	cm, err = Normalize(&model.ProjectAnalytics{}, WithHost(" "))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cm.Header.ProfileURL != "" {
		t.Fatalf("a header without a path has no profile url: %q", cm.Header.ProfileURL)
	}
}

func TestAbsentProjectSeries(t *testing.T) {
	cm, err := Normalize(&model.ProjectAnalytics{FullName: "acme/widget"})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cm.Commits != nil || cm.Contributors != nil || cm.Languages != nil || cm.Stats != nil {
		t.Fatalf("missing structures must leave series nil: %+v", cm)
	}
	for _, m := range cm.Metrics {
		if m.Value.Known {
			t.Fatalf("metric %q should be unknown", m.Label)
		}
	}

	cm, err = Normalize(&model.ProjectAnalytics{CommitAnalytics: &model.CommitAnalytics{}})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cm.Commits != nil {
		t.Fatalf("empty timeline should leave commits nil")
	}
}

func TestMetricsOrder(t *testing.T) {
	cm, err := Normalize(&model.AccountAnalytics{
		PublicRepos:     ptr(int64(5)),
		RepositoryStats: &model.RepositoryStats{TotalStars: ptr(int64(70))},
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	labels := []string{"Public Repositories", "Followers", "Following", "Total Stars", "Total Forks", "Total Commits"}
	if len(cm.Metrics) != len(labels) {
		t.Fatalf("unexpected metrics: %+v", cm.Metrics)
	}
	for i, label := range labels {
		if cm.Metrics[i].Label != label {
			t.Fatalf("metric %d = %q, want %q", i, cm.Metrics[i].Label, label)
		}
	}
	if !cm.Metrics[0].Value.Known || cm.Metrics[0].Value.Value != 5 {
		t.Fatalf("unexpected public repositories: %+v", cm.Metrics[0])
	}
	if cm.Metrics[1].Value.Known {
		t.Fatalf("followers should be unknown")
	}
	if !cm.Metrics[3].Value.Known || cm.Metrics[3].Value.Value != 70 {
		t.Fatalf("unexpected stars: %+v", cm.Metrics[3])
	}
	if cm.Metrics[5].Value.Known {
		t.Fatalf("commits should be unknown without contribution stats")
	}
}

func TestProjectTableLimit(t *testing.T) {
	repos := make([]model.TopRepository, 12)
	for i := range repos {
		repos[i] = model.TopRepository{RepoName: fmt.Sprintf("r%d", i)}
	}
	cm, err := Normalize(&model.AccountAnalytics{TopRepositories: repos})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cm.Projects == nil || len(cm.Projects.Rows) != MaxProjects {
		t.Fatalf("unexpected project table: %+v", cm.Projects)
	}
	if cm.Projects.Rows[9].Name != "r9" {
		t.Fatalf("unexpected last row: %+v", cm.Projects.Rows[9])
	}
}

func TestContributorFallbacks(t *testing.T) {
	cm, err := Normalize(&model.ProjectAnalytics{
		ContributorAnalytics: &model.ContributorAnalytics{
			TopContributors: []model.TopContributor{
				{ContributorName: "alice", ContributionCount: ptr(int64(40))},
				{Username: "bob", CommitsCount: ptr(int64(12))},
				{Login: "carol", Contributions: ptr(int64(3))},
				{Name: "dave", Commits: ptr(int64(7)), Contributions: ptr(int64(99))},
				{Commits: ptr(int64(1))},
				{Login: "erin"},
			},
		},
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	want := []model.ContributorEntry{
		{Name: "alice", Count: 40},
		{Name: "bob", Count: 12},
		{Name: "carol", Count: 3},
		{Name: "dave", Count: 7},
		{Name: "unknown", Count: 1},
	}
	if cm.Contributors == nil || len(cm.Contributors.Entries) != len(want) {
		t.Fatalf("unexpected contributors: %+v", cm.Contributors)
	}
	for i := range want {
		if cm.Contributors.Entries[i] != want[i] {
			t.Fatalf("entry %d = %+v, want %+v", i, cm.Contributors.Entries[i], want[i])
		}
	}
}

func TestModelDoesNotShareSlices(t *testing.T) {
	a := &model.AccountAnalytics{
		LanguageBreakdown: []model.LanguageStat{{Language: "Go", Percentage: ptr(100.0)}},
	}
	cm, err := Normalize(a)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	a.LanguageBreakdown[0].Language = "Rust"
	*a.LanguageBreakdown[0].Percentage = 1
	if cm.Languages.Slices[0].Category != "Go" || cm.Languages.Slices[0].Percentage != 100 {
		t.Fatalf("chart model changed with payload: %+v", cm.Languages.Slices[0])
	}
}

func TestOpenExpiry(t *testing.T) {
	fetched := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	rec := model.Record{Kind: model.KindAccount, Identifier: "octo", Data: json.RawMessage(`{"githubUsername":"octo"}`), FetchedAt: fetched}

	if _, err := Open(rec, fetched.Add(301*time.Second)); !model.IsCode(err, model.CodeExpiredData) {
		t.Fatalf("expected expired data, got %v", err)
	}
	cm, err := Open(rec, fetched.Add(299*time.Second))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if cm.Header.Path != "octo" {
		t.Fatalf("unexpected header: %+v", cm.Header)
	}
}

func TestOpenMalformed(t *testing.T) {
	now := time.Now()
	for _, data := range []string{`not json`, `[]`, `{"publicRepos":"many"}`} {
		rec := model.Record{Kind: model.KindAccount, Data: json.RawMessage(data), FetchedAt: now}
		if _, err := Open(rec, now); !model.IsCode(err, model.CodeMalformedData) {
			t.Fatalf("%s: expected malformed data, got %v", data, err)
		}
	}
	rec := model.Record{Kind: model.KindUnknown, Data: json.RawMessage(`{}`), FetchedAt: now}
	if _, err := Open(rec, now); !model.IsCode(err, model.CodeMalformedData) {
		t.Fatalf("unknown kind: expected malformed data, got %v", err)
	}
}

func TestNormalizeRejectsNil(t *testing.T) {
	if _, err := Normalize(nil); err == nil {
		t.Fatalf("expected error for nil payload")
	}
	var a *model.AccountAnalytics
	if _, err := Normalize(a); err == nil {
		t.Fatalf("expected error for typed nil payload")
	}
}
