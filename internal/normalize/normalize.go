// Package normalize maps backend payloads onto the shape-independent ChartModel.
// It is the only package that knows about the two payload shapes.
package normalize

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/verte-zerg/repolens/internal/model"
	"github.com/verte-zerg/repolens/internal/query"
	"github.com/verte-zerg/repolens/internal/textfmt"
)

const (
	// MaxProjects limits the account project table.
	MaxProjects = 10
	// weightPerRepository approximates the weight of a language per project using it.
	weightPerRepository = 1000
	otherCategory       = "Other"
	unknownContributor  = "unknown"
)

type settings struct {
	host string
}

// Option adjusts normalization.
type Option func(*settings)

// WithHost sets the web host profile links point at. The default is query.DefaultHost.
func WithHost(host string) Option {
	return func(s *settings) {
		if host = strings.TrimSpace(host); host != "" {
			s.host = host
		}
	}
}

func (s settings) profileURL(path string) string {
	if path == "" {
		return ""
	}
	return "https://" + s.host + "/" + path
}

// Normalize builds a ChartModel from a decoded payload.
func Normalize(p model.Payload, opts ...Option) (*model.ChartModel, error) {
	cfg := settings{host: query.DefaultHost}
	for _, opt := range opts {
		opt(&cfg)
	}
	switch v := p.(type) {
	case *model.AccountAnalytics:
		if v == nil {
			return nil, fmt.Errorf("nil account payload")
		}
		return account(v, cfg), nil
	case *model.ProjectAnalytics:
		if v == nil {
			return nil, fmt.Errorf("nil project payload")
		}
		return project(v, cfg), nil
	case nil:
		return nil, fmt.Errorf("missing payload")
	default:
		return nil, fmt.Errorf("unsupported payload %T", p)
	}
}

// Open checks a stored record for expiry at now, decodes it and normalizes it.
func Open(rec model.Record, now time.Time, opts ...Option) (*model.ChartModel, error) {
	if rec.Expired(now) {
		return nil, model.ExpiredData()
	}
	p, err := model.DecodePayload(rec.Kind, rec.Data)
	if err != nil {
		return nil, model.MalformedData(err)
	}
	cm, err := Normalize(p, opts...)
	if err != nil {
		return nil, model.MalformedData(err)
	}
	return cm, nil
}

func account(a *model.AccountAnalytics, cfg settings) *model.ChartModel {
	repoStats := a.RepositoryStats
	if repoStats == nil {
		repoStats = &model.RepositoryStats{}
	}
	contrib := a.ContributionStats
	if contrib == nil {
		contrib = &model.ContributionStats{}
	}

	cm := &model.ChartModel{
		Kind: model.KindAccount,
		Header: model.Header{
			Path:         a.Login,
			ProfileURL:   cfg.profileURL(a.Login),
			AvatarURL:    a.AvatarURL,
			Title:        lo.CoalesceOrEmpty(a.Name, a.Login),
			Subtitle:     "@" + a.Login,
			Description:  a.Bio,
			CreatedLabel: "Joined " + textfmt.Date(a.CreatedAt.Time),
			UpdatedLabel: "Last active " + textfmt.Date(a.UpdatedAt.Time),
			Details:      nonEmpty(a.Location, a.Company),
		},
		Metrics: []model.Metric{
			{Label: "Public Repositories", Value: model.CountOf(a.PublicRepos)},
			{Label: "Followers", Value: model.CountOf(a.Followers)},
			{Label: "Following", Value: model.CountOf(a.Following)},
			{Label: "Total Stars", Value: model.CountOf(repoStats.TotalStars)},
			{Label: "Total Forks", Value: model.CountOf(repoStats.TotalForks)},
			{Label: "Total Commits", Value: model.CountOf(contrib.TotalCommits)},
		},
		Languages: accountLanguages(a.LanguageBreakdown),
		Projects:  projectTable(a.TopRepositories),
	}
	if a.RepositoryStats != nil || a.ContributionStats != nil {
		cm.Stats = &model.StatTable{
			Title: "Repository Statistics",
			Rows: []model.StatRow{
				{Label: "Total Repositories", Value: textfmt.GroupedCount(model.CountOf(repoStats.TotalRepositories))},
				{Label: "Total Watchers", Value: textfmt.GroupedCount(model.CountOf(repoStats.TotalWatchers))},
				{Label: "Total Size (KB)", Value: textfmt.GroupedCount(model.CountOf(repoStats.TotalSizeKB))},
				{Label: "Average Stars", Value: textfmt.Decimal(repoStats.AverageStars)},
				{Label: "Most Used Language", Value: orUnknown(repoStats.MostUsedLanguage)},
				{Label: "Total Additions", Value: textfmt.GroupedCount(model.CountOf(contrib.TotalAdditions))},
				{Label: "Total Deletions", Value: textfmt.GroupedCount(model.CountOf(contrib.TotalDeletions))},
				{Label: "Average Commits/Project", Value: textfmt.Decimal(contrib.AverageCommitsPerRepo)},
				{Label: "Most Active Project", Value: orUnknown(contrib.MostActiveRepository)},
			},
		}
	}
	return cm
}

// accountLanguages weighs each language by repositoryCount × 1000, a stand-in
// for the byte totals account payloads do not carry. Entries without a
// percentage are dropped.
func accountLanguages(stats []model.LanguageStat) *model.LanguageSeries {
	slices := lo.FilterMap(stats, func(s model.LanguageStat, _ int) (model.LanguageSlice, bool) {
		if s.Percentage == nil {
			return model.LanguageSlice{}, false
		}
		slice := model.LanguageSlice{
			Category:   category(s.Language),
			Percentage: *s.Percentage,
		}
		if s.RepositoryCount != nil {
			slice.ApproxWeight = float64(*s.RepositoryCount * weightPerRepository)
			slice.HasWeight = true
		}
		return slice, true
	})
	return languageSeries(slices)
}

func projectTable(repos []model.TopRepository) *model.ProjectTable {
	if len(repos) == 0 {
		return nil
	}
	if len(repos) > MaxProjects {
		repos = repos[:MaxProjects]
	}
	rows := lo.Map(repos, func(r model.TopRepository, _ int) model.ProjectRow {
		return model.ProjectRow{
			Name:     r.RepoName,
			FullName: r.FullName,
			Language: r.Language,
			Stars:    model.CountOf(r.StarsCount),
			Forks:    model.CountOf(r.ForksCount),
			Commits:  model.CountOf(r.CommitsCount),
			LastPush: r.LastPushAt.Time,
		}
	})
	return &model.ProjectTable{Rows: rows}
}

func project(p *model.ProjectAnalytics, cfg settings) *model.ChartModel {
	commits := p.CommitAnalytics
	if commits == nil {
		commits = &model.CommitAnalytics{}
	}
	contributors := p.ContributorAnalytics
	if contributors == nil {
		contributors = &model.ContributorAnalytics{}
	}

	subtitle, avatar := "", ""
	if p.Owner != nil {
		subtitle = "by @" + p.Owner.Login
		avatar = p.Owner.AvatarURL
	}
	path := lo.CoalesceOrEmpty(p.FullName, p.RepoName)
	visibility := ""
	if p.IsPrivate != nil {
		visibility = "Public"
		if *p.IsPrivate {
			visibility = "Private"
		}
	}
	branch := ""
	if p.DefaultBranch != "" {
		branch = "Default branch " + p.DefaultBranch
	}

	cm := &model.ChartModel{
		Kind: model.KindProject,
		Header: model.Header{
			Path:         path,
			ProfileURL:   cfg.profileURL(path),
			AvatarURL:    avatar,
			Title:        path,
			Subtitle:     subtitle,
			Description:  p.Description,
			CreatedLabel: "Created " + textfmt.Date(p.CreatedAt.Time),
			UpdatedLabel: "Updated " + textfmt.Date(p.UpdatedAt.Time),
			Details:      nonEmpty(p.Language, visibility, branch),
		},
		Metrics: []model.Metric{
			{Label: "Stars", Value: model.CountOf(p.StarsCount)},
			{Label: "Forks", Value: model.CountOf(p.ForksCount)},
			{Label: "Watchers", Value: model.CountOf(p.WatchersCount)},
			{Label: "Total Commits", Value: model.CountOf(commits.TotalCommits)},
			{Label: "Contributors", Value: model.CountOf(contributors.TotalContributors)},
			{Label: "Size (KB)", Value: model.CountOf(p.SizeKB)},
		},
		Contributors: contributorSeries(contributors.TopContributors),
	}
	if p.CodeAnalytics != nil {
		cm.Languages = projectLanguages(p.CodeAnalytics.FileTypeDistribution, p.SizeKB)
	}
	if p.CommitAnalytics != nil {
		cm.Commits = commitSeries(commits.CommitTimeline)
		cm.Stats = &model.StatTable{
			Title: "Commit Statistics",
			Rows: []model.StatRow{
				{Label: "Total Commits", Value: textfmt.GroupedCount(model.CountOf(commits.TotalCommits))},
				{Label: "Total Additions", Value: textfmt.GroupedCount(model.CountOf(commits.TotalAdditions))},
				{Label: "Total Deletions", Value: textfmt.GroupedCount(model.CountOf(commits.TotalDeletions))},
				{Label: "Average Additions/Commit", Value: textfmt.Decimal(commits.AverageAdditionsPerCommit)},
				{Label: "Average Deletions/Commit", Value: textfmt.Decimal(commits.AverageDeletionsPerCommit)},
				{Label: "Average Files Changed/Commit", Value: textfmt.Decimal(commits.AverageFilesChangedPerCommit)},
				{Label: "First Commit", Value: textfmt.Date(commits.FirstCommit.Time)},
				{Label: "Last Commit", Value: textfmt.Date(commits.LastCommit.Time)},
			},
		}
	}
	return cm
}

// projectLanguages converts file-type shares into approximate byte weights:
// round(percentage / 100 × sizeKb × 1024).
func projectLanguages(shares *model.Shares, sizeKB *int64) *model.LanguageSeries {
	slices := lo.Map(shares.Entries(), func(e model.Share, _ int) model.LanguageSlice {
		slice := model.LanguageSlice{Category: category(e.Key), Percentage: e.Value}
		if sizeKB != nil {
			slice.ApproxWeight = math.Round(e.Value / 100 * float64(*sizeKB) * 1024)
			slice.HasWeight = true
		}
		return slice
	})
	return languageSeries(slices)
}

func languageSeries(slices []model.LanguageSlice) *model.LanguageSeries {
	slices = lo.UniqBy(slices, func(s model.LanguageSlice) string {
		return s.Category
	})
	if len(slices) == 0 {
		return nil
	}
	return &model.LanguageSeries{Slices: slices}
}

// commitSeries drops entries whose date cannot be parsed or whose commit
// count is missing, and sorts the rest by date.
func commitSeries(timeline []model.TimelineEntry) *model.CommitSeries {
	points := make([]model.CommitPoint, 0, len(timeline))
	for _, entry := range timeline {
		date := model.ParseTimestamp(entry.Date)
		if date.IsZero() || entry.Commits == nil {
			continue
		}
		points = append(points, model.CommitPoint{
			Date:      date,
			Commits:   *entry.Commits,
			Additions: model.CountOf(entry.Additions),
			Deletions: model.CountOf(entry.Deletions),
		})
	}
	if len(points) == 0 {
		return nil
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return &model.CommitSeries{Points: points}
}

// contributorSeries keeps backend order and drops contributors without any count.
func contributorSeries(top []model.TopContributor) *model.ContributorSeries {
	entries := lo.FilterMap(top, func(c model.TopContributor, _ int) (model.ContributorEntry, bool) {
		count := lo.CoalesceOrEmpty(c.Commits, c.ContributionCount, c.CommitsCount, c.Contributions)
		if count == nil {
			return model.ContributorEntry{}, false
		}
		name := lo.CoalesceOrEmpty(c.ContributorName, c.Username, c.Login, c.Name)
		if name == "" {
			name = unknownContributor
		}
		return model.ContributorEntry{Name: name, Count: *count}, true
	})
	if len(entries) == 0 {
		return nil
	}
	return &model.ContributorSeries{Entries: entries}
}

func category(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return otherCategory
	}
	return name
}

func nonEmpty(values ...string) []string {
	return lo.Filter(values, func(v string, _ int) bool {
		return strings.TrimSpace(v) != ""
	})
}

func orUnknown(s string) string {
	if s == "" {
		return textfmt.Unknown
	}
	return s
}
