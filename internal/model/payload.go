package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Payload is the decoded data field of a backend response.
type Payload interface {
	Kind() Kind
}

// DecodePayload decodes the data field of a response for the given kind.
func DecodePayload(kind Kind, data []byte) (Payload, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("payload is not a JSON object")
	}
	switch kind {
	case KindAccount:
		var p AccountAnalytics
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return nil, fmt.Errorf("failed to decode account payload: %w", err)
		}
		return &p, nil
	case KindProject:
		var p ProjectAnalytics
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return nil, fmt.Errorf("failed to decode project payload: %w", err)
		}
		return &p, nil
	default:
		return nil, fmt.Errorf("unsupported payload kind %q", kind)
	}
}

// AccountAnalytics is the per-account payload.
type AccountAnalytics struct {
	Login       string    `json:"githubUsername"`
	Name        string    `json:"name"`
	AvatarURL   string    `json:"avatarUrl"`
	Bio         string    `json:"bio"`
	Location    string    `json:"location"`
	Company     string    `json:"company"`
	Email       string    `json:"email"`
	PublicRepos *int64    `json:"publicRepos"`
	Followers   *int64    `json:"followers"`
	Following   *int64    `json:"following"`
	CreatedAt   Timestamp `json:"createdAt"`
	UpdatedAt   Timestamp `json:"updatedAt"`

	RepositoryStats   *RepositoryStats   `json:"repositoryStats"`
	ContributionStats *ContributionStats `json:"contributionStats"`
	TopRepositories   []TopRepository    `json:"topRepositories"`
	LanguageBreakdown []LanguageStat     `json:"languageBreakdown"`
}

// Kind implements Payload.
func (*AccountAnalytics) Kind() Kind { return KindAccount }

// RepositoryStats aggregates across an account's projects.
type RepositoryStats struct {
	TotalRepositories *int64   `json:"totalRepositories"`
	TotalStars        *int64   `json:"totalStars"`
	TotalForks        *int64   `json:"totalForks"`
	TotalWatchers     *int64   `json:"totalWatchers"`
	TotalSizeKB       *int64   `json:"totalSizeKb"`
	AverageStars      *float64 `json:"averageStars"`
	MostUsedLanguage  string   `json:"mostUsedLanguage"`
}

// ContributionStats aggregates commit activity across an account's projects.
type ContributionStats struct {
	TotalCommits          *int64   `json:"totalCommits"`
	TotalAdditions        *int64   `json:"totalAdditions"`
	TotalDeletions        *int64   `json:"totalDeletions"`
	TotalChangedFiles     *int64   `json:"totalChangedFiles"`
	AverageCommitsPerRepo *float64 `json:"averageCommitsPerRepo"`
	MostActiveRepository  string   `json:"mostActiveRepository"`
}

// TopRepository is one entry of an account's project list.
type TopRepository struct {
	RepoName     string    `json:"repoName"`
	FullName     string    `json:"fullName"`
	Description  string    `json:"description"`
	Language     string    `json:"language"`
	StarsCount   *int64    `json:"starsCount"`
	ForksCount   *int64    `json:"forksCount"`
	CommitsCount *int64    `json:"commitsCount"`
	LastPushAt   Timestamp `json:"lastPushAt"`
}

// LanguageStat is one entry of an account's language breakdown.
type LanguageStat struct {
	Language        string   `json:"language"`
	RepositoryCount *int64   `json:"repositoryCount"`
	TotalStars      *int64   `json:"totalStars"`
	Percentage      *float64 `json:"percentage"`
}

// ProjectAnalytics is the per-project payload.
type ProjectAnalytics struct {
	RepoName      string    `json:"repoName"`
	FullName      string    `json:"fullName"`
	Description   string    `json:"description"`
	Language      string    `json:"language"`
	DefaultBranch string    `json:"defaultBranch"`
	IsPrivate     *bool     `json:"isPrivate"`
	StarsCount    *int64    `json:"starsCount"`
	ForksCount    *int64    `json:"forksCount"`
	WatchersCount *int64    `json:"watchersCount"`
	SizeKB        *int64    `json:"sizeKb"`
	CreatedAt     Timestamp `json:"createdAt"`
	UpdatedAt     Timestamp `json:"updatedAt"`
	LastPushAt    Timestamp `json:"lastPushAt"`
	AnalyzedAt    Timestamp `json:"analyzedAt"`

	Owner                *Owner                `json:"owner"`
	CommitAnalytics      *CommitAnalytics      `json:"commitAnalytics"`
	ContributorAnalytics *ContributorAnalytics `json:"contributorAnalytics"`
	CodeAnalytics        *CodeAnalytics        `json:"codeAnalytics"`
}

// Kind implements Payload.
func (*ProjectAnalytics) Kind() Kind { return KindProject }

// Owner describes the account owning a project.
type Owner struct {
	Login     string `json:"githubUsername"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

// CommitAnalytics holds commit totals and the commit timeline.
type CommitAnalytics struct {
	TotalCommits                 *int64          `json:"totalCommits"`
	TotalAdditions               *int64          `json:"totalAdditions"`
	TotalDeletions               *int64          `json:"totalDeletions"`
	TotalChangedFiles            *int64          `json:"totalChangedFiles"`
	AverageAdditionsPerCommit    *float64        `json:"averageAdditionsPerCommit"`
	AverageDeletionsPerCommit    *float64        `json:"averageDeletionsPerCommit"`
	AverageFilesChangedPerCommit *float64        `json:"averageFilesChangedPerCommit"`
	FirstCommit                  Timestamp       `json:"firstCommit"`
	LastCommit                   Timestamp       `json:"lastCommit"`
	CommitTimeline               []TimelineEntry `json:"commitTimeline"`
}

// TimelineEntry is one day of the commit timeline.
type TimelineEntry struct {
	Date               string `json:"date"`
	Commits            *int64 `json:"commits"`
	Additions          *int64 `json:"additions"`
	Deletions          *int64 `json:"deletions"`
	UniqueContributors *int64 `json:"uniqueContributors"`
}

// ContributorAnalytics holds contributor totals and the top contributors.
type ContributorAnalytics struct {
	TotalContributors  *int64           `json:"totalContributors"`
	ActiveContributors *int64           `json:"activeContributors"`
	TopContributors    []TopContributor `json:"topContributors"`
}

// TopContributor accepts the several name and count spellings backends use.
type TopContributor struct {
	ContributorName   string `json:"contributorName"`
	Username          string `json:"username"`
	Login             string `json:"login"`
	Name              string `json:"name"`
	Commits           *int64 `json:"commits"`
	ContributionCount *int64 `json:"contributionCount"`
	CommitsCount      *int64 `json:"commitsCount"`
	Contributions     *int64 `json:"contributions"`
}

// CodeAnalytics holds the file-type distribution.
type CodeAnalytics struct {
	TotalLines           *int64   `json:"totalLines"`
	CodeChurnRate        *float64 `json:"codeChurnRate"`
	MainFileTypes        []string `json:"mainFileTypes"`
	FileTypeDistribution *Shares  `json:"fileTypeDistribution"`
	AverageCommitSize    *int64   `json:"averageCommitSize"`
}

// Share is one key of a distribution map.
type Share struct {
	Key   string
	Value float64
}

// Shares is a JSON object of percentages that keeps the backend's key order.
type Shares struct {
	m *orderedmap.OrderedMap[string, float64]
}

// NewShares builds Shares in the given order.
func NewShares(entries ...Share) *Shares {
	m := orderedmap.New[string, float64]()
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return &Shares{m: m}
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Shares) UnmarshalJSON(data []byte) error {
	m := orderedmap.New[string, float64]()
	if err := m.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("failed to decode distribution: %w", err)
	}
	s.m = m
	return nil
}

// Len returns the number of keys.
func (s *Shares) Len() int {
	if s == nil || s.m == nil {
		return 0
	}
	return s.m.Len()
}

// Entries returns the keys and values in first-seen order.
func (s *Shares) Entries() []Share {
	if s.Len() == 0 {
		return nil
	}
	out := make([]Share, 0, s.m.Len())
	for pair := s.m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, Share{Key: pair.Key, Value: pair.Value})
	}
	return out
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Timestamp decodes the backend's date formats. Unknown formats decode to the zero time.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	t.Time = ParseTimestamp(s)
	return nil
}

// ParseTimestamp parses s with the known layouts, returning the zero time on failure.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
