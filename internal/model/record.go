package model

import (
	"encoding/json"
	"time"
)

// RecordTTL is how long a fetched record stays readable.
const RecordTTL = 5 * time.Minute

// Record is one successful fetch: the raw payload tagged with its kind and fetch time.
type Record struct {
	ID         int64
	Kind       Kind
	Identifier string
	Data       json.RawMessage
	FetchedAt  time.Time
}

// Expired reports whether the record is older than RecordTTL at now.
// A record exactly RecordTTL old is still readable.
func (r Record) Expired(now time.Time) bool {
	return now.Sub(r.FetchedAt) > RecordTTL
}

// SearchEntry is one logged submission.
type SearchEntry struct {
	ID             int64
	Kind           Kind
	Identifier     string
	Success        bool
	ErrorCode      string
	ProcessingTime time.Duration
	CreatedAt      time.Time
}

// SearchCount is an identifier and how often it was searched.
type SearchCount struct {
	Identifier string
	Count      int
}

// SearchSummary aggregates the search log.
type SearchSummary struct {
	Total             int
	Successful        int
	AverageProcessing time.Duration
	TopAccounts       []SearchCount
	TopProjects       []SearchCount
}

// SuccessRate returns the share of successful searches in percent.
func (s SearchSummary) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Successful) / float64(s.Total) * 100
}
