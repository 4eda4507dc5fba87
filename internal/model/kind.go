// Package model defines shared data structures.
package model

import "strings"

// Kind tags a query and the payload shape it returns.
type Kind int

const (
	// KindUnknown is used for searches that never resolved to a query.
	KindUnknown Kind = iota
	// KindAccount is a single user or organization.
	KindAccount
	// KindProject is a single repository owned by an account.
	KindProject
)

func (k Kind) String() string {
	switch k {
	case KindAccount:
		return "account"
	case KindProject:
		return "project"
	default:
		return "unknown"
	}
}

// ParseKind maps a stored or user supplied name back to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "account", "user":
		return KindAccount, true
	case "project", "repository", "repo":
		return KindProject, true
	default:
		return KindUnknown, false
	}
}
