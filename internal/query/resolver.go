package query

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/repolens/internal/model"
)

// Mode is the search form the input came from.
type Mode int

const (
	ModeAccount Mode = iota
	ModeProject
	ModeURL
)

var modeNames = []string{"account", "project", "url"}

func (m Mode) String() string {
	if int(m) >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Kind is the query kind a form always produces. URL input can name
// either kind, so ModeURL reports KindUnknown.
func (m Mode) Kind() model.Kind {
	switch m {
	case ModeAccount:
		return model.KindAccount
	case ModeProject:
		return model.KindProject
	default:
		return model.KindUnknown
	}
}

// ParseMode maps a flag or config value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "account", "user":
		return ModeAccount, nil
	case "project", "repo", "repository":
		return ModeProject, nil
	case "url":
		return ModeURL, nil
	default:
		return ModeAccount, fmt.Errorf("unknown mode %q (want account, project or url)", s)
	}
}

// Input holds the raw field values of every search form.
// Only the fields of the active mode are read.
type Input struct {
	Account string
	Owner   string
	Project string
	URL     string
}

// Resolver turns raw input into exactly one Ref.
type Resolver struct {
	Parser Parser
}

// NewResolver returns a Resolver accepting URLs on host.
func NewResolver(host string) *Resolver {
	return &Resolver{Parser: NewParser(host)}
}

// Resolve validates in for mode. All errors are *model.Error and no I/O is performed.
func (r *Resolver) Resolve(mode Mode, in Input) (Ref, error) {
	switch mode {
	case ModeAccount:
		return r.resolveAccount(strings.TrimSpace(in.Account))
	case ModeProject:
		return r.resolveProject(strings.TrimSpace(in.Owner), strings.TrimSpace(in.Project))
	case ModeURL:
		return r.resolveURL(strings.TrimSpace(in.URL))
	default:
		return Ref{}, fmt.Errorf("unknown search mode %v", mode)
	}
}

func (r *Resolver) resolveAccount(name string) (Ref, error) {
	if name == "" {
		return Account(name)
	}
	if isURL(name) {
		target, ok := r.Parser.Parse(name)
		if !ok {
			return Ref{}, model.MalformedURL(r.Parser.Host())
		}
		if target.Kind == model.KindProject {
			return Ref{}, model.CrossModeMisuse(model.KindProject)
		}
		return Account(target.Account)
	}
	if strings.Contains(name, "/") {
		return Ref{}, model.CrossModeMisuse(model.KindProject)
	}
	return Account(name)
}

func (r *Resolver) resolveProject(owner, project string) (Ref, error) {
	if owner != "" && project == "" {
		before, after, found := strings.Cut(owner, "/")
		if !found {
			return Ref{}, model.CrossModeMisuse(model.KindAccount)
		}
		owner, project = before, after
	}
	return Project(owner, project)
}

func (r *Resolver) resolveURL(raw string) (Ref, error) {
	if raw == "" {
		return Ref{}, model.Validation("Input Required", "Please enter a URL.")
	}
	if !r.Parser.HasPrefix(raw) {
		e := model.MalformedURL(r.Parser.Host())
		e.Message = fmt.Sprintf("Please enter a valid URL starting with https://%s/", r.Parser.Host())
		return Ref{}, e
	}
	target, ok := r.Parser.Parse(raw)
	if !ok {
		return Ref{}, model.MalformedURL(r.Parser.Host())
	}
	if target.Kind == model.KindProject {
		return Project(target.Owner, target.Project)
	}
	return Account(target.Account)
}

// Guess picks the mode a free-form identifier belongs to and fills the matching field.
// URLs go to ModeURL, "owner/name" to ModeProject and anything else to ModeAccount.
func Guess(identifier string) (Mode, Input) {
	identifier = strings.TrimSpace(identifier)
	switch {
	case isURL(identifier):
		return ModeURL, Input{URL: identifier}
	case strings.Contains(identifier, "/"):
		owner, project, _ := strings.Cut(identifier, "/")
		return ModeProject, Input{Owner: owner, Project: project}
	default:
		return ModeAccount, Input{Account: identifier}
	}
}
