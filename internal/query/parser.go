package query

import (
	"regexp"
	"strings"

	"github.com/verte-zerg/repolens/internal/model"
)

// DefaultHost is the web host accepted by URL search when none is configured.
const DefaultHost = "github.com"

// Target is the raw result of parsing a URL. Segments are not validated.
type Target struct {
	Kind model.Kind
	// Account is set for KindAccount.
	Account string
	// Owner and Project are set for KindProject.
	Owner   string
	Project string
}

// Parser recognizes account and project URLs on a single host.
type Parser struct {
	host    string
	pattern *regexp.Regexp
}

// NewParser returns a Parser for host. An empty host means DefaultHost.
func NewParser(host string) Parser {
	host = strings.TrimSpace(host)
	if host == "" {
		host = DefaultHost
	}
	// Not anchored at the end: deeper paths such as /tree/main still name the project.
	pattern := regexp.MustCompile(`^https?://` + regexp.QuoteMeta(host) + `/([^/?#]+)(?:/([^/?#]+))?`)
	return Parser{host: host, pattern: pattern}
}

// Host returns the accepted host.
func (p Parser) Host() string {
	if p.host == "" {
		return DefaultHost
	}
	return p.host
}

// HasPrefix reports whether raw starts with http(s)://host/.
func (p Parser) HasPrefix(raw string) bool {
	host := p.Host()
	return strings.HasPrefix(raw, "https://"+host+"/") || strings.HasPrefix(raw, "http://"+host+"/")
}

// Parse matches raw against the host pattern after stripping one trailing slash.
// It returns false when raw is not an account or project URL.
func (p Parser) Parse(raw string) (Target, bool) {
	if p.pattern == nil {
		p = NewParser(p.host)
	}
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "/")
	match := p.pattern.FindStringSubmatch(raw)
	if match == nil {
		return Target{}, false
	}
	if match[2] != "" {
		return Target{Kind: model.KindProject, Owner: match[1], Project: match[2]}, true
	}
	return Target{Kind: model.KindAccount, Account: match[1]}, true
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
}
