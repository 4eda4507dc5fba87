// Package query turns raw search input into validated backend queries.
package query

import (
	"github.com/verte-zerg/repolens/internal/model"
)

// Ref is a validated query: either an account or an owner/project pair.
// The zero Ref is not a valid query; use Account or Project to build one.
type Ref struct {
	kind  model.Kind
	owner string
	name  string
}

// Account builds an account query after validating name.
func Account(name string) (Ref, error) {
	if err := ValidateAccount(name); err != nil {
		return Ref{}, err
	}
	return Ref{kind: model.KindAccount, name: name}, nil
}

// Project builds a project query after validating owner and name.
func Project(owner, name string) (Ref, error) {
	if err := ValidateProjectPair(owner, name); err != nil {
		return Ref{}, err
	}
	return Ref{kind: model.KindProject, owner: owner, name: name}, nil
}

// Kind returns KindAccount or KindProject, or KindUnknown for the zero Ref.
func (r Ref) Kind() model.Kind { return r.kind }

// Owner returns the owning account of a project query, empty for account queries.
func (r Ref) Owner() string { return r.owner }

// Name returns the account name or the project name.
func (r Ref) Name() string { return r.name }

// IsZero reports whether r was built without a constructor.
func (r Ref) IsZero() bool { return r.kind == model.KindUnknown }

// Identifier returns "name" for accounts and "owner/name" for projects.
func (r Ref) Identifier() string {
	if r.kind == model.KindProject {
		return r.owner + "/" + r.name
	}
	return r.name
}

func (r Ref) String() string {
	return r.kind.String() + ":" + r.Identifier()
}
