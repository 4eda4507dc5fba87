package query

import (
	"regexp"
	"unicode/utf8"

	"github.com/verte-zerg/repolens/internal/model"
)

const (
	maxAccountLen = 39
	maxProjectLen = 100
)

var (
	accountPattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]{0,37}[A-Za-z0-9])?$`)
	projectPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
)

// ValidAccountName reports whether s is a syntactically valid account or owner name.
func ValidAccountName(s string) bool {
	return accountPattern.MatchString(s)
}

// ValidProjectName reports whether s is a syntactically valid project name.
func ValidProjectName(s string) bool {
	return utf8.RuneCountInString(s) <= maxProjectLen && projectPattern.MatchString(s)
}

// ValidateAccount checks an account name typed into account search.
func ValidateAccount(name string) error {
	switch {
	case name == "":
		return model.Validation("Input Required", "Please enter an account name.")
	case utf8.RuneCountInString(name) > maxAccountLen:
		return model.Validation("Invalid Username", "Account names cannot be longer than 39 characters.")
	case !ValidAccountName(name):
		return model.Validation("Invalid Username", "Account names can only contain alphanumeric characters and hyphens, and cannot start or end with a hyphen.")
	}
	return nil
}

// ValidateOwner checks the owner half of a project query.
func ValidateOwner(owner string) error {
	switch {
	case owner == "":
		return model.Validation("Input Required", "Please enter both project owner and project name.")
	case utf8.RuneCountInString(owner) > maxAccountLen:
		return model.Validation("Invalid Input", "Owner name cannot exceed 39 characters.")
	case !ValidAccountName(owner):
		return model.Validation("Invalid Owner", "Owner name can only contain alphanumeric characters and hyphens, and cannot start or end with a hyphen.")
	}
	return nil
}

// ValidateProject checks the project half of a project query.
func ValidateProject(name string) error {
	switch {
	case name == "":
		return model.Validation("Input Required", "Please enter both project owner and project name.")
	case utf8.RuneCountInString(name) > maxProjectLen:
		return model.Validation("Invalid Input", "Project name cannot exceed 100 characters.")
	case !projectPattern.MatchString(name):
		return model.Validation("Invalid Project Name", "Project name can only contain alphanumeric characters, hyphens, underscores, and dots.")
	}
	return nil
}

// ValidateProjectPair checks both halves, owner first.
func ValidateProjectPair(owner, name string) error {
	if owner == "" || name == "" {
		return model.Validation("Input Required", "Please enter both project owner and project name.")
	}
	if err := ValidateOwner(owner); err != nil {
		return err
	}
	return ValidateProject(name)
}
