package query

import (
	"strings"
	"testing"

	"github.com/verte-zerg/repolens/internal/model"
)

func TestValidateAccountAccepts(t *testing.T) {
	valid := []string{"a", "A1", "octo-cat", "x9-y8-z7", strings.Repeat("a", 39)}
	for _, name := range valid {
		if err := ValidateAccount(name); err != nil {
			t.Fatalf("expected %q to be valid, got %v", name, err)
		}
	}
}

func TestValidateAccountRejects(t *testing.T) {
	invalid := []string{"", "-lead", "trail-", "has space", "dot.name", "under_score", "ünï", strings.Repeat("a", 40), "a/b"}
	for _, name := range invalid {
		err := ValidateAccount(name)
		if err == nil {
			t.Fatalf("expected %q to be rejected", name)
		}
		if !model.IsCode(err, model.CodeValidation) {
			t.Fatalf("expected validation error for %q, got %v", name, err)
		}
	}
}

func TestValidateProject(t *testing.T) {
	for _, name := range []string{"widget", "my.lib", "a_b-c", ".github", strings.Repeat("p", 100)} {
		if err := ValidateProject(name); err != nil {
			t.Fatalf("expected %q to be valid, got %v", name, err)
		}
	}
	for _, name := range []string{"", "sp ace", "a/b", strings.Repeat("p", 101)} {
		if err := ValidateProject(name); err == nil {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
}

func TestParserParse(t *testing.T) {
	p := NewParser("")
	cases := []struct {
		raw  string
		ok   bool
		want Target
	}{
		{raw: "https://github.com/acme", ok: true, want: Target{Kind: model.KindAccount, Account: "acme"}},
		{raw: "https://github.com/acme/widget", ok: true, want: Target{Kind: model.KindProject, Owner: "acme", Project: "widget"}},
		{raw: "https://github.com/acme/widget/", ok: true, want: Target{Kind: model.KindProject, Owner: "acme", Project: "widget"}},
		{raw: "http://github.com/acme/", ok: true, want: Target{Kind: model.KindAccount, Account: "acme"}},
		{raw: "https://github.com/acme/widget/tree/main", ok: true, want: Target{Kind: model.KindProject, Owner: "acme", Project: "widget"}},
		{raw: "not a url", ok: false},
		{raw: "https://github.com/", ok: false},
		{raw: "https://gitlab.com/acme", ok: false},
		{raw: "", ok: false},
	}
	for _, tc := range cases {
		got, ok := p.Parse(tc.raw)
		if ok != tc.ok {
			t.Fatalf("Parse(%q) ok = %v, want %v", tc.raw, ok, tc.ok)
		}
		if ok && got != tc.want {
			t.Fatalf("Parse(%q) = %+v, want %+v", tc.raw, got, tc.want)
		}
	}
}

func TestParserCustomHost(t *testing.T) {
	p := NewParser("git.example.org")
	got, ok := p.Parse("https://git.example.org/team/tool")
	if !ok || got.Owner != "team" || got.Project != "tool" {
		t.Fatalf("unexpected parse: %+v %v", got, ok)
	}
	if _, ok := p.Parse("https://github.com/team/tool"); ok {
		t.Fatalf("expected other host to be rejected")
	}
}

func TestResolveAccount(t *testing.T) {
	r := NewResolver("")
	ref, err := r.Resolve(ModeAccount, Input{Account: "  octocat "})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ref.Kind() != model.KindAccount || ref.Name() != "octocat" || ref.Identifier() != "octocat" {
		t.Fatalf("unexpected ref: %v", ref)
	}
	ref, err = r.Resolve(ModeAccount, Input{Account: "https://github.com/octocat"})
	if err != nil || ref.Name() != "octocat" {
		t.Fatalf("expected account URL to resolve, got %v %v", ref, err)
	}
}

func TestResolveCrossModeMisuse(t *testing.T) {
	r := NewResolver("")
	cases := []struct {
		mode     Mode
		in       Input
		expected model.Kind
	}{
		{mode: ModeAccount, in: Input{Account: "acme/widget"}, expected: model.KindProject},
		{mode: ModeAccount, in: Input{Account: "https://github.com/acme/widget"}, expected: model.KindProject},
		{mode: ModeAccount, in: Input{Account: "bad name/x"}, expected: model.KindProject},
		{mode: ModeProject, in: Input{Owner: "acme"}, expected: model.KindAccount},
	}
	for _, tc := range cases {
		_, err := r.Resolve(tc.mode, tc.in)
		e, ok := model.AsError(err)
		if !ok || e.Code != model.CodeCrossModeMisuse {
			t.Fatalf("%v %+v: expected cross-mode misuse, got %v", tc.mode, tc.in, err)
		}
		if e.Expected != tc.expected {
			t.Fatalf("%v %+v: expected %v, got %v", tc.mode, tc.in, tc.expected, e.Expected)
		}
	}
}

func TestResolveProject(t *testing.T) {
	r := NewResolver("")
	ref, err := r.Resolve(ModeProject, Input{Owner: "acme", Project: "widget"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ref.Kind() != model.KindProject || ref.Owner() != "acme" || ref.Name() != "widget" {
		t.Fatalf("unexpected ref: %v", ref)
	}
	if ref.Identifier() != "acme/widget" {
		t.Fatalf("unexpected identifier: %q", ref.Identifier())
	}

	ref, err = r.Resolve(ModeProject, Input{Owner: "acme/widget"})
	if err != nil || ref.Owner() != "acme" || ref.Name() != "widget" {
		t.Fatalf("expected owner/project split, got %v %v", ref, err)
	}

	_, err = r.Resolve(ModeProject, Input{Project: "widget"})
	if e, ok := model.AsError(err); !ok || e.Title != "Input Required" {
		t.Fatalf("expected input required, got %v", err)
	}
	_, err = r.Resolve(ModeProject, Input{Owner: "-acme", Project: "widget"})
	if e, ok := model.AsError(err); !ok || e.Title != "Invalid Owner" {
		t.Fatalf("expected invalid owner, got %v", err)
	}
}

func TestResolveURL(t *testing.T) {
	r := NewResolver("")
	ref, err := r.Resolve(ModeURL, Input{URL: "https://github.com/acme/widget/"})
	if err != nil || ref.Identifier() != "acme/widget" {
		t.Fatalf("unexpected result: %v %v", ref, err)
	}
	ref, err = r.Resolve(ModeURL, Input{URL: "https://github.com/acme"})
	if err != nil || ref.Kind() != model.KindAccount {
		t.Fatalf("unexpected result: %v %v", ref, err)
	}

	for _, raw := range []string{"ftp://github.com/acme", "https://example.com/acme", "github.com/acme"} {
		_, err := r.Resolve(ModeURL, Input{URL: raw})
		if !model.IsCode(err, model.CodeMalformedURL) {
			t.Fatalf("%q: expected malformed URL, got %v", raw, err)
		}
	}
	_, err = r.Resolve(ModeURL, Input{})
	if !model.IsCode(err, model.CodeValidation) {
		t.Fatalf("expected validation error for empty URL, got %v", err)
	}
	_, err = r.Resolve(ModeURL, Input{URL: "https://github.com/-bad-"})
	if !model.IsCode(err, model.CodeValidation) {
		t.Fatalf("expected validation error for bad segment, got %v", err)
	}
}

func TestZeroRef(t *testing.T) {
	var ref Ref
	if !ref.IsZero() {
		t.Fatalf("expected zero ref")
	}
	if _, err := Account("-x"); err == nil {
		t.Fatalf("expected constructor to validate")
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"account": ModeAccount, "Project": ModeProject, "url": ModeURL} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %v %v", in, got, err)
		}
	}
	if _, err := ParseMode("org"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestModeKind(t *testing.T) {
	for mode, want := range map[Mode]model.Kind{
		ModeAccount: model.KindAccount,
		ModeProject: model.KindProject,
		ModeURL:     model.KindUnknown,
	} {
		if got := mode.Kind(); got != want {
			t.Fatalf("%v.Kind() = %v, want %v", mode, got, want)
		}
	}
}

func TestGuess(t *testing.T) {
	r := NewResolver("")
	cases := []struct {
		in   string
		mode Mode
		want string
	}{
		{in: "octo", mode: ModeAccount, want: "octo"},
		{in: " acme/widget ", mode: ModeProject, want: "acme/widget"},
		{in: "https://github.com/acme/widget", mode: ModeURL, want: "acme/widget"},
	}
	for _, tc := range cases {
		mode, in := Guess(tc.in)
		if mode != tc.mode {
			t.Fatalf("Guess(%q) mode = %v, want %v", tc.in, mode, tc.mode)
		}
		ref, err := r.Resolve(mode, in)
		if err != nil {
			t.Fatalf("Guess(%q) did not resolve: %v", tc.in, err)
		}
		if ref.Identifier() != tc.want {
			t.Fatalf("Guess(%q) resolved to %q, want %q", tc.in, ref.Identifier(), tc.want)
		}
	}
}
