package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/repolens/internal/model"
	"github.com/verte-zerg/repolens/internal/query"
	"github.com/verte-zerg/repolens/internal/viewstate"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeFetcher struct {
	calls []query.Ref
	err   error
}

func (f *fakeFetcher) Fetch(_ context.Context, ref query.Ref) (model.Record, error) {
	f.calls = append(f.calls, ref)
	if f.err != nil {
		return model.Record{}, f.err
	}
	var data string
	if ref.Kind() == model.KindProject {
		data = fmt.Sprintf(`{"repoName":%q,"fullName":%q}`, ref.Name(), ref.Identifier())
	} else {
		data = fmt.Sprintf(`{"githubUsername":%q}`, ref.Name())
	}
	return model.Record{Kind: ref.Kind(), Identifier: ref.Identifier(), Data: json.RawMessage(data), FetchedAt: testNow}, nil
}

type fakeRecorder struct {
	saved    []model.Record
	searches []model.SearchEntry
}

func (r *fakeRecorder) SaveRecord(_ context.Context, rec model.Record) (int64, error) {
	r.saved = append(r.saved, rec)
	return int64(len(r.saved)), nil
}

func (r *fakeRecorder) LogSearch(_ context.Context, entry model.SearchEntry) (int64, error) {
	r.searches = append(r.searches, entry)
	return int64(len(r.searches)), nil
}

func newTestModel(examples ...string) (*Model, *fakeFetcher, *fakeRecorder) {
	fetcher := &fakeFetcher{}
	recorder := &fakeRecorder{}
	m := NewModel(Options{
		Resolver: query.NewResolver(""),
		Fetcher:  fetcher,
		Recorder: recorder,
		Examples: examples,
		Now:      func() time.Time { return testNow },
	})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, fetcher, recorder
}

func key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func runes(s string, alt bool) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s), Alt: alt}
}

// fetched runs cmd and returns the fetch result it produces.
func fetched(t *testing.T, cmd tea.Cmd) fetchedMsg {
	t.Helper()
	for _, msg := range collect(cmd) {
		if f, ok := msg.(fetchedMsg); ok {
			return f
		}
	}
	t.Fatalf("command did not fetch")
	return fetchedMsg{}
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestSubmitShowsResults(t *testing.T) {
	m, fetcher, recorder := newTestModel()
	m.search.account.SetValue("octo")

	_, cmd := m.Update(key(tea.KeyEnter))
	if m.state.Phase() != viewstate.PhaseLoading {
		t.Fatalf("expected loading, got %v", m.state.Phase())
	}
	m.Update(fetched(t, cmd))

	if m.state.Phase() != viewstate.PhaseResults {
		t.Fatalf("expected results, got %v", m.state.Phase())
	}
	if len(fetcher.calls) != 1 || fetcher.calls[0].Identifier() != "octo" {
		t.Fatalf("unexpected fetches: %v", fetcher.calls)
	}
	if len(recorder.saved) != 1 {
		t.Fatalf("expected the record to be saved")
	}
	if len(recorder.searches) != 1 || !recorder.searches[0].Success || recorder.searches[0].Kind != model.KindAccount {
		t.Fatalf("unexpected search log: %+v", recorder.searches)
	}
	if view := m.View(); !strings.Contains(view, "Overview") {
		t.Fatalf("results view should show tabs:\n%s", view)
	}
}

func TestStaleResultIsDiscarded(t *testing.T) {
	m, _, recorder := newTestModel("octo", "hubot")
	_, first := m.Update(runes("1", true))
	firstMsg := fetched(t, first)

	_, second := m.Update(runes("2", true))
	if m.state.Phase() != viewstate.PhaseLoading {
		t.Fatalf("example during loading should supersede, got %v", m.state.Phase())
	}
	secondMsg := fetched(t, second)

	m.Update(firstMsg)
	if m.state.Phase() != viewstate.PhaseLoading {
		t.Fatalf("stale result must not change the view, got %v", m.state.Phase())
	}
	m.Update(secondMsg)
	if m.state.Model() == nil || m.state.Model().Header.Path != "hubot" {
		t.Fatalf("expected hubot results, got %+v", m.state.Model())
	}
	if len(recorder.searches) != 1 {
		t.Fatalf("stale result must not be logged: %+v", recorder.searches)
	}
}

func TestValidationErrorIsShown(t *testing.T) {
	m, fetcher, recorder := newTestModel()
	m.search.account.SetValue("octo/widget")

	m.Update(key(tea.KeyEnter))
	if m.state.Phase() != viewstate.PhaseError {
		t.Fatalf("expected error phase, got %v", m.state.Phase())
	}
	if len(fetcher.calls) != 0 {
		t.Fatalf("invalid input must not reach the backend")
	}
	if len(recorder.searches) != 1 || recorder.searches[0].Success || recorder.searches[0].ErrorCode == "" {
		t.Fatalf("rejected search should be logged as failed: %+v", recorder.searches)
	}
	title, _ := m.state.ErrorDetail()
	if !strings.Contains(m.View(), title) {
		t.Fatalf("error title %q missing from view", title)
	}

	m.Update(key(tea.KeyCtrlT))
	if m.state.Phase() != viewstate.PhaseInput || m.state.Mode() != query.ModeProject {
		t.Fatalf("mode switch should dismiss the error")
	}
}

func TestRejectedURLSearchIsLoggedWithoutKind(t *testing.T) {
	m, fetcher, recorder := newTestModel()
	m.Update(key(tea.KeyCtrlT))
	m.Update(key(tea.KeyCtrlT))
	if m.state.Mode() != query.ModeURL {
		t.Fatalf("expected url mode, got %v", m.state.Mode())
	}
	m.search.url.SetValue("https://example.org/octo")

	m.Update(key(tea.KeyEnter))
	if len(fetcher.calls) != 0 {
		t.Fatalf("invalid url must not reach the backend")
	}
	if len(recorder.searches) != 1 {
		t.Fatalf("expected one logged search, got %+v", recorder.searches)
	}
	got := recorder.searches[0]
	if got.Kind != model.KindUnknown || got.ErrorCode != "malformed_url" {
		t.Fatalf("unexpected search log: %+v", got)
	}
}

func TestFetchFailureShowsError(t *testing.T) {
	m, fetcher, recorder := newTestModel()
	fetcher.err = model.NotFound(model.KindAccount, "ghost")
	m.search.account.SetValue("ghost")

	_, cmd := m.Update(key(tea.KeyEnter))
	m.Update(fetched(t, cmd))

	title, _ := m.state.ErrorDetail()
	if m.state.Phase() != viewstate.PhaseError || title != "Account Not Found" {
		t.Fatalf("unexpected state: %v %q", m.state.Phase(), title)
	}
	if len(recorder.saved) != 0 {
		t.Fatalf("failed fetch must not be saved")
	}
	if len(recorder.searches) != 1 || recorder.searches[0].Success {
		t.Fatalf("failed fetch should be logged: %+v", recorder.searches)
	}
}

func TestEscCancelsLoading(t *testing.T) {
	m, _, _ := newTestModel()
	m.search.account.SetValue("octo")
	_, cmd := m.Update(key(tea.KeyEnter))
	msg := fetched(t, cmd)

	m.Update(key(tea.KeyEsc))
	if m.state.Phase() != viewstate.PhaseInput {
		t.Fatalf("expected input after cancel, got %v", m.state.Phase())
	}
	m.Update(msg)
	if m.state.Phase() != viewstate.PhaseInput {
		t.Fatalf("cancelled result must be discarded")
	}
}

func TestExampleShortcut(t *testing.T) {
	m, fetcher, _ := newTestModel("octo", "golang/go")

	_, cmd := m.Update(runes("2", true))
	if m.state.Mode() != query.ModeProject {
		t.Fatalf("example should switch to project mode, got %v", m.state.Mode())
	}
	m.Update(fetched(t, cmd))
	if len(fetcher.calls) != 1 || fetcher.calls[0].Identifier() != "golang/go" {
		t.Fatalf("unexpected fetches: %v", fetcher.calls)
	}
	if m.state.Phase() != viewstate.PhaseResults {
		t.Fatalf("expected results, got %v", m.state.Phase())
	}

	m.Update(runes("/", false))
	if m.state.Phase() != viewstate.PhaseInput || m.state.Model() != nil {
		t.Fatalf("new search should clear the results")
	}
}

func TestURLPreview(t *testing.T) {
	m, _, _ := newTestModel()
	m.search.url.SetValue("https://github.com/golang/go")
	if got := m.search.preview(); !strings.Contains(got, "Valid project URL detected: golang/go") {
		t.Fatalf("unexpected preview: %q", got)
	}
	m.search.url.SetValue("https://github.com/octo/")
	if got := m.search.preview(); !strings.Contains(got, "Valid account URL detected: octo") {
		t.Fatalf("unexpected preview: %q", got)
	}
}

func TestShowExpiredRecord(t *testing.T) {
	m, _, _ := newTestModel()
	m.ShowRecord(model.Record{
		Kind:       model.KindAccount,
		Identifier: "octo",
		Data:       json.RawMessage(`{"githubUsername":"octo"}`),
		FetchedAt:  testNow.Add(-10 * time.Minute),
	})
	if m.state.Phase() != viewstate.PhaseEmpty {
		t.Fatalf("expired record should show the empty view, got %v", m.state.Phase())
	}
	m.Update(key(tea.KeyEnter))
	if m.state.Phase() != viewstate.PhaseInput {
		t.Fatalf("enter should start a new search, got %v", m.state.Phase())
	}
}

func TestExampleIndex(t *testing.T) {
	if i, ok := exampleIndex("alt+3"); !ok || i != 2 {
		t.Fatalf("unexpected index: %d %v", i, ok)
	}
	for _, k := range []string{"3", "alt+0", "alt+a", "ctrl+3"} {
		if _, ok := exampleIndex(k); ok {
			t.Fatalf("%q should not be an example key", k)
		}
	}
}
