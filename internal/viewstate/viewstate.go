// Package viewstate holds the application state shared by the search and results views.
//
// One query is in flight at a time. Begin supersedes any pending query: its
// context is cancelled and its ticket stops being current, so a late result
// carrying the old ticket is discarded by Resolve and Fail.
package viewstate

import (
	"context"
	"errors"
	"time"

	"github.com/verte-zerg/repolens/internal/model"
	"github.com/verte-zerg/repolens/internal/normalize"
	"github.com/verte-zerg/repolens/internal/query"
)

// Phase is the view currently shown. Exactly one phase is active.
type Phase int

const (
	PhaseInput Phase = iota
	PhaseLoading
	PhaseError
	// PhaseEmpty covers a missing or expired record.
	PhaseEmpty
	PhaseResults
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseLoading:
		return "loading"
	case PhaseError:
		return "error"
	case PhaseEmpty:
		return "empty"
	case PhaseResults:
		return "results"
	default:
		return "unknown"
	}
}

// Ticket identifies one submission.
type Ticket uint64

// State is not safe for concurrent use; the UI loop owns it.
type State struct {
	mode   query.Mode
	phase  Phase
	ticket Ticket
	ref    query.Ref
	model  *model.ChartModel
	err    error
	cancel context.CancelFunc
}

// New returns a State in the input phase.
func New(mode query.Mode) *State {
	return &State{mode: mode}
}

func (s *State) Mode() query.Mode         { return s.mode }
func (s *State) Phase() Phase             { return s.phase }
func (s *State) Ticket() Ticket           { return s.ticket }
func (s *State) Ref() query.Ref           { return s.ref }
func (s *State) Model() *model.ChartModel { return s.model }
func (s *State) Err() error               { return s.err }

// Pending reports whether a query is in flight.
func (s *State) Pending() bool { return s.phase == PhaseLoading }

// Current reports whether t belongs to the pending query.
func (s *State) Current(t Ticket) bool {
	return s.phase == PhaseLoading && t == s.ticket
}

// SetMode switches the search mode. A shown error is dismissed.
func (s *State) SetMode(mode query.Mode) {
	s.mode = mode
	if s.phase == PhaseError {
		s.phase = PhaseInput
		s.err = nil
	}
}

// Begin starts a query for ref, superseding any pending one. The returned
// context is cancelled when the query is superseded or the view is reset.
func (s *State) Begin(parent context.Context, ref query.Ref) (Ticket, context.Context) {
	s.invalidate()
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.ref = ref
	s.err = nil
	s.phase = PhaseLoading
	return s.ticket, ctx
}

// Resolve shows cm for ticket t. It reports false and changes nothing when t is stale.
func (s *State) Resolve(t Ticket, cm *model.ChartModel) bool {
	if !s.Current(t) || cm == nil {
		return false
	}
	s.release()
	s.model = cm
	s.err = nil
	s.phase = PhaseResults
	return true
}

// Fail records err for ticket t. The displayed model is left untouched.
func (s *State) Fail(t Ticket, err error) bool {
	if !s.Current(t) {
		return false
	}
	s.release()
	s.showError(err)
	return true
}

// Reject shows an error raised before any fetch, such as a validation failure.
// A pending query is superseded.
func (s *State) Reject(err error) {
	s.invalidate()
	s.showError(err)
}

// Open shows a stored record, enforcing expiry at now.
func (s *State) Open(rec model.Record, now time.Time, opts ...normalize.Option) error {
	s.invalidate()
	cm, err := normalize.Open(rec, now, opts...)
	if err != nil {
		if model.IsCode(err, model.CodeExpiredData) {
			s.phase = PhaseEmpty
			s.model = nil
			s.err = err
		} else {
			s.showError(err)
		}
		return err
	}
	s.model = cm
	s.err = nil
	s.phase = PhaseResults
	return nil
}

// Empty shows the empty phase, with reason when one is known.
func (s *State) Empty(reason error) {
	s.invalidate()
	s.phase = PhaseEmpty
	s.err = reason
}

// Reset cancels any pending query and returns to the input phase with nothing shown.
func (s *State) Reset() {
	s.invalidate()
	s.phase = PhaseInput
	s.ref = query.Ref{}
	s.model = nil
	s.err = nil
}

// Cancel abandons the pending query, if any, and returns to the input phase.
// The displayed model is kept.
func (s *State) Cancel() bool {
	if s.phase != PhaseLoading {
		return false
	}
	s.invalidate()
	s.phase = PhaseInput
	return true
}

// ErrorDetail returns the title and message for the current error.
func (s *State) ErrorDetail() (string, string) {
	return model.Describe(s.err)
}

func (s *State) showError(err error) {
	if err == nil {
		err = errors.New("unknown failure")
	}
	s.err = err
	s.phase = PhaseError
}

func (s *State) invalidate() {
	s.release()
	s.ticket++
}

func (s *State) release() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
