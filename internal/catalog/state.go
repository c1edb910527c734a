package catalog

import (
	"slices"

	"github.com/matthieukhl/storefront/internal/models"
)

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State pairs the fetched baseline with the criteria and the visible list
// derived from them. It has a single owner and is not safe for concurrent
// use; results of background fetches are fed back through Loaded and
// Failed with the sequence number BeginFetch handed out.
type State struct {
	baseline []models.Product
	visible  []models.Product
	criteria Criteria
	status   Status
	err      error
	seq      uint64
}

// NewState returns an idle state with no criteria.
func NewState() *State {
	return &State{visible: []models.Product{}}
}

// BeginFetch marks a fetch as in flight and returns its sequence number.
// Responses to earlier fetches are ignored from now on.
func (s *State) BeginFetch() uint64 {
	s.seq++
	s.status = StatusLoading
	return s.seq
}

// Loaded installs a fetched baseline. It reports false when seq belongs
// to a superseded fetch, in which case nothing changes.
func (s *State) Loaded(seq uint64, products []models.Product) bool {
	if seq != s.seq {
		return false
	}
	s.baseline = slices.Clone(products)
	if s.baseline == nil {
		s.baseline = []models.Product{}
	}
	s.status = StatusReady
	s.err = nil
	s.recompute()
	return true
}

// Failed records a fetch failure. The previous baseline stays visible.
func (s *State) Failed(seq uint64, err error) bool {
	if seq != s.seq {
		return false
	}
	s.status = StatusFailed
	s.err = err
	return true
}

// SetCriteria replaces the criteria and recomputes the visible list.
func (s *State) SetCriteria(c Criteria) {
	s.criteria = c
	s.recompute()
}

func (s *State) recompute() {
	s.visible = Apply(s.baseline, s.criteria)
}

// Visible is the derived collection. Callers must not modify it.
func (s *State) Visible() []models.Product { return s.visible }

// Baseline is the last successfully fetched collection.
func (s *State) Baseline() []models.Product { return s.baseline }

func (s *State) Criteria() Criteria { return s.criteria }

func (s *State) Status() Status { return s.status }

// Err is the last fetch error while Status is StatusFailed.
func (s *State) Err() error { return s.err }

func (s *State) Loading() bool { return s.status == StatusLoading }
