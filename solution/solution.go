package solution

import (
	"sync"
	"time"

	"github.com/kbukum/graphflow/pipeerr"
	"github.com/kbukum/graphflow/plan"
)

// Status is the terminal state of one operation's execution.
type Status string

const (
	StatusPending        Status = "pending"
	StatusRunning        Status = "running"
	StatusCompleted      Status = "completed"
	StatusPartial        Status = "partial"
	StatusFailedEndured  Status = "failed_endured"
	StatusFailedFatal    Status = "failed_fatal"
	StatusCanceled       Status = "canceled"
)

// OpResult records the outcome of one operation's execution within a Solution.
type OpResult struct {
	Name     string
	Status   Status
	Duration time.Duration
	Missing  []string
	Err      error
}

// Solution is the value store and execution ledger built up while running a
// plan.Plan. All methods are safe for concurrent use.
type Solution struct {
	mu sync.Mutex

	plan       *plan.Plan
	values     map[string]any
	results    map[string]OpResult
	overwrites map[string][]any
	finalized  bool
}

// New returns a Solution seeded with initial values (typically the plan's
// known inputs) for executing p.
func New(p *plan.Plan, initial map[string]any) *Solution {
	values := make(map[string]any, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &Solution{
		plan:    p,
		values:  values,
		results: make(map[string]OpResult),
	}
}

// Plan returns the plan this solution executes.
func (s *Solution) Plan() *plan.Plan { return s.plan }

// Get returns the current value for name, if present.
func (s *Solution) Get(name string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[name]
	return v, ok
}

// Values returns a snapshot copy of every value currently held.
func (s *Solution) Values() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Merge writes every entry of outputs into the solution. If a name already
// had a value, the latest write wins and both the displaced and new values
// are recorded against that name in Overwrites.
func (s *Solution) Merge(outputs map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return &pipeerr.SolutionFinalizedError{Attempted: "merge"}
	}
	for k, v := range outputs {
		if existing, exists := s.values[k]; exists {
			if s.overwrites == nil {
				s.overwrites = make(map[string][]any)
			}
			if len(s.overwrites[k]) == 0 {
				s.overwrites[k] = append(s.overwrites[k], existing)
			}
			s.overwrites[k] = append(s.overwrites[k], v)
		}
		s.values[k] = v
	}
	return nil
}

// Evict removes name from the solution's values, freeing whatever memory it
// held. It is a no-op if name is not present.
func (s *Solution) Evict(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return &pipeerr.SolutionFinalizedError{Attempted: "evict"}
	}
	delete(s.values, name)
	return nil
}

// RecordResult stores the outcome of one operation's execution.
func (s *Solution) RecordResult(r OpResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return &pipeerr.SolutionFinalizedError{Attempted: "record result for " + r.Name}
	}
	s.results[r.Name] = r
	return nil
}

// Result returns the recorded outcome for an operation name.
func (s *Solution) Result(name string) (OpResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.results[name]
	return r, ok
}

// Results returns a snapshot of every recorded operation outcome.
func (s *Solution) Results() map[string]OpResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]OpResult, len(s.results))
	for k, v := range s.results {
		out[k] = v
	}
	return out
}

// Overwrites returns, for every data name written more than once during
// execution, the list of values it held in write order (the first entry is
// the value displaced by the first collision, the last is the value
// currently in the solution).
func (s *Solution) Overwrites() map[string][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]any, len(s.overwrites))
	for k, vs := range s.overwrites {
		out[k] = append([]any(nil), vs...)
	}
	return out
}

// Finalize marks the solution as complete. Every subsequent mutation
// attempt returns a SolutionFinalizedError.
func (s *Solution) Finalize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finalized = true
}

// IsFinalized reports whether Finalize has been called.
func (s *Solution) IsFinalized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finalized
}
