package check

// RunState accumulates pass/fail accounting across the checks of one run.
// It is an explicit value handed to the orchestrator rather than ambient
// global state, so independent runs (and tests) never interfere. Execution
// is single-threaded; no locking.
type RunState struct {
	Passed       int
	Failed       int
	FailedChecks []string
}

// NewRunState returns empty accounting for a fresh run.
func NewRunState() *RunState {
	return &RunState{}
}

// Record books exactly one result. Passed+Failed always equals the number of
// Record calls.
func (s *RunState) Record(result Result) {
	if result.OK() {
		s.Passed++
		return
	}
	s.Failed++
	s.FailedChecks = append(s.FailedChecks, result.Label)
}

// Total returns the number of checks recorded so far.
func (s *RunState) Total() int {
	return s.Passed + s.Failed
}
