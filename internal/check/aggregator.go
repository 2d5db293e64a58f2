package check

import (
	"context"
	"fmt"
	"strings"

	"smokectl/internal/reporting"
)

// InspectFunc is an optional drill-down invoked when a run has failures,
// e.g. listing the applications currently deployed in the target namespace.
// It is an injected collaborator, not engine logic.
type InspectFunc func(ctx context.Context) string

// Aggregator turns a run's accounting into the final report and exit code.
// Summarize is called exactly once per run, after the last check; the
// caller owns actually ending the process with the returned code.
type Aggregator struct {
	sink    reporting.Sink
	inspect InspectFunc
}

// NewAggregator returns an aggregator reporting through sink. inspect may
// be nil.
func NewAggregator(sink reporting.Sink, inspect InspectFunc) *Aggregator {
	if sink == nil {
		sink = reporting.NopSink{}
	}
	return &Aggregator{sink: sink, inspect: inspect}
}

// Summarize reports the run outcome and returns the process exit code:
// 0 iff no check failed, 1 otherwise.
func (a *Aggregator) Summarize(ctx context.Context, state *RunState) (int, string) {
	report := fmt.Sprintf("%d/%d checks passed", state.Passed, state.Total())
	if state.Failed == 0 {
		a.sink.Report(reporting.KindSuccess, report)
		return 0, report
	}

	report = fmt.Sprintf("%s; failed: %s", report, strings.Join(state.FailedChecks, ", "))
	a.sink.Report(reporting.KindFailure, report)

	if a.inspect != nil {
		if detail := a.inspect(ctx); detail != "" {
			a.sink.Report(reporting.KindInfo, detail)
		}
	}
	return 1, report
}
