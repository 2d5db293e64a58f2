package check

import (
	"context"
	"testing"

	"smokectl/internal/reporting"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeAllPassed(t *testing.T) {
	rec := &reporting.Recorder{}
	agg := NewAggregator(rec, nil)

	state := NewRunState()
	state.Record(Result{Kind: KindSuccess, Label: "svc-a"})
	state.Record(Result{Kind: KindSuccess, Label: "svc-b"})

	code, report := agg.Summarize(context.Background(), state)

	assert.Equal(t, 0, code)
	assert.Equal(t, "2/2 checks passed", report)
	assert.NotEmpty(t, rec.Texts(reporting.KindSuccess))
}

func TestSummarizeWithFailures(t *testing.T) {
	inspected := false
	inspect := func(ctx context.Context) string {
		inspected = true
		return "frontend: 0/3 ready"
	}
	rec := &reporting.Recorder{}
	agg := NewAggregator(rec, inspect)

	state := NewRunState()
	state.Record(Result{Kind: KindSuccess, Label: "svc-a"})
	state.Record(Result{Kind: KindContentMismatch, Label: "svc-b"})
	state.Record(Result{Kind: KindTunnelTimeout, Label: "svc-c"})

	code, report := agg.Summarize(context.Background(), state)

	assert.Equal(t, 1, code)
	assert.Contains(t, report, "1/3 checks passed")
	assert.Contains(t, report, "svc-b, svc-c")
	assert.True(t, inspected, "inspection callback runs when a run has failures")
	assert.Equal(t, []string{"frontend: 0/3 ready"}, rec.Texts(reporting.KindInfo))
}

func TestSummarizeSkipsInspectionOnSuccess(t *testing.T) {
	inspected := false
	agg := NewAggregator(nil, func(ctx context.Context) string {
		inspected = true
		return "should not run"
	})

	state := NewRunState()
	state.Record(Result{Kind: KindSuccess, Label: "svc-a"})

	code, _ := agg.Summarize(context.Background(), state)
	assert.Equal(t, 0, code)
	assert.False(t, inspected)
}

func TestSummarizeEmptyRun(t *testing.T) {
	agg := NewAggregator(nil, nil)
	code, report := agg.Summarize(context.Background(), NewRunState())
	assert.Equal(t, 0, code)
	assert.Equal(t, "0/0 checks passed", report)
}

func TestRunStateRecord(t *testing.T) {
	state := NewRunState()
	state.Record(Result{Kind: KindSuccess, Label: "a"})
	state.Record(Result{Kind: KindResourceAbsent, Label: "b"})
	state.Record(Result{Kind: KindConnectionFailure, Label: "c"})

	assert.Equal(t, 1, state.Passed)
	assert.Equal(t, 2, state.Failed)
	assert.Equal(t, state.Total(), state.Passed+state.Failed)
	assert.Equal(t, []string{"b", "c"}, state.FailedChecks, "failure order is preserved")
}
