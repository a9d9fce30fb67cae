// Package engine runs blessed test cases end to end: invoke the harness,
// serialize its output canonically, refresh the working snapshot, and compare
// against the version-control baseline.
package engine

import (
	"time"

	"github.com/SonOfLilit/bless/pkg/harness"
)

// Classification is the outcome category of one case.
type Classification string

const (
	// Pass: canonical output is byte-identical to the staged baseline.
	Pass Classification = "pass"
	// ContentMismatch: a baseline exists but differs from fresh output.
	ContentMismatch Classification = "mismatch"
	// MissingBaseline: the snapshot has never been staged. Failing by
	// default — unblessed cases must not silently pass.
	MissingBaseline Classification = "missing_baseline"
	// Pending: MissingBaseline downgraded to a non-failing status by the
	// pending policy.
	Pending Classification = "pending"
	// SchemaViolation: params rejected before the harness ran.
	SchemaViolation Classification = "schema_violation"
	// HarnessFailure: the harness errored, panicked, or timed out.
	HarnessFailure Classification = "harness_failure"
	// InfraError: filesystem or VCS access failed. Kept distinct from
	// mismatches so an I/O problem is never mistaken for a regression.
	InfraError Classification = "infra_error"
)

// CaseResult is the outcome of running one case.
type CaseResult struct {
	Name     string         `json:"name"`
	Harness  string         `json:"harness"`
	Class    Classification `json:"class"`
	Expected []byte         `json:"expected,omitempty"` // baseline canonical text
	Actual   []byte         `json:"actual,omitempty"`   // freshly computed canonical text
	Err      string         `json:"error,omitempty"`
	// Violations carries schema diagnostics when Class is SchemaViolation.
	Violations []harness.Violation `json:"violations,omitempty"`
	Duration   time.Duration       `json:"duration_ns"`
}

// Summary aggregates counts across a run.
type Summary struct {
	Total      int `json:"total"`
	Passed     int `json:"passed"`
	Mismatched int `json:"mismatched"`
	Missing    int `json:"missing"`
	Pending    int `json:"pending"`
	Errored    int `json:"errored"`
}

// Report is the aggregated outcome of a run. Results are in manifest order
// regardless of execution concurrency, so report diffs are deterministic.
type Report struct {
	Results []CaseResult `json:"results"`
	Summary Summary      `json:"summary"`
}

func (r *Report) add(res CaseResult) {
	r.Results = append(r.Results, res)
	r.Summary.Total++
	switch res.Class {
	case Pass:
		r.Summary.Passed++
	case ContentMismatch:
		r.Summary.Mismatched++
	case MissingBaseline:
		r.Summary.Missing++
	case Pending:
		r.Summary.Pending++
	default:
		r.Summary.Errored++
	}
}

// Failed reports whether any case is neither Pass nor Pending.
func (r *Report) Failed() bool {
	return r.Summary.Mismatched+r.Summary.Missing+r.Summary.Errored > 0
}
