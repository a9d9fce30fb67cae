package engine

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/SonOfLilit/bless/pkg/canonical"
	"github.com/SonOfLilit/bless/pkg/harness"
	"github.com/SonOfLilit/bless/pkg/manifest"
	"github.com/SonOfLilit/bless/pkg/snapshot"
)

// MissingPolicy decides how a never-staged snapshot classifies.
type MissingPolicy string

const (
	// MissingFail is the default: an unblessed case fails the run.
	MissingFail MissingPolicy = "fail"
	// MissingPending reports the case as awaiting approval without
	// failing the run.
	MissingPending MissingPolicy = "pending"
)

// Runner drives a set of cases through the comparison engine.
type Runner struct {
	Registry *harness.Registry
	Store    *snapshot.Store

	// Workers bounds parallel case execution; <=0 means GOMAXPROCS.
	Workers int
	// Timeout limits one harness invocation; 0 means no limit. An
	// invocation that exceeds it classifies as HarnessFailure; the
	// goroutine is not preempted, its result is discarded.
	Timeout time.Duration
	// MissingBaseline defaults to MissingFail when empty.
	MissingBaseline MissingPolicy
	// Filter is an optional expr-lang boolean expression over
	// {name, harness} selecting which cases run.
	Filter string
}

// RunCase executes one case end to end and classifies the outcome.
//
// The working snapshot is refreshed whenever the harness produced output —
// also on mismatch and missing baseline — so the artifact on disk is always
// current for review and approval. Invocation failures skip the write: a
// broken harness must not clobber a good snapshot.
func (r *Runner) RunCase(ctx context.Context, c manifest.Case) CaseResult {
	start := time.Now()
	res := CaseResult{Name: c.Name, Harness: c.Harness}
	defer func() { res.Duration = time.Since(start) }()

	out, ierr := r.invoke(ctx, c)
	if ierr != nil {
		if ierr.Kind == harness.KindSchemaViolation {
			res.Class = SchemaViolation
			res.Violations = ierr.Violations
		} else {
			res.Class = HarnessFailure
		}
		res.Err = ierr.Error()
		return res
	}

	actual, err := canonical.Marshal(out)
	if err != nil {
		res.Class = HarnessFailure
		res.Err = fmt.Sprintf("serialize output: %v", err)
		return res
	}
	res.Actual = actual

	if err := r.Store.WriteWorking(c.Name, actual); err != nil {
		res.Class = InfraError
		res.Err = err.Error()
		return res
	}

	baseline, ok, err := r.Store.ReadBaseline(c.Name)
	if err != nil {
		res.Class = InfraError
		res.Err = err.Error()
		return res
	}
	if !ok {
		if r.MissingBaseline == MissingPending {
			res.Class = Pending
		} else {
			res.Class = MissingBaseline
		}
		return res
	}

	if canonical.Equal(actual, baseline) {
		res.Class = Pass
		return res
	}
	res.Class = ContentMismatch
	res.Expected = baseline
	return res
}

func (r *Runner) invoke(ctx context.Context, c manifest.Case) (any, *harness.InvokeError) {
	if r.Timeout <= 0 {
		return r.Registry.Invoke(ctx, c.Harness, c.Params)
	}

	cctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	type outcome struct {
		out  any
		ierr *harness.InvokeError
	}
	done := make(chan outcome, 1)
	go func() {
		out, ierr := r.Registry.Invoke(cctx, c.Harness, c.Params)
		done <- outcome{out, ierr}
	}()

	select {
	case o := <-done:
		return o.out, o.ierr
	case <-cctx.Done():
		return nil, &harness.InvokeError{
			Kind:    harness.KindTimeout,
			Harness: c.Harness,
			Detail:  fmt.Sprintf("exceeded timeout of %s", r.Timeout),
		}
	}
}

// Run executes every case in m and aggregates a report.
//
// Structural problems — duplicate case names, unknown harnesses, a broken
// filter expression — abort the run before any harness executes and before
// any snapshot is written. Per-case failures never stop the other cases.
// Cancelling ctx stops dispatching new cases; in-flight cases run to
// completion and appear in the report.
func (r *Runner) Run(ctx context.Context, m *manifest.Manifest) (*Report, error) {
	if err := r.preflight(m); err != nil {
		return nil, err
	}

	cases, err := r.filterCases(m.Cases)
	if err != nil {
		return nil, err
	}

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(cases) {
		workers = len(cases)
	}
	if workers < 1 {
		workers = 1
	}

	results := make([]CaseResult, len(cases))
	workCh := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range workCh {
				results[idx] = r.RunCase(ctx, cases[idx])
			}
		}()
	}

	// Cooperative cancellation point: checked before each dispatch, so a
	// case already handed to a worker runs to completion.
dispatch:
	for idx := range cases {
		select {
		case <-ctx.Done():
			break dispatch
		case workCh <- idx:
		}
	}
	close(workCh)
	wg.Wait()

	rep := &Report{}
	for _, res := range results {
		if res.Class == "" {
			continue // never dispatched (run was cancelled)
		}
		rep.add(res)
	}
	return rep, ctx.Err()
}

// preflight rejects structural errors before anything executes.
func (r *Runner) preflight(m *manifest.Manifest) error {
	var problems []string
	seen := make(map[string]string, len(m.Cases))
	for _, c := range m.Cases {
		if prev, dup := seen[c.Name]; dup {
			problems = append(problems, fmt.Sprintf("duplicate case name %q (in %s and %s)", c.Name, prev, c.Source))
			continue
		}
		seen[c.Name] = c.Source
		if _, ok := r.Registry.Lookup(c.Harness); !ok {
			problems = append(problems, fmt.Sprintf("case %q: unknown harness %q", c.Name, c.Harness))
		}
	}
	if len(problems) > 0 {
		return &manifest.StructuralError{Problems: problems}
	}
	return nil
}

func (r *Runner) filterCases(cases []manifest.Case) ([]manifest.Case, error) {
	if r.Filter == "" {
		return cases, nil
	}
	program, err := r.compileFilter()
	if err != nil {
		return nil, err
	}
	var selected []manifest.Case
	for _, c := range cases {
		match, err := runFilter(program, c)
		if err != nil {
			return nil, err
		}
		if match {
			selected = append(selected, c)
		}
	}
	return selected, nil
}

func (r *Runner) compileFilter() (*vm.Program, error) {
	env := map[string]any{"name": "", "harness": ""}
	program, err := expr.Compile(r.Filter, expr.Env(env), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", r.Filter, err)
	}
	return program, nil
}

func runFilter(program *vm.Program, c manifest.Case) (bool, error) {
	out, err := expr.Run(program, map[string]any{"name": c.Name, "harness": c.Harness})
	if err != nil {
		return false, fmt.Errorf("eval filter for case %q: %w", c.Name, err)
	}
	match, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("filter did not return a bool for case %q (got %T)", c.Name, out)
	}
	return match, nil
}
