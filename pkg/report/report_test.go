package report

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"github.com/SonOfLilit/bless/pkg/engine"
	"github.com/SonOfLilit/bless/pkg/harness"
)

func sampleReport() *engine.Report {
	return &engine.Report{
		Results: []engine.CaseResult{
			{Name: "add_small", Harness: "add", Class: engine.Pass},
			{
				Name:     "add_large",
				Harness:  "add",
				Class:    engine.ContentMismatch,
				Expected: []byte("{\n  \"result\": 4\n}\n"),
				Actual:   []byte("{\n  \"result\": 3\n}\n"),
			},
			{Name: "new_case", Harness: "add", Class: engine.MissingBaseline},
			{
				Name:       "bad_input",
				Harness:    "add",
				Class:      engine.SchemaViolation,
				Violations: []harness.Violation{{Path: "a", Message: "got string, want integer"}},
			},
			{
				Name:    "broken",
				Harness: "boom",
				Class:   engine.HarnessFailure,
				Err:     `harness "boom" panic: deliberate`,
			},
			{Name: "later", Harness: "add", Class: engine.Pending},
		},
		Summary: engine.Summary{Total: 6, Passed: 1, Mismatched: 1, Missing: 1, Pending: 1, Errored: 2},
	}
}

func TestRender_Golden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "run_report", []byte(Render(sampleReport(), false)))
}

func TestRenderDiff_ChangedLine(t *testing.T) {
	out := RenderDiff([]byte("{\n  \"result\": 4\n}\n"), []byte("{\n  \"result\": 3\n}\n"), false)
	assert.Contains(t, out, `      -   "result": 4`)
	assert.Contains(t, out, `      +   "result": 3`)
	assert.Contains(t, out, "        {")
}

func TestRenderDiff_IdenticalInputs(t *testing.T) {
	text := []byte("{\n  \"a\": 1\n}\n")
	out := RenderDiff(text, text, false)
	for _, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
		assert.True(t, strings.HasPrefix(line, "        "), "identical inputs yield only context lines, got %q", line)
	}
}

func TestRender_DeterministicAcrossCalls(t *testing.T) {
	rep := sampleReport()
	assert.Equal(t, Render(rep, false), Render(rep, false))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 1, ExitCode(sampleReport()))

	clean := &engine.Report{Summary: engine.Summary{Total: 2, Passed: 1, Pending: 1}}
	clean.Results = []engine.CaseResult{
		{Name: "a", Class: engine.Pass},
		{Name: "b", Class: engine.Pending},
	}
	assert.Equal(t, 0, ExitCode(clean))
}
