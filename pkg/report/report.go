// Package report renders a run report for humans: one line per case, a
// unified diff for every mismatch, and a summary with the process exit
// mapping. Rendering is deterministic so report output can itself be
// golden-tested.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/SonOfLilit/bless/pkg/engine"
)

// Outcome glyphs — convey meaning without relying on color alone.
const (
	glyphPass     = "✓"
	glyphMismatch = "✗"
	glyphMissing  = "?"
	glyphError    = "⚠"
	glyphPending  = "○"
)

var (
	colorGreen  = lipgloss.Color("42")
	colorRed    = lipgloss.Color("196")
	colorYellow = lipgloss.Color("214")
	colorDim    = lipgloss.Color("240")

	passStyle    = lipgloss.NewStyle().Foreground(colorGreen)
	failStyle    = lipgloss.NewStyle().Foreground(colorRed)
	warnStyle    = lipgloss.NewStyle().Foreground(colorYellow)
	pendingStyle = lipgloss.NewStyle().Foreground(colorDim)
	contextStyle = lipgloss.NewStyle().Foreground(colorDim)
	addStyle     = lipgloss.NewStyle().Foreground(colorGreen)
	delStyle     = lipgloss.NewStyle().Foreground(colorRed)
)

// Render formats the whole report. With color=false the output is plain text.
func Render(rep *engine.Report, color bool) string {
	var b strings.Builder
	for _, res := range rep.Results {
		renderCase(&b, res, color)
	}
	b.WriteString("\n")
	b.WriteString(summaryLine(rep.Summary))
	b.WriteString("\n")
	return b.String()
}

func renderCase(b *strings.Builder, res engine.CaseResult, color bool) {
	glyph, label, style := describe(res.Class)
	fmt.Fprintf(b, "  %s %s: %s\n", paint(glyph, style, color), res.Name, label)

	switch res.Class {
	case engine.ContentMismatch:
		b.WriteString(paint("      --- baseline", contextStyle, color) + "\n")
		b.WriteString(paint("      +++ actual", contextStyle, color) + "\n")
		b.WriteString(RenderDiff(res.Expected, res.Actual, color))
	case engine.SchemaViolation:
		for _, v := range res.Violations {
			line := v.Message
			if v.Path != "" {
				line = v.Path + ": " + v.Message
			}
			b.WriteString("      - " + line + "\n")
		}
	case engine.HarnessFailure, engine.InfraError:
		b.WriteString("      error: " + res.Err + "\n")
	}
}

func describe(class engine.Classification) (glyph, label string, style lipgloss.Style) {
	switch class {
	case engine.Pass:
		return glyphPass, "pass", passStyle
	case engine.ContentMismatch:
		return glyphMismatch, "mismatch", failStyle
	case engine.MissingBaseline:
		return glyphMissing, "missing baseline (not yet approved)", warnStyle
	case engine.Pending:
		return glyphPending, "pending approval", pendingStyle
	case engine.SchemaViolation:
		return glyphError, "schema violation", failStyle
	case engine.HarnessFailure:
		return glyphError, "harness failure", failStyle
	case engine.InfraError:
		return glyphError, "infrastructure error", warnStyle
	default:
		return glyphError, string(class), warnStyle
	}
}

func summaryLine(s engine.Summary) string {
	return fmt.Sprintf("  %d passed, %d mismatched, %d missing baseline, %d pending, %d errored",
		s.Passed, s.Mismatched, s.Missing, s.Pending, s.Errored)
}

// RenderDiff produces a line-level diff between the baseline and the fresh
// canonical text, indented for embedding in the report.
func RenderDiff(expected, actual []byte, color bool) string {
	dmp := diffmatchpatch.New()
	chars1, chars2, lineIndex := dmp.DiffLinesToChars(string(expected), string(actual))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(chars1, chars2, false), lineIndex)

	var b strings.Builder
	for _, d := range diffs {
		marker := " "
		style := contextStyle
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			marker = "-"
			style = delStyle
		case diffmatchpatch.DiffInsert:
			marker = "+"
			style = addStyle
		}
		for _, line := range splitLines(d.Text) {
			b.WriteString(paint(fmt.Sprintf("      %s %s", marker, line), style, color) + "\n")
		}
	}
	return b.String()
}

func splitLines(text string) []string {
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

func paint(s string, style lipgloss.Style, color bool) string {
	if !color {
		return s
	}
	return style.Render(s)
}

// ExitCode maps a report to the process exit status: zero only when no case
// failed. Pending cases do not fail by policy.
func ExitCode(rep *engine.Report) int {
	if rep.Failed() {
		return 1
	}
	return 0
}
