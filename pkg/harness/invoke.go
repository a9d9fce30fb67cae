package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// Invocation error kinds.
const (
	KindUnknownHarness  = "unknown_harness"
	KindSchemaViolation = "schema_violation"
	KindFailed          = "failed"
	KindPanic           = "panic"
	KindTimeout         = "timeout"
)

// Violation is one schema-validation diagnostic with its JSON instance path.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// InvokeError describes why a harness invocation produced no output. It is
// always scoped to one case: an invocation failure never aborts the run.
type InvokeError struct {
	Kind       string
	Harness    string
	Detail     string
	Violations []Violation
}

func (e *InvokeError) Error() string {
	switch e.Kind {
	case KindSchemaViolation:
		parts := make([]string, len(e.Violations))
		for i, v := range e.Violations {
			if v.Path == "" {
				parts[i] = v.Message
			} else {
				parts[i] = fmt.Sprintf("%s: %s", v.Path, v.Message)
			}
		}
		return fmt.Sprintf("harness %q: input schema violation: %s", e.Harness, strings.Join(parts, "; "))
	case KindUnknownHarness:
		return fmt.Sprintf("unknown harness %q (%s)", e.Harness, e.Detail)
	default:
		return fmt.Sprintf("harness %q %s: %s", e.Harness, e.Kind, e.Detail)
	}
}

// Invoke resolves name, validates params against the harness's input schema,
// and calls it. A panic inside the harness is recovered and reported as an
// InvokeError; it never escapes to the caller.
func (r *Registry) Invoke(ctx context.Context, name string, params json.RawMessage) (out any, ierr *InvokeError) {
	h, ok := r.Lookup(name)
	if !ok {
		return nil, &InvokeError{
			Kind:    KindUnknownHarness,
			Harness: name,
			Detail:  fmt.Sprintf("available: %s", strings.Join(r.Names(), ", ")),
		}
	}

	if len(params) == 0 {
		params = json.RawMessage("null")
	}
	var doc any
	if err := json.Unmarshal(params, &doc); err != nil {
		return nil, &InvokeError{
			Kind:    KindSchemaViolation,
			Harness: name,
			Violations: []Violation{
				{Message: fmt.Sprintf("params are not valid JSON: %v", err)},
			},
		}
	}
	if err := h.compiled.Validate(doc); err != nil {
		return nil, &InvokeError{
			Kind:       KindSchemaViolation,
			Harness:    name,
			Violations: violationsFrom(err),
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			ierr = &InvokeError{Kind: KindPanic, Harness: name, Detail: fmt.Sprintf("%v", rec)}
		}
	}()
	result, err := h.fn(ctx, params)
	if err != nil {
		return nil, &InvokeError{Kind: KindFailed, Harness: name, Detail: err.Error()}
	}
	return result, nil
}

// violationsFrom flattens a validation error tree into leaf diagnostics,
// each carrying its instance location.
func violationsFrom(err error) []Violation {
	ve, ok := err.(*sjsonschema.ValidationError)
	if !ok {
		return []Violation{{Message: err.Error()}}
	}
	var out []Violation
	for _, leaf := range flatten(ve) {
		out = append(out, Violation{
			Path:    strings.Join(leaf.InstanceLocation, "/"),
			Message: fmt.Sprintf("%v", leaf.ErrorKind),
		})
	}
	return out
}

func flatten(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flatten(cause)...)
	}
	return flat
}
