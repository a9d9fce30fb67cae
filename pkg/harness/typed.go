package harness

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Register adds a harness whose input schema is derived from the Go type In
// with invopop/jsonschema. The wrapper decodes validated params into In,
// calls fn, and returns its output for canonical serialization — the Go
// equivalent of declaring a harness by its native signature.
func Register[In any, Out any](r *Registry, name string, fn func(ctx context.Context, in In) (Out, error)) error {
	doc, err := DeriveSchema[In]()
	if err != nil {
		return fmt.Errorf("derive schema for harness %q: %w", name, err)
	}
	wrapped := func(ctx context.Context, params json.RawMessage) (any, error) {
		var in In
		if err := json.Unmarshal(params, &in); err != nil {
			return nil, fmt.Errorf("decode input: %w", err)
		}
		return fn(ctx, in)
	}
	return r.Register(name, doc, wrapped)
}

// DeriveSchema reflects a JSON Schema Draft 2020-12 document from the Go
// type In.
func DeriveSchema[In any]() (any, error) {
	reflector := new(jsonschema.Reflector)
	reflector.DoNotReference = false

	var zero In
	s := reflector.Reflect(&zero)

	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal derived schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal derived schema: %w", err)
	}
	return doc, nil
}
