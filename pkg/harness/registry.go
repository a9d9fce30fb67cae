// Package harness holds the runtime registry of named harness functions and
// performs schema-checked invocation. The host application populates the
// registry before a run starts; the engine only reads it, so concurrent
// lookups during a run are safe.
package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// Func is the callable shape of a harness: validated JSON params in,
// serializable output out.
type Func func(ctx context.Context, params json.RawMessage) (any, error)

// Harness is one registered entry.
type Harness struct {
	Name string
	// RawSchema is the input schema as an unmarshaled JSON document,
	// kept for export and introspection.
	RawSchema any

	compiled *sjsonschema.Schema
	fn       Func
}

// Registry maps harness names to their descriptors. Not safe for concurrent
// registration; register everything before the first run.
type Registry struct {
	harnesses map[string]*Harness
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{harnesses: make(map[string]*Harness)}
}

// Register adds a harness under name. schemaDoc describes the accepted input
// shape: a JSON Schema document given as unmarshaled JSON (map/bool), raw
// bytes, or any Go value that marshals to one. The schema is compiled eagerly
// so a broken schema fails at registration, not mid-run.
func (r *Registry) Register(name string, schemaDoc any, fn Func) error {
	if name == "" {
		return fmt.Errorf("register harness: name is required")
	}
	if fn == nil {
		return fmt.Errorf("register harness %q: fn is required", name)
	}
	if _, exists := r.harnesses[name]; exists {
		return fmt.Errorf("register harness %q: already registered", name)
	}

	doc, err := normalizeSchemaDoc(schemaDoc)
	if err != nil {
		return fmt.Errorf("register harness %q: %w", name, err)
	}

	resource := name + ".schema.json"
	c := sjsonschema.NewCompiler()
	if err := c.AddResource(resource, doc); err != nil {
		return fmt.Errorf("register harness %q: add schema resource: %w", name, err)
	}
	sch, err := c.Compile(resource)
	if err != nil {
		return fmt.Errorf("register harness %q: compile schema: %w", name, err)
	}

	r.harnesses[name] = &Harness{Name: name, RawSchema: doc, compiled: sch, fn: fn}
	return nil
}

// Lookup returns the harness registered under name.
func (r *Registry) Lookup(name string) (*Harness, bool) {
	h, ok := r.harnesses[name]
	return h, ok
}

// Names returns all registered harness names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.harnesses))
	for name := range r.harnesses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// normalizeSchemaDoc converts the accepted schemaDoc forms into the
// unmarshaled-JSON representation the schema compiler wants.
func normalizeSchemaDoc(schemaDoc any) (any, error) {
	switch v := schemaDoc.(type) {
	case nil:
		// No schema means any input is accepted.
		return true, nil
	case bool, map[string]any:
		return v, nil
	case json.RawMessage:
		return unmarshalSchema([]byte(v))
	case []byte:
		return unmarshalSchema(v)
	case string:
		return unmarshalSchema([]byte(v))
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal schema document: %w", err)
		}
		return unmarshalSchema(data)
	}
}

func unmarshalSchema(data []byte) (any, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal schema document: %w", err)
	}
	return doc, nil
}
