// Package manifest parses and pools blessed test-case manifests. A manifest
// file maps case names to a harness name plus a JSON params payload; names
// must be unique across every file loaded into one run.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
)

// Definition is one manifest entry as written in a *.blessed.json file.
type Definition struct {
	Harness string          `json:"harness"`
	Params  json.RawMessage `json:"params,omitempty" jsonschema:"description=Arbitrary JSON input passed to the harness"`
}

// Case is a fully resolved test case ready for the engine.
type Case struct {
	Name    string
	Harness string
	Params  json.RawMessage
	Source  string // manifest file the case came from
}

// Manifest is a pooled, ordered collection of cases. Order is deterministic:
// file load order, then lexicographic name order within each file.
type Manifest struct {
	Cases []Case
}

// StructuralError reports problems that make a manifest unusable. No case may
// run while one is present.
type StructuralError struct {
	Source   string // file path, empty for cross-file problems
	Problems []string
}

func (e *StructuralError) Error() string {
	where := e.Source
	if where == "" {
		where = "manifest set"
	}
	return fmt.Sprintf("%s: %s", where, strings.Join(e.Problems, "; "))
}

// Case names become snapshot filenames, so the accepted alphabet is narrow.
var caseNameRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Parse decodes a single manifest document. The root must be a JSON object of
// name → definition; duplicate keys within the document are rejected at the
// token level (encoding/json would silently keep the last one).
func Parse(data []byte, source string) (*Manifest, error) {
	var problems []string

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, &StructuralError{Source: source, Problems: []string{fmt.Sprintf("parse: %v", err)}}
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, &StructuralError{Source: source, Problems: []string{"manifest root must be a JSON object"}}
	}

	seen := make(map[string]bool)
	var cases []Case
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, &StructuralError{Source: source, Problems: []string{fmt.Sprintf("parse: %v", err)}}
		}
		name := keyTok.(string)

		var def Definition
		if err := dec.Decode(&def); err != nil {
			return nil, &StructuralError{Source: source, Problems: []string{fmt.Sprintf("case %q: %v", name, err)}}
		}

		if seen[name] {
			problems = append(problems, fmt.Sprintf("duplicate case name %q", name))
			continue
		}
		seen[name] = true

		if name == "" || !caseNameRe.MatchString(name) {
			problems = append(problems, fmt.Sprintf("invalid case name %q: must match %s", name, caseNameRe.String()))
		}
		if def.Harness == "" {
			problems = append(problems, fmt.Sprintf("case %q: harness is required", name))
		}
		params := def.Params
		if len(params) == 0 {
			params = json.RawMessage("null")
		}
		cases = append(cases, Case{Name: name, Harness: def.Harness, Params: params, Source: source})
	}
	if _, err := dec.Token(); err != nil {
		return nil, &StructuralError{Source: source, Problems: []string{fmt.Sprintf("parse: %v", err)}}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &StructuralError{Source: source, Problems: []string{"trailing data after manifest object"}}
	}

	if len(problems) > 0 {
		return nil, &StructuralError{Source: source, Problems: problems}
	}

	sort.Slice(cases, func(i, j int) bool { return cases[i].Name < cases[j].Name })
	return &Manifest{Cases: cases}, nil
}

// Merge appends other's cases, enforcing cross-file name uniqueness.
func (m *Manifest) Merge(other *Manifest) error {
	firstSource := make(map[string]string, len(m.Cases))
	for _, c := range m.Cases {
		firstSource[c.Name] = c.Source
	}
	var problems []string
	for _, c := range other.Cases {
		if prev, ok := firstSource[c.Name]; ok {
			problems = append(problems, fmt.Sprintf("case %q defined in both %s and %s", c.Name, prev, c.Source))
			continue
		}
		firstSource[c.Name] = c.Source
		m.Cases = append(m.Cases, c)
	}
	if len(problems) > 0 {
		return &StructuralError{Problems: problems}
	}
	return nil
}

// Names returns the case names in manifest order.
func (m *Manifest) Names() []string {
	names := make([]string, len(m.Cases))
	for i, c := range m.Cases {
		names[i] = c.Name
	}
	return names
}
