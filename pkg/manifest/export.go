package manifest

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// JSONSchema produces a JSON Schema Draft 2020-12 document describing one
// manifest entry, using invopop/jsonschema over the Go Definition struct.
// Editors can attach it to *.blessed.json files for completion and linting.
func JSONSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = false

	s := r.Reflect(&Definition{})
	s.ID = "https://github.com/SonOfLilit/bless/schemas/manifest-entry-v0.json"
	s.Title = "Blessed Manifest Entry v0"
	s.Description = "Schema for one named case in a *.blessed.json manifest"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return data, nil
}
