package canonical

import (
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_SortsKeysAndIndents(t *testing.T) {
	out, err := Marshal(map[string]any{
		"zebra": 1,
		"apple": map[string]any{"y": true, "x": nil},
		"mango": []any{"a", 2},
	})
	require.NoError(t, err)

	want := `{
  "apple": {
    "x": null,
    "y": true
  },
  "mango": [
    "a",
    2
  ],
  "zebra": 1
}
`
	assert.Equal(t, want, string(out))
}

func TestMarshal_EmptyContainers(t *testing.T) {
	out, err := Marshal(map[string]any{"list": []any{}, "obj": map[string]any{}})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"list\": [],\n  \"obj\": {}\n}\n", string(out))
}

func TestMarshal_ScalarRoot(t *testing.T) {
	out, err := Marshal(42)
	require.NoError(t, err)
	assert.Equal(t, "42\n", string(out))

	out, err = Marshal(nil)
	require.NoError(t, err)
	assert.Equal(t, "null\n", string(out))
}

func TestNormalize_PreservesNumberSpelling(t *testing.T) {
	out, err := Normalize([]byte(`{"int": 3, "float": 3.5, "exp": 1e3}`))
	require.NoError(t, err)
	assert.Contains(t, string(out), `"int": 3`)
	assert.Contains(t, string(out), `"float": 3.5`)
	assert.Contains(t, string(out), `"exp": 1e3`)
}

func TestNormalize_KeyOrderIndependent(t *testing.T) {
	a, err := Normalize([]byte(`{"b": 1, "a": {"d": 2, "c": 3}}`))
	require.NoError(t, err)
	b, err := Normalize([]byte(`{"a": {"c": 3, "d": 2}, "b": 1}`))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNormalize_RejectsTrailingData(t *testing.T) {
	_, err := Normalize([]byte(`{"a": 1} {"b": 2}`))
	assert.Error(t, err)
}

func TestNormalize_RejectsInvalidJSON(t *testing.T) {
	_, err := Normalize([]byte(`{"a":`))
	assert.Error(t, err)
}

func TestMarshal_RejectsUnserializableValue(t *testing.T) {
	_, err := Marshal(make(chan int))
	assert.Error(t, err)
}

func TestMarshal_StructAndMapAgree(t *testing.T) {
	type point struct {
		X int `json:"x"`
		Y int `json:"y"`
	}
	fromStruct, err := Marshal(point{X: 1, Y: 2})
	require.NoError(t, err)
	fromMap, err := Marshal(map[string]any{"y": 2, "x": 1})
	require.NoError(t, err)
	assert.Equal(t, fromStruct, fromMap)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal([]byte("{}\n"), []byte("{}\n")))
	assert.False(t, Equal([]byte("{}\n"), []byte("{}")))
	assert.True(t, Equal(nil, []byte{}))
}

func TestMarshal_Idempotence_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("normalize of canonical text is a fixed point", prop.ForAll(
		func(m map[string]string) bool {
			first, err := Marshal(m)
			if err != nil {
				return false
			}
			second, err := Normalize(first)
			if err != nil {
				return false
			}
			return Equal(first, second)
		},
		gen.MapOf(gen.Identifier(), gen.AlphaString()),
	))

	properties.Property("canonical text ends with exactly one newline", prop.ForAll(
		func(m map[string]string) bool {
			out, err := Marshal(m)
			if err != nil {
				return false
			}
			s := string(out)
			return strings.HasSuffix(s, "\n") && !strings.HasSuffix(s, "\n\n")
		},
		gen.MapOf(gen.Identifier(), gen.AlphaString()),
	))

	properties.Property("insertion order never affects canonical text", prop.ForAll(
		func(keys []string, values []string) bool {
			pairs := make(map[string]string)
			for i, k := range keys {
				if i < len(values) {
					pairs[k] = values[i]
				}
			}
			forward, backward := orderedJSON(pairs, false), orderedJSON(pairs, true)
			a, err := Normalize([]byte(forward))
			if err != nil {
				return false
			}
			b, err := Normalize([]byte(backward))
			if err != nil {
				return false
			}
			return Equal(a, b)
		},
		gen.SliceOf(gen.Identifier()),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}

// orderedJSON hand-builds a JSON object with keys in ascending or descending
// order so the two spellings differ only in key insertion order.
func orderedJSON(pairs map[string]string, reversed bool) string {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			swap := keys[i] > keys[j]
			if reversed {
				swap = keys[i] < keys[j]
			}
			if swap {
				keys[i], keys[j] = keys[j], keys[i]
			}
		}
	}
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%q:%q", k, pairs[k])
	}
	b.WriteByte('}')
	return b.String()
}
