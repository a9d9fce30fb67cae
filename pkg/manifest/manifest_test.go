package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_OrdersCasesByName(t *testing.T) {
	m, err := Parse([]byte(`{
		"zeta": {"harness": "add", "params": {"a": 1}},
		"alpha": {"harness": "add", "params": {"a": 2}}
	}`), "cases.blessed.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, m.Names())
	assert.Equal(t, "add", m.Cases[0].Harness)
	assert.Equal(t, "cases.blessed.json", m.Cases[0].Source)
}

func TestParse_EmptyManifestIsValid(t *testing.T) {
	m, err := Parse([]byte(`{}`), "empty.blessed.json")
	require.NoError(t, err)
	assert.Empty(t, m.Cases)
}

func TestParse_MissingParamsDefaultsToNull(t *testing.T) {
	m, err := Parse([]byte(`{"only": {"harness": "noop"}}`), "m.blessed.json")
	require.NoError(t, err)
	assert.JSONEq(t, "null", string(m.Cases[0].Params))
}

func TestParse_DuplicateKeysWithinFile(t *testing.T) {
	_, err := Parse([]byte(`{
		"same": {"harness": "a"},
		"same": {"harness": "b"}
	}`), "dup.blessed.json")
	var serr *StructuralError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Error(), `duplicate case name "same"`)
}

func TestParse_RejectsBadNamesAndMissingHarness(t *testing.T) {
	_, err := Parse([]byte(`{
		"has space": {"harness": "a"},
		"ok": {"harness": ""}
	}`), "bad.blessed.json")
	var serr *StructuralError
	require.ErrorAs(t, err, &serr)
	assert.Len(t, serr.Problems, 2)
}

func TestParse_RejectsNonObjectRoot(t *testing.T) {
	_, err := Parse([]byte(`[1, 2]`), "arr.blessed.json")
	assert.Error(t, err)

	_, err = Parse([]byte(`"nope"`), "str.blessed.json")
	assert.Error(t, err)
}

func TestMerge_CrossFileDuplicate(t *testing.T) {
	a, err := Parse([]byte(`{"shared": {"harness": "x"}}`), "a.blessed.json")
	require.NoError(t, err)
	b, err := Parse([]byte(`{"shared": {"harness": "y"}}`), "b.blessed.json")
	require.NoError(t, err)

	err = a.Merge(b)
	var serr *StructuralError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Error(), "a.blessed.json")
	assert.Contains(t, serr.Error(), "b.blessed.json")
}

func TestDiscover_PoolsSortedFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, filepath.Dir(name)), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("b/second.blessed.json", `{"two": {"harness": "h"}}`)
	write("a/first.blessed.json", `{"one": {"harness": "h"}}`)
	write("a/not-a-manifest.json", `{"ignored": {"harness": "h"}}`)

	m, err := Discover(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, m.Names())
}

func TestDiscover_NoMatchesFailsClosed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "not-a-manifest.json"), []byte(`{}`), 0o644))

	_, err := Discover(dir, "")
	var serr *StructuralError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Error(), "no manifest files matching *.blessed.json")
}

func TestJSONSchema_Exports(t *testing.T) {
	data, err := JSONSchema()
	require.NoError(t, err)
	assert.Contains(t, string(data), "Blessed Manifest Entry v0")
	assert.Contains(t, string(data), "harness")
}
