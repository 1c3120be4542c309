package recommender

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cutoffs.csv", cutoffCSV)
	writeFile(t, dir, "value for money.csv", vfmCSV)

	loader := &Loader{}
	table, report, err := loader.LoadDir(dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "models", "model.json")
	meta := ModelMetadata{
		RecordCount:  report.RecordCount,
		CollegeCount: report.CollegeCount,
		VFMMatched:   report.VFMMatched,
		Sources:      report.Sources,
	}
	require.NoError(t, SaveModel(path, table, meta))

	loaded, loadedMeta, err := LoadModel(path)
	require.NoError(t, err)
	assert.Equal(t, meta, loadedMeta)
	assert.Equal(t, table.Records, loaded.Records)
	assert.Equal(t, table.BranchVFM, loaded.BranchVFM)
	require.Len(t, loaded.Identities, len(table.Identities))
	assert.Equal(t, table.Identities[0].CanonicalName, loaded.Identities[0].CanonicalName)
	assert.Equal(t, table.Identities[0].Aliases, loaded.Identities[0].Aliases)

	// The restored table is queryable without re-matching.
	id, ok := loaded.Identity("IIT Delhi")
	require.True(t, ok)
	assert.True(t, id.HasVFM)
}

func TestModelFileIsInspectable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cutoffs.csv", cutoffCSV)

	loader := &Loader{}
	table, _, err := loader.LoadDir(dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "model.json")
	require.NoError(t, SaveModel(path, table, ModelMetadata{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `"version": 1`)
	assert.Contains(t, text, "IIT Delhi")
	assert.True(t, strings.HasSuffix(text, "\n"))
}

func TestLoadModelErrors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := LoadModel(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := writeFile(t, dir, "bad.json", `{"version": 99, "records": [{}]}`)
	_, _, err = LoadModel(bad)
	assert.ErrorContains(t, err, "unsupported model version")

	empty := writeFile(t, dir, "empty.json", `{"version": 1, "records": []}`)
	_, _, err = LoadModel(empty)
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestSaveModelRejectsEmpty(t *testing.T) {
	assert.ErrorIs(t, SaveModel(filepath.Join(t.TempDir(), "m.json"), nil, ModelMetadata{}), ErrEmptyDataset)
	assert.ErrorIs(t, SaveModel(filepath.Join(t.TempDir(), "m.json"), &MergedTable{}, ModelMetadata{}), ErrEmptyDataset)
}
