package recorder

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func TestJSONFileRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.jsonl")

	r, err := NewJSONFileRecorder(path)
	require.NoError(t, err)
	require.NoError(t, r.Record(entry{Name: "a", Value: 1.5}))
	require.NoError(t, r.Record(entry{Name: "b", Value: -2}))
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.Error(t, r.Record(entry{}))

	// reopening appends
	r, err = NewJSONFileRecorder(path)
	require.NoError(t, err)
	require.NoError(t, r.Record(entry{Name: "c"}))
	require.NoError(t, r.Close())

	entries, err := ReadAll[entry](path)
	require.NoError(t, err)
	assert.Equal(t, []entry{{"a", 1.5}, {"b", -2}, {"c", 0}}, entries)
}

func TestJSONFileRecorder_Errors(t *testing.T) {
	_, err := NewJSONFileRecorder(filepath.Join(t.TempDir(), "missing", "results.jsonl"))
	assert.Error(t, err)

	r, err := NewJSONFileRecorder(filepath.Join(t.TempDir(), "results.jsonl"))
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	assert.Error(t, r.Record(func() {}))

	_, err = ReadAll[entry](filepath.Join(t.TempDir(), "none.jsonl"))
	assert.Error(t, err)
}
