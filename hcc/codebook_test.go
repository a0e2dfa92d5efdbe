package hcc

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinCodebook(t *testing.T) {
	cb := BuiltinCodebook()
	assert.Equal(t, 19, cb.Len())
	assert.Equal(t, SourceBuiltin, cb.Source())

	_, ok := cb.Lookup("hypertension")
	assert.False(t, ok)

	entry, ok := cb.Lookup("diabetes type 2")
	require.True(t, ok)
	assert.Equal(t, "HCC 19", entry.Code)

	keys := cb.Keys()
	assert.True(t, sort.StringsAreSorted(keys))
}

func TestLoadCodebookFallbacks(t *testing.T) {
	dir := t.TempDir()
	logger := zerolog.Nop()

	assert.Equal(t, SourceBuiltin, LoadCodebook("", logger).Source())
	assert.Equal(t, SourceBuiltin, LoadCodebook(filepath.Join(dir, "missing.json"), logger).Source())

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{not json"), 0o644))
	cb := LoadCodebook(broken, logger)
	assert.Equal(t, SourceEmpty, cb.Source())
	assert.Zero(t, cb.Len())

	res, err := NewClassifier(cb, nil).Classify(context.Background(), []CandidateTerm{
		{Term: "diabetes", Category: CategoryChronicCondition},
		{Term: "hypertension", Category: CategoryCondition},
	})
	require.NoError(t, err)
	require.Len(t, res, 2)
	for _, r := range res {
		assert.Equal(t, "Unknown", r.HCCCode, r.Term)
		assert.Equal(t, StrategyUnmatched, r.Strategy)
	}

	// A directory cannot be read as a file.
	assert.Equal(t, SourceEmpty, LoadCodebook(dir, logger).Source())
}

func TestLoadCodebookFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codes.json")
	data := `{
  "Hypertension": {"code": "HCC 85", "description": "Congestive Heart Failure"},
  "  Atrial   Fibrillation ": {"code": "HCC 96", "description": "Specified Heart Arrhythmias"}
}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cb := LoadCodebook(path, zerolog.Nop())
	assert.Equal(t, path, cb.Source())
	assert.Equal(t, []string{"atrial fibrillation", "hypertension"}, cb.Keys())

	entry, ok := cb.Lookup("hypertension")
	require.True(t, ok)
	assert.Equal(t, "HCC 85", entry.Code)
}

func TestDefaultCodeEntriesIsACopy(t *testing.T) {
	entries := DefaultCodeEntries()
	delete(entries, "diabetes")
	_, ok := BuiltinCodebook().Lookup("diabetes")
	assert.True(t, ok)
}
