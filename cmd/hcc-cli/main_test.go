package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.json")
	body := `{"env":"production","logLevel":"error","codebookPath":"` + filepath.ToSlash(filepath.Join(dir, "codebook.json")) +
		`","labTablePath":"` + filepath.ToSlash(filepath.Join(dir, "labs.json")) + `"}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRunCommandCSV(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	input := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(input, []byte("Patient has type 2 diabetes and COPD."), 0o644))

	out, err := execute(t, "run", "--config", cfg, "--input", input, "--format", "csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, "term,hcc_code,description,confidence,category,strategy", lines[0])
	assert.Contains(t, out, "HCC 19")
}

func TestRunCommandJSONFile(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	input := filepath.Join(dir, "visit.txt")
	require.NoError(t, os.WriteFile(input, []byte("Assessment: COPD exacerbation."), 0o644))
	output := filepath.Join(dir, "out", "visit.json")

	_, err := execute(t, "run", "--config", cfg, "--input", input, "--output", output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var report struct {
		DocumentName string `json:"document_name"`
		HCCCodes     []struct {
			HCCCode string `json:"hcc_code"`
		} `json:"hcc_codes"`
	}
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "visit", report.DocumentName)
	require.NotEmpty(t, report.HCCCodes)
}

func TestRunCommandValidation(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)

	_, err := execute(t, "run", "--config", cfg)
	assert.Error(t, err)

	_, err = execute(t, "run", "--config", cfg, "--input", "x.txt", "--format", "xml")
	assert.ErrorContains(t, err, "unsupported --format")
}

func TestCodebookInitAndShow(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)

	out, err := execute(t, "codebook", "init", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "codebook.json")

	_, err = execute(t, "codebook", "init", "--config", cfg)
	assert.Error(t, err, "existing file without --force")

	_, err = execute(t, "codebook", "init", "--config", cfg, "--force")
	require.NoError(t, err)

	out, err = execute(t, "codebook", "show", "--config", cfg)
	require.NoError(t, err)
	var shown struct {
		Source  string                     `json:"source"`
		Entries map[string]json.RawMessage `json:"entries"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, filepath.Join(dir, "codebook.json"), shown.Source)
	assert.Contains(t, shown.Entries, "diabetes type 2")
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	in := filepath.Join(dir, "in")
	outDir := filepath.Join(dir, "reports")
	require.NoError(t, os.MkdirAll(in, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(in, "a.txt"), []byte("COPD"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(in, "b.txt"), []byte("heart failure"), 0o644))

	out, err := execute(t, "batch", "--config", cfg, "--input-dir", in, "--output-dir", outDir, "--no-progress", "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "processed 2 documents")
	assert.FileExists(t, filepath.Join(outDir, "a.json"))
	assert.FileExists(t, filepath.Join(outDir, "b.json"))
}

func TestLabsInitAndShow(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)

	out, err := execute(t, "labs", "init", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "labs.json")

	_, err = execute(t, "labs", "init", "--config", cfg)
	assert.Error(t, err)

	out, err = execute(t, "labs", "show", "--config", cfg)
	require.NoError(t, err)
	var rules []struct {
		Key   string `json:"key"`
		Codes struct {
			High *struct{ Code string } `json:"high"`
		} `json:"codes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rules))
	require.NotEmpty(t, rules)
	assert.Equal(t, "glucose", rules[0].Key)
	require.NotNil(t, rules[0].Codes.High)
	assert.Equal(t, "HCC 19", rules[0].Codes.High.Code)
}

func TestPatternsCommand(t *testing.T) {
	out, err := execute(t, "patterns")
	require.NoError(t, err)
	var patterns []struct {
		Category string `json:"category"`
		Pattern  string `json:"pattern"`
		Group    int    `json:"group"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &patterns))
	require.NotEmpty(t, patterns)

	var grouped bool
	for _, p := range patterns {
		assert.NotEmpty(t, p.Pattern)
		grouped = grouped || p.Group == 1
	}
	assert.True(t, grouped)
	assert.Equal(t, "CHRONIC CONDITION", patterns[0].Category)
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	t.Setenv("HCC_BATCH_WORKERS", "7")

	_, err := execute(t, "config", "init", "--config", cfg)
	require.Error(t, err, "existing file without --force")

	target := filepath.Join(dir, "effective.json")
	out, err := execute(t, "config", "init", "--config", cfg, "--path", target)
	require.NoError(t, err)
	assert.Contains(t, out, "effective.json")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	var saved struct {
		Env          string `json:"env"`
		LabTablePath string `json:"labTablePath"`
		Batch        struct {
			Workers int `json:"workers"`
		} `json:"batch"`
	}
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, "production", saved.Env)
	assert.Equal(t, filepath.Join(dir, "labs.json"), saved.LabTablePath)
	assert.Equal(t, 7, saved.Batch.Workers)

	out, err = execute(t, "config", "show", "--config", target)
	require.NoError(t, err)
	assert.Contains(t, out, `"workers": 7`)
}
