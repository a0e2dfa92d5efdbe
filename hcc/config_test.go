package hcc

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.Equal(t, []string{"O", "B-DISEASE", "I-DISEASE"}, cfg.NER.Labels)
	assert.False(t, cfg.NER.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout())
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"codebookPath": "codes.json", "labTablePath": "labs.json", "logLevel": "debug", "server": {"addr": ":7000", "timeout": "5s"}, "batch": {"workers": 2}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	t.Setenv("HCC_SERVER_ADDR", ":9999")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "codes.json", cfg.CodebookPath)
	assert.Equal(t, "labs.json", cfg.LabTablePath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout())
	assert.Equal(t, 2, cfg.Batch.Workers)
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := Config{CodebookPath: "codes.json", Env: "production", Batch: BatchConfig{Workers: 8}}
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "codes.json", loaded.CodebookPath)
	assert.Equal(t, "production", loaded.Env)
	assert.Equal(t, 8, loaded.Batch.Workers)
	assert.False(t, loaded.IsDev())
}
