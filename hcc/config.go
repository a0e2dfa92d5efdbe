package hcc

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const DefaultConfigFile = "config.json"

// NERConfig configures the optional ONNX token-classification recognizer.
type NERConfig struct {
	Enabled       bool     `json:"enabled" mapstructure:"enabled"`
	OrtDLL        string   `json:"ortDll" mapstructure:"ortDll"`
	ModelPath     string   `json:"modelPath" mapstructure:"modelPath"`
	TokenizerPath string   `json:"tokenizerPath" mapstructure:"tokenizerPath"`
	Labels        []string `json:"labels" mapstructure:"labels"`
	MaxSeqLen     int      `json:"maxSeqLen" mapstructure:"maxSeqLen"`
	CacheSize     int      `json:"cacheSize" mapstructure:"cacheSize"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr      string `json:"addr" mapstructure:"addr"`
	BodyLimit string `json:"bodyLimit" mapstructure:"bodyLimit"`
	Timeout   string `json:"timeout" mapstructure:"timeout"`
}

// RequestTimeout parses Timeout, falling back to 30s.
func (s ServerConfig) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(s.Timeout))
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

type BatchConfig struct {
	Workers int `json:"workers" mapstructure:"workers"`
}

// Config aggregates runtime settings persisted to config.json.
type Config struct {
	CodebookPath string       `json:"codebookPath" mapstructure:"codebookPath"`
	LabTablePath string       `json:"labTablePath" mapstructure:"labTablePath"`
	Env          string       `json:"env" mapstructure:"env"`
	LogLevel     string       `json:"logLevel" mapstructure:"logLevel"`
	NER          NERConfig    `json:"ner" mapstructure:"ner"`
	Server       ServerConfig `json:"server" mapstructure:"server"`
	Batch        BatchConfig  `json:"batch" mapstructure:"batch"`
}

// ApplyDefaults populates zero values.
func (c *Config) ApplyDefaults() {
	if c.Env == "" {
		c.Env = "development"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if len(c.NER.Labels) == 0 {
		c.NER.Labels = []string{"O", "B-DISEASE", "I-DISEASE"}
	}
	if c.NER.MaxSeqLen <= 0 {
		c.NER.MaxSeqLen = 512
	}
	if c.NER.CacheSize == 0 {
		c.NER.CacheSize = 256
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.BodyLimit == "" {
		c.Server.BodyLimit = "16M"
	}
	if c.Server.Timeout == "" {
		c.Server.Timeout = "30s"
	}
	if c.Batch.Workers <= 0 {
		c.Batch.Workers = 4
	}
}

// Clone returns a deep copy.
func (c Config) Clone() Config {
	out := c
	out.NER.Labels = append([]string(nil), c.NER.Labels...)
	return out
}

func (c Config) IsDev() bool { return c.Env == "development" }

func newConfigViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix("HCC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key needs a default so AutomaticEnv is consulted on Unmarshal.
	v.SetDefault("codebookPath", "")
	v.SetDefault("labTablePath", "")
	v.SetDefault("env", "development")
	v.SetDefault("logLevel", "info")
	v.SetDefault("ner.enabled", false)
	v.SetDefault("ner.ortDll", "")
	v.SetDefault("ner.modelPath", "")
	v.SetDefault("ner.tokenizerPath", "")
	v.SetDefault("ner.labels", []string{"O", "B-DISEASE", "I-DISEASE"})
	v.SetDefault("ner.maxSeqLen", 512)
	v.SetDefault("ner.cacheSize", 256)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.bodyLimit", "16M")
	v.SetDefault("server.timeout", "30s")
	v.SetDefault("batch.workers", 4)
	return v
}

// LoadConfig reads the JSON config at path (config.json when empty) and
// applies HCC_* environment overrides. A missing file yields defaults.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigFile
	}
	v := newConfigViper()
	var cfg Config
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("decode config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// SaveConfig persists configuration to disk.
func SaveConfig(path string, cfg Config) error {
	if path == "" {
		path = DefaultConfigFile
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	cfg.ApplyDefaults()
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}
