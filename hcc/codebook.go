package hcc

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

const (
	// SourceBuiltin is reported by Codebook.Source for the compiled-in table.
	SourceBuiltin = "builtin"
	// SourceEmpty marks the empty table used when a codebook file is broken.
	SourceEmpty = "empty"
)

var builtinCodeEntries = map[string]CodeEntry{
	"diabetes":               {Code: "HCC 19", Description: "Diabetes without Complication"},
	"diabetes type 2":        {Code: "HCC 19", Description: "Diabetes without Complication"},
	"diabetes type 1":        {Code: "HCC 17", Description: "Diabetes with Acute Complications"},
	"diabetic":               {Code: "HCC 19", Description: "Diabetes without Complication"},
	"heart failure":          {Code: "HCC 85", Description: "Congestive Heart Failure"},
	"chronic kidney disease": {Code: "HCC 136", Description: "Chronic Kidney Disease, Stage 5"},
	"ckd":                    {Code: "HCC 136", Description: "Chronic Kidney Disease, Stage 5"},
	"copd":                   {Code: "HCC 111", Description: "Chronic Obstructive Pulmonary Disease"},
	"asthma":                 {Code: "HCC 110", Description: "Asthma"},
	"cancer":                 {Code: "HCC 12", Description: "Breast, Prostate, Colorectal and Other Cancers and Tumors"},
	"stroke":                 {Code: "HCC 100", Description: "Cerebrovascular Disease, Except Hemorrhage or Aneurysm"},
	"alzheimer":              {Code: "HCC 51", Description: "Dementia With Complications"},
	"dementia":               {Code: "HCC 52", Description: "Dementia Without Complication"},
	"depression":             {Code: "HCC 58", Description: "Major Depressive, Bipolar, and Paranoid Disorders"},
	"anxiety":                {Code: "HCC 59", Description: "Reactive and Unspecified Psychosis, Delusional Disorders"},
	"cirrhosis":              {Code: "HCC 27", Description: "End-Stage Liver Disease"},
	"hepatitis":              {Code: "HCC 29", Description: "Chronic Hepatitis"},
	"emphysema":              {Code: "HCC 111", Description: "Chronic Obstructive Pulmonary Disease"},
	"obesity":                {Code: "HCC 22", Description: "Morbid Obesity"},
}

// DefaultCodeEntries returns a copy of the built-in fallback table.
func DefaultCodeEntries() map[string]CodeEntry {
	out := make(map[string]CodeEntry, len(builtinCodeEntries))
	for k, v := range builtinCodeEntries {
		out[k] = v
	}
	return out
}

type codebookKey struct {
	key   string
	words map[string]struct{}
}

// Codebook maps lowercase condition names to code entries. It is immutable
// after construction and safe for concurrent use.
type Codebook struct {
	entries map[string]CodeEntry
	keys    []codebookKey
	source  string
}

// NewCodebook builds a codebook from raw entries. Keys are normalized to
// lowercase; when two raw keys fold to the same key the lexicographically
// smaller raw key wins.
func NewCodebook(entries map[string]CodeEntry, source string) *Codebook {
	raw := make([]string, 0, len(entries))
	for k := range entries {
		raw = append(raw, k)
	}
	sort.Strings(raw)

	cb := &Codebook{entries: make(map[string]CodeEntry, len(entries)), source: source}
	for _, k := range raw {
		key := normalizeKey(k)
		if key == "" {
			continue
		}
		if _, dup := cb.entries[key]; dup {
			continue
		}
		cb.entries[key] = entries[k]
	}
	names := make([]string, 0, len(cb.entries))
	for k := range cb.entries {
		names = append(names, k)
	}
	sort.Strings(names)
	cb.keys = make([]codebookKey, len(names))
	for i, k := range names {
		cb.keys[i] = codebookKey{key: k, words: wordSet(k)}
	}
	return cb
}

// BuiltinCodebook returns the compiled-in fallback table.
func BuiltinCodebook() *Codebook {
	return NewCodebook(builtinCodeEntries, SourceBuiltin)
}

// LoadCodebook reads a codebook file and never fails: a missing path or file
// yields the built-in table with a warning, an unreadable or malformed file
// yields an empty table with an error log, so every term classifies as
// Unknown.
func LoadCodebook(path string, logger zerolog.Logger) *Codebook {
	cb, loaded, err := loadCodebookFile(path)
	switch {
	case err != nil && errors.Is(err, os.ErrNotExist):
		logger.Warn().Str("path", path).Msg("codebook file not found, using built-in table")
	case err != nil:
		logger.Error().Err(err).Str("path", path).Msg("codebook unreadable, using empty table")
	case !loaded:
		logger.Debug().Msg("no codebook path configured, using built-in table")
	default:
		logger.Debug().Str("path", path).Int("entries", cb.Len()).Msg("codebook loaded")
	}
	return cb
}

// loadCodebookFile returns the parsed codebook. The boolean reports whether the
// file was used. A missing file returns the built-in table alongside the
// error, any other failure an empty one.
func loadCodebookFile(path string) (*Codebook, bool, error) {
	clean := strings.TrimSpace(path)
	if clean == "" {
		return BuiltinCodebook(), false, nil
	}
	clean = filepath.Clean(clean)
	data, err := os.ReadFile(clean)
	if errors.Is(err, os.ErrNotExist) {
		return BuiltinCodebook(), false, fmt.Errorf("read codebook: %w", err)
	}
	if err != nil {
		return NewCodebook(nil, SourceEmpty), false, fmt.Errorf("read codebook: %w", err)
	}
	entries := make(map[string]CodeEntry)
	if err := json.Unmarshal(data, &entries); err != nil {
		return NewCodebook(nil, SourceEmpty), false, fmt.Errorf("decode codebook: %w", err)
	}
	return NewCodebook(entries, clean), true, nil
}

// Lookup returns the entry for an exact normalized key.
func (c *Codebook) Lookup(key string) (CodeEntry, bool) {
	e, ok := c.entries[key]
	return e, ok
}

// Keys returns the keys in iteration order.
func (c *Codebook) Keys() []string {
	out := make([]string, len(c.keys))
	for i, k := range c.keys {
		out[i] = k.key
	}
	return out
}

// Entries returns a copy of the key to entry mapping.
func (c *Codebook) Entries() map[string]CodeEntry {
	out := make(map[string]CodeEntry, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}

func (c *Codebook) Len() int { return len(c.entries) }

// Source is the file path the codebook was read from, SourceBuiltin or
// SourceEmpty.
func (c *Codebook) Source() string { return c.source }
