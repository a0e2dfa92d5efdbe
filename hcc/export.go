package hcc

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrFileExists is returned when an init would overwrite a file without force.
var ErrFileExists = errors.New("file already exists")

// WriteReport writes the report as indented JSON. A path of "-" writes to stdout.
func WriteReport(path string, report *Report) error {
	return writeJSON(path, report)
}

// WriteTerms writes candidate terms as indented JSON. A path of "-" writes to stdout.
func WriteTerms(path string, terms []CandidateTerm) error {
	if terms == nil {
		terms = []CandidateTerm{}
	}
	return writeJSON(path, terms)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	data = append(data, '\n')
	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// WriteResultsCSV writes one row per classified result with a header row.
func WriteResultsCSV(w io.Writer, results []ClassifiedResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"term", "hcc_code", "description", "confidence", "category", "strategy"}); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{r.Term, r.HCCCode, r.Description, string(r.Confidence), string(r.Category), string(r.Strategy)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCodebook persists entries in the codebook file format. An existing
// file is only replaced when force is set.
func WriteCodebook(path string, entries map[string]CodeEntry, force bool) error {
	// encoding/json sorts map keys, so the file is stable across runs.
	return writeDataFile(path, "codebook", entries, force)
}

// WriteLabTable persists rules in the lab table file format. An existing
// file is only replaced when force is set.
func WriteLabTable(path string, rules []LabRule, force bool) error {
	if rules == nil {
		rules = []LabRule{}
	}
	return writeDataFile(path, "lab table", rules, force)
}

func writeDataFile(path, kind string, v any, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrFileExists, path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", kind, err)
		}
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s dir: %w", kind, err)
		}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", kind, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", kind, err)
	}
	return nil
}
