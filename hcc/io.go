package hcc

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/pgzip"
)

// MaxDocumentSize caps decoded document text at 16 MiB.
const MaxDocumentSize = 16 << 20

var ErrDocumentTooLarge = errors.New("document exceeds size limit")

// ReadDocument reads a text document, decompressing .gz files.
func ReadDocument(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.EqualFold(filepath.Ext(path), ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return "", fmt.Errorf("open gzip document: %w", err)
		}
		defer gz.Close()
		r = gz
	}
	return readLimited(r)
}

func readLimited(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	if len(data) > MaxDocumentSize {
		return "", ErrDocumentTooLarge
	}
	return string(data), nil
}

// ListDocuments returns the .txt and .gz files directly under dir, sorted by name.
func ListDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".txt", ".gz":
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// DocumentName strips directories and the .gz/.txt extensions from path.
func DocumentName(path string) string {
	name := filepath.Base(path)
	if strings.EqualFold(filepath.Ext(name), ".gz") {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	if strings.EqualFold(filepath.Ext(name), ".txt") {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}
