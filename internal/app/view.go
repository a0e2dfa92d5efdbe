package app

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"yashubustudio/hccmapper/hcc"
)

const logLineLimit = 200

type tableColumn[T any] struct {
	Title  string
	Width  float32
	Render func(T) string
}

func resultColumns() []tableColumn[hcc.ClassifiedResult] {
	return []tableColumn[hcc.ClassifiedResult]{
		{Title: "Term", Width: 220, Render: func(r hcc.ClassifiedResult) string { return r.Term }},
		{Title: "HCC", Width: 90, Render: func(r hcc.ClassifiedResult) string { return r.HCCCode }},
		{Title: "Description", Width: 280, Render: func(r hcc.ClassifiedResult) string { return r.Description }},
		{Title: "Confidence", Width: 100, Render: func(r hcc.ClassifiedResult) string { return string(r.Confidence) }},
		{Title: "Category", Width: 150, Render: func(r hcc.ClassifiedResult) string { return string(r.Category) }},
		{Title: "Match", Width: 110, Render: func(r hcc.ClassifiedResult) string { return string(r.Strategy) }},
	}
}

func termColumns() []tableColumn[hcc.CandidateTerm] {
	return []tableColumn[hcc.CandidateTerm]{
		{Title: "Term", Width: 260, Render: func(t hcc.CandidateTerm) string { return t.Term }},
		{Title: "Category", Width: 160, Render: func(t hcc.CandidateTerm) string { return string(t.Category) }},
		{Title: "Source", Width: 140, Render: func(t hcc.CandidateTerm) string { return string(t.Source) }},
		{Title: "Status", Width: 90, Render: func(t hcc.CandidateTerm) string { return string(t.Status) }},
	}
}

// cell renders row r, column c of a header-first table.
func cell[T any](cols []tableColumn[T], rows []T, r, c int) (string, bool) {
	if c < 0 || c >= len(cols) {
		return "", false
	}
	if r == 0 {
		return cols[c].Title, true
	}
	if r-1 >= len(rows) {
		return "", false
	}
	return cols[c].Render(rows[r-1]), false
}

func reportSummary(r *hcc.Report, elapsed time.Duration) string {
	if r == nil {
		return ""
	}
	high := 0
	for _, res := range r.HCCCodes {
		if res.Confidence == hcc.ConfidenceHigh {
			high++
		}
	}
	return fmt.Sprintf("%s: %d terms, %d codes (%d high) in %.2fs",
		r.DocumentName, len(r.MedicalTerms), len(r.HCCCodes), high, elapsed.Seconds())
}

func codebookSummary(cb *hcc.Codebook) string {
	if cb == nil {
		return "codebook: none"
	}
	return fmt.Sprintf("codebook: %s (%d entries)", cb.Source(), cb.Len())
}

// logBuffer keeps the most recent log lines for the log pane. Writes signal
// Updates without blocking.
type logBuffer struct {
	mu      sync.Mutex
	lines   []string
	limit   int
	updates chan struct{}
}

func newLogBuffer(limit int) *logBuffer {
	if limit <= 0 {
		limit = logLineLimit
	}
	return &logBuffer{limit: limit, updates: make(chan struct{}, 1)}
}

func (b *logBuffer) Write(p []byte) (int, error) {
	text := strings.ReplaceAll(string(p), "\r\n", "\n")
	b.mu.Lock()
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		b.lines = append(b.lines, line)
	}
	if len(b.lines) > b.limit {
		b.lines = b.lines[len(b.lines)-b.limit:]
	}
	b.mu.Unlock()

	select {
	case b.updates <- struct{}{}:
	default:
	}
	return len(p), nil
}

func (b *logBuffer) Updates() <-chan struct{} { return b.updates }

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Join(b.lines, "\n")
}
