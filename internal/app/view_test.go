package app

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yashubustudio/hccmapper/hcc"
)

func TestCellHeaderAndRows(t *testing.T) {
	cols := resultColumns()
	rows := []hcc.ClassifiedResult{{
		Term:       "COPD",
		HCCCode:    "HCC 111",
		Confidence: hcc.ConfidenceHigh,
		Strategy:   hcc.StrategyExact,
	}}

	text, header := cell(cols, rows, 0, 1)
	assert.True(t, header)
	assert.Equal(t, "HCC", text)

	text, header = cell(cols, rows, 1, 1)
	assert.False(t, header)
	assert.Equal(t, "HCC 111", text)

	text, _ = cell(cols, rows, 1, 3)
	assert.Equal(t, "high", text)

	text, _ = cell(cols, rows, 2, 0)
	assert.Empty(t, text)
	text, _ = cell(cols, rows, 1, len(cols))
	assert.Empty(t, text)
}

func TestTermColumnsRenderStatus(t *testing.T) {
	cols := termColumns()
	term := hcc.CandidateTerm{Term: "Glucose: 250 mg/dL", Category: hcc.CategoryAbnormalLab, Source: hcc.SourceLabExtraction, Status: hcc.LabStatusHigh}
	got := make([]string, len(cols))
	for i := range cols {
		got[i], _ = cell(cols, []hcc.CandidateTerm{term}, 1, i)
	}
	assert.Equal(t, []string{"Glucose: 250 mg/dL", "ABNORMAL LAB", "lab-extraction", "high"}, got)
}

func TestReportSummary(t *testing.T) {
	assert.Empty(t, reportSummary(nil, 0))
	r := &hcc.Report{
		DocumentName: "note",
		MedicalTerms: make([]hcc.CandidateTerm, 4),
		HCCCodes: []hcc.ClassifiedResult{
			{Confidence: hcc.ConfidenceHigh},
			{Confidence: hcc.ConfidenceLow},
		},
	}
	assert.Equal(t, "note: 4 terms, 2 codes (1 high) in 1.50s", reportSummary(r, 1500*time.Millisecond))
}

func TestCodebookSummary(t *testing.T) {
	assert.Equal(t, "codebook: none", codebookSummary(nil))
	cb := hcc.BuiltinCodebook()
	assert.Equal(t, fmt.Sprintf("codebook: builtin (%d entries)", cb.Len()), codebookSummary(cb))
}

func TestLogBufferKeepsRecentLines(t *testing.T) {
	b := newLogBuffer(3)
	for i := 0; i < 5; i++ {
		_, err := fmt.Fprintf(b, "line %d\n", i)
		require.NoError(t, err)
	}
	assert.Equal(t, "line 2\nline 3\nline 4", b.String())

	select {
	case <-b.Updates():
	default:
		t.Fatal("expected update signal")
	}
}

func TestLogBufferSplitsMultiLineWrites(t *testing.T) {
	b := newLogBuffer(0)
	n, err := b.Write([]byte("a\r\n\r\nb\n"))
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, []string{"a", "b"}, strings.Split(b.String(), "\n"))
}
