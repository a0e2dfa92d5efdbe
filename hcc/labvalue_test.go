package hcc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabInterpreter(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		term     string
		status   LabStatus
		category Category
		reading  LabReading
	}{
		{
			name:     "parenthesized high marker",
			text:     "Glucose: 250 mg/dL (High)",
			term:     "Glucose: 250 mg/dL",
			status:   LabStatusHigh,
			category: CategoryAbnormalLab,
			reading:  LabReading{Name: "Glucose", Value: "250", Unit: "mg/dL", Marker: "(High)"},
		},
		{
			name:     "bare low word",
			text:     "Hemoglobin 9.5 g/dL low",
			term:     "Hemoglobin: 9.5 g/dL",
			status:   LabStatusLow,
			category: CategoryAbnormalLab,
			reading:  LabReading{Name: "Hemoglobin", Value: "9.5", Unit: "g/dL", Marker: "low"},
		},
		{
			name:     "no marker",
			text:     "Potassium: 4.1 mmol/L",
			term:     "Potassium: 4.1 mmol/L",
			status:   LabStatusMeasured,
			category: CategoryLabValue,
			reading:  LabReading{Name: "Potassium", Value: "4.1", Unit: "mmol/L"},
		},
		{
			name:     "flag in unit position",
			text:     "Glucose 250 H",
			term:     "Glucose: 250",
			status:   LabStatusHigh,
			category: CategoryAbnormalLab,
			reading:  LabReading{Name: "Glucose", Value: "250", Marker: "H"},
		},
		{
			name:     "comparator and abnormal flag",
			text:     "Creatinine > 1.5 mg/dL (abnormal)",
			term:     "Creatinine: 1.5 mg/dL",
			status:   LabStatusAbnormal,
			category: CategoryAbnormalLab,
			reading:  LabReading{Name: "Creatinine", Comparator: ">", Value: "1.5", Unit: "mg/dL", Marker: "(abnormal)"},
		},
		{
			name:     "normal flag",
			text:     "TSH: 2.1 mIU/L (normal)",
			term:     "TSH: 2.1 mIU/L",
			status:   LabStatusMeasured,
			category: CategoryLabValue,
			reading:  LabReading{Name: "TSH", Value: "2.1", Unit: "mIU/L", Marker: "(normal)"},
		},
	}
	li := NewLabInterpreter()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := li.Interpret(tc.text)
			require.Len(t, got, 1)
			assert.Equal(t, tc.term, got[0].Term)
			assert.Equal(t, tc.status, got[0].Status)
			assert.Equal(t, tc.category, got[0].Category)
			require.NotNil(t, got[0].Lab)
			assert.Equal(t, tc.reading, *got[0].Lab)
		})
	}
}

func TestLabInterpreterIgnoresNamesWithoutValues(t *testing.T) {
	assert.Empty(t, NewLabInterpreter().Interpret("glucose was checked"))
}

func TestInferLabStatus(t *testing.T) {
	cases := map[string]LabStatus{
		"(H)":               LabStatusHigh,
		"High":              LabStatusHigh,
		"elevated":          LabStatusHigh,
		"above  range":      LabStatusHigh,
		"(L)":               LabStatusLow,
		"Decreased":         LabStatusLow,
		"below range":       LabStatusLow,
		"outside reference": LabStatusAbnormal,
		"(abnormal)":        LabStatusAbnormal,
		"normal":            LabStatusMeasured,
		"":                  LabStatusMeasured,
	}
	for marker, want := range cases {
		assert.Equal(t, want, InferLabStatus(marker), marker)
	}
}
