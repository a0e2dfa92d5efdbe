package hcc

import "time"

// Category labels a candidate term. Values are the display strings used in
// reports and exports.
type Category string

const (
	CategoryChronicCondition  Category = "CHRONIC CONDITION"
	CategoryLabTest           Category = "LAB TEST"
	CategoryDiagnosticFinding Category = "DIAGNOSTIC FINDING"
	CategoryProcedure         Category = "PROCEDURE"
	CategoryMedication        Category = "MEDICATION"
	CategoryImagingFinding    Category = "IMAGING FINDING"
	CategoryPathologyFinding  Category = "PATHOLOGY FINDING"
	CategoryCondition         Category = "CONDITION"
	CategoryLabValue          Category = "LAB VALUE"
	CategoryAbnormalLab       Category = "ABNORMAL LAB"
	CategoryReferenceRange    Category = "REFERENCE RANGE"
	CategoryICDCode           Category = "ICD CODE"
	CategoryServiceDate       Category = "SERVICE DATE"
)

// Source records which extractor produced a candidate term.
type Source string

const (
	SourceRuleMatch        Source = "rule-match"
	SourceNER              Source = "ner"
	SourceMedicationSuffix Source = "medication-suffix"
	SourceMedicationList   Source = "medication-list"
	SourceLabExtraction    Source = "lab-extraction"
	SourceRangeExtraction  Source = "range-extraction"
	SourceICDExtraction    Source = "icd-extraction"
	SourceDateExtraction   Source = "date-extraction"
)

// Confidence is the certainty tier of a code mapping.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Rank orders tiers for sorting: high=0, medium=1, low=2. Unknown values sort last.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 0
	case ConfidenceMedium:
		return 1
	case ConfidenceLow:
		return 2
	default:
		return 3
	}
}

// LabStatus is the directional abnormality of a lab reading.
type LabStatus string

const (
	LabStatusHigh     LabStatus = "high"
	LabStatusLow      LabStatus = "low"
	LabStatusAbnormal LabStatus = "abnormal"
	LabStatusMeasured LabStatus = "measured"
)

// Abnormal reports whether the status flags the reading.
func (s LabStatus) Abnormal() bool {
	return s == LabStatusHigh || s == LabStatusLow || s == LabStatusAbnormal
}

// Strategy names the classifier step that produced a result.
type Strategy string

const (
	StrategyICD        Strategy = "icd"
	StrategyLabStatus  Strategy = "lab-status"
	StrategyExact      Strategy = "exact"
	StrategyWordSubset Strategy = "word-subset"
	StrategySubstring  Strategy = "substring"
	StrategyUnmatched  Strategy = "unmatched"
)

// CodeEntry is a single codebook value.
type CodeEntry struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// LabReading is the structured part of a lab-extraction term.
type LabReading struct {
	Name       string `json:"name"`
	Comparator string `json:"comparator,omitempty"`
	Value      string `json:"value"`
	Unit       string `json:"unit,omitempty"`
	Marker     string `json:"marker,omitempty"`
}

// CandidateTerm is one extracted surface string.
type CandidateTerm struct {
	Term     string      `json:"term"`
	Category Category    `json:"category"`
	Source   Source      `json:"source"`
	Status   LabStatus   `json:"status,omitempty"`
	Lab      *LabReading `json:"lab,omitempty"`
}

// ClassifiedResult is the code assigned to one candidate term.
type ClassifiedResult struct {
	Term        string     `json:"term"`
	HCCCode     string     `json:"hcc_code"`
	Description string     `json:"description"`
	Confidence  Confidence `json:"confidence"`
	Category    Category   `json:"category"`
	Strategy    Strategy   `json:"strategy"`
}

// Report is the export document of one pipeline run.
type Report struct {
	RunID         string             `json:"run_id"`
	DocumentName  string             `json:"document_name"`
	ExtractedText string             `json:"extracted_text"`
	MedicalTerms  []CandidateTerm    `json:"medical_terms"`
	HCCCodes      []ClassifiedResult `json:"hcc_codes"`
	CreatedAt     time.Time          `json:"created_at"`
}
