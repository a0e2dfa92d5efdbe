package hcc

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// LabCodes holds the optional code for each direction of a lab test.
type LabCodes struct {
	High *CodeEntry `json:"high,omitempty"`
	Low  *CodeEntry `json:"low,omitempty"`
}

func (l LabCodes) HasHigh() bool { return l.High != nil }
func (l LabCodes) HasLow() bool  { return l.Low != nil }

// For returns the entry for a directional status. Abnormal resolves to the
// first available direction, high before low.
func (l LabCodes) For(status LabStatus) (CodeEntry, bool) {
	switch status {
	case LabStatusHigh:
		if l.High != nil {
			return *l.High, true
		}
	case LabStatusLow:
		if l.Low != nil {
			return *l.Low, true
		}
	case LabStatusAbnormal:
		if l.High != nil {
			return *l.High, true
		}
		if l.Low != nil {
			return *l.Low, true
		}
	}
	return CodeEntry{}, false
}

// clone copies the entries so callers never share them with a table.
func (l LabCodes) clone() LabCodes {
	var out LabCodes
	if l.High != nil {
		h := *l.High
		out.High = &h
	}
	if l.Low != nil {
		lo := *l.Low
		out.Low = &lo
	}
	return out
}

// LabRule pairs a lab-name key with its codes.
type LabRule struct {
	Key   string   `json:"key"`
	Codes LabCodes `json:"codes"`
}

// LabTable is an ordered lab-name table. Order decides which key wins when
// several are substrings of the same lab name.
type LabTable struct {
	rules []LabRule
}

// NewLabTable copies rules into a table. Keys are normalized to lowercase and
// blank keys are dropped.
func NewLabTable(rules []LabRule) *LabTable {
	cp := make([]LabRule, 0, len(rules))
	for _, r := range rules {
		key := normalizeKey(r.Key)
		if key == "" {
			continue
		}
		cp = append(cp, LabRule{Key: key, Codes: r.Codes.clone()})
	}
	return &LabTable{rules: cp}
}

// Rules returns a copy of the rules in table order.
func (t *LabTable) Rules() []LabRule {
	out := make([]LabRule, len(t.rules))
	for i, r := range t.rules {
		out[i] = LabRule{Key: r.Key, Codes: r.Codes.clone()}
	}
	return out
}

// Get returns the codes for an exact key.
func (t *LabTable) Get(key string) (LabCodes, bool) {
	key = normalizeKey(key)
	for _, r := range t.rules {
		if r.Key == key {
			return r.Codes.clone(), true
		}
	}
	return LabCodes{}, false
}

// Match scans keys in order and returns the first key that is a substring of
// labName and has an entry for status.
func (t *LabTable) Match(labName string, status LabStatus) (string, CodeEntry, bool) {
	labName = strings.ToLower(labName)
	for _, r := range t.rules {
		if !strings.Contains(labName, r.Key) {
			continue
		}
		if entry, ok := r.Codes.For(status); ok {
			return r.Key, entry, true
		}
	}
	return "", CodeEntry{}, false
}

func (t *LabTable) Len() int { return len(t.rules) }

func code(c, desc string) *CodeEntry { return &CodeEntry{Code: c, Description: desc} }

var (
	codeDiabetes      = code("HCC 19", "Diabetes without Complication")
	codeDiabetesAcute = code("HCC 17", "Diabetes with Acute Complications")
	codeBlood         = code("HCC 2", "Sepsis, Severe Blood Related Conditions")
	codeIschemic      = code("HCC 88", "Unstable Angina and Other Acute Ischemic Heart Disease")
	codeKidney        = code("HCC 138", "Chronic Kidney Disease, Moderate (Stage 3)")
	codeHepatitis     = code("HCC 29", "Chronic Hepatitis")
	codeHypothyroid   = code("HCC 21", "Hypothyroidism")
	codeHyperthyroid  = code("HCC 21", "Hyperthyroidism")
	codeMetabolic     = code("HCC 22", "Metabolic Disorders")
	codeNutrition     = code("HCC 21", "Nutritional Deficiency")
	codeMalnutrition  = code("HCC 21", "Protein-Calorie Malnutrition")
	codeInfarction    = code("HCC 86", "Acute Myocardial Infarction")
	codeHeartFailure  = code("HCC 85", "Congestive Heart Failure")
	codeInflammatory  = code("HCC 40", "Rheumatoid Arthritis and Inflammatory Connective Tissue Disease")
	codeCancer        = code("HCC 12", "Breast, Prostate, Colorectal and Other Cancers and Tumors")
	codeCirrhosis     = code("HCC 28", "Cirrhosis of Liver")
)

func high(c *CodeEntry) LabCodes    { return LabCodes{High: c} }
func low(c *CodeEntry) LabCodes     { return LabCodes{Low: c} }
func both(h, l *CodeEntry) LabCodes { return LabCodes{High: h, Low: l} }

var defaultLabRules = []LabRule{
	// glucose
	{"glucose", high(codeDiabetes)},
	{"glu", high(codeDiabetes)},
	{"a1c", high(codeDiabetesAcute)},
	{"hba1c", high(codeDiabetesAcute)},
	{"glycosylated hemoglobin", high(codeDiabetesAcute)},
	{"fasting glucose", high(codeDiabetes)},

	// blood cells
	{"hemoglobin", low(codeBlood)},
	{"hgb", low(codeBlood)},
	{"hematocrit", low(codeBlood)},
	{"hct", low(codeBlood)},
	{"rbc", low(codeBlood)},
	{"red blood cell", low(codeBlood)},
	{"wbc", both(codeBlood, codeBlood)},
	{"white blood cell", both(codeBlood, codeBlood)},
	{"platelets", low(codeBlood)},
	{"plt", low(codeBlood)},

	// lipids
	{"cholesterol", high(codeIschemic)},
	{"triglycerides", high(codeIschemic)},
	{"ldl", high(codeIschemic)},
	{"hdl", low(codeIschemic)},

	// kidney
	{"creatinine", high(codeKidney)},
	{"cre", high(codeKidney)},
	{"bun", high(codeKidney)},
	{"blood urea nitrogen", high(codeKidney)},
	{"egfr", low(codeKidney)},
	{"estimated glomerular filtration rate", low(codeKidney)},

	// liver
	{"alt", high(codeHepatitis)},
	{"alanine aminotransferase", high(codeHepatitis)},
	{"ast", high(codeHepatitis)},
	{"aspartate aminotransferase", high(codeHepatitis)},
	{"ggt", high(codeHepatitis)},
	{"gamma-glutamyl transferase", high(codeHepatitis)},
	{"alkaline phosphatase", high(codeHepatitis)},
	{"alp", high(codeHepatitis)},
	{"bilirubin", high(codeHepatitis)},
	{"bili", high(codeHepatitis)},

	// thyroid
	{"tsh", both(codeHypothyroid, codeHyperthyroid)},
	{"thyroid stimulating hormone", both(codeHypothyroid, codeHyperthyroid)},
	{"t3", high(codeHyperthyroid)},
	{"t4", high(codeHyperthyroid)},
	{"thyroxine", high(codeHyperthyroid)},

	// electrolytes
	{"sodium", both(codeMetabolic, codeMetabolic)},
	{"na", both(codeMetabolic, codeMetabolic)},
	{"potassium", both(codeMetabolic, codeMetabolic)},
	{"k", both(codeMetabolic, codeMetabolic)},
	{"calcium", both(codeMetabolic, codeMetabolic)},
	{"ca", both(codeMetabolic, codeMetabolic)},
	{"chloride", both(codeMetabolic, codeMetabolic)},
	{"cl", both(codeMetabolic, codeMetabolic)},
	{"bicarbonate", both(codeMetabolic, codeMetabolic)},
	{"co2", both(codeMetabolic, codeMetabolic)},
	{"magnesium", both(codeMetabolic, codeMetabolic)},
	{"mg", both(codeMetabolic, codeMetabolic)},
	{"phosphorus", both(codeMetabolic, codeMetabolic)},
	{"phos", both(codeMetabolic, codeMetabolic)},

	// nutrition
	{"vitamin d", low(codeMetabolic)},
	{"25-oh", low(codeMetabolic)},
	{"vitamin b12", low(codeNutrition)},
	{"folate", low(codeNutrition)},
	{"folic", low(codeNutrition)},
	{"ferritin", both(codeMetabolic, codeBlood)},
	{"iron", low(codeBlood)},
	{"transferrin", low(codeBlood)},

	// other
	{"troponin", high(codeInfarction)},
	{"trp", high(codeInfarction)},
	{"bnp", high(codeHeartFailure)},
	{"brain natriuretic peptide", high(codeHeartFailure)},
	{"nt-probnp", high(codeHeartFailure)},
	{"crp", high(codeBlood)},
	{"c-reactive protein", high(codeBlood)},
	{"esr", high(codeInflammatory)},
	{"erythrocyte sedimentation rate", high(codeInflammatory)},
	{"psa", high(codeCancer)},
	{"prostate specific antigen", high(codeCancer)},
	{"albumin", low(codeMetabolic)},
	{"alb", low(codeMetabolic)},
	{"protein", low(codeMalnutrition)},
	{"inr", high(codeCirrhosis)},
	{"international normalized ratio", high(codeCirrhosis)},
	{"pt", high(codeCirrhosis)},
	{"prothrombin time", high(codeCirrhosis)},
	{"ptt", high(codeCirrhosis)},
	{"partial thromboplastin time", high(codeCirrhosis)},
}

// DefaultLabTable returns the built-in lab-to-code table.
func DefaultLabTable() *LabTable {
	return NewLabTable(defaultLabRules)
}

// DefaultLabRules returns a copy of the built-in lab rules.
func DefaultLabRules() []LabRule {
	return DefaultLabTable().Rules()
}

// LoadLabTable reads a lab table file (a JSON array of rules) and never
// fails. An empty path or a missing file yields the built-in table, an
// unreadable or malformed file an empty table, which disables the lab-status
// strategy.
func LoadLabTable(path string, logger zerolog.Logger) *LabTable {
	clean := strings.TrimSpace(path)
	if clean == "" {
		return DefaultLabTable()
	}
	clean = filepath.Clean(clean)
	data, err := os.ReadFile(clean)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn().Str("path", clean).Msg("lab table file not found, using built-in table")
		return DefaultLabTable()
	}
	if err == nil {
		var rules []LabRule
		if err = json.Unmarshal(data, &rules); err == nil {
			t := NewLabTable(rules)
			logger.Debug().Str("path", clean).Int("rules", t.Len()).Msg("lab table loaded")
			return t
		}
		err = fmt.Errorf("decode lab table: %w", err)
	}
	logger.Error().Err(err).Str("path", clean).Msg("lab table unreadable, using empty table")
	return NewLabTable(nil)
}
