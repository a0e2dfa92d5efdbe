package hcc

import (
	"context"
	"strings"
)

const (
	unknownCode        = "Unknown"
	unknownDescription = "No matching HCC code found"
	icdDescription     = "ICD Code"
)

// Classifier maps candidate terms to code entries. It only reads its tables
// and is safe for concurrent use.
type Classifier struct {
	codebook *Codebook
	labs     *LabTable
}

// NewClassifier builds a classifier. Nil arguments select the built-in tables.
func NewClassifier(codebook *Codebook, labs *LabTable) *Classifier {
	if codebook == nil {
		codebook = BuiltinCodebook()
	}
	if labs == nil {
		labs = DefaultLabTable()
	}
	return &Classifier{codebook: codebook, labs: labs}
}

func (c *Classifier) Codebook() *Codebook { return c.codebook }

// Classify returns one result per distinct lowercase term, in input order.
// Results are not ranked; see Rank.
func (c *Classifier) Classify(ctx context.Context, terms []CandidateTerm) (results []ClassifiedResult, err error) {
	defer recoverStage(StageClassify, &err)

	seen := make(map[string]struct{}, len(terms))
	out := make([]ClassifiedResult, 0, len(terms))
	for i, t := range terms {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		lower := strings.ToLower(t.Term)
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		out = append(out, c.classifyOne(t, lower))
	}
	return out, nil
}

func (c *Classifier) classifyOne(t CandidateTerm, lower string) ClassifiedResult {
	res := ClassifiedResult{Term: t.Term, Category: t.Category}
	emit := func(e CodeEntry, conf Confidence, s Strategy) ClassifiedResult {
		res.HCCCode, res.Description, res.Confidence, res.Strategy = e.Code, e.Description, conf, s
		return res
	}

	if t.Category == CategoryICDCode {
		return emit(CodeEntry{Code: "ICD: " + lower, Description: icdDescription}, ConfidenceHigh, StrategyICD)
	}

	if t.Category == CategoryLabValue || t.Category == CategoryAbnormalLab {
		labName := strings.TrimSpace(strings.SplitN(lower, ":", 2)[0])
		status := labStatusOf(t, lower)
		if status.Abnormal() {
			if _, entry, ok := c.labs.Match(labName, status); ok {
				conf := ConfidenceMedium
				if status == LabStatusAbnormal {
					conf = ConfidenceLow
				}
				return emit(entry, conf, StrategyLabStatus)
			}
		}
	}

	if entry, ok := c.codebook.Lookup(lower); ok {
		return emit(entry, ConfidenceHigh, StrategyExact)
	}

	termWords := wordSet(lower)
	for _, k := range c.codebook.keys {
		if isSubset(k.words, termWords) {
			return emit(c.codebook.entries[k.key], defaultConfidence(t.Category), StrategyWordSubset)
		}
	}

	// A short key can match inside an unrelated longer term.
	if lower != "" {
		for _, k := range c.codebook.keys {
			if strings.Contains(lower, k.key) || strings.Contains(k.key, lower) {
				return emit(c.codebook.entries[k.key], ConfidenceLow, StrategySubstring)
			}
		}
	}

	return emit(CodeEntry{Code: unknownCode, Description: unknownDescription}, ConfidenceLow, StrategyUnmatched)
}

// labStatusOf prefers the status recorded at extraction time, then keywords
// in the term, then the abnormal category flag.
func labStatusOf(t CandidateTerm, lower string) LabStatus {
	if t.Status == LabStatusHigh || t.Status == LabStatusLow {
		return t.Status
	}
	if s := inferStatusFromTerm(lower); s != LabStatusMeasured {
		return s
	}
	if t.Status == LabStatusAbnormal || t.Category == CategoryAbnormalLab {
		return LabStatusAbnormal
	}
	return LabStatusMeasured
}

func defaultConfidence(cat Category) Confidence {
	switch cat {
	case CategoryChronicCondition, CategoryDiagnosticFinding:
		return ConfidenceHigh
	case CategoryMedication, CategoryProcedure, CategoryServiceDate:
		return ConfidenceLow
	default:
		return ConfidenceMedium
	}
}

func isSubset(sub, set map[string]struct{}) bool {
	if len(sub) == 0 {
		return false
	}
	for w := range sub {
		if _, ok := set[w]; !ok {
			return false
		}
	}
	return true
}
