package hcc

import (
	"context"
	"fmt"
	"strings"
)

// Extractor turns raw text into a deduplicated list of candidate terms.
// It holds no per-call state and is safe for concurrent use.
type Extractor struct {
	catalog    *Catalog
	labs       *LabInterpreter
	recognizer Recognizer
}

// NewExtractor builds an extractor. A nil catalog selects DefaultCatalog; a
// nil recognizer disables the NER pass.
func NewExtractor(catalog *Catalog, recognizer Recognizer) *Extractor {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Extractor{catalog: catalog, labs: NewLabInterpreter(), recognizer: recognizer}
}

// termList keeps first occurrence order. add rejects repeated surface strings;
// appendStructured does not, since lab, range, ICD and date terms are never
// deduplicated at extraction time.
type termList struct {
	seen  map[string]struct{}
	terms []CandidateTerm
}

func newTermList() *termList {
	return &termList{seen: make(map[string]struct{}), terms: []CandidateTerm{}}
}

func (l *termList) add(t CandidateTerm) {
	if t.Term == "" {
		return
	}
	if _, dup := l.seen[t.Term]; dup {
		return
	}
	l.seen[t.Term] = struct{}{}
	l.terms = append(l.terms, t)
}

func (l *termList) appendStructured(t CandidateTerm) {
	if t.Term == "" {
		return
	}
	l.terms = append(l.terms, t)
}

// Extract applies, in order: the recognizer, the catalog, the medication
// suffix heuristic, the common medication list, lab readings, reference
// ranges, ICD codes and service dates.
func (e *Extractor) Extract(ctx context.Context, text string) (terms []CandidateTerm, err error) {
	defer recoverStage(StageExtract, &err)

	list := newTermList()
	if e.recognizer != nil {
		ents, rerr := e.recognizer.Recognize(ctx, text)
		if rerr != nil {
			return nil, newStageError(StageExtract, fmt.Errorf("recognize entities: %w", rerr))
		}
		for _, ent := range ents {
			if !isConditionLabel(ent.Label) {
				continue
			}
			list.add(CandidateTerm{Term: strings.TrimSpace(ent.Text), Category: CategoryCondition, Source: SourceNER})
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, rule := range e.catalog.rules {
		for _, loc := range rule.Pattern.FindAllStringSubmatchIndex(text, -1) {
			list.add(CandidateTerm{Term: rule.Term(text, loc), Category: rule.Category, Source: SourceRuleMatch})
		}
	}

	for _, m := range medicationSuffixPattern.FindAllString(text, -1) {
		list.add(CandidateTerm{Term: m, Category: CategoryMedication, Source: SourceMedicationSuffix})
	}
	for _, re := range commonMedicationPatterns {
		for _, m := range re.FindAllString(text, -1) {
			list.add(CandidateTerm{Term: m, Category: CategoryMedication, Source: SourceMedicationList})
		}
	}

	for _, lab := range e.labs.Interpret(text) {
		list.appendStructured(lab)
	}
	for _, m := range referenceRangePattern.FindAllStringSubmatch(text, -1) {
		list.appendStructured(CandidateTerm{
			Term:     "Reference Range: " + m[2] + "-" + m[3],
			Category: CategoryReferenceRange,
			Source:   SourceRangeExtraction,
		})
	}
	for _, m := range icdCodePattern.FindAllStringSubmatch(text, -1) {
		list.appendStructured(CandidateTerm{
			Term:     strings.ToUpper(m[1]) + "." + m[2],
			Category: CategoryICDCode,
			Source:   SourceICDExtraction,
		})
	}
	for _, re := range serviceDatePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			list.appendStructured(CandidateTerm{
				Term:     "Service Date: " + m[1],
				Category: CategoryServiceDate,
				Source:   SourceDateExtraction,
			})
		}
	}
	return list.terms, nil
}
