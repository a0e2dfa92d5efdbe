package hcc

import (
	"regexp"
	"strings"
)

var labNames = []string{
	"hemoglobin", "hematocrit", "hgb", "hct", "rbc", "wbc", "platelets?", "plt",
	"glucose", "glu", "cholesterol", "triglycerides?", "hdl", "ldl", "a1c", "hba1c",
	"creatinine", "cre", "bun", "egfr", "alt", "ast", "ggt", "alp", "bilirubin", "bili",
	"albumin", "alb", "protein", "tsh", "t[34]", "sodium", "na", "potassium", "k",
	"chloride", "cl", "bicarbonate", "co2", "calcium", "ca", "phosphorus", "phos",
	"magnesium", "mg", "ferritin", "iron", "transferrin", `vitamin\s*d`, "25-oh",
	`vitamin\s*b12`, "folate", "folic", "inr", "pt", "ptt", "troponin", "trp", "bnp",
	"nt-probnp", "crp", "esr", "psa", "hcg", "cbc", "cmp",
}

const labStatusWords = `high|low|h|l|abnormal|outside[ \t]*reference|above[ \t]*range|below[ \t]*range|elevated|decreased|normal`

// Groups: 1 name, 2 comparator, 3 value, 4 unit, 5 marker.
var labValuePattern = regexp.MustCompile(`(?i)\b(` + strings.Join(labNames, "|") + `)` +
	`\s*:?\s*(<|>|≤|≥)?\s*(\d+(?:\.\d+)?)` +
	`(?:[ \t]*([a-z%/\-]+))?` +
	`(?:[ \t]*(\(?(?:` + labStatusWords + `)\b\)?))?`)

var labStatusWordPattern = regexp.MustCompile(`(?i)^(?:` + labStatusWords + `)$`)

// LabInterpreter recognizes "name: value unit (status)" lab readings.
type LabInterpreter struct {
	pattern *regexp.Regexp
}

func NewLabInterpreter() *LabInterpreter {
	return &LabInterpreter{pattern: labValuePattern}
}

// Interpret returns one candidate term per lab reading found in text, in
// order of appearance.
func (l *LabInterpreter) Interpret(text string) []CandidateTerm {
	matches := l.pattern.FindAllStringSubmatch(text, -1)
	out := make([]CandidateTerm, 0, len(matches))
	for _, m := range matches {
		reading := LabReading{
			Name:       strings.Join(strings.Fields(m[1]), " "),
			Comparator: m[2],
			Value:      m[3],
			Unit:       m[4],
			Marker:     m[5],
		}
		if reading.Marker == "" && labStatusWordPattern.MatchString(reading.Unit) {
			reading.Marker, reading.Unit = reading.Unit, ""
		}
		status := InferLabStatus(reading.Marker)
		category := CategoryLabValue
		if status.Abnormal() {
			category = CategoryAbnormalLab
		}
		r := reading
		out = append(out, CandidateTerm{
			Term:     strings.TrimSpace(reading.Name + ": " + reading.Value + " " + reading.Unit),
			Category: category,
			Source:   SourceLabExtraction,
			Status:   status,
			Lab:      &r,
		})
	}
	return out
}

// InferLabStatus maps a status marker such as "(H)" or "above range" to a
// status. Direction wins over a bare abnormal flag.
func InferLabStatus(marker string) LabStatus {
	m := strings.ToLower(strings.Trim(strings.TrimSpace(marker), "()"))
	m = strings.Join(strings.Fields(m), " ")
	switch m {
	case "high", "h", "elevated", "above range", "aboverange":
		return LabStatusHigh
	case "low", "l", "decreased", "below range", "belowrange":
		return LabStatusLow
	case "abnormal", "outside reference", "outsidereference":
		return LabStatusAbnormal
	}
	return LabStatusMeasured
}

// inferStatusFromTerm applies the keyword precedence to a whole term string.
// It returns LabStatusMeasured when no keyword is present.
func inferStatusFromTerm(term string) LabStatus {
	t := strings.ToLower(term)
	switch {
	case containsAny(t, "high", "elevated", "above range", "h)", "(h"):
		return LabStatusHigh
	case containsAny(t, "low", "decreased", "below range", "l)", "(l"):
		return LabStatusLow
	}
	return LabStatusMeasured
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
