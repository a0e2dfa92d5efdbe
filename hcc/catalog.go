package hcc

import (
	"regexp"
)

// PatternRule tags one compiled pattern with the category of its matches.
// Group selects the submatch used as the term; zero means the whole match.
type PatternRule struct {
	Pattern  *regexp.Regexp
	Category Category
	Group    int
}

// Term returns the surface string for one FindAllStringSubmatchIndex hit.
func (r PatternRule) Term(text string, loc []int) string {
	g := r.Group
	if 2*g+1 >= len(loc) || loc[2*g] < 0 {
		return ""
	}
	return text[loc[2*g]:loc[2*g+1]]
}

// Catalog is an ordered list of pattern rules.
type Catalog struct {
	rules []PatternRule
}

// NewCatalog copies rules into an immutable catalog.
func NewCatalog(rules []PatternRule) *Catalog {
	return &Catalog{rules: append([]PatternRule(nil), rules...)}
}

func (c *Catalog) Rules() []PatternRule {
	return append([]PatternRule(nil), c.rules...)
}

func (c *Catalog) Len() int { return len(c.rules) }

// section compiles case-insensitive patterns that share a category.
func section(category Category, exprs ...string) []PatternRule {
	out := make([]PatternRule, 0, len(exprs))
	for _, expr := range exprs {
		out = append(out, PatternRule{
			Pattern:  regexp.MustCompile("(?i)" + expr),
			Category: category,
		})
	}
	return out
}

var chronicConditionPatterns = section(CategoryChronicCondition,
	`diabet(?:es|ic)`,
	`hypertens(?:ion|ive)`,
	`chronic kidney disease`,
	`ckd(?: stage [1-5])?`,
	`heart failure`,
	`congestive heart failure`,
	`chf`,
	`asthma`,
	`copd`,
	`chronic obstructive pulmonary disease`,
	`cancer`,
	`carcinoma`,
	`malignant`,
	`neoplasm`,
	`tumor`,
	`metastatic`,
	`metastasis`,
	`stroke`,
	`cerebrovascular (?:accident|disease)`,
	`cva`,
	`tia`,
	`transient ischemic attack`,
	`alzheimer(?:'s disease)?`,
	`dementia`,
	`parkinson(?:'s disease)?`,
	`huntington(?:'s disease)?`,
	`multiple sclerosis`,
)

// "MS" only counts when followed by a space, end of text or punctuation.
var multipleSclerosisAbbrev = PatternRule{
	Pattern:  regexp.MustCompile(`(?i)\b(ms)(?: |$|\.|,)`),
	Category: CategoryChronicCondition,
	Group:    1,
}

var chronicConditionPatternsTail = section(CategoryChronicCondition,
	`arthritis`,
	`rheumatoid arthritis`,
	`osteoarthritis`,
	`gout`,
	`depression`,
	`major depressive disorder`,
	`anxiety`,
	`generalized anxiety disorder`,
	`bipolar disorder`,
	`schizophrenia`,
	`post-traumatic stress disorder`,
	`ptsd`,
	`ocd`,
	`obsessive compulsive disorder`,
	`obesity`,
	`morbid obesity`,
	`bmi(?: [3-9][0-9])?`,
	`cirrhosis`,
	`hepatitis`,
	`fatty liver`,
	`nash`,
	`nonalcoholic steatohepatitis`,
	`emphysema`,
	`pulmonary fibrosis`,
	`coronary artery disease`,
	`cad`,
	`myocardial infarction`,
	`heart attack`,
	`angina`,
	`atrial fibrillation`,
	`afib`,
	`arrhythmia`,
	`hypothyroidism`,
	`hyperthyroidism`,
	`hyperlipidemia`,
	`dyslipidemia`,
	`osteoporosis`,
	`epilepsy`,
	`seizure disorder`,
	`neuropathy`,
	`peripheral neuropathy`,
	`retinopathy`,
	`nephropathy`,
)

var labTestPatterns = section(CategoryLabTest,
	`hemoglobin`,
	`hematocrit`,
	`rbc|red\s*blood\s*cells?`,
	`wbc|white\s*blood\s*cells?`,
	`platelets?`,
	`cholesterol`,
	`triglycerides?`,
	`hdl`,
	`ldl`,
	`a1c|hba1c`,
	`glycos(?:yl)?ated hemoglobin`,
	`glucose`,
	`fasting (?:blood )?glucose`,
	`creatinine`,
	`bun`,
	`blood urea nitrogen`,
	`egfr`,
	`estimated glomerular filtration rate`,
	`alt|alanine aminotransferase`,
	`ast|aspartate aminotransferase`,
	`ggt|gamma-glutamyl transferase`,
	`alkaline phosphatase`,
	`bilirubin`,
	`albumin`,
	`protein`,
	`tsh|thyroid stimulating hormone`,
	`t3|t4|thyroxine`,
	`sodium|potassium|chloride|bicarbonate`,
	`calcium|phosphorus|magnesium`,
	`ferritin|iron`,
	`transferrin`,
	`vitamin\s*d`,
	`vitamin\s*b12`,
	`folate|folic acid`,
	`hemoglobin a1c`,
	`inr|international normalized ratio`,
	`pt|prothrombin time`,
	`ptt|partial thromboplastin time`,
	`troponin`,
	`bnp|brain natriuretic peptide`,
	`nt-probnp`,
	`crp|c-reactive protein`,
	`esr|erythrocyte sedimentation rate`,
	`psa|prostate specific antigen`,
)

var diagnosticFindingPatterns = section(CategoryDiagnosticFinding,
	`anemia`,
	`leukocytosis`,
	`leukopenia`,
	`thrombocytopenia`,
	`thrombocytosis`,
	`pancytopenia`,
	`neutropenia`,
	`neutrophilia`,
	`lymphocytosis`,
	`lymphopenia`,
	`eosinophilia`,
	`hypoglycemia`,
	`hyperglycemia`,
	`hyperlipidemia`,
	`hyponatremia`,
	`hypernatremia`,
	`hypokalemia`,
	`hyperkalemia`,
	`hypocalcemia`,
	`hypercalcemia`,
	`hypomagnesemia`,
	`hypermagnesemia`,
	`hypoalbuminemia`,
	`hyperbilirubinemia`,
	`hypoxemia`,
	`acidosis`,
	`alkalosis`,
	`proteinuria`,
	`hematuria`,
	`glycosuria`,
)

var procedurePatterns = section(CategoryProcedure,
	`colonoscopy`,
	`endoscopy`,
	`mammogram`,
	`x-ray`,
	`mri`,
	`ct scan`,
	`ultrasound`,
	`echocardiogram`,
	`ekg|electrocardiogram`,
	`stress test`,
	`biopsy`,
	`surgery`,
	`cabg|coronary artery bypass graft`,
	`angioplasty`,
	`stent`,
	`pacemaker`,
	`defibrillator`,
	`joint replacement`,
	`appendectomy`,
	`cholecystectomy`,
	`hysterectomy`,
)

var medicationPatterns = section(CategoryMedication,
	`warfarin|coumadin`,
	`heparin`,
	`aspirin`,
	`clopidogrel|plavix`,
	`metformin`,
	`insulin`,
	`levothyroxine|synthroid`,
	`prednisone`,
	`albuterol|ventolin`,
)

var imagingFindingPatterns = section(CategoryImagingFinding,
	`fracture`,
	`osteopenia`,
	`osteoporosis`,
	`stenosis`,
	`cardiomegaly`,
	`effusion`,
	`mass`,
	`nodule`,
	`opacity`,
	`pneumonia`,
	`fibrosis`,
	`atrophy`,
	`atherosclerosis`,
	`edema`,
	`calcification`,
	`enlarged`,
	`abnormal`,
	`lesion`,
)

var pathologyFindingPatterns = section(CategoryPathologyFinding,
	`hyperplasia`,
	`dysplasia`,
	`metaplasia`,
	`atypia`,
	`anaplasia`,
	`adenoma`,
	`granuloma`,
	`inflammation`,
	`infiltration`,
	`necrosis`,
)

// DefaultCatalog returns the built-in clinical term catalog.
func DefaultCatalog() *Catalog {
	var rules []PatternRule
	rules = append(rules, chronicConditionPatterns...)
	rules = append(rules, multipleSclerosisAbbrev)
	rules = append(rules, chronicConditionPatternsTail...)
	rules = append(rules, labTestPatterns...)
	rules = append(rules, diagnosticFindingPatterns...)
	rules = append(rules, procedurePatterns...)
	rules = append(rules, medicationPatterns...)
	rules = append(rules, imagingFindingPatterns...)
	rules = append(rules, pathologyFindingPatterns...)
	return NewCatalog(rules)
}

var medicationSuffixPattern = regexp.MustCompile(`(?i)\b[a-z]+(?:mab|zumab|ximab|mumab|olol|sartan|pril|statin|dipine|prazole|olone|sone|asone|methasone|oxacin|floxacin|cycline|mycin|micin|azole|parib|tinib|afil|azine|tadine|olam|pam|kain|barb)\b`)

var commonMedicationPatterns = func() []*regexp.Regexp {
	names := []string{
		"metformin", "insulin", "aspirin", "warfarin", "clopidogrel",
		"levothyroxine", "synthroid", "lisinopril", "atorvastatin", "losartan",
		"amlodipine", "furosemide", "lasix", "omeprazole", "prednisone",
		"albuterol", "gabapentin", "hydrochlorothiazide", "hctz", "metoprolol",
	}
	out := make([]*regexp.Regexp, len(names))
	for i, n := range names {
		out[i] = regexp.MustCompile(`(?i)\b` + n + `\b`)
	}
	return out
}()

var (
	referenceRangePattern = regexp.MustCompile(`(?i)(reference|normal)\s+range[:\s]+(\d+\.?\d*)\s*[-–]\s*(\d+\.?\d*)`)
	icdCodePattern        = regexp.MustCompile(`(?i)(?:ICD[-\s]?(?:9|10)[-\s]?(?:CM|PCS)?[-\s]?:?[-\s]?)?\b([A-Z]\d{1,2})\.?(\d{1,2})\b`)
	serviceDatePatterns   = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:date of (?:service|exam|examination|study|report|visit|admission|discharge))\s*:?\s*(\d{1,2}[-/\.]\d{1,2}[-/\.]\d{2,4})`),
		regexp.MustCompile(`(?i)(?:service|exam|examination|study|report|visit|admission|discharge) date\s*:?\s*(\d{1,2}[-/\.]\d{1,2}[-/\.]\d{2,4})`),
		regexp.MustCompile(`(?i)(?:performed|conducted|examined) on\s*:?\s*(\d{1,2}[-/\.]\d{1,2}[-/\.]\d{2,4})`),
	}
)
