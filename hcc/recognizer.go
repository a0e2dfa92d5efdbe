package hcc

import (
	"context"
	"strings"
)

// Entity is one span tagged by a named-entity recognizer.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Recognizer tags entities in free text. Implementations must be safe for
// concurrent use.
type Recognizer interface {
	Recognize(ctx context.Context, text string) ([]Entity, error)
}

// RecognizerFunc adapts a function to Recognizer.
type RecognizerFunc func(ctx context.Context, text string) ([]Entity, error)

func (f RecognizerFunc) Recognize(ctx context.Context, text string) ([]Entity, error) {
	return f(ctx, text)
}

// conditionLabels are the entity labels that become CONDITION terms.
var conditionLabels = map[string]struct{}{
	"DISEASE":   {},
	"CONDITION": {},
	"DIAGNOSIS": {},
}

func isConditionLabel(label string) bool {
	_, ok := conditionLabels[strings.ToUpper(strings.TrimSpace(label))]
	return ok
}
