package hcc

import (
	"errors"
	"fmt"
)

var (
	ErrExtraction     = errors.New("term extraction failed")
	ErrClassification = errors.New("code classification failed")
)

// Stage names a pipeline step.
type Stage string

const (
	StageExtract  Stage = "extract"
	StageClassify Stage = "classify"
)

// StageError wraps a failure from one pipeline stage. errors.Is matches the
// stage sentinel as well as the wrapped error.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func (e *StageError) Is(target error) bool {
	switch e.Stage {
	case StageExtract:
		return target == ErrExtraction
	case StageClassify:
		return target == ErrClassification
	}
	return false
}

func newStageError(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}

// recoverStage converts a panic into a StageError stored in *errp.
func recoverStage(stage Stage, errp *error) {
	if r := recover(); r != nil {
		*errp = newStageError(stage, fmt.Errorf("panic: %v", r))
	}
}
