package trace

import (
	"errors"
	"fmt"
)

var ErrMissingSteps = errors.New("missing top-level \"steps\" field")

// MalformedTraceError reports a trace document that cannot be read, parsed
// or lacks the required top-level structure.
type MalformedTraceError struct {
	Path string
	Err  error
}

func (e *MalformedTraceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("trace: malformed document %q", e.Path)
	}
	return fmt.Sprintf("trace: malformed document %q: %v", e.Path, e.Err)
}

func (e *MalformedTraceError) Unwrap() error {
	return e.Err
}

// FieldNormalizationWarning flags a display field that was absent on one
// step, or present with an unusable type, and replaced by an empty value.
type FieldNormalizationWarning struct {
	StepIndex  int
	StepNumber int
	Field      string
	Invalid    bool
}

// Reason is "missing" or "invalid".
func (w FieldNormalizationWarning) Reason() string {
	if w.Invalid {
		return "invalid"
	}
	return "missing"
}

func (w FieldNormalizationWarning) String() string {
	return fmt.Sprintf("step #%d (index %d): %s field %q", w.StepNumber, w.StepIndex, w.Reason(), w.Field)
}
