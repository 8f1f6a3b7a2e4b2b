package trace

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Document is one recorded session: the ordered steps an agent executed.
type Document struct {
	Steps []Step `json:"steps"`
}

// Step is a single observe/act cycle of the agent.
type Step struct {
	StepNumber   int          `json:"stepNumber"`
	StartTime    float64      `json:"startTime"`
	EndTime      float64      `json:"endTime"`
	CurrentState CurrentState `json:"currentState"`
	Actions      []Action     `json:"actions"`
	Results      []Result     `json:"results"`
	URL          string       `json:"url"`
	Screenshot   string       `json:"screenshot,omitempty"`

	// issues records display fields that were absent or unusable in the
	// source, in field order.
	issues []fieldIssue
}

// CurrentState is the agent's own account of where it stands.
type CurrentState struct {
	EvaluationPreviousGoal string `json:"evaluationPreviousGoal"`
	Memory                 string `json:"memory"`
	NextGoal               string `json:"nextGoal"`
}

// Result is the outcome of one action.
type Result struct {
	ExtractedContent string `json:"extractedContent"`
}

// Action is an opaque action description kept as raw JSON.
type Action json.RawMessage

// Text returns the action as display text: strings verbatim, anything else
// (null included) as compact JSON.
func (a Action) Text() string {
	if len(a) == 0 {
		return ""
	}
	if isNull(json.RawMessage(a)) {
		return "null"
	}
	var s string
	if err := json.Unmarshal(a, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, a); err != nil {
		return string(a)
	}
	return buf.String()
}

func (a Action) MarshalJSON() ([]byte, error) {
	if len(a) == 0 {
		return []byte("null"), nil
	}
	return a, nil
}

func (a *Action) UnmarshalJSON(b []byte) error {
	if a == nil {
		return fmt.Errorf("trace: unmarshal into nil action")
	}
	*a = append((*a)[:0], b...)
	return nil
}

// TextAction builds an Action holding a plain string.
func TextAction(s string) Action {
	b, _ := json.Marshal(s)
	return Action(b)
}

// Missing lists display fields that were absent in the source document.
func (s Step) Missing() []string {
	return s.fields(false)
}

// Invalid lists display fields that were present but had an unusable type.
func (s Step) Invalid() []string {
	return s.fields(true)
}

func (s Step) fields(invalid bool) []string {
	var out []string
	for _, is := range s.issues {
		if is.invalid == invalid {
			out = append(out, is.field)
		}
	}
	return out
}
