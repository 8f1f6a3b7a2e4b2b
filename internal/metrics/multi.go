package metrics

import "time"

// MultiRecorder fans out metrics to multiple recorders.
type MultiRecorder struct {
	recorders []Recorder
}

func NewMultiRecorder(recorders ...Recorder) *MultiRecorder {
	nonNil := make([]Recorder, 0, len(recorders))
	for _, r := range recorders {
		if r != nil {
			nonNil = append(nonNil, r)
		}
	}
	return &MultiRecorder{recorders: nonNil}
}

func (m *MultiRecorder) ObserveStage(stage string, status string, duration time.Duration) {
	for _, r := range m.recorders {
		r.ObserveStage(stage, status, duration)
	}
}

func (m *MultiRecorder) ObserveSteps(n int) {
	for _, r := range m.recorders {
		r.ObserveSteps(n)
	}
}

func (m *MultiRecorder) ObserveWarning(field string) {
	for _, r := range m.recorders {
		r.ObserveWarning(field)
	}
}
