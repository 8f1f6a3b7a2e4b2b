package metrics

import "time"

// Recorder defines the metric hooks the render pipeline reports through.
type Recorder interface {
	ObserveStage(stage string, status string, duration time.Duration)
	ObserveSteps(n int)
	ObserveWarning(field string)
}

// Pipeline stage names.
const (
	StageLoad      = "load"
	StageNormalize = "normalize"
	StageRender    = "render"
	StagePersist   = "persist"
)

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) ObserveStage(string, string, time.Duration) {}
func (NoopRecorder) ObserveSteps(int)                           {}
func (NoopRecorder) ObserveWarning(string)                      {}
