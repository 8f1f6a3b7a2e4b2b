package trace

import (
	"sync"
	"time"
)

// Recorder captures steps as a session driver executes them. Unlike a
// replay log, step order is the timeline and is never re-sorted.
type Recorder struct {
	mu    sync.Mutex
	steps []Step
	now   func() time.Time
}

func NewRecorder() *Recorder {
	return NewRecorderWithClock(time.Now)
}

// NewRecorderWithClock uses now to time steps started with Begin.
func NewRecorderWithClock(now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{now: now}
}

func (r *Recorder) AddStep(step Step) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.steps = append(r.steps, cloneStep(step))
}

// Begin starts timing a step and returns a function that records it once
// the step completes.
func (r *Recorder) Begin(stepNumber int, url string) func(Step) {
	start := r.now()
	return func(step Step) {
		step.StepNumber = stepNumber
		if step.URL == "" {
			step.URL = url
		}
		step.StartTime = epochSeconds(start)
		step.EndTime = epochSeconds(r.now())
		r.AddStep(step)
	}
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.steps)
}

func (r *Recorder) Finalize() Document {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Document{Steps: make([]Step, 0, len(r.steps))}
	for _, s := range r.steps {
		out.Steps = append(out.Steps, cloneStep(s))
	}
	return out
}

func epochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func cloneStep(in Step) Step {
	out := in
	if in.Actions != nil {
		out.Actions = make([]Action, len(in.Actions))
		for i, a := range in.Actions {
			out.Actions[i] = append(Action(nil), a...)
		}
	}
	if in.Results != nil {
		out.Results = append([]Result(nil), in.Results...)
	}
	if in.issues != nil {
		out.issues = append([]fieldIssue(nil), in.issues...)
	}
	return out
}
