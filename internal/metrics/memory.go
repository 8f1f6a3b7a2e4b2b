package metrics

import (
	"sync"
	"time"
)

// StageStats aggregates one pipeline stage.
type StageStats struct {
	Successes int
	Errors    int
	Total     time.Duration
}

// Snapshot is a point-in-time copy of InMemoryRecorder state.
type Snapshot struct {
	Stages        map[string]StageStats
	StepsRendered int
	Warnings      map[string]int
}

// InMemoryRecorder keeps counters in process; used for run summaries.
type InMemoryRecorder struct {
	mu       sync.Mutex
	stages   map[string]StageStats
	steps    int
	warnings map[string]int
}

func NewInMemoryRecorder() *InMemoryRecorder {
	return &InMemoryRecorder{
		stages:   make(map[string]StageStats),
		warnings: make(map[string]int),
	}
}

func (r *InMemoryRecorder) ObserveStage(stage string, status string, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.stages[stage]
	if status == "success" {
		s.Successes++
	} else {
		s.Errors++
	}
	s.Total += duration
	r.stages[stage] = s
}

func (r *InMemoryRecorder) ObserveSteps(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps += n
}

func (r *InMemoryRecorder) ObserveWarning(field string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings[field]++
}

func (r *InMemoryRecorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		Stages:        make(map[string]StageStats, len(r.stages)),
		StepsRendered: r.steps,
		Warnings:      make(map[string]int, len(r.warnings)),
	}
	for k, v := range r.stages {
		out.Stages[k] = v
	}
	for k, v := range r.warnings {
		out.Warnings[k] = v
	}
	return out
}
