package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Actions recorded by the reporter.
const (
	ActionRender   = "render_report"
	ActionValidate = "validate_trace"
)

// Statuses recorded by the reporter.
const (
	StatusSuccess    = "success"
	StatusWriteError = "write_error"
	StatusError      = "error"
)

// Event is one audit-log record.
type Event struct {
	Timestamp string `json:"ts"`
	RunID     string `json:"run_id"`
	Actor     string `json:"actor"`
	Action    string `json:"action"`
	Resource  string `json:"resource"`
	Output    string `json:"output,omitempty"`
	Status    string `json:"status"`
	Steps     int    `json:"steps"`
	Warnings  int    `json:"warnings"`
	Error     string `json:"error,omitempty"`
}

// Logger writes JSONL audit records.
type Logger struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

func NewLogger(path string) *Logger {
	return &Logger{path: path, now: time.Now}
}

func (l *Logger) Enabled() bool {
	return l != nil && l.path != ""
}

// NewRunID returns an identifier correlating audit records of one run.
func NewRunID() string {
	return uuid.NewString()
}

// CurrentActor names the user the process runs as.
func CurrentActor() string {
	for _, key := range []string{"REPORT_ACTOR", "USER", "USERNAME"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return "unknown"
}

func (l *Logger) Write(ev Event, err error) error {
	if !l.Enabled() {
		return nil
	}

	ev.Timestamp = l.now().UTC().Format(time.RFC3339Nano)
	if ev.RunID == "" {
		ev.RunID = NewRunID()
	}
	if err != nil {
		ev.Error = err.Error()
	}
	b, mErr := json.Marshal(ev)
	if mErr != nil {
		return fmt.Errorf("audit marshal: %w", mErr)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if mkErr := os.MkdirAll(filepath.Dir(l.path), 0o755); mkErr != nil {
		return fmt.Errorf("audit mkdir: %w", mkErr)
	}
	f, openErr := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if openErr != nil {
		return fmt.Errorf("audit open: %w", openErr)
	}
	defer func() { _ = f.Close() }()

	if _, wErr := f.Write(append(b, '\n')); wErr != nil {
		return fmt.Errorf("audit write: %w", wErr)
	}
	return nil
}
