package scaffold

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/your-org/tracereport/internal/trace"
)

// Sample screenshot: a 1x1 transparent PNG.
const samplePNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

// Generate creates a runnable report workspace in targetDir: a config file,
// a sample trace and a README.
func Generate(targetDir string, language string) error {
	if strings.TrimSpace(targetDir) == "" {
		return fmt.Errorf("target directory is empty")
	}
	if strings.TrimSpace(language) == "" {
		language = "en"
	}

	tracePath := filepath.Join(targetDir, "report", "result", "report.json")
	cfg := fmt.Sprintf(`# tracereport configuration
input: report/result/report.json
output: result/report.html
language: %s
timezone: Local
max_image_width: 600
create_dirs: true
audit_log_path: ""
metrics_textfile: ""
tracing:
  enabled: false
  endpoint: ""
log:
  level: info
  format: text
`, language)

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return fmt.Errorf("mkdir target: %w", err)
	}
	if err := os.WriteFile(filepath.Join(targetDir, "report.yaml"), []byte(cfg), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := trace.SaveToFile(tracePath, SampleTrace()); err != nil {
		return fmt.Errorf("write sample trace: %w", err)
	}

	readme := "# trace report workspace\n\nRender the sample trace with:\n\n```bash\ntracereport render --config report.yaml\n```\n\nThe report is written to `result/report.html`.\n"
	if err := os.WriteFile(filepath.Join(targetDir, "README.md"), []byte(readme), 0o644); err != nil {
		return fmt.Errorf("write scaffold README: %w", err)
	}
	return nil
}

// SampleTrace is a short checkout session used by the scaffold. Step times
// come from a fixed clock so the sample is identical on every run.
func SampleTrace() trace.Document {
	ticks := []float64{
		1700000000.0, 1700000002.345,
		1700000003.0, 1700000008.0,
		1700000008.5, 1700000011.25,
	}
	r := trace.NewRecorderWithClock(func() time.Time {
		next := ticks[0]
		ticks = ticks[1:]
		sec, frac := math.Modf(next)
		return time.Unix(int64(sec), int64(math.Round(frac*1e9)))
	})

	done := r.Begin(1, "about:blank")
	done(trace.Step{
		CurrentState: trace.CurrentState{
			EvaluationPreviousGoal: "Unknown - no previous goal",
			Memory:                 "Starting checkout sanity check",
			NextGoal:               "Open the shop home page",
		},
		Actions: []trace.Action{trace.Action(`{"go_to_url":{"url":"https://shop.example.com"}}`)},
		Results: []trace.Result{{ExtractedContent: "Navigated to https://shop.example.com"}},
	})

	done = r.Begin(2, "https://shop.example.com")
	done(trace.Step{
		CurrentState: trace.CurrentState{
			EvaluationPreviousGoal: "Success - home page loaded",
			Memory:                 "Product grid visible",
			NextGoal:               "Add the first product to the cart",
		},
		Actions: []trace.Action{
			trace.Action(`{"click_element":{"index":12}}`),
			trace.Action(`{"click_element":{"index":31}}`),
		},
		Results: []trace.Result{
			{ExtractedContent: "Clicked size M"},
			{ExtractedContent: "Clicked <Add to cart>"},
		},
		Screenshot: samplePNG,
	})

	done = r.Begin(3, "https://shop.example.com/checkout/confirmation")
	done(trace.Step{
		CurrentState: trace.CurrentState{
			EvaluationPreviousGoal: "Success - cart has 1 item",
			Memory:                 "Order pending confirmation",
			NextGoal:               "Done",
		},
		Actions: []trace.Action{trace.Action(`{"done":{"text":"Order #123 created"}}`)},
		Results: []trace.Result{{ExtractedContent: "Order #123 created & confirmation shown"}},
	})
	return r.Finalize()
}
