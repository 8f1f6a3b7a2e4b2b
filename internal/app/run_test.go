package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/your-org/tracereport/internal/audit"
	"github.com/your-org/tracereport/internal/config"
	"github.com/your-org/tracereport/internal/metrics"
	"github.com/your-org/tracereport/internal/report"
	"github.com/your-org/tracereport/internal/trace"
)

const sampleTrace = `{
	"steps": [
		{
			"stepNumber": 1,
			"startTime": 10,
			"endTime": 15,
			"currentState": {"evaluationPreviousGoal": "Unknown", "memory": "", "nextGoal": "open <shop>"},
			"actions": [{"go_to_url": {"url": "https://example.com"}}],
			"results": [{"extractedContent": "navigated"}],
			"url": "https://example.com",
			"screenshot": ""
		},
		{
			"stepNumber": 2,
			"startTime": 100.0,
			"endTime": 102.345,
			"actions": ["done"],
			"results": [],
			"screenshot": "iVBORw0KGgo="
		}
	]
}`

func testConfig(t *testing.T, traceBody string) config.Config {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "report.json")
	require.NoError(t, os.WriteFile(input, []byte(traceBody), 0o644))

	cfg := config.Default()
	cfg.Input = input
	cfg.Output = filepath.Join(dir, "result", "report.html")
	cfg.Timezone = "UTC"
	return cfg
}

func quietLogger(w io.Writer) *slog.Logger {
	if w == nil {
		w = io.Discard
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestRenderWritesReport(t *testing.T) {
	cfg := testConfig(t, sampleTrace)

	out, err := Render(context.Background(), Options{Config: cfg, Logger: quietLogger(nil)})
	require.NoError(t, err)
	require.NoError(t, out.WriteErr)
	require.True(t, out.Written())
	require.Equal(t, 2, out.Steps)
	require.NotEmpty(t, out.RunID)

	b, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	require.Equal(t, out.HTML, string(b))
	require.Equal(t, 2, strings.Count(out.HTML, `<tr class="step-row">`))
	require.Contains(t, out.HTML, "<td>5.0</td>")
	require.Contains(t, out.HTML, "<td>2.35</td>")
	require.Contains(t, out.HTML, "open &lt;shop&gt;")
	require.Contains(t, out.HTML, "data:image/png;base64,iVBORw0KGgo=")

	require.Equal(t, 1, out.Metrics.Stages[metrics.StageLoad].Successes)
	require.Equal(t, 1, out.Metrics.Stages[metrics.StagePersist].Successes)
	require.Equal(t, 2, out.Metrics.StepsRendered)
}

func TestRenderReportsMissingFieldWarnings(t *testing.T) {
	cfg := testConfig(t, sampleTrace)
	var logs bytes.Buffer

	out, err := Render(context.Background(), Options{Config: cfg, Logger: quietLogger(&logs)})
	require.NoError(t, err)

	require.Equal(t, []trace.FieldNormalizationWarning{
		{StepIndex: 1, StepNumber: 2, Field: "currentState"},
		{StepIndex: 1, StepNumber: 2, Field: "url"},
	}, out.Warnings)
	require.Equal(t, 1, out.Metrics.Warnings["url"])
	require.Contains(t, logs.String(), `"msg":"step field missing"`)
}

func TestRenderWrongTypedFieldsStillWriteReport(t *testing.T) {
	cfg := testConfig(t, `{"steps": [
		{"stepNumber": 1.0, "startTime": 10, "endTime": 15, "url": "https://example.com",
		 "currentState": {"memory": 3}, "actions": [null], "results": ["ok"]},
		{"stepNumber": 2, "startTime": "soon", "endTime": 20, "url": "https://example.com/b",
		 "currentState": {}, "actions": [], "results": []}
	]}`)
	var logs bytes.Buffer

	out, err := Render(context.Background(), Options{Config: cfg, Logger: quietLogger(&logs)})
	require.NoError(t, err)
	require.True(t, out.Written())
	require.Equal(t, 2, out.Steps)
	require.Equal(t, []trace.FieldNormalizationWarning{
		{StepIndex: 1, StepNumber: 2, Field: "startTime", Invalid: true},
	}, out.Warnings)
	require.Contains(t, logs.String(), `"msg":"step field invalid"`)
	require.Contains(t, out.HTML, "<li><pre>null</pre></li>")
	require.Contains(t, out.HTML, "<li><pre>ok</pre></li>")
}

func TestRenderMissingStepsWritesNothing(t *testing.T) {
	cfg := testConfig(t, `{"history": []}`)
	cfg.AuditLogPath = filepath.Join(filepath.Dir(cfg.Input), "audit.log")

	_, err := Render(context.Background(), Options{Config: cfg, Logger: quietLogger(nil)})
	require.Error(t, err)

	var malformed *trace.MalformedTraceError
	require.True(t, errors.As(err, &malformed))
	require.True(t, errors.Is(err, trace.ErrMissingSteps))

	_, statErr := os.Stat(cfg.Output)
	require.True(t, errors.Is(statErr, os.ErrNotExist))

	ev := lastAuditEvent(t, cfg.AuditLogPath)
	require.Equal(t, audit.StatusError, ev.Status)
	require.Equal(t, audit.ActionRender, ev.Action)
}

func TestRenderMissingStepsKeepsPreviousReport(t *testing.T) {
	cfg := testConfig(t, `{"not_steps": 1}`)
	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.Output), 0o755))
	require.NoError(t, os.WriteFile(cfg.Output, []byte("previous"), 0o644))

	_, err := Render(context.Background(), Options{Config: cfg, Logger: quietLogger(nil)})
	require.Error(t, err)

	b, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	require.Equal(t, "previous", string(b))
}

func TestRenderWriteFailureIsIsolated(t *testing.T) {
	cfg := testConfig(t, sampleTrace)
	cfg.Output = filepath.Join(filepath.Dir(cfg.Input), "missing-dir", "report.html")
	cfg.CreateDirs = false
	cfg.AuditLogPath = filepath.Join(filepath.Dir(cfg.Input), "audit.log")
	var logs bytes.Buffer

	out, err := Render(context.Background(), Options{Config: cfg, Logger: quietLogger(&logs)})
	require.NoError(t, err)
	require.Error(t, out.WriteErr)
	require.True(t, IsWriteError(out.WriteErr))
	require.False(t, out.Written())
	require.Contains(t, out.HTML, "<!DOCTYPE html>")
	require.Equal(t, 2, strings.Count(out.HTML, `<tr class="step-row">`))

	var writeErr *report.ReportWriteError
	require.True(t, errors.As(out.WriteErr, &writeErr))
	require.Equal(t, cfg.Output, writeErr.Path)

	require.Equal(t, 1, out.Metrics.Stages[metrics.StagePersist].Errors)
	require.Contains(t, logs.String(), `"msg":"report write failed"`)

	ev := lastAuditEvent(t, cfg.AuditLogPath)
	require.Equal(t, audit.StatusWriteError, ev.Status)
	require.NotEmpty(t, ev.Error)
}

func TestRenderIsByteIdenticalAcrossRuns(t *testing.T) {
	cfg := testConfig(t, sampleTrace)

	first, err := Render(context.Background(), Options{Config: cfg, Logger: quietLogger(nil)})
	require.NoError(t, err)
	second, err := Render(context.Background(), Options{Config: cfg, Logger: quietLogger(nil)})
	require.NoError(t, err)

	require.Equal(t, first.HTML, second.HTML)
	require.NotEqual(t, first.RunID, second.RunID)
}

func TestRenderSpanishReport(t *testing.T) {
	cfg := testConfig(t, sampleTrace)
	cfg.Language = "es"

	out, err := Render(context.Background(), Options{Config: cfg, Logger: quietLogger(nil)})
	require.NoError(t, err)
	require.Contains(t, out.HTML, "Reporte de Navegación Automatizada")
	require.Contains(t, out.HTML, "No hay captura de pantalla")
}

func TestRenderWritesMetricsTextfile(t *testing.T) {
	cfg := testConfig(t, sampleTrace)
	cfg.MetricsTextfile = filepath.Join(filepath.Dir(cfg.Input), "metrics", "report.prom")

	_, err := Render(context.Background(), Options{Config: cfg, Logger: quietLogger(nil)})
	require.NoError(t, err)

	b, err := os.ReadFile(cfg.MetricsTextfile)
	require.NoError(t, err)
	require.Contains(t, string(b), "trace_report_steps_rendered_total 2")
}

func TestRenderRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t, sampleTrace)
	cfg.Language = "klingon"

	_, err := Render(context.Background(), Options{Config: cfg, Logger: quietLogger(nil)})
	require.Error(t, err)
	_, statErr := os.Stat(cfg.Output)
	require.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestValidate(t *testing.T) {
	cfg := testConfig(t, sampleTrace)

	out, err := Validate(context.Background(), Options{Config: cfg, Logger: quietLogger(nil)})
	require.NoError(t, err)
	require.Equal(t, 2, out.Steps)
	require.Len(t, out.Warnings, 2)

	_, statErr := os.Stat(cfg.Output)
	require.True(t, errors.Is(statErr, os.ErrNotExist))

	bad := testConfig(t, `{"steps": [`)
	_, err = Validate(context.Background(), Options{Config: bad, Logger: quietLogger(nil)})
	require.Error(t, err)
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, Outcome{Steps: 3, Output: "result/report.html"})
	require.Equal(t, "rendered 3 step(s) with 0 warning(s)\nreport written: result/report.html\n", buf.String())

	buf.Reset()
	PrintSummary(&buf, Outcome{Steps: 1, WriteErr: errors.New("boom")})
	require.Contains(t, buf.String(), "report NOT written: boom")
}

func lastAuditEvent(t *testing.T, path string) audit.Event {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")

	var ev audit.Event
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &ev))
	return ev
}
