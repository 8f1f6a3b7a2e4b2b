package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/your-org/tracereport/internal/audit"
	"github.com/your-org/tracereport/internal/config"
	"github.com/your-org/tracereport/internal/metrics"
	"github.com/your-org/tracereport/internal/report"
	"github.com/your-org/tracereport/internal/telemetry"
	"github.com/your-org/tracereport/internal/trace"
)

const serviceName = "tracereport"

// Options carries the collaborators of one invocation. Nil fields are
// built from Config.
type Options struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics metrics.Recorder
	Tracer  oteltrace.Tracer
}

// Outcome describes one render invocation. HTML is set whenever loading and
// rendering succeeded, even if the report could not be written.
type Outcome struct {
	RunID    string
	Output   string
	HTML     string
	Steps    int
	Warnings []trace.FieldNormalizationWarning
	WriteErr error
	Metrics  metrics.Snapshot
}

// Written reports whether the report reached its destination.
func (o Outcome) Written() bool {
	return o.HTML != "" && o.WriteErr == nil
}

// Render loads the trace at Config.Input and writes the HTML report to
// Config.Output. Load, normalize and render failures are returned. A write
// failure is logged and reported in Outcome.WriteErr only.
func Render(ctx context.Context, opts Options) (out Outcome, retErr error) {
	cfg := opts.Config
	if err := config.Validate(cfg); err != nil {
		return Outcome{}, err
	}

	rt, err := newRuntime(ctx, opts)
	if err != nil {
		return Outcome{}, err
	}
	defer rt.close(ctx)

	out.RunID = audit.NewRunID()
	out.Output = cfg.Output
	auditLog := audit.NewLogger(cfg.AuditLogPath)
	defer func() {
		ev := audit.Event{
			RunID:    out.RunID,
			Actor:    audit.CurrentActor(),
			Action:   audit.ActionRender,
			Resource: cfg.Input,
			Output:   cfg.Output,
			Steps:    out.Steps,
			Warnings: len(out.Warnings),
		}
		cause := retErr
		switch {
		case retErr != nil:
			ev.Status = audit.StatusError
		case out.WriteErr != nil:
			ev.Status = audit.StatusWriteError
			cause = out.WriteErr
		default:
			ev.Status = audit.StatusSuccess
		}
		if err := auditLog.Write(ev, cause); err != nil {
			rt.logger.Warn("audit write failed", "error", err)
		}
		out.Metrics = rt.memory.Snapshot()
	}()

	ctx, span := rt.tracer.Start(ctx, "render_report", oteltrace.WithAttributes(
		attribute.String("report.input", cfg.Input),
		attribute.String("report.output", cfg.Output),
		attribute.String("report.run_id", out.RunID),
	))
	defer span.End()

	steps, warnings, err := rt.loadAndNormalize(ctx, cfg)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return out, err
	}
	out.Steps = len(steps)
	out.Warnings = warnings

	labels := cfg.Labels()
	var html string
	err = rt.stage(ctx, metrics.StageRender, func(context.Context) error {
		renderer, err := report.NewRenderer(report.Options{Labels: &labels, Title: cfg.Title})
		if err != nil {
			return err
		}
		html, err = renderer.Render(steps)
		return err
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return out, fmt.Errorf("render report: %w", err)
	}
	out.HTML = html
	rt.recorder.ObserveSteps(len(steps))

	werr := rt.stage(ctx, metrics.StagePersist, func(context.Context) error {
		return report.Persist(html, cfg.Output, report.PersistOptions{CreateDirs: cfg.CreateDirs})
	})
	if werr != nil {
		out.WriteErr = werr
		span.RecordError(werr)
		rt.logger.Error("report write failed", "stage", metrics.StagePersist, "path", cfg.Output, "error", werr)
		return out, nil
	}

	rt.logger.Info("report written", "path", cfg.Output, "steps", len(steps), "warnings", len(warnings), "bytes", len(html))
	return out, nil
}

// ValidateOutcome summarizes a trace check without rendering.
type ValidateOutcome struct {
	Steps    int
	Warnings []trace.FieldNormalizationWarning
}

// Validate loads and normalizes the trace at Config.Input without writing
// anything but the audit record.
func Validate(ctx context.Context, opts Options) (out ValidateOutcome, retErr error) {
	cfg := opts.Config
	if err := config.Validate(cfg); err != nil {
		return ValidateOutcome{}, err
	}

	rt, err := newRuntime(ctx, opts)
	if err != nil {
		return ValidateOutcome{}, err
	}
	defer rt.close(ctx)

	auditLog := audit.NewLogger(cfg.AuditLogPath)
	defer func() {
		status := audit.StatusSuccess
		if retErr != nil {
			status = audit.StatusError
		}
		ev := audit.Event{
			Actor:    audit.CurrentActor(),
			Action:   audit.ActionValidate,
			Resource: cfg.Input,
			Status:   status,
			Steps:    out.Steps,
			Warnings: len(out.Warnings),
		}
		if err := auditLog.Write(ev, retErr); err != nil {
			rt.logger.Warn("audit write failed", "error", err)
		}
	}()

	ctx, span := rt.tracer.Start(ctx, "validate_trace")
	defer span.End()

	steps, warnings, err := rt.loadAndNormalize(ctx, cfg)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return ValidateOutcome{}, err
	}
	return ValidateOutcome{Steps: len(steps), Warnings: warnings}, nil
}

type runtime struct {
	logger   *slog.Logger
	tracer   oteltrace.Tracer
	recorder metrics.Recorder
	memory   *metrics.InMemoryRecorder

	registry     *prometheus.Registry
	textfile     string
	shutdownOTel func(context.Context) error
}

func newRuntime(ctx context.Context, opts Options) (*runtime, error) {
	cfg := opts.Config
	rt := &runtime{
		logger:       opts.Logger,
		tracer:       opts.Tracer,
		memory:       metrics.NewInMemoryRecorder(),
		shutdownOTel: func(context.Context) error { return nil },
	}
	if rt.logger == nil {
		rt.logger = NewLogger(cfg.Log, os.Stderr)
	}

	recorders := []metrics.Recorder{rt.memory, opts.Metrics}
	if cfg.MetricsTextfile != "" {
		rt.registry = prometheus.NewRegistry()
		promRecorder, err := metrics.NewPrometheusRecorder(rt.registry)
		if err != nil {
			return nil, fmt.Errorf("setup prometheus recorder: %w", err)
		}
		rt.textfile = cfg.MetricsTextfile
		recorders = append(recorders, promRecorder)
	}
	rt.recorder = metrics.NewMultiRecorder(recorders...)

	if rt.tracer == nil {
		otelRuntime, err := telemetry.Setup(ctx, serviceName, telemetry.Options{
			Enabled:  cfg.Tracing.Enabled,
			Endpoint: cfg.Tracing.Endpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("setup tracing: %w", err)
		}
		rt.tracer = otelRuntime.Tracer
		rt.shutdownOTel = otelRuntime.Shutdown
	}
	return rt, nil
}

func (rt *runtime) close(ctx context.Context) {
	if rt.registry != nil {
		if err := metrics.WriteTextfile(rt.textfile, rt.registry); err != nil {
			rt.logger.Warn("metrics textfile write failed", "path", rt.textfile, "error", err)
		}
	}
	if err := rt.shutdownOTel(ctx); err != nil {
		rt.logger.Warn("tracing shutdown failed", "error", err)
	}
}

// stage runs fn inside a span and reports its latency and status.
func (rt *runtime) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := rt.tracer.Start(ctx, name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	status := "success"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	rt.recorder.ObserveStage(name, status, elapsed)
	rt.logger.Debug("stage finished", "stage", name, "status", status, "duration_ms", elapsed.Milliseconds())
	return err
}

func (rt *runtime) loadAndNormalize(ctx context.Context, cfg config.Config) ([]trace.NormalizedStep, []trace.FieldNormalizationWarning, error) {
	var doc trace.Document
	err := rt.stage(ctx, metrics.StageLoad, func(context.Context) error {
		var err error
		doc, err = trace.Load(cfg.Input)
		return err
	})
	if err != nil {
		rt.logger.Error("trace load failed", "stage", metrics.StageLoad, "path", cfg.Input, "error", err)
		return nil, nil, fmt.Errorf("load trace: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}
	labels := cfg.Labels()
	normalizer := trace.NewNormalizer(trace.NormalizerOptions{
		Location:      loc,
		Placeholder:   labels.NoScreenshot,
		MaxImageWidth: cfg.MaxImageWidth,
	})

	var (
		steps    []trace.NormalizedStep
		warnings []trace.FieldNormalizationWarning
	)
	_ = rt.stage(ctx, metrics.StageNormalize, func(context.Context) error {
		steps, warnings = normalizer.Normalize(doc)
		return nil
	})
	for _, w := range warnings {
		rt.recorder.ObserveWarning(w.Field)
		rt.logger.Warn("step field "+w.Reason(), "stage", metrics.StageNormalize, "step_index", w.StepIndex, "step_number", w.StepNumber, "field", w.Field)
	}
	return steps, warnings, nil
}

// IsWriteError reports whether err is a report persistence failure.
func IsWriteError(err error) bool {
	var we *report.ReportWriteError
	return errors.As(err, &we)
}

// PrintSummary writes a short human-readable run summary.
func PrintSummary(w io.Writer, out Outcome) {
	_, _ = fmt.Fprintf(w, "rendered %d step(s) with %d warning(s)\n", out.Steps, len(out.Warnings))
	if out.WriteErr != nil {
		_, _ = fmt.Fprintf(w, "report NOT written: %v\n", out.WriteErr)
		return
	}
	_, _ = fmt.Fprintf(w, "report written: %s\n", out.Output)
}
