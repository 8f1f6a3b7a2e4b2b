package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"github.com/your-org/tracereport/internal/report"
	"github.com/your-org/tracereport/internal/trace"
)

var (
	ErrEmptyInput  = errors.New("config: input path is empty")
	ErrEmptyOutput = errors.New("config: output path is empty")
)

const (
	DefaultInput  = "report/result/report.json"
	DefaultOutput = "result/report.html"
)

// Config is everything one render invocation needs.
type Config struct {
	Input           string  `yaml:"input"`
	Output          string  `yaml:"output"`
	Language        string  `yaml:"language"`
	Timezone        string  `yaml:"timezone"`
	Title           string  `yaml:"title"`
	MaxImageWidth   int     `yaml:"max_image_width"`
	CreateDirs      bool    `yaml:"create_dirs"`
	AuditLogPath    string  `yaml:"audit_log_path"`
	MetricsTextfile string  `yaml:"metrics_textfile"`
	Tracing         Tracing `yaml:"tracing"`
	Log             Log     `yaml:"log"`
}

// Tracing configures OpenTelemetry export.
type Tracing struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// Log configures the process logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns baseline config with safe defaults.
func Default() Config {
	return Config{
		Input:         DefaultInput,
		Output:        DefaultOutput,
		Language:      "en",
		MaxImageWidth: trace.DefaultMaxImageWidth,
		CreateDirs:    true,
		Log:           Log{Level: "info", Format: "text"},
	}
}

// LoadFile overlays a YAML config file onto base and validates the result.
func LoadFile(path string, base Config) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := base
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal %q: %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv overlays environment variables onto base. Unparseable values are
// ignored.
func FromEnv(base Config) Config {
	cfg := base

	if v := strings.TrimSpace(os.Getenv("REPORT_INPUT")); v != "" {
		cfg.Input = v
	}
	if v := strings.TrimSpace(os.Getenv("REPORT_OUTPUT")); v != "" {
		cfg.Output = v
	}
	if v := strings.TrimSpace(os.Getenv("REPORT_LANG")); v != "" {
		cfg.Language = v
	}
	if v := strings.TrimSpace(os.Getenv("REPORT_TIMEZONE")); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("REPORT_TITLE"); v != "" {
		cfg.Title = v
	}
	if v := os.Getenv("REPORT_MAX_IMAGE_WIDTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxImageWidth = n
		}
	}
	if v := os.Getenv("REPORT_CREATE_DIRS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.CreateDirs = b
		}
	}
	if v := strings.TrimSpace(os.Getenv("AUDIT_LOG_PATH")); v != "" {
		cfg.AuditLogPath = v
	}
	if v := strings.TrimSpace(os.Getenv("METRICS_TEXTFILE")); v != "" {
		cfg.MetricsTextfile = v
	}
	if v := os.Getenv("TRACE_ENABLED"); v != "" {
		cfg.Tracing.Enabled = envBool(v)
	}
	if v := strings.TrimSpace(os.Getenv("TRACE_ENDPOINT")); v != "" {
		cfg.Tracing.Endpoint = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		if _, err := ParseLevel(v); err == nil {
			cfg.Log.Level = v
		}
	}
	if v := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT"))); v == "json" || v == "text" {
		cfg.Log.Format = v
	}

	return cfg
}

// Validate enforces config correctness before any file is touched.
func Validate(c Config) error {
	if strings.TrimSpace(c.Input) == "" {
		return ErrEmptyInput
	}
	if strings.TrimSpace(c.Output) == "" {
		return ErrEmptyOutput
	}
	if !report.IsSupportedLanguage(c.Language) {
		return fmt.Errorf("config: unsupported language %q (supported: %s)", c.Language, strings.Join(report.SupportedLanguages, ", "))
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.MaxImageWidth < 0 {
		return fmt.Errorf("config: max_image_width must not be negative, got %d", c.MaxImageWidth)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	return nil
}

// Location resolves the configured timezone; empty or "Local" is the
// process-local zone.
func (c Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("config: invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

// Labels returns the report label set for the configured language.
func (c Config) Labels() report.Labels {
	return report.LabelsFor(c.Language)
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("config: unknown log level %q", s)
	}
}

func envBool(v string) bool {
	v = strings.TrimSpace(strings.ToLower(v))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}
