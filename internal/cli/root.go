package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/your-org/tracereport/internal/config"
	"github.com/your-org/tracereport/internal/version"
)

// ExitError carries a process exit code out of a command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps a command error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

type globalFlags struct {
	configPath string
	envFile    string
	input      string
	output     string
	language   string
	timezone   string
	title      string
	logLevel   string
	logFormat  string
}

// NewRootCommand builds the tracereport command tree writing to the given
// streams.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "tracereport",
		Short: "Render browser-agent execution traces as HTML reports",
		Long: `tracereport - turn an agent session trace into a standalone HTML report.

COMMANDS
  render              Load a trace, render it and write the report
  validate            Load and normalize a trace without writing a report
  init <dir>          Generate a sample config and trace
  audit-export        Convert the JSONL audit log to CSV
  version             Print build information

CONFIGURATION (lowest to highest precedence)
  defaults  ->  --config report.yaml  ->  environment (REPORT_*, .env)  ->  flags`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadEnvFile(g.envFile)
		},
	}
	root.SetVersionTemplate(version.String() + "\n")
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "", "YAML config file")
	pf.StringVar(&g.envFile, "env-file", ".env", "dotenv file loaded before reading the environment (missing file is ignored)")
	pf.StringVarP(&g.input, "input", "i", "", "trace document path (default "+config.DefaultInput+")")
	pf.StringVarP(&g.output, "output", "o", "", "report destination (default "+config.DefaultOutput+")")
	pf.StringVar(&g.language, "lang", "", "report language: en, es")
	pf.StringVar(&g.timezone, "timezone", "", "IANA timezone for timestamps (default local)")
	pf.StringVar(&g.title, "title", "", "report title")
	pf.StringVar(&g.logLevel, "log-level", "", "debug, info, warn, error")
	pf.StringVar(&g.logFormat, "log-format", "", "text or json")

	root.AddCommand(
		newRenderCommand(g),
		newValidateCommand(g),
		newInitCommand(),
		newAuditExportCommand(),
		newVersionCommand(),
	)
	return root
}

func loadEnvFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file %q: %w", path, err)
	}
	return nil
}

// resolveConfig layers defaults, the config file, the environment and flags.
func (g *globalFlags) resolveConfig() (config.Config, error) {
	cfg := config.Default()
	if g.configPath != "" {
		loaded, err := config.LoadFile(g.configPath, cfg)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	cfg = config.FromEnv(cfg)

	for _, o := range []struct {
		flag string
		dst  *string
	}{
		{g.input, &cfg.Input},
		{g.output, &cfg.Output},
		{g.language, &cfg.Language},
		{g.timezone, &cfg.Timezone},
		{g.title, &cfg.Title},
		{g.logLevel, &cfg.Log.Level},
		{g.logFormat, &cfg.Log.Format},
	} {
		if o.flag != "" {
			*o.dst = o.flag
		}
	}

	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
