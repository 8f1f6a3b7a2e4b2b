package cli

import (
	"github.com/spf13/cobra"

	"github.com/your-org/tracereport/internal/app"
)

// ExitWriteFailure is returned by render --strict when the report could not
// be written.
const ExitWriteFailure = 2

func newRenderCommand(g *globalFlags) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a trace document into an HTML report",
		Long: `Load a trace document, normalize its steps and write a standalone HTML report.

A report that cannot be written is reported on stderr but does not fail the
command unless --strict is set.

Examples:
  tracereport render                                   # report/result/report.json -> result/report.html
  tracereport render -i run.json -o out/report.html --lang es
  tracereport render --config report.yaml --strict`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.resolveConfig()
			if err != nil {
				return err
			}
			out, err := app.Render(cmd.Context(), app.Options{
				Config: cfg,
				Logger: app.NewLogger(cfg.Log, cmd.ErrOrStderr()),
			})
			if err != nil {
				return err
			}
			app.PrintSummary(cmd.OutOrStdout(), out)
			if out.WriteErr != nil {
				cmd.PrintErrf("error: %v\n", out.WriteErr)
				if strict {
					return &ExitError{Code: ExitWriteFailure, Err: out.WriteErr}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with status 2 when the report cannot be written")
	return cmd
}
