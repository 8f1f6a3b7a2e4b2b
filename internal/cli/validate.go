package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/your-org/tracereport/internal/app"
)

func newValidateCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that a trace document can be rendered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.resolveConfig()
			if err != nil {
				return err
			}
			out, err := app.Validate(cmd.Context(), app.Options{
				Config: cfg,
				Logger: app.NewLogger(cfg.Log, cmd.ErrOrStderr()),
			})
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "trace is valid: %s (%d step(s))\n", cfg.Input, out.Steps)
			for _, warn := range out.Warnings {
				_, _ = fmt.Fprintf(w, "- warning: %s\n", warn)
			}
			return nil
		},
	}
}
