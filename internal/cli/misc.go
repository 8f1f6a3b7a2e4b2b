package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/your-org/tracereport/internal/app"
	"github.com/your-org/tracereport/internal/version"
)

func newInitCommand() *cobra.Command {
	var language string
	cmd := &cobra.Command{
		Use:   "init <dir>",
		Short: "Generate a sample config and trace document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.ScaffoldWorkspace(args[0], language, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&language, "lang", "en", "report language written to the config")
	return cmd
}

func newAuditExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "audit-export <audit.log> [output.csv]",
		Short: "Convert the JSONL audit log to CSV",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputPath := "audit.csv"
			if len(args) > 1 {
				outputPath = args[1]
			}
			return app.ExportAudit(args[0], outputPath, cmd.OutOrStdout())
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
