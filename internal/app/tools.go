package app

import (
	"fmt"
	"io"

	"github.com/your-org/tracereport/internal/audit"
	"github.com/your-org/tracereport/internal/scaffold"
)

func ScaffoldWorkspace(targetDir string, language string, out io.Writer) error {
	if err := scaffold.Generate(targetDir, language); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "workspace generated at %s\n", targetDir)
	return nil
}

func ExportAudit(inputPath string, outputPath string, out io.Writer) error {
	if err := audit.ExportJSONLToCSV(inputPath, outputPath); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "audit export complete: %s -> %s\n", inputPath, outputPath)
	return nil
}
