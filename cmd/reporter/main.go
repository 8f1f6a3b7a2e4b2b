package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/your-org/tracereport/internal/app"
	"github.com/your-org/tracereport/internal/config"
)

// reporter renders the trace configured through the environment. It is the
// entrypoint used after an agent session finishes.
func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv(config.Default())
	if len(os.Args) > 1 {
		cfg.Input = os.Args[1]
	}
	if len(os.Args) > 2 {
		cfg.Output = os.Args[2]
	}

	out, err := app.Render(context.Background(), app.Options{
		Config: cfg,
		Logger: app.NewLogger(cfg.Log, os.Stderr),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "reporter failed: %v\n", err)
		os.Exit(1)
	}
	app.PrintSummary(os.Stdout, out)
}
