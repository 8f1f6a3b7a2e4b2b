package app

import (
	"io"
	"log/slog"
	"strings"

	"github.com/your-org/tracereport/internal/config"
)

// NewLogger builds the process logger from config. Unknown levels fall back
// to info.
func NewLogger(c config.Log, w io.Writer) *slog.Logger {
	level, _ := config.ParseLevel(c.Level)
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if strings.EqualFold(c.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}
