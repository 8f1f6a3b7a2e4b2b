package trace

import (
	"fmt"
	"html"
	"html/template"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	TimestampLayout      = "2006-01-02 15:04:05"
	DefaultPlaceholder   = "no screenshot available"
	DefaultMaxImageWidth = 600
)

// NormalizedStep is a display-ready step. Built once by Normalize and never
// mutated afterwards.
type NormalizedStep struct {
	Index        int
	StepNumber   int
	StartTime    float64
	EndTime      float64
	CurrentState CurrentState
	Actions      []string
	Results      []string
	URL          string
	Screenshot   string

	FormattedStart  string
	FormattedEnd    string
	DurationSeconds float64
	Duration        string

	// ScreenshotMarkup is trusted HTML: an <img> built here around the
	// escaped payload, or the escaped placeholder text.
	ScreenshotMarkup template.HTML
	HasScreenshot    bool
}

// NormalizerOptions tunes display formatting. Zero values select defaults.
type NormalizerOptions struct {
	Location      *time.Location
	Placeholder   string
	MaxImageWidth int
}

type Normalizer struct {
	loc         *time.Location
	placeholder string
	maxWidth    int
}

func NewNormalizer(opts NormalizerOptions) *Normalizer {
	n := &Normalizer{
		loc:         opts.Location,
		placeholder: opts.Placeholder,
		maxWidth:    opts.MaxImageWidth,
	}
	if n.loc == nil {
		n.loc = time.Local
	}
	if n.placeholder == "" {
		n.placeholder = DefaultPlaceholder
	}
	if n.maxWidth <= 0 {
		n.maxWidth = DefaultMaxImageWidth
	}
	return n
}

// Normalize derives display fields for every step in document order. Steps
// are never dropped or reordered; absent or unusable fields become empty
// values and are reported as warnings.
func (n *Normalizer) Normalize(doc Document) ([]NormalizedStep, []FieldNormalizationWarning) {
	out := make([]NormalizedStep, 0, len(doc.Steps))
	var warnings []FieldNormalizationWarning

	for i, s := range doc.Steps {
		for _, is := range s.issues {
			warnings = append(warnings, FieldNormalizationWarning{StepIndex: i, StepNumber: s.StepNumber, Field: is.field, Invalid: is.invalid})
		}

		d := RoundDuration(s.EndTime - s.StartTime)
		ns := NormalizedStep{
			Index:           i,
			StepNumber:      s.StepNumber,
			StartTime:       s.StartTime,
			EndTime:         s.EndTime,
			CurrentState:    s.CurrentState,
			URL:             s.URL,
			Screenshot:      s.Screenshot,
			FormattedStart:  FormatTimestamp(s.StartTime, n.loc),
			FormattedEnd:    FormatTimestamp(s.EndTime, n.loc),
			DurationSeconds: d,
			Duration:        FormatDuration(d),
			HasScreenshot:   s.Screenshot != "",
		}

		ns.Actions = make([]string, 0, len(s.Actions))
		for _, a := range s.Actions {
			ns.Actions = append(ns.Actions, a.Text())
		}
		ns.Results = make([]string, 0, len(s.Results))
		for _, r := range s.Results {
			ns.Results = append(ns.Results, r.ExtractedContent)
		}

		if ns.HasScreenshot {
			ns.ScreenshotMarkup = n.imageMarkup(i, s.StepNumber, s.Screenshot)
		} else {
			ns.ScreenshotMarkup = template.HTML(html.EscapeString(n.placeholder))
		}
		out = append(out, ns)
	}
	return out, warnings
}

func (n *Normalizer) imageMarkup(index, stepNumber int, payload string) template.HTML {
	id := fmt.Sprintf("screenshot-%d", index+1)
	src := payload
	if !strings.HasPrefix(payload, "data:image/") {
		src = "data:" + sniffImageType(payload) + ";base64," + payload
	}
	return template.HTML(fmt.Sprintf(
		`<img id="%s" class="screenshot" src="%s" alt="step %d screenshot" style="max-width: %dpx; border: 1px solid #ddd; margin-top: 10px;" onclick="toggleScreenshot('%s')">`,
		id, html.EscapeString(src), stepNumber, n.maxWidth, id,
	))
}

func sniffImageType(payload string) string {
	switch {
	case strings.HasPrefix(payload, "/9j/"):
		return "image/jpeg"
	case strings.HasPrefix(payload, "R0lGOD"):
		return "image/gif"
	case strings.HasPrefix(payload, "UklGR"):
		return "image/webp"
	default:
		return "image/png"
	}
}

// FormatTimestamp renders epoch seconds as local wall-clock time, dropping
// sub-second precision.
func FormatTimestamp(sec float64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(int64(math.Floor(sec)), 0).In(loc).Format(TimestampLayout)
}

// RoundDuration rounds to two decimals, half away from zero. Float noise
// below a nanosecond is dropped first so 102.345-100.0 rounds to 2.35.
func RoundDuration(d float64) float64 {
	nanos := math.Round(d * 1e9)
	r := math.Round(nanos/1e7) / 100
	if r == 0 {
		return 0
	}
	return r
}

// FormatDuration prints the shortest decimal form, always with a fractional
// digit: 5 -> "5.0", 2.35 -> "2.35".
func FormatDuration(d float64) string {
	if d == 0 {
		return "0.0"
	}
	s := strconv.FormatFloat(d, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
