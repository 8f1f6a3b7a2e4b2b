package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/your-org/tracereport/internal/trace"
)

// Renderer turns normalized steps into a standalone HTML document.
type Renderer struct {
	tmpl   *template.Template
	labels Labels
	title  string
}

// Options configures a Renderer. Zero values select English labels and the
// label set's title.
type Options struct {
	Labels *Labels
	Title  string
}

type pageData struct {
	L     Labels
	Title string
	Steps []trace.NormalizedStep
}

func NewRenderer(opts Options) (*Renderer, error) {
	funcs := template.FuncMap{
		"position": func(i int) int { return i + 1 },
	}

	tmpl, err := template.New("report").Funcs(funcs).Parse(htmlTemplate)
	if err != nil {
		return nil, fmt.Errorf("report: parse template: %w", err)
	}

	r := &Renderer{tmpl: tmpl, labels: English, title: opts.Title}
	if opts.Labels != nil {
		r.labels = *opts.Labels
	}
	if r.title == "" {
		r.title = r.labels.Title
	}
	return r, nil
}

// Render returns the complete report. Output depends only on steps: no
// render time, no random identifiers.
func (r *Renderer) Render(steps []trace.NormalizedStep) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderTo(&buf, steps); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *Renderer) RenderTo(w io.Writer, steps []trace.NormalizedStep) error {
	data := pageData{L: r.labels, Title: r.title, Steps: steps}
	if err := r.tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("report: execute template: %w", err)
	}
	return nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="{{.L.Lang}}">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        h1 { color: #2c3e50; }
        .entry { border: 1px solid #ddd; margin-bottom: 20px; padding: 15px; border-radius: 5px; }
        .step-header { background-color: #f8f9fa; padding: 10px; margin-bottom: 10px; }
        .state { margin-bottom: 10px; }
        .action { margin-bottom: 10px; padding-left: 15px; border-left: 3px solid #3498db; }
        .result { margin-bottom: 10px; padding-left: 15px; border-left: 3px solid #2ecc71; }
        .metadata { font-size: 0.9em; color: #7f8c8d; }
        .hint { font-size: 0.9em; color: #7f8c8d; }
        table { width: 100%; border-collapse: collapse; margin-top: 20px; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #f2f2f2; }
        td.url { word-break: break-all; }
        .screenshot-container { margin-top: 15px; }
        .screenshot { cursor: zoom-in; }
        .screenshot.expanded { max-width: 100% !important; cursor: zoom-out; }
        .placeholder { color: #7f8c8d; font-style: italic; }
        pre { white-space: pre-wrap; word-break: break-word; margin: 0; font-family: inherit; }
    </style>
    <script>
        function toggleScreenshot(imgId) {
            var img = document.getElementById(imgId);
            if (img) {
                img.classList.toggle('expanded');
            }
        }
    </script>
</head>
<body>
    <h1>{{.Title}}</h1>
    <p>{{.L.Intro}}</p>

    <table class="summary">
        <tr>
            <th>{{.L.StepColumn}}</th>
            <th>{{.L.URLColumn}}</th>
            <th>{{.L.StartColumn}}</th>
            <th>{{.L.EndColumn}}</th>
            <th>{{.L.DurationColumn}}</th>
        </tr>
{{- range .Steps}}
        <tr class="step-row">
            <td><a href="#step-{{position .Index}}">{{.StepNumber}}</a></td>
            <td class="url">{{.URL}}</td>
            <td>{{.FormattedStart}}</td>
            <td>{{.FormattedEnd}}</td>
            <td>{{.Duration}}</td>
        </tr>
{{- end}}
    </table>
{{- if not .Steps}}
    <p class="placeholder">{{.L.EmptyTrace}}</p>
{{- end}}

    <h2>{{.L.DetailHeading}}</h2>
    <p class="hint">{{.L.ExpandHint}}</p>
{{- $l := .L}}
{{- range .Steps}}
    <div class="entry" id="step-{{position .Index}}">
        <div class="step-header">
            <h3>{{$l.StepPrefix}} {{.StepNumber}} - {{.URL}}</h3>
            <div class="metadata">
                {{$l.Start}}: {{.FormattedStart}} | {{$l.End}}: {{.FormattedEnd}} | {{$l.Duration}}: {{.Duration}}s
            </div>
        </div>

        <div class="state">
            <h4>{{$l.StateHeading}}</h4>
            <ul>
                <li>{{$l.PreviousGoal}}: {{.CurrentState.EvaluationPreviousGoal}}</li>
                <li>{{$l.Memory}}: {{.CurrentState.Memory}}</li>
                <li>{{$l.NextGoal}}: {{.CurrentState.NextGoal}}</li>
            </ul>
        </div>

        <div class="action">
            <h4>{{$l.ActionsHeading}}</h4>
            <ul>
{{- range .Actions}}
                <li><pre>{{.}}</pre></li>
{{- end}}
            </ul>
        </div>

        <div class="result">
            <h4>{{$l.ResultsHeading}}</h4>
            <ul>
{{- range .Results}}
                <li><pre>{{.}}</pre></li>
{{- end}}
            </ul>
        </div>

        <div class="screenshot-container">
            <h4>{{$l.Screenshot}}</h4>
{{- if .HasScreenshot}}
            {{.ScreenshotMarkup}}
{{- else}}
            <p class="placeholder">{{.ScreenshotMarkup}}</p>
{{- end}}
        </div>
    </div>
{{- end}}
</body>
</html>
`
