package report

import "strings"

// Labels holds every fixed string printed in the report.
type Labels struct {
	Lang           string
	Title          string
	Intro          string
	StepColumn     string
	URLColumn      string
	StartColumn    string
	EndColumn      string
	DurationColumn string
	DetailHeading  string
	StepPrefix     string
	Start          string
	End            string
	Duration       string
	StateHeading   string
	PreviousGoal   string
	Memory         string
	NextGoal       string
	ActionsHeading string
	ResultsHeading string
	Screenshot     string
	NoScreenshot   string
	EmptyTrace     string
	ExpandHint     string
}

var English = Labels{
	Lang:           "en",
	Title:          "Automated Browsing Report",
	Intro:          "Summary of the actions performed during the browsing session.",
	StepColumn:     "Step",
	URLColumn:      "URL",
	StartColumn:    "Start",
	EndColumn:      "End",
	DurationColumn: "Duration (s)",
	DetailHeading:  "Step Details",
	StepPrefix:     "Step",
	Start:          "Start",
	End:            "End",
	Duration:       "Duration",
	StateHeading:   "Current State:",
	PreviousGoal:   "Evaluation of previous goal",
	Memory:         "Memory",
	NextGoal:       "Next goal",
	ActionsHeading: "Actions:",
	ResultsHeading: "Results:",
	Screenshot:     "Screenshot:",
	NoScreenshot:   "no screenshot available",
	EmptyTrace:     "The trace contains no steps.",
	ExpandHint:     "Click a screenshot to toggle full width.",
}

var Spanish = Labels{
	Lang:           "es",
	Title:          "Reporte de Navegación Automatizada",
	Intro:          "Resumen de las acciones realizadas durante la sesión de navegación.",
	StepColumn:     "Paso",
	URLColumn:      "URL",
	StartColumn:    "Inicio",
	EndColumn:      "Fin",
	DurationColumn: "Duración (s)",
	DetailHeading:  "Detalle por Paso",
	StepPrefix:     "Paso",
	Start:          "Inicio",
	End:            "Fin",
	Duration:       "Duración",
	StateHeading:   "Estado Actual:",
	PreviousGoal:   "Evaluación objetivo anterior",
	Memory:         "Memoria",
	NextGoal:       "Siguiente objetivo",
	ActionsHeading: "Acciones:",
	ResultsHeading: "Resultados:",
	Screenshot:     "Captura de pantalla:",
	NoScreenshot:   "No hay captura de pantalla",
	EmptyTrace:     "La traza no contiene pasos.",
	ExpandHint:     "Haga clic en una captura para alternar el ancho completo.",
}

// SupportedLanguages lists the language codes LabelsFor knows.
var SupportedLanguages = []string{"en", "es"}

// LabelsFor returns the label set for a language code, English when unknown.
func LabelsFor(lang string) Labels {
	l := strings.ToLower(strings.TrimSpace(lang))
	if l == "es" || l == "spanish" || strings.HasPrefix(l, "es-") {
		return Spanish
	}
	return English
}

// IsSupportedLanguage reports whether lang selects a non-default label set
// or English explicitly.
func IsSupportedLanguage(lang string) bool {
	l := strings.ToLower(strings.TrimSpace(lang))
	if l == "" {
		return true
	}
	for _, s := range SupportedLanguages {
		if l == s || strings.HasPrefix(l, s+"-") {
			return true
		}
	}
	return l == "english" || l == "spanish"
}
