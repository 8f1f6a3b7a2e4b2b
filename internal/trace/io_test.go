package trace

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFlatLayout(t *testing.T) {
	path := writeFile(t, "trace.json", `{
		"version": 3,
		"steps": [
			{
				"stepNumber": 1,
				"startTime": 100.0,
				"endTime": 102.345,
				"currentState": {"evaluationPreviousGoal": "Unknown", "memory": "start", "nextGoal": "open shop"},
				"actions": [{"go_to_url": {"url": "https://example.com"}}, "click"],
				"results": [{"extractedContent": "navigated", "isDone": false}],
				"url": "about:blank",
				"screenshot": ""
			},
			{
				"stepNumber": 2,
				"startTime": 103,
				"endTime": 104,
				"currentState": {},
				"actions": [],
				"results": [],
				"url": "https://example.com"
			}
		]
	}`)

	doc, err := Load(path)
	require.NoError(t, err)
	require.Len(t, doc.Steps, 2)

	s := doc.Steps[0]
	require.Equal(t, 1, s.StepNumber)
	require.Equal(t, 100.0, s.StartTime)
	require.Equal(t, 102.345, s.EndTime)
	require.Equal(t, "open shop", s.CurrentState.NextGoal)
	require.Len(t, s.Actions, 2)
	require.Equal(t, `{"go_to_url":{"url":"https://example.com"}}`, s.Actions[0].Text())
	require.Equal(t, "click", s.Actions[1].Text())
	require.Equal(t, []Result{{ExtractedContent: "navigated"}}, s.Results)
	require.Empty(t, s.Missing())
	require.Equal(t, 2, doc.Steps[1].StepNumber)
}

func TestLoadNestedHistoryLayout(t *testing.T) {
	path := writeFile(t, "history.json", `{
		"steps": [
			{
				"model_output": {
					"current_state": {"evaluation_previous_goal": "Success", "memory": "cart has 1 item", "next_goal": "checkout"},
					"action": [{"click_element": {"index": 4}}]
				},
				"result": [{"extracted_content": "clicked", "include_in_memory": true}],
				"state": {"url": "https://shop.example/cart", "screenshot": "iVBORw0KGgo="},
				"metadata": {"step_start_time": 1700000000.5, "step_end_time": 1700000003.25, "step_number": 7}
			}
		]
	}`)

	doc, err := Load(path)
	require.NoError(t, err)
	require.Len(t, doc.Steps, 1)

	s := doc.Steps[0]
	require.Equal(t, 7, s.StepNumber)
	require.Equal(t, 1700000000.5, s.StartTime)
	require.Equal(t, "Success", s.CurrentState.EvaluationPreviousGoal)
	require.Equal(t, "cart has 1 item", s.CurrentState.Memory)
	require.Equal(t, "checkout", s.CurrentState.NextGoal)
	require.Equal(t, "https://shop.example/cart", s.URL)
	require.Equal(t, "iVBORw0KGgo=", s.Screenshot)
	require.Equal(t, "clicked", s.Results[0].ExtractedContent)
	require.Empty(t, s.Missing())
}

func TestLoadRecordsMissingFields(t *testing.T) {
	path := writeFile(t, "partial.json", `{"steps": [{"stepNumber": 3, "model_output": null}]}`)

	doc, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"startTime", "endTime", "currentState", "url"}, doc.Steps[0].Missing())
}

func TestLoadWrongTypedFieldsDegrade(t *testing.T) {
	doc, err := LoadFromReader(strings.NewReader(`{"steps": [
		{"stepNumber": 1.0, "startTime": "10", "endTime": 15, "url": "https://example.com",
		 "currentState": {"evaluationPreviousGoal": "ok", "memory": 3, "nextGoal": ["a", "b"]},
		 "actions": [null, {"done": true}], "results": ["ok", {"extractedContent": 7}, null]},
		{"stepNumber": "two", "startTime": true, "endTime": 20, "url": {"href": "x"},
		 "currentState": "thinking", "actions": "click", "results": {"extractedContent": "x"},
		 "screenshot": 42}
	]}`), "inline")
	require.NoError(t, err)
	require.Len(t, doc.Steps, 2)

	s := doc.Steps[0]
	require.Equal(t, 1, s.StepNumber)
	require.Equal(t, 10.0, s.StartTime)
	require.Equal(t, CurrentState{EvaluationPreviousGoal: "ok", Memory: "3", NextGoal: `["a","b"]`}, s.CurrentState)
	require.Equal(t, "null", s.Actions[0].Text())
	require.Equal(t, `{"done":true}`, s.Actions[1].Text())
	require.Equal(t, []Result{{ExtractedContent: "ok"}, {ExtractedContent: "7"}, {ExtractedContent: "null"}}, s.Results)
	require.Empty(t, s.Missing())
	require.Empty(t, s.Invalid())

	bad := doc.Steps[1]
	require.Equal(t, 0, bad.StepNumber)
	require.Equal(t, 0.0, bad.StartTime)
	require.Equal(t, 20.0, bad.EndTime)
	require.Equal(t, `{"href":"x"}`, bad.URL)
	require.Equal(t, CurrentState{}, bad.CurrentState)
	require.Empty(t, bad.Actions)
	require.Empty(t, bad.Results)
	require.Empty(t, bad.Screenshot)
	require.Empty(t, bad.Missing())
	require.Equal(t, []string{"stepNumber", "startTime", "currentState", "actions", "results", "screenshot"}, bad.Invalid())

	_, warnings := NewNormalizer(NormalizerOptions{}).Normalize(doc)
	require.Len(t, warnings, 6)
	require.True(t, warnings[0].Invalid)
	require.Equal(t, `step #0 (index 1): invalid field "stepNumber"`, warnings[0].String())
}

func TestLoadNestedSectionsOfWrongTypeFallBackToMissing(t *testing.T) {
	doc, err := LoadFromReader(strings.NewReader(`{"steps": [
		{"metadata": "none", "model_output": [], "state": 5, "result": [{"extracted_content": "kept"}]}
	]}`), "inline")
	require.NoError(t, err)

	s := doc.Steps[0]
	require.Equal(t, []string{"stepNumber", "startTime", "endTime", "currentState", "url"}, s.Missing())
	require.Equal(t, []Result{{ExtractedContent: "kept"}}, s.Results)
}

func TestLoadStructuralFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		missing bool
	}{
		{name: "missing steps", content: `{"history": []}`, missing: true},
		{name: "null steps", content: `{"steps": null}`, missing: true},
		{name: "invalid json", content: `{"steps": [`},
		{name: "not an object", content: `[1, 2]`},
		{name: "steps wrong type", content: `{"steps": "nope"}`},
		{name: "step not an object", content: `{"steps": [1]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "bad.json", tt.content)
			_, err := Load(path)
			require.Error(t, err)

			var malformed *MalformedTraceError
			require.True(t, errors.As(err, &malformed))
			require.Equal(t, path, malformed.Path)
			require.Equal(t, tt.missing, errors.Is(err, ErrMissingSteps))
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.json")
	_, err := Load(path)

	var malformed *MalformedTraceError
	require.True(t, errors.As(err, &malformed))
	require.True(t, errors.Is(err, os.ErrNotExist))
	require.Contains(t, err.Error(), path)
}

func TestLoadEmptySteps(t *testing.T) {
	doc, err := LoadFromReader(strings.NewReader(`{"steps": []}`), "inline")
	require.NoError(t, err)
	require.Empty(t, doc.Steps)
}

func TestSaveToFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "trace.json")
	in := Document{Steps: []Step{{
		StepNumber:   1,
		StartTime:    10,
		EndTime:      15,
		CurrentState: CurrentState{Memory: "m"},
		Actions:      []Action{TextAction("scroll_down")},
		Results:      []Result{{ExtractedContent: "done"}},
		URL:          "https://example.com",
	}}}
	require.NoError(t, SaveToFile(path, in))

	out, err := Load(path)
	require.NoError(t, err)
	require.Len(t, out.Steps, 1)
	require.Equal(t, "scroll_down", out.Steps[0].Actions[0].Text())
	require.Equal(t, in.Steps[0].CurrentState, out.Steps[0].CurrentState)
	require.Empty(t, out.Steps[0].Missing())
}
