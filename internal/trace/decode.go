package trace

import (
	"bytes"
	"encoding/json"
	"math"
)

// Steps are decoded field by field from raw JSON so that one badly typed
// value degrades to an empty display value instead of failing the document.
// Both the flat step layout and the nested history layout emitted by browser
// agents (metadata/model_output/result/state) are accepted; flat keys win.

type fieldIssue struct {
	field   string
	invalid bool
}

type object map[string]json.RawMessage

// asObject returns nil when raw is absent or not a JSON object.
func asObject(raw json.RawMessage) object {
	if isNull(raw) {
		return nil
	}
	var o object
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil
	}
	return o
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// pick returns the first present, non-null value.
func pick(vals ...json.RawMessage) json.RawMessage {
	for _, v := range vals {
		if !isNull(v) {
			return v
		}
	}
	return nil
}

func (s *Step) UnmarshalJSON(b []byte) error {
	var top object
	if err := json.Unmarshal(b, &top); err != nil {
		return err
	}
	metadata := asObject(top["metadata"])
	modelOutput := asObject(top["model_output"])
	state := asObject(top["state"])

	out := Step{}
	note := func(field string, raw json.RawMessage, ok bool) {
		switch {
		case raw == nil:
			out.issues = append(out.issues, fieldIssue{field: field})
		case !ok:
			out.issues = append(out.issues, fieldIssue{field: field, invalid: true})
		}
	}

	raw := pick(top["stepNumber"], metadata["step_number"])
	n, ok := toInt(raw)
	out.StepNumber = n
	note("stepNumber", raw, ok)

	raw = pick(top["startTime"], metadata["step_start_time"])
	out.StartTime, ok = toFloat(raw)
	note("startTime", raw, ok)

	raw = pick(top["endTime"], metadata["step_end_time"])
	out.EndTime, ok = toFloat(raw)
	note("endTime", raw, ok)

	raw = pick(top["currentState"], modelOutput["current_state"])
	out.CurrentState, ok = toState(raw)
	note("currentState", raw, ok)

	if raw = pick(top["actions"], modelOutput["action"]); raw != nil {
		out.Actions, ok = toActions(raw)
		note("actions", raw, ok)
	}
	if raw = pick(top["results"], top["result"]); raw != nil {
		out.Results, ok = toResults(raw)
		note("results", raw, ok)
	}

	raw = pick(top["url"], state["url"])
	out.URL = toText(raw)
	note("url", raw, true)

	// An absent screenshot is normal; a non-string one is not an image.
	if raw = pick(top["screenshot"], state["screenshot"]); raw != nil {
		if err := json.Unmarshal(raw, &out.Screenshot); err != nil {
			out.Screenshot = ""
			note("screenshot", raw, false)
		}
	}

	*s = out
	return nil
}

func toInt(raw json.RawMessage) (int, bool) {
	if raw == nil {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		return int(i), true
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func toFloat(raw json.RawMessage) (float64, bool) {
	if raw == nil {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	f, err := n.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}

// toText renders strings verbatim and any other value as compact JSON.
func toText(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	return Action(raw).Text()
}

func toState(raw json.RawMessage) (CurrentState, bool) {
	if raw == nil {
		return CurrentState{}, false
	}
	o := asObject(raw)
	if o == nil {
		return CurrentState{}, false
	}
	return CurrentState{
		EvaluationPreviousGoal: toText(pick(o["evaluationPreviousGoal"], o["evaluation_previous_goal"])),
		Memory:                 toText(o["memory"]),
		NextGoal:               toText(pick(o["nextGoal"], o["next_goal"])),
	}, true
}

func toActions(raw json.RawMessage) ([]Action, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	out := make([]Action, 0, len(items))
	for _, it := range items {
		out = append(out, Action(append([]byte(nil), it...)))
	}
	return out, true
}

// toResults reads extracted content from result objects; any other entry is
// shown as its own text.
func toResults(raw json.RawMessage) ([]Result, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	out := make([]Result, 0, len(items))
	for _, it := range items {
		if o := asObject(it); o != nil {
			out = append(out, Result{ExtractedContent: toText(pick(o["extractedContent"], o["extracted_content"]))})
			continue
		}
		out = append(out, Result{ExtractedContent: toText(it)})
	}
	return out, true
}
