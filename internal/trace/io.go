package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

func SaveToFile(path string, doc Document) error {
	if doc.Steps == nil {
		doc.Steps = []Step{}
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("trace: marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("trace: mkdir %q: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("trace: write %q: %w", path, err)
	}
	return nil
}

// Load reads a whole trace document from path. Every failure is a
// *MalformedTraceError.
func Load(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, &MalformedTraceError{Path: path, Err: err}
	}
	defer f.Close()

	return LoadFromReader(f, path)
}

// LoadFromReader decodes a trace document; name identifies the source in
// errors.
func LoadFromReader(r io.Reader, name string) (Document, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Document{}, &MalformedTraceError{Path: name, Err: fmt.Errorf("read: %w", err)}
	}

	var raw struct {
		Steps *[]Step `json:"steps"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return Document{}, &MalformedTraceError{Path: name, Err: fmt.Errorf("unmarshal: %w", err)}
	}
	if raw.Steps == nil {
		return Document{}, &MalformedTraceError{Path: name, Err: ErrMissingSteps}
	}
	return Document{Steps: *raw.Steps}, nil
}
