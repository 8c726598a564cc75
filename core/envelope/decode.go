package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Shape identifies which file layout an envelope was read from.
type Shape string

const (
	// ShapeContainers is the current multi-container layout.
	ShapeContainers Shape = "containers"
	// ShapeLegacy is the single-container {container, items} layout.
	ShapeLegacy Shape = "legacy"
)

type rawRecord struct {
	Name         string              `json:"name"`
	PartitionKey *PartitionKeySchema `json:"partition_key"`
	Items        []Document          `json:"items"`
}

type rawLegacy struct {
	Container    string              `json:"container"`
	PartitionKey *PartitionKeySchema `json:"partition_key"`
	Items        []Document          `json:"items"`
}

// Decode reads a whole envelope from r. See Parse.
func Decode(r io.Reader) (*Envelope, Shape, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read envelope: %w", err)
	}
	return Parse(data)
}

// Parse decodes an envelope in either the current or the legacy layout.
// Legacy input is converted to a one-element Containers sequence. Record
// totals are recomputed from the items actually present. Unknown fields are
// ignored at every level.
func Parse(data []byte) (*Envelope, Shape, error) {
	var top map[string]json.RawMessage
	if err := decodeJSON(data, &top); err != nil {
		return nil, "", &StructuralError{Reason: "malformed JSON", Err: err}
	}
	if top == nil {
		return nil, "", &StructuralError{Reason: "expected a JSON object"}
	}

	if raw, ok := top["containers"]; ok && isArray(raw) {
		env, err := parseContainers(top, raw)
		if err != nil {
			return nil, "", err
		}
		return env, ShapeContainers, nil
	}

	_, hasContainer := top["container"]
	_, hasItems := top["items"]
	if hasContainer && hasItems {
		env, err := parseLegacy(data)
		if err != nil {
			return nil, "", err
		}
		return env, ShapeLegacy, nil
	}

	return nil, "", &StructuralError{Reason: "expected a 'containers' array or legacy 'container' and 'items' fields"}
}

func parseContainers(top map[string]json.RawMessage, raw json.RawMessage) (*Envelope, error) {
	var records []rawRecord
	if err := decodeJSON(raw, &records); err != nil {
		return nil, &StructuralError{Reason: "malformed containers", Err: err}
	}

	env := New(stringField(top["database"]), stringField(top["exported_at"]))
	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		if r.Name == "" {
			return nil, &StructuralError{Reason: fmt.Sprintf("container at index %d has no name", i)}
		}
		if _, dup := seen[r.Name]; dup {
			return nil, &StructuralError{Reason: fmt.Sprintf("duplicate container %q", r.Name)}
		}
		seen[r.Name] = struct{}{}
		env.Containers = append(env.Containers, NewRecord(r.Name, r.PartitionKey, r.Items))
	}
	env.Recount()
	return env, nil
}

func parseLegacy(data []byte) (*Envelope, error) {
	var legacy rawLegacy
	if err := decodeJSON(data, &legacy); err != nil {
		return nil, &StructuralError{Reason: "malformed legacy envelope", Err: err}
	}
	if legacy.Container == "" {
		return nil, &StructuralError{Reason: "legacy envelope has an empty container name"}
	}

	env := New("", "")
	env.Add(NewRecord(legacy.Container, legacy.PartitionKey, legacy.Items))
	return env, nil
}

func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after top-level value")
	}
	return nil
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// stringField returns a JSON string's value, or the raw text for any other
// JSON value. Informational fields are never rejected.
func stringField(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}
