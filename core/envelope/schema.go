package envelope

import (
	"encoding/json"
	"fmt"
)

// UnmarshalJSON accepts paths either as an array or as a single string.
// Files produced by early versions of the tool stored a bare path.
func (s *PartitionKeySchema) UnmarshalJSON(data []byte) error {
	var aux struct {
		Paths   json.RawMessage `json:"paths"`
		Kind    string          `json:"kind"`
		Version int             `json:"version"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	s.Kind = aux.Kind
	s.Version = aux.Version
	s.Paths = nil

	if len(aux.Paths) == 0 || string(aux.Paths) == "null" {
		return nil
	}

	var single string
	if err := json.Unmarshal(aux.Paths, &single); err == nil {
		s.Paths = []string{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(aux.Paths, &many); err != nil {
		return fmt.Errorf("partition key paths: %w", err)
	}
	s.Paths = many
	return nil
}
