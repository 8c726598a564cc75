package envelope

import (
	"encoding/json"
	"fmt"
	"io"
)

// Validate checks the write-time invariant that every record's TotalItems
// matches its items and that names are present and unique.
func (e *Envelope) Validate() error {
	seen := make(map[string]struct{}, len(e.Containers))
	for _, c := range e.Containers {
		if c.Name == "" {
			return fmt.Errorf("container record without a name")
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("duplicate container %q", c.Name)
		}
		seen[c.Name] = struct{}{}
		if c.TotalItems != len(c.Items) {
			return fmt.Errorf("container %q: total_items %d does not match %d items", c.Name, c.TotalItems, len(c.Items))
		}
	}
	return nil
}

// Encode validates e, refreshes its totals and writes it as JSON.
// With pretty set the output is indented by two spaces.
func Encode(w io.Writer, e *Envelope, pretty bool) error {
	if err := e.Validate(); err != nil {
		return err
	}
	e.Recount()
	for i := range e.Containers {
		if e.Containers[i].Items == nil {
			e.Containers[i].Items = []Document{}
		}
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(e); err != nil {
		return fmt.Errorf("failed to encode envelope: %w", err)
	}
	return nil
}
