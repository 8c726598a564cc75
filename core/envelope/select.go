package envelope

import (
	"errors"
	"strings"
)

// ErrEmptyFilter is returned when a container filter is given but names nothing.
var ErrEmptyFilter = errors.New("container filter names no containers; omit --containers to upload every container")

// SplitNames parses a comma-separated container list. Blank entries are
// dropped and duplicates keep their first position.
func SplitNames(list string) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(list, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// Select returns the records to replay. An empty filter selects every record;
// a filter made only of blanks and commas is an error. Otherwise every
// requested name must exist; the returned error names all missing containers
// at once. Envelope order is preserved.
func Select(e *Envelope, filter string) ([]ContainerRecord, error) {
	if filter == "" {
		return e.Containers, nil
	}
	requested := SplitNames(filter)
	if len(requested) == 0 {
		return nil, ErrEmptyFilter
	}

	available := make(map[string]struct{}, len(e.Containers))
	for _, c := range e.Containers {
		available[c.Name] = struct{}{}
	}

	var missing []string
	want := make(map[string]struct{}, len(requested))
	for _, name := range requested {
		if _, ok := available[name]; !ok {
			missing = append(missing, name)
		}
		want[name] = struct{}{}
	}
	if len(missing) > 0 {
		return nil, &MissingContainersError{Missing: missing, Available: e.Names()}
	}

	selected := make([]ContainerRecord, 0, len(requested))
	for _, c := range e.Containers {
		if _, ok := want[c.Name]; ok {
			selected = append(selected, c)
		}
	}
	return selected, nil
}
