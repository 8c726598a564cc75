package dump

import (
	"errors"
	"fmt"
	"strings"

	"cosmos-isolation/core/envelope"
)

// SelectAll selects every container in the database.
const SelectAll = "all"

// ErrNoSelection is returned when no containers were requested.
var ErrNoSelection = errors.New("no containers specified; use --containers all or --containers 'a,b,c'")

// Selection names the containers to export.
type Selection struct {
	All   bool
	Names []string
}

// ParseSelection reads "all" (any case) or a comma-separated list.
func ParseSelection(raw string) (Selection, error) {
	if strings.EqualFold(strings.TrimSpace(raw), SelectAll) {
		return Selection{All: true}, nil
	}
	names := envelope.SplitNames(raw)
	if len(names) == 0 {
		return Selection{}, ErrNoSelection
	}
	return Selection{Names: names}, nil
}

func (s Selection) String() string {
	if s.All {
		return SelectAll
	}
	return strings.Join(s.Names, ",")
}

// MissingContainersError lists explicitly requested containers the database
// does not have.
type MissingContainersError struct {
	Missing   []string
	Available []string
}

func (e *MissingContainersError) Error() string {
	return fmt.Sprintf("containers not found: %s", strings.Join(e.Missing, ", "))
}

// resolve turns the selection into the ordered list of containers to export.
func (s Selection) resolve(available []string) ([]string, error) {
	if s.All {
		return available, nil
	}
	set := make(map[string]struct{}, len(available))
	for _, n := range available {
		set[n] = struct{}{}
	}
	var missing []string
	for _, n := range s.Names {
		if _, ok := set[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingContainersError{Missing: missing, Available: available}
	}
	return s.Names, nil
}
