package envelope

import (
	"fmt"
	"strings"
)

// StructuralError reports an envelope that is malformed or has an unrecognised
// shape. It is always fatal.
type StructuralError struct {
	Reason string
	Err    error
}

func (e *StructuralError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid envelope: %s: %v", e.Reason, e.Err)
	}
	return "invalid envelope: " + e.Reason
}

func (e *StructuralError) Unwrap() error {
	return e.Err
}

// MissingContainersError lists requested container names that the envelope
// does not contain.
type MissingContainersError struct {
	Missing   []string
	Available []string
}

func (e *MissingContainersError) Error() string {
	return fmt.Sprintf("containers not found in envelope: %s", strings.Join(e.Missing, ", "))
}
