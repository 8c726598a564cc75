package docstore

import "errors"

var (
	// ErrNotFound marks a missing database, container or item.
	ErrNotFound = errors.New("resource not found")
	// ErrConflict marks a create of something that already exists.
	ErrConflict = errors.New("resource already exists")
)

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err is or wraps ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
