package libredadb

import "errors"

// Sentinel errors returned by Chip accessors and mutators. All lookups
// are fallible: an unknown or stale ID yields ErrNotFound wrapped with
// context instead of a panic.
var (
	// ErrNotFound is returned when an ID does not refer to a live object.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateName is returned when a name is already taken within
	// its namespace (cells in a chip, instances or nets in a cell).
	ErrDuplicateName = errors.New("duplicate name")

	// ErrRecursiveInstance is returned when creating a cell instance
	// would make a cell (transitively) contain itself.
	ErrRecursiveInstance = errors.New("recursive instance")

	// ErrEmptyName is returned when an operation requires a non-empty name.
	ErrEmptyName = errors.New("empty name")
)
