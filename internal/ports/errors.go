package ports

import "errors"

// ErrNotFound is returned by repositories when no row matches the lookup.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write violates a uniqueness constraint.
var ErrConflict = errors.New("conflict")
