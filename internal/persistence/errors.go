package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a write would break a uniqueness constraint.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrForeignKey is returned when a link row references a missing endpoint.
	ErrForeignKey = errors.New("persistence: foreign key violation")
)
