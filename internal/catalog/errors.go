package catalog

import "errors"

var (
	// ErrNotFound is returned when the referenced record does not exist.
	ErrNotFound = errors.New("catalog: not found")

	// ErrForeignKey is returned when a write references a missing parent
	// record, e.g. a book pointing at a nonexistent author.
	ErrForeignKey = errors.New("catalog: foreign key violation")
)
