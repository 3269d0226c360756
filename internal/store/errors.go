package store

import "errors"

var (
	// ErrNotFound means a referenced student code or user id has no row.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a unique constraint rejected the write.
	ErrConflict = errors.New("already exists")
)
