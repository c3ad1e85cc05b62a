package store

import "errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateLogin is returned when the unique login index rejects a write.
	ErrDuplicateLogin = errors.New("login already exists")
)
