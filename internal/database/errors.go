package database

import "errors"

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrVersionConflict is returned when a memory state was changed by
	// another writer between read and write.
	ErrVersionConflict = errors.New("memory state was modified concurrently")
)
