package database

import "errors"

var (
	// ErrDatabaseNotFound is returned by Open when the index does not exist
	// and CreateIfNotExists is false.
	ErrDatabaseNotFound = errors.New("corpus index not found")

	// ErrEmptySourceName is returned by Import when no source name is given.
	ErrEmptySourceName = errors.New("source name must not be empty")
)
