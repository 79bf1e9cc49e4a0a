package domain

import "errors"

var (
	// ErrNotFound reports a required persisted artifact that does not
	// exist yet, e.g. querying before any documents were added.
	ErrNotFound = errors.New("not found")

	// ErrDimensionMismatch reports inconsistent embedding dimensions,
	// either across a batch or between build and query time.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrInvalidConfig reports an invalid option combination, e.g.
	// chunk overlap >= chunk size.
	ErrInvalidConfig = errors.New("invalid configuration")
)
