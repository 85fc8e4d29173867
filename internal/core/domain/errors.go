// internal/core/domain/errors.go
package domain

import "errors"

var (
	// ErrParse is returned when non-blank entry text is not a valid number
	ErrParse = errors.New("parse error")

	// ErrInvalidItem is returned when an item would break a field invariant
	ErrInvalidItem = errors.New("invalid item")

	// ErrStorage wraps failures of the underlying persistence layer
	ErrStorage = errors.New("storage error")

	// ErrSchemaIncompatible marks persisted data the current schema cannot read.
	// It is handled by the migrator and only surfaces when destructive
	// recreation is disabled.
	ErrSchemaIncompatible = errors.New("schema incompatible")
)
