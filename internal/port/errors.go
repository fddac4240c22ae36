package port

import "errors"

// Sentinel errors used across ports.
var (
	ErrBlueprintNotFound = errors.New("blueprint not found")
	ErrInvalidSection    = errors.New("invalid blueprint section")
	ErrFieldPathNotFound = errors.New("field path not found")
	ErrEmptyMessage      = errors.New("message is empty")
	ErrInvalidEdit       = errors.New("edit does not fit the section schema")
)
