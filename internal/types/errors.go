package types

import "errors"

// Sentinel errors for Sieve operations.
var (
	// ErrUnknownFieldType indicates a field type name outside the enum.
	ErrUnknownFieldType = errors.New("unknown field type")

	// ErrUnknownLogic indicates a group connective other than AND/OR.
	ErrUnknownLogic = errors.New("unknown group logic")

	// ErrEmptyFilterInput indicates the mini parser received no usable input.
	ErrEmptyFilterInput = errors.New("filter input is empty")

	// ErrInvalidDefinition indicates a persisted filter definition that
	// does not decode to a condition/group tree.
	ErrInvalidDefinition = errors.New("invalid filter definition")

	// ErrFilterNotFound indicates a saved filter lookup missed.
	ErrFilterNotFound = errors.New("filter not found")

	// ErrEmptyFilterName indicates a saved filter without a name.
	ErrEmptyFilterName = errors.New("filter name is required")
)
