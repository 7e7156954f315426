package reports

import "errors"

var (
	// ErrValidation marks missing or invalid caller input (empty SKU,
	// unknown status filter, out-of-range confidence). Maps to 400.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a reference to a report that does not exist. Maps to 404.
	ErrNotFound = errors.New("report not found")

	// ErrInvalidStatus marks a review transition out of a terminal state. Maps to 409.
	ErrInvalidStatus = errors.New("invalid status transition")
)
