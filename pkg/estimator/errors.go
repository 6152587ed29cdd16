package estimator

import "errors"

// Sentinel errors classifying estimation failures. Wrapped errors carry the
// detail; use errors.Is or the helpers below to classify.
var (
	// ErrValidation marks a pub or option rejected before any execution.
	ErrValidation = errors.New("validation failed")

	// ErrNameConflict marks a measurement register name colliding with a
	// register of the caller's circuit.
	ErrNameConflict = errors.New("measurement register name conflict")

	// ErrComputation marks an estimation that cannot be carried out, such
	// as a histogram with zero total shots.
	ErrComputation = errors.New("computation failed")
)

// IsValidationError returns true if the error is a validation failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNameConflictError returns true if the error is a measurement register
// name conflict.
func IsNameConflictError(err error) bool {
	return errors.Is(err, ErrNameConflict)
}

// IsComputationError returns true if the error is a computation failure.
func IsComputationError(err error) bool {
	return errors.Is(err, ErrComputation)
}
