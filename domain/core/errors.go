package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrInvalidInput = errors.New("invalid input")
	ErrNotADataset  = fmt.Errorf("%w: not a dataset", ErrInvalidInput)
	ErrMissingField = fmt.Errorf("%w: missing field mapping", ErrInvalidInput)

	// Chart errors
	ErrUnknownType    = errors.New("unknown chart type")
	ErrMissingSurface = errors.New("no drawing surface bound")
	ErrChartDestroyed = errors.New("chart destroyed")

	// Event errors
	ErrListener      = errors.New("listener failed")
	ErrEmitRecursion = errors.New("emit recursion limit reached")
)

// NewInvalidInputError describes malformed input for a named operation
func NewInvalidInputError(op string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidInput, op, reason)
}

// NewUnknownTypeError names the chart type that was not registered
func NewUnknownTypeError(typeName string) error {
	return fmt.Errorf("%w: %q", ErrUnknownType, typeName)
}

// Error checking helpers
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func IsUnknownType(err error) bool {
	return errors.Is(err, ErrUnknownType)
}

func IsLifecycleError(err error) bool {
	return errors.Is(err, ErrMissingSurface) ||
		errors.Is(err, ErrChartDestroyed)
}
