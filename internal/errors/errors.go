package errors

import (
	stderrors "errors"
	"fmt"

	"vizkit/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// GetCode returns the code of the outermost AppError in the chain, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether err carries the given code
func HasCode(err error, code string) bool {
	return err != nil && GetCode(err) == code
}

// Predefined error codes
const (
	CodeConfigInvalid  = "CONFIG_INVALID"
	CodeInternalError  = "INTERNAL_ERROR"
	CodeInvalidInput   = "INVALID_INPUT"
	CodeUnknownType    = "UNKNOWN_TYPE"
	CodeMissingSurface = "MISSING_SURFACE"
	CodeListenerError  = "LISTENER_ERROR"
	CodeChartDestroyed = "CHART_DESTROYED"
	CodeIOError        = "IO_ERROR"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidInput,
		Message: message,
		Cause:   core.ErrInvalidInput,
	}
}

func InvalidInputf(format string, args ...interface{}) *AppError {
	return InvalidInput(fmt.Sprintf(format, args...))
}

// NotADataset is returned when an operation receives something other than a record sequence
func NotADataset(op string) *AppError {
	return &AppError{
		Code:    CodeInvalidInput,
		Message: fmt.Sprintf("%s requires a dataset", op),
		Cause:   core.ErrNotADataset,
	}
}

func UnknownType(typeName string) *AppError {
	return &AppError{
		Code:    CodeUnknownType,
		Message: "create chart",
		Cause:   core.NewUnknownTypeError(typeName),
	}
}

func MissingSurface(chartID core.ChartID) *AppError {
	return &AppError{
		Code:    CodeMissingSurface,
		Message: fmt.Sprintf("chart %s has no drawing surface", chartID),
		Cause:   core.ErrMissingSurface,
	}
}

func ChartDestroyed(chartID core.ChartID) *AppError {
	return &AppError{
		Code:    CodeChartDestroyed,
		Message: fmt.Sprintf("chart %s was destroyed", chartID),
		Cause:   core.ErrChartDestroyed,
	}
}

// ListenerError wraps a failure raised by an event subscriber
func ListenerError(event string, cause error) *AppError {
	return &AppError{
		Code:    CodeListenerError,
		Message: fmt.Sprintf("listener for %q failed", event),
		Cause:   fmt.Errorf("%w: %v", core.ErrListener, cause),
	}
}

func IOError(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeIOError,
		Message: message,
		Cause:   cause,
	}
}
