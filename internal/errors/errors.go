package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Standard application errors
var (
	ErrEmptyInput       = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON      = errors.New("invalid JSON format")
	ErrMultipleJSON     = errors.New("unexpected data after the JSON value")
	ErrNoJSONStart      = errors.New("no JSON start found")
	ErrFileNotFound     = errors.New("file not found")
	ErrFileEmpty        = errors.New("file is empty")
	ErrNoVersions       = errors.New("no layer versions found in output")
	ErrMissingARN       = errors.New("latest layer item did not include an ARN field")
	ErrInvalidKeep      = errors.New("--keep must be >= 1")
	ErrInvalidARN       = errors.New("invalid layer ARN")
	ErrInvalidAccountID = errors.New("invalid account id; expected digits")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput      ErrorType = "input"
	ErrorTypeDecode     ErrorType = "decode"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeArgument   ErrorType = "argument"
	ErrorTypeCommand    ErrorType = "command"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeOutput     ErrorType = "output"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// Process exit codes.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitArgument = 2
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewInputError creates a new error related to reading the payload
func NewInputError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeInput, Message: message, Err: err}
}

// NewDecodeError creates a new error for output that holds no parseable JSON
func NewDecodeError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeDecode, Message: message, Err: err}
}

// NewNotFoundError creates a new error for missing layer versions or ARNs
func NewNotFoundError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeNotFound, Message: message, Err: err}
}

// NewValidationError creates a new error for data that fails a precondition
func NewValidationError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeValidation, Message: message, Err: err}
}

// NewArgumentError creates a new error for an invalid command-line argument
func NewArgumentError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeArgument, Message: message, Err: err}
}

// NewCommandError creates a new error for a failed external command
func NewCommandError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeCommand, Message: message, Err: err}
}

// NewConfigError creates a new error related to the configuration file
func NewConfigError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeConfig, Message: message, Err: err}
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeOutput, Message: message, Err: err}
}

// TypeOf returns the ErrorType of the outermost AppError in err's chain.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeUnknown
}

// ExitCode maps an error to the process exit code. Argument-level validation
// exits with 2 so callers can tell it apart from data-level failures.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if TypeOf(err) == ErrorTypeArgument {
		return ExitArgument
	}
	return ExitFailure
}

// UserFriendlyError returns a user-friendly error message. Joined errors are
// rendered one per line.
func UserFriendlyError(err error) string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs := joined.Unwrap()
		lines := make([]string, 0, len(errs))
		for _, e := range errs {
			lines = append(lines, UserFriendlyError(e))
		}
		return strings.Join(lines, "\n")
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeDecode:
			return fmt.Sprintf("Failed to parse JSON payload: %s", appErr.Message)
		case ErrorTypeNotFound:
			return appErr.Message
		case ErrorTypeValidation, ErrorTypeArgument:
			return appErr.Message
		case ErrorTypeCommand:
			if appErr.Err != nil {
				return fmt.Sprintf("Command error: %s: %v", appErr.Message, appErr.Err)
			}
			return fmt.Sprintf("Command error: %s", appErr.Message)
		case ErrorTypeConfig:
			return fmt.Sprintf("Config error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide layer versions JSON."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrNoVersions) {
		return ErrNoVersions.Error()
	}

	return fmt.Sprintf("Error: %v", err)
}
