package common

import (
	"errors"
	"fmt"
)

// Error codes carried by AppError.
const (
	CodeExtractionFailed = "EXTRACTION_FAILED"
	CodeUnsupportedFile  = "UNSUPPORTED_FILE"
	CodeConfig           = "CONFIG_ERROR"
	CodeInvalidRecord    = "INVALID_RECORD"
	CodeStorage          = "STORAGE_ERROR"
	CodeValidation       = "VALIDATION_ERROR"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrExtraction   = errors.New("text extraction failed")
	ErrUnsupported  = errors.New("unsupported file type")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")
)

func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ExtractionError reports that no strategy could read path. It matches
// ErrExtraction with errors.Is and keeps cause in the chain.
func ExtractionError(path string, cause error) *AppError {
	if cause == nil {
		cause = ErrExtraction
	} else {
		cause = fmt.Errorf("%w: %w", ErrExtraction, cause)
	}
	return NewAppError(CodeExtractionFailed, fmt.Sprintf("no text could be extracted from %s", path), cause)
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsCode reports whether err carries an AppError with the given code.
func IsCode(err error, code string) bool {
	var ae *AppError
	return errors.As(err, &ae) && ae.Code == code
}
