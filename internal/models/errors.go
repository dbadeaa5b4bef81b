package models

import (
	"errors"
	"fmt"
)

// Error codes for the client error taxonomy. Coordinators convert raw
// transport failures into one of these at the boundary; callers branch on
// the code, never on the underlying error text.
const (
	CodeAuthRequired   = "AUTH_REQUIRED"
	CodeNotConnected   = "NOT_CONNECTED"
	CodeValidation     = "VALIDATION_ERROR"
	CodeUpload         = "UPLOAD_ERROR"
	CodeNetwork        = "NETWORK_ERROR"
	CodeServerRejected = "SERVER_REJECTED"
)

// AppError represents a classified client error.
type AppError struct {
	Code    string
	Message string
	// Status is the HTTP status for SERVER_REJECTED errors, zero otherwise.
	Status int
	Err    error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors

func NewAuthRequiredError(message string) *AppError {
	return &AppError{Code: CodeAuthRequired, Message: message}
}

func NewNotConnectedError(message string) *AppError {
	return &AppError{Code: CodeNotConnected, Message: message}
}

func NewValidationError(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message}
}

func NewUploadError(err error) *AppError {
	return &AppError{Code: CodeUpload, Message: "media upload failed", Err: err}
}

func NewNetworkError(err error) *AppError {
	return &AppError{Code: CodeNetwork, Message: "network failure", Err: err}
}

// NewServerRejectedError carries the server's error message verbatim so the
// UI layer can surface it unchanged.
func NewServerRejectedError(status int, message string) *AppError {
	return &AppError{Code: CodeServerRejected, Status: status, Message: message}
}

// HasCode reports whether err is an AppError with the given code anywhere
// in its chain.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
