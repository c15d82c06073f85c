package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeValidation   ErrorCode = "VALIDATION_ERROR"
	CodeMissingField ErrorCode = "MISSING_FIELD"
	CodeOutOfRange   ErrorCode = "OUT_OF_RANGE"

	// Analysis collaborator errors
	CodeConnectivity      ErrorCode = "CONNECTIVITY"
	CodeConfiguration     ErrorCode = "CONFIGURATION"
	CodeAnalysisTimeout   ErrorCode = "ANALYSIS_TIMEOUT"
	CodeServiceOverloaded ErrorCode = "SERVICE_OVERLOADED"
	CodeAuthInvalid       ErrorCode = "AUTH_INVALID"
	CodeModelUnavailable  ErrorCode = "MODEL_UNAVAILABLE"
	CodeMalformedResponse ErrorCode = "MALFORMED_RESPONSE"

	// Session and backup errors
	CodeSessionBusy   ErrorCode = "SESSION_BUSY"
	CodeBackupInvalid ErrorCode = "BACKUP_INVALID"
)

// DomainError represents a domain-specific error carrying both a machine
// cause and a user-facing message.
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Helper constructors for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

func NewResultNotFoundError(resultID string) *DomainError {
	return NewError(CodeNotFound, fmt.Sprintf("Analysis result not found: %s", resultID), nil)
}

func NewConnectivityError(cause error) *DomainError {
	return NewError(CodeConnectivity, "No network connection available. Check your connection and try again.", cause)
}

func NewConfigurationError(message string) *DomainError {
	return NewError(CodeConfiguration, message, nil)
}

func NewAnalysisTimeoutError(cause error) *DomainError {
	return NewError(CodeAnalysisTimeout, "The analysis took too long. Try a shorter recording.", cause)
}

func NewServiceOverloadedError(cause error) *DomainError {
	return NewError(CodeServiceOverloaded, "The analysis service is overloaded. Try again in a few minutes.", cause)
}

func NewAuthInvalidError(cause error) *DomainError {
	return NewError(CodeAuthInvalid, "The analysis service rejected the configured credentials.", cause)
}

func NewModelUnavailableError(cause error) *DomainError {
	return NewError(CodeModelUnavailable, "The analysis model is currently unavailable.", cause)
}

func NewMalformedResponseError(cause error) *DomainError {
	return NewError(CodeMalformedResponse, "Received an unreadable response from the analysis service.", cause)
}

func NewSessionBusyError() *DomainError {
	return NewError(CodeSessionBusy, "Another analysis is already in progress.", nil)
}

// ValidationError represents a single field validation failure
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates field validation failures for one request
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", e[0].Error())
}

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{Field: field, Message: "is required"}
}

func NewInvalidFormatError(field, value string) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf("has invalid format: %q", value)}
}

func NewOutOfRangeError(field string, value, min, max int) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf("value %d must be between %d and %d", value, min, max)}
}
