package types

import (
	"encoding/json"
	"net/http"
)

// APIError represents an OpenAI-compatible error response.
type APIError struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	// Details carries the upstream body (or status text) for relayed failures.
	Details string  `json:"details,omitempty"`
	Param   *string `json:"param,omitempty"`
	Code    *string `json:"code,omitempty"`
}

// Error type constants
const (
	ErrorTypeInvalidRequest = "invalid_request_error"
	ErrorTypeServer         = "server_error"
	ErrorTypeUpstream       = "upstream_error"
	ErrorTypeTimeout        = "timeout_error"
	ErrorTypeStream         = "stream_error"
)

// NewAPIError creates a new API error.
func NewAPIError(message, errType string) *APIError {
	return &APIError{
		Error: ErrorDetail{
			Message: message,
			Type:    errType,
		},
	}
}

// NewAPIErrorWithParam creates a new API error with a parameter reference.
func NewAPIErrorWithParam(message, errType, param string) *APIError {
	return &APIError{
		Error: ErrorDetail{
			Message: message,
			Type:    errType,
			Param:   &param,
		},
	}
}

// WithDetails returns the error with Details set.
func (e *APIError) WithDetails(details string) *APIError {
	e.Error.Details = details
	return e
}

// WriteError writes an API error to the response writer.
func WriteError(w http.ResponseWriter, statusCode int, err *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(err)
}

// Common error constructors

// ErrInvalidRequest creates an invalid request error.
func ErrInvalidRequest(message string) *APIError {
	return NewAPIError(message, ErrorTypeInvalidRequest)
}

// ErrServer creates a server error.
func ErrServer(message string) *APIError {
	return NewAPIError(message, ErrorTypeServer)
}

// ErrUpstream creates an error describing a failed upstream exchange.
func ErrUpstream(message string) *APIError {
	return NewAPIError(message, ErrorTypeUpstream)
}

// ErrTimeout creates an upstream timeout error.
func ErrTimeout(message string) *APIError {
	return NewAPIError(message, ErrorTypeTimeout)
}
