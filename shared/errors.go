package shared

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrorKind classifies where an NDB2 call failed
type ErrorKind string

const (
	// ErrorKindTransport means no response was received
	ErrorKindTransport ErrorKind = "transport"
	// ErrorKindHTTP means a non-2xx response with a well-formed envelope
	ErrorKindHTTP ErrorKind = "http"
	// ErrorKindMalformed means a response whose envelope failed validation
	ErrorKindMalformed ErrorKind = "malformed"
	// ErrorKindUnexpected covers everything else during request construction or processing
	ErrorKindUnexpected ErrorKind = "unexpected"
)

// User-facing messages per error kind
const (
	UserMessageTransport     = "We didn't receive a response from the NDB2 server."
	UserMessageMalformed     = "We received a response from NDB2 but it doesn't look right."
	UserMessageUnexpected    = "We received some kind of unknown error."
	UserMessageNoServerError = "No error message indicated."
)

// APIError is the normalized failure of an NDB2 call. UserMessage is safe to show
// in Discord; Diagnostic is meant for operators.
type APIError struct {
	Kind        ErrorKind `json:"kind"`
	UserMessage string    `json:"user_message"`
	Diagnostic  string    `json:"diagnostic"`
	StatusCode  int       `json:"status_code,omitempty"`
	ErrorCode   string    `json:"error_code,omitempty"`
	Operation   string    `json:"operation"`
	Timestamp   time.Time `json:"timestamp"`
	Cause       error     `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("[ndb2:%s] %s", e.Kind, e.Diagnostic)
}

// Unwrap returns the underlying error
func (e *APIError) Unwrap() error {
	return e.Cause
}

func newAPIError(kind ErrorKind, userMessage, diagnostic string, cause error) *APIError {
	return &APIError{
		Kind:        kind,
		UserMessage: userMessage,
		Diagnostic:  diagnostic,
		Timestamp:   time.Now(),
		Cause:       cause,
	}
}

// NewTransportError builds the error for a request that got no response
func NewTransportError(cause error) *APIError {
	diagnostic := "HTTP client reports no response."
	if cause != nil {
		diagnostic = fmt.Sprintf("HTTP client reports no response: %v", cause)
	}
	return newAPIError(ErrorKindTransport, UserMessageTransport, diagnostic, cause)
}

// NewHTTPError builds the error for a non-2xx response carrying a valid envelope.
// A nil message falls back to a generic notice.
func NewHTTPError(statusCode int, errorCode string, message *string) *APIError {
	msg := UserMessageNoServerError
	if message != nil && *message != "" {
		msg = *message
	}
	diagnostic := fmt.Sprintf("HTTP Status: %d. %s", statusCode, msg)
	if errorCode != "" {
		diagnostic = fmt.Sprintf("HTTP Status: %d. Error response: %s. %s", statusCode, errorCode, msg)
	}
	err := newAPIError(ErrorKindHTTP, msg, diagnostic, nil)
	err.StatusCode = statusCode
	err.ErrorCode = errorCode
	return err
}

// NewMalformedResponseError builds the error for a response that failed envelope validation
func NewMalformedResponseError(statusCode int, cause error) *APIError {
	diagnostic := fmt.Sprintf("HTTP Status %d from NDB2 API but response failed type predicate.", statusCode)
	if cause != nil {
		diagnostic = fmt.Sprintf("%s %v", diagnostic, cause)
	}
	err := newAPIError(ErrorKindMalformed, UserMessageMalformed, diagnostic, cause)
	err.StatusCode = statusCode
	return err
}

// NewUnexpectedError builds the catch-all error. The diagnostic is the cause's
// message, or the literal value when cause is a plain string.
func NewUnexpectedError(cause interface{}) *APIError {
	switch c := cause.(type) {
	case *APIError:
		return c
	case error:
		return newAPIError(ErrorKindUnexpected, UserMessageUnexpected, c.Error(), c)
	case string:
		return newAPIError(ErrorKindUnexpected, UserMessageUnexpected, c, errors.New(c))
	default:
		return newAPIError(ErrorKindUnexpected, UserMessageUnexpected, "Unknown error.", nil)
	}
}

// WithOperation records which client operation failed
func (e *APIError) WithOperation(operation string) *APIError {
	e.Operation = operation
	return e
}

// LogError logs the error with structured fields
func (e *APIError) LogError() {
	logrus.WithFields(logrus.Fields{
		"component":        "NDB2Client",
		"error_kind":       e.Kind,
		"operation":        e.Operation,
		"status_code":      e.StatusCode,
		"error_code":       e.ErrorCode,
		"user_message":     e.UserMessage,
		"timestamp":        e.Timestamp,
		"underlying_error": e.Cause,
	}).Error(e.Diagnostic)
}

// AsAPIError extracts an APIError from err's chain
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// UserMessageFor returns the Discord-safe message for any error
func UserMessageFor(err error) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.UserMessage
	}
	return UserMessageUnexpected
}

// DiagnosticFor returns the operator-facing message for any error
func DiagnosticFor(err error) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Diagnostic
	}
	return err.Error()
}
