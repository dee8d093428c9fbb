// Package errors defines the error types surfaced by the Meta Graph API
// wrapper. Every failure a caller can see is one of these types; callers
// branch on the concrete type (errors.As) and, for platform failures, on the
// numeric code the Graph API returned.
package errors

import (
	"fmt"
)

// Reason codes carried by MediaError and PublishError. They are stable
// strings a caller can match on without parsing messages.
const (
	ReasonUnreachable      = "unreachable"
	ReasonUndetectableType = "undetectable-type"
	ReasonDisallowedType   = "disallowed-type"
	ReasonOversized        = "oversized"
	ReasonSpecViolation    = "spec-violation"
	ReasonContainerFailed  = "container-failed"
	ReasonContainerExpired = "container-expired"
	ReasonTimeout          = "timeout"
)

// ConfigError indicates a problem with the client configuration.
type ConfigError struct {
	// Field contains the name of the configuration field that caused the error
	Field string
	// Message contains the detailed error message
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// ValidationError indicates a request was rejected before any network call
// was made: wrong media count, missing required field, schedule time outside
// the allowed window.
type ValidationError struct {
	// Field is the request field that failed validation, if attributable.
	Field string
	// Message contains the detailed error message
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// MediaError indicates a problem with the media itself: the fetched bytes
// could not be identified, the type is not allowed for the target surface,
// the file is too large, or the container the platform built from it ended
// in a terminal failure state.
type MediaError struct {
	// Reason is one of the Reason* constants.
	Reason string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *MediaError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		return fmt.Sprintf("media error: %s", e.Reason)
	}
	return fmt.Sprintf("media error (%s): %s", e.Reason, msg)
}

func (e *MediaError) Unwrap() error {
	return e.Err
}

// UploadError indicates a resumable upload failed: the session-open call did
// not succeed, or the byte transfer returned a non-200 status. A container
// may or may not exist server-side; no cleanup is attempted.
type UploadError struct {
	// StatusCode is the HTTP status of the failed call, if one was received.
	StatusCode int
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *UploadError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("upload error (status %d): %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("upload error: %s", msg)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// PublishError indicates the orchestration of a publish request failed at a
// stage that is not attributable to the media bytes themselves, for example
// a poll deadline expiring.
type PublishError struct {
	// Reason is one of the Reason* constants.
	Reason string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *PublishError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		return fmt.Sprintf("publish error: %s", e.Reason)
	}
	return fmt.Sprintf("publish error (%s): %s", e.Reason, msg)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// APIError is a decoded Graph API error payload. Message and Category come
// from the wrapper's error-code table when the code is known; unknown codes
// keep the platform's own message and report a generic 500 category.
type APIError struct {
	// StatusCode is the HTTP status of the response
	StatusCode int
	// Code is the platform error code (e.g. 190 for expired tokens)
	Code int
	// Subcode is the platform error subcode, when present
	Subcode int
	// Message is the human-readable description of the failure
	Message string
	// Category groups codes for remediation: auth, throttle, permission,
	// media, policy, request, transient, unknown
	Category string
	// FBTraceID is the platform-side trace identifier for support requests
	FBTraceID string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("graph API error (status %d, code %d): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("graph API error (status %d): %s", e.StatusCode, e.Message)
}

// ClientError indicates a problem inside the HTTP client itself: a request
// could not be built or executed, or a response could not be decoded.
type ClientError struct {
	// Operation describes what the client was trying to do
	Operation string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *ClientError) Error() string {
	if e.Err != nil && e.Operation == "" && e.Message == "" {
		return e.Err.Error()
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Operation != "" {
		return fmt.Sprintf("client error during %s: %s", e.Operation, msg)
	}
	return fmt.Sprintf("client error: %s", msg)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}
