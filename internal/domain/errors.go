// Package domain holds the pipeline's entities and its canonical error
// taxonomy. Every stage failure is surfaced as an *Error so callers can
// tell which stage failed and what the upstream said.
package domain

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes a stage failure.
type ErrorKind string

const (
	// ErrorKindAuth indicates an expired or invalid bearer credential.
	ErrorKindAuth ErrorKind = "auth"

	// ErrorKindNetwork indicates a transport-level failure reaching an
	// upstream service.
	ErrorKindNetwork ErrorKind = "network"

	// ErrorKindGeneration indicates the content generator failed
	// (quota exceeded, malformed prompt, upstream error).
	ErrorKindGeneration ErrorKind = "generation"

	// ErrorKindPublish indicates the publish call was rejected upstream.
	ErrorKindPublish ErrorKind = "publish"
)

// Error is the canonical stage error. StatusCode is the upstream HTTP
// status when one was received, zero otherwise.
type Error struct {
	Kind       ErrorKind `json:"kind"`
	StatusCode int       `json:"status,omitempty"`
	Message    string    `json:"message"`
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// WithStatus sets the upstream HTTP status code.
func (e *Error) WithStatus(code int) *Error {
	e.StatusCode = code
	return e
}

// AuthError creates a credential failure.
func AuthError(message string) *Error {
	return &Error{Kind: ErrorKindAuth, Message: message}
}

// NetworkError wraps a transport failure.
func NetworkError(err error) *Error {
	return &Error{Kind: ErrorKindNetwork, Message: err.Error()}
}

// GenerationError creates a content-generation failure.
func GenerationError(message string) *Error {
	return &Error{Kind: ErrorKindGeneration, Message: message}
}

// PublishError creates a publish failure carrying the upstream status.
func PublishError(status int, message string) *Error {
	return &Error{Kind: ErrorKindPublish, StatusCode: status, Message: message}
}

// KindOf returns the error's kind, or "" when err is not a domain error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// AsError extracts the domain error from err, or wraps it as a network
// error when it carries no stage classification.
func AsError(err error) *Error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return NetworkError(err)
}
