package coach

import (
	"errors"
	"fmt"
)

// ErrorType categorizes client errors.
type ErrorType string

const (
	// ErrPermission means microphone access was denied by the user or OS.
	ErrPermission ErrorType = "permission_error"
	// ErrDevice means no capture device is present or the device failed.
	ErrDevice ErrorType = "device_error"
	// ErrRequest means a session-creation or summary request failed.
	ErrRequest ErrorType = "request_error"
	// ErrChannel means the realtime event channel faulted.
	ErrChannel ErrorType = "channel_error"
	// ErrState means an operation was invoked in the wrong lifecycle state.
	ErrState ErrorType = "state_error"
)

// Error is the client error type. Type drives how the failure is surfaced:
// permission and request errors are user-visible and actionable, channel
// errors are warnings that leave the session under the user's control.
type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    string    `json:"code,omitempty"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (code: %s)", e.Type, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error { return e.cause }

// NewPermissionError creates a microphone-permission error.
func NewPermissionError(message string, cause error) *Error {
	return &Error{Type: ErrPermission, Message: message, cause: cause}
}

// NewDeviceError creates a capture-device error.
func NewDeviceError(message string, cause error) *Error {
	return &Error{Type: ErrDevice, Message: message, cause: cause}
}

// NewRequestError creates a control-request error.
func NewRequestError(message string, cause error) *Error {
	return &Error{Type: ErrRequest, Message: message, cause: cause}
}

// NewChannelError creates an event-channel error.
func NewChannelError(message string, cause error) *Error {
	return &Error{Type: ErrChannel, Message: message, cause: cause}
}

// NewStateError creates a lifecycle-state error.
func NewStateError(message string) *Error {
	return &Error{Type: ErrState, Message: message}
}

// TypeOf returns the ErrorType of err, or "" if err is not a *Error.
func TypeOf(err error) ErrorType {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Type
	}
	return ""
}
