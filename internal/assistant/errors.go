package assistant

import (
	"errors"
	"fmt"
)

// Kind classifies a stage failure so the loop can pick between a silent
// retry, a spoken apology and shutting down.
type Kind string

const (
	KindNoSpeech           Kind = "NO_SPEECH_DETECTED"
	KindUnintelligible     Kind = "UNINTELLIGIBLE_AUDIO"
	KindServiceUnavailable Kind = "SERVICE_UNAVAILABLE"
	KindInvalidResponse    Kind = "INVALID_RESPONSE"
	KindDeviceUnavailable  Kind = "DEVICE_UNAVAILABLE"
)

// Error carries the failure kind alongside the underlying cause.
type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind Kind, reason string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, Err: err}
}

// KindOf extracts the failure kind from err, or "" when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
