package go_rpsession

import (
	"errors"
	"fmt"
)

// Standard Remote Play Error Types
//
// These errors follow Go 1.13+ error wrapping conventions and can be
// checked using errors.Is() and errors.As(). Internally they form a closed
// taxonomy; the externally visible outcome of a session is always a
// QuitReason, never one of these values.

// Sentinel errors for session-level failures
var (
	// ErrParseAddr indicates the console host could not be resolved.
	ErrParseAddr = errors.New("rpsession: failed to resolve host address")

	// ErrNetwork indicates a socket-level failure (connect, send, receive).
	ErrNetwork = errors.New("rpsession: network error")

	// ErrConnectionRefused indicates the console actively refused the
	// TCP connection. Kept distinct from ErrNetwork because the session
	// request reports it as its own quit reason.
	ErrConnectionRefused = errors.New("rpsession: connection refused")

	// ErrInvalidData indicates malformed data, such as a target without
	// a wire version string or a malformed or oversized HTTP response
	// header.
	ErrInvalidData = errors.New("rpsession: invalid data")

	// ErrVersionMismatch indicates the console rejected our Rp-Version.
	// The session may retry with the console's reported version.
	ErrVersionMismatch = errors.New("rpsession: rp-version mismatch")

	// ErrCanceled indicates a blocking operation was interrupted by the
	// stop pipe. This is not a failure; it maps to QUIT_REASON_STOPPED.
	ErrCanceled = errors.New("rpsession: canceled")

	// ErrDisconnected indicates the console closed the stream connection.
	// Use DisconnectError to carry the console-supplied reason string.
	ErrDisconnected = errors.New("rpsession: remote disconnected")

	// ErrTimeout indicates an operation exceeded its allowed time limit.
	ErrTimeout = errors.New("rpsession: operation timed out")

	// ErrUnknown indicates a failure with no more specific classification.
	ErrUnknown = errors.New("rpsession: unknown error")

	// ErrSessionNotInitialized indicates an operation was attempted on an
	// uninitialized session. Sessions must be created using NewSession();
	// zero-value Session{} instances are not safe to use.
	ErrSessionNotInitialized = errors.New("rpsession: session not initialized (use NewSession)")

	// ErrSessionAlreadyStarted indicates Start() was called twice.
	ErrSessionAlreadyStarted = errors.New("rpsession: session already started")
)

// DisconnectError is returned by the stream connection when the console
// ends the session on its own. Reason is the server-supplied string and
// becomes the quit reason string of the QUIT event.
type DisconnectError struct {
	Reason string
}

func (e *DisconnectError) Error() string {
	if e.Reason == "" {
		return ErrDisconnected.Error()
	}
	return fmt.Sprintf("rpsession: remote disconnected: %s", e.Reason)
}

func (e *DisconnectError) Unwrap() error {
	return ErrDisconnected
}

// CtrlError represents a failure of the ctrl channel worker. It carries
// the quit reason the ctrl layer already determined so the session does
// not have to re-classify the underlying cause.
type CtrlError struct {
	Reason QuitReason
	Err    error
}

func (e *CtrlError) Error() string {
	return fmt.Sprintf("rpsession: ctrl failed (%s): %v", e.Reason, e.Err)
}

func (e *CtrlError) Unwrap() error {
	return e.Err
}
