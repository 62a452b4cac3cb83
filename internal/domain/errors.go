package domain

import "errors"

// Domain errors represent error conditions in the ytcontrol domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrAuthorization is returned when the credential exchange is rejected.
	ErrAuthorization = errors.New("ytcontrol: authorization failed")

	// ErrDataFetch is returned when the API client or state cache cannot be
	// initialized after a successful authorization.
	ErrDataFetch = errors.New("ytcontrol: broadcast query failed")

	// ErrNoCredential is returned when parsing the empty "signed out" credential.
	ErrNoCredential = errors.New("ytcontrol: no credential")

	// ErrNotReady is returned when an operation needs a live state cache.
	ErrNotReady = errors.New("ytcontrol: module not ready")

	// ErrUnknownAction is returned for action IDs that are not defined.
	ErrUnknownAction = errors.New("ytcontrol: unknown action")

	// ErrUnknownBroadcast is returned when a broadcast reference cannot be resolved.
	ErrUnknownBroadcast = errors.New("ytcontrol: unknown broadcast")

	// ErrInvalidTransition is returned for lifecycle or broadcast transitions
	// that are not allowed from the current state.
	ErrInvalidTransition = errors.New("ytcontrol: invalid transition")

	// ErrAlreadyRunning is returned when a service is started twice.
	ErrAlreadyRunning = errors.New("ytcontrol: already running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("ytcontrol: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("ytcontrol: invalid configuration")
)
