package model

import "errors"

// Error kinds surfaced across the engine. Each is a sentinel wrapped with
// context via fmt.Errorf("...: %w", err) at the call site.
var (
	ErrInvalidConfiguration      = errors.New("invalid configuration")
	ErrConnectivityFailure       = errors.New("connectivity failure")
	ErrPreflightFailure          = errors.New("preflight failure")
	ErrExternalToolFailure       = errors.New("external tool failure")
	ErrCancellationRequested     = errors.New("cancellation requested")
	ErrFilesystemFailure         = errors.New("filesystem failure")
	ErrCorruptArtifact           = errors.New("corrupt artifact")
	ErrInternalInvariantViolation = errors.New("internal invariant violation")
)
