// Package failure defines the failure kinds surfaced by the client core.
//
// Every specific failure wraps exactly one kind, so callers can branch on
// either: errors.Is(err, ErrFileTooLarge) or errors.Is(err, ErrValidation).
package failure

import (
	"errors"
	"fmt"
)

// Kinds.
var (
	// ErrValidation is a local check that never reached the network.
	ErrValidation = errors.New("validation failed")
	// ErrAuth means the server rejected the submitted credentials.
	ErrAuth = errors.New("sign-in rejected")
	// ErrSessionExpired means the session cookie is no longer accepted.
	ErrSessionExpired = errors.New("session expired")
	// ErrBackendUnavailable means the print accounting backend is down.
	ErrBackendUnavailable = errors.New("print service is down")
	// ErrTransient is any other failed request.
	ErrTransient = errors.New("request failed")
	// ErrInvalidPhase is an operation issued while the pipeline cannot accept it.
	ErrInvalidPhase = errors.New("operation not allowed in current phase")
)

// Validation failures.
var (
	ErrFileTooLarge        = fmt.Errorf("%w: file exceeds the size limit", ErrValidation)
	ErrUnsupportedFileType = fmt.Errorf("%w: unsupported file type", ErrValidation)
	ErrInvalidEmailDomain  = fmt.Errorf("%w: email domain is not allowed", ErrValidation)
	ErrMissingIdentifier   = fmt.Errorf("%w: username is required", ErrValidation)
	ErrOptionDisabled      = fmt.Errorf("%w: option is disabled by another option", ErrValidation)
	ErrInvalidCopies       = fmt.Errorf("%w: copies must be at least 1", ErrValidation)
)

// Kind returns the kind an error belongs to, or nil when it is not one of ours.
func Kind(err error) error {
	for _, kind := range []error{
		ErrValidation,
		ErrAuth,
		ErrSessionExpired,
		ErrBackendUnavailable,
		ErrTransient,
		ErrInvalidPhase,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// ErrJobDiscarded is returned to a caller whose job was cancelled while its
// request was in flight.
var ErrJobDiscarded = fmt.Errorf("%w: job was cancelled", ErrInvalidPhase)
