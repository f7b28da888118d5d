package guard

import "errors"

// Sentinel errors for the guard package. Callers match with errors.Is to
// map policy violations onto the host's blocking exit status.
var (
	// ErrBlocked is returned when a path matches a protected pattern.
	ErrBlocked = errors.New("path matches protected pattern")

	// ErrGateFailed is returned when a verification command exits non-zero.
	ErrGateFailed = errors.New("completion gate failed")
)
