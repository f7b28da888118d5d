package provision

import "errors"

// Sentinel errors for the provision package. Using sentinels instead of ad-hoc
// fmt.Errorf allows callers to match with errors.Is for reliable error handling.
var (
	// ErrTargetIsDir is returned when a write target exists as a directory.
	ErrTargetIsDir = errors.New("write target is a directory")

	// ErrEmptyRunStamp is returned when a SafeWriter is created without a run stamp.
	ErrEmptyRunStamp = errors.New("run stamp is required")

	// ErrInvalidSettings is returned when the composed settings document fails schema validation.
	ErrInvalidSettings = errors.New("settings document failed schema validation")
)
