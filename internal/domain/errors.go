package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTransientIO marks network/API failures worth retrying.
	ErrTransientIO = errors.New("transient io error")
	// ErrTopicTooNarrow means fewer than the minimum candidates matched, even after expansion.
	ErrTopicTooNarrow = errors.New("topic too narrow")
	// ErrAssetPoolExhausted means no never-used visual asset is left for the document.
	ErrAssetPoolExhausted = errors.New("asset pool exhausted")
	// ErrValidationUnrecoverable means violations survived auto-correction.
	ErrValidationUnrecoverable = errors.New("validation unrecoverable")
	// ErrRegistryConflict means an asset was recorded by another document concurrently.
	ErrRegistryConflict = errors.New("registry conflict")
	// ErrRegistryLocked means another run holds the registry lock.
	ErrRegistryLocked = errors.New("registry locked")
)

var fatal = []error{
	ErrTopicTooNarrow,
	ErrAssetPoolExhausted,
	ErrValidationUnrecoverable,
	ErrRegistryConflict,
	ErrRegistryLocked,
}

// IsFatal reports whether err is a condition that retrying cannot fix.
func IsFatal(err error) bool {
	for _, target := range fatal {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// PhaseError names the pipeline phase a failure came from.
type PhaseError struct {
	Phase string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("phase %s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}
