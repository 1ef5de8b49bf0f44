package ranking

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for a non-positive limit or a blank query.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrScoringFailure is returned when an entry could not be scored.
	ErrScoringFailure = errors.New("scoring failure")
	// ErrResourceExceeded is returned when more entries are passed than the configured bound.
	ErrResourceExceeded = errors.New("resource exceeded")
)

// ScoringError identifies the entry that could not be scored.
// It matches ErrScoringFailure with errors.Is and unwraps to the scorer's error.
type ScoringError struct {
	Index   int
	EntryID string
	Err     error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("scoring failure: entry %d (id %q): %v", e.Index, e.EntryID, e.Err)
}

func (e *ScoringError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrScoringFailure.
func (e *ScoringError) Is(target error) bool {
	return target == ErrScoringFailure
}

var errNaNScore = errors.New("scorer returned NaN")

// ResourceError reports an entry count beyond the configured bound.
// It matches ErrResourceExceeded with errors.Is.
type ResourceError struct {
	Count int
	Limit int
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("resource exceeded: %d entries, limit is %d", e.Count, e.Limit)
}

// Is reports whether target is ErrResourceExceeded.
func (e *ResourceError) Is(target error) bool {
	return target == ErrResourceExceeded
}

func invalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
