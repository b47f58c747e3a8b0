package tracking

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repositories when the requested key does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports a missing or malformed identifier.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Stage tells which store interaction failed.
type Stage string

const (
	StageLookup    Stage = "lookup"
	StagePersist   Stage = "persist"
	StageAggregate Stage = "aggregate"
)

// StoreError wraps a failure talking to the backing store.
type StoreError struct {
	Op    string
	Stage Stage
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Op, e.Stage, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError

	return errors.As(err, &v)
}

// AsStoreError extracts a StoreError from err.
func AsStoreError(err error) (*StoreError, bool) {
	var s *StoreError
	if errors.As(err, &s) {
		return s, true
	}

	return nil, false
}
