package util

import (
	"errors"
)

// ErrPublic is an error whose message is safe to echo verbatim to the user
// who triggered it. Anything else only ever reaches the logs.
type ErrPublic string

func (e ErrPublic) Error() string {
	return string(e)
}

func (e ErrPublic) Is(v error) bool {
	_, ok := v.(ErrPublic)
	return ok
}

// ConcatErrors merges a slice of errors into one, keeping each part
// reachable through errors.Is and errors.As. A slice with no non-nil error
// yields nil.
func ConcatErrors(errs []error) error {
	return errors.Join(errs...)
}
