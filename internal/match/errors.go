package match

import (
	"errors"
	"fmt"
)

// ParseError reports a completion response that is not well-formed JSON.
// It affects a single pair only; callers decide whether to retry or skip.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse completion response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IncompleteResponseError reports a well-formed completion response missing
// a required scoring field.
type IncompleteResponseError struct {
	Key string
}

func (e *IncompleteResponseError) Error() string {
	return fmt.Sprintf("completion response is missing required field %q", e.Key)
}

// recoverable reports whether a pair-scoring error should exclude the pair
// from a batch instead of aborting it.
func recoverable(err error) bool {
	var parseErr *ParseError
	var incompleteErr *IncompleteResponseError
	return errors.As(err, &parseErr) || errors.As(err, &incompleteErr)
}
