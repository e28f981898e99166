package llm

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse is returned when the model produced no usable content.
var ErrEmptyResponse = errors.New("empty response from generation backend")

// ErrInvalidResponse indicates the model returned content that is not valid
// JSON or does not conform to the requested schema. Parsed is true when the
// content was well-formed JSON that failed a schema or content check.
type ErrInvalidResponse struct {
	Content string
	Parsed  bool
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid model response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable wraps transport and vendor failures.
type ErrProviderUnavailable struct {
	Op  string
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation backend unavailable (%s): %v", e.Op, e.Err)
	}
	return fmt.Sprintf("generation backend unavailable (%s)", e.Op)
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }
