// internal/errors/errors.go
package errors

import "fmt"

// ErrInvalidSearchQuery is returned when a client search request fails validation.
type ErrInvalidSearchQuery struct {
	Field  string
	Reason string
}

func (e *ErrInvalidSearchQuery) Error() string {
	return fmt.Sprintf("invalid search query: %s %s", e.Field, e.Reason)
}

// ErrUpstream is returned when the GitHub search endpoint cannot serve a live request.
// StatusCode is zero when the request never produced a response.
type ErrUpstream struct {
	StatusCode int
	Err        error
}

func (e *ErrUpstream) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("github search request failed: %v", e.Err)
	}
	return fmt.Sprintf("github search returned status %d", e.StatusCode)
}

func (e *ErrUpstream) Unwrap() error {
	return e.Err
}

// ErrMalformedResponse is returned when a search page body does not have the expected shape.
type ErrMalformedResponse struct {
	Field string
	Err   error
}

func (e *ErrMalformedResponse) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed search response: %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("malformed search response: missing %s", e.Field)
}

func (e *ErrMalformedResponse) Unwrap() error {
	return e.Err
}
