package fetch

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned before any network activity when the
	// URL does not start with http:// or https://
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrIO means no readable body could be obtained from the redirect chain
	ErrIO = errors.New("could not read input source")
	// ErrTooManyRedirects is returned once the hop limit is exceeded
	ErrTooManyRedirects = errors.New("too many redirects")
	// ErrRead marks a failure while reading an already opened body
	ErrRead = errors.New("could not read page body")
)

// URLError reports a URL rejected by the scheme precondition
type URLError struct {
	URL string
}

func (e *URLError) Error() string {
	return fmt.Sprintf("no valid URL provided: found %q", e.URL)
}

func (e *URLError) Unwrap() error {
	return ErrInvalidArgument
}

// HopError wraps a transport failure on one hop of the chain
type HopError struct {
	URL string
	Err error
}

func (e *HopError) Error() string {
	return fmt.Sprintf("%v: GET %s: %v", ErrIO, e.URL, e.Err)
}

func (e *HopError) Unwrap() []error {
	return []error{ErrIO, e.Err}
}

// StatusError is returned when a hop answers with a 4xx or 5xx status, for
// which no body stream is opened
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: %s returned status %d", ErrIO, e.URL, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return ErrIO
}

// ReadError is the soft failure returned next to a Partial page
type ReadError struct {
	URL string
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("could not read %s: %v", e.URL, e.Err)
}

func (e *ReadError) Unwrap() []error {
	return []error{ErrRead, e.Err}
}
