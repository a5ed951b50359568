package domain

import (
	"errors"
	"fmt"
)

// ErrUnsupportedURL is wrapped by FetchError when no fetcher handles a URL.
var ErrUnsupportedURL = errors.New("unsupported source url")

// FetchError reports a failure retrieving a source: network error, timeout
// or a non-success status.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// DecodeError reports a payload that could not be decoded as audio.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("decode audio: %v", e.Err)
	}
	return fmt.Sprintf("decode %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ValidationError reports a request that is missing required fields.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
