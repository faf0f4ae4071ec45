package feed

import (
	"errors"
	"fmt"
)

// ErrStaleResult marks a fetch result that arrived after the loader was torn down.
// It is never surfaced to the rendering layer.
var ErrStaleResult = errors.New("stale result discarded")

// ErrorClass represents a classification of fetch failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx responses.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx responses.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents transport and timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode represents an undecodable response body.
	ErrorClassDecode ErrorClass = "decode"
)

// FetchError is returned when a page could not be fetched from the provider.
type FetchError struct {
	Page       int
	StatusCode int
	Class      ErrorClass
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch page %d: %s error (status %d): %v", e.Page, e.Class, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch page %d: %s error: %v", e.Page, e.Class, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// PageOf returns the page number carried by a FetchError anywhere in err's chain.
func PageOf(err error) (int, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Page, true
	}
	return 0, false
}
