package pricelist

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL is returned for URLs that are not absolute http(s) URLs
	ErrInvalidURL = errors.New("pricelist: invalid url")
	// ErrDocumentTooLarge is returned when the body exceeds the size limit
	ErrDocumentTooLarge = errors.New("pricelist: document too large")
	// ErrUnsupportedCharset is returned for charsets without a decoder
	ErrUnsupportedCharset = errors.New("pricelist: unsupported charset")
	// ErrInvalidDocument is returned when the body is not a valid price list
	ErrInvalidDocument = errors.New("pricelist: invalid document")
)

// FetchError is a non-2xx answer from the partner's server
type FetchError struct {
	URL        string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("pricelist: GET %s returned status %d", e.URL, e.StatusCode)
}

// Temporary reports whether asking again later may succeed
func (e *FetchError) Temporary() bool {
	switch {
	case e.StatusCode >= 500:
		return true
	case e.StatusCode == 408, e.StatusCode == 429:
		return true
	}
	return false
}

// IsRetryable reports whether a fetch failure is worth another attempt.
// Network errors and temporary HTTP statuses are; malformed documents and
// client errors are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Temporary()
	}
	if errors.Is(err, ErrInvalidURL) || errors.Is(err, ErrDocumentTooLarge) ||
		errors.Is(err, ErrUnsupportedCharset) || errors.Is(err, ErrInvalidDocument) {
		return false
	}
	return true
}
