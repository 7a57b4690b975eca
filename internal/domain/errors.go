package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the lookup pipeline. The HTTP layer maps these to
// status codes; everything else surfaces as an internal error.
var (
	// ErrInvalidInput marks input that is neither a 5-digit ZIP nor a
	// parseable street address. Retrying with the same input cannot succeed.
	ErrInvalidInput = errors.New("invalid ZIP code or address")

	// ErrNotFound marks well-formed input that no geocoder recognizes.
	ErrNotFound = errors.New("location not found")

	// ErrAllUpstreamsFailed marks a validly geocoded location for which
	// every official-data provider failed or returned nothing. Unlike
	// ErrNotFound this condition is retryable.
	ErrAllUpstreamsFailed = errors.New("no civic data provider answered")
)

// UpstreamError wraps a single provider failure: network error, non-2xx
// status, or a malformed payload. It is contained at the call site and
// downgraded to an empty slot unless it leaves the caller with no data.
type UpstreamError struct {
	Provider string
	Status   int // HTTP status when applicable, 0 otherwise
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
