// Package apperrors defines the error kinds shared across the analysis
// pipeline. Callers classify failures with errors.Is and map them to HTTP
// statuses via Status.
package apperrors

import (
	"errors"
	"net/http"
)

var (
	// ErrMissingParameter means required context (e.g. a company name) was
	// absent; raised before any network call is made.
	ErrMissingParameter = errors.New("required parameter is missing")

	// ErrMalformedResponse means the text-generation output did not match
	// the expected shape (no content, or too few classification tokens).
	ErrMalformedResponse = errors.New("malformed model response")

	// ErrNotFound means a lookup by slug or key yielded no entity.
	ErrNotFound = errors.New("entity not found")

	// ErrUpstream means the content API, text-generation API, or document
	// store failed.
	ErrUpstream = errors.New("upstream service failure")
)

func Status(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrMissingParameter):
		return http.StatusBadRequest
	case errors.Is(err, ErrMalformedResponse), errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
