package source

import "errors"

var (
	// ErrNotFound is returned by the HTTP fetcher for 404 responses.
	// Several upstreams use 404 to mean "no breaches".
	ErrNotFound = errors.New("not found")

	// ErrUnexpectedStatus is returned by the HTTP fetcher for any other non-2xx response.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrMalformedResponse is returned when an upstream body cannot be parsed.
	ErrMalformedResponse = errors.New("malformed response")
)
