package opendata

import "errors"

var (
	// ErrNotFound is returned when the repository has no file at the requested path,
	// e.g. an unknown match id.
	ErrNotFound = errors.New("open-data file not found")

	// ErrUpstream wraps any other non-200 response.
	ErrUpstream = errors.New("open-data upstream error")
)
