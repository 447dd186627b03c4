package statsbomb

import "errors"

var (
	// ErrBadEventID is returned when an event id is not a UUID; ids are join keys.
	ErrBadEventID = errors.New("bad event id")
	// ErrUnsupportedInput is returned for paths that are not event files.
	ErrUnsupportedInput = errors.New("unsupported input")
)
