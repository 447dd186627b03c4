package pipeline

import "errors"

// Sentinel error kinds. Missing input data is never an error; it propagates as absent values.
var (
	// ErrUnimplementedStage marks a stage that exists in the plan but cannot run yet.
	// It is distinct from every data error so callers can tell a feature gap from bad input.
	ErrUnimplementedStage = errors.New("pipeline stage not implemented")

	// ErrMalformedShot is reported per shot when its freeze-frame is structurally invalid.
	ErrMalformedShot = errors.New("malformed shot")

	// ErrDegenerateGeometry is reported per shot when a derived value is not finite
	// after epsilon substitution.
	ErrDegenerateGeometry = errors.New("degenerate shot geometry")

	// ErrDuplicateEventID fails a batch whose join keys are not unique.
	ErrDuplicateEventID = errors.New("duplicate event id")
)
