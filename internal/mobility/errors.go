package mobility

import "errors"

// Sentinel errors for the core's structural-violation taxonomy.
// Data-driven conditions (empty matrices, no places) never produce an error —
// they return the documented sentinel value (0 or -1) inline instead.
var (
	// ErrUnorderedSamples is returned when a sample batch's timestamps are not
	// non-decreasing. The caller must sort the batch and resubmit it.
	ErrUnorderedSamples = errors.New("mobility: samples not ordered non-decreasingly by timestamp")

	// ErrStraddlesMidnight is returned when BuildHourMatrix is asked to
	// account for a stop whose arrival and departure fall on different
	// calendar days. The caller must split the stop at midnight first.
	ErrStraddlesMidnight = errors.New("mobility: stop straddles a day boundary")

	// ErrPreconditionViolation is returned for a non-finite or out-of-range
	// coordinate (latitude outside [-90,90], longitude outside [-180,180]).
	ErrPreconditionViolation = errors.New("mobility: precondition violated")
)
