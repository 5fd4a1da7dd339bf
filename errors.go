package ptframe

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCurve is returned when there is no curve, its length is zero
	// or not finite, or a curve cannot be constructed from its description.
	ErrInvalidCurve = errors.New("invalid curve")
	// ErrInvalidStartFrame is returned when the start frame's normal and
	// tangent do not span a plane.
	ErrInvalidStartFrame = errors.New("invalid start frame")
	// ErrInvalidRestLength is returned for negative or non-finite rest lengths.
	ErrInvalidRestLength = errors.New("invalid rest length")
	// ErrInvalidRamp is returned by [NewRamp] for malformed keys.
	ErrInvalidRamp = errors.New("invalid ramp")
	// ErrQuery is matched by every [*QueryError].
	ErrQuery = errors.New("query failed")

	// ErrOutOfDomain, ErrNonFinite and ErrZeroTangent are the causes reported
	// by [CurveQuery].
	ErrOutOfDomain = errors.New("parameter outside of curve domain")
	ErrNonFinite   = errors.New("non-finite value")
	ErrZeroTangent = errors.New("tangent has zero length")
)

// QueryError reports a failed curve or response query during an evaluation.
// It matches both [ErrQuery] and the underlying cause.
type QueryError struct {
	// Op names the failed query: "length", "param from length", "point",
	// "tangent", "twist" or "scale".
	Op string
	// Index is the sample being evaluated, or -1 for queries that are not
	// tied to a sample.
	Index int
	// Param is the curve parameter of the query, or the raw sample value for
	// "param from length".
	Param float64
	Err   error
}

func (e *QueryError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s query failed: %s", e.Op, e.Err)
	}
	return fmt.Sprintf("sample %d (param %g): %s query failed: %s", e.Index, e.Param, e.Op, e.Err)
}

func (e *QueryError) Unwrap() []error {
	return []error{ErrQuery, e.Err}
}
