package ptframe

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Curve is the view of a curve needed to propagate a frame along it. All
// queries are fallible; any error aborts the evaluation that issued it.
type Curve interface {
	// Length returns the arc length of the whole curve.
	Length() (float64, error)
	// PointAt returns the position at parameter t.
	PointAt(t float64) (r3.Vec, error)
	// TangentAt returns the unit tangent at parameter t.
	TangentAt(t float64) (r3.Vec, error)
	// ParamFromLength returns the parameter at the given arc length from the
	// start of the curve.
	ParamFromLength(length float64) (float64, error)
}

// QueryableCurve is a parametric curve that can measure its own arc length.
// All curves in this package implement it.
type QueryableCurve interface {
	ParametricCurve
	RangeArclener
}

// CurveQuery adapts a [QueryableCurve] to the [Curve] interface.
//
// Parameters may lie outside of the domain by a small tolerance, to absorb
// roundoff in callers, and are clamped into it. Everything else outside of the
// domain, as well as non-finite input and output, results in an error. Zero
// derivatives, as found at the clamped ends of splines with repeated control
// points, are resolved by sampling slightly inside the domain.
//
// CurveQuery does not cache; every call queries the underlying curve, so a
// CurveQuery stays valid only as long as the curve it wraps is not modified.
type CurveQuery struct {
	curve    QueryableCurve
	accuracy float64
}

var _ Curve = (*CurveQuery)(nil)

// NewCurveQuery returns a query adapter for c. Arc lengths are computed to
// the given accuracy; a non-positive accuracy selects [DefaultAccuracy].
func NewCurveQuery(c QueryableCurve, accuracy float64) *CurveQuery {
	if accuracy <= 0 {
		accuracy = DefaultAccuracy
	}
	return &CurveQuery{curve: c, accuracy: accuracy}
}

// Underlying returns the wrapped curve.
func (q *CurveQuery) Underlying() QueryableCurve { return q.curve }

func (q *CurveQuery) Length() (float64, error) {
	t0, t1 := q.curve.Domain()
	l := q.curve.ArclenRange(t0, t1, q.accuracy)
	if !isFiniteFloat(l) {
		return 0, fmt.Errorf("length %g: %w", l, ErrNonFinite)
	}
	return l, nil
}

func (q *CurveQuery) param(t float64) (float64, error) {
	if !isFiniteFloat(t) {
		return 0, fmt.Errorf("parameter %g: %w", t, ErrNonFinite)
	}
	t0, t1 := q.curve.Domain()
	tol := 1e-9 * max(1, t1-t0)
	if t < t0-tol || t > t1+tol {
		return 0, fmt.Errorf("parameter %g not in [%g, %g]: %w", t, t0, t1, ErrOutOfDomain)
	}
	return clamp(t, t0, t1), nil
}

func (q *CurveQuery) PointAt(t float64) (r3.Vec, error) {
	t, err := q.param(t)
	if err != nil {
		return r3.Vec{}, err
	}
	p := q.curve.Eval(t)
	if !isFinite(p) {
		return r3.Vec{}, fmt.Errorf("point %s: %w", formatVec(p), ErrNonFinite)
	}
	return p, nil
}

// tangentEpsilon is the derivative length below which a tangent is
// considered to vanish.
const tangentEpsilon = 1e-12

func (q *CurveQuery) TangentAt(t float64) (r3.Vec, error) {
	t, err := q.param(t)
	if err != nil {
		return r3.Vec{}, err
	}
	d := q.curve.Deriv(t)
	if r3.Norm(d) < tangentEpsilon {
		// Step towards the interior of the domain.
		t0, t1 := q.curve.Domain()
		h := 1e-6 * (t1 - t0)
		if t+h <= t1 {
			d = q.curve.Deriv(t + h)
		} else {
			d = q.curve.Deriv(t - h)
		}
	}
	if !isFinite(d) {
		return r3.Vec{}, fmt.Errorf("tangent %s: %w", formatVec(d), ErrNonFinite)
	}
	l := r3.Norm(d)
	if l < tangentEpsilon {
		return r3.Vec{}, ErrZeroTangent
	}
	return r3.Scale(1/l, d), nil
}

func (q *CurveQuery) ParamFromLength(length float64) (float64, error) {
	if !isFiniteFloat(length) {
		return 0, fmt.Errorf("length %g: %w", length, ErrNonFinite)
	}
	t := SolveForArclen(q.curve, length, q.accuracy)
	if math.IsNaN(t) {
		return 0, fmt.Errorf("parameter for length %g: %w", length, ErrNonFinite)
	}
	return t, nil
}
