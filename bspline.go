package ptframe

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

var _ ParametricCurve = BSpline{}
var _ RangeArclener = BSpline{}

// BSpline is a non-rational B-spline curve of arbitrary degree.
//
// The knot vector has len(Points)+Degree+1 entries and must be non-decreasing.
// The curve is defined on [Knots[Degree], Knots[len(Points)]]. Splines built
// by [NewUniformBSpline] have clamped, uniformly spaced knots, so that the
// curve starts and ends at its first and last control points and each span
// covers one unit of parameter, the convention used by most DCC packages for
// NURBS curves.
type BSpline struct {
	Degree int
	Points []r3.Vec
	Knots  []float64
}

var errDegree = errors.New("degree must be at least 1")

// NewBSpline validates its arguments and returns a B-spline. The slices are
// not copied.
func NewBSpline(degree int, points []r3.Vec, knots []float64) (BSpline, error) {
	if degree < 1 {
		return BSpline{}, fmt.Errorf("%w: %w", ErrInvalidCurve, errDegree)
	}
	if len(points) < degree+1 {
		return BSpline{}, fmt.Errorf("%w: degree %d needs at least %d points, got %d",
			ErrInvalidCurve, degree, degree+1, len(points))
	}
	if want := len(points) + degree + 1; len(knots) != want {
		return BSpline{}, fmt.Errorf("%w: expected %d knots, got %d", ErrInvalidCurve, want, len(knots))
	}
	for i, pt := range points {
		if !isFinite(pt) {
			return BSpline{}, fmt.Errorf("%w: point %d is not finite", ErrInvalidCurve, i)
		}
	}
	for i, k := range knots {
		if !isFiniteFloat(k) {
			return BSpline{}, fmt.Errorf("%w: knot %d is not finite", ErrInvalidCurve, i)
		}
		if i > 0 && k < knots[i-1] {
			return BSpline{}, fmt.Errorf("%w: knots must be non-decreasing", ErrInvalidCurve)
		}
	}
	s := BSpline{Degree: degree, Points: points, Knots: knots}
	if t0, t1 := s.Domain(); t1 <= t0 {
		return BSpline{}, fmt.Errorf("%w: empty parameter domain", ErrInvalidCurve)
	}
	return s, nil
}

// NewUniformBSpline returns a clamped B-spline with uniform knots. Its domain
// is [0, len(points)-degree].
func NewUniformBSpline(degree int, points []r3.Vec) (BSpline, error) {
	if degree < 1 {
		return BSpline{}, fmt.Errorf("%w: %w", ErrInvalidCurve, errDegree)
	}
	spans := len(points) - degree
	if spans < 1 {
		return BSpline{}, fmt.Errorf("%w: degree %d needs at least %d points, got %d",
			ErrInvalidCurve, degree, degree+1, len(points))
	}
	knots := make([]float64, 0, len(points)+degree+1)
	for range degree + 1 {
		knots = append(knots, 0)
	}
	for i := 1; i < spans; i++ {
		knots = append(knots, float64(i))
	}
	for range degree + 1 {
		knots = append(knots, float64(spans))
	}
	return NewBSpline(degree, points, knots)
}

func (s BSpline) Domain() (float64, float64) {
	return s.Knots[s.Degree], s.Knots[len(s.Points)]
}

// Spans returns the number of knot spans of non-zero width.
func (s BSpline) Spans() int {
	var n int
	for k := s.Degree; k < len(s.Points); k++ {
		if s.Knots[k+1] > s.Knots[k] {
			n++
		}
	}
	return n
}

// span returns the index k such that Knots[k] <= t < Knots[k+1], restricted
// to the domain. The end of the domain belongs to the last span.
func (s BSpline) span(t float64) int {
	p := s.Degree
	n := len(s.Points)
	if t >= s.Knots[n] {
		// Skip trailing knots of zero width.
		k := n - 1
		for k > p && s.Knots[k] == s.Knots[n] {
			k--
		}
		return k
	}
	if t <= s.Knots[p] {
		return p
	}
	i := sort.Search(n-p, func(i int) bool { return s.Knots[p+1+i] > t })
	return p + i
}

// Eval evaluates the curve at t using de Boor's algorithm. Parameters
// outside of the domain are clamped.
func (s BSpline) Eval(t float64) r3.Vec {
	p := s.Degree
	k := s.span(t)
	t = clamp(t, s.Knots[p], s.Knots[len(s.Points)])
	return deBoor(p, s.Points[k-p:k+1], s.Knots, k, t)
}

// Deriv returns the first derivative at t.
func (s BSpline) Deriv(t float64) r3.Vec {
	p := s.Degree
	k := s.span(t)
	// The derivative is a spline of degree p-1 on the knots with the first and
	// last entry dropped. Only the p control points that influence span k are
	// needed.
	q := make([]r3.Vec, p)
	for i := range q {
		idx := k - p + i
		den := s.Knots[idx+p+1] - s.Knots[idx+1]
		if den != 0 {
			q[i] = r3.Scale(float64(p)/den, r3.Sub(s.Points[idx+1], s.Points[idx]))
		}
	}
	if p == 1 {
		return q[0]
	}
	// q[i] corresponds to derivative control point k-p+i, which has index
	// (k-1)-(p-1)+i in the derivative spline; its span index is k-1.
	dk := s.Knots[1 : len(s.Knots)-1]
	t = clamp(t, s.Knots[p], s.Knots[len(s.Points)])
	return deBoor(p-1, q, dk, k-1, t)
}

// deBoor is de Boor's algorithm on the p+1 control points affecting span k,
// given as a slice starting at control point k-p.
func deBoor(p int, local []r3.Vec, knots []float64, k int, t float64) r3.Vec {
	d := make([]r3.Vec, p+1)
	copy(d, local)
	for r := 1; r <= p; r++ {
		for j := p; j >= r; j-- {
			lo := knots[j+k-p]
			den := knots[j+1+k-r] - lo
			var alpha float64
			if den != 0 {
				alpha = (t - lo) / den
			}
			d[j] = lerp(d[j-1], d[j], alpha)
		}
	}
	return d[p]
}

// ArclenRange returns the length of the curve between t0 and t1. Each knot
// span is integrated separately, as the curve is only piecewise smooth.
func (s BSpline) ArclenRange(t0, t1, accuracy float64) float64 {
	lo, hi := s.Domain()
	t0 = clamp(t0, lo, hi)
	t1 = clamp(t1, lo, hi)
	if t1 <= t0 {
		return 0
	}
	var sum float64
	start := t0
	for k := s.span(t0); k < len(s.Points) && start < t1; k++ {
		end := min(s.Knots[k+1], t1)
		if end > start {
			sum += arclenQuadrature(s.Deriv, start, end, accuracy, 0)
		}
		start = end
	}
	return sum
}

// Arclen returns the length of the whole curve.
func (s BSpline) Arclen(accuracy float64) float64 {
	t0, t1 := s.Domain()
	return s.ArclenRange(t0, t1, accuracy)
}

func (s BSpline) Start() r3.Vec { return s.Eval(s.Knots[s.Degree]) }
func (s BSpline) End() r3.Vec   { return s.Eval(s.Knots[len(s.Points)]) }
