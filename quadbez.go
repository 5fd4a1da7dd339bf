package ptframe

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var _ ParametricCurve = QuadBez{}
var _ RangeArclener = QuadBez{}

type QuadBez struct {
	P0 r3.Vec
	P1 r3.Vec
	P2 r3.Vec
}

// Raise returns a cubic Bézier segment that exactly represents this
// quadratic.
func (q QuadBez) Raise() CubicBez {
	return CubicBez{
		q.P0,
		r3.Add(q.P0, r3.Scale(2.0/3.0, r3.Sub(q.P1, q.P0))),
		r3.Add(q.P2, r3.Scale(2.0/3.0, r3.Sub(q.P1, q.P2))),
		q.P2,
	}
}

func (q QuadBez) IsFinite() bool {
	return isFinite(q.P0) && isFinite(q.P1) && isFinite(q.P2)
}

// Arclen returns the arclength of the quadratic Bézier segment.
//
// This computation is based on an analytical formula. Since that formula suffers
// from numerical instability when the curve is very close to a straight line, we
// detect that case and fall back to Legendre-Gauss quadrature.
//
// Overall accuracy should be better than 1e-13 over the entire range.
func (q QuadBez) Arclen(accuracy float64) float64 {
	d2 := r3.Add(r3.Sub(q.P0, r3.Scale(2, q.P1)), q.P2)
	a := r3.Norm2(d2)
	d1 := r3.Sub(q.P1, q.P0)
	c := r3.Norm2(d1)
	if a == 0 && c == 0 {
		return 0
	}
	if a < 5e-4*c {
		// This case happens for nearly straight Béziers.
		//
		// Calculate arclength using Legendre-Gauss quadrature using formula from Behdad
		// in https://github.com/Pomax/BezierInfo-2/issues/77
		v0 := r3.Norm(r3.Add(r3.Add(
			r3.Scale(-0.492943519233745, q.P0),
			r3.Scale(0.430331482911935, q.P1)),
			r3.Scale(0.0626120363218102, q.P2)))
		v1 := r3.Norm(r3.Scale(0.4444444444444444, r3.Sub(q.P2, q.P0)))
		v2 := r3.Norm(r3.Add(r3.Sub(
			r3.Scale(-0.0626120363218102, q.P0),
			r3.Scale(0.430331482911935, q.P1)),
			r3.Scale(0.492943519233745, q.P2)))
		return v0 + v1 + v2
	}
	b := 2.0 * r3.Dot(d2, d1)

	sabc := math.Sqrt(a + b + c)
	a2 := math.Pow(a, -0.5)
	a32 := a2 * a2 * a2
	c2 := 2.0 * math.Sqrt(c)
	baC2 := b*a2 + c2

	v0 := 0.25*a2*a2*b*(2.0*sabc-c2) + sabc
	if baC2 < 1e-13 {
		// This case happens for Béziers with a sharp kink.
		return v0
	}
	return v0 + 0.25*a32*(4.0*c*a-b*b)*math.Log(((2.0*a+b)*a2+2.0*sabc)/baC2)
}

func (q QuadBez) ArclenRange(t0, t1, accuracy float64) float64 {
	if t1 <= t0 {
		return 0
	}
	return q.Subsegment(t0, t1).Arclen(accuracy)
}

func (q QuadBez) Eval(t float64) r3.Vec {
	mt := 1.0 - t
	a := r3.Scale(mt*mt, q.P0)
	b := r3.Scale(mt*2.0, q.P1)
	c := r3.Scale(t, q.P2)
	d := r3.Add(b, c)
	return r3.Add(a, r3.Scale(t, d))
}

func (q QuadBez) Deriv(t float64) r3.Vec {
	return q.Differentiate().Eval(t)
}

func (q QuadBez) Domain() (float64, float64) { return 0, 1 }

func (q QuadBez) Subdivide() (QuadBez, QuadBez) {
	pm := q.Eval(0.5)
	return QuadBez{q.P0, lerp(q.P0, q.P1, 0.5), pm},
		QuadBez{pm, lerp(q.P1, q.P2, 0.5), q.P2}
}

func (q QuadBez) Subsegment(t0 float64, t1 float64) QuadBez {
	p0 := q.Eval(t0)
	p2 := q.Eval(t1)
	p1 := r3.Add(p0, r3.Scale(t1-t0, lerp(r3.Sub(q.P1, q.P0), r3.Sub(q.P2, q.P1), t0)))
	return QuadBez{p0, p1, p2}
}

// Differentiate returns the derivative of the curve, which is a line in
// vector space.
func (q QuadBez) Differentiate() Line {
	return Line{
		r3.Scale(2, r3.Sub(q.P1, q.P0)),
		r3.Scale(2, r3.Sub(q.P2, q.P1)),
	}
}

func (q QuadBez) Start() r3.Vec { return q.P0 }
func (q QuadBez) End() r3.Vec   { return q.P2 }
