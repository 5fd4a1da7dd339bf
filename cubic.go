package ptframe

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var _ ParametricCurve = CubicBez{}
var _ RangeArclener = CubicBez{}

type CubicBez struct {
	P0 r3.Vec
	P1 r3.Vec
	P2 r3.Vec
	P3 r3.Vec
}

func (c CubicBez) IsFinite() bool {
	return isFinite(c.P0) && isFinite(c.P1) && isFinite(c.P2) && isFinite(c.P3)
}

// Arclen returns the arclength of a cubic Bézier segment.
//
// This is an adaptive subdivision approach using Legendre-Gauss quadrature
func (c CubicBez) Arclen(accuracy float64) float64 {
	return c.arclen(accuracy, 0)
}

func (c CubicBez) arclen(accuracy float64, depth int) float64 {
	d03 := r3.Sub(c.P3, c.P0)
	d01 := r3.Sub(c.P1, c.P0)
	d12 := r3.Sub(c.P2, c.P1)
	d23 := r3.Sub(c.P3, c.P2)
	lplc := r3.Norm(d01) + r3.Norm(d12) + r3.Norm(d23) - r3.Norm(d03)
	dd1 := r3.Sub(d12, d01)
	dd2 := r3.Sub(d23, d12)
	// The following values don't have the factor of 3 for first deriv
	dm := r3.Add(r3.Scale(0.25, r3.Add(d01, d23)), r3.Scale(0.5, d12)) // first derivative at midpoint
	dm1 := r3.Scale(0.5, r3.Add(dd2, dd1))                             // second derivative at midpoint
	dm2 := r3.Scale(0.25, r3.Sub(dd2, dd1))                            // 0.5 * (third derivative at midpoint)

	var est float64
	for _, coeff := range gaussLegendreCoeffs8 {
		wi, xi := coeff[0], coeff[1]
		dNorm2 := r3.Norm2(r3.Add(r3.Add(dm, r3.Scale(xi, dm1)), r3.Scale(xi*xi, dm2)))
		ddNorm2 := r3.Norm2(r3.Add(dm1, r3.Scale(2.0*xi, dm2)))
		est += wi * (ddNorm2 / dNorm2)
	}
	if math.IsNaN(est) {
		// dNorm2 will be 0 as c approaches a singularity
		est = 0
	}

	estGauss8Error := min(math.Pow(est, 3)*2.5e-6, 3e-2) * lplc
	if estGauss8Error < accuracy {
		return arclenQuadratureCore(gaussLegendreCoeffs8Half[:], dm, dm1, dm2)
	}
	estGauss16Error := min(math.Pow(est, 6)*1.5e-11, 9e-3) * lplc
	if estGauss16Error < accuracy {
		return arclenQuadratureCore(gaussLegendreCoeffs16Half[:], dm, dm1, dm2)
	}
	estGauss24Error := min(math.Pow(est, 9)*3.5e-16, 3.5e-3) * lplc
	if estGauss24Error < accuracy || depth >= 20 {
		return arclenQuadratureCore(gaussLegendreCoeffs24Half[:], dm, dm1, dm2)
	}
	c0, c1 := c.Subdivide()
	return c0.arclen(accuracy*0.5, depth+1) + c1.arclen(accuracy*0.5, depth+1)
}

func arclenQuadratureCore(coeffs [][2]float64, dm, dm1, dm2 r3.Vec) float64 {
	var sum float64
	for _, coeff := range coeffs {
		wi, xi := coeff[0], coeff[1]
		d := r3.Add(dm, r3.Scale(xi*xi, dm2))
		dpx := r3.Norm(r3.Add(d, r3.Scale(xi, dm1)))
		dmx := r3.Norm(r3.Sub(d, r3.Scale(xi, dm1)))
		sum += 1.5 * wi * (dpx + dmx)
	}
	return sum
}

func (c CubicBez) ArclenRange(t0, t1, accuracy float64) float64 {
	if t1 <= t0 {
		return 0
	}
	return c.Subsegment(t0, t1).Arclen(accuracy)
}

func (c CubicBez) Eval(t float64) r3.Vec {
	mt := 1.0 - t
	a := r3.Scale(mt*mt*mt, c.P0)
	b := r3.Scale(mt*mt*3.0, c.P1)
	cc := r3.Scale(mt*3.0, c.P2)
	d := c.P3
	return r3.Add(a, r3.Scale(t, r3.Add(b, r3.Scale(t, r3.Add(cc, r3.Scale(t, d))))))
}

func (c CubicBez) Deriv(t float64) r3.Vec {
	return c.Differentiate().Eval(t)
}

func (c CubicBez) Domain() (float64, float64) { return 0, 1 }

// Subdivide subdivides the cubic into halves, using de Casteljau.
func (c CubicBez) Subdivide() (CubicBez, CubicBez) {
	pm := c.Eval(0.5)
	return CubicBez{
			c.P0,
			lerp(c.P0, c.P1, 0.5),
			r3.Scale(0.25, r3.Add(r3.Add(c.P0, r3.Scale(2.0, c.P1)), c.P2)),
			pm,
		},
		CubicBez{
			pm,
			r3.Scale(0.25, r3.Add(r3.Add(c.P1, r3.Scale(2.0, c.P2)), c.P3)),
			lerp(c.P2, c.P3, 0.5),
			c.P3,
		}
}

func (c CubicBez) Start() r3.Vec { return c.P0 }
func (c CubicBez) End() r3.Vec   { return c.P3 }

func (c CubicBez) Subsegment(t0, t1 float64) CubicBez {
	p0 := c.Eval(t0)
	p3 := c.Eval(t1)
	d := c.Differentiate()
	scale := (t1 - t0) * (1.0 / 3.0)
	p1 := r3.Add(p0, r3.Scale(scale, d.Eval(t0)))
	p2 := r3.Sub(p3, r3.Scale(scale, d.Eval(t1)))
	return CubicBez{p0, p1, p2, p3}
}

// Differentiate returns the derivative of the curve, which is a quadratic
// Bézier in vector space.
func (c CubicBez) Differentiate() QuadBez {
	return QuadBez{
		r3.Scale(3, r3.Sub(c.P1, c.P0)),
		r3.Scale(3, r3.Sub(c.P2, c.P1)),
		r3.Scale(3, r3.Sub(c.P3, c.P2)),
	}
}
