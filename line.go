package ptframe

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Line represents a line segment. It is a [ParametricCurve] on [0, 1].
type Line struct {
	// The line's start point.
	P0 r3.Vec
	// The line's end point.
	P1 r3.Vec
}

var _ ParametricCurve = Line{}
var _ RangeArclener = Line{}
var _ ArclenSolver = Line{}

// Length returns the length of the line.
func (l Line) Length() float64 {
	return r3.Norm(r3.Sub(l.P1, l.P0))
}

// Arclen returns the length of the line
func (l Line) Arclen(accuracy float64) float64 {
	return l.Length()
}

func (l Line) ArclenRange(t0, t1, accuracy float64) float64 {
	return (t1 - t0) * l.Length()
}

func (l Line) SolveForArclen(arclen float64, accuracy float64) float64 {
	length := l.Length()
	if length == 0 {
		return 0
	}
	return clamp(arclen/length, 0, 1)
}

func (l Line) Eval(t float64) r3.Vec {
	return lerp(l.P0, l.P1, t)
}

func (l Line) Deriv(t float64) r3.Vec {
	return r3.Sub(l.P1, l.P0)
}

func (l Line) Domain() (float64, float64) { return 0, 1 }

func (l Line) Start() r3.Vec { return l.P0 }
func (l Line) End() r3.Vec   { return l.P1 }

func (l Line) Subsegment(start, end float64) Line {
	return Line{l.Eval(start), l.Eval(end)}
}

func (l Line) IsFinite() bool {
	return isFinite(l.P0) && isFinite(l.P1)
}
