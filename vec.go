package ptframe

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const degToRad = math.Pi / 180

// Unit vectors along the coordinate axes.
var (
	XAxis = r3.Vec{X: 1}
	YAxis = r3.Vec{Y: 1}
	ZAxis = r3.Vec{Z: 1}
)

// Vec returns the vector ⟨x, y, z⟩.
func Vec(x, y, z float64) r3.Vec {
	return r3.Vec{X: x, Y: y, Z: z}
}

func formatVec(v r3.Vec) string {
	return fmt.Sprintf("⟨%g, %g, %g⟩", v.X, v.Y, v.Z)
}

// lerp linearly interpolates between two vectors.
func lerp(a, b r3.Vec, t float64) r3.Vec {
	// a + t * (b-a)
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

func isFinite(v r3.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsNaN(v.Z) &&
		!math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0) && !math.IsInf(v.Z, 0)
}

func isFiniteFloat(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func clamp(x, lo, hi float64) float64 {
	return max(lo, min(x, hi))
}

// component returns the i-th coordinate of v.
func component(v r3.Vec, i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	case 2:
		return v.Z
	default:
		panic(fmt.Sprintf("invalid axis %d", i))
	}
}
