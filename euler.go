package ptframe

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// RotationOrder names the order in which the three axis rotations of an
// [Euler] triple are applied to a point. With XYZ, the default, a point is
// first rotated about X, then about Y, then about Z.
type RotationOrder int

const (
	XYZ RotationOrder = iota
	YZX
	ZXY
	XZY
	YXZ
	ZYX
)

var rotationOrderNames = [...]string{
	XYZ: "xyz",
	YZX: "yzx",
	ZXY: "zxy",
	XZY: "xzy",
	YXZ: "yxz",
	ZYX: "zyx",
}

func (o RotationOrder) String() string {
	if o < 0 || int(o) >= len(rotationOrderNames) {
		return fmt.Sprintf("RotationOrder(%d)", int(o))
	}
	return rotationOrderNames[o]
}

// ParseRotationOrder parses a rotation order name such as "xyz" or "ZYX".
func ParseRotationOrder(s string) (RotationOrder, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for o, name := range rotationOrderNames {
		if name == s {
			return RotationOrder(o), nil
		}
	}
	return 0, fmt.Errorf("unknown rotation order %q", s)
}

// axes returns the first, second and third axis of the order, and whether
// the permutation is odd.
func (o RotationOrder) axes() (i, j, k int, odd bool) {
	switch o {
	case XYZ:
		return 0, 1, 2, false
	case YZX:
		return 1, 2, 0, false
	case ZXY:
		return 2, 0, 1, false
	case XZY:
		return 0, 2, 1, true
	case YXZ:
		return 1, 0, 2, true
	case ZYX:
		return 2, 1, 0, true
	default:
		panic(fmt.Sprintf("invalid rotation order %d", int(o)))
	}
}

// Euler holds rotation angles about the X, Y and Z axes, in radians. The
// angles only describe a rotation together with a [RotationOrder].
type Euler struct {
	X float64
	Y float64
	Z float64
}

func (e Euler) String() string {
	return fmt.Sprintf("(%g, %g, %g)", e.X, e.Y, e.Z)
}

// Degrees returns the angles converted to degrees.
func (e Euler) Degrees() Euler {
	return Euler{X: e.X / degToRad, Y: e.Y / degToRad, Z: e.Z / degToRad}
}

func (e Euler) angle(i int) float64 {
	return component(r3.Vec(e), i)
}

func (e *Euler) setAngle(i int, v float64) {
	switch i {
	case 0:
		e.X = v
	case 1:
		e.Y = v
	case 2:
		e.Z = v
	}
}

// gimbalEpsilon is the cosine of the middle angle below which extraction
// treats the rotation as gimbal locked.
const gimbalEpsilon = 1e-12

// EulerFromBasis decomposes the rotation described by b into Euler angles of
// the given order.
//
// Each angle is in [-π, π], with the middle rotation in [-π/2, π/2]. At gimbal
// lock the angle of the last rotation is set to zero and the first one absorbs
// the remaining rotation.
//
// This is Shoemake's decomposition for static-frame Tait-Bryan angles, see
// Graphics Gems IV, "Euler Angle Conversion".
func EulerFromBasis(b Basis, order RotationOrder) Euler {
	i, j, k, odd := order.axes()
	cy := math.Hypot(b.at(i, i), b.at(j, i))
	var a0, a1, a2 float64
	if cy > gimbalEpsilon {
		a0 = math.Atan2(b.at(k, j), b.at(k, k))
		a1 = math.Atan2(-b.at(k, i), cy)
		a2 = math.Atan2(b.at(j, i), b.at(i, i))
	} else {
		a0 = math.Atan2(-b.at(j, k), b.at(j, j))
		a1 = math.Atan2(-b.at(k, i), cy)
		a2 = 0
	}
	if odd {
		a0, a1, a2 = -a0, -a1, -a2
	}
	var e Euler
	e.setAngle(i, a0)
	e.setAngle(j, a1)
	e.setAngle(k, a2)
	return e
}

// Rotation returns the rotation described by e when applied in the given
// order.
func (e Euler) Rotation(order RotationOrder) r3.Rotation {
	i, j, k, _ := order.axes()
	axes := [...]r3.Vec{XAxis, YAxis, ZAxis}
	q := quat.Number{Real: 1}
	for _, ax := range [...]int{i, j, k} {
		// Rotations applied later multiply from the left.
		q = quat.Mul(quat.Number(r3.NewRotation(e.angle(ax), axes[ax])), q)
	}
	return r3.Rotation(q)
}

// Basis returns the basis obtained by rotating [Identity] by e in the given
// order. It is the inverse of [EulerFromBasis].
func (e Euler) Basis(order RotationOrder) Basis {
	return Identity.Rotate(e.Rotation(order))
}
