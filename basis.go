package ptframe

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Basis is an orthonormal frame at a point on a curve.
//
// Read as a matrix, the basis has the rows [Normal, Tangent, Binormal]: the
// local X axis maps to the normal, the local Y axis to the tangent and the
// local Z axis to the binormal. A well-formed basis is right-handed, that is,
// Normal × Tangent = Binormal.
type Basis struct {
	Normal   r3.Vec
	Tangent  r3.Vec
	Binormal r3.Vec
}

// Identity is the basis whose axes coincide with the coordinate axes.
var Identity = Basis{Normal: XAxis, Tangent: YAxis, Binormal: ZAxis}

func (b Basis) String() string {
	return fmt.Sprintf("[N %s, T %s, B %s]",
		formatVec(b.Normal), formatVec(b.Tangent), formatVec(b.Binormal))
}

// axis returns the image of the i-th local axis.
func (b Basis) axis(i int) r3.Vec {
	switch i {
	case 0:
		return b.Normal
	case 1:
		return b.Tangent
	case 2:
		return b.Binormal
	default:
		panic(fmt.Sprintf("invalid axis %d", i))
	}
}

// at returns element (r, c) of the rotation matrix that maps column vectors
// from local to world space. It is the transpose of the row layout used by
// [Basis.Matrix].
func (b Basis) at(r, c int) float64 {
	return component(b.axis(c), r)
}

// Matrix returns the basis as a 3×3 matrix with rows [Normal, Tangent,
// Binormal].
func (b Basis) Matrix() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		b.Normal.X, b.Normal.Y, b.Normal.Z,
		b.Tangent.X, b.Tangent.Y, b.Tangent.Z,
		b.Binormal.X, b.Binormal.Y, b.Binormal.Z,
	})
}

// Rotate applies rot to all three axes.
func (b Basis) Rotate(rot r3.Rotation) Basis {
	return Basis{
		Normal:   rot.Rotate(b.Normal),
		Tangent:  rot.Rotate(b.Tangent),
		Binormal: rot.Rotate(b.Binormal),
	}
}

// Twist rotates the basis about its own tangent by angle radians. This is an
// object-space rotation about the local Y axis: the tangent is unchanged and a
// positive angle turns the normal towards the negated binormal.
func (b Basis) Twist(angle float64) Basis {
	if angle == 0 {
		return b
	}
	return b.Rotate(r3.NewRotation(angle, b.Tangent))
}

// IsOrthonormal reports whether all axes have unit length and are mutually
// orthogonal, within tol.
func (b Basis) IsOrthonormal(tol float64) bool {
	for _, v := range [...]r3.Vec{b.Normal, b.Tangent, b.Binormal} {
		if math.Abs(r3.Norm(v)-1) > tol {
			return false
		}
	}
	return math.Abs(r3.Dot(b.Normal, b.Tangent)) <= tol &&
		math.Abs(r3.Dot(b.Normal, b.Binormal)) <= tol &&
		math.Abs(r3.Dot(b.Tangent, b.Binormal)) <= tol
}

// orthonormalize turns the normal and tangent seeds of b into a right-handed
// orthonormal basis. The tangent keeps its direction; the normal is made
// orthogonal to it. The binormal of b is ignored.
func (b Basis) orthonormalize() (Basis, error) {
	if !isFinite(b.Normal) || !isFinite(b.Tangent) {
		return Basis{}, fmt.Errorf("%w: non-finite axis", ErrInvalidStartFrame)
	}
	tl := r3.Norm(b.Tangent)
	nl := r3.Norm(b.Normal)
	if tl == 0 || nl == 0 {
		return Basis{}, fmt.Errorf("%w: zero-length axis", ErrInvalidStartFrame)
	}
	t := r3.Scale(1/tl, b.Tangent)
	n := r3.Scale(1/nl, b.Normal)
	n = r3.Sub(n, r3.Scale(r3.Dot(n, t), t))
	// The seeds must span a plane for the normal to survive Gram-Schmidt.
	if r3.Norm(n) < 1e-9 {
		return Basis{}, fmt.Errorf("%w: normal is parallel to tangent", ErrInvalidStartFrame)
	}
	n = r3.Unit(n)
	return Basis{
		Normal:   n,
		Tangent:  t,
		Binormal: r3.Cross(n, t),
	}, nil
}

// StartFrame derives the seed basis of a propagation from a transform
// matrix. Rows 0 and 1 of m are read as the normal and the tangent; m is
// usually a 4×4 world matrix, but any matrix with at least two rows and three
// columns is accepted. Scale in the matrix is normalized away and the normal
// is made orthogonal to the tangent.
func StartFrame(m mat.Matrix) (Basis, error) {
	if m == nil {
		return Basis{}, fmt.Errorf("%w: no matrix", ErrInvalidStartFrame)
	}
	r, c := m.Dims()
	if r < 2 || c < 3 {
		return Basis{}, fmt.Errorf("%w: matrix is %d×%d, need at least 2×3", ErrInvalidStartFrame, r, c)
	}
	seed := Basis{
		Normal:  Vec(m.At(0, 0), m.At(0, 1), m.At(0, 2)),
		Tangent: Vec(m.At(1, 0), m.At(1, 1), m.At(1, 2)),
	}
	return seed.orthonormalize()
}
