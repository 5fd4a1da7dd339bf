package ptframe

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestStartFrameIdentity(t *testing.T) {
	m := mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		5, 6, 7, 1,
	})
	b, err := StartFrame(m)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, Identity, b)
}

func TestStartFrameNormalizes(t *testing.T) {
	// Scaled and sheared; the tangent keeps its direction.
	m := mat.NewDense(3, 3, []float64{
		0, 0, 3,
		0, 2, 1,
		9, 9, 9,
	})
	b, err := StartFrame(m)
	if err != nil {
		t.Fatal(err)
	}
	if !b.IsOrthonormal(1e-12) {
		t.Errorf("%s is not orthonormal", b)
	}
	s := 1 / math.Sqrt(5)
	assertVecNear(t, b.Tangent, Vec(0, 2*s, s), 1e-12)
	assertVecNear(t, b.Normal, Vec(0, -s, 2*s), 1e-12)
	// Binormal = Normal × Tangent.
	assertVecNear(t, b.Binormal, Vec(-1, 0, 0), 1e-12)
}

func TestStartFrameErrors(t *testing.T) {
	tests := []struct {
		name string
		m    mat.Matrix
	}{
		{"nil", nil},
		{"too small", mat.NewDense(1, 3, []float64{1, 0, 0})},
		{"zero normal", mat.NewDense(2, 3, []float64{0, 0, 0, 0, 1, 0})},
		{"zero tangent", mat.NewDense(2, 3, []float64{1, 0, 0, 0, 0, 0})},
		{"parallel", mat.NewDense(2, 3, []float64{0, 2, 0, 0, 1, 0})},
		{"nan", mat.NewDense(2, 3, []float64{math.NaN(), 0, 0, 0, 1, 0})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := StartFrame(tt.m); !errors.Is(err, ErrInvalidStartFrame) {
				t.Errorf("got %v, want %v", err, ErrInvalidStartFrame)
			}
		})
	}
}

func TestBasisTwist(t *testing.T) {
	b := Identity.Twist(math.Pi / 2)
	assertVecNear(t, b.Tangent, YAxis, 1e-12)
	assertVecNear(t, b.Normal, Vec(0, 0, -1), 1e-12)
	assertVecNear(t, b.Binormal, XAxis, 1e-12)

	if got := Identity.Twist(0); got != Identity {
		t.Errorf("got %s, want %s", got, Identity)
	}
}

func TestBasisMatrix(t *testing.T) {
	b := Basis{Normal: Vec(0, 0, -1), Tangent: YAxis, Binormal: XAxis}
	want := mat.NewDense(3, 3, []float64{
		0, 0, -1,
		0, 1, 0,
		1, 0, 0,
	})
	if !mat.Equal(b.Matrix(), want) {
		t.Errorf("got %v, want %v", mat.Formatted(b.Matrix()), mat.Formatted(want))
	}
	// The matrix is orthogonal.
	var prod mat.Dense
	prod.Mul(b.Matrix(), b.Matrix().T())
	if !mat.EqualApprox(&prod, mat.NewDiagDense(3, []float64{1, 1, 1}), 1e-12) {
		t.Errorf("M·Mᵀ = %v", mat.Formatted(&prod))
	}
}

func TestBasisIsOrthonormal(t *testing.T) {
	if !Identity.IsOrthonormal(0) {
		t.Error("identity is not orthonormal")
	}
	if (Basis{Normal: Vec(2, 0, 0), Tangent: YAxis, Binormal: ZAxis}).IsOrthonormal(1e-6) {
		t.Error("scaled basis is orthonormal")
	}
	if (Basis{Normal: Vec(1, 0.1, 0), Tangent: YAxis, Binormal: ZAxis}).IsOrthonormal(1e-6) {
		t.Error("skewed basis is orthonormal")
	}
}
