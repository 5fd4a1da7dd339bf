package ptframe

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/spatial/r3"
)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

// approx compares floats, and therefore vectors, bases and angles, with an
// absolute tolerance.
func approx(margin float64) cmp.Option {
	return cmpopts.EquateApprox(0, margin)
}

func assertNear(t *testing.T, got, want, epsilon float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("got %g, want %g (±%g)", got, want, epsilon)
	}
}

func assertVecNear(t *testing.T, got, want r3.Vec, epsilon float64) {
	t.Helper()
	if d := r3.Norm(r3.Sub(got, want)); d > epsilon {
		t.Errorf("got %s, want %s (distance %g)", formatVec(got), formatVec(want), d)
	}
}
