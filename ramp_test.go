package ptframe

import (
	"errors"
	"math"
	"testing"
)

func rampValues(t *testing.T, r Ramp, positions ...float64) []float32 {
	t.Helper()
	out := make([]float32, len(positions))
	for i, pos := range positions {
		v, err := r.ValueAt(pos)
		if err != nil {
			t.Fatalf("ValueAt(%g): %s", pos, err)
		}
		out[i] = v
	}
	return out
}

func TestRampLinear(t *testing.T) {
	r := MustRamp(
		RampKey{Position: 0, Value: 0, Interp: Linear},
		RampKey{Position: 0.5, Value: 2, Interp: Linear},
		RampKey{Position: 1, Value: 1, Interp: Linear},
	)
	diff(t, []float32{0, 1, 2, 1.5, 1}, rampValues(t, r, 0, 0.25, 0.5, 0.75, 1))
}

func TestRampNone(t *testing.T) {
	r := MustRamp(
		RampKey{Position: 0.2, Value: 3, Interp: None},
		RampKey{Position: 0.6, Value: 5, Interp: None},
	)
	diff(t, []float32{3, 3, 3, 5, 5}, rampValues(t, r, 0, 0.2, 0.5999, 0.6, 1))
}

func TestRampSmooth(t *testing.T) {
	r := MustRamp(
		RampKey{Position: 0, Value: 0, Interp: Smooth},
		RampKey{Position: 1, Value: 1},
	)
	got := rampValues(t, r, 0, 0.25, 0.5, 0.75, 1)
	diff(t, []float32{0, 0.15625, 0.5, 0.84375, 1}, got, approx(1e-6))
}

func TestRampSpline(t *testing.T) {
	keys := []RampKey{
		{Position: 0, Value: 0, Interp: Spline},
		{Position: 0.3, Value: 1, Interp: Spline},
		{Position: 0.7, Value: -1, Interp: Spline},
		{Position: 1, Value: 0.5, Interp: Spline},
	}
	r := MustRamp(keys...)
	// The spline passes through its keys.
	for _, k := range keys {
		v, err := r.ValueAt(k.Position)
		if err != nil {
			t.Fatal(err)
		}
		assertNear(t, float64(v), float64(k.Value), 1e-6)
	}
	// And is continuous.
	const h = 1e-7
	for _, pos := range []float64{0.1, 0.3, 0.5, 0.7, 0.9} {
		a := rampValues(t, r, pos-h, pos+h)
		assertNear(t, float64(a[0]), float64(a[1]), 1e-4)
	}

	// With only two keys a spline segment is a line.
	r = MustRamp(RampKey{Position: 0, Value: 0, Interp: Spline}, RampKey{Position: 1, Value: 2})
	diff(t, []float32{1}, rampValues(t, r, 0.5))
}

func TestRampMixed(t *testing.T) {
	r := MustRamp(
		RampKey{Position: 0, Value: 0, Interp: Linear},
		RampKey{Position: 0.5, Value: 1, Interp: None},
		RampKey{Position: 1, Value: 3},
	)
	diff(t, []float32{0.5, 1, 1}, rampValues(t, r, 0.25, 0.5, 0.75))
}

func TestRampClamping(t *testing.T) {
	r := MustRamp(
		RampKey{Position: 0.25, Value: 1, Interp: Linear},
		RampKey{Position: 0.75, Value: 3, Interp: Linear},
	)
	diff(t, []float32{1, 1, 2, 3, 3}, rampValues(t, r, -5, 0.1, 0.5, 0.9, 7))

	// Keys outside of [0, 1] are only reachable at the clamped positions.
	r = MustRamp(
		RampKey{Position: 0, Value: 0, Interp: Linear},
		RampKey{Position: 2, Value: 2, Interp: Linear},
	)
	diff(t, []float32{1}, rampValues(t, r, 5))
}

func TestRampUnsorted(t *testing.T) {
	r := MustRamp(
		RampKey{Position: 1, Value: 10},
		RampKey{Position: 0, Value: 0, Interp: Linear},
	)
	diff(t, []float32{5}, rampValues(t, r, 0.5))
	diff(t, []RampKey{{Position: 0, Value: 0, Interp: Linear}, {Position: 1, Value: 10}}, r.Keys())
}

func TestRampDegenerate(t *testing.T) {
	empty := MustRamp()
	diff(t, []float32{0, 0}, rampValues(t, empty, 0, 1))

	single := MustRamp(RampKey{Position: 0.4, Value: 7})
	diff(t, []float32{7, 7, 7}, rampValues(t, single, 0, 0.4, 1))

	var zero Ramp
	diff(t, []float32{0}, rampValues(t, zero, 0.5))
}

func TestRampErrors(t *testing.T) {
	tests := []struct {
		name string
		keys []RampKey
	}{
		{"duplicate", []RampKey{{Position: 0.5}, {Position: 0.5, Value: 1}}},
		{"nan position", []RampKey{{Position: math.NaN()}}},
		{"inf value", []RampKey{{Position: 0, Value: float32(math.Inf(1))}}},
		{"interpolation", []RampKey{{Position: 0, Interp: Interpolation(9)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRamp(tt.keys...); !errors.Is(err, ErrInvalidRamp) {
				t.Errorf("got %v, want %v", err, ErrInvalidRamp)
			}
		})
	}

	r := MustRamp(RampKey{Position: 0}, RampKey{Position: 1})
	if _, err := r.ValueAt(math.NaN()); !errors.Is(err, ErrNonFinite) {
		t.Errorf("got %v, want %v", err, ErrNonFinite)
	}
}

func TestParseInterpolation(t *testing.T) {
	for _, want := range []Interpolation{None, Linear, Smooth, Spline} {
		got, err := ParseInterpolation(want.String())
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("got %s, want %s", got, want)
		}
	}
	if _, err := ParseInterpolation("bezier"); err == nil {
		t.Error("expected error")
	}
}

func TestResponses(t *testing.T) {
	if v, err := valueAt(nil, 0.5); v != 0 || err != nil {
		t.Errorf("got (%g, %v), want (0, nil)", v, err)
	}
	if v, err := valueAt(Constant(4), 0.5); v != 4 || err != nil {
		t.Errorf("got (%g, %v), want (4, nil)", v, err)
	}
	f := ResponseFunc(func(pos float64) (float32, error) { return float32(pos * 2), nil })
	if v, err := valueAt(f, 0.25); v != 0.5 || err != nil {
		t.Errorf("got (%g, %v), want (0.5, nil)", v, err)
	}
}
