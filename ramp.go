package ptframe

import (
	"fmt"
	"slices"
	"strings"

	"gonum.org/v1/gonum/interp"
)

// Interpolation selects how a [Ramp] interpolates between a key and the key
// that follows it.
type Interpolation int

const (
	// None holds the value of the key until the next key.
	None Interpolation = iota
	Linear
	// Smooth eases in and out of both keys.
	Smooth
	// Spline fits a smooth curve through the neighbouring keys.
	Spline
)

var interpolationNames = [...]string{
	None:   "none",
	Linear: "linear",
	Smooth: "smooth",
	Spline: "spline",
}

func (i Interpolation) String() string {
	if i < 0 || int(i) >= len(interpolationNames) {
		return fmt.Sprintf("Interpolation(%d)", int(i))
	}
	return interpolationNames[i]
}

// ParseInterpolation parses an interpolation name such as "linear".
func ParseInterpolation(s string) (Interpolation, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range interpolationNames {
		if name == s {
			return Interpolation(i), nil
		}
	}
	return 0, fmt.Errorf("unknown interpolation %q", s)
}

// RampKey is a control point of a [Ramp].
type RampKey struct {
	Position float64
	Value    float32
	// Interp controls the segment between this key and the next one.
	Interp Interpolation
}

var _ Response = Ramp{}

// Ramp is a response curve defined by keys, in the style of the ramp
// attributes of animation packages.
//
// Positions are clamped to [0, 1] before evaluation. Before the first key the
// ramp has the first key's value and after the last key it has the last key's
// value. A ramp without keys is zero everywhere.
type Ramp struct {
	keys   []RampKey
	linear interp.PiecewiseLinear
	spline interp.AkimaSpline
	// hasSpline is set when spline has been fitted through all keys.
	hasSpline bool
}

// NewRamp returns a ramp through the given keys. The keys need not be
// sorted, but no two keys may share a position. Positions and values must be
// finite.
func NewRamp(keys ...RampKey) (Ramp, error) {
	keys = slices.Clone(keys)
	for i, k := range keys {
		if !isFiniteFloat(k.Position) || !isFiniteFloat(float64(k.Value)) {
			return Ramp{}, fmt.Errorf("%w: key %d is not finite", ErrInvalidRamp, i)
		}
		if k.Interp < None || k.Interp > Spline {
			return Ramp{}, fmt.Errorf("%w: key %d has %s", ErrInvalidRamp, i, k.Interp)
		}
	}
	slices.SortStableFunc(keys, func(a, b RampKey) int {
		switch {
		case a.Position < b.Position:
			return -1
		case a.Position > b.Position:
			return 1
		default:
			return 0
		}
	})
	for i := 1; i < len(keys); i++ {
		if keys[i].Position == keys[i-1].Position {
			return Ramp{}, fmt.Errorf("%w: duplicate position %g", ErrInvalidRamp, keys[i].Position)
		}
	}

	r := Ramp{keys: keys}
	if len(keys) < 2 {
		return r, nil
	}
	xs := make([]float64, len(keys))
	ys := make([]float64, len(keys))
	for i, k := range keys {
		xs[i] = k.Position
		ys[i] = float64(k.Value)
	}
	if err := r.linear.Fit(xs, ys); err != nil {
		return Ramp{}, fmt.Errorf("%w: %w", ErrInvalidRamp, err)
	}
	// Akima splines need at least three points to differ from a line.
	if len(keys) >= 3 && slices.ContainsFunc(keys[:len(keys)-1], func(k RampKey) bool { return k.Interp == Spline }) {
		if err := r.spline.Fit(xs, ys); err != nil {
			return Ramp{}, fmt.Errorf("%w: %w", ErrInvalidRamp, err)
		}
		r.hasSpline = true
	}
	return r, nil
}

// MustRamp is like [NewRamp] but panics on error.
func MustRamp(keys ...RampKey) Ramp {
	r, err := NewRamp(keys...)
	if err != nil {
		panic(err)
	}
	return r
}

// Keys returns the keys of the ramp, sorted by position.
func (r Ramp) Keys() []RampKey { return slices.Clone(r.keys) }

func (r Ramp) ValueAt(pos float64) (float32, error) {
	if !isFiniteFloat(pos) {
		return 0, fmt.Errorf("position %g: %w", pos, ErrNonFinite)
	}
	n := len(r.keys)
	switch n {
	case 0:
		return 0, nil
	case 1:
		return r.keys[0].Value, nil
	}
	pos = clamp(pos, 0, 1)
	if pos <= r.keys[0].Position {
		return r.keys[0].Value, nil
	}
	if pos >= r.keys[n-1].Position {
		return r.keys[n-1].Value, nil
	}
	// First key strictly after pos; i >= 1 given the checks above.
	i, _ := slices.BinarySearchFunc(r.keys, pos, func(k RampKey, p float64) int {
		switch {
		case k.Position <= p:
			return -1
		default:
			return 1
		}
	})
	k0, k1 := r.keys[i-1], r.keys[i]
	switch k0.Interp {
	case None:
		return k0.Value, nil
	case Smooth:
		u := (pos - k0.Position) / (k1.Position - k0.Position)
		u = u * u * (3 - 2*u)
		v0, v1 := float64(k0.Value), float64(k1.Value)
		return float32(v0 + (v1-v0)*u), nil
	case Spline:
		if r.hasSpline {
			return float32(r.spline.Predict(pos)), nil
		}
		return float32(r.linear.Predict(pos)), nil
	default:
		return float32(r.linear.Predict(pos)), nil
	}
}
