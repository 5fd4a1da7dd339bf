package ptframe

import (
	"errors"
	"fmt"
	"iter"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Inputs are the inputs of a single evaluation. The zero values of the
// optional fields select: no twist, no scale response, samples as curve
// parameters, and the XYZ rotation order.
type Inputs struct {
	Curve Curve
	// Samples are evaluated in order. With AbsoluteParam they are fractions
	// of the curve's length, otherwise parameters of the curve.
	Samples []float64
	// Start seeds the propagation. Only its normal and tangent are used.
	// See [StartFrame] for obtaining it from a transform matrix.
	Start Basis
	// RestLength is the length at which the curve has no stretch. It must not
	// be negative.
	RestLength float64
	// Twist is evaluated at each sample's curve parameter and gives an angle
	// in degrees about the tangent.
	Twist Response
	// Scale is evaluated at each sample's curve parameter and weights the
	// stretch compensation.
	Scale Response
	// AbsoluteParam selects the interpretation of Samples.
	AbsoluteParam bool
	// Order is the rotation order of the rotations in the result.
	Order RotationOrder
}

// Result holds the outputs of an evaluation. All slices have one entry per
// sample, in sample order.
type Result struct {
	Translations []r3.Vec
	// Rotations are in radians, in the rotation order of the evaluation, and
	// include the twist.
	Rotations []Euler
	Scales    []float64
	// Frames are the transported frames, before twist is applied.
	Frames []Basis
	// Params are the resolved curve parameters.
	Params []float64
}

// Len returns the number of samples in the result.
func (r Result) Len() int { return len(r.Translations) }

// Sample is the output of a single sample.
type Sample struct {
	Param       float64
	Translation r3.Vec
	Rotation    Euler
	Scale       float64
	Frame       Basis
}

// At returns the output of the i-th sample.
func (r Result) At(i int) Sample {
	return Sample{
		Param:       r.Params[i],
		Translation: r.Translations[i],
		Rotation:    r.Rotations[i],
		Scale:       r.Scales[i],
		Frame:       r.Frames[i],
	}
}

// All iterates over the samples of the result, in order.
func (r Result) All() iter.Seq2[int, Sample] {
	return func(yield func(int, Sample) bool) {
		for i := range r.Len() {
			if !yield(i, r.At(i)) {
				return
			}
		}
	}
}

// Transport carries prev to a point on the curve whose unit tangent is
// tangent, using the smallest rotation that turns prev's tangent into the
// new one. The result is orthonormal.
//
// The rotation axis is prev.Tangent × tangent, so that the rotation turns the
// old tangent towards the new one. Formulations that write the axis as
// tangent × prevTangent rotate by the same angle in the opposite sense of
// their coordinate convention and describe the same transport.
//
// When the tangents are parallel or exactly opposite, the normal is carried
// over unchanged. In the opposite case the resulting frame flips its
// binormal; no attempt is made to pick a rotation for a full reversal.
func Transport(prev Basis, tangent r3.Vec) Basis {
	normal := prev.Normal
	axis := r3.Cross(prev.Tangent, tangent)
	if l := r3.Norm(axis); l != 0 {
		theta := math.Acos(clamp(r3.Dot(prev.Tangent, tangent), -1, 1))
		normal = r3.NewRotation(theta, r3.Scale(1/l, axis)).Rotate(normal)
	}
	binormal := r3.Unit(r3.Cross(normal, tangent))
	return Basis{
		Normal:   r3.Cross(tangent, binormal),
		Tangent:  tangent,
		Binormal: binormal,
	}
}

var errInvalidOrder = errors.New("invalid rotation order")

// Evaluate propagates a parallel transport frame along in.Curve and returns
// the translation, rotation and scale at every sample.
//
// The frame starts out as in.Start and is transported from sample to sample
// in order, so the result depends on the order of the samples. Each sample's
// rotation is its transported frame twisted by in.Twist degrees about the
// tangent. Its scale compensates for stretch relative to in.RestLength,
// preserving volume: with a curve of length L, the scale is
//
//	max(0, 1 + (sqrt(RestLength/L) - 1) * Scale(param))
//
// The first failing query aborts the evaluation. Its error is a
// [*QueryError] and no partial result is returned. An evaluation without
// samples always succeeds and does not query the curve.
//
// Evaluate holds no state between calls and may be called concurrently, as
// long as the curve and responses are safe for concurrent use.
func Evaluate(in Inputs) (Result, error) {
	if len(in.Samples) == 0 {
		return Result{}, nil
	}
	if in.Curve == nil {
		return Result{}, fmt.Errorf("%w: no curve", ErrInvalidCurve)
	}
	if !isFiniteFloat(in.RestLength) || in.RestLength < 0 {
		return Result{}, fmt.Errorf("%w: %g", ErrInvalidRestLength, in.RestLength)
	}
	if in.Order < XYZ || in.Order > ZYX {
		return Result{}, fmt.Errorf("%w: %d", errInvalidOrder, int(in.Order))
	}
	frame, err := in.Start.orthonormalize()
	if err != nil {
		return Result{}, err
	}

	length, err := in.Curve.Length()
	if err != nil {
		return Result{}, &QueryError{Op: "length", Index: -1, Err: err}
	}
	if !isFiniteFloat(length) || length <= 0 {
		return Result{}, fmt.Errorf("%w: length is %g", ErrInvalidCurve, length)
	}
	lengthRatio := math.Sqrt(in.RestLength/length) - 1

	n := len(in.Samples)
	res := Result{
		Translations: make([]r3.Vec, n),
		Rotations:    make([]Euler, n),
		Scales:       make([]float64, n),
		Frames:       make([]Basis, n),
		Params:       make([]float64, n),
	}
	for i, raw := range in.Samples {
		param := raw
		if in.AbsoluteParam {
			param, err = in.Curve.ParamFromLength(length * raw)
			if err != nil {
				return Result{}, &QueryError{Op: "param from length", Index: i, Param: raw, Err: err}
			}
		}
		pos, err := in.Curve.PointAt(param)
		if err != nil {
			return Result{}, &QueryError{Op: "point", Index: i, Param: param, Err: err}
		}
		tangent, err := in.Curve.TangentAt(param)
		if err != nil {
			return Result{}, &QueryError{Op: "tangent", Index: i, Param: param, Err: err}
		}
		l := r3.Norm(tangent)
		if !isFiniteFloat(l) || l == 0 {
			return Result{}, &QueryError{Op: "tangent", Index: i, Param: param, Err: ErrZeroTangent}
		}
		tangent = r3.Scale(1/l, tangent)
		twist, err := responseAt(in.Twist, param)
		if err != nil {
			return Result{}, &QueryError{Op: "twist", Index: i, Param: param, Err: err}
		}
		weight, err := responseAt(in.Scale, param)
		if err != nil {
			return Result{}, &QueryError{Op: "scale", Index: i, Param: param, Err: err}
		}

		frame = Transport(frame, tangent)

		res.Params[i] = param
		res.Translations[i] = pos
		res.Frames[i] = frame
		res.Rotations[i] = EulerFromBasis(frame.Twist(twist*degToRad), in.Order)
		res.Scales[i] = max(0, 1+lengthRatio*weight)
	}
	return res, nil
}

// responseAt evaluates r and rejects non-finite values.
func responseAt(r Response, pos float64) (float64, error) {
	v, err := valueAt(r, pos)
	if err != nil {
		return 0, err
	}
	f := float64(v)
	if !isFiniteFloat(f) {
		return 0, fmt.Errorf("value %g: %w", f, ErrNonFinite)
	}
	return f, nil
}
