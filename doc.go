// Package ptframe computes parallel transport frames along 3D curves. It was
// designed for rigging, where objects such as joints or instanced geometry are
// laid out along a curve and need to follow it without twisting, but it is
// general enough to be useful for other applications, such as sweeping
// profiles along paths.
//
// # Parallel transport
//
// A frame along a curve is an orthonormal basis attached to a point on the
// curve. One of its axes, the tangent, follows the direction of the curve; the
// remaining two, the normal and the binormal, are free to rotate about it. The
// Frenet frame fixes the normal to the direction of curvature, which makes it
// flip at inflection points and undefined on straight sections. A parallel
// transport frame, also known as a rotation-minimizing frame, is instead
// carried from one point to the next using the smallest rotation that aligns
// the old tangent with the new one, so it never spins about the tangent
// unless asked to.
//
// Because every frame is derived from the previous one, the frames depend on
// the order in which points are visited. [Evaluate] visits its samples in the
// order they are given and starts from a frame supplied by the caller, which
// is usually read from a transform matrix with [StartFrame]. [Transport]
// performs a single step.
//
// # Outputs
//
// For every sample, [Evaluate] produces a translation, the position on the
// curve; a rotation, the transported frame twisted about the tangent by a
// user-supplied [Response] and decomposed into [Euler] angles; and a scale
// that keeps the volume of a stretched object constant. The stretch is
// measured against a rest length, and can be weighted per sample with a
// second [Response].
//
// [Affects] and [AffectedBy] describe which inputs influence which outputs, so
// that hosts with their own dependency tracking know when to re-evaluate.
//
// # Curves
//
// The propagation only needs four queries of a curve, described by the
// [Curve] interface. [CurveQuery] implements it for any [ParametricCurve] that
// can measure its arc length. This package includes the following curves:
//   - [Line]
//   - [QuadBez]
//   - [CubicBez]
//   - [BSpline]
//
// [ParametricCurve] describes parametrized curves, evaluated at t in a domain
// that is [0, 1] for lines and Béziers and spans the knots of B-splines.
// [Arclener] and [RangeArclener] are implemented by curves that can compute
// their length, and [ArclenSolver] by curves that can efficiently solve for t
// given an arc length. For all other curves, [SolveForArclen] finds t
// numerically.
//
// # Responses
//
// Twist and scale are given by a [Response], a function from a position to a
// value. [Constant] and [ResponseFunc] cover simple cases, and [Ramp]
// implements keyed response curves like those found in animation packages.
// Responses are evaluated at each sample's curve parameter.
//
// # Rotation orders
//
// Rotations are reported as [Euler] angles in radians. The order in which the
// three angles are applied is chosen with a [RotationOrder] and defaults to
// [XYZ], rotating about X first and Z last, in a fixed coordinate system.
//
// # Accuracy
//
// Arc lengths are computed numerically, and functions and methods that do so
// take an accuracy argument. It is expressed in the length units of the curve.
// [DefaultAccuracy] is suitable for curves at the scale of typical scenes.
//
// # Errors
//
// Evaluations either succeed completely or fail without a result. Invalid
// inputs are reported with errors wrapping [ErrInvalidCurve],
// [ErrInvalidStartFrame] or [ErrInvalidRestLength]. Failures of curve and
// response queries are reported as [*QueryError], which matches [ErrQuery]
// as well as the underlying cause.
package ptframe
