package ptframe

// Response maps a position on the curve to a scalar, such as a twist angle
// or a scale multiplier. Implementations must be deterministic and free of
// side effects, and safe for concurrent use.
type Response interface {
	ValueAt(pos float64) (float32, error)
}

// Constant is a [Response] that has the same value everywhere.
type Constant float32

func (c Constant) ValueAt(float64) (float32, error) { return float32(c), nil }

// ResponseFunc adapts an ordinary function to the [Response] interface.
type ResponseFunc func(pos float64) (float32, error)

func (f ResponseFunc) ValueAt(pos float64) (float32, error) { return f(pos) }

// valueAt evaluates r, treating a nil response as zero everywhere.
func valueAt(r Response, pos float64) (float32, error) {
	if r == nil {
		return 0, nil
	}
	return r.ValueAt(pos)
}
