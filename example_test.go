package ptframe_test

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"honnef.co/go/ptframe"
)

func ExampleEvaluate() {
	// A curve of length 10, stretched to twice its rest length.
	curve := ptframe.NewCurveQuery(ptframe.Line{
		P0: ptframe.Vec(0, 0, 0),
		P1: ptframe.Vec(0, 10, 0),
	}, ptframe.DefaultAccuracy)

	start, err := ptframe.StartFrame(mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}))
	if err != nil {
		panic(err)
	}

	res, err := ptframe.Evaluate(ptframe.Inputs{
		Curve:         curve,
		Samples:       []float64{0, 0.5, 1},
		Start:         start,
		RestLength:    5,
		Scale:         ptframe.Constant(1),
		AbsoluteParam: true,
	})
	if err != nil {
		panic(err)
	}
	for i, s := range res.All() {
		fmt.Printf("%d: translate (%.1f, %.1f, %.1f) scale %.4f\n",
			i, s.Translation.X, s.Translation.Y, s.Translation.Z, s.Scale)
	}
	// Output:
	// 0: translate (0.0, 0.0, 0.0) scale 0.7071
	// 1: translate (0.0, 5.0, 0.0) scale 0.7071
	// 2: translate (0.0, 10.0, 0.0) scale 0.7071
}

func ExampleTransport() {
	// Turning the tangent from +Y to +X rotates the normal by the same
	// quarter turn about -Z.
	next := ptframe.Transport(ptframe.Identity, ptframe.XAxis)
	round := func(v r3.Vec) r3.Vec {
		return r3.Vec{X: math.Round(v.X) + 0, Y: math.Round(v.Y) + 0, Z: math.Round(v.Z) + 0}
	}
	fmt.Println(round(next.Normal), round(next.Tangent), round(next.Binormal))
	// Output:
	// {0 -1 0} {1 0 0} {0 0 1}
}

func ExampleNewRamp() {
	r, err := ptframe.NewRamp(
		ptframe.RampKey{Position: 0, Value: 0, Interp: ptframe.Linear},
		ptframe.RampKey{Position: 0.5, Value: 90, Interp: ptframe.None},
		ptframe.RampKey{Position: 1, Value: 180},
	)
	if err != nil {
		panic(err)
	}
	for _, pos := range []float64{0.25, 0.5, 0.75, 1} {
		v, _ := r.ValueAt(pos)
		fmt.Println(v)
	}
	// Output:
	// 45
	// 90
	// 90
	// 180
}
