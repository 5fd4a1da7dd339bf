package rigfile

import (
	"honnef.co/go/ptframe"
)

// Evaluation is the file and wire representation of an evaluation result.
type Evaluation struct {
	Rig         string `json:"rig" yaml:"rig"`
	RotateOrder string `json:"rotateOrder" yaml:"rotateOrder"`
	// Units is "radians" or "degrees" and applies to Rotate.
	Units   string         `json:"units" yaml:"units"`
	Samples []SampleOutput `json:"samples" yaml:"samples"`
}

// SampleOutput holds the outputs of one sample.
type SampleOutput struct {
	Param     float64    `json:"param" yaml:"param"`
	Translate [3]float64 `json:"translate" yaml:"translate,flow"`
	Rotate    [3]float64 `json:"rotate" yaml:"rotate,flow"`
	Scale     float64    `json:"scale" yaml:"scale"`
}

// NewEvaluation converts a result. Rotations are converted to degrees if
// degrees is set.
func NewEvaluation(name string, order ptframe.RotationOrder, res ptframe.Result, degrees bool) Evaluation {
	ev := Evaluation{
		Rig:         name,
		RotateOrder: order.String(),
		Units:       "radians",
		Samples:     make([]SampleOutput, 0, res.Len()),
	}
	if degrees {
		ev.Units = "degrees"
	}
	for _, s := range res.All() {
		rot := s.Rotation
		if degrees {
			rot = rot.Degrees()
		}
		ev.Samples = append(ev.Samples, SampleOutput{
			Param:     s.Param,
			Translate: [3]float64{s.Translation.X, s.Translation.Y, s.Translation.Z},
			Rotate:    [3]float64{rot.X, rot.Y, rot.Z},
			Scale:     s.Scale,
		})
	}
	return ev
}

// Evaluate loads the inputs of the rig and evaluates them.
func (r *Rig) Evaluate(degrees bool) (Evaluation, error) {
	in, err := r.Inputs()
	if err != nil {
		return Evaluation{}, err
	}
	res, err := ptframe.Evaluate(in)
	if err != nil {
		return Evaluation{}, err
	}
	return NewEvaluation(r.Name, in.Order, res, degrees), nil
}
