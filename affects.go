package ptframe

import (
	"fmt"
	"slices"
)

// Input identifies an input of an evaluation for dependency tracking.
type Input int

const (
	InputCurve Input = iota
	InputSamples
	InputStart
	InputRestLength
	InputTwist
	InputScale
	InputAbsoluteParam
	InputOrder
)

// Output identifies an output of an evaluation for dependency tracking.
type Output int

const (
	OutputTranslate Output = iota
	OutputRotate
	OutputScale
)

var inputNames = [...]string{
	InputCurve:         "curve",
	InputSamples:       "samples",
	InputStart:         "startMatrix",
	InputRestLength:    "restLength",
	InputTwist:         "twist",
	InputScale:         "scale",
	InputAbsoluteParam: "absoluteParam",
	InputOrder:         "rotateOrder",
}

var outputNames = [...]string{
	OutputTranslate: "outTranslate",
	OutputRotate:    "outRotate",
	OutputScale:     "outScale",
}

func (in Input) String() string {
	if in < 0 || int(in) >= len(inputNames) {
		return fmt.Sprintf("Input(%d)", int(in))
	}
	return inputNames[in]
}

func (out Output) String() string {
	if out < 0 || int(out) >= len(outputNames) {
		return fmt.Sprintf("Output(%d)", int(out))
	}
	return outputNames[out]
}

// AllInputs and AllOutputs list all inputs and outputs, in declaration order.
var (
	AllInputs  = []Input{InputCurve, InputSamples, InputStart, InputRestLength, InputTwist, InputScale, InputAbsoluteParam, InputOrder}
	AllOutputs = []Output{OutputTranslate, OutputRotate, OutputScale}
)

// affects is the static dependency table. Translations are listed as
// depending on the start frame and rest length, although their values never
// change with them.
var affects = map[Input][]Output{
	InputCurve:         {OutputTranslate, OutputRotate, OutputScale},
	InputSamples:       {OutputTranslate, OutputRotate, OutputScale},
	InputStart:         {OutputTranslate, OutputRotate, OutputScale},
	InputRestLength:    {OutputTranslate, OutputRotate, OutputScale},
	InputAbsoluteParam: {OutputTranslate, OutputRotate, OutputScale},
	InputTwist:         {OutputRotate},
	InputScale:         {OutputScale},
	InputOrder:         {OutputRotate},
}

// Affects returns the outputs whose values may change when in changes.
func Affects(in Input) []Output {
	return slices.Clone(affects[in])
}

// AffectedBy returns the inputs that out depends on, in declaration order.
func AffectedBy(out Output) []Input {
	var ins []Input
	for _, in := range AllInputs {
		if slices.Contains(affects[in], out) {
			ins = append(ins, in)
		}
	}
	return ins
}
