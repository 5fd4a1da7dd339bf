// Package rigfile reads rig descriptions, the YAML or JSON files that hold
// everything needed for one evaluation: the curve, the samples, the start
// matrix, the rest length and the twist and scale responses.
package rigfile

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"honnef.co/go/ptframe"
)

// ErrInvalidRig is returned for rigs that cannot be turned into evaluation
// inputs. Curve and ramp problems additionally match the corresponding
// ptframe errors.
var ErrInvalidRig = errors.New("invalid rig")

// Rig is the file representation of an evaluation.
type Rig struct {
	Name string `yaml:"name" json:"name"`
	// Curve is decoded according to its "kind" key, see CurveSpec.
	Curve map[string]any `yaml:"curve" json:"curve"`
	// Samples lists the samples explicitly. Otherwise SampleCount samples are
	// spaced evenly over the curve.
	Samples     []float64 `yaml:"samples,omitempty" json:"samples,omitempty"`
	SampleCount int       `yaml:"sampleCount,omitempty" json:"sampleCount,omitempty"`
	// StartMatrix is a row-major 4×4 or 3×3 matrix. It defaults to the
	// identity.
	StartMatrix []float64 `yaml:"startMatrix,omitempty" json:"startMatrix,omitempty"`
	RestLength  float64   `yaml:"restLength" json:"restLength"`
	Twist       *Response `yaml:"twist,omitempty" json:"twist,omitempty"`
	Scale       *Response `yaml:"scale,omitempty" json:"scale,omitempty"`
	// AbsoluteParam defaults to true.
	AbsoluteParam *bool  `yaml:"absoluteParam,omitempty" json:"absoluteParam,omitempty"`
	RotateOrder   string `yaml:"rotateOrder,omitempty" json:"rotateOrder,omitempty"`
}

// Response is either a constant or a ramp.
type Response struct {
	Constant *float32 `yaml:"constant,omitempty" json:"constant,omitempty"`
	Keys     []Key    `yaml:"keys,omitempty" json:"keys,omitempty"`
}

// Key is a ramp key. Interp defaults to linear.
type Key struct {
	Position float64 `yaml:"position" json:"position"`
	Value    float32 `yaml:"value" json:"value"`
	Interp   string  `yaml:"interp,omitempty" json:"interp,omitempty"`
}

// CurveSpec is the decoded form of Rig.Curve.
//
// Kind is one of "line", "quad", "cubic" and "bspline", taking 2, 3, 4 and
// at least Degree+1 points respectively. Splines default to degree 3 and
// clamped uniform knots.
type CurveSpec struct {
	Kind     string      `mapstructure:"kind"`
	Points   [][]float64 `mapstructure:"points"`
	Degree   int         `mapstructure:"degree"`
	Knots    []float64   `mapstructure:"knots"`
	Accuracy float64     `mapstructure:"accuracy"`
}

// Format is the encoding of a rig file.
type Format int

const (
	YAML Format = iota
	JSON
)

func (f Format) String() string {
	if f == JSON {
		return "json"
	}
	return "yaml"
}

// FormatOf returns the format of a file, based on its extension. Everything
// other than .json is treated as YAML.
func FormatOf(path string) Format {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return JSON
	}
	return YAML
}

// Load reads a rig file (YAML or JSON).
func Load(path string) (*Rig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rig: %w", err)
	}
	rig, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if rig.Name == "" {
		rig.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return rig, nil
}

// Parse decodes a rig.
func Parse(data []byte, format Format) (*Rig, error) {
	var rig Rig
	switch format {
	case JSON:
		if err := json.Unmarshal(data, &rig); err != nil {
			return nil, fmt.Errorf("failed to parse rig json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &rig); err != nil {
			return nil, fmt.Errorf("failed to parse rig yaml: %w", err)
		}
	}
	return &rig, nil
}

// Absolute reports whether samples are fractions of the curve's length.
func (r *Rig) Absolute() bool {
	return r.AbsoluteParam == nil || *r.AbsoluteParam
}

// CurveSpec decodes the curve description.
func (r *Rig) CurveSpec() (CurveSpec, error) {
	var spec CurveSpec
	if len(r.Curve) == 0 {
		return spec, fmt.Errorf("%w: %w: missing curve", ErrInvalidRig, ptframe.ErrInvalidCurve)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &spec,
		ErrorUnused: true,
	})
	if err != nil {
		return spec, err
	}
	if err := dec.Decode(r.Curve); err != nil {
		return spec, fmt.Errorf("%w: %w: %w", ErrInvalidRig, ptframe.ErrInvalidCurve, err)
	}
	spec.Kind = strings.ToLower(spec.Kind)
	return spec, nil
}

// BuildCurve constructs the curve described by the rig.
func (r *Rig) BuildCurve() (*ptframe.CurveQuery, error) {
	spec, err := r.CurveSpec()
	if err != nil {
		return nil, err
	}
	pts := make([]r3.Vec, len(spec.Points))
	for i, p := range spec.Points {
		if len(p) != 3 {
			return nil, fmt.Errorf("%w: %w: point %d has %d coordinates", ErrInvalidRig, ptframe.ErrInvalidCurve, i, len(p))
		}
		pts[i] = ptframe.Vec(p[0], p[1], p[2])
	}
	need := func(n int) error {
		if len(pts) != n {
			return fmt.Errorf("%w: %w: %s needs %d points, got %d", ErrInvalidRig, ptframe.ErrInvalidCurve, spec.Kind, n, len(pts))
		}
		return nil
	}

	var c ptframe.QueryableCurve
	switch spec.Kind {
	case "line":
		if err := need(2); err != nil {
			return nil, err
		}
		c = ptframe.Line{P0: pts[0], P1: pts[1]}
	case "quad":
		if err := need(3); err != nil {
			return nil, err
		}
		c = ptframe.QuadBez{P0: pts[0], P1: pts[1], P2: pts[2]}
	case "cubic":
		if err := need(4); err != nil {
			return nil, err
		}
		c = ptframe.CubicBez{P0: pts[0], P1: pts[1], P2: pts[2], P3: pts[3]}
	case "bspline":
		degree := spec.Degree
		if degree == 0 {
			degree = 3
		}
		var s ptframe.BSpline
		if spec.Knots == nil {
			s, err = ptframe.NewUniformBSpline(degree, pts)
		} else {
			s, err = ptframe.NewBSpline(degree, pts, spec.Knots)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRig, err)
		}
		c = s
	default:
		return nil, fmt.Errorf("%w: %w: unknown curve kind %q", ErrInvalidRig, ptframe.ErrInvalidCurve, spec.Kind)
	}
	return ptframe.NewCurveQuery(c, spec.Accuracy), nil
}

// BuildResponse converts a file response. A nil response stays nil.
func BuildResponse(resp *Response) (ptframe.Response, error) {
	switch {
	case resp == nil:
		return nil, nil
	case resp.Constant != nil && len(resp.Keys) > 0:
		return nil, fmt.Errorf("%w: response has both a constant and keys", ErrInvalidRig)
	case resp.Constant != nil:
		return ptframe.Constant(*resp.Constant), nil
	}
	keys := make([]ptframe.RampKey, len(resp.Keys))
	for i, k := range resp.Keys {
		interp := ptframe.Linear
		if k.Interp != "" {
			var err error
			interp, err = ptframe.ParseInterpolation(k.Interp)
			if err != nil {
				return nil, fmt.Errorf("%w: %w: key %d: %w", ErrInvalidRig, ptframe.ErrInvalidRamp, i, err)
			}
		}
		keys[i] = ptframe.RampKey{Position: k.Position, Value: k.Value, Interp: interp}
	}
	ramp, err := ptframe.NewRamp(keys...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRig, err)
	}
	return ramp, nil
}

// StartFrame returns the start frame described by the rig.
func (r *Rig) StartFrame() (ptframe.Basis, error) {
	var m *mat.Dense
	switch len(r.StartMatrix) {
	case 0:
		return ptframe.Identity, nil
	case 9:
		m = mat.NewDense(3, 3, r.StartMatrix)
	case 16:
		m = mat.NewDense(4, 4, r.StartMatrix)
	default:
		return ptframe.Basis{}, fmt.Errorf("%w: %w: start matrix has %d elements, want 9 or 16",
			ErrInvalidRig, ptframe.ErrInvalidStartFrame, len(r.StartMatrix))
	}
	b, err := ptframe.StartFrame(m)
	if err != nil {
		return ptframe.Basis{}, fmt.Errorf("%w: %w", ErrInvalidRig, err)
	}
	return b, nil
}

// Order returns the rotation order, XYZ by default.
func (r *Rig) Order() (ptframe.RotationOrder, error) {
	if r.RotateOrder == "" {
		return ptframe.XYZ, nil
	}
	o, err := ptframe.ParseRotationOrder(r.RotateOrder)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidRig, err)
	}
	return o, nil
}

// SampleValues returns the samples of the rig. Without explicit samples,
// SampleCount samples are spaced evenly over [0, 1] for absolute rigs and
// over the curve's domain otherwise.
func (r *Rig) SampleValues(curve *ptframe.CurveQuery) ([]float64, error) {
	if len(r.Samples) > 0 {
		if r.SampleCount != 0 && r.SampleCount != len(r.Samples) {
			return nil, fmt.Errorf("%w: sampleCount %d does not match %d samples", ErrInvalidRig, r.SampleCount, len(r.Samples))
		}
		return r.Samples, nil
	}
	if r.SampleCount < 0 {
		return nil, fmt.Errorf("%w: negative sampleCount", ErrInvalidRig)
	}
	lo, hi := 0.0, 1.0
	if !r.Absolute() {
		lo, hi = curve.Underlying().Domain()
	}
	return spread(r.SampleCount, lo, hi), nil
}

func spread(n int, lo, hi float64) []float64 {
	switch n {
	case 0:
		return nil
	case 1:
		return []float64{lo}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}

// Inputs converts the rig into evaluation inputs.
func (r *Rig) Inputs() (ptframe.Inputs, error) {
	curve, err := r.BuildCurve()
	if err != nil {
		return ptframe.Inputs{}, err
	}
	samples, err := r.SampleValues(curve)
	if err != nil {
		return ptframe.Inputs{}, err
	}
	start, err := r.StartFrame()
	if err != nil {
		return ptframe.Inputs{}, err
	}
	twist, err := BuildResponse(r.Twist)
	if err != nil {
		return ptframe.Inputs{}, fmt.Errorf("twist: %w", err)
	}
	scale, err := BuildResponse(r.Scale)
	if err != nil {
		return ptframe.Inputs{}, fmt.Errorf("scale: %w", err)
	}
	order, err := r.Order()
	if err != nil {
		return ptframe.Inputs{}, err
	}
	return ptframe.Inputs{
		Curve:         curve,
		Samples:       samples,
		Start:         start,
		RestLength:    r.RestLength,
		Twist:         twist,
		Scale:         scale,
		AbsoluteParam: r.Absolute(),
		Order:         order,
	}, nil
}

// field returns the part of the rig that makes up an input.
func (r *Rig) field(in ptframe.Input) any {
	switch in {
	case ptframe.InputCurve:
		return r.Curve
	case ptframe.InputSamples:
		return [2]any{r.Samples, r.SampleCount}
	case ptframe.InputStart:
		return r.StartMatrix
	case ptframe.InputRestLength:
		return r.RestLength
	case ptframe.InputTwist:
		return r.Twist
	case ptframe.InputScale:
		return r.Scale
	case ptframe.InputAbsoluteParam:
		return r.Absolute()
	case ptframe.InputOrder:
		return strings.ToLower(r.RotateOrder)
	default:
		panic(fmt.Sprintf("unhandled input %s", in))
	}
}

// Fingerprint hashes the parts of the rig that out depends on. Two rigs with
// the same fingerprint for an output produce the same values for it.
func (r *Rig) Fingerprint(out ptframe.Output) (string, error) {
	fields := make(map[string]any)
	for _, in := range ptframe.AffectedBy(out) {
		fields[in.String()] = r.field(in)
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint rig: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Fingerprints returns the fingerprints of all outputs, keyed by output name.
func (r *Rig) Fingerprints() (map[string]string, error) {
	fps := make(map[string]string, len(ptframe.AllOutputs))
	for _, out := range ptframe.AllOutputs {
		fp, err := r.Fingerprint(out)
		if err != nil {
			return nil, err
		}
		fps[out.String()] = fp
	}
	return fps, nil
}
