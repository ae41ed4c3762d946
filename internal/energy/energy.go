// Package energy turns energy-oracle evaluations into differentiable losses.
//
// The oracle runs on plain coordinates; its gradient is recorded on the
// tape as an external operation so that backpropagation continues into the
// builder and the build parameters. The raw energy can be reshaped by
// length scaling, a bounded sigmoid and a small linear term.
package energy

import (
	"math"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/sidechainnet/buildopt/internal/autodiff"
	"github.com/sidechainnet/buildopt/internal/forcefield"
	"github.com/sidechainnet/buildopt/internal/protein"
)

// ReluFactor scales the linear term added when Options.AddRelu is set.
const ReluFactor = 1e-12

// Options selects the loss transforms. The zero value evaluates the raw
// energy with unscaled, unclipped forces.
type Options struct {
	// ForceScaling multiplies the oracle gradient. Zero means 1.
	ForceScaling float64 `yaml:"force_scaling"`
	// ForceClipping clamps every gradient component to ±ForceClipping. Zero disables clipping.
	ForceClipping float64 `yaml:"force_clipping"`
	// ScaleByLength divides the energy by the number of residues.
	ScaleByLength bool `yaml:"scale_by_length"`
	// ModifiedSigmoid squashes the energy E into
	// (1/a + exp(-(d·E+b)/c))^-1 - (a-1).
	ModifiedSigmoid bool `yaml:"modified_sigmoid"`
	// SigmoidParams holds (a, b, c, d). The zero value means (1, 1, 1, 1).
	SigmoidParams [4]float64 `yaml:"sigmoid_params"`
	// AddRelu adds ReluFactor times the energy taken before squashing.
	AddRelu bool `yaml:"add_relu"`
}

func (o Options) sigmoidParams() (a, b, c, d float64) {
	if o.SigmoidParams == [4]float64{} {
		return 1, 1, 1, 1
	}
	p := o.SigmoidParams
	return p[0], p[1], p[2], p[3]
}

// Validate reports invalid option combinations.
func (o Options) Validate() error {
	if o.ForceClipping < 0 {
		return errors.Errorf("force clipping must be non-negative, got %g", o.ForceClipping)
	}
	if o.ModifiedSigmoid {
		a, _, c, _ := o.sigmoidParams()
		if a == 0 || c == 0 {
			return errors.Errorf("sigmoid parameters a and c must be non-zero, got %v", o.SigmoidParams)
		}
	}
	return nil
}

// Result is the outcome of one evaluation.
type Result struct {
	// Loss is the transformed energy on the tape.
	Loss autodiff.Var
	// Raw is the untransformed oracle energy.
	Raw float64
}

// Evaluator evaluates a force field on built structures.
type Evaluator struct {
	ff   forcefield.ForceField
	opts Options
}

// NewEvaluator creates an evaluator.
func NewEvaluator(ff forcefield.ForceField, opts Options) (*Evaluator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{ff: ff, opts: opts}, nil
}

// Options returns the evaluator options.
func (e *Evaluator) Options() Options {
	return e.opts
}

// Prepare initializes the energy context of p once. The protein must have
// been built (see build.Adapter.Prepare). Calling it again is a no-op.
func (e *Evaluator) Prepare(p *protein.Protein, init forcefield.InitOptions) error {
	if p.EnergyContext() != nil {
		return nil
	}
	ctx, err := e.ff.Initialize(p, init)
	if err != nil {
		return errors.Wrapf(err, "initializing energy context of %s", p.ID)
	}
	return p.SetEnergyContext(ctx)
}

// Evaluate computes the loss of coords, the tape coordinates of p.
//
// A protein with an unresolved residue returns an *protein.UnresolvedResidueError.
func (e *Evaluator) Evaluate(t *autodiff.Tape, p *protein.Protein, coords []autodiff.Vec3) (Result, error) {
	if err := p.Resolved(); err != nil {
		return Result{}, err
	}
	ctx := p.EnergyContext()
	if ctx == nil {
		return Result{}, errors.Wrap(protein.ErrNoEnergyContext, p.ID)
	}

	values := make([][3]float64, len(coords))
	inputs := make([]autodiff.Var, 0, 3*len(coords))
	for i, c := range coords {
		values[i] = c.Values()
		inputs = append(inputs, c[0], c[1], c[2])
	}
	raw, grad, err := e.ff.Evaluate(ctx, values)
	if err != nil {
		return Result{}, errors.Wrapf(err, "evaluating energy of %s", p.ID)
	}

	energy, err := t.External(inputs, raw, e.forces(grad))
	if err != nil {
		return Result{}, err
	}
	loss := e.transform(energy, p.Len())
	if klog.V(3).Enabled() {
		klog.Infof("energy %s: raw=%g loss=%g", p.ID, raw, loss.Value())
	}
	return Result{Loss: loss, Raw: raw}, nil
}

// forces applies scaling and clipping to the oracle gradient and flattens it.
func (e *Evaluator) forces(grad [][3]float64) []float64 {
	scale := e.opts.ForceScaling
	if scale == 0 {
		scale = 1
	}
	clip := e.opts.ForceClipping
	out := make([]float64, 0, 3*len(grad))
	for _, g := range grad {
		for _, v := range g {
			v *= scale
			if clip > 0 {
				v = math.Max(-clip, math.Min(clip, v))
			}
			out = append(out, v)
		}
	}
	return out
}

// transform applies, in order: length scaling, capture of the linear term,
// sigmoid squashing, addition of the linear term.
func (e *Evaluator) transform(energy autodiff.Var, length int) autodiff.Var {
	loss := energy
	if e.opts.ScaleByLength {
		loss = loss.Scale(1 / float64(length))
	}
	var relu autodiff.Var
	if e.opts.AddRelu {
		relu = loss.Scale(ReluFactor)
	}
	if e.opts.ModifiedSigmoid {
		a, b, c, d := e.opts.sigmoidParams()
		loss = loss.Scale(d).Shift(b).Scale(-1 / c).Exp().Shift(1 / a).Recip().Shift(-(a - 1))
	}
	if e.opts.AddRelu {
		loss = loss.Add(relu)
	}
	return loss
}

// Sigmoid is the modified sigmoid on plain values.
func Sigmoid(energy, a, b, c, d float64) float64 {
	return 1/(1/a+math.Exp(-(d*energy+b)/c)) - (a - 1)
}
