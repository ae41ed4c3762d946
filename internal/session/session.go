// Package session drives the optimization of build parameters against a
// single target protein.
//
// A Session moves through INIT → STEPPING → {CONVERGED, EXHAUSTED} → DONE.
// New prepares the protein and the parameter list (INIT); Run iterates the
// configured strategy until its termination policy fires (CONVERGED) or the
// step budget is spent (EXHAUSTED), then restores the final parameters and
// rebuilds the protein once more (DONE).
//
// Every iteration evaluates a closure that writes the parameter list into
// the parameter set, rebuilds the structure on a fresh tape, evaluates the
// energy and backpropagates into the list's gradients.
package session

import (
	"math"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"k8s.io/klog/v2"

	"github.com/sidechainnet/buildopt/internal/autodiff"
	"github.com/sidechainnet/buildopt/internal/build"
	"github.com/sidechainnet/buildopt/internal/energy"
	"github.com/sidechainnet/buildopt/internal/forcefield"
	"github.com/sidechainnet/buildopt/internal/params"
	"github.com/sidechainnet/buildopt/internal/protein"
	"github.com/sidechainnet/buildopt/internal/report"
)

// DefaultArtifactPath is where optimized parameters are saved by default.
// The loss curve goes next to it with a .png extension.
const DefaultArtifactPath = "resources/build_params.bprm"

// Errors returned by sessions.
var (
	ErrNonFiniteLoss = errors.New("loss is not finite")
	ErrAlreadyRun    = errors.New("session has already run")
)

// State is the lifecycle state of a Session.
type State int

// Session states.
const (
	Init State = iota
	Stepping
	Converged
	Exhausted
	Done
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Init:
		return "INIT"
	case Stepping:
		return "STEPPING"
	case Converged:
		return "CONVERGED"
	case Exhausted:
		return "EXHAUSTED"
	case Done:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// Session is one optimization run. It is not safe for concurrent use, and
// it borrows the protein exclusively until Run returns.
type Session struct {
	id        string
	cfg       Config
	protein   *protein.Protein
	adapter   *build.Adapter
	evaluator *energy.Evaluator

	set      *params.Set
	starting *params.Set
	list     params.ParameterList
	strategy Strategy

	startCoords [][3]float64
	history     []params.ParameterList
	losses      []float64
	evals       int
	state       State
}

// New prepares a session optimizing the build parameters of builder for p
// under the energy of ff. defaults seeds the parameter set; nil means
// params.Defaults().
//
// The protein is built once with hydrogens and its energy context is
// initialized once; both are reused if p was prepared before.
func New(p *protein.Protein, builder build.Builder, ff forcefield.ForceField, defaults *params.Set, cfg Config) (*Session, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid session config")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := p.Resolved(); err != nil {
		return nil, err
	}
	evaluator, err := energy.NewEvaluator(ff, cfg.Energy)
	if err != nil {
		return nil, err
	}
	if defaults == nil {
		defaults = params.Defaults()
	}

	s := &Session{
		id:        uuid.NewString(),
		cfg:       cfg,
		protein:   p,
		adapter:   build.NewAdapter(builder),
		evaluator: evaluator,
		set:       params.Initialize(defaults, cfg.Keys),
		state:     Init,
	}
	s.starting = s.set.Clone()

	if err := s.adapter.Prepare(p, s.set); err != nil {
		return nil, err
	}
	s.startCoords = cloneCoords(p.HCoords)
	if err := evaluator.Prepare(p, forcefield.InitOptions{Nonbonded: cfg.Nonbonded}); err != nil {
		return nil, err
	}

	s.list = params.Extract(s.set, cfg.Keys)
	if s.strategy, err = newStrategy(cfg, s.list); err != nil {
		return nil, err
	}
	s.history = []params.ParameterList{s.list.Clone()}

	klog.Infof("session %s: %s, %d atoms, keys=%s, strategy=%s, lr=%g, steps=%d",
		s.id, p.ID, len(p.Atoms), cfg.Keys, s.strategy.Name(), cfg.LR, cfg.Steps)
	return s, nil
}

// ID returns the unique run identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Starting returns a copy of the parameter set as it was before any update.
func (s *Session) Starting() *params.Set {
	return s.starting.Clone()
}

// History returns the parameter snapshots: the initial list followed by
// one snapshot per iteration, taken before the iteration's update.
func (s *Session) History() []params.ParameterList {
	return s.history
}

// Evaluations returns the number of closure evaluations so far.
func (s *Session) Evaluations() int {
	return s.evals
}

// Run iterates the strategy until it converges or the step budget is spent
// and returns the final parameters. A session runs once.
//
// Run writes no files; call Result.Save to persist the parameters and the
// loss curve.
func (s *Session) Run() (*Result, error) {
	if s.state != Init {
		return nil, ErrAlreadyRun
	}
	s.state = Stepping

	var bar *report.Progress
	if s.cfg.Progress {
		w := s.cfg.ProgressWriter
		if w == nil {
			w = os.Stderr
		}
		bar = report.NewProgress(w, s.cfg.Steps, s.strategy.Name())
	}

	for step := 0; step < s.cfg.Steps; step++ {
		s.history = append(s.history, s.list.Clone())
		res, err := s.strategy.Step(s.closure)
		if err != nil {
			bar.Finish()
			return nil, errors.WithMessagef(err, "step %d", step)
		}
		s.losses = append(s.losses, res.Loss)
		bar.Update(res.Loss)
		if klog.V(1).Enabled() {
			klog.Infof("step %d: loss=%.6g", step, res.Loss)
		}
		if res.ShouldStop {
			klog.Infof("session %s: stopping early after %d steps", s.id, step+1)
			s.state = Converged
			break
		}
	}
	bar.Finish()
	if s.state == Stepping {
		s.state = Exhausted
	}
	return s.finish()
}

// closure evaluates the loss of the current list and stores its gradient.
func (s *Session) closure() (float64, error) {
	s.list.ZeroGrad()
	if err := params.Scatter(s.set, s.cfg.Keys, s.list); err != nil {
		return 0, err
	}

	t := autodiff.NewTape()
	t.StartRecording()
	bound := params.Bind(t, s.set, s.list)
	coords, err := s.adapter.Rebuild(t, s.protein, bound)
	if err != nil {
		return 0, err
	}
	res, err := s.evaluator.Evaluate(t, s.protein, coords)
	if err != nil {
		return 0, err
	}
	loss := res.Loss.Value()
	if math.IsNaN(loss) || math.IsInf(loss, 0) {
		return 0, errors.Wrapf(ErrNonFiniteLoss, "%s: loss %g, raw energy %g", s.protein.ID, loss, res.Raw)
	}

	bound.Accumulate(t.Backward(res.Loss))
	s.protein.LastLoss = loss
	s.evals++
	return loss, nil
}

// finish restores the final parameters, rebuilds the protein from them and
// assembles the result.
func (s *Session) finish() (*Result, error) {
	terminal := s.state
	final := s.list
	bestLoss := math.Inf(1)
	if best, loss, ok := s.strategy.Best(); ok {
		final, bestLoss = best, loss
		if err := s.list.CopyFrom(best); err != nil {
			return nil, err
		}
	} else if len(s.losses) > 0 {
		bestLoss = floats.Min(s.losses)
	}
	if err := params.Scatter(s.set, s.cfg.Keys, final); err != nil {
		return nil, err
	}

	t := autodiff.NewTape()
	coords, err := s.adapter.Rebuild(t, s.protein, params.Bind(t, s.set, nil))
	if err != nil {
		return nil, err
	}
	values := build.Values(coords)
	s.state = Done

	res := &Result{
		ID:       s.id,
		Protein:  s.protein.ID,
		Strategy: s.strategy.Name(),
		Keys:     s.cfg.Keys,
		Params:   s.set.Clone(),
		List:     final.Clone(),
		Coords:   values,
		Losses:   s.losses,
		History:  s.history,
		BestLoss: bestLoss,
		Steps:    len(s.losses),
		State:    terminal,
		Drift:    rmsd(s.startCoords, values),
	}
	klog.Infof("session %s: %s after %d steps, best loss %.6g, drift %.3f Å",
		s.id, terminal, res.Steps, res.BestLoss, res.Drift)
	return res, nil
}

func cloneCoords(c [][3]float64) [][3]float64 {
	out := make([][3]float64, len(c))
	copy(out, c)
	return out
}

// rmsd returns the coordinate RMSD of two equally ordered structures
// without superposition, or NaN if their sizes differ.
func rmsd(a, b [][3]float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.NaN()
	}
	fa := make([]float64, 0, 3*len(a))
	fb := make([]float64, 0, 3*len(b))
	for i := range a {
		fa = append(fa, a[i][:]...)
		fb = append(fb, b[i][:]...)
	}
	return floats.Distance(fa, fb, 2) / math.Sqrt(float64(len(a)))
}
