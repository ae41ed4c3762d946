package optim

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/sidechainnet/buildopt/internal/params"
)

// LBFGSConfig holds configuration for the L-BFGS optimizer.
type LBFGSConfig struct {
	LR              float64 // Step length (default: 1)
	MaxIter         int     // Iterations per Step (default: 20)
	MaxEval         int     // Closure evaluations per Step (default: MaxIter * 5/4)
	ToleranceGrad   float64 // Stop when max |gradient| is below (default: 1e-7)
	ToleranceChange float64 // Stop when the step or loss change is below (default: 1e-9)
	HistorySize     int     // Number of curvature pairs kept (default: 100)
}

// LBFGS implements limited-memory BFGS with a fixed step length.
//
// Each Step runs up to MaxIter iterations, re-invoking the closure after
// every parameter update. The first iteration of the first Step moves along
// the negative gradient with length min(1, 1/‖g‖₁)·LR; later directions come
// from the two-loop recursion over the stored curvature pairs. There is no
// line search, so the loss is not guaranteed to decrease.
//
// State persists across Steps.
type LBFGS struct {
	params params.ParameterList
	cfg    LBFGSConfig

	d, prevGrad []float64
	t           float64
	oldDirs     [][]float64 // y_k
	oldSteps    [][]float64 // s_k
	ro          []float64
	hDiag       float64
	prevLoss    float64
	nIter       int
	funcEvals   int
	initialized bool
}

// NewLBFGS creates a new L-BFGS optimizer.
func NewLBFGS(list params.ParameterList, config LBFGSConfig) *LBFGS {
	if config.LR == 0 {
		config.LR = 1
	}
	if config.MaxIter == 0 {
		config.MaxIter = 20
	}
	if config.MaxEval == 0 {
		config.MaxEval = config.MaxIter * 5 / 4
	}
	if config.ToleranceGrad == 0 {
		config.ToleranceGrad = 1e-7
	}
	if config.ToleranceChange == 0 {
		config.ToleranceChange = 1e-9
	}
	if config.HistorySize == 0 {
		config.HistorySize = 100
	}
	return &LBFGS{params: list, cfg: config, hDiag: 1}
}

// Step performs one L-BFGS step and returns the loss evaluated at the
// parameters the step started from.
func (o *LBFGS) Step(closure Closure) (float64, error) {
	origLoss, err := closure()
	if err != nil {
		return 0, err
	}
	loss := origLoss
	currentEvals := 1
	o.funcEvals++

	g := o.params.FlattenGrad()
	if maxAbs(g) <= o.cfg.ToleranceGrad {
		return origLoss, nil
	}

	for n := 1; n <= o.cfg.MaxIter; n++ {
		o.nIter++

		if !o.initialized {
			o.initialized = true
			o.d = negated(g)
			o.oldDirs, o.oldSteps, o.ro = nil, nil, nil
			o.hDiag = 1
		} else {
			o.updateHistory(g)
			o.d = o.direction(g)
		}
		o.prevGrad = append(o.prevGrad[:0], g...)
		o.prevLoss = loss

		if o.nIter == 1 {
			o.t = math.Min(1, 1/floats.Norm(g, 1)) * o.cfg.LR
		} else {
			o.t = o.cfg.LR
		}

		gtd := floats.Dot(g, o.d)
		if gtd > -o.cfg.ToleranceChange {
			break
		}

		x := o.params.Flatten()
		floats.AddScaled(x, o.t, o.d)
		o.params.SetFlat(x)

		evals := 0
		if n != o.cfg.MaxIter {
			loss, err = closure()
			if err != nil {
				return 0, err
			}
			g = o.params.FlattenGrad()
			evals = 1
		}
		currentEvals += evals
		o.funcEvals += evals

		if n == o.cfg.MaxIter || currentEvals >= o.cfg.MaxEval {
			break
		}
		if maxAbs(g) <= o.cfg.ToleranceGrad {
			break
		}
		if maxAbs(o.d)*math.Abs(o.t) <= o.cfg.ToleranceChange {
			break
		}
		if math.Abs(loss-o.prevLoss) < o.cfg.ToleranceChange {
			break
		}
	}
	return origLoss, nil
}

// updateHistory stores the curvature pair of the last step when it keeps
// the Hessian estimate positive definite.
func (o *LBFGS) updateHistory(g []float64) {
	y := make([]float64, len(g))
	floats.SubTo(y, g, o.prevGrad)
	s := make([]float64, len(o.d))
	floats.ScaleTo(s, o.t, o.d)
	ys := floats.Dot(y, s)
	if ys <= 1e-10 {
		return
	}
	if len(o.oldDirs) == o.cfg.HistorySize {
		o.oldDirs, o.oldSteps, o.ro = o.oldDirs[1:], o.oldSteps[1:], o.ro[1:]
	}
	o.oldDirs = append(o.oldDirs, y)
	o.oldSteps = append(o.oldSteps, s)
	o.ro = append(o.ro, 1/ys)
	o.hDiag = ys / floats.Dot(y, y)
}

// direction computes -H·g with the two-loop recursion.
func (o *LBFGS) direction(g []float64) []float64 {
	k := len(o.oldDirs)
	al := make([]float64, k)
	q := negated(g)
	for i := k - 1; i >= 0; i-- {
		al[i] = floats.Dot(o.oldSteps[i], q) * o.ro[i]
		floats.AddScaled(q, -al[i], o.oldDirs[i])
	}
	r := q
	floats.Scale(o.hDiag, r)
	for i := 0; i < k; i++ {
		be := floats.Dot(o.oldDirs[i], r) * o.ro[i]
		floats.AddScaled(r, al[i]-be, o.oldSteps[i])
	}
	return r
}

// ZeroGrad clears gradients for all parameters.
func (o *LBFGS) ZeroGrad() {
	o.params.ZeroGrad()
}

// GetLR returns the step length.
func (o *LBFGS) GetLR() float64 {
	return o.cfg.LR
}

// SetLR changes the step length.
func (o *LBFGS) SetLR(lr float64) {
	o.cfg.LR = lr
}

// FuncEvals returns the total number of closure evaluations.
func (o *LBFGS) FuncEvals() int {
	return o.funcEvals
}

func negated(x []float64) []float64 {
	out := make([]float64, len(x))
	floats.ScaleTo(out, -1, x)
	return out
}

func maxAbs(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return floats.Norm(x, math.Inf(1))
}
