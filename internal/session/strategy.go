package session

import (
	"github.com/sidechainnet/buildopt/internal/optim"
	"github.com/sidechainnet/buildopt/internal/params"
)

// StepResult is the outcome of one strategy step.
type StepResult struct {
	// Loss is the loss recorded for the iteration.
	Loss float64
	// ShouldStop reports that the strategy's termination policy fired. The
	// parameters were not updated in that case.
	ShouldStop bool
}

// Strategy performs optimization steps over a parameter list.
//
// First-order strategies invoke the closure once per step and track the
// best parameters with early stopping. The quasi-Newton strategy may invoke
// it several times per step, never asks to stop and keeps no best.
type Strategy interface {
	Step(closure optim.Closure) (StepResult, error)
	// Best returns a copy of the best parameters seen and their loss; ok is
	// false when the strategy does not track them.
	Best() (list params.ParameterList, loss float64, ok bool)
	// Name returns the canonical strategy name.
	Name() string
}

// newStrategy creates the strategy named by cfg over list.
func newStrategy(cfg Config, list params.ParameterList) (Strategy, error) {
	name, err := CanonicalStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}
	if name == QuasiNewton {
		return &quasiNewton{lbfgs: optim.NewLBFGS(list, optim.LBFGSConfig{LR: cfg.LR, MaxIter: cfg.LBFGSMaxIter})}, nil
	}

	s := &firstOrder{
		name:    name,
		list:    list,
		stopper: optim.NewEarlyStopping(cfg.Patience, cfg.Epsilon),
	}
	if name == MomentumSGD {
		s.opt = optim.NewSGD(list, optim.SGDConfig{LR: cfg.LR, Momentum: cfg.Momentum})
	} else {
		s.opt = optim.NewAdam(list, optim.AdamConfig{LR: cfg.LR})
	}
	s.plateau = optim.NewPlateauScheduler(s.opt, optim.PlateauConfig{
		Factor:    cfg.PlateauFactor,
		Patience:  cfg.PlateauPatience,
		Threshold: cfg.PlateauThreshold,
	})
	if cfg.Warmup != nil {
		s.warmup = optim.NewLinearWarmup(s.opt, *cfg.Warmup)
	}
	return s, nil
}

// firstOrder drives SGD or Adam with early stopping and a plateau schedule.
type firstOrder struct {
	name     string
	list     params.ParameterList
	opt      optim.Optimizer
	stopper  *optim.EarlyStopping
	plateau  *optim.PlateauScheduler
	warmup   *optim.LinearWarmup
	best     params.ParameterList
	bestLoss float64
}

func (s *firstOrder) Step(closure optim.Closure) (StepResult, error) {
	loss, err := closure()
	if err != nil {
		return StepResult{}, err
	}
	improved, stop := s.stopper.Observe(loss)
	if improved {
		s.best = s.list.Clone()
		s.bestLoss = loss
	}
	if stop {
		return StepResult{Loss: loss, ShouldStop: true}, nil
	}

	s.opt.Step()
	// The plateau schedule takes over once the warm-up ramp is complete.
	if s.warmup != nil && !s.warmup.Done() {
		s.warmup.Step()
	} else {
		s.plateau.Step(loss)
	}
	return StepResult{Loss: loss}, nil
}

func (s *firstOrder) Best() (params.ParameterList, float64, bool) {
	if s.best == nil {
		return nil, 0, false
	}
	return s.best.Clone(), s.bestLoss, true
}

func (s *firstOrder) Name() string {
	return s.name
}

// quasiNewton runs L-BFGS for a fixed budget.
type quasiNewton struct {
	lbfgs *optim.LBFGS
}

func (s *quasiNewton) Step(closure optim.Closure) (StepResult, error) {
	loss, err := s.lbfgs.Step(closure)
	if err != nil {
		return StepResult{}, err
	}
	return StepResult{Loss: loss}, nil
}

func (s *quasiNewton) Best() (params.ParameterList, float64, bool) {
	return nil, 0, false
}

func (s *quasiNewton) Name() string {
	return QuasiNewton
}
