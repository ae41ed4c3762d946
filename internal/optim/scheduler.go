package optim

import (
	"math"

	"k8s.io/klog/v2"
)

// LRSetter is anything whose learning rate can be scheduled.
type LRSetter interface {
	GetLR() float64
	SetLR(lr float64)
}

// PlateauConfig configures PlateauScheduler.
type PlateauConfig struct {
	Factor    float64 // Multiplier applied on a plateau (default: 0.5)
	Patience  int     // Non-improving steps tolerated (default: 20, negative: 0)
	Threshold float64 // Absolute improvement that counts (default: 1e-4, negative: 0)
	MinLR     float64 // Lower bound of the learning rate (default: 0)
	Eps       float64 // Smallest applied change (default: 1e-8)
}

// PlateauScheduler reduces the learning rate when a minimized metric stops
// improving, in absolute threshold mode.
//
// A metric improves when it is below best - Threshold. After more than
// Patience consecutive non-improving steps the learning rate is multiplied by
// Factor and the count restarts.
type PlateauScheduler struct {
	opt        LRSetter
	cfg        PlateauConfig
	best       float64
	badEpochs  int
	reductions int
}

// NewPlateauScheduler creates a scheduler for opt.
func NewPlateauScheduler(opt LRSetter, config PlateauConfig) *PlateauScheduler {
	if config.Factor == 0 {
		config.Factor = 0.5
	}
	switch {
	case config.Patience == 0:
		config.Patience = 20
	case config.Patience < 0:
		config.Patience = 0
	}
	switch {
	case config.Threshold == 0:
		config.Threshold = 1e-4
	case config.Threshold < 0:
		config.Threshold = 0
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	return &PlateauScheduler{opt: opt, cfg: config, best: math.Inf(1)}
}

// Step records metric and reduces the learning rate on a plateau. It reports
// whether the learning rate was reduced.
func (s *PlateauScheduler) Step(metric float64) bool {
	if metric < s.best-s.cfg.Threshold {
		s.best = metric
		s.badEpochs = 0
	} else {
		s.badEpochs++
	}
	if s.badEpochs <= s.cfg.Patience {
		return false
	}
	s.badEpochs = 0

	old := s.opt.GetLR()
	lr := math.Max(old*s.cfg.Factor, s.cfg.MinLR)
	if old-lr <= s.cfg.Eps {
		return false
	}
	s.opt.SetLR(lr)
	s.reductions++
	klog.Infof("reducing learning rate to %.4e", lr)
	return true
}

// Reductions returns how many times the learning rate was reduced.
func (s *PlateauScheduler) Reductions() int {
	return s.reductions
}

// LinearWarmup ramps the learning rate of an optimizer linearly from
// Start·base to End·base over Steps steps, then keeps it at End·base.
type LinearWarmup struct {
	opt   LRSetter
	base  float64
	start float64
	end   float64
	steps int
	step  int
}

// WarmupConfig configures LinearWarmup.
type WarmupConfig struct {
	Start float64 `yaml:"start"` // Initial factor (default: 1e-4)
	End   float64 `yaml:"end"`   // Final factor (default: 1)
	Steps int     `yaml:"steps"` // Ramp length (default: 1000)
}

// NewLinearWarmup creates a warm-up schedule for opt and applies the first
// factor immediately. The base learning rate is opt's current one.
func NewLinearWarmup(opt LRSetter, config WarmupConfig) *LinearWarmup {
	if config.Start == 0 {
		config.Start = 1e-4
	}
	if config.End == 0 {
		config.End = 1
	}
	if config.Steps == 0 {
		config.Steps = 1000
	}
	w := &LinearWarmup{
		opt:   opt,
		base:  opt.GetLR(),
		start: config.Start,
		end:   config.End,
		steps: config.Steps,
	}
	opt.SetLR(w.base * w.Factor())
	return w
}

// Factor returns the current multiplier of the base learning rate.
func (w *LinearWarmup) Factor() float64 {
	if w.step >= w.steps {
		return w.end
	}
	return w.start + (w.end-w.start)*float64(w.step)/float64(w.steps)
}

// Step advances the schedule by one step.
func (w *LinearWarmup) Step() {
	w.step++
	w.opt.SetLR(w.base * w.Factor())
}

// Done reports whether the ramp is complete.
func (w *LinearWarmup) Done() bool {
	return w.step >= w.steps
}
