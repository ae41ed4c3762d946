package session

import (
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/sidechainnet/buildopt/internal/energy"
	"github.com/sidechainnet/buildopt/internal/optim"
	"github.com/sidechainnet/buildopt/internal/params"
)

// Strategy names.
const (
	QuasiNewton = "quasi_newton" // L-BFGS
	MomentumSGD = "momentum_sgd" // SGD with momentum
	AdaptiveSGD = "adaptive_sgd" // Adam
)

var strategyAliases = map[string]string{
	QuasiNewton: QuasiNewton,
	MomentumSGD: MomentumSGD,
	AdaptiveSGD: AdaptiveSGD,
	"lbfgs":     QuasiNewton,
	"sgd":       MomentumSGD,
	"adam":      AdaptiveSGD,
}

// ErrUnknownStrategy is returned for a strategy name that is not recognized.
var ErrUnknownStrategy = errors.New("unknown optimization strategy")

// CanonicalStrategy maps a strategy name or one of its aliases (LBFGS, SGD,
// adam, in any case) to the canonical name.
func CanonicalStrategy(name string) (string, error) {
	if s, ok := strategyAliases[strings.ToLower(name)]; ok {
		return s, nil
	}
	return "", errors.Wrapf(ErrUnknownStrategy, "%q (want %s, %s or %s)", name, QuasiNewton, MomentumSGD, AdaptiveSGD)
}

// Config configures a Session. Zero values take the defaults noted on each
// field.
type Config struct {
	// Keys selects the optimized fields (default: all).
	Keys params.KeySet `yaml:"keys"`
	// Strategy is the optimizer name (default: quasi_newton).
	Strategy string `yaml:"strategy"`
	// LR is the learning rate (default: 1e-5).
	LR float64 `yaml:"lr"`
	// Steps is the iteration budget (default: 100).
	Steps int `yaml:"steps"`

	// Early stopping of first-order strategies. Zero takes the default; use a
	// negative value for an actual zero.
	Patience int     `yaml:"patience"` // default: 20
	Epsilon  float64 `yaml:"epsilon"`  // default: 1e-4

	// Learning-rate plateau schedule of first-order strategies. Patience and
	// threshold follow the same zero and negative rule.
	PlateauFactor    float64 `yaml:"plateau_factor"`    // default: 0.5
	PlateauPatience  int     `yaml:"plateau_patience"`  // default: 20
	PlateauThreshold float64 `yaml:"plateau_threshold"` // default: 1e-4

	// Momentum of momentum_sgd (default: 0.9).
	Momentum float64 `yaml:"momentum"`
	// LBFGSMaxIter bounds the closure evaluations of one quasi_newton step (default: 20).
	LBFGSMaxIter int `yaml:"lbfgs_max_iter"`
	// Warmup enables a linear learning-rate warm-up for first-order strategies.
	Warmup *optim.WarmupConfig `yaml:"warmup"`

	// Energy selects the loss transforms.
	Energy energy.Options `yaml:"energy"`
	// Nonbonded enables non-bonded interactions in the energy context.
	Nonbonded bool `yaml:"nonbonded"`

	// Progress shows a progress bar on ProgressWriter (default: os.Stderr).
	Progress       bool      `yaml:"progress"`
	ProgressWriter io.Writer `yaml:"-"`
}

// WithDefaults returns c with zero fields replaced by their defaults.
func (c Config) WithDefaults() Config {
	if c.Keys == 0 {
		c.Keys = params.AllKeys
	}
	if c.Strategy == "" {
		c.Strategy = QuasiNewton
	}
	if c.LR == 0 {
		c.LR = 1e-5
	}
	if c.Steps == 0 {
		c.Steps = 100
	}
	if c.Patience == 0 {
		c.Patience = 20
	}
	if c.Epsilon == 0 {
		c.Epsilon = 1e-4
	}
	if c.PlateauFactor == 0 {
		c.PlateauFactor = 0.5
	}
	if c.PlateauPatience == 0 {
		c.PlateauPatience = 20
	}
	if c.PlateauThreshold == 0 {
		c.PlateauThreshold = 1e-4
	}
	if c.Momentum == 0 {
		c.Momentum = 0.9
	}
	if c.LBFGSMaxIter == 0 {
		c.LBFGSMaxIter = 20
	}
	return c
}

// Validate reports invalid settings. It expects defaults to be applied.
func (c Config) Validate() error {
	if _, err := CanonicalStrategy(c.Strategy); err != nil {
		return err
	}
	switch {
	case c.Keys&^params.AllKeys != 0:
		return errors.Errorf("invalid key set %b", c.Keys)
	case c.LR <= 0:
		return errors.Errorf("learning rate must be positive, got %g", c.LR)
	case c.Steps < 1:
		return errors.Errorf("steps must be at least 1, got %d", c.Steps)
	case c.PlateauFactor <= 0 || c.PlateauFactor >= 1:
		return errors.Errorf("plateau factor must be in (0, 1), got %g", c.PlateauFactor)
	case c.Momentum < 0 || c.Momentum >= 1:
		return errors.Errorf("momentum must be in [0, 1), got %g", c.Momentum)
	case c.LBFGSMaxIter < 1:
		return errors.Errorf("lbfgs_max_iter must be at least 1, got %d", c.LBFGSMaxIter)
	}
	return c.Energy.Validate()
}
