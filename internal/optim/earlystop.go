package optim

import (
	"math"
)

// EarlyStopping tracks the best loss of a run and decides when to stop.
//
// A loss improves when it is below the best loss by more than Epsilon. An
// improvement resets the patience counter; any other loss increments it,
// and the run should stop once the counter exceeds Patience.
type EarlyStopping struct {
	patience int
	epsilon  float64
	best     float64
	counter  int
	seen     bool
}

// NewEarlyStopping creates an early-stopping policy. Zero values take the
// defaults patience 20 and epsilon 1e-4; negative values mean zero, so
// NewEarlyStopping(-1, -1) stops at the first loss that is not strictly lower.
func NewEarlyStopping(patience int, epsilon float64) *EarlyStopping {
	switch {
	case patience == 0:
		patience = 20
	case patience < 0:
		patience = 0
	}
	switch {
	case epsilon == 0:
		epsilon = 1e-4
	case epsilon < 0:
		epsilon = 0
	}
	return &EarlyStopping{patience: patience, epsilon: epsilon, best: math.Inf(1)}
}

// Observe records loss. improved reports a new best; stop reports that the
// patience is exhausted.
func (e *EarlyStopping) Observe(loss float64) (improved, stop bool) {
	if !e.seen || e.best-loss > e.epsilon {
		e.seen = true
		e.best = loss
		e.counter = 0
		return true, false
	}
	e.counter++
	return false, e.counter > e.patience
}

// Best returns the best loss observed, or +Inf before the first one.
func (e *EarlyStopping) Best() float64 {
	return e.best
}

// Counter returns the number of consecutive non-improving observations.
func (e *EarlyStopping) Counter() int {
	return e.counter
}

// Patience returns the configured patience.
func (e *EarlyStopping) Patience() int {
	return e.patience
}
