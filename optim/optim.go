// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/sidechainnet/buildopt/internal/optim"
	"github.com/sidechainnet/buildopt/internal/params"
)

// Optimizer interface defines the common interface for first-order optimizers.
type Optimizer = optim.Optimizer

// Closure re-evaluates the loss and stores its gradient on the parameters.
type Closure = optim.Closure

// ParameterList is the ordered list of parameters an optimizer updates.
type ParameterList = params.ParameterList

// SGD (Stochastic Gradient Descent)

// SGD represents the SGD optimizer with optional momentum.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	optimizer := optim.NewSGD(list, optim.SGDConfig{LR: 1e-3, Momentum: 0.9})
func NewSGD(list ParameterList, config SGDConfig) *SGD {
	return optim.NewSGD(list, config)
}

// Adam (Adaptive Moment Estimation)

// Adam represents the Adam optimizer.
type Adam = optim.Adam

// AdamConfig contains configuration for Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer with bias correction.
//
// Example:
//
//	optimizer := optim.NewAdam(list, optim.AdamConfig{LR: 1e-3})
func NewAdam(list ParameterList, config AdamConfig) *Adam {
	return optim.NewAdam(list, config)
}

// L-BFGS

// LBFGS represents the limited-memory BFGS optimizer.
type LBFGS = optim.LBFGS

// LBFGSConfig contains configuration for the LBFGS optimizer.
type LBFGSConfig = optim.LBFGSConfig

// NewLBFGS creates a new L-BFGS optimizer.
func NewLBFGS(list ParameterList, config LBFGSConfig) *LBFGS {
	return optim.NewLBFGS(list, config)
}

// Schedules

// LRSetter is implemented by optimizers whose learning rate can be scheduled.
type LRSetter = optim.LRSetter

// PlateauScheduler lowers the learning rate when the loss stops improving.
type PlateauScheduler = optim.PlateauScheduler

// PlateauConfig contains configuration for PlateauScheduler.
type PlateauConfig = optim.PlateauConfig

// NewPlateauScheduler creates a plateau schedule for opt.
func NewPlateauScheduler(opt LRSetter, config PlateauConfig) *PlateauScheduler {
	return optim.NewPlateauScheduler(opt, config)
}

// LinearWarmup ramps the learning rate up over the first steps.
type LinearWarmup = optim.LinearWarmup

// WarmupConfig contains configuration for LinearWarmup.
type WarmupConfig = optim.WarmupConfig

// NewLinearWarmup creates a warm-up schedule for opt.
func NewLinearWarmup(opt LRSetter, config WarmupConfig) *LinearWarmup {
	return optim.NewLinearWarmup(opt, config)
}

// EarlyStopping tracks the best loss and decides when to stop.
type EarlyStopping = optim.EarlyStopping

// NewEarlyStopping creates an early-stopping policy.
func NewEarlyStopping(patience int, epsilon float64) *EarlyStopping {
	return optim.NewEarlyStopping(patience, epsilon)
}
