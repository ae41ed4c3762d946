// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the optimizers and schedules used to fit build
// parameters.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - LBFGS: limited-memory BFGS driven by a re-evaluable closure
//   - PlateauScheduler and LinearWarmup: learning-rate schedules
//   - EarlyStopping: patience-based termination
//
// # Basic Usage
//
//	list := params.Extract(set, params.AllKeys)
//	optimizer := optim.NewAdam(list, optim.AdamConfig{LR: 1e-3})
//	stopper := optim.NewEarlyStopping(20, 1e-4)
//
//	for range steps {
//	    optimizer.ZeroGrad()
//	    loss := evaluate() // stores gradients on list
//	    if _, stop := stopper.Observe(loss); stop {
//	        break
//	    }
//	    optimizer.Step()
//	}
//
// LBFGS re-evaluates the loss itself:
//
//	lbfgs := optim.NewLBFGS(list, optim.LBFGSConfig{LR: 1e-5})
//	loss, err := lbfgs.Step(func() (float64, error) {
//	    lbfgs.ZeroGrad()
//	    return evaluate(), nil
//	})
//
// Use the optimize package to run a complete optimization session.
package optim
