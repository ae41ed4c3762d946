// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim_test

import (
	"testing"

	"github.com/sidechainnet/buildopt/internal/params"
	"github.com/sidechainnet/buildopt/internal/residue"
	"github.com/sidechainnet/buildopt/optim"
	"github.com/sidechainnet/buildopt/tensor"
)

func newList(values ...float64) optim.ParameterList {
	x, _ := tensor.FromSlice(values, tensor.Shape{len(values)})
	return optim.ParameterList{params.NewParameter(residue.CA, params.Thetas, x)}
}

func TestPublicOptimizers(t *testing.T) {
	list := newList(1)
	var opt optim.Optimizer = optim.NewSGD(list, optim.SGDConfig{LR: 0.5})

	list[0].Grad().Data()[0] = 2
	opt.Step()
	if got := list[0].Tensor().Data()[0]; got != 0 {
		t.Errorf("SGD step = %v, want 0", got)
	}

	sched := optim.NewPlateauScheduler(opt, optim.PlateauConfig{Patience: 1})
	for range 3 {
		sched.Step(1)
	}
	if opt.GetLR() >= 0.5 {
		t.Errorf("plateau schedule did not lower the learning rate: %v", opt.GetLR())
	}

	opt.ZeroGrad()
	if got := list[0].Grad().Data()[0]; got != 0 {
		t.Errorf("ZeroGrad left %v", got)
	}
}

func TestPublicLBFGS(t *testing.T) {
	list := newList(3)
	lbfgs := optim.NewLBFGS(list, optim.LBFGSConfig{})

	// f(x) = x², minimized at 0.
	closure := func() (float64, error) {
		lbfgs.ZeroGrad()
		x := list[0].Tensor().Data()[0]
		list[0].Grad().Data()[0] = 2 * x
		return x * x, nil
	}
	loss, err := lbfgs.Step(closure)
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if loss != 9 {
		t.Errorf("Step returned %v, want the initial loss 9", loss)
	}
}

func TestPublicEarlyStopping(t *testing.T) {
	es := optim.NewEarlyStopping(1, 1e-4)
	stopped := -1
	for i := range 5 {
		if _, stop := es.Observe(1); stop {
			stopped = i
			break
		}
	}
	if stopped != 2 {
		t.Errorf("stopped at %d, want 2", stopped)
	}
}
