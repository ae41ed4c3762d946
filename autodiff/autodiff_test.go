// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package autodiff_test

import (
	"math"
	"testing"

	"github.com/sidechainnet/buildopt/autodiff"
)

func TestPublicTape(t *testing.T) {
	tape := autodiff.NewTape()
	tape.StartRecording()
	x := tape.Leaf(2)
	y := x.Square().Add(x.Sin())

	grads := tape.Backward(y)
	want := 4 + math.Cos(2)
	if got := grads.Of(x); math.Abs(got-want) > 1e-12 {
		t.Errorf("dy/dx = %v, want %v", got, want)
	}

	var v autodiff.Vec3 = tape.Vec([3]float64{3, 4, 0})
	if got := v.Norm().Value(); got != 5 {
		t.Errorf("Norm = %v, want 5", got)
	}
}
