// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides scalar reverse-mode automatic differentiation.
//
// Operations on Var and Vec3 values are recorded on a Tape while it is
// recording; Backward replays the tape in reverse and returns the gradient
// of a scalar with respect to every recorded variable.
//
// Example:
//
//	tape := autodiff.NewTape()
//	tape.StartRecording()
//	x := tape.Leaf(2)
//	y := x.Square().Add(x.Sin())
//	grads := tape.Backward(y)
//	dx := grads.Of(x) // 2x + cos(x)
//
// Externally computed energies enter the graph through Tape.External, which
// takes the value and its gradient with respect to the inputs.
package autodiff

import (
	"github.com/sidechainnet/buildopt/internal/autodiff"
)

// Tape records operations for reverse-mode differentiation.
type Tape = autodiff.Tape

// Var is a scalar on a tape.
type Var = autodiff.Var

// Vec3 is a 3-vector of tape scalars.
type Vec3 = autodiff.Vec3

// Gradients holds the result of Tape.Backward.
type Gradients = autodiff.Gradients

// NewTape creates an empty tape that is not recording.
func NewTape() *Tape {
	return autodiff.NewTape()
}
