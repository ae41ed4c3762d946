// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for the dense float64 tensors that
// hold build parameters, their gradients and optimizer state.
//
// Example:
//
//	x := tensor.Full(tensor.Shape{20, 4}, 1.5)
//	y, err := tensor.FromSlice([]float64{0, 1, 2, 3}, tensor.Shape{2, 2})
//	angles, err := tensor.Atan2(tensor.Sin(y), tensor.Cos(y))
package tensor

import (
	"github.com/sidechainnet/buildopt/internal/tensor"
)

// Tensor is a dense row-major float64 tensor.
type Tensor = tensor.Tensor

// Shape represents tensor dimensions.
type Shape = tensor.Shape

// Zeros creates a zero-filled tensor.
func Zeros(shape Shape) *Tensor {
	return tensor.Zeros(shape)
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float64) *Tensor {
	return tensor.Full(shape, value)
}

// ZerosLike creates a zero-filled tensor with the shape of t.
func ZerosLike(t *Tensor) *Tensor {
	return tensor.ZerosLike(t)
}

// FromSlice creates a tensor from a copy of data.
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}

// FromBytes decodes little-endian float64 data.
func FromBytes(buf []byte, shape Shape) (*Tensor, error) {
	return tensor.FromBytes(buf, shape)
}

// Sin returns the element-wise sine.
func Sin(t *Tensor) *Tensor {
	return tensor.Sin(t)
}

// Cos returns the element-wise cosine.
func Cos(t *Tensor) *Tensor {
	return tensor.Cos(t)
}

// Atan2 returns the element-wise atan2(y, x).
func Atan2(y, x *Tensor) (*Tensor, error) {
	return tensor.Atan2(y, x)
}
