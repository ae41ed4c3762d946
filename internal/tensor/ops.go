package tensor

import (
	"fmt"
	"math"
)

// Map returns a new tensor with fn applied to every element.
func (t *Tensor) Map(fn func(float64) float64) *Tensor {
	out := Zeros(t.shape)
	for i, v := range t.data {
		out.data[i] = fn(v)
	}
	return out
}

// Sin returns the element-wise sine.
func Sin(t *Tensor) *Tensor {
	return t.Map(math.Sin)
}

// Cos returns the element-wise cosine.
func Cos(t *Tensor) *Tensor {
	return t.Map(math.Cos)
}

// Atan2 returns the element-wise atan2(y, x).
//
// Returns an error if the shapes differ.
func Atan2(y, x *Tensor) (*Tensor, error) {
	if !y.shape.Equal(x.shape) {
		return nil, fmt.Errorf("atan2: shape mismatch %v vs %v", y.shape, x.shape)
	}
	out := Zeros(y.shape)
	for i := range out.data {
		out.data[i] = math.Atan2(y.data[i], x.data[i])
	}
	return out, nil
}

// IsFinite reports whether every element is neither NaN nor ±Inf.
func (t *Tensor) IsFinite() bool {
	for _, v := range t.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
