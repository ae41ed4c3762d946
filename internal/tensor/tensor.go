// Package tensor provides the dense float64 tensors that hold build
// parameters, their gradients and optimizer state.
//
// Tensors are plain row-major buffers. They are small (a few hundred
// elements per parameter group) and are always mutated in place by the
// optimizers, so there is no device or copy-on-write machinery.
package tensor

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Tensor is a dense row-major float64 tensor.
type Tensor struct {
	shape Shape
	data  []float64
}

// Zeros creates a zero-filled tensor with the given shape.
func Zeros(shape Shape) *Tensor {
	return &Tensor{
		shape: shape.Clone(),
		data:  make([]float64, shape.NumElements()),
	}
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float64) *Tensor {
	t := Zeros(shape)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// ZerosLike creates a zero-filled tensor with the same shape as t.
func ZerosLike(t *Tensor) *Tensor {
	return Zeros(t.shape)
}

// FromSlice creates a tensor from data. The slice is copied.
//
// Returns an error if len(data) does not match the shape.
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}
	t := Zeros(shape)
	copy(t.data, data)
	return t, nil
}

// Shape returns the tensor shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// NumElements returns the number of elements.
func (t *Tensor) NumElements() int {
	return len(t.data)
}

// Data returns the underlying buffer (zero-copy).
func (t *Tensor) Data() []float64 {
	return t.data
}

// At returns the element at a multi-dimensional index. Panics on a bad index.
func (t *Tensor) At(index ...int) float64 {
	off, err := t.shape.Offset(index...)
	if err != nil {
		panic(fmt.Sprintf("tensor.At: %v", err))
	}
	return t.data[off]
}

// Set stores value at a multi-dimensional index. Panics on a bad index.
func (t *Tensor) Set(value float64, index ...int) {
	off, err := t.shape.Offset(index...)
	if err != nil {
		panic(fmt.Sprintf("tensor.Set: %v", err))
	}
	t.data[off] = value
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	c := Zeros(t.shape)
	copy(c.data, t.data)
	return c
}

// CopyFrom overwrites t with the contents of src, which must have the same shape.
func (t *Tensor) CopyFrom(src *Tensor) error {
	if !t.shape.Equal(src.shape) {
		return fmt.Errorf("shape mismatch: %v vs %v", t.shape, src.shape)
	}
	copy(t.data, src.data)
	return nil
}

// Fill sets every element to value.
func (t *Tensor) Fill(value float64) {
	for i := range t.data {
		t.data[i] = value
	}
}

// Equal reports whether both tensors have the same shape and identical elements.
func (t *Tensor) Equal(other *Tensor) bool {
	if !t.shape.Equal(other.shape) {
		return false
	}
	for i := range t.data {
		if t.data[i] != other.data[i] {
			return false
		}
	}
	return true
}

// Bytes encodes the elements as little-endian IEEE-754 float64.
func (t *Tensor) Bytes() []byte {
	buf := make([]byte, 8*len(t.data))
	for i, v := range t.data {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(v))
	}
	return buf
}

// FromBytes decodes little-endian float64 data produced by Bytes.
func FromBytes(buf []byte, shape Shape) (*Tensor, error) {
	if len(buf) != 8*shape.NumElements() {
		return nil, fmt.Errorf("buffer size %d does not match shape %v", len(buf), shape)
	}
	t := Zeros(shape)
	for i := range t.data {
		t.data[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8*i:]))
	}
	return t, nil
}

// String implements fmt.Stringer.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor%v%v", []int(t.shape), t.data)
}
