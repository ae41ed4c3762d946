package params

import (
	"github.com/sidechainnet/buildopt/internal/residue"
	"github.com/sidechainnet/buildopt/internal/tensor"
)

// Parameter is one optimizable tensor: the selected field of one anchor
// group, holding bond lengths or raw angles in radians.
//
// Example:
//
//	list := params.Extract(set, keys)
//	for _, p := range list {
//		fmt.Println(p.Name(), p.Tensor().Shape())
//	}
type Parameter struct {
	name   string
	anchor residue.Anchor
	key    Key
	value  *tensor.Tensor
	grad   *tensor.Tensor // Same shape as value, zeroed by ZeroGrad
}

// NewParameter creates a parameter with a zero gradient.
func NewParameter(anchor residue.Anchor, key Key, value *tensor.Tensor) *Parameter {
	return &Parameter{
		name:   TensorName(anchor, key),
		anchor: anchor,
		key:    key,
		value:  value,
		grad:   tensor.ZerosLike(value),
	}
}

// Name returns the parameter name, e.g. "CA.thetas".
func (p *Parameter) Name() string {
	return p.name
}

// Anchor returns the anchor atom of the group the parameter belongs to.
func (p *Parameter) Anchor() residue.Anchor {
	return p.anchor
}

// Key returns the field key.
func (p *Parameter) Key() Key {
	return p.key
}

// Tensor returns the parameter values.
func (p *Parameter) Tensor() *tensor.Tensor {
	return p.value
}

// Grad returns the gradient tensor.
func (p *Parameter) Grad() *tensor.Tensor {
	return p.grad
}

// ZeroGrad clears the gradient.
//
// This should be called before each evaluation so gradients from previous
// iterations do not accumulate.
func (p *Parameter) ZeroGrad() {
	p.grad.Fill(0)
}

// Clone returns a deep copy of values and gradient.
func (p *Parameter) Clone() *Parameter {
	c := *p
	c.value = p.value.Clone()
	c.grad = p.grad.Clone()
	return &c
}

// ParameterList is the flat, ordered list handed to the optimizers.
// Scatter relies on its order, not on names.
type ParameterList []*Parameter

// Clone returns a deep copy of every parameter.
func (l ParameterList) Clone() ParameterList {
	out := make(ParameterList, len(l))
	for i, p := range l {
		out[i] = p.Clone()
	}
	return out
}

// ZeroGrad clears every gradient.
func (l ParameterList) ZeroGrad() {
	for _, p := range l {
		p.ZeroGrad()
	}
}

// NumElements returns the total number of scalars.
func (l ParameterList) NumElements() int {
	n := 0
	for _, p := range l {
		n += p.value.NumElements()
	}
	return n
}

// Flatten returns all values concatenated in list order.
func (l ParameterList) Flatten() []float64 {
	out := make([]float64, 0, l.NumElements())
	for _, p := range l {
		out = append(out, p.value.Data()...)
	}
	return out
}

// FlattenGrad returns all gradients concatenated in list order.
func (l ParameterList) FlattenGrad() []float64 {
	out := make([]float64, 0, l.NumElements())
	for _, p := range l {
		out = append(out, p.grad.Data()...)
	}
	return out
}

// SetFlat overwrites all values from x, laid out as by Flatten.
// Panics if len(x) != NumElements().
func (l ParameterList) SetFlat(x []float64) {
	if len(x) != l.NumElements() {
		panic("params: SetFlat length mismatch")
	}
	off := 0
	for _, p := range l {
		n := copy(p.value.Data(), x[off:])
		off += n
	}
}

// CopyFrom overwrites values (not gradients) from src, which must have the
// same layout.
func (l ParameterList) CopyFrom(src ParameterList) error {
	if len(l) != len(src) {
		return errLengthMismatch(len(l), len(src))
	}
	for i, p := range l {
		if err := p.value.CopyFrom(src[i].value); err != nil {
			return err
		}
	}
	return nil
}
