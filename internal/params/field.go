package params

import (
	"github.com/pkg/errors"

	"github.com/sidechainnet/buildopt/internal/tensor"
)

// Kind is the representation a field currently has.
type Kind int

// Field kinds.
const (
	// Frozen fields are not optimized. Angles are stored in radians.
	Frozen Kind = iota
	// Linear fields are optimized and stored verbatim (bond lengths).
	Linear
	// Angular fields are optimized angles stored as a sine/cosine pair.
	Angular
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Frozen:
		return "frozen"
	case Linear:
		return "linear"
	case Angular:
		return "angular"
	default:
		return "unknown"
	}
}

// Field is one tensor of build parameters in exactly one representation.
//
// A Field owns its tensors; constructors do not copy.
type Field struct {
	kind  Kind
	value *tensor.Tensor // Frozen, Linear
	sin   *tensor.Tensor // Angular
	cos   *tensor.Tensor // Angular
}

// FrozenField wraps a value that is not optimized.
func FrozenField(value *tensor.Tensor) Field {
	return Field{kind: Frozen, value: value}
}

// LinearField wraps an optimized value stored verbatim.
func LinearField(value *tensor.Tensor) Field {
	return Field{kind: Linear, value: value}
}

// AngularField wraps an optimized angle given by its sine and cosine.
func AngularField(sin, cos *tensor.Tensor) (Field, error) {
	if !sin.Shape().Equal(cos.Shape()) {
		return Field{}, errors.Errorf("angular field: sin shape %v != cos shape %v", sin.Shape(), cos.Shape())
	}
	return Field{kind: Angular, sin: sin, cos: cos}, nil
}

// AngularFromRaw converts raw angles into an angular field.
func AngularFromRaw(angles *tensor.Tensor) Field {
	return Field{kind: Angular, sin: tensor.Sin(angles), cos: tensor.Cos(angles)}
}

// Kind returns the representation.
func (f Field) Kind() Kind {
	return f.kind
}

// Value returns the stored tensor of a Frozen or Linear field, nil otherwise.
func (f Field) Value() *tensor.Tensor {
	return f.value
}

// SinCos returns the pair of an Angular field, nil otherwise.
func (f Field) SinCos() (sin, cos *tensor.Tensor) {
	return f.sin, f.cos
}

// Raw returns the values in their natural units: the stored tensor for
// Frozen and Linear fields, atan2(sin, cos) for Angular ones. The result is a
// fresh tensor.
func (f Field) Raw() *tensor.Tensor {
	if f.kind == Angular {
		raw, err := tensor.Atan2(f.sin, f.cos)
		if err != nil {
			// Shapes are checked on construction.
			panic(err)
		}
		return raw
	}
	if f.value == nil {
		return nil
	}
	return f.value.Clone()
}

// Shape returns the shape of the field.
func (f Field) Shape() tensor.Shape {
	if f.kind == Angular {
		return f.sin.Shape()
	}
	return f.value.Shape()
}

// Clone returns a deep copy.
func (f Field) Clone() Field {
	c := Field{kind: f.kind}
	if f.value != nil {
		c.value = f.value.Clone()
	}
	if f.sin != nil {
		c.sin = f.sin.Clone()
		c.cos = f.cos.Clone()
	}
	return c
}
