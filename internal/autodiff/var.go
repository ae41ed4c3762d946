package autodiff

import (
	"math"

	"github.com/sidechainnet/buildopt/internal/autodiff/ops"
)

// Var is a handle to a scalar variable on a Tape.
//
// The zero Var is invalid; create variables with Tape.Leaf or Tape.Const.
type Var struct {
	tape *Tape
	id   int
}

// Value returns the forward value.
func (v Var) Value() float64 {
	return v.tape.values[v.id]
}

// Tape returns the tape the variable lives on.
func (v Var) Tape() *Tape {
	return v.tape
}

func binary(a, b Var) *Tape {
	if a.tape == nil || a.tape != b.tape {
		panic("autodiff: operands belong to different tapes")
	}
	return a.tape
}

// Add returns v + w.
func (v Var) Add(w Var) Var {
	t := binary(v, w)
	out := t.newVar(v.Value() + w.Value())
	t.Record(ops.NewAddOp(v.id, w.id, out.id))
	return out
}

// Sub returns v - w.
func (v Var) Sub(w Var) Var {
	t := binary(v, w)
	out := t.newVar(v.Value() - w.Value())
	t.Record(ops.NewSubOp(v.id, w.id, out.id))
	return out
}

// Mul returns v * w.
func (v Var) Mul(w Var) Var {
	t := binary(v, w)
	av, bv := v.Value(), w.Value()
	out := t.newVar(av * bv)
	t.Record(ops.NewMulOp(v.id, w.id, out.id, av, bv))
	return out
}

// Div returns v / w.
func (v Var) Div(w Var) Var {
	t := binary(v, w)
	av, bv := v.Value(), w.Value()
	out := t.newVar(av / bv)
	t.Record(ops.NewDivOp(v.id, w.id, out.id, av, bv))
	return out
}

// Scale returns c * v.
func (v Var) Scale(c float64) Var {
	out := v.tape.newVar(c * v.Value())
	v.tape.Record(ops.NewScaleOp(v.id, out.id, c))
	return out
}

// Neg returns -v.
func (v Var) Neg() Var {
	return v.Scale(-1)
}

// Shift returns v + c.
func (v Var) Shift(c float64) Var {
	out := v.tape.newVar(v.Value() + c)
	v.tape.Record(ops.NewShiftOp(v.id, out.id))
	return out
}

// Square returns v².
func (v Var) Square() Var {
	return v.Mul(v)
}

// Sin returns sin(v).
func (v Var) Sin() Var {
	x := v.Value()
	out := v.tape.newVar(math.Sin(x))
	v.tape.Record(ops.NewSinOp(v.id, out.id, x))
	return out
}

// Cos returns cos(v).
func (v Var) Cos() Var {
	x := v.Value()
	out := v.tape.newVar(math.Cos(x))
	v.tape.Record(ops.NewCosOp(v.id, out.id, x))
	return out
}

// Exp returns exp(v).
func (v Var) Exp() Var {
	y := math.Exp(v.Value())
	out := v.tape.newVar(y)
	v.tape.Record(ops.NewExpOp(v.id, out.id, y))
	return out
}

// Sqrt returns sqrt(v).
func (v Var) Sqrt() Var {
	y := math.Sqrt(v.Value())
	out := v.tape.newVar(y)
	v.tape.Record(ops.NewSqrtOp(v.id, out.id, y))
	return out
}

// Recip returns 1 / v.
func (v Var) Recip() Var {
	return v.tape.Const(1).Div(v)
}
