package ops

// AddOp represents y = a + b.
type AddOp struct {
	a, b, out int
}

// NewAddOp creates a new AddOp.
func NewAddOp(a, b, out int) *AddOp {
	return &AddOp{a: a, b: b, out: out}
}

// Backward passes the gradient through unchanged to both inputs.
func (op *AddOp) Backward(outputGrad float64) []float64 {
	return []float64{outputGrad, outputGrad}
}

// Inputs returns [a, b].
func (op *AddOp) Inputs() []int { return []int{op.a, op.b} }

// Output returns a + b.
func (op *AddOp) Output() int { return op.out }

// SubOp represents y = a - b.
type SubOp struct {
	a, b, out int
}

// NewSubOp creates a new SubOp.
func NewSubOp(a, b, out int) *SubOp {
	return &SubOp{a: a, b: b, out: out}
}

// Backward returns [grad, -grad].
func (op *SubOp) Backward(outputGrad float64) []float64 {
	return []float64{outputGrad, -outputGrad}
}

// Inputs returns [a, b].
func (op *SubOp) Inputs() []int { return []int{op.a, op.b} }

// Output returns a - b.
func (op *SubOp) Output() int { return op.out }

// MulOp represents y = a * b.
//
// Backward pass:
//   - grad_a = grad_output * b
//   - grad_b = grad_output * a
type MulOp struct {
	a, b, out int
	av, bv    float64
}

// NewMulOp creates a new MulOp. av and bv are the input values.
func NewMulOp(a, b, out int, av, bv float64) *MulOp {
	return &MulOp{a: a, b: b, out: out, av: av, bv: bv}
}

// Backward computes input gradients for multiplication.
func (op *MulOp) Backward(outputGrad float64) []float64 {
	return []float64{outputGrad * op.bv, outputGrad * op.av}
}

// Inputs returns [a, b].
func (op *MulOp) Inputs() []int { return []int{op.a, op.b} }

// Output returns a * b.
func (op *MulOp) Output() int { return op.out }

// DivOp represents y = a / b.
//
// Backward pass:
//   - grad_a = grad_output / b
//   - grad_b = -grad_output * a / b²
type DivOp struct {
	a, b, out int
	av, bv    float64
}

// NewDivOp creates a new DivOp. av and bv are the input values.
func NewDivOp(a, b, out int, av, bv float64) *DivOp {
	return &DivOp{a: a, b: b, out: out, av: av, bv: bv}
}

// Backward computes input gradients for division.
func (op *DivOp) Backward(outputGrad float64) []float64 {
	return []float64{outputGrad / op.bv, -outputGrad * op.av / (op.bv * op.bv)}
}

// Inputs returns [a, b].
func (op *DivOp) Inputs() []int { return []int{op.a, op.b} }

// Output returns a / b.
func (op *DivOp) Output() int { return op.out }

// ScaleOp represents y = c * x for a constant c.
type ScaleOp struct {
	x, out int
	c      float64
}

// NewScaleOp creates a new ScaleOp.
func NewScaleOp(x, out int, c float64) *ScaleOp {
	return &ScaleOp{x: x, out: out, c: c}
}

// Backward returns [c * grad].
func (op *ScaleOp) Backward(outputGrad float64) []float64 {
	return []float64{op.c * outputGrad}
}

// Inputs returns [x].
func (op *ScaleOp) Inputs() []int { return []int{op.x} }

// Output returns c * x.
func (op *ScaleOp) Output() int { return op.out }

// ShiftOp represents y = x + c for a constant c.
type ShiftOp struct {
	x, out int
}

// NewShiftOp creates a new ShiftOp.
func NewShiftOp(x, out int) *ShiftOp {
	return &ShiftOp{x: x, out: out}
}

// Backward returns [grad].
func (op *ShiftOp) Backward(outputGrad float64) []float64 {
	return []float64{outputGrad}
}

// Inputs returns [x].
func (op *ShiftOp) Inputs() []int { return []int{op.x} }

// Output returns x + c.
func (op *ShiftOp) Output() int { return op.out }

// SumOp represents y = Σ xᵢ.
type SumOp struct {
	inputs []int
	out    int
}

// NewSumOp creates a new SumOp.
func NewSumOp(inputs []int, out int) *SumOp {
	return &SumOp{inputs: inputs, out: out}
}

// Backward passes the gradient to every input.
func (op *SumOp) Backward(outputGrad float64) []float64 {
	grads := make([]float64, len(op.inputs))
	for i := range grads {
		grads[i] = outputGrad
	}
	return grads
}

// Inputs returns the summed slots.
func (op *SumOp) Inputs() []int { return op.inputs }

// Output returns the sum.
func (op *SumOp) Output() int { return op.out }
