package ops

import "math"

// SinOp represents the sine operation: y = sin(x).
//
// Backward pass:
//   - d(sin(x))/dx = cos(x)
//   - grad_input = grad_output * cos(input)
type SinOp struct {
	x, out int
	xv     float64
}

// NewSinOp creates a new SinOp. xv is the input value.
func NewSinOp(x, out int, xv float64) *SinOp {
	return &SinOp{x: x, out: out, xv: xv}
}

// Backward computes input gradient for sin.
func (op *SinOp) Backward(outputGrad float64) []float64 {
	return []float64{outputGrad * math.Cos(op.xv)}
}

// Inputs returns [x].
func (op *SinOp) Inputs() []int { return []int{op.x} }

// Output returns sin(x).
func (op *SinOp) Output() int { return op.out }

// CosOp represents the cosine operation: y = cos(x).
//
// Backward pass:
//   - d(cos(x))/dx = -sin(x)
type CosOp struct {
	x, out int
	xv     float64
}

// NewCosOp creates a new CosOp. xv is the input value.
func NewCosOp(x, out int, xv float64) *CosOp {
	return &CosOp{x: x, out: out, xv: xv}
}

// Backward computes input gradient for cos.
func (op *CosOp) Backward(outputGrad float64) []float64 {
	return []float64{-outputGrad * math.Sin(op.xv)}
}

// Inputs returns [x].
func (op *CosOp) Inputs() []int { return []int{op.x} }

// Output returns cos(x).
func (op *CosOp) Output() int { return op.out }

// ExpOp represents y = exp(x). The derivative is the output itself.
type ExpOp struct {
	x, out int
	yv     float64
}

// NewExpOp creates a new ExpOp. yv is the output value exp(x).
func NewExpOp(x, out int, yv float64) *ExpOp {
	return &ExpOp{x: x, out: out, yv: yv}
}

// Backward computes grad * exp(x).
func (op *ExpOp) Backward(outputGrad float64) []float64 {
	return []float64{outputGrad * op.yv}
}

// Inputs returns [x].
func (op *ExpOp) Inputs() []int { return []int{op.x} }

// Output returns exp(x).
func (op *ExpOp) Output() int { return op.out }

// SqrtOp represents y = sqrt(x).
//
// Backward pass:
//   - d(sqrt(x))/dx = 1 / (2*sqrt(x))
type SqrtOp struct {
	x, out int
	yv     float64
}

// NewSqrtOp creates a new SqrtOp. yv is the output value sqrt(x).
func NewSqrtOp(x, out int, yv float64) *SqrtOp {
	return &SqrtOp{x: x, out: out, yv: yv}
}

// Backward computes grad / (2*sqrt(x)).
func (op *SqrtOp) Backward(outputGrad float64) []float64 {
	if op.yv == 0 {
		return []float64{0}
	}
	return []float64{outputGrad / (2 * op.yv)}
}

// Inputs returns [x].
func (op *SqrtOp) Inputs() []int { return []int{op.x} }

// Output returns sqrt(x).
func (op *SqrtOp) Output() int { return op.out }
