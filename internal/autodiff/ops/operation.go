// Package ops defines operation interfaces and implementations for automatic differentiation.
//
// Each operation records the tape slots of its inputs and output during the
// forward pass, together with whatever input values its derivative needs,
// and computes input gradients during the backward pass.
//
// Supported operations:
//   - AddOp, SubOp: d(a±b)/da = 1, d(a±b)/db = ±1
//   - MulOp: d(a*b)/da = b, d(a*b)/db = a
//   - DivOp: d(a/b)/da = 1/b, d(a/b)/db = -a/b²
//   - ScaleOp, ShiftOp: y = c*x, y = x + c
//   - SinOp, CosOp, ExpOp, SqrtOp: element-wise transcendental functions
//   - SumOp: y = Σ xᵢ
//   - ExternalOp: a value computed outside the tape with caller-supplied partials
package ops

// Operation represents a differentiable operation in the computation graph.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// Returns a slice of gradients corresponding to each input slot.
	//
	// Example for AddOp:
	//   inputs: [a, b]
	//   outputGrad: dL/d(a+b)
	//   returns: [dL/d(a+b), dL/d(a+b)]
	Backward(outputGrad float64) []float64

	// Inputs returns the tape slots of the input variables.
	Inputs() []int

	// Output returns the tape slot of the output variable.
	Output() int
}
