package ops

// ExternalOp records a scalar computed outside the tape, e.g. by a force
// field, together with its partial derivatives with respect to the inputs.
//
// Backward pass:
//   - grad_input[i] = grad_output * partials[i]
type ExternalOp struct {
	inputs   []int
	out      int
	partials []float64
}

// NewExternalOp creates a new ExternalOp. len(partials) must equal len(inputs).
func NewExternalOp(inputs []int, out int, partials []float64) *ExternalOp {
	return &ExternalOp{inputs: inputs, out: out, partials: partials}
}

// Backward scales the stored partials by the output gradient.
func (op *ExternalOp) Backward(outputGrad float64) []float64 {
	grads := make([]float64, len(op.partials))
	for i, p := range op.partials {
		grads[i] = outputGrad * p
	}
	return grads
}

// Inputs returns the input slots.
func (op *ExternalOp) Inputs() []int { return op.inputs }

// Output returns the output slot.
func (op *ExternalOp) Output() int { return op.out }
