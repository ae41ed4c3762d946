package autodiff

import (
	"fmt"

	"github.com/sidechainnet/buildopt/internal/autodiff/ops"
)

// Tape stores variable values and records operations during the forward
// pass; Backward computes gradients by walking the recorded operations in
// reverse.
type Tape struct {
	values     []float64       // Value of every variable, indexed by slot
	operations []ops.Operation // Recorded operations (in execution order)
	recording  bool            // Whether tape is currently recording
}

// NewTape creates a new tape. Recording is off until StartRecording is called.
func NewTape() *Tape {
	return &Tape{
		values:     make([]float64, 0, 256),
		operations: make([]ops.Operation, 0, 256),
	}
}

// StartRecording enables operation recording.
func (t *Tape) StartRecording() {
	t.recording = true
}

// StopRecording disables operation recording.
func (t *Tape) StopRecording() {
	t.recording = false
}

// IsRecording returns true if the tape is currently recording operations.
func (t *Tape) IsRecording() bool {
	return t.recording
}

// Record adds an operation to the tape.
// Only records if the tape is currently recording.
func (t *Tape) Record(op ops.Operation) {
	if t.recording {
		t.operations = append(t.operations, op)
	}
}

// NumOps returns the number of recorded operations.
func (t *Tape) NumOps() int {
	return len(t.operations)
}

// NumVars returns the number of variables allocated on the tape.
func (t *Tape) NumVars() int {
	return len(t.values)
}

// Clear resets the tape, removing all variables and recorded operations.
// Vars created before Clear must not be used afterwards.
// Recording state is preserved.
func (t *Tape) Clear() {
	t.values = t.values[:0]
	t.operations = t.operations[:0]
}

// Leaf creates an input variable whose gradient callers will read.
func (t *Tape) Leaf(x float64) Var {
	return t.newVar(x)
}

// Const creates a variable that stands for a constant. It is a plain slot
// like any leaf; the name documents that its gradient is ignored.
func (t *Tape) Const(x float64) Var {
	return t.newVar(x)
}

func (t *Tape) newVar(x float64) Var {
	t.values = append(t.values, x)
	return Var{tape: t, id: len(t.values) - 1}
}

// Sum returns Σ vars. An empty sum is the constant 0.
func (t *Tape) Sum(vars ...Var) Var {
	if len(vars) == 0 {
		return t.Const(0)
	}
	inputs := make([]int, len(vars))
	total := 0.0
	for i, v := range vars {
		t.check(v)
		inputs[i] = v.id
		total += v.Value()
	}
	out := t.newVar(total)
	t.Record(ops.NewSumOp(inputs, out.id))
	return out
}

// External records a value computed outside the tape. partials[i] is
// d(value)/d(inputs[i]).
func (t *Tape) External(inputs []Var, value float64, partials []float64) (Var, error) {
	if len(inputs) != len(partials) {
		return Var{}, fmt.Errorf("external op: %d inputs but %d partials", len(inputs), len(partials))
	}
	slots := make([]int, len(inputs))
	for i, v := range inputs {
		t.check(v)
		slots[i] = v.id
	}
	out := t.newVar(value)
	t.Record(ops.NewExternalOp(slots, out.id, partials))
	return out, nil
}

func (t *Tape) check(v Var) {
	if v.tape != t {
		panic("autodiff: variable belongs to a different tape")
	}
}

// Backward computes gradients of out with respect to every variable by
// walking the tape in reverse.
//
// Algorithm:
//  1. Seed d(out)/d(out) = 1
//  2. Walk operations in reverse order
//  3. For each operation, compute input gradients using the chain rule
//  4. Accumulate gradients when the same variable is used multiple times
func (t *Tape) Backward(out Var) *Gradients {
	t.check(out)

	// Stop recording during backward pass.
	wasRecording := t.recording
	t.recording = false
	defer func() {
		t.recording = wasRecording
	}()

	grads := make([]float64, len(t.values))
	grads[out.id] = 1

	for i := len(t.operations) - 1; i >= 0; i-- {
		op := t.operations[i]
		outGrad := grads[op.Output()]
		if outGrad == 0 {
			continue
		}
		inputGrads := op.Backward(outGrad)
		for j, in := range op.Inputs() {
			if j >= len(inputGrads) {
				break
			}
			grads[in] += inputGrads[j]
		}
	}

	return &Gradients{grads: grads}
}

// Gradients holds the result of a backward pass.
type Gradients struct {
	grads []float64
}

// Of returns the gradient accumulated for v.
func (g *Gradients) Of(v Var) float64 {
	if v.id < 0 || v.id >= len(g.grads) {
		return 0
	}
	return g.grads[v.id]
}

// OfVec returns the gradient accumulated for each component of v.
func (g *Gradients) OfVec(v Vec3) [3]float64 {
	return [3]float64{g.Of(v[0]), g.Of(v[1]), g.Of(v[2])}
}
