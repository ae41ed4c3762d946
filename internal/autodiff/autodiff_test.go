package autodiff_test

import (
	"math"
	"testing"

	"github.com/sidechainnet/buildopt/internal/autodiff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// numericalGradient computes the gradient using central finite differences.
func numericalGradient(f func(float64) float64, x, epsilon float64) float64 {
	return (f(x+epsilon) - f(x-epsilon)) / (2 * epsilon)
}

// scalarCase evaluates fn on a fresh tape and returns (value, dfn/dx).
func scalarCase(x float64, fn func(autodiff.Var) autodiff.Var) (float64, float64) {
	tape := autodiff.NewTape()
	tape.StartRecording()
	leaf := tape.Leaf(x)
	y := fn(leaf)
	return y.Value(), tape.Backward(y).Of(leaf)
}

func TestScalarOpsMatchFiniteDifferences(t *testing.T) {
	cases := []struct {
		name string
		x    float64
		fn   func(autodiff.Var) autodiff.Var
	}{
		{"square", 3, func(v autodiff.Var) autodiff.Var { return v.Square() }},
		{"sin", 0.7, func(v autodiff.Var) autodiff.Var { return v.Sin() }},
		{"cos", 0.7, func(v autodiff.Var) autodiff.Var { return v.Cos() }},
		{"exp", -0.3, func(v autodiff.Var) autodiff.Var { return v.Exp() }},
		{"sqrt", 2.5, func(v autodiff.Var) autodiff.Var { return v.Sqrt() }},
		{"recip", 1.7, func(v autodiff.Var) autodiff.Var { return v.Recip() }},
		{"composite", 1.2, func(v autodiff.Var) autodiff.Var {
			// (x + 2) * 3 / sin(x) - x
			return v.Shift(2).Scale(3).Div(v.Sin()).Sub(v)
		}},
		{"reuse", 0.4, func(v autodiff.Var) autodiff.Var {
			// sin²(x) + cos²(x) has zero derivative
			return v.Sin().Square().Add(v.Cos().Square())
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := func(x float64) float64 {
				v, _ := scalarCase(x, tc.fn)
				return v
			}
			_, grad := scalarCase(tc.x, tc.fn)
			assert.InDelta(t, numericalGradient(f, tc.x, 1e-6), grad, 1e-6)
		})
	}
}

func TestSumAndNeg(t *testing.T) {
	tape := autodiff.NewTape()
	tape.StartRecording()
	a, b, c := tape.Leaf(1), tape.Leaf(2), tape.Leaf(3)
	s := tape.Sum(a, b.Neg(), c, a)
	assert.Equal(t, 3.0, s.Value())

	grads := tape.Backward(s)
	assert.Equal(t, 2.0, grads.Of(a))
	assert.Equal(t, -1.0, grads.Of(b))
	assert.Equal(t, 1.0, grads.Of(c))

	assert.Equal(t, 0.0, tape.Sum().Value())
}

func TestExternalOp(t *testing.T) {
	tape := autodiff.NewTape()
	tape.StartRecording()
	x, y := tape.Leaf(1), tape.Leaf(2)

	_, err := tape.External([]autodiff.Var{x}, 5, []float64{1, 2})
	require.Error(t, err)

	e, err := tape.External([]autodiff.Var{x, y}, 5, []float64{3, -4})
	require.NoError(t, err)
	loss := e.Scale(2)

	grads := tape.Backward(loss)
	assert.Equal(t, 6.0, grads.Of(x))
	assert.Equal(t, -8.0, grads.Of(y))
}

func TestNotRecordingComputesValuesOnly(t *testing.T) {
	tape := autodiff.NewTape()
	x := tape.Leaf(2)
	y := x.Mul(x).Shift(1)
	assert.Equal(t, 5.0, y.Value())
	assert.Equal(t, 0, tape.NumOps())

	grads := tape.Backward(y)
	assert.Equal(t, 0.0, grads.Of(x))
	assert.Equal(t, 1.0, grads.Of(y))
}

func TestBackwardRestoresRecordingState(t *testing.T) {
	tape := autodiff.NewTape()
	tape.StartRecording()
	x := tape.Leaf(2)
	y := x.Square()
	tape.Backward(y)
	assert.True(t, tape.IsRecording())

	tape.Clear()
	assert.Equal(t, 0, tape.NumOps())
	assert.Equal(t, 0, tape.NumVars())
}

func TestMixedTapesPanic(t *testing.T) {
	a := autodiff.NewTape().Leaf(1)
	b := autodiff.NewTape().Leaf(2)
	assert.Panics(t, func() { a.Add(b) })
}

func TestVec3Geometry(t *testing.T) {
	tape := autodiff.NewTape()
	tape.StartRecording()
	a := tape.Vec([3]float64{1, 0, 0})
	b := tape.Vec([3]float64{0, 2, 0})

	assert.Equal(t, [3]float64{0, 0, 2}, a.Cross(b).Values())
	assert.Equal(t, 0.0, a.Dot(b).Value())
	assert.InDelta(t, 1.0, b.Unit().Norm().Value(), 1e-12)

	// d|a-b|/da = (a-b)/|a-b|
	d := a.Sub(b).Norm()
	grads := tape.Backward(d)
	g := grads.OfVec(a)
	assert.InDelta(t, 1/math.Sqrt(5), g[0], 1e-12)
	assert.InDelta(t, -2/math.Sqrt(5), g[1], 1e-12)
	assert.InDelta(t, 0.0, g[2], 1e-12)
}
