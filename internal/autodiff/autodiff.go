// Package autodiff implements reverse-mode automatic differentiation over
// scalar variables recorded on a gradient tape.
//
// Architecture:
//   - Tape: owns variable values and records operations during the forward pass
//   - Var: a handle to one scalar slot on a tape
//   - Vec3: three Vars, used for atom positions
//   - Operation interface (package ops): each op implements its backward pass
//
// Usage:
//
//	tape := autodiff.NewTape()
//	tape.StartRecording()
//	x := tape.Leaf(2.0)
//	y := x.Mul(x) // y = x²
//	grads := tape.Backward(y)
//	fmt.Println(grads.Of(x)) // dy/dx = 2x = 4.0
//
// A tape that is not recording still computes values, which is how
// gradient-free rebuilds are performed.
package autodiff
