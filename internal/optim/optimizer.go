// Package optim implements the optimization algorithms that update build
// parameters.
//
// This package provides:
//   - Optimizer interface: first-order optimizers that apply the gradients
//     already stored on the parameters
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//   - LBFGS: limited-memory BFGS driven by a re-evaluable closure
//   - PlateauScheduler, LinearWarmup: learning-rate schedules
//   - EarlyStopping: patience-based termination with best-loss tracking
//
// Design inspired by PyTorch's torch.optim.
//
// Example usage:
//
//	optimizer := optim.NewAdam(list, optim.AdamConfig{LR: 0.001})
//	for step := range steps {
//	    optimizer.ZeroGrad()
//	    loss := evaluate() // fills list gradients
//	    optimizer.Step()
//	}
package optim

// Optimizer is the interface of first-order optimizers.
//
// All optimizers must implement:
//   - Step: Apply gradient updates to parameters
//   - ZeroGrad: Clear gradients before next iteration
//   - GetLR/SetLR: Read and change the learning rate (for scheduling)
type Optimizer interface {
	// Step applies one update to every parameter from its current gradient.
	Step()

	// ZeroGrad clears all parameter gradients.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float64

	// SetLR changes the learning rate.
	SetLR(lr float64)
}

// Closure re-evaluates the loss at the current parameter values and stores
// its gradient on the parameters.
type Closure func() (float64, error)
