package optim

import (
	"github.com/sidechainnet/buildopt/internal/params"
	"github.com/sidechainnet/buildopt/internal/tensor"
)

// SGD implements Stochastic Gradient Descent optimizer with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
//
// Example:
//
//	optimizer := optim.NewSGD(list, optim.SGDConfig{
//	    LR:       1e-6,
//	    Momentum: 0.9,
//	})
type SGD struct {
	params     params.ParameterList
	lr         float64
	momentum   float64
	velocities map[*params.Parameter]*tensor.Tensor
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer.
func NewSGD(list params.ParameterList, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}

	return &SGD{
		params:     list,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*params.Parameter]*tensor.Tensor),
	}
}

// Step performs a single optimization step.
func (s *SGD) Step() {
	for _, param := range s.params {
		if s.momentum == 0 {
			s.updateParameter(param)
		} else {
			s.updateParameterWithMomentum(param)
		}
	}
}

// updateParameter performs simple SGD update without momentum.
func (s *SGD) updateParameter(param *params.Parameter) {
	data := param.Tensor().Data()
	for i, g := range param.Grad().Data() {
		data[i] -= s.lr * g
	}
}

// updateParameterWithMomentum performs SGD update with momentum.
func (s *SGD) updateParameterWithMomentum(param *params.Parameter) {
	velocity, exists := s.velocities[param]
	if !exists {
		velocity = tensor.ZerosLike(param.Tensor())
		s.velocities[param] = velocity
	}

	v := velocity.Data()
	data := param.Tensor().Data()
	for i, g := range param.Grad().Data() {
		v[i] = s.momentum*v[i] + g
		data[i] -= s.lr * v[i]
	}
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD) ZeroGrad() {
	s.params.ZeroGrad()
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}
