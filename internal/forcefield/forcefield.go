// Package forcefield defines the energy oracle consumed by the optimization
// loop and provides Harmonic, a small reference force field.
//
// An oracle is initialized once per protein, after its topology is known,
// and then evaluated on plain coordinates; it returns the energy and its
// gradient with respect to every coordinate.
package forcefield

import (
	"github.com/pkg/errors"

	"github.com/sidechainnet/buildopt/internal/protein"
)

// Errors returned by force fields.
var (
	ErrWrongContext   = errors.New("energy context was created by a different force field")
	ErrCoordsMismatch = errors.New("coordinate count does not match the energy context")
)

// InitOptions configures context initialization.
type InitOptions struct {
	// Nonbonded enables interactions between atoms more than three bonds
	// apart. Off by default.
	Nonbonded bool
}

// ForceField is a differentiable molecular-mechanics energy oracle.
type ForceField interface {
	// Initialize creates the per-protein context. The protein must have a
	// topology (Atoms and Bonds). It may be called concurrently for
	// distinct proteins.
	Initialize(p *protein.Protein, opts InitOptions) (protein.EnergyContext, error)
	// Evaluate returns the energy of coords and dE/dcoords.
	Evaluate(ctx protein.EnergyContext, coords [][3]float64) (float64, [][3]float64, error)
}
