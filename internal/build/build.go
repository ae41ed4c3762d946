// Package build rebuilds all-atom coordinates from a protein's angle table
// and the current build parameters.
//
// Builder is the forward-kinematics collaborator: given a tape and bound
// parameters it returns coordinates as tape vectors, so the energy gradient
// flows back to the parameters. NeRF is the reference implementation.
// Adapter wraps a Builder with the preparation and rebuild contract the
// optimization loop relies on.
package build

import (
	"github.com/pkg/errors"

	"github.com/sidechainnet/buildopt/internal/autodiff"
	"github.com/sidechainnet/buildopt/internal/params"
	"github.com/sidechainnet/buildopt/internal/protein"
)

// Errors returned by the adapter.
var (
	ErrNoEnergyContext = protein.ErrNoEnergyContext
	ErrTopologyChanged = errors.New("rebuilt structure topology differs from the prepared one")
)

// Structure is the output of one build.
type Structure struct {
	Coords []autodiff.Vec3
	Atoms  []protein.Atom
	Bonds  [][2]int
}

// Values returns the coordinate values.
func (s *Structure) Values() [][3]float64 {
	return Values(s.Coords)
}

// Values returns the values of tape coordinates.
func Values(coords []autodiff.Vec3) [][3]float64 {
	out := make([][3]float64, len(coords))
	for i, c := range coords {
		out[i] = c.Values()
	}
	return out
}

// Builder maps a protein and build parameters to Cartesian coordinates.
// Build must be deterministic and differentiable with respect to the bound
// parameters.
type Builder interface {
	Build(t *autodiff.Tape, p *protein.Protein, b *params.Bound, addHydrogens bool) (*Structure, error)
}

// Adapter drives a Builder for the optimization loop.
type Adapter struct {
	builder Builder
}

// NewAdapter wraps b.
func NewAdapter(b Builder) *Adapter {
	return &Adapter{builder: b}
}

// Prepare builds p once with hydrogens and without recording, fixing its
// topology and initial coordinates. It must run before the energy context
// is created. Preparing an already prepared protein only checks that the
// topology is unchanged.
func (a *Adapter) Prepare(p *protein.Protein, set *params.Set) error {
	t := autodiff.NewTape()
	s, err := a.builder.Build(t, p, params.Bind(t, set, nil), true)
	if err != nil {
		return errors.Wrapf(err, "preparing %s", p.ID)
	}
	if p.Atoms != nil {
		if len(p.Atoms) != len(s.Atoms) {
			return errors.Wrapf(ErrTopologyChanged, "%s: %d atoms, prepared with %d", p.ID, len(s.Atoms), len(p.Atoms))
		}
	} else {
		p.SetTopology(s.Atoms, s.Bonds)
	}
	p.HCoords = s.Values()
	return nil
}

// Rebuild builds p with hydrogens from the bound parameters and writes the
// coordinates into p.HCoords. It is not memoized: every call builds anew.
func (a *Adapter) Rebuild(t *autodiff.Tape, p *protein.Protein, b *params.Bound) ([]autodiff.Vec3, error) {
	if p.EnergyContext() == nil {
		return nil, errors.Wrap(ErrNoEnergyContext, p.ID)
	}
	s, err := a.builder.Build(t, p, b, true)
	if err != nil {
		return nil, errors.Wrapf(err, "rebuilding %s", p.ID)
	}
	if len(s.Coords) != len(p.Atoms) {
		return nil, errors.Wrapf(ErrTopologyChanged, "%s: %d atoms, prepared with %d", p.ID, len(s.Coords), len(p.Atoms))
	}
	if len(p.HCoords) != len(s.Coords) {
		p.HCoords = make([][3]float64, len(s.Coords))
	}
	for i, c := range s.Coords {
		p.HCoords[i] = c.Values()
	}
	return s.Coords, nil
}
