package session

import (
	"math"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/sidechainnet/buildopt/internal/autodiff"
	"github.com/sidechainnet/buildopt/internal/build"
	"github.com/sidechainnet/buildopt/internal/energy"
	"github.com/sidechainnet/buildopt/internal/forcefield"
	"github.com/sidechainnet/buildopt/internal/params"
	"github.com/sidechainnet/buildopt/internal/protein"
	"github.com/sidechainnet/buildopt/internal/residue"
)

// Target is a protein to score.
//
// Without Coords the protein is scored as built from the parameters. Coords
// holds per-residue coordinates in the atom order of Layout (for example
// the output of a structure prediction model); they replace the built
// coordinates atom by atom, and template atoms missing from Layout keep
// their built position.
type Target struct {
	Protein *protein.Protein
	Layout  residue.Layout
	Coords  [][][3]float64
}

// ScoreResult is the outcome of Score.
type ScoreResult struct {
	// Loss is the sum of the transformed losses of the scored proteins.
	Loss float64
	// Raw is the sum of their raw energies.
	Raw float64
	// Scored and Skipped list protein IDs. Proteins with an unknown residue,
	// or with a residue of which no atom could be remapped, are skipped.
	Scored  []string
	Skipped []string
	// Missing lists template atoms that had no counterpart in a Layout.
	Missing []*residue.MissingAtomMappingError
}

// Score evaluates the energy of every target under the parameters in set
// (nil means params.Defaults()). Energy contexts are created with default
// options; proteins that already carry one keep it.
func Score(targets []Target, builder build.Builder, ff forcefield.ForceField, set *params.Set, opts energy.Options) (*ScoreResult, error) {
	if set == nil {
		set = params.Defaults()
	}
	evaluator, err := energy.NewEvaluator(ff, opts)
	if err != nil {
		return nil, err
	}
	adapter := build.NewAdapter(builder)

	res := &ScoreResult{}
	batch := make([]*protein.Protein, 0, len(targets))
	for _, tg := range targets {
		p := tg.Protein
		if p.Resolved() != nil {
			// Batch reports it as skipped.
			batch = append(batch, p)
			continue
		}
		if err := adapter.Prepare(p, set); err != nil {
			return nil, err
		}
		if tg.Coords != nil {
			missing, err := applyCoords(p, tg.Layout, tg.Coords)
			if err != nil {
				var unresolved *protein.UnresolvedResidueError
				if errors.As(err, &unresolved) {
					klog.Warningf("skipping %s: %v", p.ID, err)
					res.Skipped = append(res.Skipped, p.ID)
					continue
				}
				return nil, errors.Wrapf(err, "coordinates of %s", p.ID)
			}
			res.Missing = append(res.Missing, missing...)
		}
		batch = append(batch, p)
	}

	br, err := evaluator.Batch(autodiff.NewTape(), batch)
	if err != nil {
		return nil, err
	}
	res.Loss = br.Total.Value()
	res.Raw = br.RawTotal
	for _, p := range br.Evaluated {
		res.Scored = append(res.Scored, p.ID)
	}
	res.Skipped = append(res.Skipped, br.Skipped...)
	klog.V(1).Infof("scored %d proteins, skipped %d, loss %g", len(res.Scored), len(res.Skipped), res.Loss)
	return res, nil
}

// applyCoords overwrites the prepared coordinates of p with coords remapped
// from layout.
func applyCoords(p *protein.Protein, layout residue.Layout, coords [][][3]float64) ([]*residue.MissingAtomMappingError, error) {
	if layout == nil {
		return nil, errors.New("coordinates given without a layout")
	}
	remapped, err := residue.Remap(p.Sequence, layout, coords, true)
	if err != nil {
		return nil, err
	}
	for i, atoms := range remapped.Coords {
		tmpl, err := residue.Lookup(p.Sequence[i])
		if err != nil {
			return nil, err
		}
		for k, name := range tmpl.AtomNames(true) {
			if math.IsNaN(atoms[k][0]) {
				continue
			}
			if j := p.AtomIndex(i, name); j >= 0 {
				p.HCoords[j] = atoms[k]
			}
		}
	}
	return remapped.Missing, nil
}
