package energy

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/sidechainnet/buildopt/internal/autodiff"
	"github.com/sidechainnet/buildopt/internal/forcefield"
	"github.com/sidechainnet/buildopt/internal/parallel"
	"github.com/sidechainnet/buildopt/internal/protein"
)

// BatchResult aggregates the evaluation of several proteins.
type BatchResult struct {
	// Total is the sum of the transformed losses of the evaluated proteins.
	Total autodiff.Var
	// RawTotal is the sum of their raw energies.
	RawTotal float64
	// Evaluated lists the evaluated proteins; Coords[i] are the tape
	// coordinates of Evaluated[i] and carry the gradient of Total.
	Evaluated []*protein.Protein
	Coords    [][]autodiff.Vec3
	// Skipped lists the IDs of proteins with unresolved residues.
	Skipped []string
}

// Batch evaluates every protein from its HCoords and sums the losses.
//
// Proteins with an unresolved residue are skipped and contribute nothing;
// they never make Batch fail. Missing energy contexts are initialized with
// default options, concurrently; the tape is only touched sequentially.
func (e *Evaluator) Batch(t *autodiff.Tape, proteins []*protein.Protein) (BatchResult, error) {
	resolved := make([]error, len(proteins))
	err := parallel.ForErr(len(proteins), func(i int) error {
		p := proteins[i]
		if resolved[i] = p.Resolved(); resolved[i] != nil {
			return nil
		}
		return e.Prepare(p, forcefield.InitOptions{})
	}, parallel.DefaultConfig())
	if err != nil {
		return BatchResult{}, err
	}

	var res BatchResult
	var losses []autodiff.Var
	for i, p := range proteins {
		if err := resolved[i]; err != nil {
			klog.Warningf("skipping %s: %v", p.ID, err)
			res.Skipped = append(res.Skipped, p.ID)
			continue
		}
		coords := make([]autodiff.Vec3, len(p.HCoords))
		for i, c := range p.HCoords {
			coords[i] = t.Vec(c)
		}
		r, err := e.Evaluate(t, p, coords)
		if err != nil {
			var unresolved *protein.UnresolvedResidueError
			if errors.As(err, &unresolved) {
				klog.Warningf("skipping %s: %v", p.ID, err)
				res.Skipped = append(res.Skipped, p.ID)
				continue
			}
			return BatchResult{}, err
		}
		losses = append(losses, r.Loss)
		res.RawTotal += r.Raw
		res.Evaluated = append(res.Evaluated, p)
		res.Coords = append(res.Coords, coords)
	}
	res.Total = t.Sum(losses...)
	return res, nil
}
