package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sidechainnet/buildopt/internal/params"
	"github.com/sidechainnet/buildopt/internal/report"
	"github.com/sidechainnet/buildopt/internal/serialization"
)

// Result is the outcome of Session.Run.
type Result struct {
	ID       string
	Protein  string
	Strategy string
	Keys     params.KeySet

	// Params is the final parameter set: the best snapshot for first-order
	// strategies, the last iterate for quasi_newton.
	Params *params.Set
	// List holds the optimized values of Params.
	List params.ParameterList
	// Coords are the protein coordinates built from Params.
	Coords [][3]float64

	// Losses holds one loss per iteration.
	Losses []float64
	// History holds the initial parameters and one snapshot per iteration.
	History  []params.ParameterList
	BestLoss float64
	Steps    int
	// State is the terminal state, Converged or Exhausted.
	State State
	// Drift is the coordinate RMSD (Å) between the structure built from the
	// starting parameters and Coords.
	Drift float64
}

// PlotPath returns the loss-curve path that goes with a parameter file.
func PlotPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".png"
}

// Save writes the parameter file to path and the loss curve to
// PlotPath(path), creating the directory if needed.
func (r *Result) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	run := &serialization.RunMeta{
		ID:       r.ID,
		Protein:  r.Protein,
		Strategy: r.Strategy,
		Keys:     r.Keys.Names(),
		Steps:    r.Steps,
		State:    strings.ToLower(r.State.String()),
		BestLoss: r.BestLoss,
		Losses:   r.Losses,
	}
	if err := serialization.SaveSet(path, r.Params, run); err != nil {
		return err
	}
	title := fmt.Sprintf("Protein potential energy with build parameters (%s)", r.Protein)
	return report.SaveLossCurve(PlotPath(path), title, r.Losses)
}
