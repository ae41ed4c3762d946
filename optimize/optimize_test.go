// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optimize_test

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/sidechainnet/buildopt/optimize"
)

func TestRunHarmonic(t *testing.T) {
	p, err := optimize.NewProtein("dipeptide", "GA", nil)
	if err != nil {
		t.Fatalf("NewProtein failed: %v", err)
	}

	res, err := optimize.Run(p, optimize.Config{
		Keys:     optimize.NewKeySet(optimize.Thetas),
		Strategy: optimize.AdaptiveSGD,
		LR:       1e-3,
		Steps:    5,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(res.Losses) == 0 || len(res.Losses) > 5 {
		t.Fatalf("got %d losses, want 1..5", len(res.Losses))
	}
	for i, l := range res.Losses {
		if math.IsNaN(l) || math.IsInf(l, 0) {
			t.Errorf("loss %d is not finite: %v", i, l)
		}
	}
	if res.State != optimize.Converged && res.State != optimize.Exhausted {
		t.Errorf("State = %v, want CONVERGED or EXHAUSTED", res.State)
	}

	path := filepath.Join(t.TempDir(), "build_params.bprm")
	if err := optimize.SaveParams(path, res.Params); err != nil {
		t.Fatalf("SaveParams failed: %v", err)
	}
	set, header, err := optimize.LoadParams(path)
	if err != nil {
		t.Fatalf("LoadParams failed: %v", err)
	}
	if header.Run != nil {
		t.Errorf("header.Run = %+v, want nil", header.Run)
	}
	if set.String() != res.Params.String() {
		t.Errorf("loaded field kinds %s, want %s", set, res.Params)
	}
}

func TestRunRejectsUnknownStrategy(t *testing.T) {
	_, err := optimize.Run(optimize.AlphabetProtein(), optimize.Config{Strategy: "newton"})
	if err == nil {
		t.Fatal("expected an error for an unknown strategy")
	}
}

func TestScoreSkipsUnresolved(t *testing.T) {
	ala, err := optimize.NewProtein("ala", "A", nil)
	if err != nil {
		t.Fatalf("NewProtein failed: %v", err)
	}
	unknown, err := optimize.NewProtein("unknown", "AXG", nil)
	if err != nil {
		t.Fatalf("NewProtein failed: %v", err)
	}

	res, err := optimize.Score([]optimize.Target{{Protein: ala}, {Protein: unknown}}, nil, optimize.EnergyOptions{})
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if len(res.Scored) != 1 || res.Scored[0] != "ala" {
		t.Errorf("Scored = %v, want [ala]", res.Scored)
	}
	if len(res.Skipped) != 1 || res.Skipped[0] != "unknown" {
		t.Errorf("Skipped = %v, want [unknown]", res.Skipped)
	}
	if math.IsNaN(res.Loss) || math.IsInf(res.Loss, 0) {
		t.Errorf("Loss is not finite: %v", res.Loss)
	}
}

func TestRemap(t *testing.T) {
	layout := func(byte) []string { return []string{"CA", "", "N"} }
	coords := [][][3]float64{{{1, 2, 3}, {9, 9, 9}, {4, 5, 6}}}

	r, err := optimize.Remap("G", layout, coords, false)
	if err != nil {
		t.Fatalf("Remap failed: %v", err)
	}
	// Glycine without hydrogens: N, CA, C, O.
	if got := r.Coords[0][0]; got != [3]float64{4, 5, 6} {
		t.Errorf("N = %v, want [4 5 6]", got)
	}
	if got := r.Coords[0][1]; got != [3]float64{1, 2, 3} {
		t.Errorf("CA = %v, want [1 2 3]", got)
	}
	if !math.IsNaN(r.Coords[0][2][0]) {
		t.Errorf("C = %v, want NaN", r.Coords[0][2])
	}
	if len(r.Missing) != 2 {
		t.Errorf("got %d missing atoms, want 2", len(r.Missing))
	}

	_, err = optimize.Remap("G", func(byte) []string { return []string{"X"} }, [][][3]float64{{{0, 0, 0}}}, false)
	var unresolved *optimize.UnresolvedResidueError
	if !errors.As(err, &unresolved) {
		t.Errorf("Remap error = %v, want *UnresolvedResidueError", err)
	}
}
