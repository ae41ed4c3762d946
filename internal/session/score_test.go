package session

import (
	"math"
	"testing"

	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidechainnet/buildopt/internal/build"
	"github.com/sidechainnet/buildopt/internal/energy"
	"github.com/sidechainnet/buildopt/internal/protein"
	"github.com/sidechainnet/buildopt/internal/residue"
)

func TestScoreSkipsUnresolvedProteins(t *testing.T) {
	ff := &quadraticField{constant: 5}
	targets := []Target{
		{Protein: alanine(t)},
		{Protein: must.M1(protein.New("unknown", "AXG", nil))},
		{Protein: must.M1(protein.SingleResidue('G'))},
	}

	res, err := Score(targets, build.NeRF{}, ff, nil, energy.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ALA", "GLY"}, res.Scored)
	assert.Equal(t, []string{"unknown"}, res.Skipped)
	assert.Equal(t, 10.0, res.Loss)
	assert.Equal(t, 10.0, res.Raw)
	assert.Equal(t, int32(2), ff.inits.Load())
	assert.Nil(t, targets[1].Protein.EnergyContext())
}

// backboneLayout exposes only the heavy backbone atoms and CB.
func backboneLayout(byte) []string {
	return []string{"N", "CA", "C", "O", "CB"}
}

func TestScoreRemapsExternalCoordinates(t *testing.T) {
	p := alanine(t)
	built := shiftedTarget(t, p, 0)
	ff := &quadraticField{target: built}

	names := must.M1(residue.Lookup('A')).AtomNames(true)
	index := map[string]int{}
	for k, name := range names {
		index[name] = k
	}
	row := make([][3]float64, 0, 5)
	for _, name := range backboneLayout('A') {
		x := built[index[name]]
		x[0] += 0.1
		row = append(row, x)
	}

	res, err := Score([]Target{{Protein: p, Layout: backboneLayout, Coords: [][][3]float64{row}}},
		build.NeRF{}, ff, nil, energy.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ALA"}, res.Scored)
	// Five shifted atoms, the rest keep their built position.
	assert.InDelta(t, 5*0.01, res.Raw, 1e-9)
	assert.Len(t, res.Missing, len(names)-5)
	for _, m := range res.Missing {
		assert.NotContains(t, backboneLayout('A'), m.Atom)
	}
	assert.InDelta(t, built[index["CA"]][0]+0.1, p.HCoords[p.AtomIndex(0, "CA")][0], 1e-12)
	assert.False(t, math.IsNaN(p.HCoords[p.AtomIndex(0, "HA")][0]))
}

func TestScoreSkipsUnmappableResidue(t *testing.T) {
	p := alanine(t)
	layout := func(byte) []string { return []string{"N1", "C9"} }
	coords := [][][3]float64{{{0, 0, 0}, {1, 0, 0}}}

	res, err := Score([]Target{{Protein: p, Layout: layout, Coords: coords}},
		build.NeRF{}, &quadraticField{constant: 1}, nil, energy.Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Scored)
	assert.Equal(t, []string{"ALA"}, res.Skipped)
	assert.Equal(t, 0.0, res.Loss)
}

func TestScoreRejectsBadCoordinates(t *testing.T) {
	p := alanine(t)
	_, err := Score([]Target{{Protein: p, Coords: [][][3]float64{{}}}},
		build.NeRF{}, &quadraticField{constant: 1}, nil, energy.Options{})
	assert.Error(t, err)

	// One row of coordinates for a two-residue protein.
	p2 := must.M1(protein.New("ag", "AG", nil))
	_, err = Score([]Target{{Protein: p2, Layout: backboneLayout, Coords: [][][3]float64{{}}}},
		build.NeRF{}, &quadraticField{constant: 1}, nil, energy.Options{})
	assert.Error(t, err)
}
