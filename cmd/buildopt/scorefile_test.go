package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidechainnet/buildopt/internal/build"
	"github.com/sidechainnet/buildopt/internal/forcefield"
	"github.com/sidechainnet/buildopt/internal/session"
)

func TestLoadScoreFile(t *testing.T) {
	path := writeFile(t, `
params: out/ag.bprm
energy:
  scale_by_length: true
layout:
  a: [N, CA, C, O, CB]
targets:
  - id: ala
    sequence: A
    coords:
      - [[0, 0, 0], [1.46, 0, 0], [2, 1.4, 0], [3.2, 1.5, 0], [1.9, -0.8, 1.2]]
  - sequence: AXG
`)
	sf, err := LoadScoreFile(path)
	require.NoError(t, err)
	assert.Equal(t, "out/ag.bprm", sf.Params)
	assert.True(t, sf.Energy.ScaleByLength)

	targets, err := sf.Build()
	require.NoError(t, err)
	require.Len(t, targets, 2)
	assert.Equal(t, "ala", targets[0].Protein.ID)
	require.NotNil(t, targets[0].Layout)
	assert.Equal(t, []string{"N", "CA", "C", "O", "CB"}, targets[0].Layout('A'))
	assert.Len(t, targets[0].Coords, 1)
	assert.Equal(t, "target-2", targets[1].Protein.ID)
	assert.Nil(t, targets[1].Coords)

	res, err := session.Score(targets, build.NeRF{}, forcefield.NewHarmonic(), nil, sf.Energy)
	require.NoError(t, err)
	assert.Equal(t, []string{"ala"}, res.Scored)
	assert.Equal(t, []string{"target-2"}, res.Skipped)
	assert.Len(t, res.Missing, 5)
}

func TestScoreFileRejectsCoordsWithoutLayout(t *testing.T) {
	sf, err := LoadScoreFile(writeFile(t, "targets:\n  - sequence: A\n    coords: [[[0, 0, 0]]]\n"))
	require.NoError(t, err)
	_, err = sf.Build()
	assert.Error(t, err)

	sf, err = LoadScoreFile(writeFile(t, "layout:\n  ALA: [N]\n"))
	require.NoError(t, err)
	_, err = sf.Build()
	assert.Error(t, err)

	_, err = LoadScoreFile(writeFile(t, "target: []\n"))
	assert.Error(t, err)
}

func TestSequenceTargets(t *testing.T) {
	targets, err := sequenceTargets("ag, ,GXA")
	require.NoError(t, err)
	require.Len(t, targets, 2)
	assert.Equal(t, "AG", targets[0].Protein.ID)
	assert.Equal(t, "GXA", targets[1].Protein.Sequence)

	_, err = sequenceTargets(" , ")
	assert.Error(t, err)
}

func TestScoreSummary(t *testing.T) {
	out := scoreSummary(&session.ScoreResult{
		Loss:    1.5,
		Raw:     3,
		Scored:  []string{"AG"},
		Skipped: []string{"GXA"},
	})
	assert.Contains(t, out, "1 AG")
	assert.Contains(t, out, "1 GXA")
	assert.Contains(t, out, "1.5")
	assert.NotContains(t, out, "Unmapped")
}
