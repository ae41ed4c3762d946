package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidechainnet/buildopt/internal/params"
	"github.com/sidechainnet/buildopt/internal/residue"
	"github.com/sidechainnet/buildopt/internal/session"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadRunFile(t *testing.T) {
	path := writeFile(t, `
protein:
  id: dipeptide
  sequence: AG
output: out/ag.bprm
session:
  keys: [thetas, chis]
  strategy: adam
  lr: 1e-3
  steps: 250
  energy:
    scale_by_length: true
`)
	rf, err := LoadRunFile(path)
	require.NoError(t, err)
	assert.Equal(t, "out/ag.bprm", rf.Output)
	assert.Equal(t, "adam", rf.Session.Strategy)
	assert.Equal(t, 1e-3, rf.Session.LR)
	assert.Equal(t, 250, rf.Session.Steps)
	assert.Equal(t, params.NewKeySet(params.Thetas, params.Chis), rf.Session.Keys)
	assert.True(t, rf.Session.Energy.ScaleByLength)

	p, err := rf.Protein.Build()
	require.NoError(t, err)
	assert.Equal(t, "dipeptide", p.ID)
	assert.Equal(t, 2, p.Len())
}

func TestLoadRunFileRejectsUnknownFields(t *testing.T) {
	_, err := LoadRunFile(writeFile(t, "session:\n  learning_rate: 1\n"))
	assert.Error(t, err)

	_, err = LoadRunFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestProteinConfigDefaultsToAlphabet(t *testing.T) {
	p, err := ProteinConfig{}.Build()
	require.NoError(t, err)
	assert.Equal(t, residue.Alphabet, p.Sequence)

	// One angle row for two residues.
	_, err = ProteinConfig{Sequence: "AG", Angles: make([][residue.NumAngles]float64, 1)}.Build()
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	res := &session.Result{
		ID:       "run-1",
		Protein:  "alphabet",
		Strategy: session.AdaptiveSGD,
		Keys:     params.AllKeys,
		Losses:   []float64{3, 2, 1},
		BestLoss: 1,
		Steps:    3,
		State:    session.Exhausted,
	}
	out := summary(res, 1234, filepath.Join(t.TempDir(), "missing.bprm"))
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "EXHAUSTED")
	assert.Contains(t, out, "1,234")
	assert.Contains(t, out, "bond_lengths,thetas,chis")
}
