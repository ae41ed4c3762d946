package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sidechainnet/buildopt/internal/protein"
	"github.com/sidechainnet/buildopt/internal/residue"
	"github.com/sidechainnet/buildopt/internal/session"
)

// RunFile describes one optimization run.
//
//	protein:
//	  id: 1abc
//	  sequence: ACDE
//	input: resources/build_params.bprm
//	output: out/1abc.bprm
//	session:
//	  strategy: adam
//	  lr: 1e-3
//	  steps: 25000
type RunFile struct {
	Protein ProteinConfig  `yaml:"protein"`
	Input   string         `yaml:"input"`
	Output  string         `yaml:"output"`
	Session session.Config `yaml:"session"`
}

// ProteinConfig is the target protein of a run. Angles are in radians with one
// row per residue; .nan entries, or no angles at all, take the defaults.
type ProteinConfig struct {
	ID       string                       `yaml:"id"`
	Sequence string                       `yaml:"sequence"`
	Angles   [][residue.NumAngles]float64 `yaml:"angles"`
}

// Build returns the protein described by s, or the alphabet protein when no
// sequence is given.
func (s ProteinConfig) Build() (*protein.Protein, error) {
	if s.Sequence == "" {
		return protein.Alphabet(), nil
	}
	id := s.ID
	if id == "" {
		id = "protein"
	}
	return protein.New(id, s.Sequence, s.Angles)
}

// LoadRunFile reads a YAML run file. Unknown fields are rejected.
func LoadRunFile(path string) (*RunFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var rf RunFile
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&rf); err != nil {
		return nil, errors.Wrapf(err, "parse run file %s", path)
	}
	return &rf, nil
}
