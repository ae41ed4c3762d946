// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optimize provides the public API for fitting protein build
// parameters.
//
// A session rebuilds a target protein from the build parameters on every
// iteration, scores the structure with a force field and updates the
// selected parameters with the configured strategy.
//
// Example:
//
//	p, err := optimize.NewProtein("1abc", "ACDEFG", nil)
//	res, err := optimize.Run(p, optimize.Config{
//	    Strategy: optimize.AdaptiveSGD,
//	    LR:       1e-3,
//	    Steps:    25000,
//	})
//	err = res.Save(optimize.DefaultArtifactPath)
//
// Use New to supply another builder, force field or starting parameters.
package optimize

import (
	"github.com/sidechainnet/buildopt/internal/build"
	"github.com/sidechainnet/buildopt/internal/energy"
	"github.com/sidechainnet/buildopt/internal/forcefield"
	"github.com/sidechainnet/buildopt/internal/params"
	"github.com/sidechainnet/buildopt/internal/protein"
	"github.com/sidechainnet/buildopt/internal/residue"
	"github.com/sidechainnet/buildopt/internal/serialization"
	"github.com/sidechainnet/buildopt/internal/session"
)

// Sessions

// Session is one optimization run.
type Session = session.Session

// Config configures a Session.
type Config = session.Config

// Result is the outcome of Session.Run.
type Result = session.Result

// State is the lifecycle state of a Session.
type State = session.State

// Session states.
const (
	Init      = session.Init
	Stepping  = session.Stepping
	Converged = session.Converged
	Exhausted = session.Exhausted
	Done      = session.Done
)

// Strategy names.
const (
	QuasiNewton = session.QuasiNewton
	MomentumSGD = session.MomentumSGD
	AdaptiveSGD = session.AdaptiveSGD
)

// DefaultArtifactPath is where optimized parameters are saved by default.
const DefaultArtifactPath = session.DefaultArtifactPath

// Errors returned by sessions.
var (
	ErrNonFiniteLoss   = session.ErrNonFiniteLoss
	ErrAlreadyRun      = session.ErrAlreadyRun
	ErrUnknownStrategy = session.ErrUnknownStrategy
)

// New prepares a session. defaults seeds the parameter set; nil means
// DefaultParams().
func New(p *Protein, builder Builder, ff ForceField, defaults *ParamSet, cfg Config) (*Session, error) {
	return session.New(p, builder, ff, defaults, cfg)
}

// Run optimizes the default parameters for p with the NeRF builder and the
// harmonic force field.
func Run(p *Protein, cfg Config) (*Result, error) {
	s, err := New(p, build.NeRF{}, forcefield.NewHarmonic(), nil, cfg)
	if err != nil {
		return nil, err
	}
	return s.Run()
}

// Scoring

// Target is a protein to score, optionally with coordinates from an external
// atom layout.
type Target = session.Target

// ScoreResult is the outcome of Score.
type ScoreResult = session.ScoreResult

// EnergyOptions configures the transformation of raw energies into losses.
type EnergyOptions = energy.Options

// Evaluator turns force-field energies into losses on a tape.
type Evaluator = energy.Evaluator

// BatchResult aggregates the evaluation of several proteins.
type BatchResult = energy.BatchResult

// NewEvaluator returns an Evaluator for ff.
func NewEvaluator(ff ForceField, opts EnergyOptions) (*Evaluator, error) {
	return energy.NewEvaluator(ff, opts)
}

// Score evaluates every target with the NeRF builder and the harmonic force
// field. Proteins with unresolved residues are reported in
// ScoreResult.Skipped and contribute nothing. A nil set scores
// DefaultParams().
func Score(targets []Target, set *ParamSet, opts EnergyOptions) (*ScoreResult, error) {
	return session.Score(targets, build.NeRF{}, forcefield.NewHarmonic(), set, opts)
}

// Layout returns the atom names of a residue type in an external
// representation.
type Layout = residue.Layout

// Remapped holds coordinates converted to the template atom order.
type Remapped = residue.Remapped

// MissingAtomMappingError reports a template atom absent from a Layout.
type MissingAtomMappingError = residue.MissingAtomMappingError

// UnresolvedResidueError reports a residue that cannot be scored.
type UnresolvedResidueError = residue.UnresolvedResidueError

// Remap converts per-residue coordinates from layout into the template atom
// order. Unmapped atoms are NaN and listed in Remapped.Missing.
func Remap(sequence string, layout Layout, coords [][][3]float64, hydrogens bool) (*Remapped, error) {
	return residue.Remap(sequence, layout, coords, hydrogens)
}

// Proteins

// Protein is a target protein.
type Protein = protein.Protein

// NewProtein creates a protein. angles may be nil, in which case every
// angle takes its default value.
func NewProtein(id, sequence string, angles [][residue.NumAngles]float64) (*Protein, error) {
	return protein.New(id, sequence, angles)
}

// AlphabetProtein returns a protein with one residue of every type.
func AlphabetProtein() *Protein {
	return protein.Alphabet()
}

// Builders and force fields

// Builder computes all-atom coordinates from build parameters.
type Builder = build.Builder

// NeRF is the Natural Extension Reference Frame builder.
type NeRF = build.NeRF

// ForceField scores a built structure.
type ForceField = forcefield.ForceField

// Harmonic is a force field of harmonic bond and angle terms with an
// optional soft-sphere repulsion.
type Harmonic = forcefield.Harmonic

// NewHarmonic returns a Harmonic force field with the default constants.
func NewHarmonic() *Harmonic {
	return forcefield.NewHarmonic()
}

// Parameters

// ParamSet holds the build parameters of every anchor.
type ParamSet = params.Set

// KeySet selects the parameter fields under optimization.
type KeySet = params.KeySet

// Parameter fields.
const (
	BondLengths = params.BondLengths
	Thetas      = params.Thetas
	Chis        = params.Chis
	AllKeys     = params.AllKeys
)

// NewKeySet returns the set of the given keys.
func NewKeySet(keys ...params.Key) KeySet {
	return params.NewKeySet(keys...)
}

// DefaultParams returns the built-in build parameters.
func DefaultParams() *ParamSet {
	return params.Defaults()
}

// Header describes a saved parameter file.
type Header = serialization.Header

// SaveParams writes a parameter set to path.
func SaveParams(path string, set *ParamSet) error {
	return serialization.SaveSet(path, set, nil)
}

// LoadParams reads a parameter set saved by SaveParams or Result.Save.
func LoadParams(path string) (*ParamSet, Header, error) {
	return serialization.LoadSet(path)
}
