// Package protein holds the target structure of an optimization run: the
// sequence, the per-residue angle table, and the coordinates the builder
// writes back on every iteration.
package protein

import (
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/sidechainnet/buildopt/internal/residue"
)

// Errors shared with the residue package.
var (
	ErrUnresolvedResidue = residue.ErrUnresolvedResidue
	ErrNoTopology        = errors.New("protein has not been built yet")
	ErrContextSet        = errors.New("energy context already initialized")
	ErrNoEnergyContext   = errors.New("protein energy context is not initialized")
)

// UnresolvedResidueError reports a residue without force-field topology.
type UnresolvedResidueError = residue.UnresolvedResidueError

// EnergyContext is the per-protein state of an energy oracle (topology,
// force-field bookkeeping). It is created once and reused for every
// evaluation.
type EnergyContext interface {
	NumAtoms() int
}

// Atom identifies one built atom.
type Atom struct {
	Residue int
	Name    string
}

// Element returns the chemical element of the atom.
func (a Atom) Element() string {
	return residue.Element(a.Name)
}

// Protein is a caller-owned target structure.
//
// During session.Run the session borrows the protein exclusively: it
// rewrites HCoords and LastLoss on every iteration. Callers must not read
// or mutate it concurrently.
type Protein struct {
	ID       string
	Sequence string
	// Mask marks resolved ('+') and missing ('-') residues. Empty means all resolved.
	Mask string
	// Angles holds one row per residue, columns as in residue.Phi..residue.Chi5,
	// in radians. NaN marks a missing value.
	Angles [][residue.NumAngles]float64

	// HCoords holds the all-atom coordinates (hydrogens included) of the
	// latest build, ordered as Atoms.
	HCoords [][3]float64
	// Atoms and Bonds describe the topology fixed by the first build.
	Atoms []Atom
	Bonds [][2]int

	// LastLoss is the loss of the latest evaluation.
	LastLoss float64

	ctx EnergyContext
}

// New creates a protein. angles may be nil, in which case every angle takes
// its default value.
func New(id, sequence string, angles [][residue.NumAngles]float64) (*Protein, error) {
	if angles == nil {
		angles = make([][residue.NumAngles]float64, len(sequence))
		for i := range angles {
			for j := range angles[i] {
				angles[i][j] = math.NaN()
			}
		}
	}
	p := &Protein{ID: id, Sequence: sequence, Angles: angles}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Len returns the number of residues.
func (p *Protein) Len() int {
	return len(p.Sequence)
}

// Validate checks that the fields have consistent lengths.
func (p *Protein) Validate() error {
	if p.Len() == 0 {
		return errors.Errorf("protein %q: empty sequence", p.ID)
	}
	if len(p.Angles) != p.Len() {
		return errors.Errorf("protein %q: %d angle rows for %d residues", p.ID, len(p.Angles), p.Len())
	}
	if p.Mask != "" && len(p.Mask) != p.Len() {
		return errors.Errorf("protein %q: mask length %d for %d residues", p.ID, len(p.Mask), p.Len())
	}
	return nil
}

// Resolved returns an *UnresolvedResidueError if any residue has no
// force-field topology.
func (p *Protein) Resolved() error {
	return residue.CheckSequence(p.Sequence)
}

// Angle returns angle column col of residue i, or its default when missing.
func (p *Protein) Angle(i, col int) float64 {
	if i < 0 || i >= len(p.Angles) {
		return residue.DefaultAngles[col]
	}
	v := p.Angles[i][col]
	if math.IsNaN(v) {
		return residue.DefaultAngle(p.Sequence[i], col)
	}
	return v
}

// SetTopology records the atoms and bonds produced by the first build.
func (p *Protein) SetTopology(atoms []Atom, bonds [][2]int) {
	p.Atoms = atoms
	p.Bonds = bonds
}

// EnergyContext returns the energy context, or nil before initialization.
func (p *Protein) EnergyContext() EnergyContext {
	return p.ctx
}

// SetEnergyContext stores the energy context. It can be set only once.
func (p *Protein) SetEnergyContext(ctx EnergyContext) error {
	if p.ctx != nil {
		return ErrContextSet
	}
	if p.Atoms == nil {
		return ErrNoTopology
	}
	if ctx.NumAtoms() != len(p.Atoms) {
		return errors.Errorf("energy context has %d atoms, protein has %d", ctx.NumAtoms(), len(p.Atoms))
	}
	p.ctx = ctx
	return nil
}

// Clone returns a deep copy without the energy context.
func (p *Protein) Clone() *Protein {
	c := &Protein{
		ID:       p.ID,
		Sequence: p.Sequence,
		Mask:     p.Mask,
		Angles:   append([][residue.NumAngles]float64(nil), p.Angles...),
		HCoords:  append([][3]float64(nil), p.HCoords...),
		Atoms:    append([]Atom(nil), p.Atoms...),
		Bonds:    append([][2]int(nil), p.Bonds...),
		LastLoss: p.LastLoss,
	}
	return c
}

// AtomIndex returns the index of atom name of residue i, or -1.
func (p *Protein) AtomIndex(i int, name string) int {
	for j, a := range p.Atoms {
		if a.Residue == i && a.Name == name {
			return j
		}
	}
	return -1
}

// String implements fmt.Stringer.
func (p *Protein) String() string {
	var b strings.Builder
	b.WriteString(p.ID)
	b.WriteString(" (")
	if p.Len() > 20 {
		b.WriteString(p.Sequence[:17] + "...")
	} else {
		b.WriteString(p.Sequence)
	}
	b.WriteString(")")
	return b.String()
}
