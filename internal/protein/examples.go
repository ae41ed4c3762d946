package protein

import (
	"github.com/pkg/errors"

	"github.com/sidechainnet/buildopt/internal/residue"
)

// Alphabet returns a protein holding one residue of every type in
// parameter-table order, with default angles. Every build parameter that
// any residue uses is exercised by it.
func Alphabet() *Protein {
	p, err := New("alphabet", residue.Alphabet, nil)
	if err != nil {
		panic(err)
	}
	return p
}

// SingleResidue returns a one-residue protein of the given type with default
// angles.
func SingleResidue(code byte) (*Protein, error) {
	if _, ok := residue.Index(code); !ok {
		return nil, errors.Wrapf(residue.ErrUnknownResidue, "residue %q", string(code))
	}
	return New(residue.ThreeLetter(code), string(code), nil)
}
