package residue

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors.
var (
	ErrUnknownResidue     = errors.New("unknown residue")
	ErrUnresolvedResidue  = errors.New("unresolved residue")
	ErrMissingAtomMapping = errors.New("missing atom mapping")
)

// UnresolvedResidueError reports a residue with no force-field topology.
// Evaluation of the protein holding it is skipped.
type UnresolvedResidueError struct {
	Position int
	Code     byte
	Reason   string
}

// Error implements error.
func (e *UnresolvedResidueError) Error() string {
	msg := fmt.Sprintf("unresolved residue %q at position %d", string(e.Code), e.Position)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Unwrap returns ErrUnresolvedResidue.
func (e *UnresolvedResidueError) Unwrap() error {
	return ErrUnresolvedResidue
}

// MissingAtomMappingError reports an atom without a counterpart in the
// target layout. The atom position is left undefined (NaN).
type MissingAtomMappingError struct {
	Position int
	Code     byte
	Atom     string
}

// Error implements error.
func (e *MissingAtomMappingError) Error() string {
	return fmt.Sprintf("atom %s of %s at position %d has no mapping",
		e.Atom, ThreeLetter(e.Code), e.Position)
}

// Unwrap returns ErrMissingAtomMapping.
func (e *MissingAtomMappingError) Unwrap() error {
	return ErrMissingAtomMapping
}

// CheckSequence returns an *UnresolvedResidueError for the first residue of
// seq that has no template.
func CheckSequence(seq string) error {
	for i := 0; i < len(seq); i++ {
		if _, ok := Index(seq[i]); !ok {
			return &UnresolvedResidueError{Position: i, Code: seq[i], Reason: "no force-field topology"}
		}
	}
	return nil
}
