// Package residue describes amino-acid residues: the one-letter alphabet,
// the columns of the per-residue angle table, the anchor atoms build
// parameters are grouped by, and the geometry template used to place every
// non-backbone atom.
package residue

import (
	"math"

	"github.com/pkg/errors"
)

// Alphabet lists the residue codes in parameter-table order.
const Alphabet = "ARNDCQEGHILKMFPSTWYV"

// NumTypes is the number of residue types with build parameters.
const NumTypes = len(Alphabet)

// Unknown is the code used for unresolved residues.
const Unknown = 'X'

var (
	alphabetIndex [256]int
	threeLetter   = map[byte]string{
		'A': "ALA", 'R': "ARG", 'N': "ASN", 'D': "ASP", 'C': "CYS",
		'Q': "GLN", 'E': "GLU", 'G': "GLY", 'H': "HIS", 'I': "ILE",
		'L': "LEU", 'K': "LYS", 'M': "MET", 'F': "PHE", 'P': "PRO",
		'S': "SER", 'T': "THR", 'W': "TRP", 'Y': "TYR", 'V': "VAL",
	}
	oneLetter = map[string]byte{}
)

func init() {
	for i := range alphabetIndex {
		alphabetIndex[i] = -1
	}
	for i := 0; i < len(Alphabet); i++ {
		alphabetIndex[Alphabet[i]] = i
	}
	for code, name := range threeLetter {
		oneLetter[name] = code
	}
}

// Index returns the parameter-table row of a residue code.
func Index(code byte) (int, bool) {
	i := alphabetIndex[code]
	return i, i >= 0
}

// ThreeLetter returns the three-letter name of a residue code, or "UNK".
func ThreeLetter(code byte) string {
	if name, ok := threeLetter[code]; ok {
		return name
	}
	return "UNK"
}

// FromThreeLetter returns the one-letter code of a three-letter name.
func FromThreeLetter(name string) (byte, bool) {
	code, ok := oneLetter[name]
	return code, ok
}

// Anchor identifies the backbone atom a group of dependent atoms is
// parameterized from.
type Anchor int

// Anchor atoms, in parameter order.
const (
	N Anchor = iota
	CA
	C
)

// NumAnchors is the number of anchor atoms.
const NumAnchors = 3

// Anchors lists the anchor atoms in parameter order.
var Anchors = [NumAnchors]Anchor{N, CA, C}

// String implements fmt.Stringer.
func (a Anchor) String() string {
	switch a {
	case N:
		return "N"
	case CA:
		return "CA"
	case C:
		return "C"
	default:
		return "Anchor(?)"
	}
}

// ParseAnchor parses an anchor atom name.
func ParseAnchor(s string) (Anchor, error) {
	for _, a := range Anchors {
		if a.String() == s {
			return a, nil
		}
	}
	return 0, errors.Errorf("unknown anchor atom %q", s)
}

// Columns of the per-residue angle table (radians; NaN marks a missing value).
const (
	Phi = iota
	Psi
	Omega
	AngleNCAC // N-CA-C bond angle
	AngleCACN // CA-C-N(next) bond angle
	AngleCNCA // C-N(next)-CA(next) bond angle
	Chi1
	Chi2
	Chi3
	Chi4
	Chi5
	NumAngles
)

// NoSource marks a torsion that is entirely given by its build parameter.
const NoSource = -1

// Ideal backbone bond lengths in Ångström. They are not optimized.
const (
	BondNCA = 1.458
	BondCAC = 1.525
	BondCN  = 1.329
)

// DefaultAngles replaces missing (NaN) entries of the angle table.
var DefaultAngles = [NumAngles]float64{
	Phi:       deg(-120),
	Psi:       deg(130),
	Omega:     math.Pi,
	AngleNCAC: deg(111.2),
	AngleCACN: deg(116.2),
	AngleCNCA: deg(121.7),
	Chi1:      deg(-60),
	Chi2:      math.Pi,
	Chi3:      math.Pi,
	Chi4:      math.Pi,
	Chi5:      math.Pi,
}

func deg(d float64) float64 {
	return d * math.Pi / 180
}

// Side-chain torsions whose generic default would leave a ring open or
// stacked on the backbone.
var defaultChis = map[byte][2]float64{
	'P': {deg(30), deg(-35)},
	'F': {deg(-60), deg(90)},
	'Y': {deg(-60), deg(90)},
	'W': {deg(-60), deg(90)},
	'H': {deg(-60), deg(90)},
}

// DefaultAngle returns the default of angle column col for residue code.
func DefaultAngle(code byte, col int) float64 {
	if chis, ok := defaultChis[code]; ok && (col == Chi1 || col == Chi2) {
		return chis[col-Chi1]
	}
	return DefaultAngles[col]
}
