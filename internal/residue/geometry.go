package residue

import (
	"math"
	"strings"

	"github.com/pkg/errors"
)

// AtomInfo describes how one non-backbone atom is placed.
//
// The atom is bonded to Refs[2]; Theta is the Refs[1]-Refs[2]-atom angle and
// the Refs[0]-Refs[1]-Refs[2]-atom torsion is Chi plus the angle-table column
// Source (when Source != NoSource). Bond, Theta and Chi are the default build
// parameters stored at (Anchor, residue row, Slot).
type AtomInfo struct {
	Name     string
	Anchor   Anchor
	Slot     int
	Refs     [3]string
	Bond     float64 // Å
	Theta    float64 // radians
	Chi      float64 // radians
	Source   int
	Hydrogen bool
}

// Template is the build recipe of one residue type.
type Template struct {
	Code  byte
	Name  string
	Atoms []AtomInfo
	// Closures are ring bonds not implied by the build order.
	Closures [][2]string
}

// AtomNames returns N, CA, C followed by the template atoms in build order,
// omitting hydrogens unless requested.
func (t *Template) AtomNames(hydrogens bool) []string {
	names := []string{"N", "CA", "C"}
	for _, a := range t.Atoms {
		if a.Hydrogen && !hydrogens {
			continue
		}
		names = append(names, a.Name)
	}
	return names
}

// Atom returns the template entry for name.
func (t *Template) Atom(name string) (AtomInfo, bool) {
	for _, a := range t.Atoms {
		if a.Name == name {
			return a, true
		}
	}
	return AtomInfo{}, false
}

var (
	templates      [NumTypes]*Template
	slotsPerAnchor [NumAnchors]int
)

// Lookup returns the template for a residue code.
func Lookup(code byte) (*Template, error) {
	i, ok := Index(code)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownResidue, "residue %q", string(code))
	}
	return templates[i], nil
}

// SlotsPerAnchor returns the width of the parameter rows of an anchor: the
// largest number of atoms any residue type parameterizes from it.
func SlotsPerAnchor(a Anchor) int {
	return slotsPerAnchor[a]
}

// entry is the compact table form of an AtomInfo.
type entry struct {
	name   string
	refs   [3]string
	bond   float64
	theta  float64 // degrees
	chi    float64 // degrees
	source int
}

func at(name, r0, r1, r2 string, bond, theta, chi float64, source int) entry {
	return entry{name: name, refs: [3]string{r0, r1, r2}, bond: bond, theta: theta, chi: chi, source: source}
}

// Atoms every residue carries (prepended to each side chain).
var (
	carbonylO = at("O", "N", "CA", "C", 1.229, 120.5, 180, Psi)
	amideH    = at("H", "C", "CA", "N", 1.01, 119.0, 180, Phi)
	alphaH    = at("HA", "N", "C", "CA", 1.09, 109.5, -118.0, NoSource)
	betaC     = at("CB", "N", "C", "CA", 1.530, 110.85, 122.69, NoSource)
)

func ring6(r0, r1 string) []entry {
	return []entry{
		at("CD1", "CA", "CB", "CG", 1.39, 120.0, 0, Chi2),
		at("CD2", "CA", "CB", "CG", 1.39, 120.0, 180, Chi2),
		at("CE1", "CB", "CG", "CD1", 1.39, 120.0, 180, NoSource),
		at("CE2", "CB", "CG", "CD2", 1.39, 120.0, 180, NoSource),
		at("CZ", r0, r1, "CE1", 1.39, 120.0, 0, NoSource),
	}
}

var sideChains = map[byte][]entry{
	'A': {
		betaC,
		at("HB1", "N", "CA", "CB", 1.09, 109.5, 180, NoSource),
		at("HB2", "N", "CA", "CB", 1.09, 109.5, 60, NoSource),
		at("HB3", "N", "CA", "CB", 1.09, 109.5, -60, NoSource),
	},
	'G': {
		at("HA2", "N", "C", "CA", 1.09, 109.5, -118.0, NoSource),
		at("HA3", "N", "C", "CA", 1.09, 109.5, 118.0, NoSource),
	},
	'S': {betaC, at("OG", "N", "CA", "CB", 1.417, 110.8, 0, Chi1)},
	'C': {betaC, at("SG", "N", "CA", "CB", 1.808, 113.8, 0, Chi1)},
	'V': {
		betaC,
		at("CG1", "N", "CA", "CB", 1.527, 110.7, 0, Chi1),
		at("CG2", "N", "CA", "CB", 1.527, 110.4, -120, Chi1),
	},
	'T': {
		betaC,
		at("OG1", "N", "CA", "CB", 1.433, 109.2, 0, Chi1),
		at("CG2", "N", "CA", "CB", 1.521, 111.1, -120, Chi1),
	},
	'L': {
		betaC,
		at("CG", "N", "CA", "CB", 1.530, 116.1, 0, Chi1),
		at("CD1", "CA", "CB", "CG", 1.524, 110.3, 0, Chi2),
		at("CD2", "CA", "CB", "CG", 1.525, 110.6, -120, Chi2),
	},
	'I': {
		betaC,
		at("CG1", "N", "CA", "CB", 1.527, 110.7, 0, Chi1),
		at("CG2", "N", "CA", "CB", 1.527, 110.4, -120, Chi1),
		at("CD1", "CA", "CB", "CG1", 1.520, 113.8, 0, Chi2),
	},
	'M': {
		betaC,
		at("CG", "N", "CA", "CB", 1.520, 114.1, 0, Chi1),
		at("SD", "CA", "CB", "CG", 1.807, 112.7, 0, Chi2),
		at("CE", "CB", "CG", "SD", 1.790, 100.9, 0, Chi3),
	},
	'F': append([]entry{betaC, at("CG", "N", "CA", "CB", 1.50, 113.85, 0, Chi1)}, ring6("CG", "CD1")...),
	'Y': append(append([]entry{betaC, at("CG", "N", "CA", "CB", 1.51, 113.8, 0, Chi1)}, ring6("CG", "CD1")...),
		at("OH", "CD1", "CE1", "CZ", 1.39, 120.0, 180, NoSource)),
	'W': {
		betaC,
		at("CG", "N", "CA", "CB", 1.498, 114.1, 0, Chi1),
		at("CD1", "CA", "CB", "CG", 1.365, 127.1, 0, Chi2),
		at("CD2", "CA", "CB", "CG", 1.433, 126.6, 180, Chi2),
		at("NE1", "CB", "CG", "CD1", 1.374, 110.2, 180, NoSource),
		at("CE2", "CB", "CG", "CD2", 1.409, 107.2, 180, NoSource),
		at("CE3", "CB", "CG", "CD2", 1.398, 133.9, 0, NoSource),
		at("CZ2", "CG", "CD2", "CE2", 1.394, 122.4, 180, NoSource),
		at("CZ3", "CG", "CD2", "CE3", 1.382, 118.7, 180, NoSource),
		at("CH2", "CD2", "CE2", "CZ2", 1.369, 117.5, 0, NoSource),
	},
	'H': {
		betaC,
		at("CG", "N", "CA", "CB", 1.497, 113.7, 0, Chi1),
		at("ND1", "CA", "CB", "CG", 1.378, 122.7, 0, Chi2),
		at("CD2", "CA", "CB", "CG", 1.354, 131.0, 180, Chi2),
		at("CE1", "CB", "CG", "ND1", 1.321, 109.0, 180, NoSource),
		at("NE2", "CB", "CG", "CD2", 1.374, 107.0, 180, NoSource),
	},
	'P': {
		betaC,
		at("CG", "N", "CA", "CB", 1.495, 104.2, 0, Chi1),
		at("CD", "CA", "CB", "CG", 1.507, 105.0, 0, Chi2),
	},
	'D': {
		betaC,
		at("CG", "N", "CA", "CB", 1.520, 113.1, 0, Chi1),
		at("OD1", "CA", "CB", "CG", 1.250, 119.2, 0, Chi2),
		at("OD2", "CA", "CB", "CG", 1.250, 118.2, 180, Chi2),
	},
	'N': {
		betaC,
		at("CG", "N", "CA", "CB", 1.520, 112.6, 0, Chi1),
		at("OD1", "CA", "CB", "CG", 1.230, 120.8, 0, Chi2),
		at("ND2", "CA", "CB", "CG", 1.330, 116.4, 180, Chi2),
	},
	'E': {
		betaC,
		at("CG", "N", "CA", "CB", 1.520, 114.1, 0, Chi1),
		at("CD", "CA", "CB", "CG", 1.520, 112.6, 0, Chi2),
		at("OE1", "CB", "CG", "CD", 1.250, 119.0, 0, Chi3),
		at("OE2", "CB", "CG", "CD", 1.250, 118.0, 180, Chi3),
	},
	'Q': {
		betaC,
		at("CG", "N", "CA", "CB", 1.520, 114.1, 0, Chi1),
		at("CD", "CA", "CB", "CG", 1.520, 112.6, 0, Chi2),
		at("OE1", "CB", "CG", "CD", 1.230, 120.8, 0, Chi3),
		at("NE2", "CB", "CG", "CD", 1.330, 116.4, 180, Chi3),
	},
	'K': {
		betaC,
		at("CG", "N", "CA", "CB", 1.520, 114.1, 0, Chi1),
		at("CD", "CA", "CB", "CG", 1.520, 111.3, 0, Chi2),
		at("CE", "CB", "CG", "CD", 1.520, 111.3, 0, Chi3),
		at("NZ", "CG", "CD", "CE", 1.490, 111.9, 0, Chi4),
	},
	'R': {
		betaC,
		at("CG", "N", "CA", "CB", 1.520, 114.1, 0, Chi1),
		at("CD", "CA", "CB", "CG", 1.520, 111.3, 0, Chi2),
		at("NE", "CB", "CG", "CD", 1.460, 112.0, 0, Chi3),
		at("CZ", "CG", "CD", "NE", 1.330, 124.2, 0, Chi4),
		at("NH1", "CD", "NE", "CZ", 1.326, 120.0, 0, NoSource),
		at("NH2", "CD", "NE", "CZ", 1.326, 120.0, 180, NoSource),
	},
}

var closures = map[byte][][2]string{
	'F': {{"CE2", "CZ"}},
	'Y': {{"CE2", "CZ"}},
	'W': {{"NE1", "CE2"}, {"CZ3", "CH2"}},
	'H': {{"CE1", "NE2"}},
	'P': {{"CD", "N"}},
}

// anchorOf assigns an atom to the backbone atom it hangs from.
func anchorOf(name string) Anchor {
	switch name {
	case "H":
		return N
	case "O", "OXT":
		return C
	default:
		return CA
	}
}

func init() {
	for i := 0; i < NumTypes; i++ {
		code := Alphabet[i]
		entries := []entry{carbonylO}
		if code != 'P' {
			entries = append(entries, amideH)
		}
		if code != 'G' {
			entries = append(entries, alphaH)
		}
		entries = append(entries, sideChains[code]...)

		tmpl := &Template{Code: code, Name: ThreeLetter(code), Closures: closures[code]}
		var next [NumAnchors]int
		for _, e := range entries {
			anchor := anchorOf(e.name)
			tmpl.Atoms = append(tmpl.Atoms, AtomInfo{
				Name:     e.name,
				Anchor:   anchor,
				Slot:     next[anchor],
				Refs:     e.refs,
				Bond:     e.bond,
				Theta:    deg(e.theta),
				Chi:      deg(e.chi),
				Source:   e.source,
				Hydrogen: strings.HasPrefix(e.name, "H"),
			})
			next[anchor]++
		}
		for a, n := range next {
			slotsPerAnchor[a] = max(slotsPerAnchor[a], n)
		}
		templates[i] = tmpl
	}
}

// Element returns the chemical element of a protein atom name.
func Element(name string) string {
	if name == "" {
		return ""
	}
	return name[:1]
}

// Wrap maps an angle to (-π, π].
func Wrap(x float64) float64 {
	y := math.Mod(x+math.Pi, 2*math.Pi)
	if y <= 0 {
		y += 2 * math.Pi
	}
	return y - math.Pi
}
