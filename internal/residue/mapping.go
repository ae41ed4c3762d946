package residue

import (
	"math"

	"github.com/pkg/errors"
)

// Layout returns the atom names of a residue type in some external
// representation (for example the per-residue atom slots of a structure
// prediction model). Unused slots are empty strings.
type Layout func(code byte) []string

// Remapped holds coordinates converted to the template layout.
type Remapped struct {
	// Coords[i] follows Lookup(seq[i]).AtomNames(hydrogens).
	Coords [][][3]float64
	// Missing lists template atoms with no source counterpart; their
	// coordinates are NaN.
	Missing []*MissingAtomMappingError
}

// Remap converts per-residue coordinates from the source layout into the
// template layout, matching atoms by name.
//
// Template atoms absent from the source are left NaN and reported in
// Missing. A residue of which no atom can be mapped, or whose code is
// unknown, returns an *UnresolvedResidueError.
func Remap(seq string, source Layout, coords [][][3]float64, hydrogens bool) (*Remapped, error) {
	if len(coords) != len(seq) {
		return nil, errors.Errorf("remap: %d residues of coordinates for a sequence of length %d",
			len(coords), len(seq))
	}
	out := &Remapped{Coords: make([][][3]float64, len(seq))}
	for i := 0; i < len(seq); i++ {
		code := seq[i]
		tmpl, err := Lookup(code)
		if err != nil {
			return nil, &UnresolvedResidueError{Position: i, Code: code, Reason: "no template"}
		}
		index := make(map[string]int)
		for j, name := range source(code) {
			if name != "" && j < len(coords[i]) {
				index[name] = j
			}
		}

		names := tmpl.AtomNames(hydrogens)
		res := make([][3]float64, len(names))
		mapped := 0
		for k, name := range names {
			j, ok := index[name]
			if !ok {
				nan := math.NaN()
				res[k] = [3]float64{nan, nan, nan}
				out.Missing = append(out.Missing, &MissingAtomMappingError{Position: i, Code: code, Atom: name})
				continue
			}
			res[k] = coords[i][j]
			mapped++
		}
		if mapped == 0 {
			return nil, &UnresolvedResidueError{Position: i, Code: code, Reason: "no atoms could be mapped"}
		}
		out.Coords[i] = res
	}
	return out, nil
}
