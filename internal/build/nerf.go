package build

import (
	"math"

	"github.com/pkg/errors"

	"github.com/sidechainnet/buildopt/internal/autodiff"
	"github.com/sidechainnet/buildopt/internal/params"
	"github.com/sidechainnet/buildopt/internal/protein"
	"github.com/sidechainnet/buildopt/internal/residue"
)

// NeRF is the natural-extension-reference-frame builder.
//
// The backbone is placed from phi, psi, omega and the three backbone bond
// angles of the protein with ideal backbone bond lengths; it does not depend
// on build parameters. Every other atom is placed from its three reference
// atoms with the bound bond length, bond angle and a torsion equal to the
// residue's source angle plus the bound torsion offset. The residue mask is
// ignored: missing residues are built from default angles.
type NeRF struct{}

// Build implements Builder.
func (NeRF) Build(t *autodiff.Tape, p *protein.Protein, b *params.Bound, addHydrogens bool) (*Structure, error) {
	if b.Tape() != t {
		return nil, errors.New("nerf: parameters are bound to a different tape")
	}
	if err := p.Resolved(); err != nil {
		return nil, err
	}

	s := &Structure{}
	add := func(res int, name string, x autodiff.Vec3) int {
		s.Coords = append(s.Coords, x)
		s.Atoms = append(s.Atoms, protein.Atom{Residue: res, Name: name})
		return len(s.Coords) - 1
	}
	bond := func(i, j int) {
		s.Bonds = append(s.Bonds, [2]int{i, j})
	}

	var prevN, prevCA, prevC = -1, -1, -1
	for i := 0; i < p.Len(); i++ {
		code := p.Sequence[i]
		row, _ := residue.Index(code)
		tmpl, err := residue.Lookup(code)
		if err != nil {
			return nil, err
		}

		var n, ca, c autodiff.Vec3
		if i == 0 {
			theta := p.Angle(0, residue.AngleNCAC)
			n = t.Vec([3]float64{0, 0, 0})
			ca = t.Vec([3]float64{residue.BondNCA, 0, 0})
			c = t.Vec([3]float64{
				residue.BondNCA - residue.BondCAC*math.Cos(theta),
				residue.BondCAC * math.Sin(theta),
				0,
			})
		} else {
			pn, pca, pc := s.Coords[prevN], s.Coords[prevCA], s.Coords[prevC]
			n = placeConst(t, pn, pca, pc, residue.BondCN,
				p.Angle(i-1, residue.AngleCACN), p.Angle(i-1, residue.Psi))
			ca = placeConst(t, pca, pc, n, residue.BondNCA,
				p.Angle(i-1, residue.AngleCNCA), p.Angle(i-1, residue.Omega))
			c = placeConst(t, pc, n, ca, residue.BondCAC,
				p.Angle(i, residue.AngleNCAC), p.Angle(i, residue.Phi))
		}

		local := map[string]int{}
		local["N"] = add(i, "N", n)
		local["CA"] = add(i, "CA", ca)
		local["C"] = add(i, "C", c)
		bond(local["N"], local["CA"])
		bond(local["CA"], local["C"])
		if prevC >= 0 {
			bond(prevC, local["N"])
		}

		for _, atom := range tmpl.Atoms {
			if atom.Hydrogen && !addHydrogens {
				continue
			}
			x := s.Coords[local[atom.Refs[0]]]
			y := s.Coords[local[atom.Refs[1]]]
			z := s.Coords[local[atom.Refs[2]]]

			length := b.Bond(atom.Anchor, row, atom.Slot)
			sinT, cosT := b.Theta(atom.Anchor, row, atom.Slot)
			sinP, cosP := b.Chi(atom.Anchor, row, atom.Slot)
			if atom.Source != residue.NoSource {
				src := p.Angle(i, atom.Source)
				sinP, cosP = rotate(sinP, cosP, math.Sin(src), math.Cos(src))
			}
			local[atom.Name] = add(i, atom.Name, Place(x, y, z, length, sinT, cosT, sinP, cosP))
			bond(local[atom.Refs[2]], local[atom.Name])
		}
		for _, cl := range tmpl.Closures {
			bond(local[cl[0]], local[cl[1]])
		}

		prevN, prevCA, prevC = local["N"], local["CA"], local["C"]
	}
	return s, nil
}

// rotate returns the sine and cosine of the angle offset by a constant
// angle given by (sinA, cosA).
func rotate(sin, cos autodiff.Var, sinA, cosA float64) (autodiff.Var, autodiff.Var) {
	return sin.Scale(cosA).Add(cos.Scale(sinA)),
		cos.Scale(cosA).Sub(sin.Scale(sinA))
}

// Place returns the position D such that |CD| = length, the angle BCD has
// the given sine and cosine and the torsion ABCD has the given sine and
// cosine.
func Place(a, b, c autodiff.Vec3, length, sinTheta, cosTheta, sinPhi, cosPhi autodiff.Var) autodiff.Vec3 {
	bc := c.Sub(b).Unit()
	n := b.Sub(a).Cross(bc).Unit()
	m := n.Cross(bc)

	radial := length.Mul(sinTheta)
	d := bc.Mul(length.Mul(cosTheta).Neg()).
		Add(m.Mul(radial.Mul(cosPhi))).
		Add(n.Mul(radial.Mul(sinPhi)))
	return c.Add(d)
}

func placeConst(t *autodiff.Tape, a, b, c autodiff.Vec3, length, theta, phi float64) autodiff.Vec3 {
	return Place(a, b, c, t.Const(length),
		t.Const(math.Sin(theta)), t.Const(math.Cos(theta)),
		t.Const(math.Sin(phi)), t.Const(math.Cos(phi)))
}
