package forcefield

import (
	"math"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/sidechainnet/buildopt/internal/autodiff"
	"github.com/sidechainnet/buildopt/internal/protein"
)

// Harmonic is a force field of harmonic bond terms, cosine-harmonic angle
// terms and an optional soft-sphere repulsion. Energies are in kcal/mol,
// lengths in Ångström.
//
// Reference bond lengths depend only on the element pair and reference
// angles only on whether the central atom is planar, so the ideal geometry
// of the builder's default parameters is not a minimum.
type Harmonic struct {
	BondK      float64 // kcal/mol/Å²
	AngleK     float64 // kcal/mol
	RepulsionK float64 // kcal/mol/Å²
	// Contact distances below which atoms repel.
	HeavyContact, HydrogenContact float64
}

// NewHarmonic returns a Harmonic force field with the default constants.
func NewHarmonic() *Harmonic {
	return &Harmonic{
		BondK:           300,
		AngleK:          60,
		RepulsionK:      10,
		HeavyContact:    3.0,
		HydrogenContact: 2.0,
	}
}

// Reference bond lengths by sorted element pair.
var bondLengths = map[string]float64{
	"CC": 1.50,
	"CN": 1.40,
	"CO": 1.30,
	"CS": 1.81,
	"CH": 1.09,
	"HN": 1.01,
	"HO": 0.96,
	"HS": 1.34,
	"SS": 2.04,
}

const defaultBondLength = 1.45

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + b
}

// Planar side-chain atoms by residue; backbone C and N are always planar.
var planarAtoms = map[byte]string{
	'F': "CG CD1 CD2 CE1 CE2 CZ",
	'Y': "CG CD1 CD2 CE1 CE2 CZ",
	'W': "CG CD1 CD2 NE1 CE2 CE3 CZ2 CZ3 CH2",
	'H': "CG ND1 CD2 CE1 NE2",
	'D': "CG",
	'N': "CG",
	'E': "CD",
	'Q': "CD",
	'R': "NE CZ",
}

func isPlanar(code byte, name string) bool {
	if name == "C" || name == "N" {
		return true
	}
	for _, n := range strings.Fields(planarAtoms[code]) {
		if n == name {
			return true
		}
	}
	return false
}

type bondTerm struct {
	i, j int
	d0   float64
}

type angleTerm struct {
	i, j, k int // j is the central atom
	cos0    float64
}

type pairTerm struct {
	i, j int
	r0   float64
}

// harmonicContext is the energy context of a Harmonic force field.
type harmonicContext struct {
	ff     *Harmonic
	n      int
	bonds  []bondTerm
	angles []angleTerm
	pairs  []pairTerm
}

// NumAtoms implements protein.EnergyContext.
func (c *harmonicContext) NumAtoms() int {
	return c.n
}

// Initialize implements ForceField.
func (h *Harmonic) Initialize(p *protein.Protein, opts InitOptions) (protein.EnergyContext, error) {
	if p.Atoms == nil {
		return nil, errors.Wrap(protein.ErrNoTopology, p.ID)
	}
	if err := p.Resolved(); err != nil {
		return nil, err
	}
	n := len(p.Atoms)
	ctx := &harmonicContext{ff: h, n: n}
	neighbors := make([][]int, n)
	for _, b := range p.Bonds {
		if b[0] < 0 || b[0] >= n || b[1] < 0 || b[1] >= n {
			return nil, errors.Errorf("bond %v out of range for %d atoms", b, n)
		}
		neighbors[b[0]] = append(neighbors[b[0]], b[1])
		neighbors[b[1]] = append(neighbors[b[1]], b[0])
		d0, ok := bondLengths[pairKey(p.Atoms[b[0]].Element(), p.Atoms[b[1]].Element())]
		if !ok {
			d0 = defaultBondLength
		}
		ctx.bonds = append(ctx.bonds, bondTerm{i: b[0], j: b[1], d0: d0})
	}

	for j, nb := range neighbors {
		atom := p.Atoms[j]
		theta0 := 109.5
		if isPlanar(p.Sequence[atom.Residue], atom.Name) {
			theta0 = 120
		}
		cos0 := math.Cos(theta0 * math.Pi / 180)
		for x := 0; x < len(nb); x++ {
			for y := x + 1; y < len(nb); y++ {
				ctx.angles = append(ctx.angles, angleTerm{i: nb[x], j: j, k: nb[y], cos0: cos0})
			}
		}
	}

	if opts.Nonbonded {
		for i := 0; i < n; i++ {
			near := withinBonds(neighbors, i, 3)
			for j := i + 1; j < n; j++ {
				if near[j] {
					continue
				}
				r0 := h.HeavyContact
				if p.Atoms[i].Element() == "H" || p.Atoms[j].Element() == "H" {
					r0 = h.HydrogenContact
				}
				ctx.pairs = append(ctx.pairs, pairTerm{i: i, j: j, r0: r0})
			}
		}
	}
	klog.V(2).Infof("harmonic context for %s: %d atoms, %d bonds, %d angles, %d pairs",
		p.ID, n, len(ctx.bonds), len(ctx.angles), len(ctx.pairs))
	return ctx, nil
}

// withinBonds marks atoms reachable from start in at most depth bonds.
func withinBonds(neighbors [][]int, start, depth int) map[int]bool {
	seen := map[int]bool{start: true}
	frontier := []int{start}
	for d := 0; d < depth; d++ {
		var next []int
		for _, a := range frontier {
			for _, b := range neighbors[a] {
				if !seen[b] {
					seen[b] = true
					next = append(next, b)
				}
			}
		}
		frontier = next
	}
	return seen
}

// Evaluate implements ForceField.
func (h *Harmonic) Evaluate(ec protein.EnergyContext, coords [][3]float64) (float64, [][3]float64, error) {
	ctx, ok := ec.(*harmonicContext)
	if !ok || ctx.ff != h {
		return 0, nil, ErrWrongContext
	}
	if len(coords) != ctx.n {
		return 0, nil, errors.Wrapf(ErrCoordsMismatch, "got %d atoms, want %d", len(coords), ctx.n)
	}

	t := autodiff.NewTape()
	t.StartRecording()
	x := make([]autodiff.Vec3, len(coords))
	for i, c := range coords {
		x[i] = t.Vec(c)
	}

	terms := make([]autodiff.Var, 0, len(ctx.bonds)+len(ctx.angles)+len(ctx.pairs))
	for _, b := range ctx.bonds {
		d := x[b.i].Sub(x[b.j]).Norm()
		terms = append(terms, d.Shift(-b.d0).Square().Scale(h.BondK))
	}
	for _, a := range ctx.angles {
		u := x[a.i].Sub(x[a.j])
		v := x[a.k].Sub(x[a.j])
		cos := u.Dot(v).Div(u.Norm().Mul(v.Norm()))
		terms = append(terms, cos.Shift(-a.cos0).Square().Scale(h.AngleK))
	}
	for _, p := range ctx.pairs {
		// Only overlapping pairs contribute.
		diff := sub(coords[p.i], coords[p.j])
		if math.Sqrt(diff[0]*diff[0]+diff[1]*diff[1]+diff[2]*diff[2]) >= p.r0 {
			continue
		}
		d := x[p.i].Sub(x[p.j]).Norm()
		terms = append(terms, d.Neg().Shift(p.r0).Square().Scale(h.RepulsionK))
	}
	energy := t.Sum(terms...)

	grads := t.Backward(energy)
	out := make([][3]float64, len(x))
	for i, v := range x {
		out[i] = grads.OfVec(v)
	}
	return energy.Value(), out, nil
}

func sub(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}
