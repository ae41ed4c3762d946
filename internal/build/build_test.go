package build

import (
	"math"
	"testing"

	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidechainnet/buildopt/internal/autodiff"
	"github.com/sidechainnet/buildopt/internal/params"
	"github.com/sidechainnet/buildopt/internal/protein"
	"github.com/sidechainnet/buildopt/internal/residue"
)

type atomCount int

func (c atomCount) NumAtoms() int { return int(c) }

func sub(a, b [3]float64) [3]float64 { return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func dot(a, b [3]float64) float64    { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }
func cross(a, b [3]float64) [3]float64 {
	return [3]float64{a[1]*b[2] - a[2]*b[1], a[2]*b[0] - a[0]*b[2], a[0]*b[1] - a[1]*b[0]}
}
func dist(a, b [3]float64) float64 { d := sub(a, b); return math.Sqrt(dot(d, d)) }

func angle(a, b, c [3]float64) float64 {
	u, v := sub(a, b), sub(c, b)
	return math.Acos(dot(u, v) / math.Sqrt(dot(u, u)*dot(v, v)))
}

func dihedral(a, b, c, d [3]float64) float64 {
	b0, b1, b2 := sub(a, b), sub(c, b), sub(d, c)
	n1 := 1 / math.Sqrt(dot(b1, b1))
	b1 = [3]float64{b1[0] * n1, b1[1] * n1, b1[2] * n1}
	v := sub(b0, [3]float64{b1[0] * dot(b0, b1), b1[1] * dot(b0, b1), b1[2] * dot(b0, b1)})
	w := sub(b2, [3]float64{b1[0] * dot(b2, b1), b1[1] * dot(b2, b1), b1[2] * dot(b2, b1)})
	return math.Atan2(dot(cross(b1, v), w), dot(v, w))
}

// buildValues builds p from set without recording.
func buildValues(t *testing.T, p *protein.Protein, set *params.Set, hydrogens bool) *Structure {
	t.Helper()
	tape := autodiff.NewTape()
	s, err := NeRF{}.Build(tape, p, params.Bind(tape, set, nil), hydrogens)
	require.NoError(t, err)
	return s
}

func atom(t *testing.T, p *protein.Protein, s *Structure, res int, name string) [3]float64 {
	t.Helper()
	for i, a := range s.Atoms {
		if a.Residue == res && a.Name == name {
			return s.Coords[i].Values()
		}
	}
	t.Fatalf("atom %s of residue %d not built", name, res)
	return [3]float64{}
}

func TestNeRFAlanineGeometry(t *testing.T) {
	p := must.M1(protein.SingleResidue('A'))
	set := params.Defaults()

	heavy := buildValues(t, p, set, false)
	assert.Len(t, heavy.Coords, 5)

	s := buildValues(t, p, set, true)
	require.Len(t, s.Coords, 10)
	n, ca, c := atom(t, p, s, 0, "N"), atom(t, p, s, 0, "CA"), atom(t, p, s, 0, "C")
	cb, o := atom(t, p, s, 0, "CB"), atom(t, p, s, 0, "O")

	tmpl := must.M1(residue.Lookup('A'))
	cbInfo, _ := tmpl.Atom("CB")
	assert.InDelta(t, residue.BondNCA, dist(n, ca), 1e-12)
	assert.InDelta(t, residue.BondCAC, dist(ca, c), 1e-12)
	assert.InDelta(t, cbInfo.Bond, dist(ca, cb), 1e-12)
	assert.InDelta(t, cbInfo.Theta, angle(c, ca, cb), 1e-9)
	assert.InDelta(t, 0, residue.Wrap(dihedral(n, c, ca, cb)-cbInfo.Chi), 1e-9)
	assert.InDelta(t, residue.DefaultAngles[residue.AngleNCAC], angle(n, ca, c), 1e-9)
	assert.InDelta(t, 0, residue.Wrap(dihedral(n, ca, c, o)-residue.DefaultAngles[residue.Psi]-math.Pi), 1e-9)

	// Every bond of the topology has a chemically sensible length.
	for _, b := range s.Bonds {
		d := dist(s.Coords[b[0]].Values(), s.Coords[b[1]].Values())
		assert.Greater(t, d, 0.9)
		assert.Less(t, d, 1.9)
	}
}

func TestNeRFTorsionFollowsSourceAngle(t *testing.T) {
	p := must.M1(protein.SingleResidue('S'))
	p.Angles[0][residue.Chi1] = 1.0
	s := buildValues(t, p, params.Defaults(), false)
	got := dihedral(atom(t, p, s, 0, "N"), atom(t, p, s, 0, "CA"), atom(t, p, s, 0, "CB"), atom(t, p, s, 0, "OG"))
	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestNeRFBackboneChain(t *testing.T) {
	p := must.M1(protein.New("tri", "GAG", nil))
	p.Angles[0][residue.Psi] = 2.0
	p.Angles[1][residue.Phi] = -1.0
	s := buildValues(t, p, params.Defaults(), false)

	assert.InDelta(t, residue.BondCN, dist(atom(t, p, s, 0, "C"), atom(t, p, s, 1, "N")), 1e-12)
	psi := dihedral(atom(t, p, s, 0, "N"), atom(t, p, s, 0, "CA"), atom(t, p, s, 0, "C"), atom(t, p, s, 1, "N"))
	assert.InDelta(t, 2.0, psi, 1e-9)
	omega := dihedral(atom(t, p, s, 0, "CA"), atom(t, p, s, 0, "C"), atom(t, p, s, 1, "N"), atom(t, p, s, 1, "CA"))
	assert.InDelta(t, 0, residue.Wrap(omega-math.Pi), 1e-9)
	phi := dihedral(atom(t, p, s, 0, "C"), atom(t, p, s, 1, "N"), atom(t, p, s, 1, "CA"), atom(t, p, s, 1, "C"))
	assert.InDelta(t, -1.0, phi, 1e-9)
}

func TestNeRFProlineClosure(t *testing.T) {
	p := must.M1(protein.SingleResidue('P'))
	s := buildValues(t, p, params.Defaults(), true)
	cd := atom(t, p, s, 0, "CD")
	n := atom(t, p, s, 0, "N")
	assert.Less(t, dist(cd, n), 2.5)

	// A trans chi2 opens the ring.
	p.Angles[0][residue.Chi2] = math.Pi
	s = buildValues(t, p, params.Defaults(), true)
	assert.Greater(t, dist(atom(t, p, s, 0, "CD"), atom(t, p, s, 0, "N")), 2.5)
}

func TestNeRFRejectsUnknownResidues(t *testing.T) {
	p := must.M1(protein.New("x", "AXA", nil))
	tape := autodiff.NewTape()
	_, err := NeRF{}.Build(tape, p, params.Bind(tape, params.Defaults(), nil), true)
	assert.True(t, errors.Is(err, protein.ErrUnresolvedResidue))

	other := autodiff.NewTape()
	_, err = NeRF{}.Build(tape, p, params.Bind(other, params.Defaults(), nil), true)
	assert.Error(t, err)
}

func prepared(t *testing.T, seq string, set *params.Set) (*Adapter, *protein.Protein) {
	t.Helper()
	p := must.M1(protein.New("test", seq, nil))
	a := NewAdapter(NeRF{})
	require.NoError(t, a.Prepare(p, set))
	require.NoError(t, p.SetEnergyContext(atomCount(len(p.Atoms))))
	return a, p
}

func TestRebuildIsIdempotent(t *testing.T) {
	keys := params.AllKeys
	set := params.Initialize(params.Defaults(), keys)
	a, p := prepared(t, "AWK", set)
	list := params.Extract(set, keys)

	rebuild := func() [][3]float64 {
		tape := autodiff.NewTape()
		tape.StartRecording()
		_, err := a.Rebuild(tape, p, params.Bind(tape, set, list))
		require.NoError(t, err)
		return append([][3]float64(nil), p.HCoords...)
	}
	first := rebuild()
	assert.Equal(t, first, rebuild())
	assert.Len(t, first, len(p.Atoms))
}

func TestRebuildRequiresEnergyContext(t *testing.T) {
	p := must.M1(protein.SingleResidue('G'))
	set := params.Defaults()
	a := NewAdapter(NeRF{})
	require.NoError(t, a.Prepare(p, set))

	tape := autodiff.NewTape()
	_, err := a.Rebuild(tape, p, params.Bind(tape, set, nil))
	assert.True(t, errors.Is(err, ErrNoEnergyContext))
}

// shrinking drops the last atom on every build after the first.
type shrinking struct {
	calls int
}

func (b *shrinking) Build(t *autodiff.Tape, p *protein.Protein, bound *params.Bound, h bool) (*Structure, error) {
	s, err := NeRF{}.Build(t, p, bound, h)
	if err != nil {
		return nil, err
	}
	b.calls++
	if b.calls > 1 {
		s.Coords = s.Coords[:len(s.Coords)-1]
		s.Atoms = s.Atoms[:len(s.Atoms)-1]
	}
	return s, nil
}

func TestRebuildDetectsTopologyChange(t *testing.T) {
	p := must.M1(protein.SingleResidue('A'))
	set := params.Defaults()
	a := NewAdapter(&shrinking{})
	require.NoError(t, a.Prepare(p, set))
	require.NoError(t, p.SetEnergyContext(atomCount(len(p.Atoms))))

	tape := autodiff.NewTape()
	_, err := a.Rebuild(tape, p, params.Bind(tape, set, nil))
	assert.True(t, errors.Is(err, ErrTopologyChanged))
	assert.True(t, errors.Is(a.Prepare(p, set), ErrTopologyChanged))
}

func TestRebuildGradientMatchesFiniteDifferences(t *testing.T) {
	keys := params.AllKeys
	set := params.Initialize(params.Defaults(), keys)
	a, p := prepared(t, "SL", set)
	list := params.Extract(set, keys)

	// loss = Σ w_i · x_i over all coordinates with fixed weights.
	weights := make([]float64, 3*len(p.Atoms))
	for i := range weights {
		weights[i] = math.Sin(float64(i) + 0.5)
	}
	loss := func(coords [][3]float64) float64 {
		total := 0.0
		for i, c := range coords {
			total += weights[3*i]*c[0] + weights[3*i+1]*c[1] + weights[3*i+2]*c[2]
		}
		return total
	}

	tape := autodiff.NewTape()
	tape.StartRecording()
	bound := params.Bind(tape, set, list)
	coords, err := a.Rebuild(tape, p, bound)
	require.NoError(t, err)
	terms := make([]autodiff.Var, 0, len(weights))
	for i, c := range coords {
		for j := 0; j < 3; j++ {
			terms = append(terms, c[j].Scale(weights[3*i+j]))
		}
	}
	bound.Accumulate(tape.Backward(tape.Sum(terms...)))

	serRow, _ := residue.Index('S')
	leuRow, _ := residue.Index('L')
	og, _ := must.M1(residue.Lookup('S')).Atom("OG")
	cd1, _ := must.M1(residue.Lookup('L')).Atom("CD1")
	checks := []struct {
		param     int
		row, slot int
	}{
		{int(og.Anchor)*params.NumKeys + int(params.BondLengths), serRow, og.Slot},
		{int(og.Anchor)*params.NumKeys + int(params.Thetas), serRow, og.Slot},
		{int(og.Anchor)*params.NumKeys + int(params.Chis), serRow, og.Slot},
		{int(cd1.Anchor)*params.NumKeys + int(params.Chis), leuRow, cd1.Slot},
	}
	const eps = 1e-6
	for _, c := range checks {
		param := list[c.param]
		analytic := param.Grad().At(c.row, c.slot)
		x := param.Tensor().At(c.row, c.slot)

		eval := func(v float64) float64 {
			perturbed := list.Clone()
			perturbed[c.param].Tensor().Set(v, c.row, c.slot)
			s := set.Clone()
			require.NoError(t, params.Scatter(s, keys, perturbed))
			return loss(buildValues(t, p, s, true).Values())
		}
		numeric := (eval(x+eps) - eval(x-eps)) / (2 * eps)
		assert.InDelta(t, numeric, analytic, 1e-5, "%s[%d,%d]", param.Name(), c.row, c.slot)
		assert.NotZero(t, analytic)
	}
}
