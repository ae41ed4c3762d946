package forcefield

import (
	"math"
	"testing"

	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidechainnet/buildopt/internal/build"
	"github.com/sidechainnet/buildopt/internal/params"
	"github.com/sidechainnet/buildopt/internal/protein"
)

func prepared(t *testing.T, seq string) *protein.Protein {
	t.Helper()
	p := must.M1(protein.New("ff", seq, nil))
	require.NoError(t, build.NewAdapter(build.NeRF{}).Prepare(p, params.Defaults()))
	return p
}

func TestInitializeRequiresTopology(t *testing.T) {
	p := must.M1(protein.SingleResidue('A'))
	_, err := NewHarmonic().Initialize(p, InitOptions{})
	assert.True(t, errors.Is(err, protein.ErrNoTopology))
}

func TestIdealTripleHasZeroEnergy(t *testing.T) {
	p := must.M1(protein.SingleResidue('G'))
	p.SetTopology([]protein.Atom{{0, "N"}, {0, "CA"}, {0, "C"}}, [][2]int{{0, 1}, {1, 2}})
	ff := NewHarmonic()
	ctx, err := ff.Initialize(p, InitOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, ctx.NumAtoms())

	theta := 109.5 * math.Pi / 180
	coords := [][3]float64{
		{0, 0, 0},
		{1.40, 0, 0},
		{1.40 - 1.50*math.Cos(theta), 1.50 * math.Sin(theta), 0},
	}
	e, grad, err := ff.Evaluate(ctx, coords)
	require.NoError(t, err)
	assert.InDelta(t, 0, e, 1e-12)
	for _, g := range grad {
		assert.InDeltaSlice(t, []float64{0, 0, 0}, g[:], 1e-9)
	}

	// Stretching the first bond by 0.1 Å costs BondK · 0.01.
	coords[0] = [3]float64{-0.1, 0, 0}
	e, _, err = ff.Evaluate(ctx, coords)
	require.NoError(t, err)
	assert.Greater(t, e, ff.BondK*0.01-1e-9)
}

func TestGradientMatchesFiniteDifferences(t *testing.T) {
	p := prepared(t, "AFS")
	ff := NewHarmonic()
	ctx, err := ff.Initialize(p, InitOptions{Nonbonded: true})
	require.NoError(t, err)

	coords := append([][3]float64(nil), p.HCoords...)
	// Pull two atoms together so the repulsion term is active.
	coords[len(coords)-1] = coords[0]
	coords[len(coords)-1][0] += 1.2
	_, grad, err := ff.Evaluate(ctx, coords)
	require.NoError(t, err)

	const eps = 1e-6
	for _, i := range []int{0, 4, len(coords) / 2, len(coords) - 1} {
		for d := 0; d < 3; d++ {
			plus := append([][3]float64(nil), coords...)
			minus := append([][3]float64(nil), coords...)
			plus[i][d] += eps
			minus[i][d] -= eps
			ep, _, _ := ff.Evaluate(ctx, plus)
			em, _, _ := ff.Evaluate(ctx, minus)
			assert.InDelta(t, (ep-em)/(2*eps), grad[i][d], 1e-4, "atom %d dim %d", i, d)
		}
	}
}

func TestNonbondedToggle(t *testing.T) {
	p := prepared(t, "AAAA")
	ff := NewHarmonic()

	off, err := ff.Initialize(p, InitOptions{})
	require.NoError(t, err)
	on, err := ff.Initialize(p, InitOptions{Nonbonded: true})
	require.NoError(t, err)
	assert.Empty(t, off.(*harmonicContext).pairs)
	assert.NotEmpty(t, on.(*harmonicContext).pairs)

	// Pairs never include atoms three or fewer bonds apart.
	for _, pair := range on.(*harmonicContext).pairs {
		for _, b := range p.Bonds {
			assert.False(t, (b[0] == pair.i && b[1] == pair.j) || (b[1] == pair.i && b[0] == pair.j))
		}
	}

	eOff, _, err := ff.Evaluate(off, p.HCoords)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(eOff))
	assert.Greater(t, eOff, 0.0)
}

func TestEvaluateValidatesInput(t *testing.T) {
	p := prepared(t, "G")
	ff := NewHarmonic()
	ctx, err := ff.Initialize(p, InitOptions{})
	require.NoError(t, err)

	_, _, err = ff.Evaluate(ctx, p.HCoords[:2])
	assert.True(t, errors.Is(err, ErrCoordsMismatch))

	_, _, err = NewHarmonic().Evaluate(ctx, p.HCoords)
	assert.True(t, errors.Is(err, ErrWrongContext))
}
