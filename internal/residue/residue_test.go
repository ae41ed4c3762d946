package residue

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexAndNames(t *testing.T) {
	i, ok := Index('A')
	require.True(t, ok)
	assert.Equal(t, 0, i)
	i, ok = Index('V')
	require.True(t, ok)
	assert.Equal(t, NumTypes-1, i)
	_, ok = Index(Unknown)
	assert.False(t, ok)

	assert.Equal(t, "TRP", ThreeLetter('W'))
	assert.Equal(t, "UNK", ThreeLetter('X'))
	code, ok := FromThreeLetter("GLY")
	require.True(t, ok)
	assert.Equal(t, byte('G'), code)
}

func TestParseAnchor(t *testing.T) {
	for _, a := range Anchors {
		got, err := ParseAnchor(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
	_, err := ParseAnchor("CB")
	assert.Error(t, err)
}

func TestTemplatesAreBuildable(t *testing.T) {
	for i := 0; i < NumTypes; i++ {
		code := Alphabet[i]
		tmpl, err := Lookup(code)
		require.NoError(t, err)
		t.Run(tmpl.Name, func(t *testing.T) {
			placed := map[string]bool{"N": true, "CA": true, "C": true}
			slots := map[Anchor]map[int]bool{N: {}, CA: {}, C: {}}
			for _, a := range tmpl.Atoms {
				for _, ref := range a.Refs {
					assert.True(t, placed[ref], "%s references %s before it is placed", a.Name, ref)
				}
				assert.False(t, placed[a.Name], "duplicate atom %s", a.Name)
				placed[a.Name] = true

				assert.False(t, slots[a.Anchor][a.Slot], "slot %d of %s reused", a.Slot, a.Anchor)
				slots[a.Anchor][a.Slot] = true
				assert.Less(t, a.Slot, SlotsPerAnchor(a.Anchor))
				assert.Greater(t, a.Bond, 0.9)
				assert.Greater(t, a.Theta, 0.0)
				assert.Less(t, a.Theta, math.Pi)
			}
			for _, bond := range tmpl.Closures {
				assert.True(t, placed[bond[0]] && placed[bond[1]], "closure %v", bond)
			}
		})
	}
}

func TestAlanineAtomNames(t *testing.T) {
	tmpl, err := Lookup('A')
	require.NoError(t, err)
	assert.Equal(t, []string{"N", "CA", "C", "O", "CB"}, tmpl.AtomNames(false))
	assert.Equal(t, []string{"N", "CA", "C", "O", "H", "HA", "CB", "HB1", "HB2", "HB3"}, tmpl.AtomNames(true))

	h, ok := tmpl.Atom("H")
	require.True(t, ok)
	assert.Equal(t, N, h.Anchor)
	assert.Equal(t, Phi, h.Source)
	o, _ := tmpl.Atom("O")
	assert.Equal(t, C, o.Anchor)
}

func TestProlineHasNoAmideHydrogen(t *testing.T) {
	tmpl, err := Lookup('P')
	require.NoError(t, err)
	_, ok := tmpl.Atom("H")
	assert.False(t, ok)
	assert.Contains(t, tmpl.Closures, [2]string{"CD", "N"})
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup('X')
	assert.True(t, errors.Is(err, ErrUnknownResidue))
}

func TestCheckSequence(t *testing.T) {
	require.NoError(t, CheckSequence("ACDE"))
	err := CheckSequence("ACXE")
	var unresolved *UnresolvedResidueError
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, 2, unresolved.Position)
	assert.True(t, errors.Is(err, ErrUnresolvedResidue))
}

func TestRemap(t *testing.T) {
	// Source layout without CB for alanine and nothing known for glycine.
	layout := func(code byte) []string {
		switch code {
		case 'A':
			return []string{"C", "CA", "", "N", "O"}
		default:
			return []string{"ZZ"}
		}
	}
	coords := [][][3]float64{{{3, 0, 0}, {2, 0, 0}, {9, 9, 9}, {1, 0, 0}, {4, 0, 0}}}

	out, err := Remap("A", layout, coords, false)
	require.NoError(t, err)
	got := out.Coords[0]
	assert.Equal(t, [3]float64{1, 0, 0}, got[0])
	assert.Equal(t, [3]float64{2, 0, 0}, got[1])
	assert.Equal(t, [3]float64{3, 0, 0}, got[2])
	assert.Equal(t, [3]float64{4, 0, 0}, got[3])
	assert.True(t, math.IsNaN(got[4][0]))
	require.Len(t, out.Missing, 1)
	assert.Equal(t, "CB", out.Missing[0].Atom)
	assert.True(t, errors.Is(out.Missing[0], ErrMissingAtomMapping))

	_, err = Remap("G", layout, [][][3]float64{{{0, 0, 0}}}, false)
	assert.True(t, errors.Is(err, ErrUnresolvedResidue))

	_, err = Remap("X", layout, [][][3]float64{{{0, 0, 0}}}, false)
	assert.True(t, errors.Is(err, ErrUnresolvedResidue))

	_, err = Remap("AA", layout, coords, false)
	assert.Error(t, err)
}

func TestWrap(t *testing.T) {
	assert.InDelta(t, math.Pi, Wrap(-math.Pi), 1e-12)
	assert.InDelta(t, 0.5, Wrap(0.5+4*math.Pi), 1e-12)
	assert.InDelta(t, -0.5, Wrap(-0.5-2*math.Pi), 1e-12)
}

func TestDefaultAngle(t *testing.T) {
	assert.Equal(t, DefaultAngles[Chi1], DefaultAngle('S', Chi1))
	assert.InDelta(t, 30*math.Pi/180, DefaultAngle('P', Chi1), 1e-12)
	assert.Equal(t, DefaultAngles[Psi], DefaultAngle('P', Psi))
}
