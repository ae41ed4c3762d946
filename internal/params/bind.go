package params

import (
	"math"

	"github.com/sidechainnet/buildopt/internal/autodiff"
	"github.com/sidechainnet/buildopt/internal/residue"
)

// Bound exposes build parameters as tape variables for one build.
//
// Parameters present in the bound list become tape leaves. An angle leaf x
// is used through Sin and Cos ops, so gradients flow to the raw angle.
// Everything else becomes a constant read from the set. Variables are created
// on first use and cached.
type Bound struct {
	tape   *autodiff.Tape
	set    *Set
	list   ParameterList
	index  [residue.NumAnchors][NumKeys]int // list position or -1
	cache  map[cell]bound
	leaves []leaf
}

type cell struct {
	anchor residue.Anchor
	key    Key
	row    int
	slot   int
}

type bound struct {
	value, sin, cos autodiff.Var
}

type leaf struct {
	param  int
	offset int
	v      autodiff.Var
}

// Bind binds s to tape t. Fields of s with a parameter in list take their
// values from list (which must have been extracted from s, or scattered into
// it); list may be nil to bind the set alone.
func Bind(t *autodiff.Tape, s *Set, list ParameterList) *Bound {
	b := &Bound{tape: t, set: s, list: list, cache: make(map[cell]bound)}
	for a := range b.index {
		for k := range b.index[a] {
			b.index[a][k] = -1
		}
	}
	for i, p := range list {
		b.index[p.Anchor()][p.Key()] = i
	}
	return b
}

// Tape returns the tape variables are created on.
func (b *Bound) Tape() *autodiff.Tape {
	return b.tape
}

func (b *Bound) get(c cell) bound {
	if v, ok := b.cache[c]; ok {
		return v
	}
	var v bound
	off, err := Shape(c.anchor).Offset(c.row, c.slot)
	if err != nil {
		panic(err)
	}
	if i := b.index[c.anchor][c.key]; i >= 0 {
		x := b.tape.Leaf(b.list[i].Tensor().Data()[off])
		b.leaves = append(b.leaves, leaf{param: i, offset: off, v: x})
		v.value = x
		if c.key.Angular() {
			v.sin, v.cos = x.Sin(), x.Cos()
		}
	} else {
		f := b.set.Field(c.anchor, c.key)
		if f.Kind() == Angular {
			sin, cos := f.SinCos()
			s, co := sin.Data()[off], cos.Data()[off]
			v.sin, v.cos = b.tape.Const(s), b.tape.Const(co)
			v.value = b.tape.Const(math.Atan2(s, co))
		} else {
			x := f.Value().Data()[off]
			v.value = b.tape.Const(x)
			if c.key.Angular() {
				v.sin, v.cos = b.tape.Const(math.Sin(x)), b.tape.Const(math.Cos(x))
			}
		}
	}
	b.cache[c] = v
	return v
}

// Bond returns the bond length of (anchor, residue row, slot).
func (b *Bound) Bond(a residue.Anchor, row, slot int) autodiff.Var {
	return b.get(cell{a, BondLengths, row, slot}).value
}

// Theta returns the sine and cosine of the bond angle of (anchor, row, slot).
func (b *Bound) Theta(a residue.Anchor, row, slot int) (sin, cos autodiff.Var) {
	v := b.get(cell{a, Thetas, row, slot})
	return v.sin, v.cos
}

// Chi returns the sine and cosine of the torsion offset of (anchor, row, slot).
func (b *Bound) Chi(a residue.Anchor, row, slot int) (sin, cos autodiff.Var) {
	v := b.get(cell{a, Chis, row, slot})
	return v.sin, v.cos
}

// NumLeaves returns the number of parameter leaves created so far.
func (b *Bound) NumLeaves() int {
	return len(b.leaves)
}

// Accumulate adds the gradient of every leaf to the gradient tensors of the
// bound list.
func (b *Bound) Accumulate(g *autodiff.Gradients) {
	for _, l := range b.leaves {
		b.list[l.param].Grad().Data()[l.offset] += g.Of(l.v)
	}
}
