// Package params holds the build parameters of the structure builder and
// their optimizable form.
//
// A Set groups parameters by anchor atom (N, CA, C). Each Group holds bond
// lengths, bond angles (thetas) and torsion offsets (chis) as tensors of
// shape [residue type][slot], where the slot of an atom is given by the
// residue geometry table. Fields selected for optimization are stored as
// Linear values (bond lengths) or as Angular sine/cosine pairs; the rest are
// Frozen.
//
// Initialize, Extract and Scatter move values between a Set and the flat
// ParameterList the optimizers update. Bind exposes a Set on an autodiff
// tape for one differentiable build.
package params

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/sidechainnet/buildopt/internal/residue"
	"github.com/sidechainnet/buildopt/internal/tensor"
)

// Group holds the fields of one anchor atom.
type Group struct {
	Fields [NumKeys]Field
}

// Field returns a pointer to the field for k.
func (g *Group) Field(k Key) *Field {
	return &g.Fields[k]
}

// Clone returns a deep copy.
func (g *Group) Clone() *Group {
	c := &Group{}
	for k := range g.Fields {
		c.Fields[k] = g.Fields[k].Clone()
	}
	return c
}

// Set is a complete set of build parameters.
type Set struct {
	Groups [residue.NumAnchors]*Group
}

// Group returns the group of anchor a.
func (s *Set) Group(a residue.Anchor) *Group {
	return s.Groups[a]
}

// Field returns the field (a, k).
func (s *Set) Field(a residue.Anchor, k Key) *Field {
	return s.Groups[a].Field(k)
}

// Clone returns a deep copy.
func (s *Set) Clone() *Set {
	c := &Set{}
	for a, g := range s.Groups {
		c.Groups[a] = g.Clone()
	}
	return c
}

// Shape returns the tensor shape of the fields of anchor a.
func Shape(a residue.Anchor) tensor.Shape {
	return tensor.Shape{residue.NumTypes, residue.SlotsPerAnchor(a)}
}

// Defaults returns the frozen build parameters of the residue geometry
// table. Unused slots are zero.
func Defaults() *Set {
	s := &Set{}
	var values [residue.NumAnchors][NumKeys]*tensor.Tensor
	for _, a := range residue.Anchors {
		for _, k := range Keys {
			values[a][k] = tensor.Zeros(Shape(a))
		}
	}
	for row := 0; row < residue.NumTypes; row++ {
		tmpl, err := residue.Lookup(residue.Alphabet[row])
		if err != nil {
			panic(err)
		}
		for _, atom := range tmpl.Atoms {
			values[atom.Anchor][BondLengths].Set(atom.Bond, row, atom.Slot)
			values[atom.Anchor][Thetas].Set(atom.Theta, row, atom.Slot)
			values[atom.Anchor][Chis].Set(atom.Chi, row, atom.Slot)
		}
	}
	for _, a := range residue.Anchors {
		g := &Group{}
		for _, k := range Keys {
			g.Fields[k] = FrozenField(values[a][k])
		}
		s.Groups[a] = g
	}
	return s
}

// TensorName returns the persisted name of field (a, k).
func TensorName(a residue.Anchor, k Key) string {
	return a.String() + "." + k.String()
}

// Suffixes of the tensors of an angular field.
const (
	SinSuffix = ".sin"
	CosSuffix = ".cos"
)

// StateDict returns the named tensors of the set: "<anchor>.<key>" for
// Frozen and Linear fields, "<anchor>.<key>.sin" and ".cos" for Angular
// ones. Tensors are copies.
func (s *Set) StateDict() map[string]*tensor.Tensor {
	out := make(map[string]*tensor.Tensor)
	for _, a := range residue.Anchors {
		for _, k := range Keys {
			f := s.Field(a, k)
			name := TensorName(a, k)
			if f.Kind() == Angular {
				sin, cos := f.SinCos()
				out[name+SinSuffix] = sin.Clone()
				out[name+CosSuffix] = cos.Clone()
				continue
			}
			out[name] = f.Value().Clone()
		}
	}
	return out
}

// Kinds returns the kind of every field keyed by TensorName. It is stored
// alongside StateDict so frozen and linear fields can be told apart on load.
func (s *Set) Kinds() map[string]string {
	out := make(map[string]string)
	for _, a := range residue.Anchors {
		for _, k := range Keys {
			out[TensorName(a, k)] = s.Field(a, k).Kind().String()
		}
	}
	return out
}

// FromStateDict rebuilds a set from named tensors. kinds may be nil, in
// which case plain tensors load as Frozen. Tensors are used without copying.
func FromStateDict(dict map[string]*tensor.Tensor, kinds map[string]string) (*Set, error) {
	s := &Set{}
	used := 0
	for _, a := range residue.Anchors {
		g := &Group{}
		for _, k := range Keys {
			name := TensorName(a, k)
			if sin, ok := dict[name+SinSuffix]; ok {
				cos, ok := dict[name+CosSuffix]
				if !ok {
					return nil, errors.Errorf("state dict: %s%s without %s%s", name, SinSuffix, name, CosSuffix)
				}
				f, err := AngularField(sin, cos)
				if err != nil {
					return nil, errors.Wrap(err, name)
				}
				g.Fields[k] = f
				used += 2
			} else if v, ok := dict[name]; ok {
				if kinds[name] == Linear.String() {
					g.Fields[k] = LinearField(v)
				} else {
					g.Fields[k] = FrozenField(v)
				}
				used++
			} else {
				return nil, errors.Errorf("state dict: missing tensor %s", name)
			}
			if got, want := g.Fields[k].Shape(), Shape(a); !got.Equal(want) {
				return nil, errors.Errorf("state dict: %s has shape %v, want %v", name, got, want)
			}
		}
		s.Groups[a] = g
	}
	if used != len(dict) {
		return nil, errors.Errorf("state dict: unexpected tensors %s", strings.Join(unknownNames(dict), ", "))
	}
	return s, nil
}

func unknownNames(dict map[string]*tensor.Tensor) []string {
	known := make(map[string]bool)
	for _, a := range residue.Anchors {
		for _, k := range Keys {
			name := TensorName(a, k)
			known[name] = true
			known[name+SinSuffix] = true
			known[name+CosSuffix] = true
		}
	}
	var out []string
	for name := range dict {
		if !known[name] {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func errLengthMismatch(got, want int) error {
	return errors.Errorf("parameter list has %d entries, want %d", got, want)
}

// String summarizes the field kinds, e.g. "N{frozen,frozen,angular} ...".
func (s *Set) String() string {
	var b strings.Builder
	for i, a := range residue.Anchors {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s{", a)
		for j, k := range Keys {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(s.Field(a, k).Kind().String())
		}
		b.WriteByte('}')
	}
	return b.String()
}
