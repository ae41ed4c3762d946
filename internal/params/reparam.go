package params

import (
	"github.com/pkg/errors"

	"github.com/sidechainnet/buildopt/internal/residue"
)

// Initialize returns a deep copy of defaults prepared for optimizing keys.
//
// Selected angular fields become Angular: an Angular default keeps its
// sine/cosine pair, any other default is converted from its raw angles.
// Selected bond lengths become Linear. Every other field is Frozen at its
// raw value.
func Initialize(defaults *Set, keys KeySet) *Set {
	s := &Set{}
	for _, a := range residue.Anchors {
		g := &Group{}
		for _, k := range Keys {
			src := defaults.Field(a, k)
			switch {
			case keys.Has(k) && k.Angular() && src.Kind() == Angular:
				g.Fields[k] = src.Clone()
			case keys.Has(k) && k.Angular():
				g.Fields[k] = AngularFromRaw(src.Raw())
			case keys.Has(k):
				g.Fields[k] = LinearField(src.Raw())
			default:
				g.Fields[k] = FrozenField(src.Raw())
			}
		}
		s.Groups[a] = g
	}
	return s
}

// Extract flattens the selected fields of s into a ParameterList, anchors
// in N, CA, C order and keys in bond_lengths, thetas, chis order. Angular
// fields are extracted as atan2(sin, cos). Values are copies.
func Extract(s *Set, keys KeySet) ParameterList {
	var list ParameterList
	for _, a := range residue.Anchors {
		for _, k := range keys.Keys() {
			list = append(list, NewParameter(a, k, s.Field(a, k).Raw()))
		}
	}
	return list
}

// Scatter writes list back into s by position, the inverse of Extract.
// Angles are stored as (sin x, cos x); bond lengths verbatim. Fields not in
// keys are left untouched.
func Scatter(s *Set, keys KeySet, list ParameterList) error {
	selected := keys.Keys()
	if want := residue.NumAnchors * len(selected); len(list) != want {
		return errLengthMismatch(len(list), want)
	}
	i := 0
	for _, a := range residue.Anchors {
		for _, k := range selected {
			p := list[i]
			i++
			if got, want := p.Tensor().Shape(), Shape(a); !got.Equal(want) {
				return errors.Errorf("scatter %s: shape %v, want %v", TensorName(a, k), got, want)
			}
			if k.Angular() {
				s.Groups[a].Fields[k] = AngularFromRaw(p.Tensor())
			} else {
				s.Groups[a].Fields[k] = LinearField(p.Tensor().Clone())
			}
		}
	}
	return nil
}
