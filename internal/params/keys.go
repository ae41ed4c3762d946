package params

import (
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Key names one field of a parameter group.
type Key int

// Field keys, in extraction order.
const (
	BondLengths Key = iota
	Thetas
	Chis
)

// NumKeys is the number of fields per group.
const NumKeys = 3

// Keys lists the field keys in extraction order.
var Keys = [NumKeys]Key{BondLengths, Thetas, Chis}

// String returns the configuration name of the key.
func (k Key) String() string {
	switch k {
	case BondLengths:
		return "bond_lengths"
	case Thetas:
		return "thetas"
	case Chis:
		return "chis"
	default:
		return "unknown"
	}
}

// Angular reports whether the key holds angles.
func (k Key) Angular() bool {
	return k == Thetas || k == Chis
}

// ParseKey parses a key name.
func ParseKey(s string) (Key, error) {
	for _, k := range Keys {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, errors.Errorf("unknown build parameter key %q (want bond_lengths, thetas or chis)", s)
}

// KeySet is the set of keys under optimization.
type KeySet uint8

// AllKeys selects every field.
const AllKeys = KeySet(1<<BondLengths | 1<<Thetas | 1<<Chis)

// NewKeySet returns the set holding keys.
func NewKeySet(keys ...Key) KeySet {
	var s KeySet
	for _, k := range keys {
		s |= 1 << k
	}
	return s
}

// Has reports whether k is selected.
func (s KeySet) Has(k Key) bool {
	return s&(1<<k) != 0
}

// Keys returns the selected keys in extraction order.
func (s KeySet) Keys() []Key {
	var out []Key
	for _, k := range Keys {
		if s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// Len returns the number of selected keys.
func (s KeySet) Len() int {
	return len(s.Keys())
}

// Names returns the names of the selected keys in extraction order.
func (s KeySet) Names() []string {
	names := make([]string, 0, NumKeys)
	for _, k := range s.Keys() {
		names = append(names, k.String())
	}
	return names
}

// String implements fmt.Stringer.
func (s KeySet) String() string {
	return strings.Join(s.Names(), ",")
}

// ParseKeys parses a comma-separated list of key names.
func ParseKeys(s string) (KeySet, error) {
	var set KeySet
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		k, err := ParseKey(name)
		if err != nil {
			return 0, err
		}
		set |= NewKeySet(k)
	}
	if set == 0 {
		return 0, errors.New("no build parameter keys selected")
	}
	return set, nil
}

// UnmarshalYAML accepts either a sequence of key names or a comma-separated string.
func (s *KeySet) UnmarshalYAML(node *yaml.Node) error {
	var names []string
	if node.Kind == yaml.SequenceNode {
		if err := node.Decode(&names); err != nil {
			return err
		}
	} else {
		var joined string
		if err := node.Decode(&joined); err != nil {
			return err
		}
		names = []string{joined}
	}
	set, err := ParseKeys(strings.Join(names, ","))
	if err != nil {
		return errors.Wrapf(err, "line %d", node.Line)
	}
	*s = set
	return nil
}

// MarshalYAML writes the set as a sequence of key names.
func (s KeySet) MarshalYAML() (any, error) {
	names := make([]string, 0, NumKeys)
	for _, k := range s.Keys() {
		names = append(names, k.String())
	}
	return names, nil
}
