package serialization

import (
	"github.com/pkg/errors"

	"github.com/sidechainnet/buildopt/internal/params"
)

// SaveSet writes a parameter set to path. run may be nil.
func SaveSet(path string, set *params.Set, run *RunMeta) error {
	w, err := NewWriter(path)
	if err != nil {
		return err
	}
	header := Header{Kinds: set.Kinds(), Run: run}
	if err := w.WriteStateDict(set.StateDict(), header); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// LoadSet reads a parameter set written by SaveSet.
func LoadSet(path string) (*params.Set, Header, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, Header{}, err
	}
	defer func() { _ = r.Close() }()

	dict, err := r.ReadStateDict()
	if err != nil {
		return nil, Header{}, err
	}
	set, err := params.FromStateDict(dict, r.Header().Kinds)
	if err != nil {
		return nil, Header{}, errors.Wrapf(err, "load %s", path)
	}
	return set, r.Header(), nil
}
