package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sidechainnet/buildopt/internal/energy"
	"github.com/sidechainnet/buildopt/internal/residue"
	"github.com/sidechainnet/buildopt/internal/session"
)

// ScoreFile lists proteins to score with a fixed parameter set.
//
//	params: out/1abc.bprm
//	layout:
//	  A: [N, CA, C, O, CB]
//	targets:
//	  - id: ala
//	    sequence: A
//	    coords:
//	      - [[0, 0, 0], [1.46, 0, 0], ...]
type ScoreFile struct {
	Params string         `yaml:"params"`
	Energy energy.Options `yaml:"energy"`
	// Layout gives, per one-letter code, the atom order of the coords of
	// every target.
	Layout  map[string][]string `yaml:"layout"`
	Targets []TargetConfig      `yaml:"targets"`
}

// TargetConfig is one protein of a score file. Without coords the protein
// is scored as built.
type TargetConfig struct {
	ProteinConfig `yaml:",inline"`
	Coords        [][][3]float64 `yaml:"coords"`
}

// LoadScoreFile reads a YAML score file. Unknown fields are rejected.
func LoadScoreFile(path string) (*ScoreFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var sf ScoreFile
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&sf); err != nil {
		return nil, errors.Wrapf(err, "parse score file %s", path)
	}
	return &sf, nil
}

// layout returns the residue layout of the file, or nil when it has none.
func (sf *ScoreFile) layout() (residue.Layout, error) {
	if len(sf.Layout) == 0 {
		return nil, nil
	}
	byCode := make(map[byte][]string, len(sf.Layout))
	for code, names := range sf.Layout {
		if len(code) != 1 {
			return nil, errors.Errorf("layout key %q is not a one-letter code", code)
		}
		byCode[strings.ToUpper(code)[0]] = names
	}
	return func(code byte) []string { return byCode[code] }, nil
}

// Build returns the scoring targets of the file.
func (sf *ScoreFile) Build() ([]session.Target, error) {
	layout, err := sf.layout()
	if err != nil {
		return nil, err
	}
	targets := make([]session.Target, 0, len(sf.Targets))
	for i, tc := range sf.Targets {
		if tc.ID == "" {
			tc.ID = fmt.Sprintf("target-%d", i+1)
		}
		p, err := tc.ProteinConfig.Build()
		if err != nil {
			return nil, err
		}
		tg := session.Target{Protein: p}
		if tc.Coords != nil {
			if layout == nil {
				return nil, errors.Errorf("%s: coords given but the score file has no layout", tc.ID)
			}
			tg.Layout = layout
			tg.Coords = tc.Coords
		}
		targets = append(targets, tg)
	}
	return targets, nil
}

// sequenceTargets parses a comma-separated list of sequences. Proteins are
// named after their sequence.
func sequenceTargets(list string) ([]session.Target, error) {
	var targets []session.Target
	for _, seq := range strings.Split(list, ",") {
		seq = strings.ToUpper(strings.TrimSpace(seq))
		if seq == "" {
			continue
		}
		p, err := ProteinConfig{ID: seq, Sequence: seq}.Build()
		if err != nil {
			return nil, err
		}
		targets = append(targets, session.Target{Protein: p})
	}
	if len(targets) == 0 {
		return nil, errors.New("no sequences to score")
	}
	return targets, nil
}

// scoreSummary renders the outcome of session.Score as a table.
func scoreSummary(res *session.ScoreResult) string {
	table := lgtable.New().
		Border(lipgloss.RoundedBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return rightAlignedStyle
			}
			return normalStyle
		})
	table.Row("Scored", idList(res.Scored))
	table.Row("Skipped", idList(res.Skipped))
	table.Row("Loss", fmt.Sprintf("%.6g", res.Loss))
	table.Row("Raw energy", fmt.Sprintf("%.6g", res.Raw))
	if len(res.Missing) > 0 {
		table.Row("Unmapped atoms", humanize.Comma(int64(len(res.Missing))))
	}
	return table.String()
}

func idList(ids []string) string {
	return strings.TrimSpace(humanize.Comma(int64(len(ids))) + " " + strings.Join(ids, ","))
}
