// Package main provides the buildopt CLI, which optimizes protein build
// parameters against the harmonic force field and saves them with their
// loss curve. With -score or -targets it scores proteins under a fixed
// parameter set instead.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"k8s.io/klog/v2"

	"github.com/sidechainnet/buildopt/internal/build"
	"github.com/sidechainnet/buildopt/internal/forcefield"
	"github.com/sidechainnet/buildopt/internal/params"
	"github.com/sidechainnet/buildopt/internal/serialization"
	"github.com/sidechainnet/buildopt/internal/session"
)

const version = "v0.3.0"

var (
	flagConfig   = flag.String("config", "", "YAML run file; flags given explicitly override it")
	flagSequence = flag.String("sequence", "", "one-letter sequence of the target protein (default: one residue of every type)")
	flagKeys     = flag.String("keys", "", "comma-separated fields to optimize: bond_lengths,thetas,chis (default: all)")
	flagStrategy = flag.String("strategy", "", "optimizer: quasi_newton (lbfgs), momentum_sgd (sgd) or adaptive_sgd (adam)")
	flagLR       = flag.Float64("lr", 0, "learning rate (default: 1e-5)")
	flagSteps    = flag.Int("steps", 0, "iteration budget (default: 100)")
	flagPatience = flag.Int("patience", 0, "early-stopping patience of first-order strategies (default: 20)")
	flagInput    = flag.String("input", "", "initial parameters (.bprm); defaults to the built-in tables")
	flagOutput   = flag.String("output", "", "output parameter file (default: "+session.DefaultArtifactPath+")")
	flagScore    = flag.String("score", "", "comma-separated sequences to score with the -input parameters instead of optimizing")
	flagTargets  = flag.String("targets", "", "YAML score file of proteins and coordinates to score instead of optimizing")
	flagProgress = flag.Bool("progress", true, "show a progress bar on stderr")
	flagVersion  = flag.Bool("version", false, "print the version and exit")
)

var (
	normalStyle       = lipgloss.NewStyle().Padding(0, 1)
	rightAlignedStyle = lipgloss.NewStyle().Align(lipgloss.Right).Padding(0, 1)
)

func main() {
	klog.InitFlags(nil)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags]\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *flagVersion {
		fmt.Printf("buildopt %s\n", version)
		return
	}
	runner := run
	if *flagScore != "" || *flagTargets != "" {
		runner = score
	}
	if err := runner(); err != nil {
		klog.Exitf("buildopt: %+v", err)
	}
}

func run() error {
	rf := &RunFile{}
	if *flagConfig != "" {
		var err error
		if rf, err = LoadRunFile(*flagConfig); err != nil {
			return err
		}
	}
	if err := applyFlags(rf); err != nil {
		return err
	}
	if rf.Output == "" {
		rf.Output = session.DefaultArtifactPath
	}

	p, err := rf.Protein.Build()
	if err != nil {
		return err
	}

	var defaults *params.Set
	if rf.Input != "" {
		set, header, err := serialization.LoadSet(rf.Input)
		if err != nil {
			return err
		}
		if header.Run != nil {
			klog.Infof("starting from %s (run %s, best loss %g)", rf.Input, header.Run.ID, header.Run.BestLoss)
		}
		defaults = set
	}

	cfg := rf.Session
	cfg.ProgressWriter = os.Stderr
	s, err := session.New(p, build.NeRF{}, forcefield.NewHarmonic(), defaults, cfg)
	if err != nil {
		return err
	}
	res, err := s.Run()
	if err != nil {
		return err
	}
	if err := res.Save(rf.Output); err != nil {
		return err
	}
	fmt.Println(summary(res, s.Evaluations(), rf.Output))
	return nil
}

func score() error {
	sf := &ScoreFile{}
	if *flagTargets != "" {
		var err error
		if sf, err = LoadScoreFile(*flagTargets); err != nil {
			return err
		}
	}
	if isSet("input") {
		sf.Params = *flagInput
	}

	targets, err := sf.Build()
	if err != nil {
		return err
	}
	if *flagScore != "" {
		more, err := sequenceTargets(*flagScore)
		if err != nil {
			return err
		}
		targets = append(targets, more...)
	}

	var set *params.Set
	if sf.Params != "" {
		if set, _, err = serialization.LoadSet(sf.Params); err != nil {
			return err
		}
	}
	res, err := session.Score(targets, build.NeRF{}, forcefield.NewHarmonic(), set, sf.Energy)
	if err != nil {
		return err
	}
	fmt.Println(scoreSummary(res))
	return nil
}

// applyFlags overrides run-file values with the flags set on the command
// line. Flags left at their defaults never override the run file.
func applyFlags(rf *RunFile) error {
	var err error
	flag.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "sequence":
			rf.Protein = ProteinConfig{ID: "cli", Sequence: strings.ToUpper(*flagSequence)}
		case "keys":
			rf.Session.Keys, err = params.ParseKeys(*flagKeys)
		case "strategy":
			rf.Session.Strategy = *flagStrategy
		case "lr":
			rf.Session.LR = *flagLR
		case "steps":
			rf.Session.Steps = *flagSteps
		case "patience":
			rf.Session.Patience = *flagPatience
		case "input":
			rf.Input = *flagInput
		case "output":
			rf.Output = *flagOutput
		}
	})
	if *flagConfig == "" || isSet("progress") {
		rf.Session.Progress = *flagProgress
	}
	return err
}

func isSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// summary renders the run outcome as a table.
func summary(res *session.Result, evals int, path string) string {
	table := lgtable.New().
		Border(lipgloss.RoundedBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return rightAlignedStyle
			}
			return normalStyle
		})
	table.Row("Run", res.ID)
	table.Row("Protein", res.Protein)
	table.Row("Strategy", res.Strategy)
	table.Row("Keys", res.Keys.String())
	table.Row("State", res.State.String())
	table.Row("Steps", humanize.Comma(int64(res.Steps)))
	table.Row("Evaluations", humanize.Comma(int64(evals)))
	if len(res.Losses) > 0 {
		table.Row("Initial loss", fmt.Sprintf("%.6g", res.Losses[0]))
	}
	table.Row("Best loss", fmt.Sprintf("%.6g", res.BestLoss))
	table.Row("Drift", fmt.Sprintf("%.4f Å", res.Drift))
	artifact := path
	if info, err := os.Stat(path); err == nil {
		artifact = fmt.Sprintf("%s (%s)", path, humanize.Bytes(uint64(info.Size())))
	}
	table.Row("Parameters", artifact)
	table.Row("Loss curve", session.PlotPath(path))
	return table.String()
}
