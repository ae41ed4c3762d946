// Package report renders the outputs of an optimization run for people:
// the loss curve image and the terminal progress bar.
package report

import (
	"image/color"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ErrNoLosses is returned when there is nothing to plot.
var ErrNoLosses = errors.New("report: empty loss history")

// SaveLossCurve plots losses against the iteration index, together with
// the running best, and saves the image to path. The format follows the
// file extension (png, svg, pdf).
func SaveLossCurve(path, title string, losses []float64) error {
	if len(losses) == 0 {
		return ErrNoLosses
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Iteration"
	p.Y.Label.Text = "Loss"
	p.Add(plotter.NewGrid())

	raw := make(plotter.XYs, 0, len(losses))
	best := make(plotter.XYs, 0, len(losses))
	running := math.Inf(1)
	for i, l := range losses {
		if math.IsNaN(l) || math.IsInf(l, 0) {
			continue
		}
		running = math.Min(running, l)
		raw = append(raw, plotter.XY{X: float64(i), Y: l})
		best = append(best, plotter.XY{X: float64(i), Y: running})
	}
	if len(raw) == 0 {
		return errors.Wrap(ErrNoLosses, "no finite values")
	}

	lossLine, err := plotter.NewLine(raw)
	if err != nil {
		return errors.Wrap(err, "loss line")
	}
	bestLine, err := plotter.NewLine(best)
	if err != nil {
		return errors.Wrap(err, "best line")
	}
	bestLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	bestLine.Color = color.Gray{Y: 128}

	p.Add(lossLine, bestLine)
	p.Legend.Add("loss", lossLine)
	p.Legend.Add("best", bestLine)
	p.Legend.Top = true

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "saving loss curve to %s", path)
	}
	return nil
}
