package report

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
)

// ProgressbarStyle to use. Defaults to the ASCII version.
var ProgressbarStyle = progressbar.ThemeASCII

// Progress displays the step count and current loss of a run. A nil
// *Progress is valid and displays nothing.
type Progress struct {
	bar *progressbar.ProgressBar
}

// NewProgress creates a progress bar of steps iterations writing to w.
func NewProgress(w io.Writer, steps int, title string) *Progress {
	bar := progressbar.NewOptions(steps,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(title),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("steps"),
		progressbar.OptionSetTheme(ProgressbarStyle),
	)
	return &Progress{bar: bar}
}

// Update advances the bar by one step and shows loss.
func (p *Progress) Update(loss float64) {
	if p == nil {
		return
	}
	p.bar.Describe(fmt.Sprintf("loss %.6g", loss))
	_ = p.bar.Add(1)
}

// Finish completes the bar, also when the run stopped early.
func (p *Progress) Finish() {
	if p == nil {
		return
	}
	_ = p.bar.Finish()
}
