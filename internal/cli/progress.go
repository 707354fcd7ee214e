package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

var progressLabelStyle = lipgloss.NewStyle().Bold(true)

// ProgressBar renders an in-place token-count progress bar for one file. It
// drives a bubbles progress model directly via ViewAs; there is no tea program
// behind it since the run is a plain batch loop.
type ProgressBar struct {
	out   io.Writer
	bar   progress.Model
	label string
	total int
	done  int
}

// NewProgressBar tracks total units (raw token IDs) under the given label.
func NewProgressBar(out io.Writer, label string, total int) *ProgressBar {
	return &ProgressBar{
		out:   out,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		label: label,
		total: total,
	}
}

// Add advances the bar by n units and redraws it.
func (p *ProgressBar) Add(n int) {
	p.done += n
	if p.done > p.total {
		p.done = p.total
	}
	p.render()
}

// Finish snaps the bar to 100% and terminates the line.
func (p *ProgressBar) Finish() {
	p.done = p.total
	p.render()
	fmt.Fprintln(p.out)
}

func (p *ProgressBar) render() {
	frac := 1.0
	if p.total > 0 {
		frac = float64(p.done) / float64(p.total)
	}
	fmt.Fprintf(p.out, "\r%s %s %d/%d",
		progressLabelStyle.Render(p.label), p.bar.ViewAs(frac), p.done, p.total)
}
