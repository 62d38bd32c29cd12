package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// TermProgress redraws a single status line on a terminal.
type TermProgress struct {
	w     io.Writer
	total int
	done  int
}

// NewTermProgress returns a progress line written to w.
func NewTermProgress(w io.Writer) *TermProgress {
	return &TermProgress{w: w}
}

func (p *TermProgress) Start(total int) {
	p.total = total
	p.done = 0
	p.draw()
}

func (p *TermProgress) Add(n int) {
	p.done += n
	p.draw()
}

func (p *TermProgress) Finish() {
	fmt.Fprintln(p.w)
}

func (p *TermProgress) draw() {
	if p.total > 0 {
		pct := p.done * 100 / p.total
		fmt.Fprintf(p.w, "\rloading: %d/%d documents (%d%%)", p.done, p.total, pct)
		return
	}
	fmt.Fprintf(p.w, "\rloading: %d documents", p.done)
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
