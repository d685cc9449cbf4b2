package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/theckman/yacspin"
	"golang.org/x/term"
)

// progress shows a spinner with the current case when w is a terminal.
// Otherwise every method is a no-op.
type progress struct {
	spinner *yacspin.Spinner
	width   int
	total   int
	done    int
}

func newProgress(w io.Writer, total int) *progress {
	p := &progress{total: total}

	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p
	}

	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		width = 80
	}

	spinner, err := yacspin.New(yacspin.Config{
		Writer:            w,
		Frequency:         100 * time.Millisecond,
		CharSet:           yacspin.CharSets[14],
		Suffix:            " ",
		Colors:            []string{"fgHiCyan"},
		StopColors:        []string{"fgHiGreen"},
		StopFailColors:    []string{"fgHiRed"},
		StopCharacter:     "✓",
		StopFailCharacter: "✗",
	})
	if err != nil {
		return p
	}

	if err := spinner.Start(); err != nil {
		return p
	}

	p.spinner = spinner
	p.width = width

	return p
}

func (p *progress) step(id string) {
	p.done++

	if p.spinner == nil {
		return
	}

	msg := fmt.Sprintf("[%d/%d] %s", p.done, p.total, id)
	if limit := p.width - 8; limit > 3 && len(msg) > limit {
		msg = msg[:limit-3] + "..."
	}

	p.spinner.Message(msg)
}

func (p *progress) stop(err error) {
	if p.spinner == nil {
		return
	}

	if err != nil {
		p.spinner.StopFailMessage(err.Error())
		_ = p.spinner.StopFail()

		return
	}

	p.spinner.StopMessage(fmt.Sprintf("%d cases measured", p.done))
	_ = p.spinner.Stop()
}
