package progress

import (
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner shows activity while a verification runs. It does nothing when the
// terminal is not interactive.
type Spinner struct {
	s       *spinner.Spinner
	enabled bool
}

// NewSpinner creates a spinner writing to f.
func NewSpinner(f *os.File, caps TerminalCapabilities) *Spinner {
	symbols := SelectSymbols(caps)
	s := spinner.New(spinner.CharSets[symbols.SpinnerSet], 100*time.Millisecond,
		spinner.WithWriterFile(f),
		spinner.WithHiddenCursor(caps.IsTTY))
	return &Spinner{s: s, enabled: caps.IsTTY}
}

// newSpinnerTo builds a disabled spinner on an arbitrary writer.
func newSpinnerTo(w io.Writer) *Spinner {
	return &Spinner{s: spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(w))}
}

// Start shows msg next to the spinner.
func (sp *Spinner) Start(msg string) {
	if !sp.enabled {
		return
	}
	sp.s.Suffix = " " + msg
	sp.s.Start()
}

// Stop clears the spinner line.
func (sp *Spinner) Stop() {
	if !sp.enabled {
		return
	}
	sp.s.Stop()
}

// Active reports whether the spinner is currently spinning.
func (sp *Spinner) Active() bool {
	return sp.enabled && sp.s.Active()
}

// Resume restarts a stopped spinner with its last message.
func (sp *Spinner) Resume() {
	if !sp.enabled {
		return
	}
	sp.s.Start()
}

// Enabled reports whether the spinner renders anything.
func (sp *Spinner) Enabled() bool {
	return sp.enabled
}
