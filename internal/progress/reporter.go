package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ariel-frischer/ilverify/internal/lifecycle"
	"github.com/fatih/color"
)

// Reporter prints one line per finished module. It implements
// lifecycle.Handler and is safe for concurrent use.
type Reporter struct {
	out     io.Writer
	symbols ProgressSymbols
	color   bool
	spinner *Spinner

	mu sync.Mutex
}

// NewReporter creates a Reporter. sp may be nil; when set and spinning it is
// paused while a line is printed.
func NewReporter(out io.Writer, caps TerminalCapabilities, sp *Spinner) *Reporter {
	if sp == nil {
		sp = newSpinnerTo(io.Discard)
	}
	return &Reporter{
		out:     out,
		symbols: SelectSymbols(caps),
		color:   caps.SupportsColor,
		spinner: sp,
	}
}

// OnVerificationComplete implements lifecycle.Handler.
func (r *Reporter) OnVerificationComplete(e lifecycle.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	spinning := r.spinner.Active()
	r.spinner.Stop()
	fmt.Fprintln(r.out, r.line(e))
	if spinning {
		r.spinner.Resume()
	}
}

func (r *Reporter) line(e lifecycle.Event) string {
	mark, verdict := r.symbols.Checkmark, e.Verdict()
	paint := color.New(color.FgGreen, color.Bold)
	if !e.Success() {
		mark = r.symbols.Failure
		paint = color.New(color.FgRed, color.Bold)
	}
	if r.color {
		paint.EnableColor()
		mark = paint.Sprint(mark)
	} else {
		paint.DisableColor()
	}
	return fmt.Sprintf("%s %s %s (%s)", mark, e.Module, verdict, formatDuration(e.Duration))
}

// formatDuration rounds to milliseconds below a minute and to seconds above.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}

var _ lifecycle.Handler = (*Reporter)(nil)
