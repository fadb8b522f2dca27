// Package lifecycle provides the wrapper around one module verification. It
// handles timing and completion dispatch, so history, metrics and progress
// reporting do not repeat the same boilerplate in every command.
//
// Each wrapper call captures the start time, executes the provided function,
// calculates the duration and notifies the handler. No goroutines are started.
package lifecycle

import (
	"sync"
	"time"

	"github.com/ariel-frischer/ilverify/internal/verifier"
)

// Event describes a finished verification.
type Event struct {
	// Module is the module as named by the user.
	Module string
	// Outcome is nil when the verifier was never invoked.
	Outcome *verifier.Outcome
	// Err is the verification error, nil on success.
	Err      error
	Duration time.Duration
}

// Success reports whether the module verified.
func (e Event) Success() bool {
	return e.Err == nil
}

// Verdict returns "passed", "failed", or the failure kind when the verifier
// never produced a verdict.
func (e Event) Verdict() string {
	if e.Err == nil {
		return verifier.Passed.String()
	}
	if kind := verifier.KindOf(e.Err); kind != 0 && kind != verifier.KindVerificationFailed {
		return kind.String()
	}
	return verifier.Failed.String()
}

// Handler receives completion events.
type Handler interface {
	// OnVerificationComplete is called once per module, after the verifier
	// returns or the run is abandoned.
	OnVerificationComplete(Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(Event)

// OnVerificationComplete calls f(e).
func (f HandlerFunc) OnVerificationComplete(e Event) {
	f(e)
}

// Handlers fans an event out to each non-nil handler, in order.
type Handlers []Handler

// OnVerificationComplete implements Handler.
func (hs Handlers) OnVerificationComplete(e Event) {
	for _, h := range hs {
		if h != nil {
			h.OnVerificationComplete(e)
		}
	}
}

// Run times fn and reports the result to h. h may be nil. The outcome and
// error of fn are returned unchanged.
func Run(h Handler, module string, fn func() (*verifier.Outcome, error)) (*verifier.Outcome, error) {
	start := time.Now()
	outcome, err := fn()
	if h != nil {
		h.OnVerificationComplete(Event{
			Module:   module,
			Outcome:  outcome,
			Err:      err,
			Duration: time.Since(start),
		})
	}
	return outcome, err
}

// Serialized returns a Handler that delivers events to h one at a time, for
// handlers shared by concurrent verifications.
func Serialized(h Handler) Handler {
	return &serialized{h: h}
}

type serialized struct {
	mu sync.Mutex
	h  Handler
}

func (s *serialized) OnVerificationComplete(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.h.OnVerificationComplete(e)
}
