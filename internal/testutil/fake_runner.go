package testutil

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/ariel-frischer/ilverify/internal/exec"
)

// FakeResponse is a scripted process result.
type FakeResponse struct {
	Stdout   string
	Stderr   string
	ExitCode int
	// Err is returned instead of a result, simulating a start failure.
	Err error
}

type fakeRoute struct {
	arg  string
	resp FakeResponse
}

// FakeRunner is a scripted exec.Runner that records every invocation.
// Routes are matched in registration order against the exact argument list;
// unmatched calls get the default response.
type FakeRunner struct {
	mu       sync.Mutex
	routes   []fakeRoute
	fallback FakeResponse
	calls    []CallRecord

	// OnRun, when set, is called before the response is produced.
	OnRun func(name string, args []string)
}

// NewFakeRunner creates a FakeRunner whose default response is a silent success.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{}
}

// When registers resp for calls whose arguments contain arg.
func (f *FakeRunner) When(arg string, resp FakeResponse) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes = append(f.routes, fakeRoute{arg: arg, resp: resp})
	return f
}

// Default sets the response for calls matching no route.
func (f *FakeRunner) Default(resp FakeResponse) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fallback = resp
	return f
}

// Run implements exec.Runner.
func (f *FakeRunner) Run(ctx context.Context, name string, args ...string) (*exec.Result, error) {
	if f.OnRun != nil {
		f.OnRun(name, args)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	resp := f.fallback
	for _, r := range f.routes {
		if slices.Contains(args, r.arg) {
			resp = r.resp
			break
		}
	}

	record := CallRecord{
		Name:      name,
		Args:      slices.Clone(args),
		Timestamp: time.Now(),
		Stdout:    resp.Stdout,
		ExitCode:  resp.ExitCode,
		Error:     resp.Err,
	}
	f.calls = append(f.calls, record)

	if resp.Err != nil {
		return nil, resp.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &exec.Result{
		Stdout:   resp.Stdout,
		Stderr:   resp.Stderr,
		ExitCode: resp.ExitCode,
	}, nil
}

// Calls returns a copy of all recorded invocations.
func (f *FakeRunner) Calls() []CallRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// CallsWith returns the recorded invocations whose arguments contain arg.
func (f *FakeRunner) CallsWith(arg string) []CallRecord {
	var matched []CallRecord
	for _, c := range f.Calls() {
		if slices.Contains(c.Args, arg) {
			matched = append(matched, c)
		}
	}
	return matched
}

// CallsWithout returns the recorded invocations whose arguments do not contain arg.
func (f *FakeRunner) CallsWithout(arg string) []CallRecord {
	var matched []CallRecord
	for _, c := range f.Calls() {
		if !slices.Contains(c.Args, arg) {
			matched = append(matched, c)
		}
	}
	return matched
}

var _ exec.Runner = (*FakeRunner)(nil)
