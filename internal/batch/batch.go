// Package batch verifies several module files concurrently. Every module gets
// its own artifact path so concurrent sessions never share a file.
package batch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ariel-frischer/ilverify/internal/lifecycle"
	"github.com/ariel-frischer/ilverify/internal/verifier"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultParallel is the concurrency used when none is configured.
const DefaultParallel = 4

// Result is the verification of one module.
type Result struct {
	// Module is the path as given to Run.
	Module string
	// ArtifactPath is the configured (unresolved) output path used for it.
	ArtifactPath string
	Outcome      *verifier.Outcome
	Err          error
	Duration     time.Duration
}

// Runner verifies module files with a shared base configuration.
type Runner struct {
	base     verifier.Config
	parallel int
	handler  lifecycle.Handler
	timeout  time.Duration
	header   func(w io.Writer, module string)
	out      io.Writer

	mu sync.Mutex
}

// Option configures a Runner.
type Option func(*Runner)

// WithParallel sets the maximum number of concurrent verifications. Values
// below 1 are ignored.
func WithParallel(n int) Option {
	return func(r *Runner) {
		if n >= 1 {
			r.parallel = n
		}
	}
}

// WithHandler sets the handler notified after each module.
func WithHandler(h lifecycle.Handler) Option {
	return func(r *Runner) {
		r.handler = h
	}
}

// WithTimeout bounds each module's verification. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d >= 0 {
			r.timeout = d
		}
	}
}

// WithReportHeader sets a function that labels each module's verifier report
// when more than one module is verified.
func WithReportHeader(fn func(w io.Writer, module string)) Option {
	return func(r *Runner) {
		r.header = fn
	}
}

// NewRunner creates a Runner. Verifier reports are written to base.Output
// (default os.Stdout) one module at a time, in completion order.
func NewRunner(base verifier.Config, opts ...Option) *Runner {
	r := &Runner{
		base:     base,
		parallel: DefaultParallel,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.out = verifier.New(base).Config().Output
	return r
}

// Run verifies every module and returns one Result per module, in input
// order. A failing module does not stop the others; cancelling ctx does.
func (r *Runner) Run(ctx context.Context, modules []string) []Result {
	results := make([]Result, len(modules))
	paths := ArtifactPaths(r.base.OutputPath, len(modules))
	collisions := Collisions(r.base.OutputPath, modules)
	log := r.logger()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallel)

	labelled := len(modules) > 1 && r.header != nil
	for i, module := range modules {
		if c, ok := collisions[i]; ok {
			results[i] = Result{Module: module, ArtifactPath: paths[i], Err: c}
			log.Debug("module skipped", zap.Error(c))
			continue
		}
		g.Go(func() error {
			results[i] = r.verifyOne(ctx, module, paths[i], labelled)
			log.Debug("module finished",
				zap.String("module", module),
				zap.Duration("duration", results[i].Duration),
				zap.Error(results[i].Err))
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	return results
}

// verifyOne runs a single session with its own artifact path and report buffer.
func (r *Runner) verifyOne(ctx context.Context, module, artifact string, labelled bool) Result {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cfg := r.base
	cfg.OutputPath = artifact
	var report bytes.Buffer
	cfg.Output = &report

	start := time.Now()
	outcome, err := lifecycle.Run(r.handler, module, func() (*verifier.Outcome, error) {
		return verifier.New(cfg).Verify(ctx, verifier.FileUnit{Path: module})
	})
	result := Result{
		Module:       module,
		ArtifactPath: artifact,
		Outcome:      outcome,
		Err:          err,
		Duration:     time.Since(start),
	}

	if report.Len() > 0 {
		r.mu.Lock()
		if labelled {
			r.header(r.out, module)
		}
		_, _ = r.out.Write(report.Bytes())
		r.mu.Unlock()
	}
	return result
}

func (r *Runner) logger() *zap.Logger {
	if r.base.Logger == nil {
		return zap.NewNop()
	}
	return r.base.Logger
}

// ArtifactPaths derives n distinct output paths from the configured one. A
// single module keeps the configured path unchanged; otherwise the index is
// inserted before the extension: "out/M.dll" becomes "out/M.1.dll",
// "out/M.2.dll" and so on. An empty base uses the default module name.
func ArtifactPaths(base string, n int) []string {
	if n == 1 {
		return []string{base}
	}

	if strings.TrimSpace(base) == "" {
		base = verifier.DefaultModuleName + verifier.DefaultExtension
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if ext == "" {
		ext = verifier.DefaultExtension
	}

	paths := make([]string, n)
	for i := range paths {
		paths[i] = fmt.Sprintf("%s.%d%s", stem, i+1, ext)
	}
	return paths
}

// ArtifactCollisionError reports a module whose artifact path is the source
// file of another module in the same batch. Serializing it would overwrite
// that module before it is verified.
type ArtifactCollisionError struct {
	Module   string
	Artifact string
	Source   string
}

func (e *ArtifactCollisionError) Error() string {
	return fmt.Sprintf("artifact %s for %s would overwrite module %s", e.Artifact, e.Module, e.Source)
}

// Collisions maps the index of every module whose artifact path (as resolved
// by verifier.ResolveOutputPath) is another module's source file. A module
// whose artifact is its own source is not a collision. The result is nil when
// nothing collides.
func Collisions(base string, modules []string) map[int]*ArtifactCollisionError {
	absModules := make([]string, len(modules))
	sources := make(map[string]int, len(modules))
	for j, m := range modules {
		if abs, err := filepath.Abs(m); err == nil {
			absModules[j] = abs
			sources[abs] = j
		}
	}

	var found map[int]*ArtifactCollisionError
	for i, artifact := range ArtifactPaths(base, len(modules)) {
		resolved, err := verifier.ResolveOutputPath(artifact)
		if err != nil {
			continue
		}
		abs, err := filepath.Abs(resolved)
		if err != nil {
			continue
		}
		// Serialization is skipped when the artifact already is the source.
		j, ok := sources[abs]
		if !ok || abs == absModules[i] {
			continue
		}
		if found == nil {
			found = make(map[int]*ArtifactCollisionError)
		}
		found[i] = &ArtifactCollisionError{Module: modules[i], Artifact: resolved, Source: modules[j]}
	}
	return found
}

// Failed returns the results whose verification did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, res := range results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// FirstError returns the first non-nil error in input order.
func FirstError(results []Result) error {
	for _, res := range results {
		if res.Err != nil {
			return res.Err
		}
	}
	return nil
}
