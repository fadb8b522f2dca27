package verifier

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/ariel-frischer/ilverify/internal/verifier"

// Verdict is the result of a run that reached the verifier.
type Verdict int

const (
	// Passed means ilverify exited with code 0.
	Passed Verdict = iota
	// Failed means ilverify ran and rejected the module.
	Failed
)

// String returns "passed" or "failed".
func (v Verdict) String() string {
	if v == Passed {
		return "passed"
	}
	return "failed"
}

// Outcome describes a verifier run. It is returned whenever ilverify was
// invoked, including when verification failed.
type Outcome struct {
	Verdict Verdict
	// ModulePath is the serialized artifact that was verified.
	ModulePath string
	// Args is the argv passed to ilverify after the executable.
	Args []string
	// CommandLine renders Args quoted, for display.
	CommandLine string
	// ToolVersion is the trimmed output of "ilverify --version".
	ToolVersion string
	Stdout      string
	Stderr      string
	ExitCode    int
	// Duration covers the ilverify run only.
	Duration time.Duration
}

// Verifier runs verifications with a fixed Config. It holds no mutable state,
// but concurrent Verify calls must use distinct output paths.
type Verifier struct {
	cfg    Config
	tracer trace.Tracer
}

// New creates a Verifier from cfg, filling in defaults.
func New(cfg Config) *Verifier {
	cfg = cfg.withDefaults()
	return &Verifier{cfg: cfg, tracer: cfg.TracerProvider.Tracer(tracerName)}
}

// Config returns a copy of the effective configuration.
func (v *Verifier) Config() Config {
	return v.cfg.withDefaults()
}

// Verify verifies unit with cfg. It returns nil when ilverify accepts the
// module, or an *Error describing the failed stage.
func Verify(ctx context.Context, cfg Config, unit Unit) error {
	_, err := New(cfg).Verify(ctx, unit)
	return err
}

// Verify serializes unit and runs ilverify against it. The returned Outcome is
// non-nil whenever ilverify was invoked.
func (v *Verifier) Verify(ctx context.Context, unit Unit) (*Outcome, error) {
	ctx, span := v.tracer.Start(ctx, "verifier.Verify", trace.WithAttributes(
		attribute.String("verifier.path", v.cfg.VerifierPath),
		attribute.String("verifier.verbosity", v.cfg.Verbosity.String()),
		attribute.Int("verifier.references", len(v.cfg.References)),
	))
	defer span.End()

	outcome, err := v.verify(ctx, unit)
	if err != nil {
		recordError(span, err)
		return outcome, err
	}
	span.SetAttributes(attribute.String("verifier.module", outcome.ModulePath))
	return outcome, nil
}

func (v *Verifier) verify(ctx context.Context, unit Unit) (*Outcome, error) {
	log := v.cfg.Logger

	version, err := v.probe(ctx)
	if err != nil {
		return nil, err
	}
	log.Debug("verifier available", zap.String("verifier", v.cfg.VerifierPath), zap.String("version", version))

	frameworkDir, err := v.frameworkDir(ctx)
	if err != nil {
		return nil, err
	}

	path, err := ResolveOutputPath(v.cfg.OutputPath)
	if err != nil {
		return nil, serializationFailed(v.cfg.OutputPath, err)
	}
	if err := v.serialize(ctx, unit, path); err != nil {
		return nil, err
	}
	log.Debug("unit serialized", zap.String("module", path))

	outcome := &Outcome{
		ModulePath:  path,
		Args:        Args(path, frameworkDir, v.cfg.References, v.cfg.Verbosity),
		CommandLine: CommandLine(path, frameworkDir, v.cfg.References, v.cfg.Verbosity),
		ToolVersion: version,
	}
	if err := v.run(ctx, outcome); err != nil {
		return nil, err
	}
	return outcome, v.classify(outcome)
}

// probe checks that the verifier can be executed at all.
func (v *Verifier) probe(ctx context.Context) (version string, err error) {
	ctx, span := v.tracer.Start(ctx, "verifier.probe")
	defer func() {
		recordError(span, err)
		span.End()
	}()

	res, err := v.cfg.Runner.Run(ctx, v.cfg.VerifierPath, "--version")
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", toolExecution(v.cfg.VerifierPath, ctxErr)
	}
	if err != nil {
		return "", toolMissing(v.cfg.VerifierPath, err)
	}
	if !res.Success() {
		return "", toolMissing(v.cfg.VerifierPath,
			fmt.Errorf("%s --version exited with code %d", v.cfg.VerifierPath, res.ExitCode))
	}
	return strings.TrimSpace(res.Stdout), nil
}

func (v *Verifier) frameworkDir(ctx context.Context) (string, error) {
	if v.cfg.FrameworkDir != "" {
		return v.cfg.FrameworkDir, nil
	}
	dir, err := DiscoverFrameworkDir(ctx, v.cfg.Runner)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", toolExecution(DotnetCommand, ctxErr)
		}
		return "", runtimeMissing(err)
	}
	v.cfg.Logger.Debug("shared framework discovered", zap.String("dir", dir))
	return dir, nil
}

func (v *Verifier) serialize(ctx context.Context, unit Unit, path string) (err error) {
	_, span := v.tracer.Start(ctx, "verifier.serialize", trace.WithAttributes(attribute.String("verifier.module", path)))
	defer func() {
		recordError(span, err)
		span.End()
	}()

	// The artifact already is the source module: deleting it would lose it.
	if loc, ok := unit.(Locatable); ok && samePath(loc.Location(), path) {
		return nil
	}
	if err := writeUnit(unit, path); err != nil {
		return serializationFailed(path, err)
	}
	return nil
}

// run invokes ilverify and fills the process fields of outcome.
func (v *Verifier) run(ctx context.Context, outcome *Outcome) (err error) {
	ctx, span := v.tracer.Start(ctx, "verifier.run")
	defer func() {
		recordError(span, err)
		span.End()
	}()

	v.cfg.Logger.Debug("running verifier",
		zap.String("verifier", v.cfg.VerifierPath),
		zap.Strings("args", outcome.Args))

	res, err := v.cfg.Runner.Run(ctx, v.cfg.VerifierPath, outcome.Args...)
	if err != nil {
		return toolExecution(v.cfg.VerifierPath, err)
	}
	span.SetAttributes(attribute.Int("verifier.exit_code", res.ExitCode))

	outcome.Stdout = res.Stdout
	outcome.Stderr = res.Stderr
	outcome.ExitCode = res.ExitCode
	outcome.Duration = res.Duration
	return nil
}

// classify sets the verdict and forwards the report when verbosity allows.
func (v *Verifier) classify(outcome *Outcome) error {
	if outcome.ExitCode != 0 {
		outcome.Verdict = Failed
		v.cfg.Logger.Debug("verification failed",
			zap.String("module", outcome.ModulePath),
			zap.Int("exit_code", outcome.ExitCode))
		return verificationFailed(outcome.Stdout, outcome.Stderr, outcome.ExitCode)
	}

	outcome.Verdict = Passed
	if v.cfg.Verbosity > Quiet {
		if _, err := io.WriteString(v.cfg.Output, outcome.Stdout); err != nil {
			v.cfg.Logger.Warn("writing verifier output", zap.Error(err))
		}
	}
	v.cfg.Logger.Debug("verification passed",
		zap.String("module", outcome.ModulePath),
		zap.Duration("duration", outcome.Duration))
	return nil
}

// recordError marks span failed with the verifier error kind.
func recordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, KindOf(err).String())
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
