package verifier

import (
	"io"
	"os"
	"slices"

	"github.com/ariel-frischer/ilverify/internal/exec"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// DefaultVerifierCommand is the ilverify global tool name, resolved through PATH.
	DefaultVerifierCommand = "ilverify"
	// DefaultModuleName is the artifact base name used when no output path is set.
	DefaultModuleName = "VerifiedAssembly"
	// DefaultExtension is the artifact file extension.
	DefaultExtension = ".dll"
)

// Config holds the options of one verification run. The zero value is usable:
// empty fields fall back to the defaults listed on each field.
type Config struct {
	// OutputPath is where the unit is serialized. Empty means
	// VerifiedAssembly.dll in DefaultOutputDir; a relative path is joined to
	// DefaultOutputDir; an absolute path is used as is.
	OutputPath string
	// VerifierPath is the ilverify executable. Default: "ilverify" from PATH.
	VerifierPath string
	// References are passed to ilverify with -r, in order.
	References []ReferencePath
	// Verbosity selects the ilverify flags and whether output is forwarded.
	Verbosity Verbosity
	// Output receives the verifier report when Verbosity > Quiet. Default: os.Stdout.
	Output io.Writer
	// FrameworkDir is the shared framework directory whose binaries are always
	// referenced. Empty means discover it with "dotnet --list-runtimes".
	FrameworkDir string
	// Runner executes processes. Default: exec.NewRunner().
	Runner exec.Runner
	// Logger receives stage-level debug logs. Default: no-op.
	Logger *zap.Logger
	// TracerProvider receives one span per stage. Default: the global provider.
	TracerProvider trace.TracerProvider
}

// withDefaults returns a copy of c with empty fields filled in.
func (c Config) withDefaults() Config {
	if c.VerifierPath == "" {
		c.VerifierPath = DefaultVerifierCommand
	}
	if c.Output == nil {
		c.Output = os.Stdout
	}
	if c.Runner == nil {
		c.Runner = exec.NewRunner()
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.TracerProvider == nil {
		c.TracerProvider = otel.GetTracerProvider()
	}
	c.References = slices.Clone(c.References)
	return c
}

// Builder assembles a Config with chained setters. Nothing is validated until
// the Config is used by Verify.
type Builder struct {
	cfg Config
}

// NewBuilder creates a Builder holding the defaults.
func NewBuilder() *Builder {
	return &Builder{cfg: Config{
		VerifierPath: DefaultVerifierCommand,
		Verbosity:    Quiet,
		Output:       os.Stdout,
	}}
}

// WithVerbosity sets the verbosity level.
func (b *Builder) WithVerbosity(v Verbosity) *Builder {
	b.cfg.Verbosity = v
	return b
}

// WithReference adds a dependency reference.
func (b *Builder) WithReference(ref ReferencePath) *Builder {
	b.cfg.References = append(b.cfg.References, ref)
	return b
}

// WithReferenceFrom adds a reference to the file l was loaded from.
func (b *Builder) WithReferenceFrom(l Locatable) *Builder {
	ref, err := ReferenceFrom(l)
	if err != nil {
		ref = ReferencePath(l.Location())
	}
	return b.WithReference(ref)
}

// WithVerifierPath overrides the ilverify executable.
func (b *Builder) WithVerifierPath(path string) *Builder {
	b.cfg.VerifierPath = path
	return b
}

// WithOutputPath sets the artifact path, absolute or relative to DefaultOutputDir.
func (b *Builder) WithOutputPath(path string) *Builder {
	b.cfg.OutputPath = path
	return b
}

// WithOutput sets the writer that receives the verifier report.
func (b *Builder) WithOutput(w io.Writer) *Builder {
	b.cfg.Output = w
	return b
}

// WithFrameworkDir pins the shared framework directory.
func (b *Builder) WithFrameworkDir(dir string) *Builder {
	b.cfg.FrameworkDir = dir
	return b
}

// WithRunner sets the process runner.
func (b *Builder) WithRunner(r exec.Runner) *Builder {
	b.cfg.Runner = r
	return b
}

// WithLogger sets the logger.
func (b *Builder) WithLogger(l *zap.Logger) *Builder {
	b.cfg.Logger = l
	return b
}

// WithTracerProvider sets where stage spans are recorded.
func (b *Builder) WithTracerProvider(tp trace.TracerProvider) *Builder {
	b.cfg.TracerProvider = tp
	return b
}

// Build returns the assembled Config. Later Builder calls do not affect it.
func (b *Builder) Build() Config {
	cfg := b.cfg
	cfg.References = slices.Clone(b.cfg.References)
	return cfg
}
