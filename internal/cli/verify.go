package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariel-frischer/ilverify/internal/batch"
	"github.com/ariel-frischer/ilverify/internal/cli/shared"
	"github.com/ariel-frischer/ilverify/internal/config"
	clierrors "github.com/ariel-frischer/ilverify/internal/errors"
	"github.com/ariel-frischer/ilverify/internal/exec"
	"github.com/ariel-frischer/ilverify/internal/lifecycle"
	"github.com/ariel-frischer/ilverify/internal/metrics"
	"github.com/ariel-frischer/ilverify/internal/notify"
	"github.com/ariel-frischer/ilverify/internal/output"
	"github.com/ariel-frischer/ilverify/internal/progress"
	"github.com/ariel-frischer/ilverify/internal/verifier"
	"github.com/ariel-frischer/ilverify/internal/watch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <module.dll>...",
	Short: "Verify one or more modules with ilverify",
	Long: `Verify copies each module to the artifact path and runs ilverify against it,
referencing the .NET shared framework and any extra references.

Exit codes:
  0  all modules verified
  1  ilverify rejected a module
  2  a module could not be written to the artifact path
  3  invalid arguments or configuration
  4  ilverify or the .NET runtime is missing
  5  a verification timed out
  6  ilverify could not be run to completion`,
	Example: `  # Verify a module
  ilverify-go verify bin/Generated.dll

  # Add a dependency and show statistics
  ilverify-go verify bin/Generated.dll -r bin/Runtime.dll -v detailed

  # Verify several modules, two at a time, with a per-module timeout
  ilverify-go verify bin/*.dll --parallel 2 --timeout 2m

  # Re-verify whenever the module is rebuilt, with desktop notifications
  ilverify-go verify bin/Generated.dll --watch --notify`,
	RunE: runVerify,
}

func init() {
	verifyCmd.GroupID = shared.GroupVerification
	rootCmd.AddCommand(verifyCmd)
	addVerifyFlags(verifyCmd)
}

func addVerifyFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("verbosity", "v", "", "Verifier output on success: quiet, normal, detailed, diagnostics")
	f.StringP("output", "o", "", "Artifact path, absolute or relative to the ilverify-go binary")
	f.StringArrayP("reference", "r", nil, "Dependency module passed to ilverify (repeatable)")
	f.String("verifier", "", "ilverify executable")
	f.String("framework-dir", "", ".NET shared framework directory (default: discovered with dotnet)")
	f.IntP("parallel", "p", 0, "Modules verified at once")
	f.Duration("timeout", 0, "Per-module timeout, e.g. 2m (0 = none)")
	f.BoolP("watch", "w", false, "Re-verify modules when they change")
	f.String("metrics-file", "", "Write Prometheus metrics to this textfile after each run")
	f.Bool("no-history", false, "Do not record results in history")
	f.Bool("notify", false, "Desktop notification when a module fails or passes again")
}

// verifyOptions is everything one verify invocation needs.
type verifyOptions struct {
	Modules     []string
	Config      *config.Configuration
	Watch       bool
	MetricsFile string
	NoHistory   bool
	Notify      bool
	Debug       bool

	Runner  exec.Runner
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *zap.Logger
	Caps    progress.TerminalCapabilities
	Spinner *progress.Spinner
}

func runVerify(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return clierrors.MissingModuleArgument()
	}

	loaded, err := shared.LoadConfig(cmd)
	if err != nil {
		return err
	}

	opts, err := verifyOptionsFromFlags(cmd, args, loaded.Config)
	if err != nil {
		return err
	}
	opts.Runner = exec.NewRunner()
	opts.Stdout = cmd.OutOrStdout()
	opts.Stderr = cmd.ErrOrStderr()
	opts.Logger = logger
	opts.Debug, _ = cmd.Flags().GetBool("debug")
	opts.Caps = progress.DetectTerminalCapabilities(os.Stderr)
	opts.Spinner = progress.NewSpinner(os.Stderr, opts.Caps)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Watch {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
	}
	return executeVerify(ctx, opts)
}

// verifyOptionsFromFlags overrides cfg with the flags the user set and checks
// the modules exist. cfg is not modified.
func verifyOptionsFromFlags(cmd *cobra.Command, args []string, cfg *config.Configuration) (*verifyOptions, error) {
	merged := *cfg
	f := cmd.Flags()

	if f.Changed("verbosity") {
		merged.Verbosity, _ = f.GetString("verbosity")
	}
	if _, err := verifier.ParseVerbosity(merged.Verbosity); err != nil {
		return nil, clierrors.InvalidVerbosity(merged.Verbosity)
	}
	if f.Changed("output") {
		merged.OutputPath, _ = f.GetString("output")
	}
	if f.Changed("reference") {
		refs, _ := f.GetStringArray("reference")
		merged.References = append(append([]string(nil), cfg.References...), refs...)
	}
	if f.Changed("verifier") {
		merged.VerifierPath, _ = f.GetString("verifier")
	}
	if f.Changed("framework-dir") {
		merged.FrameworkDir, _ = f.GetString("framework-dir")
	}
	if f.Changed("parallel") {
		merged.Parallel, _ = f.GetInt("parallel")
		if merged.Parallel < 1 {
			return nil, clierrors.NewArgumentError(
				fmt.Sprintf("--parallel must be at least 1, got %d", merged.Parallel))
		}
	}
	if f.Changed("timeout") {
		merged.Timeout, _ = f.GetDuration("timeout")
		if merged.Timeout < 0 {
			return nil, clierrors.NewArgumentError(
				fmt.Sprintf("--timeout must not be negative, got %s", merged.Timeout))
		}
	}

	for _, m := range args {
		if _, err := os.Stat(m); err != nil {
			return nil, clierrors.ModuleNotFound(m)
		}
	}
	if collisions := batch.Collisions(merged.OutputPath, args); collisions != nil {
		for i := range args {
			if c, ok := collisions[i]; ok {
				return nil, clierrors.ArtifactCollision(c.Module, c.Artifact, c.Source)
			}
		}
	}

	opts := &verifyOptions{Modules: args, Config: &merged}
	opts.Watch, _ = f.GetBool("watch")
	opts.MetricsFile, _ = f.GetString("metrics-file")
	opts.NoHistory, _ = f.GetBool("no-history")
	opts.Notify, _ = f.GetBool("notify")
	return opts, nil
}

// verifySession holds the wiring shared by the first run and watch re-runs.
type verifySession struct {
	opts     *verifyOptions
	runner   *batch.Runner
	recorder *metrics.Recorder
}

func executeVerify(ctx context.Context, opts *verifyOptions) error {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Spinner == nil {
		opts.Spinner = progress.NewSpinner(os.Stderr, progress.TerminalCapabilities{})
	}

	s, err := newVerifySession(opts)
	if err != nil {
		return err
	}

	err = s.verify(ctx, opts.Modules)
	if !opts.Watch {
		return err
	}
	if err != nil {
		clierrors.Fprint(opts.Stderr, err)
	}
	return s.watch(ctx)
}

func newVerifySession(opts *verifyOptions) (*verifySession, error) {
	cfg := opts.Config
	level, err := verifier.ParseVerbosity(cfg.Verbosity)
	if err != nil {
		return nil, clierrors.InvalidVerbosity(cfg.Verbosity)
	}

	b := verifier.NewBuilder().
		WithVerbosity(level).
		WithVerifierPath(cfg.VerifierPath).
		WithOutputPath(cfg.OutputPath).
		WithFrameworkDir(cfg.FrameworkDir).
		WithOutput(opts.Stdout).
		WithRunner(opts.Runner).
		WithLogger(opts.Logger)
	for _, r := range cfg.References {
		ref, err := verifier.NewReferencePath(r)
		if err != nil {
			return nil, clierrors.NewArgumentError(fmt.Sprintf("invalid reference path %q: %v", r, err))
		}
		b.WithReference(ref)
	}

	handlers := lifecycle.Handlers{progress.NewReporter(opts.Stderr, opts.Caps, opts.Spinner)}
	if opts.Debug {
		handlers = append(handlers, commandEcho(opts.Stderr))
	}
	if !opts.NoHistory {
		handlers = append(handlers, historyRecorder(cfg, level, opts.Stderr, opts.Logger))
	}
	if opts.Notify {
		notifyCfg := notify.DefaultConfig()
		notifyCfg.Enabled = true
		handlers = append(handlers, notify.NewHandler(notifyCfg, notify.NewSender(opts.Runner), opts.Logger))
	}
	s := &verifySession{opts: opts}
	if opts.MetricsFile != "" {
		s.recorder = metrics.NewRecorder()
		handlers = append(handlers, s.recorder)
	}

	s.runner = batch.NewRunner(b.Build(),
		batch.WithParallel(cfg.Parallel),
		batch.WithTimeout(cfg.Timeout),
		batch.WithHandler(lifecycle.Serialized(handlers)),
		batch.WithReportHeader(output.PrintReportHeader))
	return s, nil
}

// verify runs one batch and returns the first failure as a CLIError. Later
// failures are printed to stderr directly.
func (s *verifySession) verify(ctx context.Context, modules []string) error {
	s.opts.Spinner.Start(fmt.Sprintf("Verifying %d module(s)", len(modules)))
	results := s.runner.Run(ctx, modules)
	s.opts.Spinner.Stop()

	failed := batch.Failed(results)
	if len(results) > 1 {
		output.PrintSummary(s.opts.Stderr, len(results)-len(failed), len(results))
	}

	if s.recorder != nil {
		if err := s.recorder.WriteTextfile(s.opts.MetricsFile); err != nil {
			fileErr := clierrors.FileNotWritable(s.opts.MetricsFile)
			fileErr.Cause = err
			clierrors.Fprint(s.opts.Stderr, fileErr)
		}
	}

	if len(failed) == 0 {
		return nil
	}
	for _, res := range failed[1:] {
		clierrors.Fprint(s.opts.Stderr, s.resultError(res))
	}
	return s.resultError(failed[0])
}

// resultError converts a failed result, naming the module.
func (s *verifySession) resultError(res batch.Result) *clierrors.CLIError {
	if errors.Is(res.Err, context.DeadlineExceeded) {
		timeoutErr := clierrors.TimeoutError(s.opts.Config.Timeout.String(), res.Module)
		timeoutErr.Cause = res.Err
		return timeoutErr
	}
	cliErr := clierrors.FromVerifier(res.Err)
	cliErr.Message = fmt.Sprintf("%s: %s", res.Module, cliErr.Message)
	return cliErr
}

// watch re-verifies changed modules until ctx is cancelled.
func (s *verifySession) watch(ctx context.Context) error {
	w, err := watch.New(s.opts.Modules, watch.WithLogger(s.opts.Logger))
	if err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Runtime, "cannot watch modules",
			"Check that the module directories exist and are readable")
	}
	defer w.Close()

	fmt.Fprintf(s.opts.Stderr, "Watching %d module(s) for changes. Press Ctrl+C to stop.\n", len(w.Modules()))
	return w.Run(ctx, func(ctx context.Context, changed []string) {
		start := time.Now()
		if err := s.verify(ctx, changed); err != nil {
			clierrors.Fprint(s.opts.Stderr, err)
		}
		s.opts.Logger.Debug("re-verification finished",
			zap.Strings("modules", changed),
			zap.Duration("duration", time.Since(start)))
	})
}
