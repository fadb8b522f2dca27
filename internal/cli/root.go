// Package cli implements the ilverify-go command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ariel-frischer/ilverify/internal/cli/shared"
	"github.com/ariel-frischer/ilverify/internal/cli/util"
	clierrors "github.com/ariel-frischer/ilverify/internal/errors"
	"github.com/ariel-frischer/ilverify/internal/git"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	cliconfig "github.com/ariel-frischer/ilverify/internal/cli/config"
)

// logger is replaced by a development logger when --debug is set.
var logger = zap.NewNop()

// tracerProvider is non-nil while --trace exports spans.
var tracerProvider *sdktrace.TracerProvider

var rootCmd = &cobra.Command{
	Use:   "ilverify-go",
	Short: "Verify .NET modules with ilverify",
	Long: `ilverify-go serializes .NET modules to an artifact path and runs the
ilverify global tool against them, classifying the result and recording it
in a local history.

Install the verifier with: dotnet tool install dotnet-ilverify -g`,
	Example: `  # Verify one module
  ilverify-go verify bin/Generated.dll

  # Verify with a dependency and full diagnostics
  ilverify-go verify bin/Generated.dll -r bin/Runtime.dll -v diagnostics

  # Check that ilverify and the .NET runtime are installed
  ilverify-go doctor`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		if err := setupLogging(debug); err != nil {
			return err
		}
		trace, _ := cmd.Flags().GetBool("trace")
		return setupTracing(trace, cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: shared.GroupVerification, Title: "Verification:"},
		&cobra.Group{ID: shared.GroupConfiguration, Title: "Configuration:"},
		&cobra.Group{ID: shared.GroupGettingStarted, Title: "Getting Started:"},
	)

	rootCmd.PersistentFlags().String(shared.ConfigFlagName, "", "Config file (replaces user and project config)")
	rootCmd.PersistentFlags().Bool("debug", false, "Log pipeline stages to stderr")
	rootCmd.PersistentFlags().Bool("trace", false, "Print verifier stage spans to stderr")

	cliconfig.Register(rootCmd)
	util.Register(rootCmd)
}

// setupLogging installs the development logger and routes git debug output
// through it.
func setupLogging(debug bool) error {
	if !debug {
		logger = zap.NewNop()
		git.SetDebugLogger(nil)
		return nil
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	logger = l
	sugar := l.Sugar()
	git.SetDebugLogger(func(format string, args ...any) {
		sugar.Debugf(format, args...)
	})
	return nil
}

// setupTracing installs the global tracer provider. With enabled, every
// verifier stage span is written to w as JSON when it ends.
func setupTracing(enabled bool, w io.Writer) error {
	shutdownTracing(context.Background())
	if !enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return nil
	}
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return fmt.Errorf("creating span exporter: %w", err)
	}
	tracerProvider = sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	otel.SetTracerProvider(tracerProvider)
	return nil
}

func shutdownTracing(ctx context.Context) {
	if tracerProvider == nil {
		return
	}
	if err := tracerProvider.Shutdown(ctx); err != nil {
		logger.Debug("shutting down tracer provider", zap.Error(err))
	}
	tracerProvider = nil
}

// Execute runs the root command and returns the process exit code. Errors
// are printed to stderr with their remediation.
func Execute() int {
	return ExecuteContext(context.Background(), os.Args[1:])
}

// ExecuteContext runs the root command with args.
func ExecuteContext(ctx context.Context, args []string) int {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	shutdownTracing(ctx)
	_ = logger.Sync() // stderr sync fails on some terminals
	if err != nil {
		clierrors.Fprint(rootCmd.ErrOrStderr(), err)
		return shared.ExitCode(err)
	}
	return shared.ExitSuccess
}
