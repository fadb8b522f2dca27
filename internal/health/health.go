// Package health provides dependency health checks for ilverify. It validates that
// the external ilverify tool and the .NET shared framework are available and that
// the configured output location is writable, returning structured reports used by
// the 'ilverify-go doctor' command.
package health

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ariel-frischer/ilverify/internal/exec"
	"github.com/ariel-frischer/ilverify/internal/verifier"
)

// Check names, in report order.
const (
	CheckVerifier   = "ilverify"
	CheckRuntime    = ".NET runtime"
	CheckFramework  = "Framework references"
	CheckOutputDir  = "Output directory"
	CheckConfigFile = "Configuration"
)

// CheckResult represents the result of a single health check
type CheckResult struct {
	Name    string
	Passed  bool
	Message string
}

// HealthReport contains all health check results
type HealthReport struct {
	Checks []CheckResult
	Passed bool
}

// Options selects what the checks look at.
type Options struct {
	VerifierPath string
	// FrameworkDir is checked as is when set, otherwise discovered.
	FrameworkDir string
	OutputPath   string
	// ConfigErr is the error from loading configuration, if any.
	ConfigErr error
	Runner    exec.Runner
}

// RunHealthChecks runs all health checks and returns a report.
func RunHealthChecks(ctx context.Context, opts Options) *HealthReport {
	if opts.Runner == nil {
		opts.Runner = exec.NewRunner()
	}
	if opts.VerifierPath == "" {
		opts.VerifierPath = verifier.DefaultVerifierCommand
	}

	report := &HealthReport{Passed: true}
	add := func(c CheckResult) {
		report.Checks = append(report.Checks, c)
		if !c.Passed {
			report.Passed = false
		}
	}

	add(CheckConfig(opts.ConfigErr))
	add(CheckVerifierTool(ctx, opts.Runner, opts.VerifierPath))

	runtimeCheck, dir := CheckRuntimeDir(ctx, opts.Runner, opts.FrameworkDir)
	add(runtimeCheck)
	if runtimeCheck.Passed {
		add(CheckFrameworkReferences(dir))
	}

	add(CheckOutputLocation(opts.OutputPath))
	return report
}

// CheckConfig reports whether configuration loaded cleanly.
func CheckConfig(err error) CheckResult {
	if err != nil {
		return CheckResult{Name: CheckConfigFile, Passed: false, Message: err.Error()}
	}
	return CheckResult{Name: CheckConfigFile, Passed: true, Message: "loaded"}
}

// CheckVerifierTool probes the verifier with --version.
func CheckVerifierTool(ctx context.Context, runner exec.Runner, verifierPath string) CheckResult {
	res, err := runner.Run(ctx, verifierPath, "--version")
	if err != nil || !res.Success() {
		return CheckResult{
			Name:    CheckVerifier,
			Passed:  false,
			Message: fmt.Sprintf("cannot execute '%s' - install with '%s'", verifierPath, verifier.InstallHint),
		}
	}

	version := strings.TrimSpace(res.Stdout)
	if version == "" {
		return CheckResult{Name: CheckVerifier, Passed: true, Message: "installed"}
	}
	return CheckResult{Name: CheckVerifier, Passed: true, Message: fmt.Sprintf("installed (v%s)", version)}
}

// CheckRuntimeDir validates the configured framework directory or discovers
// one. The directory is returned for follow-up checks.
func CheckRuntimeDir(ctx context.Context, runner exec.Runner, frameworkDir string) (CheckResult, string) {
	if frameworkDir != "" {
		info, err := os.Stat(frameworkDir)
		if err != nil || !info.IsDir() {
			return CheckResult{
				Name:    CheckRuntime,
				Passed:  false,
				Message: fmt.Sprintf("framework_dir %s is not a directory", frameworkDir),
			}, ""
		}
		return CheckResult{Name: CheckRuntime, Passed: true, Message: frameworkDir + " (configured)"}, frameworkDir
	}

	dir, err := verifier.DiscoverFrameworkDir(ctx, runner)
	if err != nil {
		return CheckResult{Name: CheckRuntime, Passed: false, Message: err.Error()}, ""
	}
	return CheckResult{Name: CheckRuntime, Passed: true, Message: dir}, dir
}

// CheckFrameworkReferences checks the framework directory holds modules for
// the *.dll reference glob.
func CheckFrameworkReferences(frameworkDir string) CheckResult {
	matches, err := filepath.Glob(filepath.Join(frameworkDir, "*.dll"))
	if err != nil || len(matches) == 0 {
		return CheckResult{
			Name:    CheckFramework,
			Passed:  false,
			Message: fmt.Sprintf("no *.dll files in %s", frameworkDir),
		}
	}
	return CheckResult{Name: CheckFramework, Passed: true, Message: fmt.Sprintf("%d modules", len(matches))}
}

// CheckOutputLocation resolves the output path and checks its directory
// accepts new files.
func CheckOutputLocation(outputPath string) CheckResult {
	path, err := verifier.ResolveOutputPath(outputPath)
	if err != nil {
		return CheckResult{Name: CheckOutputDir, Passed: false, Message: err.Error()}
	}

	dir := filepath.Dir(path)
	probe, err := os.CreateTemp(dir, ".ilverify-doctor-*")
	if err != nil {
		return CheckResult{
			Name:    CheckOutputDir,
			Passed:  false,
			Message: fmt.Sprintf("%s is not writable: %v", dir, err),
		}
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)

	return CheckResult{Name: CheckOutputDir, Passed: true, Message: path}
}

// FormatReport formats the health report for console output
func FormatReport(report *HealthReport) string {
	var sb strings.Builder
	for _, check := range report.Checks {
		if check.Passed {
			fmt.Fprintf(&sb, "✓ %s: %s\n", check.Name, check.Message)
		} else {
			fmt.Fprintf(&sb, "✗ %s: %s\n", check.Name, check.Message)
		}
	}
	return sb.String()
}
