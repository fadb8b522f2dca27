package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ariel-frischer/ilverify/internal/verifier"
)

// Common error messages for the ilverify CLI.
// These templates ensure consistent, actionable error messages.

// MissingModuleArgument creates an error for a verify call without module paths.
func MissingModuleArgument() *CLIError {
	return NewArgumentErrorWithUsage(
		"at least one module path is required",
		"ilverify-go verify <module.dll>... [flags]",
		"Pass the path of a compiled module",
		"Example: ilverify-go verify bin/Generated.dll -r bin/Dependency.dll",
	)
}

// ModuleNotFound creates an error for a module path that does not exist.
func ModuleNotFound(path string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("module not found: %s", path),
		"Check the path is correct and the module has been written",
	)
}

// InvalidVerbosity creates an error for an unknown verbosity level.
func InvalidVerbosity(value string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("invalid verbosity: %s", value),
		"Valid levels: "+strings.Join(verifier.VerbosityNames(), ", "),
		"Example: ilverify-go verify M.dll -v detailed",
	)
}

// ArtifactCollision creates an error for a batch where one module's artifact
// path is another module's source file.
func ArtifactCollision(module, artifact, source string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("artifact %s for %s would overwrite module %s", artifact, module, source),
		"Pass --output with a name that does not match the module files",
		"Or rename the module so it does not look like an indexed artifact",
	)
}

// InvalidFlagCombination creates an error for incompatible flag combinations.
func InvalidFlagCombination(flags string, reason string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("invalid flag combination: %s", flags),
		reason,
		"Use 'ilverify-go <command> --help' to see valid options",
	)
}

// ConfigParseError creates an error for an invalid config file.
func ConfigParseError(path string, err error) *CLIError {
	return WrapWithMessage(err, Configuration,
		fmt.Sprintf("failed to parse config file: %s", path),
		"Check the file for YAML syntax errors",
		"Show the effective configuration with: ilverify-go config show",
	)
}

// ConfigInvalid creates an error for config values that fail validation.
func ConfigInvalid(err error) *CLIError {
	return WrapWithMessage(err, Configuration,
		"invalid configuration",
		"Fix the value in .ilverify/config.yml or ~/.config/ilverify/config.yml",
		"Or override it with an ILVERIFY_* environment variable",
	)
}

// TimeoutError creates an error when verification exceeds the configured timeout.
func TimeoutError(duration string, module string) *CLIError {
	return NewRuntimeError(
		fmt.Sprintf("verification timed out after %s: %s", duration, module),
		"Increase timeout in config: ILVERIFY_TIMEOUT=10m",
		"Or pass --timeout 10m",
		"Set timeout to 0 to disable timeout",
	)
}

// FileNotWritable creates an error when a file cannot be written.
func FileNotWritable(path string) *CLIError {
	return NewRuntimeError(
		fmt.Sprintf("cannot write to file: %s", path),
		"Check file permissions: ls -la "+path,
		"Ensure parent directory exists and is writable",
	)
}

// FromVerifier converts a verifier failure into a CLIError with remediation
// for its kind. Errors that are not verifier errors are wrapped as Runtime.
func FromVerifier(err error) *CLIError {
	if err == nil {
		return nil
	}
	var ve *verifier.Error
	if !errors.As(err, &ve) {
		return Wrap(err, Runtime)
	}

	switch ve.Kind {
	case verifier.KindToolMissing:
		return &CLIError{
			Category: Prerequisite,
			Message:  ve.Error(),
			Remediation: []string{
				"Install the verifier: " + verifier.InstallHint,
				"Or point verifier_path at an existing ilverify executable",
				"Run 'ilverify-go doctor' to diagnose issues",
			},
			Cause: err,
		}
	case verifier.KindSerializationFailed:
		return &CLIError{
			Category: Runtime,
			Message:  ve.Error(),
			Remediation: []string{
				"Check that the output directory exists and is writable",
				"Set a different location with --output or output_path",
			},
			Cause: err,
		}
	case verifier.KindVerificationFailed:
		return &CLIError{
			Category: Verification,
			Message:  "module failed IL verification",
			Detail:   ve.Message,
			Remediation: []string{
				"Add missing dependencies with -r <path>",
				"Re-run with -v diagnostics for a full trace",
			},
			Cause: err,
		}
	default:
		return &CLIError{
			Category: Runtime,
			Message:  ve.Error(),
			Remediation: []string{
				"Check that the verifier path points to an executable",
				"Run 'ilverify-go doctor' to diagnose issues",
			},
			Cause: err,
		}
	}
}
