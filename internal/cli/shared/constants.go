// Package shared provides constants and helpers used across CLI subpackages.
package shared

import (
	"context"
	"errors"
	"fmt"

	clierrors "github.com/ariel-frischer/ilverify/internal/errors"
	"github.com/ariel-frischer/ilverify/internal/verifier"
)

// Command groups shown in help output.
const (
	GroupVerification   = "verification"
	GroupConfiguration  = "configuration"
	GroupGettingStarted = "getting-started"
)

// Exit codes for the ilverify-go CLI.
// These codes support programmatic composition and CI/CD integration.
const (
	// ExitSuccess indicates every module verified.
	ExitSuccess = 0
	// ExitVerificationFailed indicates the verifier rejected a module. It is
	// also the code of unclassified failures.
	ExitVerificationFailed = 1
	// ExitSerializationFailed indicates a module could not be written to the artifact path.
	ExitSerializationFailed = 2
	// ExitInvalidArguments indicates invalid command arguments or configuration.
	ExitInvalidArguments = 3
	// ExitMissingDependency indicates ilverify or the .NET runtime is missing.
	ExitMissingDependency = 4
	// ExitTimeout indicates a verification exceeded the configured timeout.
	ExitTimeout = 5
	// ExitToolExecution indicates ilverify could not be run to completion.
	ExitToolExecution = 6
)

// ExitError carries an explicit exit code.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// NewExitError creates an error that exits with code.
func NewExitError(code int) error {
	return &ExitError{Code: code}
}

// ExitCode maps err to a process exit code. Checks run from most to least
// specific: explicit ExitError, deadline, verifier kind, CLIError category.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ExitTimeout
	}

	switch verifier.KindOf(err) {
	case verifier.KindToolMissing:
		return ExitMissingDependency
	case verifier.KindSerializationFailed:
		return ExitSerializationFailed
	case verifier.KindVerificationFailed:
		return ExitVerificationFailed
	case verifier.KindToolExecution:
		return ExitToolExecution
	}

	if cliErr := clierrors.AsCLIError(err); cliErr != nil {
		switch cliErr.Category {
		case clierrors.Argument, clierrors.Configuration:
			return ExitInvalidArguments
		case clierrors.Prerequisite:
			return ExitMissingDependency
		}
	}
	return ExitVerificationFailed
}
