package verifier

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies why a verification did not pass.
type Kind int

const (
	// KindToolMissing means ilverify (or the .NET runtime) could not be executed.
	KindToolMissing Kind = iota + 1
	// KindSerializationFailed means the unit could not be written to disk.
	KindSerializationFailed
	// KindVerificationFailed means ilverify rejected the module.
	KindVerificationFailed
	// KindToolExecution means ilverify passed the probe but the real run
	// could not be started or did not finish.
	KindToolExecution
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindToolMissing:
		return "tool missing"
	case KindSerializationFailed:
		return "serialization failed"
	case KindVerificationFailed:
		return "verification failed"
	case KindToolExecution:
		return "tool execution failure"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is.
var (
	ErrToolMissing         = errors.New("verifier tool missing")
	ErrSerializationFailed = errors.New("serialization failed")
	ErrVerificationFailed  = errors.New("verification failed")
	ErrToolExecution       = errors.New("verifier execution failed")
)

// Error is returned by Verify for every failure.
type Error struct {
	Kind Kind
	// Message describes the failure. For KindVerificationFailed it is the raw
	// verifier report.
	Message string
	// Output is the raw verifier standard output, when the tool ran.
	Output string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind != KindVerificationFailed {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrToolMissing:
		return e.Kind == KindToolMissing
	case ErrSerializationFailed:
		return e.Kind == KindSerializationFailed
	case ErrVerificationFailed:
		return e.Kind == KindVerificationFailed
	case ErrToolExecution:
		return e.Kind == KindToolExecution
	}
	return false
}

// KindOf returns the Kind of err, or 0 if err is not a verifier error.
func KindOf(err error) Kind {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return 0
}

// InstallHint is the command that installs the ilverify global tool.
const InstallHint = "dotnet tool install dotnet-ilverify -g"

func toolMissing(verifierPath string, err error) *Error {
	msg := fmt.Sprintf("Unable to execute '%s'. Ensure that the global tool is installed. Install with '%s'",
		DefaultVerifierCommand, InstallHint)
	if verifierPath != DefaultVerifierCommand {
		msg += fmt.Sprintf(" (configured path: %s)", verifierPath)
	}
	return &Error{
		Kind:    KindToolMissing,
		Message: msg,
		Err:     err,
	}
}

func runtimeMissing(err error) *Error {
	return &Error{
		Kind:    KindToolMissing,
		Message: fmt.Sprintf("Unable to locate the .NET shared framework with '%s --list-runtimes'. Install the .NET runtime or set the framework directory", DotnetCommand),
		Err:     err,
	}
}

func serializationFailed(path string, err error) *Error {
	return &Error{
		Kind:    KindSerializationFailed,
		Message: fmt.Sprintf("unable to write module to %s", path),
		Err:     err,
	}
}

func verificationFailed(stdout, stderr string, exitCode int) *Error {
	msg := stdout
	if strings.TrimSpace(msg) == "" {
		msg = fmt.Sprintf("%s exited with code %d", DefaultVerifierCommand, exitCode)
		if detail := strings.TrimSpace(stderr); detail != "" {
			msg += ": " + detail
		}
	}
	return &Error{
		Kind:    KindVerificationFailed,
		Message: msg,
		Output:  stdout,
	}
}

func toolExecution(verifierPath string, err error) *Error {
	return &Error{
		Kind:    KindToolExecution,
		Message: fmt.Sprintf("unable to run '%s'", verifierPath),
		Err:     err,
	}
}
