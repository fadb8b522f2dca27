// Package testutil provides test utilities and helpers for ilverify tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"
)

// HelperProcessConfig configures the behavior of TestHelperProcess.
type HelperProcessConfig struct {
	// ExitCode is the exit code to return (default 0).
	ExitCode int `json:"exit_code"`
	// Stdout is the content to write to stdout.
	Stdout string `json:"stdout"`
	// Stderr is the content to write to stderr.
	Stderr string `json:"stderr"`
	// EchoArgs writes the received arguments to stdout, one per line, after Stdout.
	EchoArgs bool `json:"echo_args"`
	// Version answers a lone --version argument with exit 0, whatever ExitCode
	// says, so one config can fake both the probe and the real run.
	Version string `json:"version"`
	// Sleep delays the exit, for timeout tests.
	Sleep time.Duration `json:"sleep"`
	// KeepStdoutOpen starts a detached copy of the helper that inherits
	// stdout and sleeps for Sleep, outliving the helper itself.
	KeepStdoutOpen bool `json:"keep_stdout_open"`
}

// HelperProcessEnvVars contains the environment variable names used by TestHelperProcess.
const (
	// EnvWantHelperProcess signals that the test binary should run as a helper process.
	EnvWantHelperProcess = "GO_WANT_HELPER_PROCESS"
	// EnvHelperProcessConfig contains JSON-encoded HelperProcessConfig.
	EnvHelperProcessConfig = "GO_HELPER_PROCESS_CONFIG"
)

// TestHelperProcess turns the running test binary into a fake verifier when
// GO_WANT_HELPER_PROCESS=1 is set. It writes the configured output and exits
// without returning. Without the variable it returns immediately.
//
// Usage in test file:
//
//	func TestHelperProcess(t *testing.T) {
//	    testutil.TestHelperProcess(t)
//	}
func TestHelperProcess(t *testing.T) {
	if os.Getenv(EnvWantHelperProcess) != "1" {
		return
	}

	config := parseHelperConfig()
	runHelperProcess(config, HelperArgs())
}

// parseHelperConfig parses HelperProcessConfig from environment variable.
func parseHelperConfig() HelperProcessConfig {
	config := HelperProcessConfig{}
	configJSON := os.Getenv(EnvHelperProcessConfig)
	if configJSON != "" {
		// Ignore parse errors; use defaults on failure
		_ = json.Unmarshal([]byte(configJSON), &config)
	}
	return config
}

// MaybeRunHelperProcess is the TestMain form of TestHelperProcess: the whole
// test binary becomes the fake command and os.Args[1:] are its arguments.
// Call it before m.Run so unknown flags never reach the testing package.
//
//	func TestMain(m *testing.M) {
//	    testutil.MaybeRunHelperProcess()
//	    os.Exit(m.Run())
//	}
func MaybeRunHelperProcess() {
	if os.Getenv(EnvWantHelperProcess) != "1" {
		return
	}
	runHelperProcess(parseHelperConfig(), os.Args[1:])
}

// runHelperProcess executes the helper process behavior and always exits.
func runHelperProcess(config HelperProcessConfig, args []string) {
	if config.Version != "" && len(args) == 1 && args[0] == "--version" {
		fmt.Fprintln(os.Stdout, config.Version)
		os.Exit(0)
	}
	if config.Stdout != "" {
		fmt.Fprint(os.Stdout, config.Stdout)
	}
	if config.EchoArgs {
		for _, arg := range args {
			fmt.Fprintln(os.Stdout, arg)
		}
	}
	if config.Stderr != "" {
		fmt.Fprint(os.Stderr, config.Stderr)
	}
	if config.KeepStdoutOpen {
		startStdoutHolder(config)
	}
	if config.Sleep > 0 {
		time.Sleep(config.Sleep)
	}
	os.Exit(config.ExitCode)
}

func startStdoutHolder(config HelperProcessConfig) {
	bin, err := os.Executable()
	if err != nil {
		return
	}
	holder := HelperProcessConfig{Sleep: config.Sleep}
	cmd := exec.Command(bin)
	cmd.Env = append(os.Environ(), HelperEnv(holder)...)
	cmd.Stdout = os.Stdout
	_ = cmd.Start()
}

// HelperArgs returns the arguments that follow the "--" separator on the
// helper process command line.
func HelperArgs() []string {
	for i, arg := range os.Args {
		if arg == "--" {
			return os.Args[i+1:]
		}
	}
	return nil
}

// HelperCommand returns the binary and leading arguments that make the test
// binary act as a helper process for testName. Append the fake command's own
// arguments after them.
func HelperCommand(t *testing.T, testName string) (string, []string) {
	t.Helper()

	testBinary, err := os.Executable()
	if err != nil {
		t.Fatalf("failed to get test binary path: %v", err)
	}
	return testBinary, []string{"-test.run=^" + testName + "$", "--"}
}

// SetHelperEnv exports the helper process variables for the rest of the test.
// Child processes inherit them. Tests using it cannot run in parallel.
func SetHelperEnv(t *testing.T, config HelperProcessConfig) {
	t.Helper()

	configJSON, err := json.Marshal(config)
	if err != nil {
		t.Fatalf("marshaling helper config: %v", err)
	}
	t.Setenv(EnvWantHelperProcess, "1")
	t.Setenv(EnvHelperProcessConfig, string(configJSON))
}

// HelperEnv builds KEY=VALUE pairs for the helper process, for runners that
// take an explicit environment.
func HelperEnv(config HelperProcessConfig) []string {
	env := []string{EnvWantHelperProcess + "=1"}
	if configJSON, err := json.Marshal(config); err == nil {
		env = append(env, EnvHelperProcessConfig+"="+string(configJSON))
	}
	return env
}

// SplitLines splits helper output into non-empty lines.
func SplitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimRight(line, "\r"); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
