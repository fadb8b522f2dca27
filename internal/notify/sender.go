package notify

import (
	"context"
	"fmt"
	osexec "os/exec"
	"runtime"

	"github.com/ariel-frischer/ilverify/internal/exec"
)

// Sender delivers a notification to the OS notification system.
type Sender interface {
	SendVisual(ctx context.Context, n Notification) error
	// VisualAvailable returns true if visual notifications are supported
	VisualAvailable() bool
}

// NewSender creates a sender for the current OS: notify-send on linux,
// osascript on darwin and a no-op elsewhere. Commands go through runner.
func NewSender(runner exec.Runner) Sender {
	return newSenderFor(runtime.GOOS, runner, toolAvailable)
}

func newSenderFor(goos string, runner exec.Runner, available func(string) bool) Sender {
	switch goos {
	case "linux":
		return &commandSender{runner: runner, tool: "notify-send", available: available("notify-send"), args: linuxArgs}
	case "darwin":
		return &commandSender{runner: runner, tool: "osascript", available: available("osascript"), args: darwinArgs}
	default:
		return noopSender{}
	}
}

// toolAvailable checks if a command-line tool is available in PATH
func toolAvailable(name string) bool {
	_, err := osexec.LookPath(name)
	return err == nil
}

func linuxArgs(n Notification) []string {
	urgency := "normal"
	if n.Type == TypeFailure {
		urgency = "critical"
	}
	return []string{"--app-name", n.Title, "--urgency", urgency, n.Title, n.Message}
}

func darwinArgs(n Notification) []string {
	script := fmt.Sprintf("display notification %q with title %q", n.Message, n.Title)
	return []string{"-e", script}
}

type commandSender struct {
	runner    exec.Runner
	tool      string
	available bool
	args      func(Notification) []string
}

func (s *commandSender) SendVisual(ctx context.Context, n Notification) error {
	if !s.available {
		return fmt.Errorf("%s not found in PATH", s.tool)
	}
	res, err := s.runner.Run(ctx, s.tool, s.args(n)...)
	if err != nil {
		return fmt.Errorf("running %s: %w", s.tool, err)
	}
	if !res.Success() {
		return fmt.Errorf("%s exited with code %d", s.tool, res.ExitCode)
	}
	return nil
}

func (s *commandSender) VisualAvailable() bool { return s.available }

// noopSender is a sender that does nothing (for unsupported platforms)
type noopSender struct{}

func (noopSender) SendVisual(context.Context, Notification) error { return nil }
func (noopSender) VisualAvailable() bool                          { return false }
