package notify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ariel-frischer/ilverify/internal/lifecycle"
	"go.uber.org/zap"
	"golang.org/x/term"
)

const (
	title           = "ilverify"
	dispatchTimeout = 5 * time.Second
)

// Handler turns verification events into notifications. It implements
// lifecycle.Handler.
type Handler struct {
	config Config
	sender Sender
	log    *zap.Logger

	// ci and interactive are replaced in tests.
	ci          func() bool
	interactive func() bool

	mu      sync.Mutex
	failing map[string]bool
}

// NewHandler creates a handler. If notifications are disabled in config, the
// handler no-ops on all calls.
func NewHandler(config Config, sender Sender, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		config:      config,
		sender:      sender,
		log:         log,
		ci:          isCI,
		interactive: isInteractive,
		failing:     map[string]bool{},
	}
}

// isEnabled checks if notifications should be sent.
// Returns false if notifications are disabled, running in CI, or non-interactive.
func (h *Handler) isEnabled() bool {
	if !h.config.Enabled {
		return false
	}
	if h.ci() {
		h.log.Debug("notification skipped: CI environment")
		return false
	}
	if !h.interactive() {
		h.log.Debug("notification skipped: non-interactive session")
		return false
	}
	return true
}

// isCI checks for common CI environment variables.
func isCI() bool {
	ciVars := []string{
		"CI",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"CIRCLECI",
		"TRAVIS",
		"JENKINS_URL",
		"BUILDKITE",
		"DRONE",
		"TEAMCITY_VERSION",
		"TF_BUILD",            // Azure DevOps
		"BITBUCKET_PIPELINES", // Bitbucket
		"CODEBUILD_BUILD_ID",  // AWS CodeBuild
	}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// isInteractive checks stdout, then stderr, then stdin for a terminal.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) ||
		term.IsTerminal(int(os.Stderr.Fd())) ||
		term.IsTerminal(int(os.Stdin.Fd()))
}

// OnVerificationComplete notifies failures, recoveries of modules that
// failed earlier, and passing runs over the long-running threshold.
func (h *Handler) OnVerificationComplete(e lifecycle.Event) {
	n, ok := h.notificationFor(e)
	if !ok || !h.isEnabled() {
		return
	}
	h.dispatch(n)
}

func (h *Handler) notificationFor(e lifecycle.Event) (Notification, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	name := filepath.Base(e.Module)
	if !e.Success() {
		h.failing[e.Module] = true
		return NewNotification(title, fmt.Sprintf("%s %s", name, e.Verdict()), TypeFailure), true
	}

	if h.failing[e.Module] {
		delete(h.failing, e.Module)
		if h.config.OnRecovery {
			return NewNotification(title, name+" passes again", TypeSuccess), true
		}
	}

	threshold := h.config.LongRunningThreshold
	if threshold > 0 && e.Duration >= threshold {
		return NewNotification(title,
			fmt.Sprintf("%s passed (%s)", name, formatDuration(e.Duration)), TypeSuccess), true
	}
	return Notification{}, false
}

// dispatch sends n with a timeout. Failures are logged and never block
// verification.
func (h *Handler) dispatch(n Notification) {
	if !h.sender.VisualAvailable() {
		h.log.Debug("notification skipped: no notifier available")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()
	if err := h.sender.SendVisual(ctx, n); err != nil {
		h.log.Debug("notification failed", zap.Error(err))
	}
}

// formatDuration formats a duration for display in notifications
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fm", d.Minutes())
}
