// Package notify sends desktop notifications about verification results.
// Notifications are opt-in and suppressed in CI and non-interactive sessions.
package notify

import "time"

// NotificationType represents the type of notification event
type NotificationType string

const (
	// TypeSuccess indicates a passing verification
	TypeSuccess NotificationType = "success"
	// TypeFailure indicates a failed verification
	TypeFailure NotificationType = "failure"
)

// Config holds notification preferences.
type Config struct {
	// Enabled is the master switch (default: false, opt-in).
	Enabled bool
	// OnRecovery notifies when a module that failed earlier in the session
	// passes again.
	OnRecovery bool
	// LongRunningThreshold notifies passing runs at least this long.
	// 0 disables success notifications.
	LongRunningThreshold time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Enabled:              false,
		OnRecovery:           true,
		LongRunningThreshold: 30 * time.Second,
	}
}

// Notification represents a single notification event to dispatch
type Notification struct {
	Title   string
	Message string
	Type    NotificationType
}

// NewNotification creates a new Notification with the given parameters
func NewNotification(title, message string, notificationType NotificationType) Notification {
	return Notification{
		Title:   title,
		Message: message,
		Type:    notificationType,
	}
}
