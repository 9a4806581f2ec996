// Package notify defines the notification collaborator and the offline
// banner built on top of it.
package notify

import (
	"log"
	"os"
	"time"
)

// Severity classifies a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Persistent is the duration value for a notification that stays visible
// until explicitly dismissed.
const Persistent time.Duration = 0

// Notifier posts user-facing notifications. Duration Persistent (0)
// means the notification does not expire; dismissal is by exact message
// content.
type Notifier interface {
	Post(message string, severity Severity, duration time.Duration)
	DismissByMessage(message string)
}

// LogNotifier writes notifications to a logger. It is the default
// notifier for headless operation.
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier creates a LogNotifier. If logger is nil, a default
// logger writing to stderr is used.
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.New(os.Stderr, "[notify] ", log.LstdFlags)
	}
	return &LogNotifier{logger: logger}
}

// Post implements Notifier.
func (n *LogNotifier) Post(message string, severity Severity, duration time.Duration) {
	if duration == Persistent {
		n.logger.Printf("%s (persistent): %s", severity, message)
		return
	}
	n.logger.Printf("%s: %s", severity, message)
}

// DismissByMessage implements Notifier.
func (n *LogNotifier) DismissByMessage(message string) {
	n.logger.Printf("dismissed: %s", message)
}
