package notify

import (
	"sync"
	"time"
)

// OfflineMessage is the persistent banner shown while disconnected.
// Dismissal is keyed by this exact text.
const OfflineMessage = "You're currently offline. Changes will sync when connection is restored."

// restoredMessage is the transient confirmation shown on reconnect.
const restoredMessage = "Connection restored. You're back online!"

// restoredDuration is how long the reconnect confirmation stays visible.
const restoredDuration = 4 * time.Second

// OfflineBanner manages the persistent offline notification: posted
// exactly once per offline period, dismissed on the following reconnect.
// Wire HandleOffline/HandleOnline to the connectivity monitor's edges.
type OfflineBanner struct {
	notifier Notifier

	mu     sync.Mutex
	posted bool
}

// NewOfflineBanner creates a banner posting through notifier.
func NewOfflineBanner(notifier Notifier) *OfflineBanner {
	return &OfflineBanner{notifier: notifier}
}

// HandleOffline posts the persistent banner unless one is already up.
func (b *OfflineBanner) HandleOffline() {
	b.mu.Lock()
	if b.posted {
		b.mu.Unlock()
		return
	}
	b.posted = true
	b.mu.Unlock()

	b.notifier.Post(OfflineMessage, SeverityWarning, Persistent)
}

// HandleOnline dismisses the banner from the preceding offline period,
// if any, and posts a transient confirmation.
func (b *OfflineBanner) HandleOnline() {
	b.mu.Lock()
	if !b.posted {
		b.mu.Unlock()
		return
	}
	b.posted = false
	b.mu.Unlock()

	b.notifier.DismissByMessage(OfflineMessage)
	b.notifier.Post(restoredMessage, SeveritySuccess, restoredDuration)
}
