package notify

import (
	"sync"
	"testing"
	"time"
)

// fakeNotifier records posted and dismissed notifications.
type fakeNotifier struct {
	mu        sync.Mutex
	posts     []postedNote
	dismissed []string
}

type postedNote struct {
	message  string
	severity Severity
	duration time.Duration
}

func (f *fakeNotifier) Post(message string, severity Severity, duration time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, postedNote{message, severity, duration})
}

func (f *fakeNotifier) DismissByMessage(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dismissed = append(f.dismissed, message)
}

func TestBannerPostsOncePerOfflinePeriod(t *testing.T) {
	fn := &fakeNotifier{}
	b := NewOfflineBanner(fn)

	b.HandleOffline()
	b.HandleOffline() // redundant signal while already offline
	b.HandleOffline()

	if len(fn.posts) != 1 {
		t.Fatalf("expected 1 persistent post, got %d", len(fn.posts))
	}
	p := fn.posts[0]
	if p.message != OfflineMessage || p.severity != SeverityWarning || p.duration != Persistent {
		t.Errorf("unexpected banner post: %+v", p)
	}
}

func TestBannerDismissedOnReconnect(t *testing.T) {
	fn := &fakeNotifier{}
	b := NewOfflineBanner(fn)

	b.HandleOffline()
	b.HandleOnline()

	if len(fn.dismissed) != 1 || fn.dismissed[0] != OfflineMessage {
		t.Fatalf("expected offline banner to be dismissed, got %v", fn.dismissed)
	}
	if len(fn.posts) != 2 {
		t.Fatalf("expected banner + confirmation, got %d posts", len(fn.posts))
	}
	confirm := fn.posts[1]
	if confirm.severity != SeveritySuccess || confirm.duration == Persistent {
		t.Errorf("confirmation should be transient success, got %+v", confirm)
	}
}

func TestOnlineWithoutPriorOfflineIsQuiet(t *testing.T) {
	fn := &fakeNotifier{}
	b := NewOfflineBanner(fn)

	b.HandleOnline()

	if len(fn.posts) != 0 || len(fn.dismissed) != 0 {
		t.Errorf("expected no activity, got posts=%v dismissed=%v", fn.posts, fn.dismissed)
	}
}

func TestBannerRepostsForNewOfflinePeriod(t *testing.T) {
	fn := &fakeNotifier{}
	b := NewOfflineBanner(fn)

	b.HandleOffline()
	b.HandleOnline()
	b.HandleOffline()

	persistent := 0
	for _, p := range fn.posts {
		if p.message == OfflineMessage && p.duration == Persistent {
			persistent++
		}
	}
	if persistent != 2 {
		t.Errorf("expected a fresh banner for the second offline period, got %d", persistent)
	}
}
