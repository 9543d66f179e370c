package service

import (
	"sync"
	"time"

	"corralon-jr/internal/domain"

	"github.com/google/uuid"
)

// MaxNotifications caps each user's feed; appending past the cap evicts the
// oldest entry.
const MaxNotifications = 50

// NotificationFeed keeps per-user status-change messages in memory, newest
// first. Nothing is persisted: a restart loses every feed, which matches the
// transient contract of these messages.
type NotificationFeed struct {
	mu    sync.Mutex
	feeds map[uuid.UUID][]domain.Notification
}

// NewNotificationFeed creates an empty feed store
func NewNotificationFeed() *NotificationFeed {
	return &NotificationFeed{
		feeds: make(map[uuid.UUID][]domain.Notification),
	}
}

// Push prepends a message to the user's feed, evicting the oldest entry
// beyond the cap.
func (f *NotificationFeed) Push(userID uuid.UUID, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	notification := domain.Notification{
		ID:        uuid.New(),
		Text:      text,
		CreatedAt: time.Now(),
		Read:      false,
	}

	feed := append([]domain.Notification{notification}, f.feeds[userID]...)
	if len(feed) > MaxNotifications {
		feed = feed[:MaxNotifications]
	}
	f.feeds[userID] = feed
}

// List returns a copy of the user's feed. When markRead is set, every entry
// is marked read as a bulk side effect, matching the drawer-open behavior.
func (f *NotificationFeed) List(userID uuid.UUID, markRead bool) []domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	feed := f.feeds[userID]
	if markRead {
		for i := range feed {
			feed[i].Read = true
		}
	}

	out := make([]domain.Notification, len(feed))
	copy(out, feed)
	return out
}

// UnreadCount returns how many entries in the user's feed are unread
func (f *NotificationFeed) UnreadCount(userID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, n := range f.feeds[userID] {
		if !n.Read {
			count++
		}
	}
	return count
}
